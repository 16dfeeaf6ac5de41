package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ommanoj88/sev-backend/internal/ports"
)

type AvailabilityHandler struct {
	availability ports.AvailabilityService
	log          *zap.Logger
}

func NewAvailabilityHandler(availability ports.AvailabilityService, log *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability, log: log}
}

// Slots returns the slot grid for one port on one calendar day. The
// date query parameter defaults to today.
func (h *AvailabilityHandler) Slots(c *fiber.Ctx) error {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
		}
		date = parsed
	}

	slots, err := h.availability.Slots(c.Context(), c.Params("id"), c.Params("portId"), date)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"station_id": c.Params("id"),
		"port_id":    c.Params("portId"),
		"date":       date.Format("2006-01-02"),
		"slots":      slots,
	})
}
