package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ommanoj88/sev-backend/internal/domain"
	"github.com/ommanoj88/sev-backend/internal/ports"
)

type ReservationHandler struct {
	booking ports.BookingService
	log     *zap.Logger
}

func NewReservationHandler(booking ports.BookingService, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{booking: booking, log: log}
}

type createReservationRequest struct {
	StationID       string    `json:"station_id"`
	PortID          string    `json:"port_id"`
	VehicleID       string    `json:"vehicle_id"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	var req createReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if req.StationID == "" || req.PortID == "" || req.VehicleID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "station_id, port_id and vehicle_id are required"})
	}

	res, err := h.booking.Book(c.Context(), &ports.BookingRequest{
		StationID:       req.StationID,
		PortID:          req.PortID,
		VehicleID:       req.VehicleID,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *ReservationHandler) Get(c *fiber.Ctx) error {
	res, err := h.booking.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// List returns reservations for a vehicle or a port, optionally
// filtered by status.
func (h *ReservationHandler) List(c *fiber.Ctx) error {
	vehicleID := c.Query("vehicle_id")
	portID := c.Query("port_id")
	if vehicleID == "" && portID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "vehicle_id or port_id is required"})
	}

	status := domain.ReservationStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown status"})
	}

	var (
		reservations []domain.Reservation
		err          error
	)
	if vehicleID != "" {
		reservations, err = h.booking.ListForVehicle(c.Context(), vehicleID, status)
	} else {
		reservations, err = h.booking.ListForPort(c.Context(), portID, time.Time{})
		if status != "" {
			filtered := reservations[:0]
			for _, r := range reservations {
				if r.Status == status {
					filtered = append(filtered, r)
				}
			}
			reservations = filtered
		}
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"reservations": reservations})
}

func (h *ReservationHandler) Confirm(c *fiber.Ctx) error {
	return h.transition(c, h.booking.Confirm)
}

func (h *ReservationHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.booking.Cancel)
}

func (h *ReservationHandler) Start(c *fiber.Ctx) error {
	return h.transition(c, h.booking.MarkActive)
}

func (h *ReservationHandler) Complete(c *fiber.Ctx) error {
	return h.transition(c, h.booking.MarkCompleted)
}

func (h *ReservationHandler) NoShow(c *fiber.Ctx) error {
	return h.transition(c, h.booking.MarkNoShow)
}

func (h *ReservationHandler) transition(c *fiber.Ctx, op func(ctx context.Context, id string) (*domain.Reservation, error)) error {
	res, err := op(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func (h *ReservationHandler) ToggleReminder(c *fiber.Ctx) error {
	res, err := h.booking.ToggleReminder(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}
