package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ommanoj88/sev-backend/internal/domain"
	"github.com/ommanoj88/sev-backend/internal/ports"
)

type StationHandler struct {
	catalog ports.CatalogService
	log     *zap.Logger
}

func NewStationHandler(catalog ports.CatalogService, log *zap.Logger) *StationHandler {
	return &StationHandler{catalog: catalog, log: log}
}

func (h *StationHandler) List(c *fiber.Ctx) error {
	stations, err := h.catalog.ListStations(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"stations": stations})
}

func (h *StationHandler) Get(c *fiber.Ctx) error {
	station, err := h.catalog.GetStation(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(station)
}

func (h *StationHandler) ListPorts(c *fiber.Ctx) error {
	excludeMaintenance := c.QueryBool("bookable", false)
	ports, err := h.catalog.ListPorts(c.Context(), c.Params("id"), excludeMaintenance)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ports": ports})
}

// Administrative surface. Routed behind the admin auth middleware.

func (h *StationHandler) Upsert(c *fiber.Ctx) error {
	var station domain.Station
	if err := c.BodyParser(&station); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if station.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "station id is required"})
	}

	if err := h.catalog.UpsertStation(c.Context(), &station); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(station)
}

type setPortStatusRequest struct {
	Status string `json:"status"`
}

func (h *StationHandler) SetPortStatus(c *fiber.Ctx) error {
	var req setPortStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	status := domain.PortStatus(req.Status)
	switch status {
	case domain.PortStatusAvailable, domain.PortStatusOccupied, domain.PortStatusReserved, domain.PortStatusMaintenance:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown port status"})
	}

	if err := h.catalog.SetPortStatus(c.Context(), c.Params("id"), c.Params("portId"), status); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
