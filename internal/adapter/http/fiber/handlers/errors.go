package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ommanoj88/sev-backend/internal/domain"
)

// statusFor maps the engine's error codes onto HTTP statuses. Conflicts
// and maintenance blocks are 409 so clients retry with a different
// slot; validation failures are 422 so clients fix the request.
func statusFor(code string) int {
	switch code {
	case "not_found":
		return fiber.StatusNotFound
	case "conflict", "maintenance_port":
		return fiber.StatusConflict
	case "connector_mismatch", "invalid_duration", "invalid_start", "invalid_transition":
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	code := domain.ErrorCode(err)
	body := fiber.Map{
		"error": err.Error(),
		"code":  code,
	}

	// Conflicts carry the blocking reservation so clients can show it.
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		body["blocking_reservation_id"] = conflict.BlockingID
	}

	return c.Status(statusFor(code)).JSON(body)
}
