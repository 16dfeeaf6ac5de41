package domain

import (
	"errors"
	"fmt"
	"time"
)

// The engine's error taxonomy. All of these are value-level results:
// every failure is local to one request and leaves the store untouched.

// ErrNotFound is the sentinel for unknown station/port/vehicle/reservation ids.
var ErrNotFound = errors.New("not found")

// NotFoundError wraps ErrNotFound with the entity kind and id.
func NotFoundError(entity, id string) error {
	return fmt.Errorf("%s %q: %w", entity, id, ErrNotFound)
}

// ConflictError reports that the requested interval overlaps an
// existing reservation holding the port. It carries the blocking
// reservation's id so callers can offer alternatives; it is never
// auto-resolved internally.
type ConflictError struct {
	PortID     string
	BlockingID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("port %s: interval conflicts with reservation %s", e.PortID, e.BlockingID)
}

// ConnectorMismatchError reports a vehicle/port connector incompatibility.
type ConnectorMismatchError struct {
	VehicleConnector ConnectorType
	PortConnector    ConnectorType
}

func (e *ConnectorMismatchError) Error() string {
	return fmt.Sprintf("vehicle connector %s does not match port connector %s", e.VehicleConnector, e.PortConnector)
}

// InvalidDurationError reports a requested duration outside the
// configured bounds, or one not aligned to the slot granularity.
type InvalidDurationError struct {
	Minutes int
	Min     int
	Max     int
	Step    int
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("duration %d minutes outside bounds [%d, %d] in steps of %d", e.Minutes, e.Min, e.Max, e.Step)
}

// InvalidStartError reports a start time in the past.
type InvalidStartError struct {
	Start time.Time
}

func (e *InvalidStartError) Error() string {
	return fmt.Sprintf("start time %s is in the past", e.Start.Format(time.RFC3339))
}

// InvalidTransitionError reports a lifecycle change the transition
// table does not allow. It indicates caller/engine desynchronization.
type InvalidTransitionError struct {
	From ReservationStatus
	To   ReservationStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

// MaintenancePortError reports an attempt to book a port under
// maintenance. Treated like a conflict by UIs but distinguished by code.
type MaintenancePortError struct {
	PortID string
}

func (e *MaintenancePortError) Error() string {
	return fmt.Sprintf("port %s is under maintenance", e.PortID)
}

// ErrorCode maps engine errors to the machine-readable codes the API
// layer returns. Callers are expected to map each code to a specific
// corrective action rather than a generic failure message.
func ErrorCode(err error) string {
	var (
		conflict    *ConflictError
		mismatch    *ConnectorMismatchError
		duration    *InvalidDurationError
		start       *InvalidStartError
		transition  *InvalidTransitionError
		maintenance *MaintenancePortError
	)
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.As(err, &conflict):
		return "conflict"
	case errors.As(err, &mismatch):
		return "connector_mismatch"
	case errors.As(err, &duration):
		return "invalid_duration"
	case errors.As(err, &start):
		return "invalid_start"
	case errors.As(err, &transition):
		return "invalid_transition"
	case errors.As(err, &maintenance):
		return "maintenance_port"
	}
	return "internal"
}
