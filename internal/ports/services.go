package ports

import (
	"context"
	"time"

	"github.com/ommanoj88/sev-backend/internal/domain"
)

// CatalogService is the read-mostly registry of stations and ports.
type CatalogService interface {
	GetStation(ctx context.Context, id string) (*domain.Station, error)
	ListStations(ctx context.Context) ([]domain.Station, error)
	GetPort(ctx context.Context, stationID, portID string) (*domain.Port, error)
	ListPorts(ctx context.Context, stationID string, excludeMaintenance bool) ([]domain.Port, error)

	// Administrative path. Infrequent; must be visible to availability
	// on the next read.
	UpsertStation(ctx context.Context, station *domain.Station) error
	SetPortStatus(ctx context.Context, stationID, portID string, status domain.PortStatus) error
}

// AvailabilityService projects port occupancy onto a fixed slot grid.
type AvailabilityService interface {
	// Slots partitions the operating window of the given calendar day
	// into granularity-sized slots and marks each free or occupied.
	Slots(ctx context.Context, stationID, portID string, date time.Time) ([]domain.TimeSlot, error)
}

// BookingRequest represents a booking attempt entering the engine.
type BookingRequest struct {
	StationID       string
	PortID          string
	VehicleID       string
	StartTime       time.Time
	DurationMinutes int
}

// BookingService orchestrates the reservation lifecycle.
type BookingService interface {
	// Book validates the request, delegates the exclusivity check to
	// the store, attaches energy/cost estimates and returns the new
	// pending reservation. Conflicts surface unchanged to the caller.
	Book(ctx context.Context, req *BookingRequest) (*domain.Reservation, error)

	Get(ctx context.Context, id string) (*domain.Reservation, error)
	ListForVehicle(ctx context.Context, vehicleID string, status domain.ReservationStatus) ([]domain.Reservation, error)
	ListForPort(ctx context.Context, portID string, onOrAfter time.Time) ([]domain.Reservation, error)

	Confirm(ctx context.Context, id string) (*domain.Reservation, error)
	Cancel(ctx context.Context, id string) (*domain.Reservation, error)
	MarkActive(ctx context.Context, id string) (*domain.Reservation, error)
	MarkCompleted(ctx context.Context, id string) (*domain.Reservation, error)
	MarkNoShow(ctx context.Context, id string) (*domain.Reservation, error)
	ToggleReminder(ctx context.Context, id string) (*domain.Reservation, error)

	// ExpirePending cancels pending reservations older than the
	// configured grace period. Driven by an external scheduler; the
	// engine keeps no implicit timers.
	ExpirePending(ctx context.Context) (int, error)
}

// ReservationEvent is the payload handed to the notification hook on
// transitions into confirmed and on reminder toggling.
type ReservationEvent struct {
	ReservationID string    `json:"reservation_id"`
	VehicleID     string    `json:"vehicle_id"`
	StationID     string    `json:"station_id"`
	StartTime     time.Time `json:"start_time"`
}

// Notifier is the outbound hook consumed by the external notification
// service. Delivery (push/SMS/email) is not the engine's concern.
type Notifier interface {
	ReservationConfirmed(ctx context.Context, ev ReservationEvent) error
	ReminderToggled(ctx context.Context, ev ReservationEvent) error
}

// Cache is a TTL'd key/value store used for catalog read-through.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}
