package ports

import (
	"context"
	"time"

	"github.com/ommanoj88/sev-backend/internal/domain"
)

// StationRepository is the persistence contract behind the catalog.
// Administrative writes go through Save/UpdatePortStatus and must be
// visible on the next read.
type StationRepository interface {
	Save(ctx context.Context, station *domain.Station) error
	FindByID(ctx context.Context, id string) (*domain.Station, error)
	FindAll(ctx context.Context) ([]domain.Station, error)
	FindPort(ctx context.Context, stationID, portID string) (*domain.Port, error)
	ListPorts(ctx context.Context, stationID string, excludeMaintenance bool) ([]domain.Port, error)
	UpdatePortStatus(ctx context.Context, stationID, portID string, status domain.PortStatus) error
}

// VehicleRegistry exposes the external fleet registry's vehicle records.
// The engine only reads it, for connector checks and display labels.
type VehicleRegistry interface {
	FindByID(ctx context.Context, id string) (*domain.Vehicle, error)
}

// ReservationStore holds reservations and owns the non-overlap
// invariant. It is the sole writer of reservation state and the single
// serialization point for concurrent booking attempts: Reserve executes
// its overlap-check-then-insert atomically per port.
type ReservationStore interface {
	// Reserve atomically checks the port's invariant set for overlap
	// with res and inserts it. Returns *domain.ConflictError when an
	// existing pending/confirmed/active reservation blocks the interval.
	Reserve(ctx context.Context, res *domain.Reservation) error

	Get(ctx context.Context, id string) (*domain.Reservation, error)

	// SetStatus applies one lifecycle transition, enforcing the
	// transition table. The stored status is unchanged on rejection.
	SetStatus(ctx context.Context, id string, next domain.ReservationStatus) (*domain.Reservation, error)

	// SetReminder flips the reminder flag independent of status.
	SetReminder(ctx context.Context, id string, on bool) (*domain.Reservation, error)

	ListForPort(ctx context.Context, portID string, onOrAfter time.Time) ([]domain.Reservation, error)
	ListForVehicle(ctx context.Context, vehicleID string, status domain.ReservationStatus) ([]domain.Reservation, error)

	// ListPendingOlderThan supports the externally driven expiry sweep.
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.Reservation, error)
}
