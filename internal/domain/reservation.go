package domain

import (
	"time"
)

// ReservationStatus represents the status of a reservation
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusActive    ReservationStatus = "active" // vehicle arrived and is charging
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusNoShow    ReservationStatus = "no_show"
)

// allowedTransitions is the authoritative lifecycle table. Transitions
// are one-directional; completed, cancelled and no_show are terminal.
var allowedTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusPending:   {ReservationStatusConfirmed, ReservationStatusCancelled},
	ReservationStatusConfirmed: {ReservationStatusActive, ReservationStatusCancelled},
	ReservationStatusActive:    {ReservationStatusCompleted, ReservationStatusNoShow, ReservationStatusCancelled},
}

// CanTransitionTo reports whether the lifecycle table permits moving
// from s to next.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions exist from s.
func (s ReservationStatus) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

// Valid reports whether s is one of the known lifecycle states.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusActive,
		ReservationStatusCompleted, ReservationStatusCancelled, ReservationStatusNoShow:
		return true
	}
	return false
}

// HoldsPort reports whether a reservation in this status occupies its
// interval on the port. Only these statuses participate in the
// non-overlap invariant and in slot occupancy.
func (s ReservationStatus) HoldsPort() bool {
	return s == ReservationStatusPending || s == ReservationStatusConfirmed || s == ReservationStatusActive
}

// Reservation is a vehicle's claim on a port for an exact time interval.
type Reservation struct {
	ID        string `json:"id" gorm:"primaryKey"`
	Code      string `json:"code" gorm:"index"`
	StationID string `json:"station_id" gorm:"index"`
	PortID    string `json:"port_id" gorm:"index"`
	VehicleID string `json:"vehicle_id" gorm:"index"`

	Status    ReservationStatus `json:"status" gorm:"index"`
	StartTime time.Time         `json:"start_time" gorm:"index"`
	EndTime   time.Time         `json:"end_time"`

	EstimatedEnergyKwh float64 `json:"estimated_energy_kwh"`
	EstimatedCost      float64 `json:"estimated_cost"`

	Reminder  bool      `json:"reminder"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Overlaps applies the half-open interval comparison: [r.Start, r.End)
// intersects [start, end) iff r.Start < end and r.End > start.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && r.EndTime.After(start)
}

// HoldsPort reports whether this reservation currently blocks its
// interval on the port.
func (r *Reservation) HoldsPort() bool {
	return r.Status.HoldsPort()
}

// TimeSlot is a derived display projection of availability. Slots are
// generated on demand from port status and store state, never persisted;
// the authoritative overlap check always uses exact intervals.
type TimeSlot struct {
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Available     bool      `json:"available"`
	ReservationID string    `json:"reservation_id,omitempty"`
	VehicleLabel  string    `json:"vehicle_label,omitempty"`
}
