package domain

import (
	"time"
)

// ConnectorType is the charging standard a port exposes and a vehicle
// accepts. A booking is only valid when the two match.
type ConnectorType string

const (
	ConnectorFastDC   ConnectorType = "fast_dc"
	ConnectorMediumAC ConnectorType = "medium_ac"
	ConnectorSlowAC   ConnectorType = "slow_ac"
)

type PortStatus string

const (
	PortStatusAvailable   PortStatus = "available"
	PortStatusOccupied    PortStatus = "occupied"
	PortStatusReserved    PortStatus = "reserved"
	PortStatusMaintenance PortStatus = "maintenance"
)

// Station is a charging location with an ordered set of ports. Stations
// are owned by the fleet-operations process; the engine reads them and
// only mutates them through the administrative catalog path.
type Station struct {
	ID          string  `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	PricePerKwh float64 `json:"price_per_kwh"`
	Rating      float64 `json:"rating"`
	Ports       []Port  `json:"ports" gorm:"foreignKey:StationID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Port is a single bookable connector at a station.
type Port struct {
	ID        string        `json:"id" gorm:"primaryKey"`
	StationID string        `json:"station_id" gorm:"index"`
	Connector ConnectorType `json:"connector"`
	PowerKw   float64       `json:"power_kw"`
	Status    PortStatus    `json:"status"`
}

// Bookable reports whether the port can accept new reservations at all.
// Ports under maintenance are invisible to slot generation regardless
// of what reservations exist on them.
func (p *Port) Bookable() bool {
	return p.Status != PortStatusMaintenance
}
