package pricing

import (
	"fmt"
	"math"
)

// DefaultEfficiency is the charging efficiency assumed when the
// deployment does not configure one.
const DefaultEfficiency = 0.9

// Estimator converts a reservation's duration and the port's rated
// power into an energy and cost estimate. Pure; no side effects.
type Estimator struct {
	efficiency float64
}

func NewEstimator(efficiency float64) *Estimator {
	if efficiency <= 0 || efficiency > 1 {
		efficiency = DefaultEfficiency
	}
	return &Estimator{efficiency: efficiency}
}

// Estimate returns the estimated delivered energy (kWh, 1 decimal) and
// cost (currency units, 2 decimals) for charging durationMinutes at
// powerKw with the station's pricePerKwh.
func (e *Estimator) Estimate(durationMinutes int, powerKw, pricePerKwh float64) (energyKwh, cost float64, err error) {
	if durationMinutes <= 0 {
		return 0, 0, fmt.Errorf("duration must be positive, got %d", durationMinutes)
	}
	if powerKw <= 0 {
		return 0, 0, fmt.Errorf("port power must be positive, got %f", powerKw)
	}

	energyKwh = round1(float64(durationMinutes) / 60.0 * powerKw * e.efficiency)
	cost = round2(energyKwh * pricePerKwh)
	return energyKwh, cost, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
