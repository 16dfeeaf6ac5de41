package pricing

import (
	"testing"
)

func TestEstimator_Estimate(t *testing.T) {
	est := NewEstimator(0.9)

	tests := []struct {
		name        string
		minutes     int
		powerKw     float64
		pricePerKwh float64
		wantEnergy  float64
		wantCost    float64
	}{
		{"one hour at 60kW", 60, 60, 10, 54.0, 540.00},
		{"ninety minutes at 50kW", 90, 50, 12.5, 67.5, 843.75},
		{"half hour slow AC", 30, 7.4, 8, 3.3, 26.40},
		{"three hours medium AC", 180, 22, 9.99, 59.4, 593.41},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			energy, cost, err := est.Estimate(tt.minutes, tt.powerKw, tt.pricePerKwh)
			if err != nil {
				t.Fatalf("Estimate failed: %v", err)
			}
			if energy != tt.wantEnergy {
				t.Errorf("energy = %v, want %v", energy, tt.wantEnergy)
			}
			if cost != tt.wantCost {
				t.Errorf("cost = %v, want %v", cost, tt.wantCost)
			}
		})
	}
}

func TestEstimator_RejectsNonPositiveInput(t *testing.T) {
	est := NewEstimator(0.9)

	if _, _, err := est.Estimate(0, 60, 10); err == nil {
		t.Error("expected error for zero duration")
	}
	if _, _, err := est.Estimate(-30, 60, 10); err == nil {
		t.Error("expected error for negative duration")
	}
	if _, _, err := est.Estimate(60, 0, 10); err == nil {
		t.Error("expected error for zero power")
	}
}

func TestNewEstimator_ClampsEfficiency(t *testing.T) {
	// Out-of-range efficiencies fall back to the default
	for _, eff := range []float64{0, -1, 1.5} {
		est := NewEstimator(eff)
		energy, _, err := est.Estimate(60, 100, 1)
		if err != nil {
			t.Fatalf("Estimate failed: %v", err)
		}
		if energy != 90.0 {
			t.Errorf("efficiency %v: energy = %v, want 90.0 (default efficiency)", eff, energy)
		}
	}
}
