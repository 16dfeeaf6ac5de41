package domain

// Vehicle is the subset of the external fleet registry's record the
// engine needs: connector compatibility plus a label for slot displays.
type Vehicle struct {
	ID                 string        `json:"id"`
	Label              string        `json:"label"`
	Connector          ConnectorType `json:"connector"`
	BatteryCapacityKwh float64       `json:"battery_capacity_kwh"`
	ChargeLevel        float64       `json:"charge_level"` // 0..100 percent
}
