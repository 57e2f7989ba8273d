package components

import "github.com/cepro/spiceev/loadingcurve"

// VehicleType is the shared template a Vehicle instance is built from.
type VehicleType struct {
	Name string

	CapacityKWh        float64 // kWh
	MileageKWhPer100Km float64 // only used by scenario generation, not the core

	ChargingCurve loadingcurve.Curve

	// MinChargingPower is the fraction of the curve's peak power below which
	// the vehicle refuses to charge at all (the refuse-charge threshold).
	MinChargingPower float64

	V2G              bool
	V2GPowerFactor   float64 // fraction of the curve applied when discharging
	DischargeLimit   float64 // minimum SoC while discharging
	BatteryEfficiency float64
}

// CurvePeak returns the maximum power anywhere on the charging curve.
func (vt *VehicleType) CurvePeak() float64 {
	peak := 0.0
	for _, p := range vt.ChargingCurve.Points() {
		if p.Y > peak {
			peak = p.Y
		}
	}
	return peak
}

// MinChargingPowerKW returns the absolute refuse-charge threshold in kW.
func (vt *VehicleType) MinChargingPowerKW() float64 {
	return vt.MinChargingPower * vt.CurvePeak()
}
