package strategy

import (
	"github.com/cepro/spiceev/components"
	"github.com/cepro/spiceev/scenario"
	"github.com/cepro/spiceev/simparams"
)

// ApplyV2G considers discharging a V2G-capable, connected vehicle into the
// GC this interval: it only fires above simparams.PriceThreshold (a "high
// price" interval, the inverse of OpportunisticAllowed's cheap-charging
// condition), only down to vt.DischargeLimit, scaled by vt.V2GPowerFactor,
// and only when there is still standing time left to refill to DesiredSoc
// before EstimatedTimeOfDeparture. It sets station.CurrentPower negative
// (export) and returns true if it discharged anything. Called by
// Balanced-style strategies (balanced, balanced-market, schedule,
// flex-window) for each V2G vehicle before their normal charge assignment.
func ApplyV2G(w *scenario.World, gc *components.GridConnector, v *components.Vehicle, vt *components.VehicleType, cs *components.ChargingStation) bool {
	if vt == nil || !vt.V2G {
		return false
	}
	if gc.Cost == nil || gc.Cost.Evaluate(gc.CurrentLoad()) <= simparams.PriceThreshold {
		return false
	}
	standing, known := v.StandingTime(w.CurrentTime)
	if !known {
		return false
	}
	refillHours, err := v.Battery.Curve.TimeToReach(vt.DischargeLimit, v.DesiredSoc, v.Battery.Capacity, v.Battery.Efficiency)
	if err != nil || refillHours >= standing.Hours() {
		return false // not enough standing time left to discharge and still refill by departure
	}

	ceiling := v.Battery.Curve.PowerAt(v.Battery.Soc) * vt.V2GPowerFactor
	power := ClampDischargePower(ceiling, cs, v, vt.DischargeLimit)
	if power <= 0 {
		return false
	}
	cs.CurrentPower = -power
	gc.AddLoad(scenario.StationPrefix+cs.ID, -power)
	return true
}
