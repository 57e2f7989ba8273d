package strategy

import (
	"github.com/cepro/spiceev/components"
	"github.com/cepro/spiceev/scenario"
)

// PeakLoadWindow treats GridConnector.Windows as "inside a peak window to
// avoid": outside windows it charges Balanced; inside, it only assigns the
// minimal constant power (via the same binary search Balanced uses) needed
// to still meet each vehicle's departure, and lets stationary batteries
// discharge to shave the window's peak.
type PeakLoadWindow struct{}

func (PeakLoadWindow) Step(w *scenario.World) error {
	for _, gcID := range w.GridConnectorIDs() {
		gc := w.GridConnectors[gcID]

		if !gc.Windows {
			if err := (Balanced{}).stepGC(w, gc); err != nil {
				return err
			}
			continue
		}

		for _, vID := range OrderVehicles(w, gcID, OrderEarliestLeaveFirst, w.CurrentTime) {
			v := w.Vehicles[vID]
			cs := w.ChargingStations[v.ConnectedChargingStation]
			vt := w.VehicleTypes[v.TypeName]

			standing, known := v.StandingTime(w.CurrentTime)
			power := 0.0
			if known {
				power = BalancedPower(w, v, standing.Hours())
			} else if v.Battery.Soc < v.DesiredSoc {
				power = cs.MaxPower
			}
			Commit(power, cs, v, vt, gc)
		}

		dischargeBatteriesToShavePeak(w, gc)
	}
	return nil
}

// dischargeBatteriesToShavePeak pushes every stationary battery at gc into
// discharge, up to its curve ceiling at its current SoC, reducing the GC's
// peak inside the window; they recharge outside the window via the normal
// Balanced/surplus paths once Windows clears.
func dischargeBatteriesToShavePeak(w *scenario.World, gc *components.GridConnector) {
	for _, battID := range w.StationaryBatteryIDs() {
		batt := w.StationaryBatteries[battID]
		if batt.ParentGC != gc.ID || batt.Battery.Soc <= 0 {
			continue
		}
		power := batt.Battery.Curve.PowerAt(batt.Battery.Soc)
		batt.CurrentPower = -power
		gc.AddLoad(scenario.BatteryPrefix+battID, -power)
	}
}
