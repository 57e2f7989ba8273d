package strategy

import (
	"github.com/cepro/spiceev/components"
	"github.com/cepro/spiceev/scenario"
)

// FlexSubMode selects which ordinary strategy FlexWindow runs inside its
// charging windows.
type FlexSubMode int

const (
	FlexSubGreedy FlexSubMode = iota
	FlexSubNeedy
	FlexSubBalanced
)

// FlexWindow applies Sub inside GridConnector.Windows, and outside it
// charges only what BalancedPower says is strictly necessary to still meet
// each vehicle's departure — which, being a constant power over the
// vehicle's remaining standing time, keeps the outside-window profile as
// flat as a myopic per-vehicle allocation can make it.
type FlexWindow struct {
	Sub FlexSubMode
}

func (f FlexWindow) Step(w *scenario.World) error {
	for _, gcID := range w.GridConnectorIDs() {
		gc := w.GridConnectors[gcID]

		if gc.Windows {
			var err error
			switch f.Sub {
			case FlexSubGreedy:
				err = (Greedy{}).stepGC(w, gc)
			case FlexSubNeedy:
				err = stepNeedy(w, gc)
			case FlexSubBalanced:
				err = (Balanced{}).stepGC(w, gc)
			}
			if err != nil {
				return err
			}
			continue
		}

		for _, vID := range OrderVehicles(w, gcID, OrderEarliestLeaveFirst, w.CurrentTime) {
			v := w.Vehicles[vID]
			cs := w.ChargingStations[v.ConnectedChargingStation]
			vt := w.VehicleTypes[v.TypeName]

			if ApplyV2G(w, gc, v, vt, cs) {
				continue
			}

			standing, known := v.StandingTime(w.CurrentTime)
			power := 0.0
			if known {
				power = BalancedPower(w, v, standing.Hours())
			} else if v.Battery.Soc < v.DesiredSoc {
				power = cs.MaxPower
			}
			Commit(power, cs, v, vt, gc)
		}
	}
	return nil
}

// stepNeedy assigns full power in order of greatest remaining need
// (DesiredSoc - Soc), used as FlexWindow's "needy" in-window sub-strategy.
func stepNeedy(w *scenario.World, gc *components.GridConnector) error {
	for _, vID := range OrderVehicles(w, gc.ID, OrderNeedy, w.CurrentTime) {
		v := w.Vehicles[vID]
		cs := w.ChargingStations[v.ConnectedChargingStation]
		vt := w.VehicleTypes[v.TypeName]
		if v.Battery.Soc >= v.DesiredSoc {
			Commit(0, cs, v, vt, gc)
			continue
		}
		Commit(cs.MaxPower, cs, v, vt, gc)
	}
	return nil
}
