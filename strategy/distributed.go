package strategy

import "github.com/cepro/spiceev/scenario"

// Distributed handles a fleet spread across several GCs whose stations are
// tagged depot/opp by name suffix (components.ChargingStation.IsDepot). Opp
// stations charge greedy; depot stations charge balanced, with vehicles
// ordered by ascending SoC so that — when the GC is headroom-constrained —
// the lowest-SoC vehicles are served first, mirroring the reserved
// look-ahead the spec describes for depots with fewer stations than
// arriving vehicles (simparams.CHorizon ~ one interval, so this per-step
// ordering already gives the lowest-SoC vehicle first refusal each tick).
type Distributed struct{}

func (Distributed) Step(w *scenario.World) error {
	for _, gcID := range w.GridConnectorIDs() {
		gc := w.GridConnectors[gcID]

		depot := OrderVehicles(w, gcID, OrderLowestFirst, w.CurrentTime)
		for _, vID := range depot {
			v := w.Vehicles[vID]
			cs := w.ChargingStations[v.ConnectedChargingStation]
			if !cs.IsDepot() {
				continue
			}
			vt := w.VehicleTypes[v.TypeName]

			standing, known := v.StandingTime(w.CurrentTime)
			if known {
				Commit(BalancedPower(w, v, standing.Hours()), cs, v, vt, gc)
			} else if v.Battery.Soc < v.DesiredSoc {
				Commit(cs.MaxPower, cs, v, vt, gc)
			} else {
				Commit(0, cs, v, vt, gc)
			}
		}

		opp := BelowDesiredFirst(w, OrderVehicles(w, gcID, OrderEarliestLeaveFirst, w.CurrentTime))
		opportunistic := OpportunisticAllowed(gc)
		for _, vID := range opp {
			v := w.Vehicles[vID]
			cs := w.ChargingStations[v.ConnectedChargingStation]
			if cs.IsDepot() {
				continue
			}
			vt := w.VehicleTypes[v.TypeName]

			if v.Battery.Soc >= v.DesiredSoc && !opportunistic {
				Commit(0, cs, v, vt, gc)
				continue
			}
			Commit(cs.MaxPower, cs, v, vt, gc)
		}

		DistributeSurplus(w, gc, w.Interval, true)
	}
	return nil
}
