package strategy

import (
	"github.com/cepro/spiceev/components"
	"github.com/cepro/spiceev/scenario"
)

// Greedy serves vehicles below their desired SoC first (ordered by earliest
// departure within that group), assigning each the maximum power its
// station, GC headroom and curve allow, until it reaches DesiredSoc. It may
// keep charging past DesiredSoc only when price is at or below
// simparams.PriceThreshold or surplus local generation is available.
// Stationary batteries only ever charge from surplus.
type Greedy struct{}

func (g Greedy) Step(w *scenario.World) error {
	for _, gcID := range w.GridConnectorIDs() {
		if err := g.stepGC(w, w.GridConnectors[gcID]); err != nil {
			return err
		}
	}
	return nil
}

// stepGC runs Greedy allocation for a single GC; exposed so FlexWindow can
// reuse it as a sub-strategy inside its charging windows.
func (Greedy) stepGC(w *scenario.World, gc *components.GridConnector) error {
	order := BelowDesiredFirst(w, OrderVehicles(w, gc.ID, OrderEarliestLeaveFirst, w.CurrentTime))
	opportunistic := OpportunisticAllowed(gc)

	for _, vID := range order {
		v := w.Vehicles[vID]
		cs := w.ChargingStations[v.ConnectedChargingStation]
		vt := w.VehicleTypes[v.TypeName]

		if v.Battery.Soc >= v.DesiredSoc && !opportunistic {
			Commit(0, cs, v, vt, gc)
			continue
		}
		Commit(cs.MaxPower, cs, v, vt, gc)
	}

	DistributeSurplus(w, gc, w.Interval, false)
	return nil
}
