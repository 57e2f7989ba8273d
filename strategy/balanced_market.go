package strategy

import (
	"math"
	"sort"
	"time"

	"github.com/cepro/spiceev/components"
	"github.com/cepro/spiceev/events"
	"github.com/cepro/spiceev/scenario"
	"github.com/cepro/spiceev/simparams"
)

// BalancedMarket requires a cost time series visible over the next
// simparams.Horizon; for each vehicle it discretizes its standing time into
// Interval-wide slots sorted by ascending price and charges fully in the
// cheapest slots needed to reach DesiredSoc, falling back to Balanced for a
// vehicle with no known departure (and so no standing-time horizon to rank).
type BalancedMarket struct{}

func (BalancedMarket) Step(w *scenario.World) error {
	for _, gcID := range w.GridConnectorIDs() {
		gc := w.GridConnectors[gcID]

		if !hasPriceSeries(w, gc) {
			w.WarnOnce(gcID, "balanced_market_missing_price")
			if err := (Balanced{}).stepGC(w, gc); err != nil {
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

			departure, known := v.EstimatedTimeOfDeparture, v.EstimatedTimeOfDeparture != nil
			if !known {
				power := BalancedPower(w, v, 0)
				Commit(power, cs, v, vt, gc)
				continue
			}

			horizonEnd := w.CurrentTime.Add(simparams.Horizon)
			if departure.Before(horizonEnd) {
				horizonEnd = *departure
			}
			Commit(cheapestSlotPower(w, gc, v, vt, cs, horizonEnd), cs, v, vt, gc)
		}

		DistributeSurplus(w, gc, w.Interval, true)
	}
	return nil
}

func hasPriceSeries(w *scenario.World, gc *components.GridConnector) bool {
	return gc.Cost != nil
}

// cheapestSlotPower ranks every Interval-wide slot from now to horizonEnd by
// price and returns the power to commit for the current slot: full power
// while it is among the cheapest slots still needed, zero once the need is
// covered, and a binary-searched partial power (via BalancedPower, over a
// single slot's duration) for whichever selected slot is the last one
// needed, so the vehicle reaches DesiredSoc exactly rather than overshooting
// it by charging a whole slot at full power when only part of one is
// required (§4.7, §8 scenario 4).
func cheapestSlotPower(w *scenario.World, gc *components.GridConnector, v *components.Vehicle, vt *components.VehicleType, cs *components.ChargingStation, horizonEnd time.Time) float64 {
	type slot struct {
		start time.Time
		price float64
	}
	var slots []slot
	for t := w.CurrentTime; t.Before(horizonEnd); t = t.Add(w.Interval) {
		slots = append(slots, slot{start: t, price: priceAt(w, gc, t)})
	}
	if len(slots) == 0 {
		return 0
	}

	sort.SliceStable(slots, func(i, j int) bool { return slots[i].price < slots[j].price })

	dt := w.Interval.Hours()
	energyPerSlot := math.Min(cs.MaxPower, v.Battery.Curve.PowerAt(v.Battery.Soc)) * dt * v.Battery.Efficiency
	remaining := v.EnergyToDesiredSoc()

	for _, s := range slots {
		if remaining <= simparams.EPS {
			break
		}
		isNow := s.start.Equal(w.CurrentTime)
		if remaining < energyPerSlot {
			if isNow {
				return BalancedPower(w, v, dt)
			}
			break
		}
		if isNow {
			return cs.MaxPower
		}
		remaining -= energyPerSlot
	}
	return 0
}

// priceAt returns the price a GridOperatorSignal schedules for gc at t, or
// the GC's current cost evaluated at its present load if none is scheduled
// for that time — a reasonable heuristic for ranking future slots without
// knowing their future load.
func priceAt(w *scenario.World, gc *components.GridConnector, t time.Time) float64 {
	best := gc.Cost
	bestStart := time.Time{}
	for _, e := range w.Events.VisibleAt(w.CurrentTime) {
		sig, ok := e.(*events.GridOperatorSignal)
		if !ok || sig.GridConnectorID != gc.ID || sig.Cost == nil {
			continue
		}
		if sig.StartTime().After(t) {
			continue
		}
		if sig.StartTime().After(bestStart) {
			bestStart = sig.StartTime()
			best = sig.Cost
		}
	}
	if best == nil {
		return 0
	}
	return best.Evaluate(gc.CurrentLoad())
}

