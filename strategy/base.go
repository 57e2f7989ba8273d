package strategy

import (
	"math"
	"sort"
	"time"

	"github.com/cepro/spiceev/components"
	"github.com/cepro/spiceev/scenario"
	"github.com/cepro/spiceev/simparams"
)

// OpportunisticAllowed reports whether a strategy may keep charging a
// vehicle past its desired SoC this interval: either the current price is
// at or below PriceThreshold, or there is unabsorbed local-generation
// surplus at gc.
func OpportunisticAllowed(gc *components.GridConnector) bool {
	if gc.Cost != nil && gc.Cost.Evaluate(gc.CurrentLoad()) <= simparams.PriceThreshold {
		return true
	}
	return -gc.CurrentLoad() > 0
}

// ConnectedStations returns the ids of every occupied charging station at
// gc, in lexicographic station-id order.
func ConnectedStations(w *scenario.World, gcID string) []string {
	var stationIDs []string
	for _, csID := range w.StationsAtGC(gcID) {
		if !w.ChargingStations[csID].IsFree() {
			stationIDs = append(stationIDs, csID)
		}
	}
	return stationIDs
}

// ClampPower reduces requested to the minimum of the station's max power,
// the GC's remaining headroom, and the vehicle's curve ceiling at its
// current SoC, then zeroes it out if it falls below the refuse-charge
// threshold (the higher of the station's min power and the vehicle type's
// curve-relative minimum).
func ClampPower(requested float64, station *components.ChargingStation, v *components.Vehicle, vt *components.VehicleType, gc *components.GridConnector) float64 {
	if requested <= 0 {
		return 0
	}
	limit := math.Min(requested, station.MaxPower)
	limit = math.Min(limit, v.Battery.Curve.PowerAt(v.Battery.Soc))
	limit = math.Min(limit, gc.Headroom(scenario.StationPrefix+station.ID))
	if limit <= 0 {
		return 0
	}
	threshold := station.MinPower
	if vt != nil {
		threshold = math.Max(threshold, vt.MinChargingPowerKW())
	}
	if limit < threshold {
		return 0
	}
	return limit
}

// ClampDischargePower reduces a requested discharge (V2G export) power to
// the minimum of the station's max power and the curve ceiling at the
// vehicle's current SoC, refusing to discharge at all once SoC has reached
// dischargeLimit; the stepper's Battery.Unload call still stops exactly at
// dischargeLimit regardless of the requested power.
func ClampDischargePower(requested float64, station *components.ChargingStation, v *components.Vehicle, dischargeLimit float64) float64 {
	if requested <= 0 || v.Battery.Soc <= dischargeLimit {
		return 0
	}
	limit := math.Min(requested, station.MaxPower)
	limit = math.Min(limit, v.Battery.Curve.PowerAt(v.Battery.Soc))
	if limit <= 0 {
		return 0
	}
	return limit
}

// Commit clamps requested and assigns it to the station, recording the
// commitment on the GC so later-ordered vehicles' Headroom reflects it.
func Commit(requested float64, station *components.ChargingStation, v *components.Vehicle, vt *components.VehicleType, gc *components.GridConnector) float64 {
	power := ClampPower(requested, station, v, vt, gc)
	station.CurrentPower = power
	gc.AddLoad(scenario.StationPrefix+station.ID, power)
	return power
}

// VehicleOrder is one of the deterministic orderings §4.6 requires.
type VehicleOrder int

const (
	OrderEarliestLeaveFirst VehicleOrder = iota
	OrderNeedy
	OrderLowestFirst
)

// OrderVehicles returns the vehicle ids connected at gc, sorted per mode.
// Ties are broken by vehicle id so the ordering is fully deterministic.
func OrderVehicles(w *scenario.World, gcID string, mode VehicleOrder, now time.Time) []string {
	var ids []string
	for _, csID := range ConnectedStations(w, gcID) {
		ids = append(ids, w.ChargingStations[csID].CurrentVehicleID)
	}
	sort.Slice(ids, func(i, j int) bool {
		vi, vj := w.Vehicles[ids[i]], w.Vehicles[ids[j]]
		switch mode {
		case OrderEarliestLeaveFirst:
			di, oki := vi.StandingTime(now)
			dj, okj := vj.StandingTime(now)
			if oki != okj {
				return oki // a known departure sorts before an unknown one
			}
			if di != dj {
				return di < dj
			}
		case OrderNeedy:
			ni := vi.DesiredSoc - vi.Battery.Soc
			nj := vj.DesiredSoc - vj.Battery.Soc
			if ni != nj {
				return ni > nj
			}
		case OrderLowestFirst:
			if vi.Battery.Soc != vj.Battery.Soc {
				return vi.Battery.Soc < vj.Battery.Soc
			}
		}
		return ids[i] < ids[j]
	})
	return ids
}

// BelowDesiredFirst partitions ids (already ordered) so every vehicle below
// its desired SoC precedes every vehicle at or above it, preserving the
// relative order within each partition. Used by Greedy.
func BelowDesiredFirst(w *scenario.World, ids []string) []string {
	var below, atOrAbove []string
	for _, id := range ids {
		v := w.Vehicles[id]
		if v.Battery.Soc < v.DesiredSoc {
			below = append(below, id)
		} else {
			atOrAbove = append(atOrAbove, id)
		}
	}
	return append(below, atOrAbove...)
}

// DistributeSurplus routes any unabsorbed local-generation surplus at gc
// into stationary batteries first, then — when includeV2G is set — into
// V2G-capable connected vehicles up to their desired SoC, per §4.6.
func DistributeSurplus(w *scenario.World, gc *components.GridConnector, dt time.Duration, includeV2G bool) {
	surplus := -gc.CurrentLoad()
	if surplus <= 0 {
		return
	}

	for _, battID := range w.StationaryBatteryIDs() {
		if surplus <= 0 {
			break
		}
		batt := w.StationaryBatteries[battID]
		if batt.ParentGC != gc.ID {
			continue
		}
		room := batt.Battery.AvailablePower(dt.Hours(), 1)
		take := math.Min(surplus, room)
		if take <= 0 {
			continue
		}
		batt.CurrentPower = take
		gc.AddLoad(scenario.BatteryPrefix+battID, take)
		surplus -= take
	}

	if !includeV2G {
		return
	}
	for _, csID := range ConnectedStations(w, gc.ID) {
		if surplus <= 0 {
			break
		}
		cs := w.ChargingStations[csID]
		v := w.Vehicles[cs.CurrentVehicleID]
		vt := w.VehicleTypes[v.TypeName]
		if vt == nil || !vt.V2G {
			continue
		}
		if v.Battery.Soc >= v.DesiredSoc {
			continue
		}
		before := cs.CurrentPower
		after := Commit(before+surplus, cs, v, vt, gc)
		surplus -= after - before
	}
}
