package strategy

import (
	"github.com/cepro/spiceev/components"
	"github.com/cepro/spiceev/scenario"
)

// ScheduleMode selects one of the two Schedule sub-strategies.
type ScheduleMode int

const (
	ScheduleCollective ScheduleMode = iota
	ScheduleIndividual
)

// Schedule follows a GC-level target power set externally (by a
// schedulesource adapter or a GridOperatorSignal). Deviations from the
// target are permitted — e.g. a vehicle that must leave before it reaches
// DesiredSoc overrides it — but are left for report/ to surface.
type Schedule struct {
	Mode ScheduleMode
}

func (s Schedule) Step(w *scenario.World) error {
	for _, gcID := range w.GridConnectorIDs() {
		gc := w.GridConnectors[gcID]

		if gc.Schedule == nil {
			w.WarnOnce(gcID, "schedule_missing_falls_back_to_balanced")
			if err := (Balanced{}).stepGC(w, gc); err != nil {
				return err
			}
			continue
		}

		switch s.Mode {
		case ScheduleCollective:
			stepCollective(w, gc)
		case ScheduleIndividual:
			stepIndividual(w, gc)
		}
	}
	return nil
}

// stepCollective distributes the GC's single target power over its fleet.
// Inside the core standing time, vehicles are ranked needy-first (largest
// gap to DesiredSoc first) and each takes what Commit allows of the target
// still unallocated this interval. There is no look-ahead to the window's
// end, so reaching DesiredSoc by then is not guaranteed. Outside the core
// standing time, behaves like Balanced toward each vehicle's own next
// departure.
func stepCollective(w *scenario.World, gc *components.GridConnector) {
	inCore := false
	if w.CoreStandingTime != nil {
		var err error
		inCore, err = w.CoreStandingTime.Contains(w.CurrentTime)
		if err != nil {
			inCore = false
		}
	}

	if !inCore {
		_ = (Balanced{}).stepGC(w, gc)
		return
	}

	target := *gc.Schedule
	order := OrderVehicles(w, gc.ID, OrderNeedy, w.CurrentTime)
	remaining := target

	for _, vID := range order {
		v := w.Vehicles[vID]
		cs := w.ChargingStations[v.ConnectedChargingStation]
		vt := w.VehicleTypes[v.TypeName]

		if ApplyV2G(w, gc, v, vt, cs) {
			continue
		}
		if remaining <= 0 {
			continue
		}
		before := cs.CurrentPower
		after := Commit(remaining, cs, v, vt, gc)
		remaining -= (after - before)
	}
}

// stepIndividual shares the GC target across vehicles proportionally to
// each one's remaining energy need to DesiredSoc.
func stepIndividual(w *scenario.World, gc *components.GridConnector) {
	target := *gc.Schedule
	ids := ConnectedStations(w, gc.ID)

	totalNeed := 0.0
	needs := make(map[string]float64, len(ids))
	for _, csID := range ids {
		v := w.Vehicles[w.ChargingStations[csID].CurrentVehicleID]
		need := v.EnergyToDesiredSoc()
		needs[csID] = need
		totalNeed += need
	}
	if totalNeed <= 0 {
		return
	}

	for _, csID := range ids {
		cs := w.ChargingStations[csID]
		v := w.Vehicles[cs.CurrentVehicleID]
		vt := w.VehicleTypes[v.TypeName]
		share := target * (needs[csID] / totalNeed)
		Commit(share, cs, v, vt, gc)
	}
}
