// Package scenario owns the simulation's component arenas, the event
// timeline, and the per-interval stepper loop described in spec §4.5.
package scenario

import (
	"sort"
	"time"

	"github.com/cepro/spiceev/components"
	"github.com/cepro/spiceev/events"
	timeutils "github.com/cepro/spiceev/time_utils"
)

// NegativeSocPolicy selects what happens when an arrival's soc_delta would
// take a vehicle's SoC below zero.
type NegativeSocPolicy string

const (
	NegativeSocAbort    NegativeSocPolicy = "abort"    // default: reject the arrival with NegativeSocError
	NegativeSocContinue NegativeSocPolicy = "continue" // allow_negative_soc: keep the negative value
	NegativeSocReset    NegativeSocPolicy = "reset"     // reset_negative_soc: clamp to 0
)

// CoreStandingTime is a recurring window during which all vehicles are
// guaranteed to be present, used by the Schedule strategy's collective mode.
type CoreStandingTime struct {
	Times             []timeutils.ClockTimePeriod
	FullDays          []int
	WeekdayConvention timeutils.WeekdayConvention
}

// Contains reports whether t falls inside the core standing time, either
// because its weekday is a declared full day or because t falls in one of
// the declared clock-time windows.
func (c *CoreStandingTime) Contains(t time.Time) (bool, error) {
	if c == nil {
		return false, nil
	}
	if len(c.FullDays) > 0 {
		full, err := timeutils.IsFullDay(c.WeekdayConvention, c.FullDays, t)
		if err != nil {
			return false, err
		}
		if full {
			return true, nil
		}
	}
	for i := range c.Times {
		if c.Times[i].Contains(t) {
			return true, nil
		}
	}
	return false, nil
}

// World is the arena owning every component and the event timeline for one
// scenario run. Components are indexed by string id; cross-references
// (station→GC, vehicle→station, battery→GC) are ids, never pointers, so the
// graph never has cycles.
type World struct {
	StartTime   time.Time
	CurrentTime time.Time
	Interval    time.Duration
	StepIndex   int

	VehicleTypes        map[string]*components.VehicleType
	Vehicles            map[string]*components.Vehicle
	ChargingStations    map[string]*components.ChargingStation
	GridConnectors      map[string]*components.GridConnector
	StationaryBatteries map[string]*components.StationaryBattery
	Photovoltaics       map[string]*components.Photovoltaic

	Events *events.Events

	NegativeSocPolicy NegativeSocPolicy
	CoreStandingTime  *CoreStandingTime

	warned map[string]bool
}

// NewWorld returns an empty World ready to have components registered onto
// it by config.Build.
func NewWorld(start time.Time, interval time.Duration) *World {
	return &World{
		StartTime:           start,
		CurrentTime:          start,
		Interval:             interval,
		VehicleTypes:        make(map[string]*components.VehicleType),
		Vehicles:            make(map[string]*components.Vehicle),
		ChargingStations:    make(map[string]*components.ChargingStation),
		GridConnectors:      make(map[string]*components.GridConnector),
		StationaryBatteries: make(map[string]*components.StationaryBattery),
		Photovoltaics:       make(map[string]*components.Photovoltaic),
		Events:              events.NewEvents(),
		NegativeSocPolicy:   NegativeSocAbort,
		warned:              make(map[string]bool),
	}
}

// sortedKeys returns a map's string keys in lexicographic order, giving the
// fixed iteration order §5 requires for reproducible output.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (w *World) VehicleIDs() []string            { return sortedKeys(w.Vehicles) }
func (w *World) ChargingStationIDs() []string     { return sortedKeys(w.ChargingStations) }
func (w *World) GridConnectorIDs() []string       { return sortedKeys(w.GridConnectors) }
func (w *World) StationaryBatteryIDs() []string   { return sortedKeys(w.StationaryBatteries) }
func (w *World) PhotovoltaicIDs() []string        { return sortedKeys(w.Photovoltaics) }

// VehicleAtStation returns the vehicle connected to a charging station, or
// nil if the station is free.
func (w *World) VehicleAtStation(stationID string) *components.Vehicle {
	for _, id := range w.VehicleIDs() {
		v := w.Vehicles[id]
		if v.ConnectedChargingStation == stationID {
			return v
		}
	}
	return nil
}

// StationsAtGC returns the ids of every charging station attached to gcID,
// sorted lexicographically.
func (w *World) StationsAtGC(gcID string) []string {
	var out []string
	for _, id := range w.ChargingStationIDs() {
		if w.ChargingStations[id].ParentGC == gcID {
			out = append(out, id)
		}
	}
	return out
}

// WarnOnce records a warning once per (componentID, kind) pair: the first
// call for a pair returns false, later calls return true, so the caller can
// log only on the first. WarnOnce itself logs nothing.
func (w *World) WarnOnce(componentID, kind string) bool {
	key := componentID + "|" + kind
	if w.warned[key] {
		return true
	}
	w.warned[key] = true
	return false
}
