// Package events implements the time-ordered event stream the stepper
// drains each interval: vehicle arrival/departure, fixed load and local
// generation updates, grid-operator signals, and schedule updates.
package events

import (
	"time"

	"github.com/cepro/spiceev/components"
)

// Event is any entry on the timeline. SignalTime is when it becomes known
// (visible to strategies doing look-ahead); StartTime is when its effect
// begins.
type Event interface {
	SignalTime() time.Time
	StartTime() time.Time
}

// Base is embedded by every concrete event to satisfy Event.
type Base struct {
	Signal time.Time
	Start  time.Time
}

func (b Base) SignalTime() time.Time { return b.Signal }
func (b Base) StartTime() time.Time  { return b.Start }

// ArrivalEvent attaches a vehicle to a station and updates its SoC.
type ArrivalEvent struct {
	Base
	VehicleID string
	StationID string

	// SocDelta is a signed SoC change (<=0) applied on arrival, representing
	// consumption while away.
	SocDelta   float64
	DesiredSoc float64

	EstimatedTimeOfDeparture *time.Time
}

// DepartureEvent detaches a vehicle from its station.
type DepartureEvent struct {
	Base
	VehicleID string

	EstimatedTimeOfArrival *time.Time
}

// FixedLoadUpdate sets the named fixed-load series value on a GC.
type FixedLoadUpdate struct {
	Base
	GridConnectorID string
	Name            string
	PowerKW         float64
}

// LocalGenerationUpdate sets the named local-generation series value on a GC.
type LocalGenerationUpdate struct {
	Base
	GridConnectorID string
	Name            string
	PowerKW         float64
}

// GridOperatorSignal updates one or more of a GC's max_power, cost,
// charging_windows, or target schedule. Fields left nil are left unchanged.
type GridOperatorSignal struct {
	Base
	GridConnectorID string

	MaxPower *float64
	Cost     components.Cost
	Windows  *bool
	Schedule *float64
}

// ScheduleUpdate sets a per-interval target power on a vehicle or a GC.
type ScheduleUpdate struct {
	Base
	VehicleID       string // set when targeting a vehicle
	GridConnectorID string // set when targeting a GC
	PowerKW         float64
}
