package components

import (
	"math"
	"strings"
)

// VoltageLevel tags a GridConnector per §6.
type VoltageLevel string

const (
	VoltageHV    VoltageLevel = "HV"
	VoltageHVMV  VoltageLevel = "HV/MV"
	VoltageMV    VoltageLevel = "MV"
	VoltageMVLV  VoltageLevel = "MV/LV"
	VoltageLV    VoltageLevel = "LV"
	VoltageEHV   VoltageLevel = "eHV"
	VoltageEHVHV VoltageLevel = "eHV/HV"
)

// GridConnector is the shared external meter and hard power cap for a site.
type GridConnector struct {
	ID           string
	MaxPower     float64 // kW, or +Inf
	VoltageLevel VoltageLevel
	GridOperator string
	NumberCS     int

	currentLoads map[string]float64 // additive kW contributions, keyed by source name

	Cost Cost

	// Schedule/Windows are the grid operator's "live" current-interval
	// values, set either by resampling an attached time series or by
	// GridOperatorSignal events; nil/false means "none configured".
	Schedule *float64
	Windows  bool
}

// NewGridConnector returns a GridConnector ready to accumulate loads.
func NewGridConnector(id string, maxPower float64, voltage VoltageLevel) *GridConnector {
	return &GridConnector{
		ID:           id,
		MaxPower:     maxPower,
		VoltageLevel: voltage,
		currentLoads: make(map[string]float64),
	}
}

// AddLoad sets a named kW contribution, replacing any previous value under
// that name; negative values model feed-in (local generation, V2G export).
// current_load() is additive across names, not across repeated calls for
// the same name, so a fixed-load series and a charging station can each own
// their own name and update it independently every interval.
func (gc *GridConnector) AddLoad(name string, kw float64) {
	gc.currentLoads[name] = kw
}

// CurrentLoad returns the sum of all named loads.
func (gc *GridConnector) CurrentLoad() float64 {
	total := 0.0
	for _, v := range gc.currentLoads {
		total += v
	}
	return total
}

// LoadNamed returns the kW currently attributed to a single named source.
func (gc *GridConnector) LoadNamed(name string) float64 {
	return gc.currentLoads[name]
}

// LoadsWithPrefix sums every named load whose name starts with prefix, used
// to separate fixed-load/generation/station/battery contributions out of
// the flat additive map by naming convention.
func (gc *GridConnector) LoadsWithPrefix(prefix string) float64 {
	total := 0.0
	for name, kw := range gc.currentLoads {
		if strings.HasPrefix(name, prefix) {
			total += kw
		}
	}
	return total
}

// Headroom returns how much more load can be added before MaxPower is hit,
// optionally excluding a named source from the running total (so a caller
// can ask "how much room is there for me, given everyone who committed
// before me").
func (gc *GridConnector) Headroom(forName string) float64 {
	if math.IsInf(gc.MaxPower, 1) {
		return math.Inf(1)
	}
	total := gc.CurrentLoad()
	if forName != "" {
		total -= gc.currentLoads[forName]
	}
	return gc.MaxPower - total
}

func (gc *GridConnector) SetSchedule(kw float64) {
	gc.Schedule = &kw
}

func (gc *GridConnector) ClearSchedule() {
	gc.Schedule = nil
}

func (gc *GridConnector) SetWindows(inWindow bool) {
	gc.Windows = inWindow
}

func (gc *GridConnector) SetCost(cost Cost) {
	gc.Cost = cost
}

func (gc *GridConnector) SetMaxPower(kw float64) {
	gc.MaxPower = kw
}

// IsOverloaded reports whether the current load exceeds MaxPower beyond the
// numerical tolerance, per the §8 GC invariant.
func (gc *GridConnector) IsOverloaded(eps float64) bool {
	if math.IsInf(gc.MaxPower, 1) {
		return false
	}
	return gc.CurrentLoad() > gc.MaxPower+eps
}
