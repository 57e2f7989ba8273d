package scenario

import "fmt"

// ValidationError is a fatal, load-time input error: an unknown vehicle
// type, an orphaned station, an event referencing a missing entity, a
// malformed cost object, or an inconsistent interval/stop_time.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid scenario (%s): %s", e.Field, e.Message)
}

// NegativeSocError reports a vehicle arrival whose soc_delta would drive its
// SoC below zero, under the "abort" negative-SoC policy (the default).
type NegativeSocError struct {
	VehicleID string
	Soc       float64
}

func (e *NegativeSocError) Error() string {
	return fmt.Sprintf("vehicle %s soc would go negative (%.4f)", e.VehicleID, e.Soc)
}

// OverloadError reports a grid connector whose committed load exceeds
// MaxPower after strategy allocation. No reduction is applied to the load;
// the stepper reports an overload as a logged warning, not as this error.
type OverloadError struct {
	GridConnectorID string
	LoadKW          float64
	MaxPowerKW      float64
	StepIndex       int
}

func (e *OverloadError) Error() string {
	return fmt.Sprintf("gc %s overloaded at step %d: load %.3fkW > max %.3fkW", e.GridConnectorID, e.StepIndex, e.LoadKW, e.MaxPowerKW)
}

// NonConvergenceWarning reports that a bounded numerical loop (Balanced's
// binary search over constant power) exhausted its iteration
// ceiling without reaching EPS precision. The caller proceeds with the best
// bound found; this is logged, not fatal.
type NonConvergenceWarning struct {
	ComponentID string
	Kind        string
}

func (e *NonConvergenceWarning) Error() string {
	return fmt.Sprintf("%s: %s did not converge within the iteration ceiling", e.ComponentID, e.Kind)
}

// MissingScheduleFallback reports that a strategy requiring a schedule,
// price series, or charging-windows mask found none configured on the GC,
// and fell back to a documented substitute strategy for this step.
type MissingScheduleFallback struct {
	GridConnectorID string
	Strategy        string
	FallbackTo      string
}

func (e *MissingScheduleFallback) Error() string {
	return fmt.Sprintf("gc %s: %s has no schedule/price/windows configured, falling back to %s", e.GridConnectorID, e.Strategy, e.FallbackTo)
}
