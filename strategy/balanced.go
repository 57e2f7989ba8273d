package strategy

import (
	"log/slog"

	"github.com/cepro/spiceev/cartesian"
	"github.com/cepro/spiceev/components"
	"github.com/cepro/spiceev/scenario"
	"github.com/cepro/spiceev/simparams"
)

// Balanced finds, per vehicle with a known departure, the smallest constant
// charging power that reaches DesiredSoc by then (via binary search over
// battery.LoadIterative on a scratch copy of the battery), and assigns it
// subject to GC headroom. Vehicles without a known departure are treated
// like Greedy.
type Balanced struct{}

func (b Balanced) Step(w *scenario.World) error {
	for _, gcID := range w.GridConnectorIDs() {
		if err := b.stepGC(w, w.GridConnectors[gcID]); err != nil {
			return err
		}
	}
	return nil
}

// stepGC runs the Balanced allocation for a single GC; exposed so other
// strategies (BalancedMarket, Schedule) can fall back to it per §7's
// documented fallback policy without re-implementing the binary search.
func (Balanced) stepGC(w *scenario.World, gc *components.GridConnector) error {
	order := OrderVehicles(w, gc.ID, OrderEarliestLeaveFirst, w.CurrentTime)
	opportunistic := OpportunisticAllowed(gc)

	for _, vID := range order {
		v := w.Vehicles[vID]
		cs := w.ChargingStations[v.ConnectedChargingStation]
		vt := w.VehicleTypes[v.TypeName]

		if ApplyV2G(w, gc, v, vt, cs) {
			continue
		}

		standing, known := v.StandingTime(w.CurrentTime)
		if !known {
			if v.Battery.Soc >= v.DesiredSoc && !opportunistic {
				Commit(0, cs, v, vt, gc)
			} else {
				Commit(cs.MaxPower, cs, v, vt, gc)
			}
			continue
		}

		power := BalancedPower(w, v, standing.Hours())
		Commit(power, cs, v, vt, gc)
	}

	DistributeSurplus(w, gc, w.Interval, true)
	return nil
}

// BalancedPower binary-searches the minimum constant power that reaches
// v.DesiredSoc within standingHours, using a scratch copy of the battery so
// the real trajectory is untouched. Precision is bounded by simparams.EPS
// and simparams.Iterations; on non-convergence it returns the best (upper)
// bound found and warns once per vehicle, per §7.
func BalancedPower(w *scenario.World, v *components.Vehicle, standingHours float64) float64 {
	if v.Battery.Soc >= v.DesiredSoc {
		return 0
	}
	lo, hi := 0.0, curvePeak(v.Battery.Curve.Points())
	if hi <= 0 || standingHours <= 0 {
		return hi
	}

	converged := false
	for i := 0; i < simparams.Iterations; i++ {
		mid := (lo + hi) / 2
		scratch := *v.Battery
		scratch.LoadIterative(mid, standingHours)
		if scratch.Soc >= v.DesiredSoc {
			hi = mid
		} else {
			lo = mid
		}
		if hi-lo < simparams.EPS {
			converged = true
			break
		}
	}
	if !converged && !w.WarnOnce(v.ID, "balanced_power_search") {
		slog.Warn("balanced power search did not converge", "vehicle", v.ID, "error", &scenario.NonConvergenceWarning{ComponentID: v.ID, Kind: "balanced_power_search"})
	}
	return hi
}

func curvePeak(points []cartesian.Point) float64 {
	peak := 0.0
	for _, p := range points {
		if p.Y > peak {
			peak = p.Y
		}
	}
	return peak
}
