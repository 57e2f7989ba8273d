// Package battery implements the energy store shared by vehicles and
// stationary batteries: a curve-limited charge/discharge model with
// round-trip efficiency, grounded on the same "track SoC in energy units,
// clamp at the floor/ceiling" shape the teacher's home-battery simulator
// uses, generalized to a SoC-dependent power curve and configurable
// negative-SoC policy.
package battery

import (
	"math"

	"github.com/cepro/spiceev/loadingcurve"
	"github.com/cepro/spiceev/simparams"
)

// DefaultEfficiency is used when a scenario document does not specify one.
const DefaultEfficiency = 0.95

// Battery is an energy store limited by a SoC-dependent loading curve.
type Battery struct {
	Capacity   float64 // kWh; math.Inf(+1) means an unlimited sink/source
	Soc        float64 // 0..1 (may transiently be negative, see AllowNegativeSoc)
	Curve      loadingcurve.Curve
	Efficiency float64 // 0..1, default 0.95

	// AllowNegativeSoc permits Soc to fall below zero (e.g. to model a
	// vehicle that drove further than its battery allowed); ResetNegativeSoc
	// additionally clamps it back up to zero once it goes negative.
	AllowNegativeSoc bool
	ResetNegativeSoc bool
}

// New returns a Battery with DefaultEfficiency if efficiency <= 0 is passed.
func New(capacity, soc float64, curve loadingcurve.Curve, efficiency float64) *Battery {
	if efficiency <= 0 {
		efficiency = DefaultEfficiency
	}
	return &Battery{
		Capacity:   capacity,
		Soc:        soc,
		Curve:      curve,
		Efficiency: efficiency,
	}
}

// Load requests to charge at `power` kW for `dt` hours. The actual power may
// be lower where the curve throttles it, or where the battery is nearly
// full. Energy stored = actualPower * dt * efficiency. At Soc=1 this returns
// zero for both return values.
func (b *Battery) Load(power, dt float64) (actualPower, energyDelivered float64) {
	if power <= 0 || dt <= 0 {
		return 0, 0
	}
	if b.Soc >= 1 {
		return 0, 0
	}

	ceiling := b.Curve.PowerAt(b.Soc)
	actualPower = math.Min(power, ceiling)
	if actualPower <= 0 {
		return 0, 0
	}

	if math.IsInf(b.Capacity, 1) {
		return actualPower, actualPower * dt * b.Efficiency
	}

	// SocAfter assumes the curve's ceiling already reflects `power`; clamp it
	// first so a caller-requested power below the curve peak is respected.
	clamped := b.Curve.Clamp(power)
	newSoc := clamped.SocAfter(b.Soc, dt, b.Capacity, b.Efficiency)
	if newSoc > 1 {
		newSoc = 1
	}
	energyDelivered = (newSoc - b.Soc) * b.Capacity
	if dt > 0 {
		actualPower = energyDelivered / b.Efficiency / dt
	}
	b.Soc = newSoc
	return actualPower, energyDelivered
}

// Unload requests to discharge at `power` kW for `dt` hours, refusing to go
// below targetSoc. The returned energy is the net energy that left the
// battery through the terminals (i.e. after dividing the SoC-energy drop by
// efficiency, modeling discharge losses).
func (b *Battery) Unload(power, dt, targetSoc float64) (actualPower, energyReturned float64) {
	if power <= 0 || dt <= 0 {
		return 0, 0
	}
	if b.Soc <= targetSoc {
		return 0, 0
	}

	if math.IsInf(b.Capacity, 1) {
		return power, power * dt / b.Efficiency
	}

	maxEnergyOut := (b.Soc - targetSoc) * b.Capacity
	requestedEnergy := power * dt
	energyFromSoc := math.Min(requestedEnergy, maxEnergyOut)

	b.Soc -= energyFromSoc / b.Capacity
	if b.Soc < 0 {
		b.Soc = 0
	}

	energyReturned = energyFromSoc / b.Efficiency
	actualPower = energyReturned / dt
	return actualPower, energyReturned
}

// LoadIterative allocates charge by subdividing dt into simparams.Iterations
// steps and re-evaluating the curve ceiling at each step, rather than
// relying on the single closed-form integration Load uses. Strategies that
// want to "spend" a fixed energy budget against a battery that may be
// cloned and discarded (e.g. Balanced's binary search over constant power)
// use this so the simulated trajectory matches what the real stepper will
// later apply step by step.
func (b *Battery) LoadIterative(power, dt float64) (actualPower, energyDelivered float64) {
	if power <= 0 || dt <= 0 {
		return 0, 0
	}
	subDt := dt / float64(simparams.Iterations)
	totalEnergy := 0.0
	for i := 0; i < simparams.Iterations; i++ {
		if b.Soc >= 1 {
			break
		}
		_, e := b.Load(power, subDt)
		totalEnergy += e
		if e <= simparams.EPS {
			break
		}
	}
	if dt > 0 {
		actualPower = totalEnergy / b.Efficiency / dt
	}
	return actualPower, totalEnergy
}

// AvailablePower returns the maximum average power sustainable over dt hours
// up to targetSoc, under the curve, without mutating the battery.
func (b *Battery) AvailablePower(dt, targetSoc float64) float64 {
	if dt <= 0 || b.Soc >= targetSoc {
		return 0
	}
	if math.IsInf(b.Capacity, 1) {
		return b.Curve.PowerAt(b.Soc)
	}
	hours, err := b.Curve.TimeToReach(b.Soc, targetSoc, b.Capacity, b.Efficiency)
	if err != nil || hours <= 0 {
		return 0
	}
	energyNeeded := (targetSoc - b.Soc) * b.Capacity / b.Efficiency
	if hours <= dt {
		// reachable comfortably within dt; cap at curve peak
		return math.Min(b.Curve.PowerAt(b.Soc), energyNeeded/dt)
	}
	// targetSoc is not reachable within dt at all: the best sustainable
	// average power is whatever the curve offers at the current SoC.
	return b.Curve.PowerAt(b.Soc)
}

// Integrate applies one interval's worth of charging/discharging at the
// given signed power (positive = charge, negative = discharge), used by the
// stepper. It returns the energy that actually flowed through the battery's
// terminals this interval (positive = drawn from the grid, negative = fed
// back in).
func (b *Battery) Integrate(power, dt float64) (actualPower, energy float64) {
	if power > 0 {
		actualPower, energy = b.Load(power, dt)
		return actualPower, energy / b.Efficiency
	}
	if power < 0 {
		targetSoc := 0.0
		if b.AllowNegativeSoc {
			targetSoc = math.Inf(-1)
		}
		actualPower, energy = b.Unload(-power, dt, targetSoc)
		return -actualPower, -energy
	}
	return 0, 0
}

// ApplySocDelta adds a signed SoC change (e.g. a vehicle's driving
// consumption while away) and applies the negative-SoC policy.
func (b *Battery) ApplySocDelta(delta float64) error {
	b.Soc += delta
	if b.Soc < 0 {
		if b.ResetNegativeSoc {
			b.Soc = 0
			return nil
		}
		if !b.AllowNegativeSoc {
			return NegativeSocError{Soc: b.Soc}
		}
	}
	if b.Soc > 1 {
		b.Soc = 1
	}
	return nil
}

// NegativeSocError is returned when a vehicle's SoC would fall below zero
// and neither AllowNegativeSoc nor ResetNegativeSoc is set.
type NegativeSocError struct {
	Soc float64
}

func (e NegativeSocError) Error() string {
	return "battery soc fell below zero"
}
