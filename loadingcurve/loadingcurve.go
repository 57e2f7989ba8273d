// Package loadingcurve implements the piecewise-linear SoC-to-power curves
// that bound how fast a battery may charge or discharge, and the closed-form
// integrations needed to move a SoC along them over time.
//
// A Curve is built on the same breakpoint primitive the teacher's NIV-chase
// pricing curves use (cartesian.Point) — both are "a sorted list of (x, y)
// points with a linear interpolant between them", just with different axes.
package loadingcurve

import (
	"fmt"
	"math"

	"github.com/cepro/spiceev/cartesian"
)

// Curve is an ordered sequence of (soc, max_power) breakpoints covering [0,1].
type Curve struct {
	curve cartesian.Curve
}

// New returns a Curve from the given breakpoints, validating that SoC
// strictly increases and that no power is negative.
func New(points []cartesian.Point) (Curve, error) {
	c := Curve{curve: cartesian.Curve{Points: points}}
	if len(points) < 2 {
		return Curve{}, fmt.Errorf("loading curve needs at least 2 points, got %d", len(points))
	}
	if err := c.curve.ValidateMonotonicX(); err != nil {
		return Curve{}, fmt.Errorf("loading curve: %w", err)
	}
	for _, p := range points {
		if p.Y < 0 {
			return Curve{}, fmt.Errorf("loading curve: negative power %v at soc %v", p.Y, p.X)
		}
	}
	return c, nil
}

// MustNew is New but panics on error; handy for constant in-code curves.
func MustNew(points []cartesian.Point) Curve {
	c, err := New(points)
	if err != nil {
		panic(err)
	}
	return c
}

// Points returns the curve's breakpoints.
func (c Curve) Points() []cartesian.Point {
	return c.curve.Points
}

// PowerAt returns the maximum power (kW) available at the given SoC, by
// linear interpolation. SoC outside [0,1] is clamped to the nearest endpoint.
func (c Curve) PowerAt(soc float64) float64 {
	return c.curve.ValueAt(soc)
}

// Clamp returns a new Curve where every max_power is capped to upperPower.
// Used to apply a station's or GC's power limit onto a vehicle's curve.
func (c Curve) Clamp(upperPower float64) Curve {
	points := make([]cartesian.Point, len(c.curve.Points))
	for i, p := range c.curve.Points {
		points[i] = cartesian.Point{X: p.X, Y: math.Min(p.Y, upperPower)}
	}
	return Curve{curve: cartesian.Curve{Points: points}}
}

// TimeToReach returns the hours needed to move from socFrom to socTo under
// this curve, scaling by capacityKWh (kWh) and efficiency (applied as a
// charging efficiency — only meaningful when socTo > socFrom). The result is
// solved analytically per segment rather than by sub-stepping: on a segment
// with constant slope, power(soc) is exponential in time, so the time to
// cross the segment is a closed-form logarithm.
func (c Curve) TimeToReach(socFrom, socTo, capacityKWh, efficiency float64) (float64, error) {
	if socFrom == socTo {
		return 0, nil
	}
	if socFrom > socTo {
		return 0, fmt.Errorf("time_to_reach: socFrom (%v) must be <= socTo (%v)", socFrom, socTo)
	}
	if math.IsInf(capacityKWh, 1) {
		return 0, nil // an unlimited battery reaches any SoC instantly
	}
	if efficiency <= 0 {
		return 0, fmt.Errorf("time_to_reach: non-positive efficiency %v", efficiency)
	}

	totalHours := 0.0
	points := c.curve.Points
	for i := 0; i < len(points)-1; i++ {
		s1, s2 := points[i].X, points[i+1].X
		segFrom := math.Max(s1, socFrom)
		segTo := math.Min(s2, socTo)
		if segFrom >= segTo {
			continue
		}
		p1 := linearPower(points[i], points[i+1], segFrom)
		p2 := linearPower(points[i], points[i+1], segTo)
		if p1 <= 0 {
			return totalHours, fmt.Errorf("time_to_reach: curve offers zero power at soc %v, cannot progress", segFrom)
		}
		// effective capacity accounts for charging losses: the curve's power
		// is at the grid side, but only `efficiency` of it raises SoC.
		effCapacity := capacityKWh / efficiency
		slope := (p2 - p1) / (segTo - segFrom)
		if math.Abs(slope) < 1e-12 {
			totalHours += effCapacity * (segTo - segFrom) / p1
		} else {
			totalHours += effCapacity / slope * math.Log(p2/p1)
		}
	}
	return totalHours, nil
}

// SocAfter returns the SoC reached after charging for `hours` starting at
// socFrom, under this curve (already clamped to any power ceiling the caller
// wants to apply), scaling by capacityKWh and efficiency. It is the inverse
// of TimeToReach, solved segment by segment.
func (c Curve) SocAfter(socFrom, hours, capacityKWh, efficiency float64) float64 {
	if hours <= 0 {
		return socFrom
	}
	if math.IsInf(capacityKWh, 1) {
		return 1
	}
	if efficiency <= 0 {
		return socFrom
	}

	effCapacity := capacityKWh / efficiency
	remainingHours := hours
	soc := socFrom
	points := c.curve.Points

	for i := 0; i < len(points)-1 && remainingHours > 0; i++ {
		s1, s2 := points[i].X, points[i+1].X
		if soc < s1 || soc >= s2 {
			continue
		}
		p1 := linearPower(points[i], points[i+1], soc)
		pEnd := points[i+1].Y
		slope := (pEnd - p1) / (s2 - soc)

		var segHours float64
		if pEnd <= 0 {
			// power collapses to zero at the top of the curve (e.g. soc=1): can
			// never fully cross this segment in finite time.
			segHours = math.Inf(1)
		} else if math.Abs(slope) < 1e-12 {
			segHours = effCapacity * (s2 - soc) / p1
		} else {
			segHours = effCapacity / slope * math.Log(pEnd/p1)
		}

		if segHours <= remainingHours {
			soc = s2
			remainingHours -= segHours
			continue
		}

		// Doesn't reach the end of this segment - invert the exponential.
		if math.Abs(slope) < 1e-12 {
			soc = soc + p1*remainingHours/effCapacity
		} else {
			u := p1 * math.Exp(slope*remainingHours/effCapacity)
			soc = soc + (u-p1)/slope
		}
		remainingHours = 0
	}

	if soc > 1 {
		soc = 1
	}
	return soc
}

func linearPower(p1, p2 cartesian.Point, x float64) float64 {
	if p2.X == p1.X {
		return p1.Y
	}
	return p1.Y + (x-p1.X)*((p2.Y-p1.Y)/(p2.X-p1.X))
}
