package components

import "fmt"

// Cost evaluates the price (ct/kWh or equivalent) associated with a given
// instantaneous GC load in kW.
type Cost interface {
	Evaluate(loadKW float64) float64
	Type() string
}

// FixedCost is a constant price regardless of load.
type FixedCost struct {
	Value float64
}

func (c FixedCost) Evaluate(float64) float64 { return c.Value }
func (c FixedCost) Type() string             { return "fixed" }

// PolynomialCost evaluates a polynomial in the GC's current load, term 0
// being the constant, term 1 linear in kW, and so on. Evaluated by Horner's
// method, the way the teacher evaluates its tariff rate sums.
type PolynomialCost struct {
	Coefficients []float64
}

func (c PolynomialCost) Evaluate(loadKW float64) float64 {
	result := 0.0
	for i := len(c.Coefficients) - 1; i >= 0; i-- {
		result = result*loadKW + c.Coefficients[i]
	}
	return result
}

func (c PolynomialCost) Type() string { return "polynomial" }

// CostDocument is the raw §6 JSON shape: {"type": "fixed"|"polynomial", "value": ...}
type CostDocument struct {
	Type  string    `json:"type"`
	Value []float64 `json:"value"`
}

// Build returns the typed Cost for a CostDocument, or an error for a
// malformed/unknown cost type (an input-validation error per §7).
func (d CostDocument) Build() (Cost, error) {
	switch d.Type {
	case "fixed":
		if len(d.Value) != 1 {
			return nil, fmt.Errorf("fixed cost expects exactly one value, got %d", len(d.Value))
		}
		return FixedCost{Value: d.Value[0]}, nil
	case "polynomial":
		if len(d.Value) == 0 {
			return nil, fmt.Errorf("polynomial cost expects at least one coefficient")
		}
		return PolynomialCost{Coefficients: d.Value}, nil
	default:
		return nil, fmt.Errorf("unknown cost type %q", d.Type)
	}
}
