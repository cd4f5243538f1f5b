package units

import "fmt"

// Kind is the physical dimension of a Quantity.
type Kind int

const (
	Energy Kind = iota
	Mass
	Volume
)

func (k Kind) String() string {
	switch k {
	case Energy:
		return "energy"
	case Mass:
		return "mass"
	case Volume:
		return "volume"
	}
	return "unknown"
}

// Quantity is a numeric value tagged with a physical kind and unit.
// Records always store bare numbers; a Quantity view is projected on
// demand when the client is configured unit-aware.
type Quantity struct {
	Kind  Kind
	Unit  string
	Value float64
}

// conversion factors to the base unit of each kind
// (Cal for energy, g for mass, ml for volume)
var baseFactors = map[string]float64{
	"Cal": 1,
	"kJ":  0.2390,
	"g":   1,
	"mg":  0.001,
	"ml":  1,
}

// Add returns the sum of q and o expressed in q's unit.
// Adding across kinds is an error.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	if q.Kind != o.Kind {
		return Quantity{}, fmt.Errorf("cannot add %s to %s", o.Kind, q.Kind)
	}
	if q.Unit == o.Unit {
		q.Value += o.Value
		return q, nil
	}
	qf, ok := baseFactors[q.Unit]
	if !ok {
		return Quantity{}, fmt.Errorf("unknown unit %q", q.Unit)
	}
	of, ok := baseFactors[o.Unit]
	if !ok {
		return Quantity{}, fmt.Errorf("unknown unit %q", o.Unit)
	}
	q.Value += o.Value * of / qf
	return q, nil
}

func (q Quantity) Equal(o Quantity) bool {
	if q.Kind != o.Kind {
		return false
	}
	if q.Unit == o.Unit {
		return q.Value == o.Value
	}
	qf, qok := baseFactors[q.Unit]
	of, ook := baseFactors[o.Unit]
	if !qok || !ook {
		return false
	}
	return q.Value*qf == o.Value*of
}

func (q Quantity) String() string {
	return fmt.Sprintf("%g %s", q.Value, q.Unit)
}

// kind and unit the upstream site reports each nutrient in
var nutrientUnits = map[string]Quantity{
	"calories":      {Kind: Energy, Unit: "Cal"},
	"kilojoules":    {Kind: Energy, Unit: "kJ"},
	"carbohydrates": {Kind: Mass, Unit: "g"},
	"fat":           {Kind: Mass, Unit: "g"},
	"protein":       {Kind: Mass, Unit: "g"},
	"sugar":         {Kind: Mass, Unit: "g"},
	"fiber":         {Kind: Mass, Unit: "g"},
	"sodium":        {Kind: Mass, Unit: "mg"},
	"potass.":       {Kind: Mass, Unit: "mg"},
	"water":         {Kind: Volume, Unit: "ml"},
}

// ForNutrient projects a bare extracted value into the Quantity
// appropriate for a canonical nutrient name. The second return is
// false for names with no known unit.
func ForNutrient(name string, value float64) (Quantity, bool) {
	q, ok := nutrientUnits[name]
	if !ok {
		return Quantity{}, false
	}
	q.Value = value
	return q, true
}
