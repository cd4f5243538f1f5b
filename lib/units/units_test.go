package units

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddSameKind(t *testing.T) {
	a := Quantity{Kind: Mass, Unit: "g", Value: 10}
	b := Quantity{Kind: Mass, Unit: "g", Value: 5}
	sum, err := a.Add(b)
	require.NoError(t, err)
	require.Equal(t, Quantity{Kind: Mass, Unit: "g", Value: 15}, sum)
}

func TestAddConvertsUnits(t *testing.T) {
	a := Quantity{Kind: Mass, Unit: "g", Value: 1}
	b := Quantity{Kind: Mass, Unit: "mg", Value: 500}
	sum, err := a.Add(b)
	require.NoError(t, err)
	require.Equal(t, "g", sum.Unit)
	require.InDelta(t, 1.5, sum.Value, 1e-9)
}

func TestAddCrossKind(t *testing.T) {
	a := Quantity{Kind: Energy, Unit: "Cal", Value: 100}
	b := Quantity{Kind: Mass, Unit: "g", Value: 100}
	_, err := a.Add(b)
	require.Error(t, err)
}

func TestEqualAcrossUnits(t *testing.T) {
	a := Quantity{Kind: Mass, Unit: "g", Value: 1}
	b := Quantity{Kind: Mass, Unit: "mg", Value: 1000}
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(Quantity{Kind: Volume, Unit: "ml", Value: 1}))
}

func TestForNutrient(t *testing.T) {
	q, ok := ForNutrient("sodium", 2069)
	require.True(t, ok)
	require.Equal(t, Quantity{Kind: Mass, Unit: "mg", Value: 2069}, q)

	_, ok = ForNutrient("minutes", 30)
	require.False(t, ok)
}
