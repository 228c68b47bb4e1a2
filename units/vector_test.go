// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package units

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func vec(entries ...interface{}) Vector {
	v := Vector{}
	for i := 0; i < len(entries); i += 2 {
		name := entries[i].(string)
		var e *big.Rat
		switch x := entries[i+1].(type) {
		case int:
			e = big.NewRat(int64(x), 1)
		case *big.Rat:
			e = x
		}
		v = v.Add(simpleVector(nameKey(name), e))
	}
	return v
}

func TestVectorGroupLaws(t *testing.T) {
	a := vec("m", 1, "s", -2)
	b := vec("s", 1, "g", 3)

	require.True(t, a.Add(b).Equal(b.Add(a)), "addition must commute")
	require.True(t, a.Add(a.Neg()).IsPure(), "a - a must be pure")
	require.True(t, a.Sub(b).Equal(b.Sub(a).Neg()))
	require.True(t, a.Add(Vector{}).Equal(a), "empty vector is the identity")
}

func TestVectorZeroExponentsVanish(t *testing.T) {
	a := vec("m", 1)
	b := vec("m", -1, "s", 1)
	sum := a.Add(b)

	require.Equal(t, 1, sum.Len())
	require.True(t, sum.Equal(vec("s", 1)))
	require.False(t, sum.IsPure())
	require.True(t, Vector{}.IsPure())
}

func TestVectorEqualImplicitZeros(t *testing.T) {
	a := vec("m", 1)
	b := a.Add(vec("s", 1)).Sub(vec("s", 1))
	require.True(t, a.Equal(b))
	require.True(t, b.Equal(a))
	require.False(t, a.Equal(vec("m", 2)))
}

func TestVectorScale(t *testing.T) {
	a := vec("m", 2, "s", -4)
	half := a.Scale(big.NewRat(1, 2))
	require.True(t, half.Equal(vec("m", 1, "s", -2)))
	require.True(t, a.Scale(new(big.Rat)).IsPure())
}

func TestVectorShow(t *testing.T) {
	tests := []struct {
		v    Vector
		want string
	}{
		{Vector{}, ""},
		{vec("m", 1), "[m]"},
		{vec("m", 1, "s", -1), "[m s^-1]"},
		{vec("m", 2), "[m^2]"},
		{vec("m", big.NewRat(1, 2)), "[m^1/2]"},
		{vec(`'G'`, big.NewRat(1, 2), "kg", 1), "['G'^1/2 kg]"},
		{vec(`"c"`, 1, "m", 1), "[m]"},
	}

	for _, test := range tests {
		require.Equal(t, test.want, test.v.String())
	}
}

func TestVectorPowNesting(t *testing.T) {
	kmPerHour := vec("km", 1, "hour", -1)

	squared := kmPerHour.Pow(big.NewRat(2, 1))
	require.Equal(t, "[(km hour^-1)^2]", squared.String())

	same := kmPerHour.Pow(ratOne())
	require.Equal(t, "[km hour^-1]", same.String())

	single := vec("m", 1).Pow(big.NewRat(3, 1))
	require.Equal(t, "[m^3]", single.String())
}

func TestVectorSortForDisplay(t *testing.T) {
	v := vec("s", -1, "m", 1, "g", -2, "K", 3)
	sorted := v.sortForDisplay()
	require.Equal(t, "[m K^3 s^-1 g^-2]", sorted.String())
}

func TestVectorShowLatex(t *testing.T) {
	v := vec("m", 1, "s", -2)
	require.Equal(t, `\mathrm{m}\,\mathrm{s}{}^{-2}`, v.Show(true))

	q := vec(`'c'`, 1)
	require.Equal(t, `\mathbf{c}`, q.Show(true))
}
