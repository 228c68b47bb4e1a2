// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package units

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFraction(t *testing.T) {
	tests := []struct {
		in   float64
		num  int64
		den  int64
	}{
		{0, 0, 1},
		{1, 1, 1},
		{2, 2, 1},
		{-1.5, -3, 2},
		{0.5, 1, 2},
		{0.25, 1, 4},
		{1.0 / 3.0, 1, 3},
		{-2.0 / 3.0, -2, 3},
		{1.5e-1, 3, 20},
		{0.33333333, 1, 3},
	}

	for _, test := range tests {
		got := fraction(test.in)
		want := big.NewRat(test.num, test.den)
		require.Equal(t, 0, got.Cmp(want), "fraction(%v) = %s, want %s", test.in, got.RatString(), want.RatString())
	}
}

func TestFractionDenominatorBound(t *testing.T) {
	got := fraction(math.Pi)
	require.True(t, got.Denom().Cmp(big.NewInt(maxDenominator)) <= 0)
	require.InDelta(t, math.Pi, ratFloat(got), 1e-7)
}

func TestFractionNonFinite(t *testing.T) {
	require.Equal(t, 0, fraction(math.NaN()).Sign())
	require.Equal(t, 0, fraction(math.Inf(1)).Sign())
}

func TestAlmostEqual(t *testing.T) {
	require.True(t, almostEqual(1, 1+1e-9))
	require.False(t, almostEqual(1, 1+1e-6))
}
