// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package units

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvertFullRankBasis(t *testing.T) {
	r := testRegistry(t)

	v := r.MustValue(20, "m/s")
	c, err := r.Convert(v, r.System("km", "hour"))
	require.NoError(t, err)

	u, ok := c.ShowUnit()
	require.True(t, ok)
	require.Equal(t, "[km hour^-1]", u.String())
	require.InEpsilon(t, 72.0, shownNumber(t, r, c, "[km hour^-1]"), 1e-9)
}

func TestPreferredBasisSelection(t *testing.T) {
	r := testRegistry(t)

	// m, s and km/hour are linearly dependent, so the solver searches
	// combinations and must prefer the single listed unit km/hour over
	// the two-unit combination.
	v := r.MustValue(20, "m/s")
	c, err := r.Convert(v, r.System("m", "s", "km/hour"))
	require.NoError(t, err)

	u, ok := c.ShowUnit()
	require.True(t, ok)
	require.Equal(t, "[km hour^-1]", u.String())
	require.InEpsilon(t, 72.0, shownNumber(t, r, c, "[km hour^-1]"), 1e-9)
}

func TestConvertIdempotent(t *testing.T) {
	r := testRegistry(t)

	sys := r.System("m", "s", "km/hour")
	v := r.MustValue(20, "m/s")

	once, err := r.Convert(v, sys)
	require.NoError(t, err)
	twice, err := r.Convert(once, sys)
	require.NoError(t, err)

	require.Equal(t, once.V, twice.V)
	require.True(t, once.U.Equal(twice.U))
	s1, err := r.Show(once)
	require.NoError(t, err)
	s2, err := r.Show(twice)
	require.NoError(t, err)
	require.Equal(t, s1, s2)
}

func TestConvertCacheTransparency(t *testing.T) {
	r := testRegistry(t)

	v := r.MustValue(20, "m/s")
	sys := r.System("km", "hour")

	cold, err := r.Convert(v, sys)
	require.NoError(t, err)
	warm, err := r.Convert(v, sys)
	require.NoError(t, err)
	r.cache.Purge()
	purged, err := r.Convert(v, sys)
	require.NoError(t, err)

	for _, c := range []Value{warm, purged} {
		require.Equal(t, cold.V, c.V)
		require.True(t, cold.U.Equal(c.U))
		a, err := r.Show(cold)
		require.NoError(t, err)
		b, err := r.Show(c)
		require.NoError(t, err)
		require.Equal(t, a, b)
	}
}

func TestNaturalUnitSystem(t *testing.T) {
	r := testRegistry(t)

	// Express a plain kilogram in Planck units: the five constants are
	// dependent as a display basis for kg alone, which exercises the
	// single-unit recursion and the full-rank extension together.
	v := New(1)
	c, err := r.Convert(v, r.System("kg", "'planck'"))
	require.NoError(t, err)

	u, ok := c.ShowUnit()
	require.True(t, ok)
	require.Equal(t, "['G'^1/2 'c'^-1/2 'hbar'^-1/2 kg]", u.String())

	disp := shownNumber(t, r, c, "['G'^1/2 'c'^-1/2 'hbar'^-1/2 kg]")
	require.InEpsilon(t, 2.176e-8, disp, 1e-3)
	require.True(t, c.U.IsPure())

	// Round trip: the displayed magnitude times the value of the
	// symbolic unit reproduces 1.
	back, err := r.treeValue(u)
	require.NoError(t, err)
	require.InEpsilon(t, 1.0, disp*back.V, 1e-9)
}

func TestVariableUnitElimination(t *testing.T) {
	r := testRegistry(t)

	// Express 1 in kg/m using c and G: the double-quoted entries are
	// folded into the magnitude, leaving only the plain unit visible.
	c, err := r.SetUnits(New(1), []string{"kg/m", `"c"`, `"G"`})
	require.NoError(t, err)

	u, ok := c.ShowUnit()
	require.True(t, ok)
	require.Equal(t, "[kg m^-1]", u.String())
	require.InEpsilon(t, 1.3466e27, shownNumber(t, r, c, "[kg m^-1]"), 1e-3)

	want := r.MustValue(1, "kg/m")
	require.True(t, c.U.Equal(want.U))
}

func TestPrefixAutoSelection(t *testing.T) {
	r := testRegistry(t)

	tests := []struct {
		value float64
		spec  string
		us    []string
		num   float64
		unit  string
	}{
		{1300, "s", []string{"s", "k*", "M*"}, 1.3, "[ks]"},
		{1300000, "s", []string{"s", "k*", "M*"}, 1.3, "[Ms]"},
		{0.12, "cm", []string{"m", "m*"}, 1.2, "[mm]"},
		{500, "s", []string{"s", "k*", "."}, 500, "[s]"},
		{0.12, "cm", []string{"m", "*"}, 1.2, "[mm]"},
	}

	for _, test := range tests {
		v := r.MustValue(test.value, test.spec)
		c, err := r.SetUnits(v, test.us)
		require.NoError(t, err, "%v %s", test.value, test.us)
		got := shownNumber(t, r, c, test.unit)
		require.InEpsilon(t, test.num, got, 1e-9, "%v[%s] in %v", test.value, test.spec, test.us)
	}
}

func TestDefaultSystemFallback(t *testing.T) {
	r := testRegistry(t)

	v := r.MustValue(20, "m/s")
	v.showUnit = nil
	r.SetDefaultSystem(r.System("km", "hour"))
	defer r.SetDefaultSystem(nil)

	require.InEpsilon(t, 72.0, shownNumber(t, r, v, "[km hour^-1]"), 1e-9)
}

func TestNamedFormat(t *testing.T) {
	r := testRegistry(t)

	require.NoError(t, r.NewFormat("eng", func(v Value, latex bool) string {
		return fmt.Sprintf("%.2e", v.V)
	}))

	v := r.MustValue(12345.6, "m")
	c, err := r.SetUnits(v, []string{"eng"})
	require.NoError(t, err)

	shown, err := r.Show(c)
	require.NoError(t, err)
	require.Equal(t, "1.23e+04", shown)
}

func TestFindCompatible(t *testing.T) {
	r := testRegistry(t)

	// Exact aliases of the joule's unit vector.
	q := r.MustValue(1, "J")
	names := r.FindCompatible(q, 0)
	require.Contains(t, names, "J")
	require.Contains(t, names, "eV")

	// A single-unit power match.
	area := r.MustValue(1, "m^2")
	got := r.FindCompatible(area, 1)
	require.NotEmpty(t, got)
	require.Equal(t, "m^2", got[0])
}

func TestConvertSystemExpansion(t *testing.T) {
	r := testRegistry(t)

	require.NoError(t, r.NewSystem("speedy", "km/hour"))
	sys := r.System("speedy")
	require.Equal(t, []string{"km/hour"}, sys.Args)

	v := r.MustValue(20, "m/s")
	c, err := r.Convert(v, sys)
	require.NoError(t, err)
	require.InEpsilon(t, 72.0, shownNumber(t, r, c, "[km hour^-1]"), 1e-9)
}

func TestConvertUnknownPrefix(t *testing.T) {
	r := testRegistry(t)

	_, err := r.SetUnits(r.MustValue(1, "s"), []string{"s", "zz*"})
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestConversionNotFoundLeavesShowUnitUnset(t *testing.T) {
	r := testRegistry(t)

	// A time cannot be expressed in lengths; the result simply carries
	// no display unit and falls back to the raw vector.
	v := r.MustValue(5, "s")
	c, err := r.SetUnits(v, []string{"m", "km"})
	require.NoError(t, err)
	_, ok := c.ShowUnit()
	require.False(t, ok)
	require.InEpsilon(t, 5.0, shownNumber(t, r, c, "[s]"), 1e-12)
}
