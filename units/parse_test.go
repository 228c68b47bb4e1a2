// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package units

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(nil)
	require.NoError(t, LoadSI(r))
	return r
}

// shownNumber renders v, checks the displayed unit, and returns the
// displayed magnitude (ignoring a tilde marker).
func shownNumber(t *testing.T, r *Registry, v Value, wantUnit string) float64 {
	t.Helper()
	shown, err := r.Show(v)
	require.NoError(t, err)
	num := shown
	if i := strings.Index(shown, "["); i >= 0 {
		require.Equal(t, wantUnit, shown[i:])
		num = shown[:i]
	} else {
		require.Equal(t, "", wantUnit)
	}
	num = strings.TrimPrefix(num, "~")
	f, err := strconv.ParseFloat(num, 64)
	require.NoError(t, err, "shown %q", shown)
	return f
}

func TestParseSimpleUnits(t *testing.T) {
	r := testRegistry(t)

	tests := []struct {
		spec   string
		factor float64
		dims   string // equivalent specification for the unit vector
		tree   string
	}{
		{"m", 1, "m", "[m]"},
		{"km", 1000, "m", "[km]"},
		{"kg", 1000, "g", "[kg]"},
		{"km/hour", 1000.0 / 3600.0, "m/s", "[km hour^-1]"},
		{"m^2 s^-1", 1, "m^2/s", "[m^2 s^-1]"},
		{"m/(s K)", 1, "m s^-1 K^-1", "[m s^-1 K^-1]"},
		{"m2", 1, "m^2", "[m^2]"},
		{"m^1/2", 1, "m^1/2", "[m^1/2]"},
		{"m^(1/2)", 1, "m^1/2", "[m^1/2]"},
		{"m^0.5", 1, "m^1/2", "[m^1/2]"},
		{"N", 1000, "kg m/s^2", "[N]"},
		{"mph", 1609.344 / 3600.0, "m/s", "[mph]"},
		{"m.s", 1, "m s", "[m s]"},
		{"m*s", 1, "m s", "[m s]"},
		{"", 1, "", ""},
	}

	for _, test := range tests {
		val, tree, err := r.Parse(test.spec)
		require.NoError(t, err, "parse %q", test.spec)
		require.InEpsilon(t, test.factor, val.V, 1e-12, "factor of %q", test.spec)

		want, _, err := r.Parse(test.dims)
		require.NoError(t, err)
		require.True(t, val.U.Equal(want.U), "dims of %q: got %s want %s",
			test.spec, val.U.String(), want.U.String())
		require.Equal(t, test.tree, tree.String(), "tree of %q", test.spec)
	}
}

func TestParsePowBindsLastFactor(t *testing.T) {
	r := testRegistry(t)

	a, _, err := r.Parse("m^2 s^-1")
	require.NoError(t, err)
	b, _, err := r.Parse("m^2/s")
	require.NoError(t, err)
	require.True(t, a.U.Equal(b.U))
}

func TestParseVariableUnits(t *testing.T) {
	r := testRegistry(t)

	val, tree, err := r.Parse("kg m^3 s^-2 'G'^-1")
	require.NoError(t, err)
	require.Equal(t, "[kg m^3 s^-2 'G'^-1]", tree.String())

	want, _, err := r.Parse("kg^2")
	require.NoError(t, err)
	require.True(t, val.U.Equal(want.U), "got %s", val.U.String())

	// The double-quoted form resolves the same variable.
	dval, dtree, err := r.Parse(`"G"`)
	require.NoError(t, err)
	require.Equal(t, "", dtree.String()) // substituted away at display time
	require.InEpsilon(t, 6.6743e-11, dval.V*1e3, 1e-9)
}

func TestParseErrors(t *testing.T) {
	r := testRegistry(t)

	for _, spec := range []string{
		"xyzzy",
		"m^",
		"(m",
		"m)",
		"'nope'",
		"'m",
		"m^s",
		"@",
	} {
		_, _, err := r.Parse(spec)
		require.Error(t, err, "parse %q", spec)
		var pe *ParseError
		require.ErrorAs(t, err, &pe, "parse %q", spec)
	}
}

func TestParsePrefixResolution(t *testing.T) {
	r := testRegistry(t)

	// An exact unit name wins over prefix plus unit.
	val, _, err := r.Parse("min")
	require.NoError(t, err)
	require.InEpsilon(t, 60.0, val.V, 1e-12)

	// A bare prefix is a pure scale when PrefixOnly allows it.
	val, _, err = r.Parse("k")
	require.NoError(t, err)
	require.True(t, val.U.IsPure())
	require.InEpsilon(t, 1000.0, val.V, 1e-12)

	r.PrefixOnly = false
	_, _, err = r.Parse("k")
	require.Error(t, err)
}

func TestParseAffineUnit(t *testing.T) {
	r := testRegistry(t)

	for _, spec := range []string{"degC", "°C"} {
		val, _, err := r.Parse(spec)
		require.NoError(t, err)
		require.True(t, val.Absolute)
		require.InDelta(t, 273.15, val.Offset, 1e-9)
		require.InEpsilon(t, 1.0, val.V, 1e-12)
	}
}

func TestValueConstructor(t *testing.T) {
	r := testRegistry(t)

	v, err := r.Value(20, "m/s")
	require.NoError(t, err)
	require.InEpsilon(t, 20.0, v.V, 1e-12)
	u, ok := v.ShowUnit()
	require.True(t, ok)
	require.Equal(t, "[m s^-1]", u.String())

	v, err = r.Value(72, "km/hour")
	require.NoError(t, err)
	require.InEpsilon(t, 20.0, v.V, 1e-9)
	require.InEpsilon(t, 72.0, shownNumber(t, r, v, "[km hour^-1]"), 1e-9)
}

func TestValueConstructorAffine(t *testing.T) {
	r := testRegistry(t)

	q, err := r.Value(20, "degC")
	require.NoError(t, err)
	require.True(t, q.Absolute)
	require.InEpsilon(t, 20.0, q.V, 1e-12)
	require.InDelta(t, 273.15, q.Offset, 1e-9)

	require.InEpsilon(t, 20.0, shownNumber(t, r, q, "[degC]"), 1e-9)
}
