// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package units

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewBaseUnitDuplicate(t *testing.T) {
	r := testRegistry(t)

	err := r.NewBaseUnit("m")
	require.Error(t, err)
	var re *RegistryError
	require.ErrorAs(t, err, &re)
	require.Equal(t, "m", re.Name)
}

func TestUnitNames(t *testing.T) {
	r := testRegistry(t)

	for _, name := range []string{"furlong", "°F", "x-y", "$", "°"} {
		require.NoError(t, r.NewUnit(name, r.MustValue(1, "m")), "name %q", name)
	}
	for _, name := range []string{"", "3x", "a b", "-m", "a-", "a--b", "m^2", "a.b"} {
		err := r.NewUnit(name, r.MustValue(1, "m"))
		require.Error(t, err, "name %q", name)
		var re *RegistryError
		require.ErrorAs(t, err, &re, "name %q", name)
	}
}

func TestNewPrefixMustBePure(t *testing.T) {
	r := testRegistry(t)

	require.NoError(t, r.NewPrefix("dozen", New(12)))
	err := r.NewPrefix("bad", r.MustValue(2, "m"))
	require.Error(t, err)
	var ue *UnitMismatchError
	require.ErrorAs(t, err, &ue)
}

func TestNewAffineUnitMismatch(t *testing.T) {
	r := testRegistry(t)

	err := r.NewAffineUnit("bogus", r.MustValue(273.15, "K"), r.MustValue(1, "m"))
	require.Error(t, err)
	var ue *UnitMismatchError
	require.ErrorAs(t, err, &ue)
}

func TestDeletion(t *testing.T) {
	r := testRegistry(t)

	require.NoError(t, r.DelUnit("mile"))
	_, _, err := r.Parse("mile")
	require.Error(t, err, "deleted unit no longer parses")

	var re *RegistryError
	require.ErrorAs(t, r.DelUnit("mile"), &re)
	require.ErrorAs(t, r.DelUnit("m"), &re, "base units are not deletable")
	require.ErrorAs(t, r.DelPrefix(""), &re, "the identity prefix is not deletable")
	require.ErrorAs(t, r.DelPrefix("nope"), &re)
	require.ErrorAs(t, r.DelSystem("nope"), &re)
	require.ErrorAs(t, r.DelFormat("nope"), &re)
	require.ErrorAs(t, r.DelVar("nope"), &re)

	require.NoError(t, r.DelPrefix("k"))
	_, _, err = r.Parse("km")
	require.Error(t, err)
}

func TestResetKeepsVariables(t *testing.T) {
	r := testRegistry(t)
	r.SetVar("tau", New(6.283185307179586))

	r.Reset()

	require.Empty(t, r.BaseUnits())
	_, ok := r.Unit("m")
	require.False(t, ok)
	_, ok = r.Prefix("")
	require.True(t, ok, "identity prefix survives a reset")

	v, err := r.variable("tau")
	require.NoError(t, err)
	require.InEpsilon(t, 6.283185307179586, v.V, 1e-12)
	_, err = r.variable("pi")
	require.NoError(t, err, "variables loaded before the reset survive it")
}

func TestIsUnitResolution(t *testing.T) {
	r := testRegistry(t)

	tests := []struct {
		name   string
		prefix string
		unit   string
		ok     bool
	}{
		{"m", "", "m", true},
		{"min", "", "min", true}, // exact name wins over any prefix split
		{"km", "k", "m", true},
		{"dam", "da", "m", true}, // longest prefix wins
		{"k", "k", "", true},
		{"k*", "k", "", true},
		{"xyzzy", "", "", false},
	}

	for _, test := range tests {
		prefix, unit, ok := r.isUnit(test.name)
		require.Equal(t, test.ok, ok, "isUnit(%q)", test.name)
		require.Equal(t, test.prefix, prefix, "isUnit(%q)", test.name)
		require.Equal(t, test.unit, unit, "isUnit(%q)", test.name)
	}

	r.PrefixOnly = false
	_, _, ok := r.isUnit("k")
	require.False(t, ok, "bare prefixes need PrefixOnly")
	_, _, ok = r.isUnit("km")
	require.True(t, ok, "prefixed units still resolve")
}

func TestBaseCurrency(t *testing.T) {
	r := NewRegistry(nil)

	require.Equal(t, "", r.BaseCurrency())
	require.NoError(t, r.NewBaseCurrency("$"))
	require.Equal(t, "$", r.BaseCurrency())
	require.Equal(t, []string{"$"}, r.BaseUnits())

	require.NoError(t, r.NewUnit("€", r.MustValue(1/0.92, "$")))
	v, err := r.Value(10, "€")
	require.NoError(t, err)
	require.InEpsilon(t, 10/0.92, v.V, 1e-12)
}

func TestMutationInvalidatesCache(t *testing.T) {
	r := testRegistry(t)

	v := r.MustValue(20, "m/s")
	sys := r.System("km", "hour")
	before, err := r.Convert(v, sys)
	require.NoError(t, err)
	require.InEpsilon(t, 72.0, shownNumber(t, r, before, "[km hour^-1]"), 1e-9)

	// Redefine the hour; the cached basis embedded the old value.
	require.NoError(t, r.NewUnit("hour", r.MustValue(1800, "s")))
	after, err := r.Convert(v, sys)
	require.NoError(t, err)
	require.InEpsilon(t, 36.0, shownNumber(t, r, after, "[km hour^-1]"), 1e-9)
}
