// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package units

// LoadSI populates a registry with the SI base units, the decimal
// prefixes, common derived units, the fundamental constants as variable
// units, and the si, SI and planck display systems.
func LoadSI(r *Registry) error {
	for _, name := range []string{"m", "g", "s", "A", "K", "mol", "cd"} {
		if err := r.NewBaseUnit(name); err != nil {
			return err
		}
	}

	prefixes := []struct {
		name   string
		factor float64
	}{
		{"Y", 1e24}, {"Z", 1e21}, {"E", 1e18}, {"P", 1e15}, {"T", 1e12},
		{"G", 1e9}, {"M", 1e6}, {"k", 1e3}, {"h", 1e2}, {"da", 1e1},
		{"d", 1e-1}, {"c", 1e-2}, {"m", 1e-3}, {"u", 1e-6}, {"µ", 1e-6},
		{"n", 1e-9}, {"p", 1e-12}, {"f", 1e-15}, {"a", 1e-18},
		{"z", 1e-21}, {"y", 1e-24},
	}
	for _, p := range prefixes {
		if err := r.NewPrefix(p.name, New(p.factor)); err != nil {
			return err
		}
	}

	units := []struct {
		name string
		v    float64
		spec string
	}{
		{"Hz", 1, "s^-1"},
		{"N", 1, "kg m s^-2"},
		{"Pa", 1, "N/m^2"},
		{"J", 1, "N m"},
		{"W", 1, "J/s"},
		{"C", 1, "A s"},
		{"V", 1, "W/A"},
		{"min", 60, "s"},
		{"hour", 3600, "s"},
		{"day", 86400, "s"},
		{"mile", 1609.344, "m"},
		{"mph", 1, "mile/hour"},
		{"L", 1e-3, "m^3"},
	}
	for _, u := range units {
		v, err := r.Value(u.v, u.spec)
		if err != nil {
			return err
		}
		if err := r.NewUnit(u.name, v); err != nil {
			return err
		}
	}

	zero, err := r.Value(273.15, "K")
	if err != nil {
		return err
	}
	one, err := r.Value(1, "K")
	if err != nil {
		return err
	}
	for _, name := range []string{"degC", "°C"} {
		if err := r.NewAffineUnit(name, zero, one); err != nil {
			return err
		}
	}

	eV, err := r.Value(1.602176634e-19, "J")
	if err != nil {
		return err
	}
	if err := r.NewUnit("eV", eV); err != nil {
		return err
	}

	constants := []struct {
		name string
		v    float64
		spec string
	}{
		{"pi", 3.14159265358979323846, ""},
		{"c", 299792458, "m/s"},
		{"G", 6.6743e-11, "m^3 kg^-1 s^-2"},
		{"h", 6.62607015e-34, "J s"},
		{"hbar", 1.054571817e-34, "J s"},
		{"ke", 8.9875517923e9, "N m^2 C^-2"},
		{"k", 1.380649e-23, "J/K"},
		{"NA", 6.02214076e23, "mol^-1"},
		{"gn", 9.80665, "m/s^2"},
	}
	for _, c := range constants {
		v, err := r.Value(c.v, c.spec)
		if err != nil {
			return err
		}
		r.SetVar(c.name, v)
	}

	if err := r.NewSystem("si", "m", "kg", "s", "A", "K", "mol", "cd"); err != nil {
		return err
	}
	if err := r.NewSystem("SI", "*", "si"); err != nil {
		return err
	}
	return r.NewSystem("planck", `"c"`, `"hbar"`, `"G"`, `"ke"`, `"k"`)
}
