// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package units

import (
	"math"
	"math/big"
	"strconv"
)

// ZeroTolerant makes a zero-magnitude quantity unit-compatible with any
// other quantity, so generic reductions can start from a bare zero. Opt-in
// and off by default: when chained it can mask genuine unit mismatches.
var ZeroTolerant bool

// Value is a physical quantity: a scalar magnitude attached to a unit
// vector. An absolute value is affine (a temperature reading, an epoch):
// Offset holds its zero point expressed in base units, and V is the reading
// relative to that zero. Display hints (show unit, show prefixes, named
// format) are populated by the conversion solver and consulted at render
// time only.
type Value struct {
	V        float64
	U        Vector
	Absolute bool
	Offset   float64

	showUnit   *Vector
	showFormat string
	showPrefix []string
}

// New returns a pure-number quantity.
func New(v float64) Value {
	return Value{V: v}
}

// ShowUnit returns the display vector attached by the solver, if any.
func (x Value) ShowUnit() (Vector, bool) {
	if x.showUnit == nil {
		return Vector{}, false
	}
	return *x.showUnit, true
}

// position is the quantity's location on its dimension's axis: the stored
// magnitude, shifted by the zero offset for absolute values.
func (x Value) position() float64 {
	if x.Absolute {
		return x.V + x.Offset
	}
	return x.V
}

// CheckUnits verifies that y is unit-compatible with x; where names the
// calling operation for diagnostics.
func (x Value) CheckUnits(y Value, where string) error {
	if x.U.Equal(y.U) {
		return nil
	}
	if ZeroTolerant && (x.V == 0 || y.V == 0) {
		return nil
	}
	return &UnitMismatchError{U1: x.U, U2: y.U, Where: where}
}

// CheckPure verifies that x is a pure number and returns its magnitude;
// where names the calling operation for diagnostics.
func (x Value) CheckPure(where string) (float64, error) {
	if x.U.IsPure() {
		return x.V, nil
	}
	if ZeroTolerant && x.V == 0 {
		return 0, nil
	}
	return 0, &UnitMismatchError{U1: x.U, U2: Vector{}, Where: where}
}

// Add sums two quantities of identical unit. Two absolute quantities cannot
// be added: there is no meaningful sum of two epochs.
func (x Value) Add(y Value) (Value, error) {
	if err := x.CheckUnits(y, "add"); err != nil {
		return Value{}, err
	}
	if x.Absolute && y.Absolute {
		return Value{}, &AffineError{A1: x.Absolute, A2: y.Absolute, Where: "add"}
	}
	out := Value{V: x.V + y.V, U: unionUnit(x, y)}
	if x.Absolute || y.Absolute {
		out.Absolute = true
		out.Offset = x.Offset + y.Offset
	}
	return out, nil
}

// Sub subtracts. Absolute minus absolute yields a relative difference;
// relative minus absolute is an affine error.
func (x Value) Sub(y Value) (Value, error) {
	if err := x.CheckUnits(y, "sub"); err != nil {
		return Value{}, err
	}
	offset := x.Offset - y.Offset
	switch {
	case x.Absolute && y.Absolute:
		return Value{V: x.V - y.V + offset, U: unionUnit(x, y)}, nil
	case x.Absolute:
		return Value{V: x.V - y.V, U: unionUnit(x, y), Absolute: true, Offset: offset}, nil
	case y.Absolute:
		return Value{}, &AffineError{A1: x.Absolute, A2: y.Absolute, Where: "sub"}
	default:
		return Value{V: x.V - y.V, U: unionUnit(x, y)}, nil
	}
}

// Mul multiplies: unit vectors add. The result is always relative; absolute
// quantities lose their meaning under multiplication.
func (x Value) Mul(y Value) Value {
	return Value{V: x.V * y.V, U: x.U.Add(y.U)}
}

// Div divides: unit vectors subtract. The result is always relative.
func (x Value) Div(y Value) Value {
	return Value{V: x.V / y.V, U: x.U.Sub(y.U)}
}

// Pow raises x to the power y; the exponent must be unit-free. The unit
// exponents scale by the nicest rational near y's magnitude, so cube roots
// render as ^1/3 rather than ^0.333.
func (x Value) Pow(y Value) (Value, error) {
	e, err := y.CheckPure("pow")
	if err != nil {
		return Value{}, err
	}
	return x.powRat(fraction(e)), nil
}

func (x Value) powRat(e *big.Rat) Value {
	return Value{V: math.Pow(x.V, ratFloat(e)), U: x.U.Scale(e)}
}

// Cmp compares two quantities of identical unit, returning -1, 0 or 1;
// where names the comparison for diagnostics.
func (x Value) Cmp(y Value, where string) (int, error) {
	if err := x.CheckUnits(y, where); err != nil {
		return 0, err
	}
	switch {
	case x.V < y.V:
		return -1, nil
	case x.V > y.V:
		return 1, nil
	default:
		return 0, nil
	}
}

// Equals reports magnitude equality between unit-compatible quantities.
func (x Value) Equals(y Value) (bool, error) {
	c, err := x.Cmp(y, "eq")
	return c == 0, err
}

// Neg negates. An absolute quantity reflects about its zero point rather
// than flipping its magnitude through zero.
func (x Value) Neg() Value {
	out := x
	out.V = -x.V
	if x.Absolute {
		out.Offset = -x.Offset
	}
	return out
}

// Abs returns the magnitude-absolute value as a relative quantity.
func (x Value) Abs() Value {
	return Value{V: math.Abs(x.V), U: x.U}
}

// Tilde toggles the absolute flag: an absolute reading becomes the plain
// magnitude at its position (offset folded in), and a relative magnitude
// becomes an absolute reading with zero offset. This is how a temperature
// difference is told apart from a temperature.
func (x Value) Tilde() Value {
	if x.Absolute {
		return Value{V: x.V + x.Offset, U: x.U}
	}
	return Value{V: x.V, U: x.U, Absolute: true}
}

// String renders magnitude and raw unit vector, ignoring display hints
// (those need a Registry; see Registry.Show).
func (x Value) String() string {
	return strconv.FormatFloat(x.V, 'g', -1, 64) + x.U.String()
}

// unionUnit picks the non-degenerate unit when zero tolerance let a pure
// zero through.
func unionUnit(x, y Value) Vector {
	if x.U.IsPure() && !y.U.IsPure() {
		return y.U.clone()
	}
	return x.U.clone()
}
