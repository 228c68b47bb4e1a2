// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package units

import (
	"fmt"
	"math/big"
	"strings"
)

// Key identifies one dimension of a unit vector. It is either a registered
// base unit (Base >= 0, Name captures the base unit's name at creation so
// rendering needs no registry), a literal unit name (Base == -1; quoted
// names keep their quote characters, marking variable units), or a nested
// sub-vector used when a composite display unit such as km/hour must act as
// one atomic basis element.
type Key struct {
	Base int
	Name string
	Sub  *Vector
}

func baseKey(index int, name string) Key {
	return Key{Base: index, Name: name}
}

func nameKey(name string) Key {
	return Key{Base: -1, Name: name}
}

func subKey(v Vector) Key {
	return Key{Base: -1, Sub: &v}
}

// id is the matching identity of a key within a vector.
func (k Key) id() string {
	if k.Sub != nil {
		return "(" + k.Sub.id() + ")"
	}
	if k.Base >= 0 {
		return fmt.Sprintf("#%d", k.Base)
	}
	return k.Name
}

func (k Key) isVariable() bool {
	return k.Sub == nil && len(k.Name) >= 2 &&
		(k.Name[0] == '\'' || k.Name[0] == '"') && k.Name[0] == k.Name[len(k.Name)-1]
}

func (k Key) isSubstituted() bool {
	return k.Sub == nil && len(k.Name) >= 2 && k.Name[0] == '"' && k.Name[len(k.Name)-1] == '"'
}

// Vector is an ordered sparse mapping from dimension key to exact rational
// exponent. The empty vector denotes a pure number. All operations return
// new vectors; insertion order is preserved for deterministic rendering.
type Vector struct {
	keys []Key
	exps []*big.Rat
}

func simpleVector(k Key, e *big.Rat) Vector {
	if e.Sign() == 0 {
		return Vector{}
	}
	return Vector{keys: []Key{k}, exps: []*big.Rat{new(big.Rat).Set(e)}}
}

func (v Vector) Len() int {
	return len(v.keys)
}

// id is the canonical matching identity of a vector used as a nested key.
func (v Vector) id() string {
	var b strings.Builder
	for i, k := range v.keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k.id())
		b.WriteByte('^')
		b.WriteString(v.exps[i].RatString())
	}
	return b.String()
}

func (v Vector) clone() Vector {
	out := Vector{
		keys: append([]Key(nil), v.keys...),
		exps: make([]*big.Rat, len(v.exps)),
	}
	for i, e := range v.exps {
		out.exps[i] = new(big.Rat).Set(e)
	}
	return out
}

func (v Vector) index(id string) int {
	for i, k := range v.keys {
		if k.id() == id {
			return i
		}
	}
	return -1
}

// exp returns the exponent for key k, implicitly zero when absent.
func (v Vector) exp(k Key) *big.Rat {
	if i := v.index(k.id()); i >= 0 {
		return new(big.Rat).Set(v.exps[i])
	}
	return new(big.Rat)
}

// dropZeros removes entries whose exponent collapsed to zero.
func (v Vector) dropZeros() Vector {
	out := Vector{}
	for i, k := range v.keys {
		if v.exps[i].Sign() != 0 {
			out.keys = append(out.keys, k)
			out.exps = append(out.exps, v.exps[i])
		}
	}
	return out
}

// Add merges two vectors component-wise: the product of the units they
// represent. New keys keep their first-seen order.
func (v Vector) Add(o Vector) Vector {
	out := v.clone()
	for i, k := range o.keys {
		if j := out.index(k.id()); j >= 0 {
			out.exps[j].Add(out.exps[j], o.exps[i])
		} else {
			out.keys = append(out.keys, k)
			out.exps = append(out.exps, new(big.Rat).Set(o.exps[i]))
		}
	}
	return out.dropZeros()
}

// Sub is the quotient of the units the vectors represent.
func (v Vector) Sub(o Vector) Vector {
	return v.Add(o.Neg())
}

func (v Vector) Neg() Vector {
	return v.Scale(big.NewRat(-1, 1))
}

// Scale multiplies every exponent by f: raising the unit to the power f.
func (v Vector) Scale(f *big.Rat) Vector {
	if f.Sign() == 0 {
		return Vector{}
	}
	out := v.clone()
	for i := range out.exps {
		out.exps[i].Mul(out.exps[i], f)
	}
	return out
}

// Pow raises a display vector to the power f. A single-entry exponent-one
// vector just takes the exponent; a multi-term vector is wrapped as one
// nested basis element so that (km/hour)^2 stays atomic.
func (v Vector) Pow(f *big.Rat) Vector {
	if len(v.keys) == 1 && ratIsOne(v.exps[0]) {
		return simpleVector(v.keys[0], f)
	}
	if ratIsOne(f) {
		return v.clone()
	}
	return simpleVector(subKey(v.clone()), f)
}

// IsPure reports whether the vector denotes a pure number.
func (v Vector) IsPure() bool {
	for i, k := range v.keys {
		if k.Sub == nil && k.Name == "" && k.Base < 0 {
			continue
		}
		if v.exps[i].Sign() != 0 {
			return false
		}
	}
	return true
}

// Equal compares exponents over the union of keys, treating missing keys as
// zero.
func (v Vector) Equal(o Vector) bool {
	for i, k := range v.keys {
		if v.exps[i].Cmp(o.exp(k)) != 0 {
			return false
		}
	}
	for i, k := range o.keys {
		if o.exps[i].Cmp(v.exp(k)) != 0 {
			return false
		}
	}
	return true
}

// sortForDisplay stably reorders entries so positive exponents come first.
func (v Vector) sortForDisplay() Vector {
	out := Vector{}
	for i, k := range v.keys {
		if v.exps[i].Sign() >= 0 {
			out.keys = append(out.keys, k)
			out.exps = append(out.exps, v.exps[i])
		}
	}
	for i, k := range v.keys {
		if v.exps[i].Sign() < 0 {
			out.keys = append(out.keys, k)
			out.exps = append(out.exps, v.exps[i])
		}
	}
	return out
}

// dense lays the base-unit components out as a float slice of length n,
// for the solver's linear algebra. Non-base keys are ignored.
func (v Vector) dense(n int) []float64 {
	out := make([]float64, n)
	for i, k := range v.keys {
		if k.Sub == nil && k.Base >= 0 && k.Base < n {
			out[k.Base] += ratFloat(v.exps[i])
		}
	}
	return out
}

// Show renders the vector without enclosing brackets. Double-quoted variable
// units are omitted (they are substituted away at display time); nested
// sub-vectors and names containing operators are parenthesized.
func (v Vector) Show(latex bool) string {
	var parts []string
	for i, k := range v.keys {
		e := v.exps[i]
		if e.Sign() == 0 {
			continue
		}
		var base string
		switch {
		case k.Sub != nil:
			base = k.Sub.Show(latex)
			if k.Sub.Len() > 1 || !ratIsOne(e) {
				base = "(" + base + ")"
			}
		case k.Name == "":
			continue
		case k.isSubstituted():
			continue
		default:
			if latex {
				if k.isVariable() {
					base = `\mathbf{` + k.Name[1:len(k.Name)-1] + `}`
				} else {
					base = `\mathrm{` + k.Name + `}`
				}
			} else {
				base = k.Name
			}
			if strings.ContainsAny(base, " ^/") {
				base = "(" + base + ")"
			}
		}
		parts = append(parts, base+expSuffix(e, latex))
	}
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 && strings.HasPrefix(parts[0], "(") && strings.HasSuffix(parts[0], ")") {
		return parts[0][1 : len(parts[0])-1]
	}
	if latex {
		return strings.Join(parts, `\,`)
	}
	return strings.Join(parts, " ")
}

// String renders the vector in brackets, or empty for a pure number.
func (v Vector) String() string {
	s := v.Show(false)
	if s == "" {
		return ""
	}
	return "[" + s + "]"
}

func expSuffix(e *big.Rat, latex bool) string {
	if ratIsOne(e) {
		return ""
	}
	p, q := e.Num(), e.Denom()
	if latex {
		if e.IsInt() {
			return fmt.Sprintf("{}^{%s}", p)
		}
		return fmt.Sprintf("{}^{%s/%s}", p, q)
	}
	if e.IsInt() {
		return fmt.Sprintf("^%s", p)
	}
	return fmt.Sprintf("^%s/%s", p, q)
}
