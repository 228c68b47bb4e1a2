// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package units

import "fmt"

// UnitMismatchError reports an operation between two quantities whose unit
// vectors differ. Where names the operation, supplied by the call site.
type UnitMismatchError struct {
	U1, U2 Vector
	Where  string
}

func (e *UnitMismatchError) Error() string {
	return fmt.Sprintf("%s incompatible with %s in %s",
		orEmpty(e.U1.String()), orEmpty(e.U2.String()), e.Where)
}

// ParseError reports malformed unit-specification text or an unresolved
// identifier. Parsing is all-or-nothing: a ParseError means no part of the
// expression was applied.
type ParseError struct {
	Expr    string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unit error for `%s': %s", e.Expr, e.Message)
}

// AffineError reports physically meaningless affine arithmetic, such as
// adding two absolute quantities.
type AffineError struct {
	A1, A2 bool
	Where  string
}

func (e *AffineError) Error() string {
	return fmt.Sprintf("%s unit incompatible with %s unit in %s",
		affineName(e.A1), affineName(e.A2), e.Where)
}

// RegistryError reports a failed registry mutation: a duplicate base unit, a
// malformed name, or deleting a nonexistent entry.
type RegistryError struct {
	Name    string
	Message string
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("registry error for `%s': %s", e.Name, e.Message)
}

// LazyDriftError reports a unit-frozen lazy value whose recomputed unit no
// longer matches the frozen one.
type LazyDriftError struct {
	Old, New Vector
}

func (e *LazyDriftError) Error() string {
	return fmt.Sprintf("unit changed for lazy value from %s to %s",
		orEmpty(e.Old.String()), orEmpty(e.New.String()))
}

func orEmpty(s string) string {
	if s == "" {
		return "[]"
	}
	return s
}

func affineName(absolute bool) string {
	if absolute {
		return "absolute"
	}
	return "relative"
}
