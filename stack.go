// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/fatih/color"

	"unitcalc/enumerable"
	"unitcalc/units"
)

type Stack struct {
	values []units.Value
}

func newStack() *Stack {
	return &Stack{values: []units.Value{}}
}

// BINOP are the binary operations; each pops two values and pushes one.
var BINOP = map[string]func(a, b units.Value) (units.Value, error){
	"+": func(a, b units.Value) (units.Value, error) { return a.Add(b) },
	"-": func(a, b units.Value) (units.Value, error) { return a.Sub(b) },
	"*": func(a, b units.Value) (units.Value, error) { return a.Mul(b), nil },
	".": func(a, b units.Value) (units.Value, error) { return a.Mul(b), nil },
	"•": func(a, b units.Value) (units.Value, error) { return a.Mul(b), nil },
	"/": func(a, b units.Value) (units.Value, error) { return a.Div(b), nil },
	"pow": func(a, b units.Value) (units.Value, error) {
		return a.Pow(b)
	},
	"**": func(a, b units.Value) (units.Value, error) {
		return a.Pow(b)
	},
}

// UNOP are the unary operations.
var UNOP = map[string]func(a units.Value) (units.Value, error){
	"chs": func(a units.Value) (units.Value, error) { return a.Neg(), nil },
	"abs": func(a units.Value) (units.Value, error) { return a.Abs(), nil },
	"~":   func(a units.Value) (units.Value, error) { return a.Tilde(), nil },
	"n":   func(a units.Value) (units.Value, error) { return units.New(a.V), nil },
	"r": func(a units.Value) (units.Value, error) {
		return units.New(1).Div(a), nil
	},
	"sqrt": func(a units.Value) (units.Value, error) {
		return a.Pow(units.New(0.5))
	},
}

var STACKOP = map[string]func(*Stack){
	"x":   func(s *Stack) { s.exchange() },
	"d":   func(s *Stack) { s.dup() },
	"dup": func(s *Stack) { s.dup() },
	"p": func(s *Stack) {
		if _, err := s.pop(); err != nil {
			die("Stack is empty for '%s', exiting", "pop")
		}
	},
	"pop": func(s *Stack) {
		if _, err := s.pop(); err != nil {
			die("Stack is empty for '%s', exiting", "pop")
		}
	},
}

func (s *Stack) binaryOp(name string, op func(a, b units.Value) (units.Value, error)) {
	right, _ := s.pop()
	left, err := s.pop()
	if err != nil {
		die("Not enough arguments for binary operation '%s', exiting", name)
	}

	result, err := op(left, right)
	if err != nil {
		die("Error in '%s': %v, exiting", name, err)
	}
	s.push(result)
}

func (s *Stack) unaryOp(name string, op func(a units.Value) (units.Value, error)) {
	value, err := s.pop()
	if err != nil {
		die("Not enough arguments for unary operation '%s', exiting", name)
	}

	result, err := op(value)
	if err != nil {
		die("Error in '%s': %v, exiting", name, err)
	}
	s.push(result)
}

func (s *Stack) push(v units.Value) {
	s.values = append(s.values, v)
}

func (s *Stack) pop() (units.Value, error) {
	if len(s.values) == 0 {
		return units.Value{}, fmt.Errorf("stack is empty")
	}
	v := s.values[len(s.values)-1]
	s.values = s.values[:len(s.values)-1]

	return v, nil
}

func (s *Stack) peek() (units.Value, error) {
	if len(s.values) == 0 {
		return units.Value{}, fmt.Errorf("stack is empty")
	}

	return s.values[len(s.values)-1], nil
}

func (s *Stack) dup() {
	if len(s.values) < 1 {
		die("Stack is empty for '%s', exiting", "duplicate")
	}

	s.values = append(s.values, s.values[len(s.values)-1])
}

func (s *Stack) exchange() {
	if len(s.values) < 2 {
		die("Not enough arguments for '%s', exiting", "exchange")
	}

	s.values[len(s.values)-1], s.values[len(s.values)-2] = s.values[len(s.values)-2], s.values[len(s.values)-1]
}

func (s *Stack) size() int {
	return len(s.values)
}

// rendered is a stack entry split for display alignment.
type rendered struct {
	number string
	unit   string
}

func render(v units.Value) rendered {
	shown, err := registry.Show(v)
	if options.latex {
		shown, err = registry.ShowLatex(v)
	}
	if err != nil {
		die("Unable to display value: %v, exiting", err)
	}

	// The unit part, if any, starts at the opening bracket.
	if i := strings.Index(shown, "["); i >= 0 {
		return rendered{number: strings.TrimRight(shown[:i], " "), unit: shown[i:]}
	}
	return rendered{number: shown}
}

func formatNumber(num string) string {
	if options.precision < 0 {
		return num
	}
	var f float64
	if _, err := fmt.Sscanf(num, "%g", &f); err != nil {
		return num
	}
	if f != 0 && (math.Abs(f) >= 1e15 || math.Abs(f) < 1e-6) {
		return fmt.Sprintf("%.*e", options.precision, f)
	}
	out := fmt.Sprintf("%.*f", options.precision, f)
	if strings.Contains(out, ".") {
		out = strings.TrimRight(out, "0")
		out = strings.TrimRight(out, ".")
	}
	return out
}

func (s *Stack) print() {
	entries := enumerable.Map(s.values, func(v units.Value) rendered {
		r := render(v)
		tilde := ""
		if strings.HasPrefix(r.number, "~") {
			tilde = "~"
			r.number = r.number[1:]
		}
		r.number = tilde + formatNumber(r.number)
		return r
	})

	width := 0
	for _, e := range entries {
		if len(e.number) > width {
			width = len(e.number)
		}
	}

	unitColor := color.New(color.FgCyan)
	for i := len(entries) - 1; i >= 0; i-- {
		fmt.Printf("%*s", width, entries[i].number)
		if entries[i].unit != "" {
			fmt.Print(" ")
			unitColor.Print(entries[i].unit)
		}
		fmt.Println()
	}
}
