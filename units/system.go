// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package units

import (
	"strings"

	"unitcalc/enumerable"
)

// System is an ordered display basis: unit specifications, bare prefixes,
// and wildcard markers, as fed to the conversion solver.
type System struct {
	// Args are the expanded entries handed to the solver.
	Args []string

	repr []string
}

// System builds a display basis from raw entries. Each entry is stripped of
// optional brackets; an entry naming a registered system is spliced in
// place (with quote characters rewritten when the reference itself is
// quoted, so a single-quoted reference to a double-quoted natural system
// yields fixed variable units and vice versa). A star on a system
// reference appends the wildcard prefix marker after its entries.
func (r *Registry) System(args ...string) *System {
	s := &System{}
	for _, arg := range args {
		sarg := strings.Trim(arg, "[] ")
		s.repr = append(s.repr, sarg)
		ssarg := strings.Trim(sarg, "*")

		name, quote := ssarg, byte(0)
		if len(ssarg) >= 2 && (ssarg[0] == '\'' || ssarg[0] == '"') &&
			ssarg[0] == ssarg[len(ssarg)-1] &&
			!strings.ContainsRune(ssarg[1:len(ssarg)-1], rune(ssarg[0])) {
			name = ssarg[1 : len(ssarg)-1]
			quote = ssarg[0]
		}

		if sub, ok := r.systems[name]; ok {
			sub2 := append([]string(nil), sub.Args...)
			switch quote {
			case '\'':
				sub2 = enumerable.Map(sub2, func(a string) string {
					return strings.ReplaceAll(a, `"`, "'")
				})
			case '"':
				sub2 = enumerable.Map(sub2, func(a string) string {
					return strings.ReplaceAll(a, "'", `"`)
				})
			}
			s.Args = append(s.Args, sub2...)
			if strings.HasPrefix(sarg, "*") || strings.HasSuffix(sarg, "*") {
				s.Args = append(s.Args, "*")
			}
		} else {
			s.Args = append(s.Args, sarg)
		}
	}
	return s
}

func (s *System) String() string {
	return "[" + strings.Join(s.repr, ", ") + "]"
}
