// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Options struct {
	trace        bool
	precision    int
	latex        bool
	zeroTolerant bool
	currencies   bool
	date         string
	system       string
	verbose      int
}

var options = Options{
	precision: 4,
}

func heredoc(text string) string {
	lines := strings.Split(strings.TrimRight(text, " \t\n"), "\n")

	// Find the minimum leading whitespace for non-empty lines
	minIndent := -1
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			leadingSpaces := len(line) - len(strings.TrimLeft(line, " "))
			if minIndent == -1 || leadingSpaces < minIndent {
				minIndent = leadingSpaces
			}
		}
	}

	// Remove the minimum leading whitespace from each line
	for i, line := range lines {
		if len(line) >= minIndent {
			lines[i] = line[minIndent:]
		}
	}

	return strings.Join(lines, "\n")
}

func usage() {
	fmt.Printf("%s\n", heredoc(fmt.Sprintf(`
        Usage: calc [OPTIONS | ARGUMENTS]
        Options:
          -t         Trace operations
          -p Integer Set display precision for floating point numbers (default: %d, -1 for full)
          -z         Zero-tolerant mode: a zero magnitude is compatible with any unit
          -L         Show values in LaTeX markup
          -C         Load currency exchange rates as units
          -D Date    Date for currency conversion rates (e.g. 2022-01-01)
          -S System  Default display system, comma separated (e.g. 'm,kg,s' or 'SI')
          -v         Verbose output (repeat for additional output)
          -h         Show extended help
	`, options.precision)))
}

func doHelp() {
	usage()

	fmt.Printf("%s\n", heredoc(`
        Arguments are evaluated left to right on a stack:
          Numbers are pushed
          [unit] attaches units to a bare number, e.g. 20 [m/s]
          [unit, unit, ...] converts the top of the stack into those units,
            e.g. 20 [m/s] [km/hour] or 20 [m/s] [km, hour]
            Entries may be bare prefixes (k), prefix sets (*) or the
            identity prefix (.), e.g. 1300 [s] [s, k*, M*]
    `))

	fmt.Printf("%s\n", heredoc(`
        Stack Operations:
          x: exchange top 2 elements of the stack
          d: duplicate top element of the stack (aliased as dup)
          p: pop top element off of the stack (aliased as pop)
    `))

	fmt.Printf("%s\n", heredoc(`
        Binary numerical operations:
          + - * /
          *    (aliased as . and •)
          **   (power, aliased as pow; exponent must be dimensionless)

        Unary numerical operations:
          n     (number: remove any units)
          chs   (change sign)
          abs   (absolute value)
          r     (reciprocal)
          sqrt  (square root)
          ~     (toggle absolute/relative for affine units, e.g. temperatures)
    `))

	fmt.Printf("%s\n", heredoc(`
        Units:
          SI base units (m g s A K mol cd) with decimal prefixes, plus
          Hz N Pa J W C V min hour day mile mph L eV and the affine degC/°C.
          Constants are available as quoted variable units: 'c' 'G' 'h'
          'hbar' 'ke' 'k' 'NA' 'gn' 'pi', e.g. 1 [kg] ['c'^2] for an energy.
          With -C, currency codes (USD, EUR, ...) and symbols ($ € £ ¥ ₿)
          become units anchored on USD.
    `))
}

func scanOptions(args []string) []string {
	for i := 0; i < len(args); { // scan args for options, e.g. -h, -p N
		consumed := 1
		switch args[i] {
		case "-h":
			doHelp()
			os.Exit(1)
		case "-t":
			options.trace = true
		case "-z":
			options.zeroTolerant = true
		case "-L":
			options.latex = true
		case "-C":
			options.currencies = true
		case "-v":
			options.verbose++
		case "-D":
			if i < len(args)-1 {
				options.date = args[i+1]
				options.currencies = true
				consumed = 2
			} else {
				fmt.Fprintf(os.Stderr, "Missing required argument for '%s', exiting\n", args[i])
				os.Exit(1)
			}
		case "-S":
			if i < len(args)-1 {
				options.system = args[i+1]
				consumed = 2
			} else {
				fmt.Fprintf(os.Stderr, "Missing required argument for '%s', exiting\n", args[i])
				os.Exit(1)
			}
		case "-p":
			if i < len(args)-1 {
				if precision, err := strconv.Atoi(args[i+1]); err == nil {
					options.precision = precision
					consumed = 2
				} else {
					fmt.Fprintf(os.Stderr, "Integer argument required for '%s', cannot parse '%s', exiting\n", args[i], args[i+1])
					os.Exit(1)
				}
			} else {
				fmt.Fprintf(os.Stderr, "Missing required argument for '%s', exiting\n", args[i])
				os.Exit(1)
			}
		default:
			consumed = 0
		}

		if consumed == 0 {
			i++
		} else {
			args = append(args[:i], args[i+consumed:]...) // remove the option and any argument
		}
	}

	return args
}
