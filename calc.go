// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"unitcalc/units"
)

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

var registry *units.Registry

func newLogger() *zap.Logger {
	if options.verbose == 0 {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	if options.verbose == 1 {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		die("Unable to initialize logging: %v, exiting", err)
	}
	return log
}

// isUnitSpec recognizes a bracketed unit argument such as [m/s] or [km, hour].
func isUnitSpec(arg string) (string, bool) {
	if len(arg) >= 2 && arg[0] == '[' && arg[len(arg)-1] == ']' {
		return arg[1 : len(arg)-1], true
	}
	return "", false
}

// applySpec attaches units to a bare number on top of the stack, or
// converts the top into the requested display system when it already
// carries units. Comma-separated entries form a multi-unit system.
func applySpec(stack *Stack, spec string) {
	value, err := stack.pop()
	if err != nil {
		die("Not enough arguments for '[%s]', exiting", spec)
	}

	parts := strings.Split(spec, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}

	if value.U.IsPure() && len(parts) == 1 && !strings.HasSuffix(parts[0], "*") && parts[0] != "." {
		attached, err := registry.Value(value.V, parts[0])
		if err != nil {
			die("%v, exiting", err)
		}
		stack.push(attached)
		return
	}

	converted, err := registry.Convert(value, registry.System(parts...))
	if err != nil {
		die("%v, exiting", err)
	}
	stack.push(converted)
}

func main() {
	args := scanOptions(os.Args[1:])
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	units.ZeroTolerant = options.zeroTolerant

	log := newLogger()
	defer log.Sync()

	registry = units.NewRegistry(log)
	if err := units.LoadSI(registry); err != nil {
		die("Unable to initialize units: %v, exiting", err)
	}
	if options.currencies {
		if err := loadCurrencies(registry); err != nil {
			die("Unable to load currencies: %v, exiting", err)
		}
		defer closeDatabase()
	}
	if options.system != "" {
		registry.SetDefaultSystem(registry.System(strings.Split(options.system, ",")...))
	}

	stack := newStack()
	for _, arg := range args {
		if options.trace {
			log.Info("argument", zap.String("arg", arg))
		}
		if num, err := strconv.ParseFloat(arg, 64); err == nil {
			stack.push(units.New(num))
		} else if spec, ok := isUnitSpec(arg); ok {
			applySpec(stack, spec)
		} else if op, ok := BINOP[arg]; ok {
			stack.binaryOp(arg, op)
		} else if op, ok := UNOP[arg]; ok {
			stack.unaryOp(arg, op)
		} else if op, ok := STACKOP[arg]; ok {
			op(stack)
		} else {
			die("Unrecognized argument '%s', exiting", arg)
		}
	}

	stack.print()
}
