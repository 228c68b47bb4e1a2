// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package units

// LazyValue recomputes a quantity from a thunk on each access. With Once
// the whole quantity freezes after the first evaluation; with UnitOnce
// only the unit, affine flags and display hints freeze while the scalar
// keeps tracking the thunk (a currency amount whose rate updates, say). A
// frozen unit that no longer matches a recomputation is reported as a
// LazyDriftError, not silently ignored.
type LazyValue struct {
	fn       func() (Value, error)
	once     bool
	unitOnce bool

	hasValue bool
	cached   Value

	unitSet bool
	frozen  Value // unit, flags and display hints only
}

// NewLazy wraps a thunk; policy is set by Once and UnitOnce options.
func NewLazy(fn func() (Value, error), opts ...LazyOption) *LazyValue {
	l := &LazyValue{fn: fn}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type LazyOption func(*LazyValue)

// Once freezes the whole quantity after the first evaluation.
func Once() LazyOption {
	return func(l *LazyValue) { l.once = true }
}

// UnitOnce freezes the unit after the first evaluation but keeps
// recomputing the scalar value.
func UnitOnce() LazyOption {
	return func(l *LazyValue) { l.unitOnce = true }
}

// Get evaluates the thunk under the caching policy.
func (l *LazyValue) Get() (Value, error) {
	if l.once && l.hasValue {
		return l.cached, nil
	}
	v, err := l.fn()
	if err != nil {
		return Value{}, err
	}
	if l.unitOnce {
		if !l.unitSet {
			l.frozen = v
			l.frozen.V = 0
			l.unitSet = true
		} else {
			if !v.U.Equal(l.frozen.U) {
				return Value{}, &LazyDriftError{Old: l.frozen.U, New: v.U}
			}
			v.Absolute = l.frozen.Absolute
			v.Offset = l.frozen.Offset
			v.showUnit = l.frozen.showUnit
			v.showFormat = l.frozen.showFormat
			v.showPrefix = l.frozen.showPrefix
		}
	}
	if l.once {
		l.cached = v
		l.hasValue = true
	}
	return v, nil
}
