// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package units

import (
	"math"
	"math/big"
)

const (
	// tolerance used when comparing computed exponents and solver residuals
	epsilon = 1e-7

	// largest denominator fraction() will reconstruct; beyond this a float
	// exponent is considered genuinely irrational for display purposes
	maxDenominator = 10000000
)

func almostEqual(x, y float64) bool {
	return math.Abs(x-y) < epsilon
}

func ratOne() *big.Rat {
	return big.NewRat(1, 1)
}

func ratFloat(r *big.Rat) float64 {
	f, _ := r.Float64()
	return f
}

func ratIsOne(r *big.Rat) bool {
	return r.Cmp(oneRat) == 0
}

var oneRat = big.NewRat(1, 1)

// fraction recovers the nicest rational near x so that, for example, a unit
// raised to a computed 0.33333333 renders as ^1/3. Heuristic by design:
// denominators are capped at maxDenominator and any float within rounding
// distance of a simple fraction collapses onto it.
func fraction(x float64) *big.Rat {
	r := new(big.Rat).SetFloat64(x)
	if r == nil { // NaN or Inf
		return big.NewRat(0, 1)
	}
	return limitDenominator(r, maxDenominator)
}

// limitDenominator returns the closest rational to r whose denominator is at
// most maxDen, via the usual continued-fraction bounds.
func limitDenominator(r *big.Rat, maxDen int64) *big.Rat {
	limit := big.NewInt(maxDen)
	if r.Denom().Cmp(limit) <= 0 {
		return new(big.Rat).Set(r)
	}

	neg := r.Sign() < 0
	target := new(big.Rat).Abs(r)
	n := new(big.Int).Set(target.Num())
	d := new(big.Int).Set(target.Denom())

	p0, q0 := big.NewInt(0), big.NewInt(1)
	p1, q1 := big.NewInt(1), big.NewInt(0)
	for {
		a, rem := new(big.Int), new(big.Int)
		a.QuoRem(n, d, rem)
		q2 := new(big.Int).Mul(a, q1)
		q2.Add(q2, q0)
		if q2.Cmp(limit) > 0 {
			break
		}
		p2 := new(big.Int).Mul(a, p1)
		p2.Add(p2, p0)
		p0, q0, p1, q1 = p1, q1, p2, q2
		n, d = d, rem
		if rem.Sign() == 0 {
			break
		}
	}

	k := new(big.Int).Sub(limit, q0)
	k.Div(k, q1)
	b1n := new(big.Int).Mul(k, p1)
	b1n.Add(b1n, p0)
	b1d := new(big.Int).Mul(k, q1)
	b1d.Add(b1d, q0)
	bound1 := new(big.Rat).SetFrac(b1n, b1d)
	bound2 := new(big.Rat).SetFrac(p1, q1)

	d1 := new(big.Rat).Sub(bound1, target)
	d2 := new(big.Rat).Sub(bound2, target)
	best := bound2
	if d2.Abs(d2).Cmp(d1.Abs(d1)) > 0 {
		best = bound1
	}
	if neg {
		best.Neg(best)
	}
	return best
}
