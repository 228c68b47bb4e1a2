// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package units

import (
	"fmt"
	"math/big"
)

// parser is a recursive-descent reading of the unit grammar:
//
//	expression : expression1 { UNITDIV expression1 }
//	expression1: postfix { [DOT] postfix }
//	postfix    : factor { POW exponent } | unit NUMBER
//	factor     : LPAREN expression RPAREN | QUOTE name QUOTE
//	           | DQUOTE name DQUOTE | unit
//	exponent   : NUMBER [NUMDIV NUMBER] | LPAREN exponent RPAREN
//
// A power binds to the factor immediately before it, so m^2 s^-1 means
// (m^2)(s^-1). A number directly after a bare unit is exponent shorthand:
// m2 means m^2.
type parser struct {
	reg  *Registry
	expr string
	toks []token
	pos  int
}

// Parse resolves a unit specification to the quantity it denotes (the
// factor relative to base units, with any affine flags) and its display
// tree. Parsing never mutates the registry; a ParseError means nothing was
// applied.
func (r *Registry) Parse(expr string) (Value, Vector, error) {
	toks, err := tokenize(expr)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Expr = expr
		}
		return Value{}, Vector{}, err
	}
	p := &parser{reg: r, expr: expr, toks: toks}
	if len(toks) == 0 {
		return New(1), Vector{}, nil
	}
	val, tree, err := p.parseExpr()
	if err != nil {
		return Value{}, Vector{}, err
	}
	if p.pos != len(p.toks) {
		return Value{}, Vector{}, p.errorf("syntax error at `%s'", p.toks[p.pos].text)
	}
	return val, tree, nil
}

// Value builds a quantity from a magnitude and a unit specification, with
// the parsed tree attached as the display unit.
func (r *Registry) Value(v float64, expr string) (Value, error) {
	uval, tree, err := r.Parse(expr)
	if err != nil {
		return Value{}, err
	}
	out := Value{
		V:        v * uval.V,
		U:        uval.U,
		Absolute: uval.Absolute,
		Offset:   uval.Offset,
	}
	if tree.Len() > 0 {
		out.showUnit = &tree
	}
	return out, nil
}

// MustValue is Value for hardwired specifications known to be well formed.
func (r *Registry) MustValue(v float64, expr string) Value {
	out, err := r.Value(v, expr)
	if err != nil {
		panic(err)
	}
	return out
}

func (p *parser) peek() tokenKind {
	if p.pos >= len(p.toks) {
		return tokEOF
	}
	return p.toks[p.pos].kind
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Expr: p.expr, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) parseExpr() (Value, Vector, error) {
	val, tree, err := p.parseExpr1()
	if err != nil {
		return Value{}, Vector{}, err
	}
	for p.peek() == tokUnitDiv {
		p.next()
		v2, t2, err := p.parseExpr1()
		if err != nil {
			return Value{}, Vector{}, err
		}
		val = val.Div(v2)
		tree = tree.Sub(t2)
	}
	return val, tree, nil
}

func (p *parser) parseExpr1() (Value, Vector, error) {
	val, tree, err := p.parsePostfix()
	if err != nil {
		return Value{}, Vector{}, err
	}
	for {
		switch p.peek() {
		case tokDot:
			p.next()
		case tokUnit, tokQuote, tokDQuote, tokLParen:
		default:
			return val, tree, nil
		}
		v2, t2, err := p.parsePostfix()
		if err != nil {
			return Value{}, Vector{}, err
		}
		val = val.Mul(v2)
		tree = tree.Add(t2)
	}
}

func (p *parser) parsePostfix() (Value, Vector, error) {
	val, tree, bare, err := p.parseFactor()
	if err != nil {
		return Value{}, Vector{}, err
	}
	if bare && p.peek() == tokNumber {
		e := p.next().num
		val = val.powRat(e)
		tree = tree.Pow(e)
	}
	for p.peek() == tokPow {
		p.next()
		e, err := p.parseExponent()
		if err != nil {
			return Value{}, Vector{}, err
		}
		val = val.powRat(e)
		tree = tree.Pow(e)
	}
	return val, tree, nil
}

// parseExponent reads a rational power: an integer, a decimal, a NUMDIV
// fraction such as 1/2, or any of those in parentheses.
func (p *parser) parseExponent() (*big.Rat, error) {
	if p.peek() == tokLParen {
		p.next()
		e, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		if p.peek() != tokRParen {
			return nil, p.errorf("expected `)' in exponent")
		}
		p.next()
		return e, nil
	}
	if p.peek() != tokNumber {
		return nil, p.errorf("expected exponent after `^'")
	}
	e := new(big.Rat).Set(p.next().num)
	if p.peek() == tokNumDiv {
		p.next()
		if p.peek() != tokNumber {
			return nil, p.errorf("expected denominator after `/'")
		}
		den := p.next().num
		if den.Sign() == 0 {
			return nil, p.errorf("zero denominator in exponent")
		}
		e.Quo(e, den)
	}
	return e, nil
}

// parseFactor returns the factor's value and tree; bare reports a plain
// unresolved-suffix unit name, the only form the NUMBER exponent shorthand
// applies to.
func (p *parser) parseFactor() (val Value, tree Vector, bare bool, err error) {
	switch p.peek() {
	case tokLParen:
		p.next()
		val, tree, err = p.parseExpr()
		if err != nil {
			return
		}
		if p.peek() != tokRParen {
			err = p.errorf("expected `)'")
			return
		}
		p.next()
		return
	case tokQuote, tokDQuote:
		quote := p.next()
		if p.peek() != tokUnit {
			err = p.errorf("expected name after %s", quote.text)
			return
		}
		name := p.next().text
		if p.peek() != quote.kind {
			err = p.errorf("unbalanced quote around `%s'", name)
			return
		}
		p.next()
		val, err = p.reg.variable(name)
		if err != nil {
			err = &ParseError{Expr: p.expr,
				Message: "unrecognized special unit `" + name + "'"}
			return
		}
		tree = simpleVector(nameKey(quote.text+name+quote.text), ratOne())
		return
	case tokUnit:
		name := p.next().text
		val, tree, err = p.reg.resolveUnit(name)
		if err != nil {
			err = &ParseError{Expr: p.expr, Message: "unrecognized unit `" + name + "'"}
			return
		}
		bare = true
		return
	default:
		err = p.errorf("syntax error")
		return
	}
}
