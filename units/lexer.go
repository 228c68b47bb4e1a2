// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package units

import (
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokUnit
	tokNumber
	tokNumDiv  // slash followed by a number: exponent fraction
	tokUnitDiv // slash followed by a unit: division
	tokPow
	tokDot
	tokLParen
	tokRParen
	tokQuote
	tokDQuote
)

type token struct {
	kind tokenKind
	text string
	num  *big.Rat // set for tokNumber
}

func (t token) String() string {
	return t.text
}

// currencyGlyphs are single-character unit names allowed to start an
// identifier even though they are not letters.
const currencyGlyphs = "$€£¥₿¢"

// tokenize splits a unit specification into tokens. Spaces, tabs and the
// multiplication star are ignored. A slash is a numeric divider when the
// next nonblank character is a digit (the 1/2 in m^1/2) and a unit divider
// otherwise (the per in km/hour).
func tokenize(expr string) ([]token, error) {
	runes := []rune(expr)
	var toks []token
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '*':
			i++
		case r == '^':
			toks = append(toks, token{kind: tokPow, text: "^"})
			i++
		case r == '.':
			toks = append(toks, token{kind: tokDot, text: "."})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "("})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")"})
			i++
		case r == '\'':
			toks = append(toks, token{kind: tokQuote, text: "'"})
			i++
		case r == '"':
			toks = append(toks, token{kind: tokDQuote, text: `"`})
			i++
		case r == '/':
			j := i + 1
			for j < len(runes) && (runes[j] == ' ' || runes[j] == '\t') {
				j++
			}
			if j < len(runes) && isExponentStart(runes, j) {
				toks = append(toks, token{kind: tokNumDiv, text: "/"})
			} else {
				toks = append(toks, token{kind: tokUnitDiv, text: "/"})
			}
			i++
		case unicode.IsDigit(r) || ((r == '-' || r == '+') && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			tok, n, err := scanNumber(runes, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = n
		case isIdentStart(r):
			tok, n := scanIdent(runes, i)
			toks = append(toks, tok)
			i = n
		default:
			return nil, &ParseError{Expr: expr,
				Message: "illegal character `" + string(r) + "'"}
		}
	}
	return toks, nil
}

func isExponentStart(runes []rune, j int) bool {
	r := runes[j]
	if unicode.IsDigit(r) {
		return true
	}
	return (r == '-' || r == '+') && j+1 < len(runes) && unicode.IsDigit(runes[j+1])
}

func isIdentStart(r rune) bool {
	if r == '°' {
		return true
	}
	if strings.ContainsRune(currencyGlyphs, r) {
		return true
	}
	return unicode.IsLetter(r)
}

// scanIdent reads one unit name. Names are letters, optionally joined by
// single dashes (light-year); a degree sign may be followed by letters or
// digits; a currency glyph stands alone.
func scanIdent(runes []rune, i int) (token, int) {
	start := i
	r := runes[i]
	if strings.ContainsRune(currencyGlyphs, r) {
		return token{kind: tokUnit, text: string(r)}, i + 1
	}
	if r == '°' {
		i++
		for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i])) {
			i++
		}
		return token{kind: tokUnit, text: string(runes[start:i])}, i
	}
	for i < len(runes) {
		switch {
		case unicode.IsLetter(runes[i]):
			i++
		case runes[i] == '-' && i+1 < len(runes) && unicode.IsLetter(runes[i+1]):
			i++
		default:
			return token{kind: tokUnit, text: string(runes[start:i])}, i
		}
	}
	return token{kind: tokUnit, text: string(runes[start:i])}, i
}

// scanNumber reads an optionally signed integer or decimal. Decimals are
// folded onto the nicest nearby rational so that ^0.5 means ^1/2.
func scanNumber(runes []rune, i int) (token, int, error) {
	start := i
	if runes[i] == '-' || runes[i] == '+' {
		i++
	}
	for i < len(runes) && unicode.IsDigit(runes[i]) {
		i++
	}
	isFloat := false
	if i+1 < len(runes) && runes[i] == '.' && unicode.IsDigit(runes[i+1]) {
		isFloat = true
		i++
		for i < len(runes) && unicode.IsDigit(runes[i]) {
			i++
		}
	}
	text := string(runes[start:i])
	var r *big.Rat
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token{}, 0, &ParseError{Expr: text, Message: "number conversion failed"}
		}
		r = fraction(f)
	} else {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return token{}, 0, &ParseError{Expr: text, Message: "number conversion failed"}
		}
		r = big.NewRat(n, 1)
	}
	return token{kind: tokNumber, text: text, num: r}, i, nil
}
