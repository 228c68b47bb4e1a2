// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package units

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// basisEntry is a memoized display basis: the matrix of its unit vectors
// over the base units, the display trees, and the parsed unit values. Only
// full-rank bases are cached; they are the common case and the expensive
// one to rebuild.
type basisEntry struct {
	m     *mat.Dense
	trees []Vector
	vals  []Value
}

// Convert re-expresses x in a display system, returning a new quantity
// with its display hints populated.
func (r *Registry) Convert(x Value, sys *System) (Value, error) {
	return r.SetUnits(x, sys.Args)
}

// SetUnits attaches a display basis to x. Entries in us are unit
// specifications, quoted variable units, bare prefixes ("k", "M*", "." for
// the identity) or the wildcard prefix marker "*". The quantity's value
// and unit change only when double-quoted variable units are folded away;
// otherwise only display hints are set.
func (r *Registry) SetUnits(x Value, us []string) (Value, error) {
	s := x
	s.showUnit = nil
	s.showFormat = ""
	s.showPrefix = nil

	// A single format name selects that format and nothing else.
	if len(us) == 1 {
		if _, ok := r.formats[us[0]]; ok {
			s.showFormat = us[0]
			return s, nil
		}
	}

	// Partition prefixes from units: the solver works on units and
	// variable units only, prefix candidates are kept for render time.
	var specs []string
	nunits, nvalues := 0, 0
	for _, u := range us {
		switch {
		case u == "":
			continue
		case u == "*":
			s.showPrefix = append(s.showPrefix, r.prefixes.names...)
		case strings.HasSuffix(u, "*"):
			name := u[:len(u)-1]
			if !r.prefixes.has(name) {
				return Value{}, &ParseError{Expr: u, Message: "unknown prefix"}
			}
			s.showPrefix = append(s.showPrefix, name)
		case u == ".":
			s.showPrefix = append(s.showPrefix, "")
		case isQuoted(u):
			specs = append(specs, u)
			nvalues++
		default:
			if strings.HasPrefix(u, "*") {
				s.showPrefix = append(s.showPrefix, r.prefixes.names...)
				u = u[1:]
			}
			if prefix, unit, ok := r.isUnit(u); ok && unit == "" {
				s.showPrefix = append(s.showPrefix, prefix)
			} else {
				specs = append(specs, u)
				nunits++
			}
		}
	}

	key := strings.Join(specs, "\x00")
	if cached, ok := r.cache.Get(key); ok {
		return r.applyBasis(s, cached.(*basisEntry))
	}

	// Parse each entry into its display tree and value.
	trees := make([]Vector, 0, len(specs))
	vals := make([]Value, 0, len(specs))
	for _, u := range specs {
		if isQuoted(u) {
			v, err := r.variable(u[1 : len(u)-1])
			if err != nil {
				return Value{}, &ParseError{Expr: u, Message: "unrecognized special unit"}
			}
			trees = append(trees, simpleVector(nameKey(u), ratOne()))
			vals = append(vals, v)
		} else {
			v, tree, err := r.Parse(u)
			if err != nil {
				return Value{}, err
			}
			trees = append(trees, tree)
			vals = append(vals, v)
		}
	}

	// Pure number shown in a pure unit (percent, ppm): no algebra needed.
	if len(specs) == 1 && x.U.IsPure() && vals[0].U.IsPure() {
		s.showUnit = &trees[0]
		return s, nil
	}

	n := len(r.baseUnits)
	maxrank := len(specs) == 0
	if !maxrank && len(specs) <= n {
		maxrank = gramDet(unitRows(vals, n)) > epsilon
	}

	if maxrank {
		// Extend the requested units to a full-rank basis with base units
		// that are independent of them, then cache the basis.
		entry := &basisEntry{
			trees: append([]Vector(nil), trees...),
			vals:  append([]Value(nil), vals...),
		}
		for i := 0; len(entry.trees) < n && i < n; i++ {
			name := r.baseUnits[i]
			bval, _ := r.units.get(name)
			candidate := append(append([]Value(nil), entry.vals...), bval)
			if gramDet(unitRows(candidate, n)) > epsilon {
				entry.trees = append(entry.trees, simpleVector(nameKey(name), ratOne()))
				entry.vals = append(entry.vals, bval)
			}
		}
		entry.m = mat.NewDense(len(entry.vals), n, nil)
		for i, v := range entry.vals {
			entry.m.SetRow(i, v.U.dense(n))
		}
		r.cache.Add(key, entry)
		return r.applyBasis(s, entry)
	}

	// A single plain unit alongside variable units: express the quantity
	// in that unit, then the remainder in the variable-unit system.
	if nunits == 1 && nvalues > 0 && !isQuoted(specs[0]) {
		fixed := strings.ReplaceAll(specs[0], `"`, "'")
		tmp, err := r.Value(1, fixed)
		if err != nil {
			return Value{}, err
		}
		tmp, err = r.SetUnits(tmp, []string{specs[0]})
		if err != nil {
			return Value{}, err
		}
		out, err := r.SetUnits(x.Div(tmp), specs[1:])
		if err != nil {
			return Value{}, err
		}
		tree := tmp.U.clone()
		if tmp.showUnit != nil {
			tree = *tmp.showUnit
		}
		if out.showUnit != nil {
			tree = out.showUnit.Add(tree)
		}
		out.showUnit = &tree
		out.U = out.U.Add(tmp.U)
		out.V *= tmp.V
		out.showPrefix = s.showPrefix
		out.showFormat = s.showFormat
		return out, nil
	}

	// A pure number needs no display transformation.
	if x.U.IsPure() {
		return s, nil
	}

	// Dependent basis: search for the smallest combination of the
	// requested units that reproduces the quantity's unit vector.
	var res *Vector
	for level := 1; level <= len(specs); level++ {
		if tree, ok := r.findCompatible(x.U, trees, vals, level); ok {
			res = &tree
			break
		}
	}
	if res != nil {
		if r.SortUnits {
			*res = res.sortForDisplay()
		}
		s.showUnit = res
	}
	return r.foldVariableUnits(s)
}

// applyBasis solves for the exponents expressing s's unit in a full-rank
// basis and assembles the display tree.
func (r *Registry) applyBasis(s Value, entry *basisEntry) (Value, error) {
	n := len(r.baseUnits)
	b := mat.NewVecDense(n, s.U.dense(n))
	var exps mat.VecDense
	if err := exps.SolveVec(entry.m.T(), b); err != nil {
		return Value{}, &ParseError{Expr: s.U.String(), Message: "singular display basis"}
	}

	type term struct {
		tree Vector
		e    float64
	}
	var pos, neg []term
	for i, t := range entry.trees {
		e := exps.AtVec(i)
		if almostEqual(e, 0) {
			continue
		}
		if e >= 0 || !r.SortUnits {
			pos = append(pos, term{t, e})
		} else {
			neg = append(neg, term{t, e})
		}
	}
	tree := Vector{}
	for _, t := range append(pos, neg...) {
		tree = tree.Add(t.tree.Pow(fraction(t.e)))
	}
	s.showUnit = &tree
	return r.foldVariableUnits(s)
}

// findCompatible searches combinations of exactly level of the candidate
// units for one whose powers reproduce target, preferring earlier-listed
// candidates. A negative level checks plain products with all exponents
// one.
func (r *Registry) findCompatible(target Vector, trees []Vector, vals []Value, level int) (Vector, bool) {
	n := len(r.baseUnits)
	k := level
	if k < 0 {
		k = -k
	}
	if k == 0 || k > len(vals) {
		return Vector{}, false
	}
	b := mat.NewVecDense(n, target.dense(n))

	var found Vector
	ok := false
	combinations(len(vals), k, func(idx []int) bool {
		a := mat.NewDense(n, k, nil)
		for j, c := range idx {
			a.SetCol(j, vals[c].U.dense(n))
		}
		x := make([]float64, k)
		if level > 0 {
			var sol mat.VecDense
			if err := sol.SolveVec(a, b); err != nil {
				return true
			}
			for j := range x {
				x[j] = sol.AtVec(j)
			}
		} else {
			for j := range x {
				x[j] = 1
			}
		}
		// Validate the solution: exact reproduction, no vanishing factor.
		var got mat.VecDense
		got.MulVec(a, mat.NewVecDense(k, x))
		residual := 0.0
		minAbs := math.Inf(1)
		for j := 0; j < n; j++ {
			residual += math.Abs(got.AtVec(j) - b.AtVec(j))
		}
		for _, e := range x {
			if math.Abs(e) < minAbs {
				minAbs = math.Abs(e)
			}
		}
		if residual > epsilon || minAbs <= 1e-5 {
			return true
		}
		tree := Vector{}
		for j, c := range idx {
			tree = tree.Add(trees[c].Pow(fraction(x[j])))
		}
		found, ok = tree, true
		return false
	})
	return found, ok
}

// FindCompatible lists the registered unit names or combinations matching
// q's unit vector. Level 0 yields exact single-unit aliases; level n
// yields n-unit power combinations; negative levels restrict exponents to
// one.
func (r *Registry) FindCompatible(q Value, level int) []string {
	if level == 0 {
		var out []string
		for _, name := range r.units.names {
			if v, _ := r.units.get(name); v.U.Equal(q.U) {
				out = append(out, name)
			}
		}
		return out
	}
	var trees []Vector
	var vals []Value
	for _, name := range r.units.names {
		v, _ := r.units.get(name)
		trees = append(trees, simpleVector(nameKey(name), ratOne()))
		vals = append(vals, v)
	}
	if tree, ok := r.findCompatible(q.U, trees, vals, level); ok {
		return []string{tree.Show(false)}
	}
	return nil
}

// foldVariableUnits removes double-quoted entries from the display tree,
// folding their live values into the quantity itself so the rendered
// magnitude is unchanged.
func (r *Registry) foldVariableUnits(s Value) (Value, error) {
	if s.showUnit == nil {
		return s, nil
	}
	factor, stripped, err := r.stripVariableUnits(*s.showUnit)
	if err != nil {
		return Value{}, err
	}
	if factor.V != 1 || !factor.U.IsPure() {
		s.V /= factor.V
		s.U = s.U.Sub(factor.U)
	}
	s.showUnit = &stripped
	return s, nil
}

func (r *Registry) stripVariableUnits(t Vector) (Value, Vector, error) {
	factor := New(1)
	out := Vector{}
	for i, k := range t.keys {
		e := t.exps[i]
		switch {
		case k.Sub != nil:
			f, sub, err := r.stripVariableUnits(*k.Sub)
			if err != nil {
				return Value{}, Vector{}, err
			}
			if sub.Len() > 0 {
				out = out.Add(simpleVector(subKey(sub), e))
			}
			factor = factor.Mul(f.powRat(e))
		case k.isSubstituted():
			v, err := r.variable(k.Name[1 : len(k.Name)-1])
			if err != nil {
				return Value{}, Vector{}, err
			}
			factor = factor.Mul(v.powRat(e))
		default:
			out = out.Add(simpleVector(k, e))
		}
	}
	return factor, out, nil
}

// treeValue evaluates a display tree to the quantity it stands for,
// resolving quoted entries from the variable namespace. A tree that is one
// plain unit keeps that unit's affine flags.
func (r *Registry) treeValue(t Vector) (Value, error) {
	out := New(1)
	for i, k := range t.keys {
		e := t.exps[i]
		if e.Sign() == 0 {
			continue
		}
		var x Value
		var err error
		switch {
		case k.Sub != nil:
			x, err = r.treeValue(*k.Sub)
		case k.isVariable():
			x, err = r.variable(k.Name[1 : len(k.Name)-1])
		case k.Name == "":
			continue
		default:
			x, _, err = r.Parse(k.Name)
		}
		if err != nil {
			return Value{}, err
		}
		if t.Len() == 1 && ratIsOne(e) {
			return x, nil
		}
		out = out.Mul(x.powRat(e))
	}
	return out, nil
}

// Show renders a quantity: through its named format if one is attached,
// else in its display unit, else through the default system, else as the
// raw unit vector. A relative quantity shown in an affine unit is marked
// with a leading tilde.
func (r *Registry) Show(x Value) (string, error) {
	return r.render(x, false, true)
}

// ShowLatex is Show in LaTeX markup.
func (r *Registry) ShowLatex(x Value) (string, error) {
	return r.render(x, true, true)
}

func (r *Registry) render(x Value, latex, allowDefault bool) (string, error) {
	if x.showFormat != "" {
		if fn, ok := r.formats[x.showFormat]; ok {
			return fn(x, latex), nil
		}
	}

	tilde := ""
	var disp float64
	var tree Vector
	switch {
	case x.showUnit != nil:
		u0, err := r.treeValue(*x.showUnit)
		if err != nil {
			return "", err
		}
		zero := 0.0
		if u0.Absolute {
			zero = u0.Offset
			if !x.Absolute {
				if latex {
					tilde = `\sim\!`
				} else {
					tilde = "~"
				}
			}
		}
		disp = (x.position() - zero) / u0.V
		tree = *x.showUnit
	case allowDefault && r.defaultSystem != nil && !x.U.IsPure():
		y, err := r.SetUnits(x, r.defaultSystem.Args)
		if err != nil {
			return "", err
		}
		return r.render(y, latex, false)
	default:
		disp = x.V
		tree = x.U
	}

	if len(x.showPrefix) > 0 {
		disp, tree = r.selectPrefix(disp, tree, x.showPrefix)
	}

	u := tree.Show(latex)
	if u != "" {
		u = "[" + u + "]"
	}
	v := strconv.FormatFloat(disp, 'g', -1, 64)
	if latex {
		v = latexFloat(v)
		return "$" + tilde + v + u + "$", nil
	}
	return tilde + v + u, nil
}

// selectPrefix rescales the leading display unit by the best candidate
// prefix: the one giving the smallest magnitude at least one, or failing
// that the candidate landing closest below one.
func (r *Registry) selectPrefix(disp float64, tree Vector, candidates []string) (float64, Vector) {
	myunit, myexp := "", 1.0
	for i, k := range tree.keys {
		if k.Sub == nil && k.Name != "" && tree.exps[i].Sign() != 0 {
			myunit = k.Name
			myexp = ratFloat(tree.exps[i])
			break
		}
	}
	fprefix := ""
	if myunit != "" {
		fprefix, _, _ = r.isUnit(myunit)
		if fprefix != "" && fprefix != myunit {
			p, _ := r.prefixes.get(fprefix)
			disp *= math.Pow(p.V, myexp)
		} else {
			fprefix = ""
		}
	} else {
		tree = simpleVector(nameKey(""), ratOne())
	}

	avalue := math.Abs(disp)
	best, bestScore := "", math.Inf(1)
	found := false
	for _, k := range candidates {
		p, ok := r.prefixes.get(k)
		if !ok || (myunit == "" && r.units.has(k)) {
			continue
		}
		pv := math.Pow(p.V, myexp)
		if pv <= avalue && avalue/pv < bestScore {
			best, bestScore = k, avalue/pv
			found = true
		}
	}
	if !found {
		for _, k := range candidates {
			p, ok := r.prefixes.get(k)
			if !ok || (myunit == "" && r.units.has(k)) {
				continue
			}
			score := -avalue / math.Pow(p.V, myexp)
			if score < bestScore {
				best, bestScore = k, score
			}
		}
	}
	if best != "" {
		p, _ := r.prefixes.get(best)
		disp /= math.Pow(p.V, myexp)
	}
	if myunit != "" {
		out := Vector{}
		for i, k := range tree.keys {
			if k.Sub == nil && k.Name == myunit {
				k = nameKey(best + myunit[len(fprefix):])
			}
			out = out.Add(simpleVector(k, tree.exps[i]))
		}
		tree = out
	} else if best != "" {
		tree = simpleVector(nameKey(best), ratOne())
	}
	return disp, tree
}

// gramDet measures the linear independence of the row vectors: the
// determinant of the Gram matrix is nonzero exactly when they are
// independent.
func gramDet(rows [][]float64) float64 {
	k := len(rows)
	if k == 0 {
		return 1
	}
	n := len(rows[0])
	a := mat.NewDense(k, n, nil)
	for i, row := range rows {
		a.SetRow(i, row)
	}
	var g mat.Dense
	g.Mul(a, a.T())
	return math.Abs(mat.Det(&g))
}

func unitRows(vals []Value, n int) [][]float64 {
	rows := make([][]float64, len(vals))
	for i, v := range vals {
		rows[i] = v.U.dense(n)
	}
	return rows
}

// combinations visits the k-subsets of 0..n-1 in lexicographic order until
// the visitor returns false.
func combinations(n, k int, visit func([]int) bool) {
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		if !visit(idx) {
			return
		}
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

func isQuoted(u string) bool {
	return len(u) >= 2 && (u[0] == '\'' || u[0] == '"') && u[0] == u[len(u)-1]
}

// latexFloat rewrites exponent notation as a power of ten.
func latexFloat(v string) string {
	i := strings.IndexAny(v, "eE")
	if i < 0 {
		return v
	}
	exp := strings.TrimPrefix(v[i+1:], "+")
	exp = strings.TrimLeft(exp, "0")
	if exp == "" || exp == "-" {
		return v[:i]
	}
	if strings.HasPrefix(exp, "-") {
		exp = "-" + strings.TrimLeft(exp[1:], "0")
	}
	return v[:i] + `\times 10^{` + exp + `}`
}
