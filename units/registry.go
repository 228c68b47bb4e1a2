// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package units

import (
	"regexp"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// table is a name to quantity map that remembers insertion order. Prefix
// resolution and display both depend on the order entries were registered.
type table struct {
	names []string
	vals  map[string]Value
}

func newTable() *table {
	return &table{vals: map[string]Value{}}
}

func (t *table) get(name string) (Value, bool) {
	v, ok := t.vals[name]
	return v, ok
}

func (t *table) has(name string) bool {
	_, ok := t.vals[name]
	return ok
}

func (t *table) set(name string, v Value) {
	if _, ok := t.vals[name]; !ok {
		t.names = append(t.names, name)
	}
	t.vals[name] = v
}

func (t *table) del(name string) bool {
	if _, ok := t.vals[name]; !ok {
		return false
	}
	delete(t.vals, name)
	for i, n := range t.names {
		if n == name {
			t.names = append(t.names[:i], t.names[i+1:]...)
			break
		}
	}
	return true
}

// FormatFunc renders a quantity in place of the ordinary unit display.
type FormatFunc func(v Value, latex bool) string

// cacheSize bounds the conversion cache; entries are small (a basis matrix
// and its trees) and keyed by the requested display units.
const cacheSize = 512

// Registry holds the process-wide unit tables: base units, prefixes,
// derived units, display systems, named formats, and variable units. It is
// not safe for concurrent mutation; an interactive session drives it from
// one goroutine.
type Registry struct {
	// SortUnits reorders compound display units positive exponents first.
	SortUnits bool
	// PrefixOnly allows a bare prefix to stand alone as a unit (3 k).
	PrefixOnly bool

	log *zap.Logger

	baseUnits    []string
	baseCurrency string
	units        *table
	prefixes     *table
	systems      map[string]*System
	formats      map[string]FormatFunc
	vars         map[string]Value

	defaultSystem *System
	cache         *lru.Cache
}

// NewRegistry returns an empty registry holding only the identity prefix.
// A nil logger disables logging.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	cache, _ := lru.New(cacheSize)
	r := &Registry{
		SortUnits:  true,
		PrefixOnly: true,
		log:        log,
		cache:      cache,
	}
	r.reset()
	return r
}

func (r *Registry) reset() {
	r.baseUnits = nil
	r.baseCurrency = ""
	r.units = newTable()
	r.prefixes = newTable()
	r.prefixes.set("", New(1))
	r.systems = map[string]*System{}
	r.formats = map[string]FormatFunc{}
	if r.vars == nil {
		r.vars = map[string]Value{}
	}
	r.defaultSystem = nil
	r.cache.Purge()
}

// Reset drops every table back to empty plus the identity prefix and clears
// the conversion cache. Variable units survive a reset: they belong to the
// caller's namespace, not to the unit tables.
func (r *Registry) Reset() {
	r.reset()
	r.log.Debug("registry reset")
}

// purge invalidates the conversion cache; cached basis matrices embed the
// values of the units they were built from, so any table change voids them.
func (r *Registry) purge() {
	r.cache.Purge()
}

var unitNameRE = regexp.MustCompile(`^(°[\p{L}\p{N}]*|\p{L}([\p{L}]|-\p{L})*|[$€£¥₿¢])$`)

func checkName(name string) error {
	if !unitNameRE.MatchString(name) {
		return &RegistryError{Name: name, Message: "malformed name"}
	}
	return nil
}

// NewBaseUnit registers a unit occupying the next free dimension index.
// Base units cannot be deleted: unit vectors reference them by index.
func (r *Registry) NewBaseUnit(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if r.units.has(name) {
		return &RegistryError{Name: name, Message: "base unit already defined"}
	}
	index := len(r.baseUnits)
	r.baseUnits = append(r.baseUnits, name)
	r.units.set(name, Value{V: 1, U: simpleVector(baseKey(index, name), ratOne())})
	r.purge()
	r.log.Debug("new base unit", zap.String("name", name), zap.Int("index", index))
	return nil
}

// NewBaseCurrency registers a base unit that also anchors the currency
// dimension; exchange-rate collaborators define other currencies against
// it with NewUnit.
func (r *Registry) NewBaseCurrency(name string) error {
	if err := r.NewBaseUnit(name); err != nil {
		return err
	}
	r.baseCurrency = name
	return nil
}

// BaseCurrency returns the anchor currency name, if one is registered.
func (r *Registry) BaseCurrency() string {
	return r.baseCurrency
}

// BaseUnits returns the registered base unit names in dimension order.
func (r *Registry) BaseUnits() []string {
	return append([]string(nil), r.baseUnits...)
}

// NewPrefix registers a pure scale factor.
func (r *Registry) NewPrefix(name string, value Value) error {
	if err := checkName(name); err != nil {
		return err
	}
	f, err := value.CheckPure("prefix " + name)
	if err != nil {
		return err
	}
	r.prefixes.set(name, New(f))
	r.purge()
	r.log.Debug("new prefix", zap.String("name", name), zap.Float64("factor", f))
	return nil
}

// NewUnit registers a derived unit as a scale over already-known units.
func (r *Registry) NewUnit(name string, value Value) error {
	if err := checkName(name); err != nil {
		return err
	}
	r.units.set(name, Value{V: value.V, U: value.U.clone(),
		Absolute: value.Absolute, Offset: value.Offset})
	r.purge()
	r.log.Debug("new unit", zap.String("name", name), zap.Stringer("value", value))
	return nil
}

// NewAffineUnit registers a zero-shifted unit such as a Celsius scale from
// its zero point and the quantity one unit stands for, both expressed in
// the same already-known units.
func (r *Registry) NewAffineUnit(name string, zero, scale Value) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := zero.CheckUnits(scale, "affine unit "+name); err != nil {
		return err
	}
	r.units.set(name, Value{
		V:        scale.V,
		U:        scale.U.clone(),
		Absolute: true,
		Offset:   zero.position(),
	})
	r.purge()
	r.log.Debug("new affine unit", zap.String("name", name),
		zap.Float64("zero", zero.position()), zap.Float64("scale", scale.V))
	return nil
}

// NewSystem registers a named display basis built from unit specifications
// and nested system names.
func (r *Registry) NewSystem(name string, args ...string) error {
	if err := checkName(name); err != nil {
		return err
	}
	sys := r.System(args...)
	r.systems[name] = sys
	r.purge()
	r.log.Debug("new system", zap.String("name", name), zap.Strings("args", sys.Args))
	return nil
}

// NewFormat registers a named rendering function.
func (r *Registry) NewFormat(name string, fn FormatFunc) error {
	if err := checkName(name); err != nil {
		return err
	}
	r.formats[name] = fn
	r.purge()
	return nil
}

// SetDefaultSystem installs the fallback display basis used when a quantity
// carries no display unit of its own; nil clears it.
func (r *Registry) SetDefaultSystem(sys *System) {
	r.defaultSystem = sys
}

// SetVar binds a variable unit: a named live value referenced from unit
// specifications as 'name' or "name".
func (r *Registry) SetVar(name string, v Value) {
	r.vars[name] = v
	r.purge()
}

func (r *Registry) variable(name string) (Value, error) {
	if v, ok := r.vars[name]; ok {
		return v, nil
	}
	return Value{}, &RegistryError{Name: name, Message: "unknown variable unit"}
}

// DelUnit removes a derived unit; base units cannot be deleted.
func (r *Registry) DelUnit(name string) error {
	for _, b := range r.baseUnits {
		if b == name {
			return &RegistryError{Name: name, Message: "cannot delete base unit"}
		}
	}
	if !r.units.del(name) {
		return &RegistryError{Name: name, Message: "no such unit"}
	}
	r.purge()
	return nil
}

// DelPrefix removes a prefix; the identity prefix cannot be deleted.
func (r *Registry) DelPrefix(name string) error {
	if name == "" {
		return &RegistryError{Name: name, Message: "cannot delete identity prefix"}
	}
	if !r.prefixes.del(name) {
		return &RegistryError{Name: name, Message: "no such prefix"}
	}
	r.purge()
	return nil
}

// DelSystem removes a named system.
func (r *Registry) DelSystem(name string) error {
	if _, ok := r.systems[name]; !ok {
		return &RegistryError{Name: name, Message: "no such system"}
	}
	delete(r.systems, name)
	r.purge()
	return nil
}

// DelFormat removes a named format.
func (r *Registry) DelFormat(name string) error {
	if _, ok := r.formats[name]; !ok {
		return &RegistryError{Name: name, Message: "no such format"}
	}
	delete(r.formats, name)
	r.purge()
	return nil
}

// DelVar unbinds a variable unit.
func (r *Registry) DelVar(name string) error {
	if _, ok := r.vars[name]; !ok {
		return &RegistryError{Name: name, Message: "no such variable"}
	}
	delete(r.vars, name)
	r.purge()
	return nil
}

// Unit returns the registered quantity for a derived or base unit name.
func (r *Registry) Unit(name string) (Value, bool) {
	return r.units.get(name)
}

// Prefix returns the scale for a prefix name.
func (r *Registry) Prefix(name string) (Value, bool) {
	return r.prefixes.get(name)
}

// isUnit splits a name into prefix and unit parts. Resolution order: an
// exact unit name wins over any prefix reading; a bare prefix stands alone
// when PrefixOnly allows it; a name with a trailing star is an explicit
// bare prefix; otherwise the longest registered prefix whose remainder is a
// unit.
func (r *Registry) isUnit(name string) (prefix, unit string, ok bool) {
	if r.units.has(name) {
		return "", name, true
	}
	if r.PrefixOnly && r.prefixes.has(name) {
		return name, "", true
	}
	if n := len(name); n > 1 && name[n-1] == '*' && r.prefixes.has(name[:n-1]) {
		return name[:n-1], "", true
	}
	best := -1
	for _, k := range r.prefixes.names {
		if k == "" || len(k) >= len(name) || len(k) <= best {
			continue
		}
		if name[:len(k)] == k && r.units.has(name[len(k):]) {
			prefix, unit = k, name[len(k):]
			best = len(k)
		}
	}
	return prefix, unit, best >= 0
}

// resolveUnit turns a parsed identifier into its quantity and display
// tree. A prefix scales the magnitude only; affine flags come from the
// unit part.
func (r *Registry) resolveUnit(name string) (Value, Vector, error) {
	prefix, unit, ok := r.isUnit(name)
	if !ok {
		return Value{}, Vector{}, &RegistryError{Name: name, Message: "unrecognized unit"}
	}
	factor := 1.0
	if prefix != "" {
		p, _ := r.prefixes.get(prefix)
		factor = p.V
	}
	val := New(1)
	if unit != "" {
		val, _ = r.units.get(unit)
	}
	out := Value{V: factor * val.V, U: val.U.clone(),
		Absolute: val.Absolute, Offset: val.Offset}
	tree := simpleVector(nameKey(prefix+unit), ratOne())
	return out, tree, nil
}
