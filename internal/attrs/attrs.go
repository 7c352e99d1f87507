package attrs

import (
	"html"
	"strings"
)

// Attrs is the final attribute set for a single render. It is built up by
// FromInvocation and Merge and rendered with String. An Attrs is never
// shared between renders.
type Attrs struct {
	classes []string
	order   []string // non-class attribute names in first-set order
	strs    map[string]string
	bools   map[string]bool
	groups  map[string]*Attrs
}

// New returns an empty attribute set.
func New() *Attrs {
	return &Attrs{
		strs:   make(map[string]string),
		bools:  make(map[string]bool),
		groups: make(map[string]*Attrs),
	}
}

// AddClass appends class tokens. Duplicates are dropped at render time, first
// occurrence wins.
func (a *Attrs) AddClass(tokens ...string) {
	a.classes = append(a.classes, tokens...)
}

// SetString sets a string attribute, overriding any previous value but
// keeping the original position in the output order.
func (a *Attrs) SetString(name, value string) {
	if !a.Has(name) {
		a.order = append(a.order, name)
	}
	delete(a.bools, name)
	a.strs[name] = value
}

// SetBool sets a boolean attribute. True renders as the bare name; false is
// omitted from output entirely.
func (a *Attrs) SetBool(name string, on bool) {
	if !a.Has(name) {
		a.order = append(a.order, name)
	}
	delete(a.strs, name)
	a.bools[name] = on
}

// SetDefault sets a string attribute only when the slot is otherwise absent.
// Spread expansion and component defaults go through here so that directly
// specified attributes always win.
func (a *Attrs) SetDefault(name, value string) {
	if a.Has(name) {
		return
	}
	a.SetString(name, value)
}

// SetBoolDefault is SetDefault for boolean attributes.
func (a *Attrs) SetBoolDefault(name string, on bool) {
	if a.Has(name) {
		return
	}
	a.SetBool(name, on)
}

// Has reports whether a non-class attribute slot is filled.
func (a *Attrs) Has(name string) bool {
	if _, ok := a.strs[name]; ok {
		return true
	}
	_, ok := a.bools[name]
	return ok
}

// Get returns a string attribute's value.
func (a *Attrs) Get(name string) (string, bool) {
	v, ok := a.strs[name]
	return v, ok
}

// Bool returns a boolean attribute's value.
func (a *Attrs) Bool(name string) bool {
	return a.bools[name]
}

// Group returns the named sub-set, creating it on first use.
func (a *Attrs) Group(name string) *Attrs {
	g, ok := a.groups[name]
	if !ok {
		g = New()
		a.groups[name] = g
	}
	return g
}

// HasGroup reports whether a named sub-set exists without creating it.
func (a *Attrs) HasGroup(name string) bool {
	_, ok := a.groups[name]
	return ok
}

// GroupNames returns the names of existing sub-sets in no particular order.
func (a *Attrs) GroupNames() []string {
	names := make([]string, 0, len(a.groups))
	for n := range a.groups {
		names = append(names, n)
	}
	return names
}

// ClassList returns the class tokens with duplicates dropped, keeping the
// first occurrence of each token.
func (a *Attrs) ClassList() []string {
	seen := make(map[string]struct{}, len(a.classes))
	out := make([]string, 0, len(a.classes))
	for _, t := range a.classes {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Class returns the merged class string: tokens joined by single spaces with
// no leading or trailing space.
func (a *Attrs) Class() string {
	return strings.Join(a.ClassList(), " ")
}

// String renders the set as HTML attribute text: the class attribute first
// when present, then remaining attributes in first-set order. Boolean
// attributes render as the bare name when true and never render when false.
func (a *Attrs) String() string {
	var parts []string
	if cls := a.Class(); cls != "" {
		parts = append(parts, `class="`+html.EscapeString(cls)+`"`)
	}
	for _, name := range a.order {
		if v, ok := a.strs[name]; ok {
			parts = append(parts, name+`="`+html.EscapeString(v)+`"`)
			continue
		}
		if a.bools[name] {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, " ")
}
