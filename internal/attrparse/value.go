package attrparse

import "strings"

// Value is the tagged union of attribute value forms. Exactly one concrete
// type implements each form.
type Value interface {
	value()
}

// Literal is a quoted value with no embedded template expression.
type Literal struct {
	Text string
}

// Expression is a value containing one or more {{ ... }} or {% ... %}
// regions. The source text is opaque to this package and is handed to the
// host evaluator unmodified.
type Expression struct {
	Source string
}

// Shorthand is the {name} form, equivalent to name="{{ name }}".
type Shorthand struct {
	Var string
}

// ConditionalClass is the class:token or class:token="expr" form. Cond is
// empty for the bare always-true form.
type ConditionalClass struct {
	Class string
	Cond  string
}

// Boolean is a bare attribute with no value, rendered as the attribute name
// when true and omitted when false.
type Boolean struct {
	Set bool
}

// Spread forwards a caller's attrs object (optionally one named group of it)
// into this tag. Expansion happens at render time, never at transpile time.
type Spread struct {
	Var   string
	Group string
}

func (Literal) value()          {}
func (Expression) value()       {}
func (Shorthand) value()        {}
func (ConditionalClass) value() {}
func (Boolean) value()          {}
func (Spread) value()           {}

// Attr is one parsed (name, value) entry. Spread entries have an empty Name.
type Attr struct {
	Name  string
	Value Value
}

// Group splits a dot-qualified attribute name into its group prefix and the
// bare attribute name. Ungrouped names return an empty group.
func (a Attr) Group() (group, name string) {
	if i := strings.IndexByte(a.Name, '.'); i >= 0 {
		return a.Name[:i], a.Name[i+1:]
	}
	return "", a.Name
}

// Placement describes how a class value combines with caller-provided
// classes.
type Placement int

const (
	// PlaceOverride replaces the caller classes outright.
	PlaceOverride Placement = iota
	// PlaceAppend ("& " prefix) puts these tokens after caller classes.
	PlaceAppend
	// PlacePrepend (" &" suffix) puts these tokens before caller classes.
	PlacePrepend
)

// ClassMarker inspects a class value for the extension markers and returns
// the placement together with the value stripped of its marker.
func ClassMarker(text string) (Placement, string) {
	if rest, ok := strings.CutPrefix(text, "& "); ok {
		return PlaceAppend, rest
	}
	if rest, ok := strings.CutSuffix(text, " &"); ok {
		return PlacePrepend, rest
	}
	return PlaceOverride, text
}

// CamelName converts a kebab-case attribute name to the camelCase identifier
// used for generated variables, e.g. "x-large" becomes "xLarge".
func CamelName(name string) string {
	parts := strings.Split(name, "-")
	if len(parts) == 1 {
		return name
	}
	var sb strings.Builder
	sb.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(p[:1]))
		sb.WriteString(p[1:])
	}
	return sb.String()
}
