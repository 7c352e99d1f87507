package props

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/SmileyChris/django-includecontents-sub001/internal/attrparse"
)

// Kind states which of the three mutually exclusive prop forms a definition
// uses.
type Kind int

const (
	// KindRequired is a prop with no default; the caller must supply it.
	KindRequired Kind = iota
	// KindDefault is a prop with a literal default value.
	KindDefault
	// KindEnum is a prop restricted to a declared set of bare-word values.
	KindEnum
)

// Definition is the immutable parsed form of one prop spec.
type Definition struct {
	Name string
	Kind Kind

	// Default is the literal default value. Null for required props and for
	// optional enums whose first declared value is empty.
	Default cty.Value

	// EnumValues lists the declared enum values in order. A leading empty
	// string marks the enum optional; otherwise the first value is the
	// default.
	EnumValues []string

	// EnumFlags maps each derived boolean name (e.g. "sizeMedium") to the
	// enum token it tests for. Built once at parse time so derived names are
	// deterministic and never computed by string concatenation at render.
	EnumFlags map[string]string
}

// Required reports whether the caller must supply this prop.
func (d *Definition) Required() bool {
	return d.Kind == KindRequired
}

// FlagValues computes the derived boolean map for an enum prop's current
// value. The value may hold several whitespace-separated tokens; each sets
// its corresponding flag.
func (d *Definition) FlagValues(current string) map[string]bool {
	if d.Kind != KindEnum {
		return nil
	}
	tokens := strings.Fields(current)
	flags := make(map[string]bool, len(d.EnumFlags))
	for name, want := range d.EnumFlags {
		flags[name] = false
		for _, tok := range tokens {
			if tok == want {
				flags[name] = true
				break
			}
		}
	}
	return flags
}

// allows reports whether every whitespace-separated token of value is one of
// the declared enum values. The first offending token is returned.
func (d *Definition) allows(value string) (string, bool) {
	for _, tok := range strings.Fields(value) {
		ok := false
		for _, v := range d.EnumValues {
			if v != "" && v == tok {
				ok = true
				break
			}
		}
		if !ok {
			return tok, false
		}
	}
	return "", true
}

// Definitions is the ordered set of prop definitions for one component.
type Definitions struct {
	byName map[string]*Definition
	order  []*Definition
}

// Get returns the definition for name, or nil.
func (ds *Definitions) Get(name string) *Definition {
	if ds == nil {
		return nil
	}
	return ds.byName[name]
}

// All returns the definitions in declaration order.
func (ds *Definitions) All() []*Definition {
	if ds == nil {
		return nil
	}
	return ds.order
}

// Len returns the number of declared props.
func (ds *Definitions) Len() int {
	if ds == nil {
		return 0
	}
	return len(ds.order)
}

// flagName builds the derived boolean identifier for an enum value, e.g.
// prop "size" and value "x-large" yield "sizeXLarge".
func flagName(prop, value string) string {
	camel := attrparse.CamelName(value)
	return attrparse.CamelName(prop) + strings.ToUpper(camel[:1]) + camel[1:]
}

// ParseHeader parses the comma-separated prop specs of a single (already
// joined) header line. srcRange is the range of the header comment in the
// original source, used as the subject of any diagnostics.
func ParseHeader(header string, srcRange hcl.Range) (*Definitions, hcl.Diagnostics) {
	ds := &Definitions{byName: make(map[string]*Definition)}

	fail := func(summary, detail string) (*Definitions, hcl.Diagnostics) {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  summary,
			Detail:   detail,
			Subject:  &srcRange,
		}}
	}

	add := func(d *Definition) bool {
		if _, dup := ds.byName[d.Name]; dup {
			return false
		}
		ds.byName[d.Name] = d
		ds.order = append(ds.order, d)
		return true
	}

	fields := strings.Split(header, ",")
	for i := 0; i < len(fields); i++ {
		field := strings.TrimSpace(fields[i])
		if field == "" && i == len(fields)-1 {
			continue // trailing comma
		}

		name, rawValue, hasValue := strings.Cut(field, "=")
		name = strings.TrimSpace(name)
		if !hasValue {
			if name == "" {
				return fail("Malformed prop header", "A prop spec is empty.")
			}
			if !add(&Definition{Name: name, Kind: KindRequired, Default: cty.NilVal}) {
				return fail("Duplicate prop", "Prop "+name+" is declared more than once.")
			}
			continue
		}
		if name == "" {
			return fail("Malformed prop header", "A prop spec is missing its name before '='.")
		}

		rawValue = strings.TrimSpace(rawValue)

		// Enum specs absorb the following comma-separated bare words. A
		// quoted first value is always a literal default, never an enum.
		values := []string{rawValue}
		if !isQuoted(rawValue) {
			for i+1 < len(fields) {
				next := strings.TrimSpace(fields[i+1])
				if next == "" || isQuoted(next) || strings.Contains(next, "=") || strings.Contains(next, " ") {
					break
				}
				values = append(values, next)
				i++
			}
		}

		if len(values) > 1 {
			d := &Definition{
				Name:       name,
				Kind:       KindEnum,
				EnumValues: values,
				EnumFlags:  make(map[string]string, len(values)),
				Default:    cty.NilVal,
			}
			seen := make(map[string]struct{}, len(values))
			for _, v := range values {
				if _, dup := seen[v]; dup {
					return fail("Duplicate enum value",
						"Prop "+name+" declares the value "+v+" more than once.")
				}
				seen[v] = struct{}{}
				if v == "" {
					continue // leading empty sentinel: enum is optional
				}
				d.EnumFlags[flagName(name, v)] = v
			}
			if values[0] != "" {
				d.Default = cty.StringVal(values[0])
			}
			if !add(d) {
				return fail("Duplicate prop", "Prop "+name+" is declared more than once.")
			}
			continue
		}

		def, ok := literalValue(rawValue)
		if !ok {
			return fail("Malformed prop default",
				"The default for prop "+name+" is not a recognized literal.")
		}
		if !add(&Definition{Name: name, Kind: KindDefault, Default: def}) {
			return fail("Duplicate prop", "Prop "+name+" is declared more than once.")
		}
	}

	return ds, nil
}

// literalValue parses a prop default literal: quoted string, number, boolean
// or empty-collection sentinel. Bare words fall back to their string value.
func literalValue(raw string) (cty.Value, bool) {
	switch raw {
	case "":
		return cty.StringVal(""), true
	case "True", "true":
		return cty.True, true
	case "False", "false":
		return cty.False, true
	case "[]":
		return cty.EmptyTupleVal, true
	case "{}":
		return cty.EmptyObjectVal, true
	case "None", "null":
		return cty.NullVal(cty.DynamicPseudoType), true
	}
	if isQuoted(raw) {
		return cty.StringVal(raw[1 : len(raw)-1]), true
	}
	if v, err := cty.ParseNumberVal(raw); err == nil {
		return v, true
	}
	if strings.ContainsAny(raw, "\"'") {
		return cty.NilVal, false
	}
	return cty.StringVal(raw), true
}

func isQuoted(s string) bool {
	return len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0]
}
