package props

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// MissingPropError reports a required prop absent from an invocation.
type MissingPropError struct {
	Component string
	Prop      string
}

func (e *MissingPropError) Error() string {
	return fmt.Sprintf("component %q requires prop %q which was not provided", e.Component, e.Prop)
}

// EnumValueError reports an enum prop value outside its declared set.
type EnumValueError struct {
	Component string
	Prop      string
	Value     string
	Allowed   []string
}

func (e *EnumValueError) Error() string {
	allowed := make([]string, 0, len(e.Allowed))
	for _, v := range e.Allowed {
		if v != "" {
			allowed = append(allowed, v)
		}
	}
	return fmt.Sprintf("component %q prop %q: value %q is not one of the allowed values (%s)",
		e.Component, e.Prop, e.Value, strings.Join(allowed, ", "))
}

// Validate checks a resolved attribute map against the definitions. Every
// required prop must be present and every enum prop's whitespace-separated
// tokens must be declared. The component name is carried into errors.
func (ds *Definitions) Validate(component string, resolved map[string]cty.Value) error {
	for _, d := range ds.All() {
		v, present := resolved[d.Name]
		if !present || v.IsNull() {
			if d.Required() {
				return &MissingPropError{Component: component, Prop: d.Name}
			}
			continue
		}
		if d.Kind != KindEnum {
			continue
		}
		s, err := stringValue(v)
		if err != nil {
			return fmt.Errorf("component %q prop %q: %w", component, d.Name, err)
		}
		if tok, ok := d.allows(s); !ok {
			return &EnumValueError{Component: component, Prop: d.Name, Value: tok, Allowed: d.EnumValues}
		}
	}
	return nil
}

// Resolve fills defaults for props absent from the invocation and returns
// the component's prop scope: prop values plus the derived enum booleans.
// Validate must have succeeded on the same inputs first.
func (ds *Definitions) Resolve(resolved map[string]cty.Value) (map[string]cty.Value, error) {
	scope := make(map[string]cty.Value, ds.Len())
	for _, d := range ds.All() {
		v, present := resolved[d.Name]
		if !present || v.IsNull() {
			v = d.Default
		}
		if v == cty.NilVal {
			v = cty.NullVal(cty.DynamicPseudoType)
		}
		scope[d.Name] = v

		if d.Kind != KindEnum {
			continue
		}
		current := ""
		if !v.IsNull() {
			s, err := stringValue(v)
			if err != nil {
				return nil, fmt.Errorf("prop %q: %w", d.Name, err)
			}
			current = s
		}
		for name, on := range d.FlagValues(current) {
			scope[name] = cty.BoolVal(on)
		}
	}
	return scope, nil
}

func stringValue(v cty.Value) (string, error) {
	conv, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", fmt.Errorf("value cannot be read as a string: %w", err)
	}
	if conv.IsNull() {
		return "", nil
	}
	return conv.AsString(), nil
}
