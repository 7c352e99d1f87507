// Package host declares the narrow interfaces this module consumes from the
// surrounding template engine, together with the value conventions shared by
// the render-time packages.
//
// The core never interprets host expression syntax itself; expression text is
// handed to an injected Evaluator and the resulting cty values flow back
// through merging and validation.
package host

import (
	"context"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Evaluator evaluates host-language expression text against a variable scope.
// Implementations decide how embedded {{ ... }} regions interpolate; callers
// treat the text as opaque.
type Evaluator interface {
	Eval(ctx context.Context, src string, scope map[string]cty.Value) (cty.Value, error)
}

// SourceFunc returns the raw template source for a named target. It is
// supplied by the host's template loader; a lookup failure is a resolution
// error for the referencing template.
type SourceFunc func(ctx context.Context, target string) (string, error)

// Truthy applies the host truthiness rules to a value: null, false, empty
// strings, zero numbers and empty collections are false; everything else is
// true. Unknown values are false.
func Truthy(v cty.Value) bool {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return false
	}
	switch v.Type() {
	case cty.Bool:
		return v.True()
	case cty.String:
		return v.AsString() != ""
	case cty.Number:
		f := v.AsBigFloat()
		return f.Sign() != 0
	}
	if v.Type().IsTupleType() || v.Type().IsListType() || v.Type().IsSetType() ||
		v.Type().IsObjectType() || v.Type().IsMapType() {
		return v.LengthInt() > 0
	}
	return true
}

// StringValue converts a value to its rendered string form. Null converts to
// the empty string.
func StringValue(v cty.Value) (string, error) {
	if v == cty.NilVal || v.IsNull() {
		return "", nil
	}
	conv, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", err
	}
	return conv.AsString(), nil
}
