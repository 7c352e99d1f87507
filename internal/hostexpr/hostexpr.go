// Package hostexpr provides the bundled host.Evaluator implementation, used
// by the CLI and the test harness when no real template engine is attached.
//
// Expression text is parsed with HCL's native expression syntax and
// evaluated against a cty variable scope. Values may embed {{ ... }}
// interpolation regions; text outside those regions passes through as
// literal output. A value consisting of exactly one interpolation region
// yields the region's value itself rather than its string form.
package hostexpr

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/SmileyChris/django-includecontents-sub001/internal/host"
)

// Evaluator implements host.Evaluator over HCL expression syntax.
type Evaluator struct{}

// New returns a ready evaluator.
func New() *Evaluator {
	return &Evaluator{}
}

var _ host.Evaluator = (*Evaluator)(nil)

// Eval evaluates expression text against the scope. Text containing
// {{ ... }} regions is treated as an interpolated template; anything else is
// parsed as a single bare expression.
func (e *Evaluator) Eval(ctx context.Context, src string, scope map[string]cty.Value) (cty.Value, error) {
	if !strings.Contains(src, "{{") {
		return e.evalExpr(src, scope)
	}

	type segment struct {
		text string
		expr bool
	}
	var segments []segment

	rest := src
	for {
		before, after, found := strings.Cut(rest, "{{")
		if before != "" {
			segments = append(segments, segment{text: before})
		}
		if !found {
			break
		}
		inner, tail, closed := strings.Cut(after, "}}")
		if !closed {
			return cty.NilVal, fmt.Errorf("unterminated {{ in expression %q", src)
		}
		segments = append(segments, segment{text: strings.TrimSpace(inner), expr: true})
		rest = tail
	}

	// A lone interpolation region yields the underlying value, preserving
	// its type for prop validation and truthiness.
	if len(segments) == 1 && segments[0].expr {
		return e.evalExpr(segments[0].text, scope)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if !seg.expr {
			sb.WriteString(seg.text)
			continue
		}
		v, err := e.evalExpr(seg.text, scope)
		if err != nil {
			return cty.NilVal, err
		}
		s, err := host.StringValue(v)
		if err != nil {
			return cty.NilVal, fmt.Errorf("expression %q: %w", seg.text, err)
		}
		sb.WriteString(s)
	}
	return cty.StringVal(sb.String()), nil
}

func (e *Evaluator) evalExpr(src string, scope map[string]cty.Value) (cty.Value, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "<expr>", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("parse expression %q: %w", src, diags)
	}
	val, diags := expr.Value(&hcl.EvalContext{Variables: scope})
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("evaluate expression %q: %w", src, diags)
	}
	return val, nil
}
