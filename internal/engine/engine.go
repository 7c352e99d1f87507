package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/SmileyChris/django-includecontents-sub001/internal/attrparse"
	"github.com/SmileyChris/django-includecontents-sub001/internal/attrs"
	"github.com/SmileyChris/django-includecontents-sub001/internal/ctxlog"
	"github.com/SmileyChris/django-includecontents-sub001/internal/host"
	"github.com/SmileyChris/django-includecontents-sub001/internal/joiner"
	"github.com/SmileyChris/django-includecontents-sub001/internal/props"
	"github.com/SmileyChris/django-includecontents-sub001/internal/scanner"
	"github.com/SmileyChris/django-includecontents-sub001/internal/wrapif"
)

// Compiled is the immutable result of compiling one component template.
type Compiled struct {
	// Name is the component identity, normally its template path.
	Name string
	// Native is the transpiled template in the host's directive dialect.
	Native string
	// Props holds the parsed prop header definitions; empty when the
	// template declares none.
	Props *props.Definitions
}

// RenderFunc is the host collaborator that renders a compiled target with
// resolved attributes, named content blocks and default content.
type RenderFunc func(
	ctx context.Context,
	target *Compiled,
	scope map[string]cty.Value,
	a *attrs.Attrs,
	blocks map[string]string,
	defaultContent string,
) (string, error)

// ValidationHook lets a host intercept render-time validation errors for a
// component. Returning nil marks the error handled; returning an error
// (the same or another) propagates it as fatal.
type ValidationHook func(component string, err error) error

// Engine compiles component templates and resolves invocations at render
// time. All collaborators are injected; the engine itself performs no I/O.
type Engine struct {
	cache  *Cache
	eval   host.Evaluator
	source host.SourceFunc
	render RenderFunc
	hook   ValidationHook
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache substitutes the compiled-definition cache.
func WithCache(c *Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithSource attaches the host loader's source lookup.
func WithSource(fn host.SourceFunc) Option {
	return func(e *Engine) { e.source = fn }
}

// WithRenderer attaches the host render collaborator.
func WithRenderer(fn RenderFunc) Option {
	return func(e *Engine) { e.render = fn }
}

// WithValidationHook attaches a hook that may intercept validation errors.
func WithValidationHook(fn ValidationHook) Option {
	return func(e *Engine) { e.hook = fn }
}

// New returns an engine using the given expression evaluator.
func New(eval host.Evaluator, opts ...Option) *Engine {
	e := &Engine{cache: NewCache(), eval: eval}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cache exposes the engine's cache for explicit invalidation by the host.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// Compile transpiles one template source. It is pure: the cache is not
// consulted or populated. Compile-time errors abort the whole template with
// no partial output.
func (e *Engine) Compile(ctx context.Context, name, src string) (*Compiled, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("compiling template", "template", name)

	joined, diags := joiner.Join(name, src)
	if diags.HasErrors() {
		return nil, diags
	}

	defs, diags := extractProps(joined)
	if diags.HasErrors() {
		return nil, diags
	}

	native, diags := scanner.Transpile(joined)
	if diags.HasErrors() {
		return nil, diags
	}

	logger.Debug("compiled template", "template", name, "props", defs.Len())
	return &Compiled{Name: name, Native: native, Props: defs}, nil
}

// GetOrCompile returns the cached compilation of a target, loading and
// compiling its source on a miss. from names the referencing template for
// resolution errors.
func (e *Engine) GetOrCompile(ctx context.Context, target, from string) (*Compiled, error) {
	if e.source == nil {
		return nil, &ResolutionError{Target: target, From: from, Err: fmt.Errorf("no source loader attached")}
	}
	return e.cache.GetOrCompile(target, func() (*Compiled, error) {
		src, err := e.source(ctx, target)
		if err != nil {
			return nil, &ResolutionError{Target: target, From: from, Err: err}
		}
		compiled, diags := e.Compile(ctx, target, src)
		if diags.HasErrors() {
			return nil, diags
		}
		return compiled, nil
	})
}

// Invocation carries everything the host resolved for one component call.
type Invocation struct {
	// From is the referencing template's name.
	From string
	// Target is the component's resolved template path.
	Target string
	// Attrs is the invocation's attribute list in wire form.
	Attrs []attrparse.Attr
	// Blocks maps content block names to their (host-rendered) markup.
	Blocks map[string]string
	// Default is the markup not claimed by any named block.
	Default string
	// Scope is the caller's variable scope for expression evaluation.
	Scope map[string]cty.Value
	// Spreads resolves attrs-variable names for ...spread entries.
	Spreads map[string]*attrs.Attrs
}

// Invoke resolves and renders one component invocation: compile (or fetch)
// the target, evaluate and partition attributes, validate props, build the
// component scope and delegate to the host renderer.
func (e *Engine) Invoke(ctx context.Context, inv Invocation) (string, error) {
	if e.render == nil {
		return "", fmt.Errorf("engine: no renderer attached")
	}

	compiled, err := e.GetOrCompile(ctx, inv.Target, inv.From)
	if err != nil {
		return "", err
	}

	scope, a, err := e.ResolveInvocation(ctx, compiled, inv)
	if err != nil {
		return "", err
	}

	return e.render(ctx, compiled, scope, a, inv.Blocks, inv.Default)
}

// ResolveInvocation performs the render-time attribute work for an already
// compiled target and returns the component scope plus the merged attrs.
// Validation errors pass through the validation hook when one is attached.
func (e *Engine) ResolveInvocation(ctx context.Context, compiled *Compiled, inv Invocation) (map[string]cty.Value, *attrs.Attrs, error) {
	resolved, err := attrs.FromInvocation(ctx, compiled.Props, inv.Attrs, e.eval, inv.Scope, inv.Spreads)
	if err != nil {
		return nil, nil, fmt.Errorf("template %q: %w", inv.From, err)
	}

	if err := compiled.Props.Validate(compiled.Name, resolved.Props); err != nil {
		if e.hook != nil {
			err = e.hook(compiled.Name, err)
		}
		if err != nil {
			return nil, nil, err
		}
	}

	scope, err := compiled.Props.Resolve(resolved.Props)
	if err != nil {
		return nil, nil, fmt.Errorf("component %q: %w", compiled.Name, err)
	}

	ctxlog.FromContext(ctx).Debug("resolved invocation",
		"template", inv.From, "component", compiled.Name, "blocks", len(inv.Blocks))
	return scope, resolved.Attrs, nil
}

// MergeAttrs combines a component's declared base attributes with a caller's
// resolved set, for the attrs-render site inside a component body.
func (e *Engine) MergeAttrs(ctx context.Context, base []attrparse.Attr, caller *attrs.Attrs, scope map[string]cty.Value) (*attrs.Attrs, error) {
	return attrs.Merge(ctx, base, caller, e.eval, scope)
}

// EvalWrapif resolves a wrapif construct against the engine's evaluator.
func (e *Engine) EvalWrapif(ctx context.Context, branches []wrapif.Branch, body string, scope map[string]cty.Value) (string, error) {
	return wrapif.Evaluate(ctx, branches, body, e.eval, scope)
}

// propsOpen is the header marker inside a template comment.
const propsOpen = "props"

// extractProps finds the first {# props ... #} comment in the joined text
// and parses its specs. Templates without a header get an empty definition
// set.
func extractProps(joined *joiner.Result) (*props.Definitions, hcl.Diagnostics) {
	text := joined.Text
	line := 1
	for i := 0; i+1 < len(text); i++ {
		if text[i] == '\n' {
			line++
			continue
		}
		if text[i] != '{' || text[i+1] != '#' {
			continue
		}
		end := strings.Index(text[i+2:], "#}")
		if end < 0 {
			break // unterminated comments are caught by the joiner
		}
		body := strings.TrimSpace(text[i+2 : i+2+end])
		rest, ok := strings.CutPrefix(body, propsOpen)
		if !ok || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
			i += 2 + end + 1
			continue
		}

		rng := hcl.Range{
			Filename: joined.Filename,
			Start:    hcl.Pos{Line: joined.Line(line), Column: 1},
			End:      hcl.Pos{Line: joined.Line(line), Column: 1},
		}
		return props.ParseHeader(strings.TrimSpace(rest), rng)
	}
	return props.ParseHeader("", hcl.Range{Filename: joined.Filename})
}
