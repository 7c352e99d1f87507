package attrs

import (
	"context"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/SmileyChris/django-includecontents-sub001/internal/attrparse"
	"github.com/SmileyChris/django-includecontents-sub001/internal/host"
	"github.com/SmileyChris/django-includecontents-sub001/internal/props"
)

// Invocation is the render-time result of resolving one component call's
// attribute list: the consumed prop values and the passthrough attrs.
type Invocation struct {
	Props map[string]cty.Value
	Attrs *Attrs
}

// FromInvocation evaluates a component call's parsed attributes against the
// caller scope and partitions them: names matching a declared prop are
// consumed into Props, everything else lands in Attrs (grouped names in
// their named sub-set). Spread entries expand last so that directly
// specified attributes always win over forwarded ones.
func FromInvocation(
	ctx context.Context,
	defs *props.Definitions,
	caller []attrparse.Attr,
	ev host.Evaluator,
	scope map[string]cty.Value,
	spreads map[string]*Attrs,
) (*Invocation, error) {
	inv := &Invocation{Props: make(map[string]cty.Value), Attrs: New()}
	var pending []attrparse.Spread

	for _, a := range caller {
		if sp, ok := a.Value.(attrparse.Spread); ok {
			pending = append(pending, sp)
			continue
		}

		group, name := a.Group()
		target := inv.Attrs
		if group != "" {
			target = inv.Attrs.Group(group)
		}

		switch v := a.Value.(type) {
		case attrparse.ConditionalClass:
			on := true
			if v.Cond != "" {
				val, err := ev.Eval(ctx, v.Cond, scope)
				if err != nil {
					return nil, fmt.Errorf("attribute %s: %w", a.Name, err)
				}
				on = host.Truthy(val)
			}
			if on {
				target.AddClass(v.Class)
			}

		case attrparse.Boolean:
			if group == "" && defs.Get(name) != nil {
				inv.Props[name] = cty.BoolVal(v.Set)
				continue
			}
			target.SetBool(name, v.Set)

		case attrparse.Literal:
			if group == "" && defs.Get(name) != nil {
				inv.Props[name] = cty.StringVal(v.Text)
				continue
			}
			setString(target, name, v.Text)

		case attrparse.Expression, attrparse.Shorthand:
			src := exprSource(a.Value)
			val, err := ev.Eval(ctx, src, scope)
			if err != nil {
				return nil, fmt.Errorf("attribute %s: %w", a.Name, err)
			}
			if group == "" && defs.Get(name) != nil {
				inv.Props[name] = val
				continue
			}
			s, err := host.StringValue(val)
			if err != nil {
				return nil, fmt.Errorf("attribute %s: %w", a.Name, err)
			}
			setString(target, name, s)
		}
	}

	for _, sp := range pending {
		src, ok := spreads[sp.Var]
		if !ok {
			return nil, fmt.Errorf("spread ...%s: no attrs object named %q in scope", sp.Var, sp.Var)
		}
		if sp.Group != "" {
			if !src.HasGroup(sp.Group) {
				continue // nothing to forward
			}
			src = src.Group(sp.Group)
		}
		fillFrom(inv.Attrs, src)
	}

	return inv, nil
}

// setString routes a value: the class attribute accumulates tokens, anything
// else fills a plain slot.
func setString(target *Attrs, name, value string) {
	if name == "class" {
		target.AddClass(strings.Fields(value)...)
		return
	}
	target.SetString(name, value)
}

func exprSource(v attrparse.Value) string {
	switch v := v.(type) {
	case attrparse.Expression:
		return v.Source
	case attrparse.Shorthand:
		return v.Var
	}
	return ""
}

// fillFrom copies src's attributes into dst without displacing anything
// already present, recursing into groups.
func fillFrom(dst, src *Attrs) {
	dst.AddClass(src.classes...)
	for _, name := range src.order {
		if v, ok := src.strs[name]; ok {
			dst.SetDefault(name, v)
			continue
		}
		dst.SetBoolDefault(name, src.bools[name])
	}
	for name, g := range src.groups {
		fillFrom(dst.Group(name), g)
	}
}

// Merge combines a component's declared base attributes with the caller's
// resolved set. Class values honor the extension markers: prepend-marked
// component classes come first, then caller classes, then append-marked
// component classes; an unmarked class value is a default the caller's class
// overrides. Conditional classes apply afterwards in declaration order.
// Non-class base attributes are defaults the caller's values beat.
func Merge(
	ctx context.Context,
	base []attrparse.Attr,
	caller *Attrs,
	ev host.Evaluator,
	scope map[string]cty.Value,
) (*Attrs, error) {
	if caller == nil {
		caller = New()
	}
	out := New()

	var prepend, appendT, plain, conditional []string
	baseGroups := make(map[string][]attrparse.Attr)

	evalString := func(a attrparse.Attr) (string, error) {
		switch v := a.Value.(type) {
		case attrparse.Literal:
			return v.Text, nil
		case attrparse.Expression, attrparse.Shorthand:
			val, err := ev.Eval(ctx, exprSource(a.Value), scope)
			if err != nil {
				return "", fmt.Errorf("attribute %s: %w", a.Name, err)
			}
			return host.StringValue(val)
		}
		return "", fmt.Errorf("attribute %s: unsupported value form", a.Name)
	}

	for _, a := range base {
		group, name := a.Group()
		if group != "" {
			baseGroups[group] = append(baseGroups[group], attrparse.Attr{Name: name, Value: a.Value})
			continue
		}

		switch v := a.Value.(type) {
		case attrparse.ConditionalClass:
			on := true
			if v.Cond != "" {
				val, err := ev.Eval(ctx, v.Cond, scope)
				if err != nil {
					return nil, fmt.Errorf("attribute %s: %w", a.Name, err)
				}
				on = host.Truthy(val)
			}
			if on {
				conditional = append(conditional, v.Class)
			}

		case attrparse.Boolean:
			out.SetBoolDefault(name, v.Set)

		default:
			text, err := evalString(a)
			if err != nil {
				return nil, err
			}
			if name != "class" {
				out.SetDefault(name, text)
				continue
			}
			placement, trimmed := attrparse.ClassMarker(text)
			tokens := strings.Fields(trimmed)
			switch placement {
			case attrparse.PlacePrepend:
				prepend = append(prepend, tokens...)
			case attrparse.PlaceAppend:
				appendT = append(appendT, tokens...)
			default:
				plain = append(plain, tokens...)
			}
		}
	}

	// Class composition: component prepends, caller classes (falling back to
	// the component's unmarked default), component appends, then the
	// conditional tokens in declaration order.
	callerClasses := caller.ClassList()
	if len(callerClasses) == 0 {
		callerClasses = plain
	}
	out.AddClass(prepend...)
	out.AddClass(callerClasses...)
	out.AddClass(appendT...)
	out.AddClass(conditional...)

	// Caller attributes override the defaults set above.
	for _, name := range caller.order {
		if v, ok := caller.strs[name]; ok {
			out.SetString(name, v)
			continue
		}
		out.SetBool(name, caller.bools[name])
	}
	// Group sub-sets merge recursively: grouped base attrs are the defaults
	// for the caller's matching sub-set.
	for name, baseAttrs := range baseGroups {
		var callerGroup *Attrs
		if caller.HasGroup(name) {
			callerGroup = caller.Group(name)
		}
		sub, err := Merge(ctx, baseAttrs, callerGroup, ev, scope)
		if err != nil {
			return nil, err
		}
		out.groups[name] = sub
	}
	for name, g := range caller.groups {
		if !out.HasGroup(name) {
			fillFrom(out.Group(name), g)
		}
	}

	return out, nil
}
