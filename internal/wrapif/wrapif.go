package wrapif

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/SmileyChris/django-includecontents-sub001/internal/attrparse"
	"github.com/SmileyChris/django-includecontents-sub001/internal/attrs"
	"github.com/SmileyChris/django-includecontents-sub001/internal/host"
)

// Wrapper is one parsed wrapper tag spec: the element name plus its
// attribute entries, parsed with the same attribute grammar as component
// tags.
type Wrapper struct {
	Tag   string
	Attrs []attrparse.Attr
}

// Branch is one record of the construct: a condition (empty only for the
// trailing else) and the wrapper applied when it wins. A nil Wrapper on a
// winning branch wraps with nothing, which only occurs in the full form
// before its then-region is attached.
type Branch struct {
	Cond    string
	Else    bool
	Wrapper *Wrapper
}

// ParseArgs parses the argument text of a wrapif or wrapelif directive. The
// shorthand form embeds the wrapper after a "then" keyword:
//
//	cond then "tag" attr=value ...
//
// Without "then" only the condition is returned; the wrapper arrives later
// from the branch's then-region.
func ParseArgs(args string, srcRange hcl.Range) (cond string, w *Wrapper, diags hcl.Diagnostics) {
	before, after, found := cutKeyword(args, "then")
	cond = strings.TrimSpace(before)
	if !found {
		return cond, nil, nil
	}

	after = strings.TrimSpace(after)
	if after == "" {
		return "", nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Malformed wrapper spec",
			Detail:   "The then keyword must be followed by a quoted tag name.",
			Subject:  &srcRange,
		}}
	}

	tag, rest := cutToken(after)
	unquoted := tag
	if len(tag) >= 2 && (tag[0] == '"' || tag[0] == '\'') && tag[len(tag)-1] == tag[0] {
		unquoted = tag[1 : len(tag)-1]
	}
	if unquoted == "" {
		return "", nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Malformed wrapper spec",
			Detail:   "The wrapper tag name is empty.",
			Subject:  &srcRange,
		}}
	}

	attrList, diags := attrparse.Parse(rest, srcRange)
	if diags.HasErrors() {
		return "", nil, diags
	}
	return cond, &Wrapper{Tag: unquoted, Attrs: attrList}, nil
}

// ParseWrapperTag parses a full-form then-region's wrapper markup, e.g.
// `<a href="{{ url }}" class="link">`, into a Wrapper.
func ParseWrapperTag(text string, srcRange hcl.Range) (*Wrapper, hcl.Diagnostics) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "<")
	text = strings.TrimSuffix(text, ">")
	text = strings.TrimSuffix(strings.TrimRight(text, " \t"), "/")

	tag, rest := cutToken(strings.TrimSpace(text))
	if tag == "" {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Malformed wrapper tag",
			Detail:   "A then-region must contain a single opening tag.",
			Subject:  &srcRange,
		}}
	}
	attrList, diags := attrparse.Parse(rest, srcRange)
	if diags.HasErrors() {
		return nil, diags
	}
	return &Wrapper{Tag: tag, Attrs: attrList}, nil
}

// Validate checks the branch ordering rules: at least one branch, the first
// carries a condition, and an else branch can only appear last.
func Validate(branches []Branch, srcRange hcl.Range) hcl.Diagnostics {
	fail := func(detail string) hcl.Diagnostics {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Malformed wrapif construct",
			Detail:   detail,
			Subject:  &srcRange,
		}}
	}
	if len(branches) == 0 {
		return fail("A wrapif construct needs at least one branch.")
	}
	if branches[0].Else || branches[0].Cond == "" {
		return fail("The first branch of a wrapif must carry a condition.")
	}
	for i, b := range branches {
		if b.Else && i != len(branches)-1 {
			return fail("The else branch must be the last branch of a wrapif.")
		}
		if !b.Else && b.Cond == "" {
			return fail("A wrapelif branch is missing its condition.")
		}
	}
	return nil
}

// Evaluate resolves the construct: conditions run strictly in order, the
// first truthy branch's wrapper wraps the body, and with no winner the body
// is returned untouched with no tag at all.
func Evaluate(
	ctx context.Context,
	branches []Branch,
	body string,
	ev host.Evaluator,
	scope map[string]cty.Value,
) (string, error) {
	for _, b := range branches {
		on := b.Else
		if !on {
			val, err := ev.Eval(ctx, b.Cond, scope)
			if err != nil {
				return "", fmt.Errorf("wrapif condition %q: %w", b.Cond, err)
			}
			on = host.Truthy(val)
		}
		if !on {
			continue
		}
		if b.Wrapper == nil {
			return body, nil
		}
		return renderWrapped(ctx, b.Wrapper, body, ev, scope)
	}
	return body, nil
}

func renderWrapped(ctx context.Context, w *Wrapper, body string, ev host.Evaluator, scope map[string]cty.Value) (string, error) {
	merged, err := attrs.Merge(ctx, w.Attrs, nil, ev, scope)
	if err != nil {
		return "", fmt.Errorf("wrapper <%s>: %w", w.Tag, err)
	}
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(w.Tag)
	if attrText := merged.String(); attrText != "" {
		sb.WriteByte(' ')
		sb.WriteString(attrText)
	}
	sb.WriteByte('>')
	sb.WriteString(body)
	sb.WriteString("</" + w.Tag + ">")
	return sb.String(), nil
}

// cutKeyword splits text at the first occurrence of a bare keyword outside
// quotes, returning found=false when the keyword is absent.
func cutKeyword(text, keyword string) (before, after string, found bool) {
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			continue
		}
		if c != keyword[0] || i+len(keyword) > len(text) {
			continue
		}
		if text[i:i+len(keyword)] != keyword {
			continue
		}
		leftOK := i == 0 || text[i-1] == ' ' || text[i-1] == '\t'
		rightEdge := i + len(keyword)
		rightOK := rightEdge == len(text) || text[rightEdge] == ' ' || text[rightEdge] == '\t'
		if leftOK && rightOK {
			return text[:i], text[rightEdge:], true
		}
	}
	return text, "", false
}

// cutToken reads the first whitespace-delimited token, honoring quotes.
func cutToken(text string) (token, rest string) {
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case ' ', '\t':
			return text[:i], strings.TrimSpace(text[i:])
		}
	}
	return text, ""
}
