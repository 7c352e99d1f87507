package attrparse

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
)

const (
	spreadMarker = "..."
	condPrefix   = "class:"
)

// Parse splits one tag's raw attribute text into ordered attribute entries.
// The returned diagnostics use srcRange as their subject; the caller supplies
// the range of the enclosing tag so errors point at the original source line.
func Parse(text string, srcRange hcl.Range) ([]Attr, hcl.Diagnostics) {
	var attrs []Attr

	i := 0
	for i < len(text) {
		// Skip inter-attribute whitespace.
		for i < len(text) && isSpace(text[i]) {
			i++
		}
		if i >= len(text) {
			break
		}

		token, rest, diags := cutToken(text[i:], srcRange)
		if diags.HasErrors() {
			return nil, diags
		}
		i = len(text) - len(rest)

		attr, diags := classify(token, srcRange)
		if diags.HasErrors() {
			return nil, diags
		}
		attrs = append(attrs, attr)
	}

	return attrs, nil
}

// cutToken reads one attribute token from the front of text, honoring quoted
// values so embedded spaces do not split the token.
func cutToken(text string, srcRange hcl.Range) (token, rest string, diags hcl.Diagnostics) {
	var quote byte
	for j := 0; j < len(text); j++ {
		c := text[j]
		if quote != 0 {
			if c == '\\' {
				j++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch {
		case c == '"' || c == '\'':
			quote = c
		case isSpace(c):
			return text[:j], text[j:], nil
		}
	}
	if quote != 0 {
		return "", "", hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unterminated attribute value",
			Detail:   "A quoted attribute value is missing its closing quote.",
			Subject:  &srcRange,
		}}
	}
	return text, "", nil
}

// classify maps a single token onto the attribute grammar. The forms are
// tried in disambiguation order: spread, shorthand, conditional class,
// name=value, bare boolean.
func classify(token string, srcRange hcl.Range) (Attr, hcl.Diagnostics) {
	fail := func(summary, detail string) (Attr, hcl.Diagnostics) {
		return Attr{}, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  summary,
			Detail:   detail,
			Subject:  &srcRange,
		}}
	}

	if rest, ok := strings.CutPrefix(token, spreadMarker); ok {
		if rest == "" {
			return fail("Malformed spread attribute",
				"The ... marker must be followed by an attrs variable name.")
		}
		v := Spread{Var: rest}
		if dot := strings.IndexByte(rest, '.'); dot >= 0 {
			v.Var, v.Group = rest[:dot], rest[dot+1:]
		}
		return Attr{Value: v}, nil
	}

	if strings.HasPrefix(token, "{") {
		name, ok := strings.CutSuffix(token[1:], "}")
		if !ok || name == "" || strings.ContainsAny(name, "{}=\"'") {
			return fail("Malformed shorthand attribute",
				"Shorthand attributes take the form {name}.")
		}
		return Attr{Name: name, Value: Shorthand{Var: name}}, nil
	}

	name, rawValue, hasValue := strings.Cut(token, "=")
	if name == "" {
		return fail("Malformed attribute", "An attribute name is missing before '='.")
	}

	if class, ok := strings.CutPrefix(name, condPrefix); ok {
		if class == "" {
			return fail("Malformed conditional class",
				"class: must be followed by a class token.")
		}
		cond := ""
		if hasValue {
			cond = unquote(rawValue)
		}
		return Attr{Name: name, Value: ConditionalClass{Class: class, Cond: cond}}, nil
	}

	if !hasValue {
		return Attr{Name: name, Value: Boolean{Set: true}}, nil
	}

	value := unquote(rawValue)
	if rawValue == value {
		// Unquoted values are variable references evaluated by the host.
		return Attr{Name: name, Value: Expression{Source: value}}, nil
	}
	if containsExpression(value) {
		return Attr{Name: name, Value: Expression{Source: value}}, nil
	}
	return Attr{Name: name, Value: Literal{Text: value}}, nil
}

// containsExpression reports whether a value embeds host template delimiters.
func containsExpression(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%")
}

// unquote strips a matched quote pair and resolves backslash escapes inside
// it: \\ and an escaped quote of either kind. Any other backslash sequence
// passes through untouched.
func unquote(s string) string {
	if len(s) < 2 || (s[0] != '"' && s[0] != '\'') || s[len(s)-1] != s[0] {
		return s
	}
	body := s[1 : len(s)-1]
	if !strings.Contains(body, `\`) {
		return body
	}
	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			switch body[i+1] {
			case '\\', '"', '\'':
				i++
				c = body[i]
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
