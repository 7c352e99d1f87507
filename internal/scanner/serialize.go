package scanner

import (
	"strings"

	"github.com/SmileyChris/django-includecontents-sub001/internal/attrparse"
)

// Serialize renders parsed attributes back into directive argument text.
// The output is the wire form the render side parses again, so every form
// must survive a parse round trip.
func Serialize(attrs []attrparse.Attr) string {
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		switch v := a.Value.(type) {
		case attrparse.Boolean:
			parts = append(parts, a.Name)
		case attrparse.Shorthand:
			parts = append(parts, "{"+v.Var+"}")
		case attrparse.Spread:
			token := "..." + v.Var
			if v.Group != "" {
				token += "." + v.Group
			}
			parts = append(parts, token)
		case attrparse.ConditionalClass:
			if v.Cond == "" {
				parts = append(parts, a.Name)
			} else {
				parts = append(parts, a.Name+"="+quoteValue(v.Cond))
			}
		case attrparse.Literal:
			parts = append(parts, a.Name+"="+quoteValue(v.Text))
		case attrparse.Expression:
			parts = append(parts, a.Name+"="+exprValue(v.Source))
		}
	}
	return strings.Join(parts, " ")
}

// quoteValue quotes a literal value: a quote character the value does not
// contain when one exists, otherwise double quotes with the value's quotes
// and backslashes escaped the way attrparse resolves them.
func quoteValue(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return `"` + s + `"`
	}
	if !strings.ContainsAny(s, `'\`) {
		return "'" + s + "'"
	}
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
	return `"` + escaped + `"`
}

// exprValue serializes an expression source in a form the render side reads
// back as an expression, never a literal. Sources carrying template
// delimiters keep them and are quoted; delimiter-free sources stay unquoted,
// gaining an interpolation wrapper first if quoting is unavoidable.
func exprValue(s string) string {
	if strings.Contains(s, "{{") || strings.Contains(s, "{%") {
		return quoteValue(s)
	}
	if !strings.ContainsAny(s, " \t\"'") {
		return s
	}
	return quoteValue("{{ " + s + " }}")
}
