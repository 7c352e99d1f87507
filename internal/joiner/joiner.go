package joiner

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// delimiter kinds. A close token only matches the nearest unmatched open of
// the same kind; directives are never nested inside each other.
const (
	kindNone = iota
	kindTag  // {% ... %}
	kindVar  // {{ ... }}
	kindCmt  // {# ... #}
)

// Result holds the joined text and the line side table. It is immutable once
// returned by Join.
type Result struct {
	Filename string
	Text     string

	// lineMap[i] is the 1-based original source line of output line i+1.
	lineMap []int
}

// Line translates a 1-based line number in the joined text back to the
// original source line. Out-of-range lines clamp to the nearest known line.
func (r *Result) Line(joined int) int {
	if len(r.lineMap) == 0 {
		return joined
	}
	if joined < 1 {
		joined = 1
	}
	if joined > len(r.lineMap) {
		joined = len(r.lineMap)
	}
	return r.lineMap[joined-1]
}

// Lines returns the number of lines in the joined text.
func (r *Result) Lines() int {
	return len(r.lineMap)
}

// Join collapses directives that span multiple lines into single logical
// lines, replacing each interior newline with one space. Quote state is
// tracked inside directives so that a delimiter appearing within a string
// literal neither opens nor closes anything. A directive left open at
// end-of-input is a fatal syntax error reported at its opening line.
func Join(filename, src string) (*Result, hcl.Diagnostics) {
	var out strings.Builder
	out.Grow(len(src))

	res := &Result{Filename: filename}

	kind := kindNone
	var quote byte // active string quote inside a directive, 0 when none
	openLine, openCol := 0, 0

	line := 1
	col := 1
	lineStart := line // source line the current output line started on

	flush := func() {
		res.lineMap = append(res.lineMap, lineStart)
	}

	for i := 0; i < len(src); i++ {
		c := src[i]

		if c == '\n' {
			if kind == kindNone {
				out.WriteByte('\n')
				flush()
				line++
				col = 1
				lineStart = line
				continue
			}
			// Inside a directive: collapse the newline (and the indentation
			// of the continuation line) to a single space.
			out.WriteByte(' ')
			line++
			col = 1
			for quote == 0 && i+1 < len(src) && (src[i+1] == ' ' || src[i+1] == '\t') {
				i++
				col++
			}
			continue
		}

		if kind != kindNone && quote != 0 {
			out.WriteByte(c)
			if c == quote {
				quote = 0
			}
			col++
			continue
		}

		switch kind {
		case kindNone:
			if c == '{' && i+1 < len(src) {
				switch src[i+1] {
				case '%':
					kind = kindTag
				case '{':
					kind = kindVar
				case '#':
					kind = kindCmt
				}
				if kind != kindNone {
					openLine, openCol = line, col
					out.WriteByte(c)
					out.WriteByte(src[i+1])
					i++
					col += 2
					continue
				}
			}
			out.WriteByte(c)
			col++

		default:
			if c == '\'' || c == '"' {
				quote = c
				out.WriteByte(c)
				col++
				continue
			}
			closed := false
			if i+1 < len(src) && src[i+1] == '}' {
				switch {
				case kind == kindTag && c == '%':
					closed = true
				case kind == kindVar && c == '}':
					closed = true
				case kind == kindCmt && c == '#':
					closed = true
				}
			}
			out.WriteByte(c)
			col++
			if closed {
				out.WriteByte('}')
				i++
				col++
				kind = kindNone
			}
		}
	}

	if kind != kindNone {
		open := "{%"
		switch kind {
		case kindVar:
			open = "{{"
		case kindCmt:
			open = "{#"
		}
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unterminated directive",
			Detail:   "The " + open + " opened here is never closed before the end of the template.",
			Subject: &hcl.Range{
				Filename: filename,
				Start:    hcl.Pos{Line: openLine, Column: openCol},
				End:      hcl.Pos{Line: openLine, Column: openCol + 2},
			},
		}}
	}

	// The final line has no trailing newline but still occupies a row in the
	// side table.
	if len(src) > 0 && src[len(src)-1] != '\n' {
		flush()
	}

	res.Text = out.String()
	return res, nil
}
