package scanner

import (
	"strings"

	"github.com/hashicorp/hcl/v2"

	"github.com/SmileyChris/django-includecontents-sub001/internal/attrparse"
	"github.com/SmileyChris/django-includecontents-sub001/internal/joiner"
)

// Reserved tag-name prefixes. The colon is part of the prefix: a tag named
// "includecontents" is ordinary markup, "include:card" is an invocation.
const (
	IncludePrefix = "include:"
	ContentPrefix = "content:"
)

// ComponentRoot is prepended to resolved target paths.
const ComponentRoot = "components/"

// tag families tracked on the open-tag stack.
const (
	familyInclude = iota
	familyContent
)

type frame struct {
	family int
	name   string // full tag name after '<', e.g. "include:card"
	line   int    // original source line of the open tag
	blocks map[string]struct{}
}

type scanner struct {
	src   *joiner.Result
	text  string
	pos   int
	line  int // current 1-based line in the joined text
	out   strings.Builder
	stack []frame
}

// Transpile rewrites all component tags in the joined source into native
// directive text. Source containing no reserved-prefix tags is returned
// byte-identical.
func Transpile(src *joiner.Result) (string, hcl.Diagnostics) {
	s := &scanner{src: src, text: src.Text, line: 1}
	s.out.Grow(len(s.text))
	if diags := s.run(); diags.HasErrors() {
		return "", diags
	}
	return s.out.String(), nil
}

// TargetPath resolves a component tag name to its template path. Colon
// segments become path segments: "forms:field" maps to
// "components/forms/field.html".
func TargetPath(name string) string {
	return ComponentRoot + strings.ReplaceAll(name, ":", "/") + ".html"
}

func (s *scanner) run() hcl.Diagnostics {
	for s.pos < len(s.text) {
		c := s.text[s.pos]

		if c == '\n' {
			s.line++
			s.emitByte(c)
			continue
		}

		// Native directives pass through untouched; their contents are
		// opaque to the scanner.
		if c == '{' && s.pos+1 < len(s.text) {
			switch s.text[s.pos+1] {
			case '%', '{', '#':
				s.copyDirective()
				continue
			}
		}

		if c == '<' {
			rest := s.text[s.pos:]
			switch {
			case strings.HasPrefix(rest, "</"+IncludePrefix), strings.HasPrefix(rest, "</"+ContentPrefix):
				if diags := s.closeTag(); diags.HasErrors() {
					return diags
				}
				continue
			case strings.HasPrefix(rest, "<"+IncludePrefix), strings.HasPrefix(rest, "<"+ContentPrefix):
				if diags := s.openTag(); diags.HasErrors() {
					return diags
				}
				continue
			}
		}

		s.emitByte(c)
	}

	if len(s.stack) > 0 {
		top := s.stack[len(s.stack)-1]
		return s.errAt(top.line, "Unclosed component tag",
			"Tag <"+top.name+"> opened here is never closed.")
	}
	return nil
}

func (s *scanner) emitByte(c byte) {
	s.out.WriteByte(c)
	s.pos++
}

// copyDirective copies a native {% %}, {{ }} or {# #} region verbatim,
// tracking quote state so a close delimiter inside a string is skipped.
// After the joiner pass these regions never span lines.
func (s *scanner) copyDirective() {
	closeByte := map[byte]byte{'%': '%', '{': '}', '#': '#'}[s.text[s.pos+1]]
	s.out.WriteString(s.text[s.pos : s.pos+2])
	s.pos += 2

	var quote byte
	for s.pos < len(s.text) {
		c := s.text[s.pos]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
		} else if c == '\'' || c == '"' {
			quote = c
		} else if c == closeByte && s.pos+1 < len(s.text) && s.text[s.pos+1] == '}' {
			s.out.WriteString(s.text[s.pos : s.pos+2])
			s.pos += 2
			return
		}
		if c == '\n' {
			s.line++
		}
		s.emitByte(c)
	}
}

// openTag handles <include:...> and <content:...> tags, including the
// self-closing form.
func (s *scanner) openTag() hcl.Diagnostics {
	openLine := s.src.Line(s.line)
	s.pos++ // consume '<'

	name := s.readName()
	family := familyContent
	if strings.HasPrefix(name, IncludePrefix) {
		family = familyInclude
	}
	bare := name[strings.IndexByte(name, ':')+1:]
	if bare == "" {
		return s.errAt(openLine, "Malformed component tag",
			"Tag <"+name+"> is missing a name after its reserved prefix.")
	}

	attrText, selfClosing, ok := s.readTagRest()
	if !ok {
		return s.errAt(openLine, "Unterminated component tag",
			"Tag <"+name+"> opened here has no closing '>'.")
	}

	attrs, diags := attrparse.Parse(attrText, s.rangeAt(openLine))
	if diags.HasErrors() {
		return diags
	}

	switch family {
	case familyInclude:
		s.out.WriteString(`{% includecontents "` + TargetPath(bare) + `"`)
		if args := Serialize(attrs); args != "" {
			s.out.WriteString(" " + args)
		}
		s.out.WriteString(" %}")
		if selfClosing {
			s.out.WriteString("{% endincludecontents %}")
		} else {
			s.stack = append(s.stack, frame{
				family: familyInclude,
				name:   name,
				line:   openLine,
				blocks: make(map[string]struct{}),
			})
		}

	case familyContent:
		if len(attrs) > 0 {
			return s.errAt(openLine, "Malformed content block",
				"Content block <"+name+"> does not take attributes.")
		}
		if len(s.stack) == 0 || s.stack[len(s.stack)-1].family != familyInclude {
			return s.errAt(openLine, "Misplaced content block",
				"Content block <"+name+"> must appear immediately inside a component tag.")
		}
		owner := &s.stack[len(s.stack)-1]
		if _, dup := owner.blocks[bare]; dup {
			return s.errAt(openLine, "Duplicate content block",
				"Component <"+owner.name+"> already has a content block named "+bare+".")
		}
		owner.blocks[bare] = struct{}{}
		s.out.WriteString("{% contents " + bare + " %}")
		if selfClosing {
			s.out.WriteString("{% endcontents %}")
		} else {
			s.stack = append(s.stack, frame{family: familyContent, name: name, line: openLine})
		}
	}

	return nil
}

// closeTag handles </include:...> and </content:...>.
func (s *scanner) closeTag() hcl.Diagnostics {
	closeLine := s.src.Line(s.line)
	s.pos += 2 // consume "</"
	name := s.readName()

	if s.pos >= len(s.text) || s.text[s.pos] != '>' {
		return s.errAt(closeLine, "Malformed close tag",
			"Close tag </"+name+"> has no closing '>'.")
	}
	s.pos++

	if len(s.stack) == 0 {
		return s.errAt(closeLine, "Unmatched close tag",
			"Close tag </"+name+"> has no corresponding open tag.")
	}
	top := s.stack[len(s.stack)-1]
	if top.name != name {
		return s.errAt(top.line, "Mismatched component tag",
			"Tag <"+top.name+"> opened here is closed by </"+name+">.")
	}
	s.stack = s.stack[:len(s.stack)-1]

	if top.family == familyInclude {
		s.out.WriteString("{% endincludecontents %}")
	} else {
		s.out.WriteString("{% endcontents %}")
	}
	return nil
}

// readName consumes a tag name: letters, digits, '_', '-' and ':'.
func (s *scanner) readName() string {
	start := s.pos
	for s.pos < len(s.text) {
		c := s.text[s.pos]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
			c == '_' || c == '-' || c == ':' || c == '.' {
			s.pos++
			continue
		}
		break
	}
	return s.text[start:s.pos]
}

// readTagRest consumes everything after the tag name up to the closing '>',
// honoring quoted attribute values, and reports whether the tag was
// self-closing.
func (s *scanner) readTagRest() (attrText string, selfClosing, ok bool) {
	start := s.pos
	var quote byte
	for s.pos < len(s.text) {
		c := s.text[s.pos]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			s.pos++
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
			s.pos++
		case '\n':
			s.line++
			s.pos++
		case '>':
			text := s.text[start:s.pos]
			s.pos++
			if rest, self := strings.CutSuffix(strings.TrimRight(text, " \t"), "/"); self {
				return strings.TrimSpace(rest), true, true
			}
			return strings.TrimSpace(text), false, true
		default:
			s.pos++
		}
	}
	return "", false, false
}

func (s *scanner) rangeAt(origLine int) hcl.Range {
	return hcl.Range{
		Filename: s.src.Filename,
		Start:    hcl.Pos{Line: origLine, Column: 1},
		End:      hcl.Pos{Line: origLine, Column: 1},
	}
}

func (s *scanner) errAt(origLine int, summary, detail string) hcl.Diagnostics {
	rng := s.rangeAt(origLine)
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  &rng,
	}}
}
