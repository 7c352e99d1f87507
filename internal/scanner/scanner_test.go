package scanner

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SmileyChris/django-includecontents-sub001/internal/attrparse"
	"github.com/SmileyChris/django-includecontents-sub001/internal/joiner"
)

func transpile(t *testing.T, src string) string {
	t.Helper()
	joined, diags := joiner.Join("page.html", src)
	require.False(t, diags.HasErrors(), "join: %s", diags.Error())
	out, diags := Transpile(joined)
	require.False(t, diags.HasErrors(), "transpile: %s", diags.Error())
	return out
}

func TestTranspile(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "no component tags pass through",
			src:  `<div class="x">{{ value }}</div>{% if ok %}yes{% endif %}`,
			want: `<div class="x">{{ value }}</div>{% if ok %}yes{% endif %}`,
		},
		{
			name: "basic include",
			src:  `<include:card title="Hi">Body</include:card>`,
			want: `{% includecontents "components/card.html" title="Hi" %}Body{% endincludecontents %}`,
		},
		{
			name: "self closing include",
			src:  `<include:icon name="close" />`,
			want: `{% includecontents "components/icon.html" name="close" %}{% endincludecontents %}`,
		},
		{
			name: "colon segments become path segments",
			src:  `<include:forms:field name="q" />`,
			want: `{% includecontents "components/forms/field.html" name="q" %}{% endincludecontents %}`,
		},
		{
			name: "content blocks",
			src:  `<include:card>Default<content:footer>Foot</content:footer></include:card>`,
			want: `{% includecontents "components/card.html" %}Default{% contents footer %}Foot{% endcontents %}{% endincludecontents %}`,
		},
		{
			name: "self closing content block",
			src:  `<include:card><content:footer /></include:card>`,
			want: `{% includecontents "components/card.html" %}{% contents footer %}{% endcontents %}{% endincludecontents %}`,
		},
		{
			name: "nested includes",
			src:  `<include:card><include:icon name="x" /></include:card>`,
			want: `{% includecontents "components/card.html" %}{% includecontents "components/icon.html" name="x" %}{% endincludecontents %}{% endincludecontents %}`,
		},
		{
			name: "attribute forms survive serialization",
			src:  `<include:card {title} ...attrs ...attrs.inner class:active disabled count=num label="Hi" />`,
			want: `{% includecontents "components/card.html" {title} ...attrs ...attrs.inner class:active disabled count=num label="Hi" %}{% endincludecontents %}`,
		},
		{
			name: "conditional class with condition",
			src:  `<include:card class:active="{{ on }}" />`,
			want: `{% includecontents "components/card.html" class:active="{{ on }}" %}{% endincludecontents %}`,
		},
		{
			name: "value containing double quotes gets single quotes",
			src:  `<include:card label='say "hi"' />`,
			want: `{% includecontents "components/card.html" label='say "hi"' %}{% endincludecontents %}`,
		},
		{
			name: "directive contents are opaque",
			src:  `{% if x == "<include:card>" %}yes{% endif %}`,
			want: `{% if x == "<include:card>" %}yes{% endif %}`,
		},
		{
			name: "includecontents without colon is ordinary markup",
			src:  `<includecontents x="1">text</includecontents>`,
			want: `<includecontents x="1">text</includecontents>`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, transpile(t, tc.src))
		})
	}
}

// The emitted directive text contains no reserved-prefix tags, so a second
// pass must return it byte-identical.
func TestTranspile_Idempotent(t *testing.T) {
	src := `<div>
<include:card title="Hi" class:active="{{ on }}">
  Body {{ value }}
  <content:footer>Foot</content:footer>
</include:card>
</div>`

	first := transpile(t, src)
	second := transpile(t, first)
	assert.Equal(t, first, second)
}

func TestTranspile_MultilineTagAttrs(t *testing.T) {
	src := "<include:card\n  title=\"Hi\"\n  large\n/>"
	want := `{% includecontents "components/card.html" title="Hi" large %}{% endincludecontents %}`
	assert.Equal(t, want, transpile(t, src))
}

func TestTranspile_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		summary  string
		wantLine int
	}{
		{
			name:     "mismatched close tag",
			src:      "<include:card>\n</include:other>",
			summary:  "Mismatched component tag",
			wantLine: 1,
		},
		{
			name:     "unmatched close tag",
			src:      "text\n</include:card>",
			summary:  "Unmatched close tag",
			wantLine: 2,
		},
		{
			name:     "unclosed tag at EOF",
			src:      "a\n<include:card>\nbody",
			summary:  "Unclosed component tag",
			wantLine: 2,
		},
		{
			name:     "content closed as include",
			src:      "<include:card><content:footer></include:card></content:footer>",
			summary:  "Mismatched component tag",
			wantLine: 1,
		},
		{
			name:     "duplicate content block",
			src:      "<include:card>\n<content:a /><content:a />\n</include:card>",
			summary:  "Duplicate content block",
			wantLine: 2,
		},
		{
			name:     "content block outside component",
			src:      "<content:footer>x</content:footer>",
			summary:  "Misplaced content block",
			wantLine: 1,
		},
		{
			name:     "content block nested inside content block",
			src:      "<include:card><content:a><content:b /></content:a></include:card>",
			summary:  "Misplaced content block",
			wantLine: 1,
		},
		{
			name:     "content block with attributes",
			src:      `<include:card><content:a x="1" /></include:card>`,
			summary:  "Malformed content block",
			wantLine: 1,
		},
		{
			name:     "missing name after prefix",
			src:      "<include: title=\"x\" />",
			summary:  "Malformed component tag",
			wantLine: 1,
		},
		{
			name:     "unterminated open tag",
			src:      "ok\n<include:card title=\"x\"",
			summary:  "Unterminated component tag",
			wantLine: 2,
		},
		{
			name:     "unterminated attribute value",
			src:      `<include:card title="x />`,
			summary:  "Unterminated component tag",
			wantLine: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			joined, diags := joiner.Join("page.html", tc.src)
			require.False(t, diags.HasErrors())
			_, diags = Transpile(joined)
			require.True(t, diags.HasErrors())
			assert.Equal(t, tc.summary, diags[0].Summary)
			require.NotNil(t, diags[0].Subject)
			assert.Equal(t, tc.wantLine, diags[0].Subject.Start.Line)
			assert.Equal(t, "page.html", diags[0].Subject.Filename)
		})
	}
}

// Serialize output is the wire contract between the compile and render
// sides: re-parsing it must reproduce the parsed forms exactly, expression
// values included.
func TestSerialize_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		text string
	}{
		{name: "unquoted expression", text: `count=num`},
		{name: "interpolated expression", text: `title="{{ a }}-suffix"`},
		{name: "literal", text: `label="Hi"`},
		{name: "literal with single quote", text: `label="it's fine"`},
		{name: "literal with double quotes", text: `label='say "hi"'`},
		{name: "boolean", text: `disabled`},
		{name: "shorthand", text: `{title}`},
		{name: "spread", text: `...attrs`},
		{name: "group spread", text: `...attrs.inner`},
		{name: "conditional class", text: `class:active`},
		{name: "conditional class with condition", text: `class:active="{{ on }}"`},
		{name: "mixed list", text: `count=num href="{{ url }}/next" label="Hi" disabled`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			first, diags := attrparse.Parse(tc.text, hcl.Range{})
			require.False(t, diags.HasErrors(), "parse: %s", diags.Error())

			wire := Serialize(first)
			second, diags := attrparse.Parse(wire, hcl.Range{})
			require.False(t, diags.HasErrors(), "re-parse %q: %s", wire, diags.Error())
			assert.Equal(t, first, second, "wire form %q", wire)
		})
	}
}

// Values no source text can express directly (both quote kinds, backslashes)
// still have to survive the wire: the serializer escapes them.
func TestSerialize_EscapedValues(t *testing.T) {
	testCases := []struct {
		name string
		in   []attrparse.Attr
	}{
		{
			name: "both quote kinds",
			in:   []attrparse.Attr{{Name: "label", Value: attrparse.Literal{Text: `it's "x"`}}},
		},
		{
			name: "backslash",
			in:   []attrparse.Attr{{Name: "path", Value: attrparse.Literal{Text: `C:\temp`}}},
		},
		{
			name: "backslash before quote",
			in:   []attrparse.Attr{{Name: "label", Value: attrparse.Literal{Text: `end\"`}}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			wire := Serialize(tc.in)
			out, diags := attrparse.Parse(wire, hcl.Range{})
			require.False(t, diags.HasErrors(), "re-parse %q: %s", wire, diags.Error())
			assert.Equal(t, tc.in, out, "wire form %q", wire)
		})
	}
}

// An expression source that needs quoting but has no delimiters gains an
// interpolation wrapper so it still evaluates instead of degrading to a
// literal string.
func TestSerialize_ExpressionNeedingQuotes(t *testing.T) {
	in := []attrparse.Attr{{Name: "count", Value: attrparse.Expression{Source: "a + b"}}}

	wire := Serialize(in)
	out, diags := attrparse.Parse(wire, hcl.Range{})
	require.False(t, diags.HasErrors(), "re-parse %q: %s", wire, diags.Error())

	require.Len(t, out, 1)
	expr, ok := out[0].Value.(attrparse.Expression)
	require.True(t, ok, "re-parsed as %T", out[0].Value)
	assert.Equal(t, "{{ a + b }}", expr.Source)
}

func TestTargetPath(t *testing.T) {
	assert.Equal(t, "components/card.html", TargetPath("card"))
	assert.Equal(t, "components/forms/field.html", TargetPath("forms:field"))
	assert.Equal(t, "components/a/b/c.html", TargetPath("a:b:c"))
}
