package engine_test

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/SmileyChris/django-includecontents-sub001/internal/attrparse"
	"github.com/SmileyChris/django-includecontents-sub001/internal/attrs"
	"github.com/SmileyChris/django-includecontents-sub001/internal/engine"
	"github.com/SmileyChris/django-includecontents-sub001/internal/hostexpr"
	"github.com/SmileyChris/django-includecontents-sub001/internal/testutil"
	"github.com/SmileyChris/django-includecontents-sub001/internal/wrapif"
)

func parseAttrs(t *testing.T, text string) []attrparse.Attr {
	t.Helper()
	parsed, diags := attrparse.Parse(text, hcl.Range{Filename: "caller.html"})
	require.False(t, diags.HasErrors(), "parse: %s", diags.Error())
	return parsed
}

func TestCompile(t *testing.T) {
	e := engine.New(hostexpr.New())
	src := `{# props title, size=,small,large #}
<div class="card">
  <include:icon name="close" />
  {{ title }}
</div>`

	compiled, diags := e.Compile(context.Background(), "components/card.html", src)
	require.False(t, diags.HasErrors(), "compile: %s", diags.Error())

	assert.Equal(t, "components/card.html", compiled.Name)
	assert.Contains(t, compiled.Native, `{% includecontents "components/icon.html" name="close" %}{% endincludecontents %}`)
	assert.Contains(t, compiled.Native, "{{ title }}")

	require.Equal(t, 2, compiled.Props.Len())
	assert.True(t, compiled.Props.Get("title").Required())
	assert.Equal(t, "large", compiled.Props.Get("size").EnumFlags["sizeLarge"])
}

func TestCompile_MultilinePropsHeader(t *testing.T) {
	e := engine.New(hostexpr.New())
	src := "{# props\n  title,\n  variant=primary,secondary\n#}\nbody"

	compiled, diags := e.Compile(context.Background(), "components/card.html", src)
	require.False(t, diags.HasErrors(), "compile: %s", diags.Error())
	assert.Equal(t, 2, compiled.Props.Len())
}

func TestCompile_NoHeader(t *testing.T) {
	e := engine.New(hostexpr.New())
	compiled, diags := e.Compile(context.Background(), "components/plain.html", "<p>hi</p>")
	require.False(t, diags.HasErrors())
	assert.Equal(t, 0, compiled.Props.Len())
	assert.Equal(t, "<p>hi</p>", compiled.Native)
}

func TestCompile_ErrorsAbortWhole(t *testing.T) {
	e := engine.New(hostexpr.New())
	compiled, diags := e.Compile(context.Background(), "page.html", "ok\n<include:card>\nnever closed")
	require.True(t, diags.HasErrors())
	assert.Nil(t, compiled)
	assert.Equal(t, "Unclosed component tag", diags[0].Summary)
	assert.Equal(t, 2, diags[0].Subject.Start.Line)
}

func TestGetOrCompile_CachesBySourceIdentity(t *testing.T) {
	files := map[string]string{
		"components/card.html": "<div>card</div>",
	}
	e := testutil.NewEngine(t, files)

	first, err := e.GetOrCompile(context.Background(), "components/card.html", "page.html")
	require.NoError(t, err)

	// A source change is invisible until the host invalidates the entry.
	files["components/card.html"] = "<div>changed</div>"
	again, err := e.GetOrCompile(context.Background(), "components/card.html", "page.html")
	require.NoError(t, err)
	assert.Same(t, first, again)

	e.Cache().Invalidate("components/card.html")
	fresh, err := e.GetOrCompile(context.Background(), "components/card.html", "page.html")
	require.NoError(t, err)
	assert.Contains(t, fresh.Native, "changed")
}

func TestGetOrCompile_ResolutionError(t *testing.T) {
	e := testutil.NewEngine(t, map[string]string{})

	_, err := e.GetOrCompile(context.Background(), "components/missing.html", "page.html")
	require.Error(t, err)
	assert.True(t, engine.IsResolution(err))
	assert.Contains(t, err.Error(), "components/missing.html")
	assert.Contains(t, err.Error(), "page.html")
}

func TestInvoke(t *testing.T) {
	files := map[string]string{
		"components/card.html": `{# props title, variant=primary,secondary #}<div>{{ title }}</div>`,
	}
	var scope map[string]cty.Value
	var gotAttrs *attrs.Attrs
	e := testutil.NewEngine(t, files, engine.WithRenderer(testutil.EchoRenderer(&scope, &gotAttrs)))

	out, err := e.Invoke(context.Background(), engine.Invocation{
		From:    "page.html",
		Target:  "components/card.html",
		Attrs:   parseAttrs(t, `title="Hello" variant="secondary" id="main" class="wide"`),
		Default: "Body",
	})
	require.NoError(t, err)
	assert.Equal(t, "Body", out)

	assert.True(t, cty.StringVal("Hello").RawEquals(scope["title"]))
	assert.True(t, cty.StringVal("secondary").RawEquals(scope["variant"]))
	assert.True(t, scope["variantSecondary"].True())
	assert.False(t, scope["variantPrimary"].True())

	v, ok := gotAttrs.Get("id")
	assert.True(t, ok)
	assert.Equal(t, "main", v)
	assert.Equal(t, "wide", gotAttrs.Class())
	assert.False(t, gotAttrs.Has("title"))
}

func TestInvoke_DefaultedProps(t *testing.T) {
	files := map[string]string{
		"components/btn.html": `{# props label="Save", variant=primary,secondary #}x`,
	}
	var scope map[string]cty.Value
	e := testutil.NewEngine(t, files, engine.WithRenderer(testutil.EchoRenderer(&scope, nil)))

	_, err := e.Invoke(context.Background(), engine.Invocation{
		From:   "page.html",
		Target: "components/btn.html",
	})
	require.NoError(t, err)

	assert.True(t, cty.StringVal("Save").RawEquals(scope["label"]))
	assert.True(t, cty.StringVal("primary").RawEquals(scope["variant"]))
	assert.True(t, scope["variantPrimary"].True())
}

func TestInvoke_ValidationError(t *testing.T) {
	files := map[string]string{
		"components/card.html": `{# props title, content #}x`,
	}
	e := testutil.NewEngine(t, files, engine.WithRenderer(testutil.EchoRenderer(nil, nil)))

	_, err := e.Invoke(context.Background(), engine.Invocation{
		From:   "page.html",
		Target: "components/card.html",
		Attrs:  parseAttrs(t, `title="Hi"`),
	})
	require.Error(t, err)
	assert.True(t, engine.IsValidation(err))
	assert.False(t, engine.IsResolution(err))
	assert.Contains(t, err.Error(), "content")
}

func TestInvoke_EnumValidationError(t *testing.T) {
	files := map[string]string{
		"components/card.html": `{# props size=,small,large #}x`,
	}
	e := testutil.NewEngine(t, files, engine.WithRenderer(testutil.EchoRenderer(nil, nil)))

	_, err := e.Invoke(context.Background(), engine.Invocation{
		From:   "page.html",
		Target: "components/card.html",
		Attrs:  parseAttrs(t, `size="huge"`),
	})
	require.Error(t, err)
	assert.True(t, engine.IsValidation(err))
	assert.Contains(t, err.Error(), "huge")
}

func TestInvoke_ValidationHookIntercepts(t *testing.T) {
	files := map[string]string{
		"components/card.html": `{# props title #}x`,
	}
	var hooked []string
	hook := func(component string, err error) error {
		hooked = append(hooked, component)
		return nil // handled: render proceeds
	}
	e := testutil.NewEngine(t, files,
		engine.WithRenderer(testutil.EchoRenderer(nil, nil)),
		engine.WithValidationHook(hook))

	out, err := e.Invoke(context.Background(), engine.Invocation{
		From:    "page.html",
		Target:  "components/card.html",
		Default: "ok",
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, []string{"components/card.html"}, hooked)
}

func TestInvoke_NoRenderer(t *testing.T) {
	e := testutil.NewEngine(t, map[string]string{"components/a.html": "x"})
	_, err := e.Invoke(context.Background(), engine.Invocation{Target: "components/a.html"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "renderer")
}

func TestInvoke_SpreadForwarding(t *testing.T) {
	files := map[string]string{
		"components/field.html": `{# props label #}x`,
	}
	var gotAttrs *attrs.Attrs
	e := testutil.NewEngine(t, files, engine.WithRenderer(testutil.EchoRenderer(nil, &gotAttrs)))

	forwarded := attrs.New()
	forwarded.SetString("placeholder", "Search")
	forwarded.AddClass("grow")

	_, err := e.Invoke(context.Background(), engine.Invocation{
		From:    "form.html",
		Target:  "components/field.html",
		Attrs:   parseAttrs(t, `label="Query" ...attrs`),
		Spreads: map[string]*attrs.Attrs{"attrs": forwarded},
	})
	require.NoError(t, err)

	v, ok := gotAttrs.Get("placeholder")
	assert.True(t, ok)
	assert.Equal(t, "Search", v)
	assert.Equal(t, "grow", gotAttrs.Class())
}

func TestMergeAttrs(t *testing.T) {
	e := engine.New(hostexpr.New())
	caller := attrs.New()
	caller.AddClass("wide")

	out, err := e.MergeAttrs(context.Background(), parseAttrs(t, `class="card &" type="button"`), caller, nil)
	require.NoError(t, err)
	assert.Equal(t, `class="card wide" type="button"`, out.String())
}

func TestEvalWrapif(t *testing.T) {
	e := engine.New(hostexpr.New())
	scope := map[string]cty.Value{"url": cty.StringVal("https://x")}

	cond, w, diags := wrapif.ParseArgs(`url != "" then "a" href=url`, hcl.Range{})
	require.False(t, diags.HasErrors())

	out, err := e.EvalWrapif(context.Background(), []wrapif.Branch{{Cond: cond, Wrapper: w}}, "Body", scope)
	require.NoError(t, err)
	assert.Equal(t, `<a href="https://x">Body</a>`, out)

	out, err = e.EvalWrapif(context.Background(), []wrapif.Branch{{Cond: cond, Wrapper: w}}, "Body",
		map[string]cty.Value{"url": cty.StringVal("")})
	require.NoError(t, err)
	assert.Equal(t, "Body", out)
}
