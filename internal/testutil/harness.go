// Package testutil provides shared helpers for compile and render tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/zclconf/go-cty/cty"

	"github.com/SmileyChris/django-includecontents-sub001/internal/attrs"
	"github.com/SmileyChris/django-includecontents-sub001/internal/engine"
	"github.com/SmileyChris/django-includecontents-sub001/internal/hostexpr"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// NewEngine builds an engine over an in-memory template map with the
// bundled expression evaluator. Targets resolve by exact map key.
func NewEngine(t *testing.T, files map[string]string, opts ...engine.Option) *engine.Engine {
	t.Helper()
	source := func(ctx context.Context, target string) (string, error) {
		src, ok := files[target]
		if !ok {
			return "", fmt.Errorf("no template named %q", target)
		}
		return src, nil
	}
	all := append([]engine.Option{engine.WithSource(source)}, opts...)
	return engine.New(hostexpr.New(), all...)
}

// EchoRenderer returns a RenderFunc that records its inputs instead of
// rendering, for tests asserting on the resolved invocation.
func EchoRenderer(lastScope *map[string]cty.Value, lastAttrs **attrs.Attrs) engine.RenderFunc {
	return func(ctx context.Context, target *engine.Compiled, scope map[string]cty.Value, a *attrs.Attrs, blocks map[string]string, defaultContent string) (string, error) {
		if lastScope != nil {
			*lastScope = scope
		}
		if lastAttrs != nil {
			*lastAttrs = a
		}
		return defaultContent, nil
	}
}
