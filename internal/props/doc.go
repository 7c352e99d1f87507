// Package props parses a component's declarative prop header into typed
// definitions and validates resolved invocation attributes against them.
//
// A header is a {# props ... #} comment listing comma-separated specs:
// required props (name), literal defaults (name=value) and enums
// (name=v1,v2,...). Definitions are parsed once per component and cached by
// the engine; validation runs on every render.
package props
