// Package engine ties the compile and render halves together.
//
// Compiling a template runs the multi-line joiner, extracts and parses the
// prop header, and transpiles component tags into native directive text.
// Compiled templates are immutable and cached per component identity in an
// injectable Cache with explicit invalidation.
//
// At render time the engine resolves a component invocation: it evaluates
// and partitions the caller's attributes, validates them against the
// component's prop definitions, builds the component scope (props, derived
// enum booleans, passthrough attrs) and hands off to the host renderer.
package engine
