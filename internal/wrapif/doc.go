// Package wrapif implements the conditional-wrap construct: an ordered list
// of if/elif/else branches, each carrying a wrapper tag spec, of which at
// most one wraps the captured body.
//
// Conditions evaluate strictly in order through the injected host evaluator;
// the first truthy branch wins. When no branch matches and there is no else,
// the body renders with no wrapping tag at all.
package wrapif
