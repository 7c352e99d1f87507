// Package scanner rewrites component tag syntax into the host engine's
// native directive dialect.
//
// Three tag families are recognized, each introduced by a reserved prefix:
// component open tags (<include:name ...>), component self-closing tags
// (<include:name ... />) and named content blocks (<content:name>). All
// other text, including native directives already present in the source,
// passes through byte-identical. Nesting follows standard LIFO rules over a
// stack of open tags; mismatches are fatal syntax errors carrying the
// original source line of the unmatched tag.
package scanner
