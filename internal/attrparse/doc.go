// Package attrparse parses the attribute list of a single component or
// wrapper tag into an ordered sequence of typed attribute entries.
//
// The grammar covers bare boolean attributes, {name} shorthand, conditional
// classes (class:token), quoted literals, quoted values embedding template
// expressions, and ...spread entries. Expression contents are never
// interpreted here; they pass through verbatim to the host evaluator.
package attrparse
