// Package attrs implements the render-time attribute merging runtime.
//
// An Attrs value is the resolved, mergeable attribute set for one component
// render: ordered class tokens, string and boolean attributes, and nested
// group sub-sets addressable by name. FromInvocation builds a caller's Attrs
// from parsed invocation attributes, consuming declared props along the way;
// Merge combines a component's own declared base attributes with the
// caller's set according to the class extension marker rules.
package attrs
