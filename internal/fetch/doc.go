// Package fetch decides, per page, how content is retrieved.
//
// The lightweight path tries a small ordered list of URL variants for a
// node (a previously-seen exact URL, the seed-scheme variant, forced
// https, forced http) with plain HTTP GETs and keeps the first response
// that is successful and HTML.
//
// The heavyweight path is a pluggable Renderer that returns fully
// settled HTML for client-rendered shells. Detection of such shells is
// an explicit, ordered, named rule set (see render.go); each rule is
// independently testable against a canned document.
//
// Design decision: The renderer is an injected interface rather than an
// in-process browser because:
//  1. Browser automation and anti-bot concerns live outside this core
//  2. Tests can supply a canned renderer
//  3. A missing renderer degrades to keeping the lightweight HTML,
//     which is the specified failure behavior anyway
package fetch
