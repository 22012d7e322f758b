// Package dom defines the narrow document capability the extraction
// pipeline depends on: query descendants by selector, read visible
// text and attributes, walk siblings, click. Two implementations
// exist: a static one over parsed HTML (dom/html.go) and a live one
// over a Rod page (dom/rod.go). The extractors never import a
// rendering library directly.
package dom

import (
	"errors"
	"regexp"
	"strings"
	"sync"
)

// ErrNoInteraction is returned by Click on surfaces that cannot
// simulate input (static HTML). Callers treat clicks as best-effort.
var ErrNoInteraction = errors.New("dom: surface does not support interaction")

// Node is one element of a rendered or parsed document.
type Node interface {
	// Text returns the node's text content including descendants.
	// Failures yield "".
	Text() string

	// Attr returns the named attribute, or "" when absent.
	Attr(name string) string

	// Find returns all descendants matching the CSS selector, in
	// document order. An empty result is valid.
	Find(selector string) []Node

	// Children returns the node's direct child elements.
	Children() []Node

	// Next returns the next sibling element, if any.
	Next() (Node, bool)

	// Parent returns the parent element, if any.
	Parent() (Node, bool)

	// Matches reports whether the node matches the CSS selector.
	Matches(selector string) bool

	// Click simulates a click on the node.
	Click() error
}

// Surface is a browsing context (page or parsed document) queried as
// a whole.
type Surface interface {
	// URL is the surface's resolved location.
	URL() string

	// Find returns all elements matching the CSS selector, in
	// document order.
	Find(selector string) []Node

	// First returns the first element matching the CSS selector.
	First(selector string) (Node, bool)
}

var spaceRun = regexp.MustCompile(`\s+`)

// NormalizeSpace collapses internal whitespace runs to single spaces
// and trims the result.
func NormalizeSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

var (
	patternMu    sync.Mutex
	patternCache = map[string]*regexp.Regexp{}
)

// Pattern compiles a case-insensitive label pattern, caching the
// result. Invalid patterns match nothing.
func Pattern(expr string) *regexp.Regexp {
	patternMu.Lock()
	defer patternMu.Unlock()
	if re, ok := patternCache[expr]; ok {
		return re
	}
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		// A pattern that matches nothing keeps the fallback chain alive.
		re = regexp.MustCompile(`[^\s\S]`)
	}
	patternCache[expr] = re
	return re
}
