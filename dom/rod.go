package dom

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// PageSurface is a Surface over a live Rod page. Element lookups use
// the NotFoundSleeper so structural absence returns immediately
// instead of waiting out the page deadline.
type PageSurface struct {
	page *rod.Page
}

// NewPageSurface wraps an already-navigated Rod page.
func NewPageSurface(p *rod.Page) *PageSurface {
	return &PageSurface{page: p}
}

// Page exposes the underlying Rod page for navigation-level operations
// (closing, waiting for popups). Extraction code never needs it.
func (s *PageSurface) Page() *rod.Page {
	return s.page
}

func (s *PageSurface) URL() string {
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (s *PageSurface) Find(selector string) []Node {
	els, err := s.page.Sleeper(rod.NotFoundSleeper).Elements(selector)
	if err != nil {
		return nil
	}
	return wrapElements(els)
}

func (s *PageSurface) First(selector string) (Node, bool) {
	nodes := s.Find(selector)
	if len(nodes) == 0 {
		return nil, false
	}
	return nodes[0], true
}

func wrapElements(els rod.Elements) []Node {
	nodes := make([]Node, 0, len(els))
	for _, el := range els {
		nodes = append(nodes, liveNode{el: el})
	}
	return nodes
}

// liveNode wraps a Rod element. All read failures degrade to zero
// values: a detached or stale element behaves like an absent one.
type liveNode struct {
	el *rod.Element
}

func (e liveNode) Text() string {
	text, err := e.el.Text()
	if err != nil {
		return ""
	}
	return text
}

func (e liveNode) Attr(name string) string {
	val, err := e.el.Attribute(name)
	if err != nil || val == nil {
		return ""
	}
	return *val
}

func (e liveNode) Find(selector string) []Node {
	els, err := e.el.Sleeper(rod.NotFoundSleeper).Elements(selector)
	if err != nil {
		return nil
	}
	return wrapElements(els)
}

func (e liveNode) Children() []Node {
	// :scope resolves against the element itself in querySelectorAll.
	return e.Find(":scope > *")
}

func (e liveNode) Next() (Node, bool) {
	next, err := e.el.Sleeper(rod.NotFoundSleeper).Next()
	if err != nil || next == nil {
		return nil, false
	}
	return liveNode{el: next}, true
}

func (e liveNode) Parent() (Node, bool) {
	parent, err := e.el.Parent()
	if err != nil || parent == nil {
		return nil, false
	}
	return liveNode{el: parent}, true
}

func (e liveNode) Matches(selector string) bool {
	ok, err := e.el.Matches(selector)
	return err == nil && ok
}

func (e liveNode) Click() error {
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}
