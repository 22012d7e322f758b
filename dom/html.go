package dom

import (
	"io"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// selCache holds compiled CSS selector groups. The extractors use a
// small fixed set, so the cache never grows past a few dozen entries.
var (
	selMu    sync.Mutex
	selCache = map[string]cascadia.SelectorGroup{}
)

func compileSel(selector string) (cascadia.SelectorGroup, bool) {
	selMu.Lock()
	defer selMu.Unlock()
	if sel, ok := selCache[selector]; ok {
		return sel, sel != nil
	}
	sel, err := cascadia.ParseGroup(selector)
	if err != nil {
		selCache[selector] = nil
		return nil, false
	}
	selCache[selector] = sel
	return sel, true
}

// StaticSurface is a Surface over parsed HTML. It backs the HTTP
// engine and all extraction tests; clicks are not supported.
type StaticSurface struct {
	url  string
	root *html.Node
}

// ParseSurface parses HTML from r into a StaticSurface anchored at url.
func ParseSurface(url string, r io.Reader) (*StaticSurface, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	root := doc.Get(0)
	for root.Parent != nil {
		root = root.Parent
	}
	return &StaticSurface{url: url, root: root}, nil
}

func (s *StaticSurface) URL() string { return s.url }

func (s *StaticSurface) Find(selector string) []Node {
	return findNodes(s.root, selector)
}

func (s *StaticSurface) First(selector string) (Node, bool) {
	nodes := s.Find(selector)
	if len(nodes) == 0 {
		return nil, false
	}
	return nodes[0], true
}

// staticNode wraps a single parsed element.
type staticNode struct {
	n *html.Node
}

func findNodes(root *html.Node, selector string) []Node {
	sel, ok := compileSel(selector)
	if !ok {
		return nil
	}
	var nodes []Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && sel.Match(c) {
				nodes = append(nodes, staticNode{n: c})
			}
			walk(c)
		}
	}
	walk(root)
	return nodes
}

func (e staticNode) Text() string {
	return goquery.NewDocumentFromNode(e.n).Text()
}

func (e staticNode) Attr(name string) string {
	for _, a := range e.n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func (e staticNode) Find(selector string) []Node {
	return findNodes(e.n, selector)
}

func (e staticNode) Children() []Node {
	var out []Node
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, staticNode{n: c})
		}
	}
	return out
}

func (e staticNode) Next() (Node, bool) {
	for s := e.n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return staticNode{n: s}, true
		}
	}
	return nil, false
}

func (e staticNode) Parent() (Node, bool) {
	if p := e.n.Parent; p != nil && p.Type == html.ElementNode {
		return staticNode{n: p}, true
	}
	return nil, false
}

func (e staticNode) Matches(selector string) bool {
	sel, ok := compileSel(selector)
	if !ok {
		return false
	}
	return sel.Match(e.n)
}

func (e staticNode) Click() error {
	return ErrNoInteraction
}
