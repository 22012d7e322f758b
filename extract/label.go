package extract

import (
	"regexp"

	"github.com/use-agent/buyersguide/dom"
)

// labelCandidateSelector lists the elements considered when searching
// for a text label. Containers appear too: the search tightens an
// outer match down to the deepest matching element.
const labelCandidateSelector = `th, td, dt, dd, label, strong, b, span, p, li, h1, h2, h3, h4, h5, h6, div, a`

// valueMarkerSelector matches value-marked descendants inside a
// label's container (strategy d of the value resolution chain).
const valueMarkerSelector = `.value, [class*="value"], [data-value], dd, output`

// LabeledValue finds the first text-bearing element matching the label
// pattern and resolves its associated value, trying in order: the
// label's next sibling, the parent's next sibling, the last cell of
// the enclosing table row, and a value-marked descendant of the
// label's container. Returns "" when the label or every value
// strategy comes up empty.
func LabeledValue(s dom.Surface, pattern string) string {
	re := dom.Pattern(pattern)

	for _, candidate := range s.Find(labelCandidateSelector) {
		if !re.MatchString(dom.NormalizeSpace(candidate.Text())) {
			continue
		}
		label := tighten(candidate, re)
		return resolveValue(label, re)
	}
	return ""
}

// tighten descends from an outer matching element to the deepest
// child whose text still matches, so a wrapping div never shadows the
// actual label cell.
func tighten(n dom.Node, re *regexp.Regexp) dom.Node {
	for {
		descended := false
		for _, c := range n.Children() {
			if re.MatchString(dom.NormalizeSpace(c.Text())) {
				n = c
				descended = true
				break
			}
		}
		if !descended {
			return n
		}
	}
}

func resolveValue(label dom.Node, re *regexp.Regexp) string {
	// (a) Immediately following sibling.
	if sib, ok := label.Next(); ok {
		if v := dom.NormalizeSpace(sib.Text()); v != "" {
			return v
		}
	}

	// (b) Parent's following sibling.
	if parent, ok := label.Parent(); ok {
		if sib, ok := parent.Next(); ok {
			if v := dom.NormalizeSpace(sib.Text()); v != "" {
				return v
			}
		}
	}

	// (c) Last cell of the enclosing table row.
	if row, ok := closest(label, "tr"); ok {
		if cells := row.Find("th, td"); len(cells) > 0 {
			if v := dom.NormalizeSpace(cells[len(cells)-1].Text()); v != "" {
				return v
			}
		}
	}

	// (d) Value-marked descendant of the label's container.
	if container, ok := label.Parent(); ok {
		for _, marked := range container.Find(valueMarkerSelector) {
			if v := dom.NormalizeSpace(marked.Text()); v != "" && !re.MatchString(v) {
				return v
			}
		}
	}

	return ""
}

// closest walks up from n until an ancestor matches the selector.
func closest(n dom.Node, selector string) (dom.Node, bool) {
	for cur, ok := n.Parent(); ok; cur, ok = cur.Parent() {
		if cur.Matches(selector) {
			return cur, true
		}
	}
	return nil, false
}
