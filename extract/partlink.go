package extract

import (
	"log/slog"

	"github.com/use-agent/buyersguide/dom"
	"github.com/use-agent/buyersguide/models"
)

// Part label patterns, matched whole-word and case-insensitive against
// the visible text of anchors and buttons within a row.
const (
	SKPPattern         = `\bskp\b`
	InterchangePattern = `\binterchange\b`
)

// expandSelector matches collapsed/disclosure affordances within a row.
const expandSelector = `[aria-expanded="false"], .collapsed, details:not([open]) > summary, .expand-toggle`

// expandLabelPattern matches buttons that reveal hidden row detail.
const expandLabelPattern = `\b(expand|details|show)\b`

// ExpandHidden clicks every collapsed affordance in the row once,
// best-effort: a failed or unsupported click is ignored, since partial
// data beats a failed row.
func ExpandHidden(row dom.Node) {
	for _, el := range row.Find(expandSelector) {
		if err := el.Click(); err != nil {
			slog.Debug("expand click ignored", "error", err)
		}
	}

	re := dom.Pattern(expandLabelPattern)
	for _, b := range row.Find("button") {
		if !re.MatchString(dom.NormalizeSpace(b.Text())) {
			continue
		}
		if err := b.Click(); err != nil {
			slog.Debug("expand click ignored", "error", err)
		}
	}
}

// FindPartLink returns the first clickable element in the row whose
// visible text matches the pattern. Anchors are preferred; buttons are
// the fallback (they carry no href, so their detail URL cannot be
// resolved later). Returns nil when the row has no matching element.
func FindPartLink(row dom.Node, pattern string) *models.PartLink {
	re := dom.Pattern(pattern)

	for _, a := range row.Find("a") {
		text := dom.NormalizeSpace(a.Text())
		if re.MatchString(text) {
			return &models.PartLink{Text: text, Href: a.Attr("href")}
		}
	}
	for _, b := range row.Find("button") {
		text := dom.NormalizeSpace(b.Text())
		if re.MatchString(text) {
			return &models.PartLink{Text: text}
		}
	}
	return nil
}
