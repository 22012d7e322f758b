// Package engine opens detail surfaces. Two engines exist: a static
// HTTP engine with a Chrome TLS fingerprint for pages that render
// without JavaScript, and a Rod browser engine for everything else.
// The escalating engine tries HTTP first and falls back to the
// browser.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/use-agent/buyersguide/dom"
)

// InfoPattern matches the secondary "info" affordance on a detail
// page, case-insensitive substring.
const InfoPattern = `info`

// Engine resolves URLs into surfaces ready for extraction.
type Engine interface {
	Name() string

	// Open navigates to the URL and returns the surface plus a release
	// func. The release func must always be called; it swallows close
	// failures.
	Open(ctx context.Context, pageURL string) (dom.Surface, func(), error)

	// OpenDetail runs the full detail-surface protocol: open the URL,
	// locate an optional "info" affordance, and follow it — racing a
	// possible new tab against in-place navigation when clicking is
	// involved. Without an info affordance the opened surface is the
	// detail surface.
	OpenDetail(ctx context.Context, pageURL string) (dom.Surface, func(), error)
}

// ResolveURL resolves href against base and requires an http(s)
// result. Buttons and script-driven anchors yield no href, so an
// empty href is a resolution failure, not a panic.
func ResolveURL(base, href string) (string, error) {
	if href == "" {
		return "", fmt.Errorf("resolve: empty href")
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("resolve: parse base %q: %w", base, err)
	}
	resolved, err := baseURL.Parse(href)
	if err != nil {
		return "", fmt.Errorf("resolve: parse href %q: %w", href, err)
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", fmt.Errorf("resolve: unsupported scheme %q", resolved.Scheme)
	}
	return resolved.String(), nil
}

// findInfo returns the first anchor or button whose visible text
// matches the info pattern.
func findInfo(s dom.Surface) (dom.Node, bool) {
	re := dom.Pattern(InfoPattern)
	for _, n := range s.Find("a, button") {
		if re.MatchString(dom.NormalizeSpace(n.Text())) {
			return n, true
		}
	}
	return nil, false
}

// Escalating tries the primary engine and falls back to the secondary
// when the primary errors out.
type Escalating struct {
	Primary  Engine
	Fallback Engine
}

func (e *Escalating) Name() string {
	return e.Primary.Name() + "+" + e.Fallback.Name()
}

func (e *Escalating) Open(ctx context.Context, pageURL string) (dom.Surface, func(), error) {
	s, release, err := e.Primary.Open(ctx, pageURL)
	if err == nil {
		return s, release, nil
	}
	slog.Info("escalating to fallback engine",
		"url", pageURL, "from", e.Primary.Name(), "to", e.Fallback.Name(), "error", err)
	return e.Fallback.Open(ctx, pageURL)
}

func (e *Escalating) OpenDetail(ctx context.Context, pageURL string) (dom.Surface, func(), error) {
	s, release, err := e.Primary.OpenDetail(ctx, pageURL)
	if err == nil {
		return s, release, nil
	}
	slog.Info("escalating to fallback engine",
		"url", pageURL, "from", e.Primary.Name(), "to", e.Fallback.Name(), "error", err)
	return e.Fallback.OpenDetail(ctx, pageURL)
}
