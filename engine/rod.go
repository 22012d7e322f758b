package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod"

	"github.com/use-agent/buyersguide/browse"
	"github.com/use-agent/buyersguide/config"
	"github.com/use-agent/buyersguide/dom"
)

// RodEngine opens surfaces in real browser tabs. It is the engine of
// record for the buyers guide, whose rows render client-side.
type RodEngine struct {
	browser      *browse.Browser
	popupTimeout time.Duration
	blocked      []string
}

// NewRod creates a browser engine on top of a launched Browser.
func NewRod(b *browse.Browser, fetchCfg config.FetchConfig) *RodEngine {
	popup := fetchCfg.PopupTimeout
	if popup <= 0 {
		popup = 3 * time.Second
	}
	return &RodEngine{
		browser:      b,
		popupTimeout: popup,
		blocked:      fetchCfg.BlockedResources,
	}
}

func (e *RodEngine) Name() string { return "browser" }

func (e *RodEngine) Open(ctx context.Context, pageURL string) (dom.Surface, func(), error) {
	_, surface, release, err := e.open(ctx, pageURL)
	if err != nil {
		return nil, nil, err
	}
	return surface, release, nil
}

// open acquires a pooled tab, mounts resource blocking, and navigates.
func (e *RodEngine) open(ctx context.Context, pageURL string) (*rod.Page, *dom.PageSurface, func(), error) {
	page, err := e.browser.Acquire()
	if err != nil {
		return nil, nil, nil, err
	}

	router := browse.BlockResources(page, e.blocked)
	release := func() {
		if router != nil {
			_ = router.Stop()
		}
		e.browser.Release(page)
	}

	if err := e.browser.Navigate(ctx, page, pageURL); err != nil {
		release()
		return nil, nil, nil, err
	}
	return page, dom.NewPageSurface(page), release, nil
}

// OpenDetail opens the URL and follows an optional "info" affordance.
// Clicking it races two outcomes: a new tab appears within the popup
// timeout, or the click navigated the original tab in place. Both are
// valid; the timeout decides.
func (e *RodEngine) OpenDetail(ctx context.Context, pageURL string) (dom.Surface, func(), error) {
	page, surface, release, err := e.open(ctx, pageURL)
	if err != nil {
		return nil, nil, err
	}

	info, ok := findInfo(surface)
	if !ok {
		return surface, release, nil
	}

	// The wait must be armed before the click or the new target's
	// creation event can be missed.
	wait := page.Timeout(e.popupTimeout).WaitOpen()

	if err := info.Click(); err != nil {
		slog.Debug("info click failed, using original surface",
			"url", pageURL, "error", err)
		return surface, release, nil
	}

	popup, err := wait()
	if err != nil {
		// No new tab within the deadline: the original tab, possibly
		// navigated in place, is the detail surface.
		p := page.Context(ctx)
		if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
			slog.Debug("post-click DOM did not settle", "error", stableErr)
		}
		return surface, release, nil
	}

	pp := popup.Context(ctx)
	if loadErr := pp.WaitLoad(); loadErr != nil {
		slog.Debug("popup load wait", "error", loadErr)
	}

	// Both the pooled tab and the popup were created here, so both are
	// released. Close failures are swallowed.
	releaseAll := func() {
		if closeErr := popup.Close(); closeErr != nil {
			slog.Debug("popup close", "error", closeErr)
		}
		release()
	}
	return dom.NewPageSurface(popup), releaseAll, nil
}
