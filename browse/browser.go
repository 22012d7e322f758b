// Package browse manages the Rod browser lifecycle: launching Chrome,
// pooling tabs, throttling navigations, and blocking heavyweight
// resources the extractor never reads.
package browse

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
	"golang.org/x/time/rate"

	"github.com/use-agent/buyersguide/config"
	"github.com/use-agent/buyersguide/models"
)

// Browser owns the global browser process and the reusable page pool.
// It is safe for concurrent use.
type Browser struct {
	browser *rod.Browser
	pool    rod.Pool[rod.Page]
	limiter *rate.Limiter
	cfg     config.BrowserConfig
	fetch   config.FetchConfig
}

// Launch starts a headless browser and initialises the page pool and
// the navigation rate limiter.
func Launch(browserCfg config.BrowserConfig, fetchCfg config.FetchConfig) (*Browser, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.Bin != "" {
		l = l.Bin(browserCfg.Bin)
	}
	if browserCfg.Proxy != "" {
		l = l.Proxy(browserCfg.Proxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewGuideError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewGuideError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	maxPages := browserCfg.MaxPages
	if maxPages < 1 {
		maxPages = 1
	}
	rps := fetchCfg.RatePerSecond
	if rps <= 0 {
		rps = 1
	}
	burst := fetchCfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	return &Browser{
		browser: browser,
		pool:    rod.NewPagePool(maxPages),
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		cfg:     browserCfg,
		fetch:   fetchCfg,
	}, nil
}

// Acquire borrows a blank page from the pool, creating one on demand.
// Stealth pages get the evasion scripts injected before any navigation.
func (b *Browser) Acquire() (*rod.Page, error) {
	page, err := b.pool.Get(func() (*rod.Page, error) {
		var page *rod.Page
		var err error
		if b.fetch.Stealth {
			page, err = stealth.Page(b.browser)
		} else {
			page, err = b.browser.Page(proto.TargetCreateTarget{})
		}
		if err != nil {
			return nil, err
		}
		if hdrErr := setExtraHeaders(page, map[string]string{
			"Accept-Language": "en-US,en;q=0.9",
		}); hdrErr != nil {
			slog.Debug("failed to set extra headers", "error", hdrErr)
		}
		return page, nil
	})
	if err != nil {
		return nil, models.NewGuideError(
			models.ErrCodeBrowserCrash,
			"failed to acquire page from pool",
			err,
		)
	}
	return page, nil
}

// setExtraHeaders applies headers to every request the page makes.
func setExtraHeaders(page *rod.Page, headers map[string]string) error {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return proto.NetworkSetExtraHTTPHeaders{Headers: m}.Call(page)
}

// Release parks the page on about:blank and returns it to the pool.
// The blank navigation frees the page's DOM between rows.
func (b *Browser) Release(page *rod.Page) {
	if navErr := page.Navigate("about:blank"); navErr != nil {
		slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
	}
	b.pool.Put(page)
}

// Navigate drives the page to the URL after passing the shared rate
// limiter, then waits for the DOM to settle (not network idle).
func (b *Browser) Navigate(ctx context.Context, page *rod.Page, url string) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}

	navCtx, cancel := context.WithTimeout(ctx, b.fetch.NavTimeout)
	defer cancel()

	p := page.Context(navCtx)
	if err := p.Navigate(url); err != nil {
		return models.NewGuideError(models.ErrCodeNavigation, "navigation failed", err)
	}
	if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"url", url, "error", stableErr)
	}
	return nil
}

// Close drains the page pool and kills the browser process. Call on
// shutdown to prevent zombie Chrome processes.
func (b *Browser) Close() {
	slog.Info("browser shutting down: draining page pool")
	b.pool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	if err := b.browser.Close(); err != nil {
		slog.Warn("browser close", "error", err)
	}
}
