package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"
	"golang.org/x/net/html"
	"golang.org/x/net/proxy"

	"github.com/use-agent/buyersguide/dom"
)

// ErrNeedsBrowser reports that a statically fetched page appears to be
// a script-rendered shell and holds no usable content.
var ErrNeedsBrowser = errors.New("page requires JavaScript rendering")

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxBodySize caps detail-page downloads.
const maxBodySize = 10 * 1024 * 1024

// StaticEngine fetches pages over plain HTTP with a Chrome TLS
// fingerprint and parses them into static surfaces. It cannot click,
// so the info affordance is followed by href only; script-driven
// affordances fall back to the originally fetched surface.
type StaticEngine struct {
	client *http.Client
}

// NewStatic creates a StaticEngine. proxyAddr, when non-empty, routes
// all requests ("http://host:port" or "socks5://host:port").
func NewStatic(proxyAddr string) *StaticEngine {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialTLSChrome(ctx, network, addr, proxyAddr)
		},
	}
	if proxyAddr != "" {
		if proxyURL, err := url.Parse(proxyAddr); err == nil && (proxyURL.Scheme == "http" || proxyURL.Scheme == "https") {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	return &StaticEngine{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
	}
}

func (e *StaticEngine) Name() string { return "http" }

func (e *StaticEngine) Open(ctx context.Context, pageURL string) (dom.Surface, func(), error) {
	body, finalURL, err := e.fetch(ctx, pageURL)
	if err != nil {
		return nil, nil, err
	}
	if needsBrowser(body) {
		return nil, nil, fmt.Errorf("httpfetch: %s: %w", finalURL, ErrNeedsBrowser)
	}
	surface, err := dom.ParseSurface(finalURL, bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("httpfetch: parse %s: %w", finalURL, err)
	}
	return surface, func() {}, nil
}

func (e *StaticEngine) OpenDetail(ctx context.Context, pageURL string) (dom.Surface, func(), error) {
	surface, release, err := e.Open(ctx, pageURL)
	if err != nil {
		return nil, nil, err
	}

	info, ok := findInfo(surface)
	if !ok {
		return surface, release, nil
	}

	infoURL, resolveErr := ResolveURL(surface.URL(), info.Attr("href"))
	if resolveErr != nil {
		// A button or javascript: anchor — nothing to follow statically.
		return surface, release, nil
	}

	detail, detailRelease, err := e.Open(ctx, infoURL)
	if err != nil {
		// The first surface still holds whatever detail it had.
		return surface, release, nil
	}
	release()
	return detail, detailRelease, nil
}

// fetch retrieves the URL and returns the body and the final URL after
// redirects.
func (e *StaticEngine) fetch(ctx context.Context, targetURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("httpfetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("httpfetch: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, "", fmt.Errorf("httpfetch: HTTP %d for %s", resp.StatusCode, targetURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, "", fmt.Errorf("httpfetch: read body: %w", err)
	}

	finalURL := targetURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return body, finalURL, nil
}

// dialTLSChrome establishes a TLS connection using a Chrome
// fingerprint via utls, optionally through a SOCKS5 proxy.
func dialTLSChrome(ctx context.Context, network, addr, proxyAddr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	rawConn, err := dialMaybeSOCKS(ctx, dialer, network, addr, proxyAddr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(rawConn, &tls.Config{
		ServerName: host,
	}, tls.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// dialMaybeSOCKS dials addr directly, or through a SOCKS5 proxy when
// one is configured. HTTP proxies are handled at the transport level,
// not here.
func dialMaybeSOCKS(ctx context.Context, dialer *net.Dialer, network, addr, proxyAddr string) (net.Conn, error) {
	if proxyAddr == "" {
		return dialer.DialContext(ctx, network, addr)
	}
	proxyURL, err := url.Parse(proxyAddr)
	if err != nil || (proxyURL.Scheme != "socks5" && proxyURL.Scheme != "socks5h") {
		return dialer.DialContext(ctx, network, addr)
	}

	var auth *proxy.Auth
	if user := proxyURL.User; user != nil {
		auth = &proxy.Auth{User: user.Username()}
		auth.Password, _ = user.Password()
	}

	socks, err := proxy.SOCKS5("tcp", proxyURL.Host, auth, dialer)
	if err != nil {
		return nil, fmt.Errorf("socks5 proxy %s: %w", proxyURL.Host, err)
	}
	if cd, ok := socks.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, addr)
	}
	return socks.Dial(network, addr)
}

// needsBrowser decides whether the fetched HTML is likely a
// script-rendered shell with no server-side content (empty SPA root,
// noscript warning, or almost no visible body text).
func needsBrowser(body []byte) bool {
	bodyText := visibleText(body)
	if len(bodyText) < 200 {
		return true
	}

	lower := strings.ToLower(string(body))
	if strings.Contains(lower, `<div id="root"></div>`) ||
		strings.Contains(lower, `<div id="app"></div>`) ||
		strings.Contains(lower, `<div id="__next"></div>`) {
		return true
	}

	if reNoscript.MatchString(lower) {
		return true
	}

	if strings.Count(lower, "<script") > 10 && len(bodyText) < 500 {
		return true
	}
	return false
}

var reNoscript = regexp.MustCompile(`<noscript[^>]*>[^<]*(enable|activate|turn on|requires?)\s+javascript`)

// visibleText extracts the text within <body>, skipping script, style
// and noscript content. Heuristic use only.
func visibleText(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	var buf strings.Builder
	inBody := false
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return buf.String()
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "body":
				inBody = true
			case "script", "style", "noscript":
				skipDepth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "script", "style", "noscript":
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if inBody && skipDepth == 0 {
				text := strings.TrimSpace(string(tokenizer.Text()))
				if text != "" {
					buf.WriteString(text)
					buf.WriteByte(' ')
				}
			}
		}
	}
}

