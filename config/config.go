// Package config loads tool configuration from an optional YAML file
// overlaid by GUIDE_* environment variables. Command-line flags are
// applied last by the caller.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file consulted when none is given.
const DefaultFile = "buyersguide.yaml"

// Config holds all application configuration.
type Config struct {
	// StartURL is the buyers-guide page to scrape. Required.
	StartURL string `yaml:"start_url"`

	// Output is the CSV file path.
	Output string `yaml:"output"`

	// Resume skips rows already present per the latest checkpoint and
	// appends to the existing output file.
	Resume bool `yaml:"resume"`

	Browser    BrowserConfig    `yaml:"browser"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Retry      RetryConfig      `yaml:"retry"`
	Cache      CacheConfig      `yaml:"cache"`
	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	Notify     NotifyConfig     `yaml:"notify"`
	Log        LogConfig        `yaml:"log"`
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool `yaml:"headless"`

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool `yaml:"no_sandbox"`

	// Bin overrides the Chromium binary path.
	Bin string `yaml:"bin"`

	// Proxy is the proxy URL for all traffic, browser and HTTP alike.
	Proxy string `yaml:"proxy"`

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int `yaml:"max_pages"`
}

// FetchConfig controls how detail surfaces are opened.
type FetchConfig struct {
	// Mode selects the engine: "browser" (Rod only), "http" (static
	// fetch only), or "auto" (HTTP first, Rod on failure).
	Mode string `yaml:"mode"`

	// Stealth creates pages with anti-bot-detection evasions.
	Stealth bool `yaml:"stealth"`

	// NavTimeout bounds a single navigation.
	NavTimeout time.Duration `yaml:"nav_timeout"`

	// PopupTimeout bounds the wait for a new tab after clicking an
	// info affordance; past it, the original surface is used.
	PopupTimeout time.Duration `yaml:"popup_timeout"`

	// RatePerSecond throttles navigations across all tabs.
	RatePerSecond float64 `yaml:"rate_per_second"`

	// RateBurst is the limiter's burst size.
	RateBurst int `yaml:"rate_burst"`

	// BlockedResources lists resource types never fetched by the
	// browser. Default: Image, Stylesheet, Font, Media.
	BlockedResources []string `yaml:"blocked_resources"`
}

// RetryConfig controls the part-extraction retry wrapper.
type RetryConfig struct {
	// Attempts is the retry bound per part extraction.
	Attempts int `yaml:"attempts"`

	// BaseDelay is the linear backoff unit.
	BaseDelay time.Duration `yaml:"base_delay"`
}

// CacheConfig controls the part-detail cache.
type CacheConfig struct {
	// Dir is the cache directory. Empty disables caching.
	Dir string `yaml:"dir"`

	// TTL is the entry lifetime before a refresh is forced.
	TTL time.Duration `yaml:"ttl"`

	// Clear wipes the cache before the run.
	Clear bool `yaml:"clear"`
}

// CheckpointConfig controls resume checkpoints.
type CheckpointConfig struct {
	// Dir is the checkpoint directory. Empty disables checkpoints.
	Dir string `yaml:"dir"`
}

// NotifyConfig controls the run-completion webhook. Empty URL
// disables delivery.
type NotifyConfig struct {
	URL    string `yaml:"url"`
	Secret string `yaml:"secret"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // default: "info"
	Format string `yaml:"format"` // "json" or "text"; default: "text"
}

// Load builds the configuration: defaults, then the YAML file (path,
// or DefaultFile when present), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Output: "buyersguide.csv",
		Browser: BrowserConfig{
			Headless: true,
			MaxPages: 4,
		},
		Fetch: FetchConfig{
			Mode:          "browser",
			NavTimeout:    15 * time.Second,
			PopupTimeout:  3 * time.Second,
			RatePerSecond: 1.0,
			RateBurst:     2,
			BlockedResources: []string{
				"Image", "Stylesheet", "Font", "Media",
			},
		},
		Retry: RetryConfig{
			Attempts:  3,
			BaseDelay: 500 * time.Millisecond,
		},
		Cache: CacheConfig{
			Dir: "output/cache",
			TTL: 24 * time.Hour,
		},
		Checkpoint: CheckpointConfig{
			Dir: "output/checkpoints",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func applyEnv(cfg *Config) {
	cfg.StartURL = envOr("GUIDE_START_URL", cfg.StartURL)
	cfg.Output = envOr("GUIDE_OUTPUT", cfg.Output)
	cfg.Resume = envBoolOr("GUIDE_RESUME", cfg.Resume)

	cfg.Browser.Headless = envBoolOr("GUIDE_HEADLESS", cfg.Browser.Headless)
	cfg.Browser.NoSandbox = envBoolOr("GUIDE_NO_SANDBOX", cfg.Browser.NoSandbox)
	cfg.Browser.Bin = envOr("GUIDE_BROWSER_BIN", cfg.Browser.Bin)
	cfg.Browser.Proxy = envOr("GUIDE_PROXY", cfg.Browser.Proxy)
	cfg.Browser.MaxPages = envIntOr("GUIDE_MAX_PAGES", cfg.Browser.MaxPages)

	cfg.Fetch.Mode = envOr("GUIDE_FETCH_MODE", cfg.Fetch.Mode)
	cfg.Fetch.Stealth = envBoolOr("GUIDE_STEALTH", cfg.Fetch.Stealth)
	cfg.Fetch.NavTimeout = envDurationOr("GUIDE_NAV_TIMEOUT", cfg.Fetch.NavTimeout)
	cfg.Fetch.PopupTimeout = envDurationOr("GUIDE_POPUP_TIMEOUT", cfg.Fetch.PopupTimeout)
	cfg.Fetch.RatePerSecond = envFloatOr("GUIDE_RATE_RPS", cfg.Fetch.RatePerSecond)
	cfg.Fetch.RateBurst = envIntOr("GUIDE_RATE_BURST", cfg.Fetch.RateBurst)
	cfg.Fetch.BlockedResources = envSliceOr("GUIDE_BLOCKED_RESOURCES", cfg.Fetch.BlockedResources)

	cfg.Retry.Attempts = envIntOr("GUIDE_RETRIES", cfg.Retry.Attempts)
	cfg.Retry.BaseDelay = envDurationOr("GUIDE_RETRY_BASE_DELAY", cfg.Retry.BaseDelay)

	cfg.Cache.Dir = envOr("GUIDE_CACHE_DIR", cfg.Cache.Dir)
	cfg.Cache.TTL = envDurationOr("GUIDE_CACHE_TTL", cfg.Cache.TTL)
	cfg.Cache.Clear = envBoolOr("GUIDE_CACHE_CLEAR", cfg.Cache.Clear)

	cfg.Checkpoint.Dir = envOr("GUIDE_CHECKPOINT_DIR", cfg.Checkpoint.Dir)

	cfg.Notify.URL = envOr("GUIDE_NOTIFY_URL", cfg.Notify.URL)
	cfg.Notify.Secret = envOr("GUIDE_NOTIFY_SECRET", cfg.Notify.Secret)

	cfg.Log.Level = envOr("GUIDE_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = envOr("GUIDE_LOG_FORMAT", cfg.Log.Format)
}

// Validate checks the fields no run can proceed without.
func (c *Config) Validate() error {
	if c.StartURL == "" {
		return fmt.Errorf("config: start URL is required (flag --url or GUIDE_START_URL)")
	}
	switch c.Fetch.Mode {
	case "browser", "http", "auto":
	default:
		return fmt.Errorf("config: fetch mode %q is not one of browser, http, auto", c.Fetch.Mode)
	}
	if c.Output == "" {
		return fmt.Errorf("config: output path must not be empty")
	}
	return nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
