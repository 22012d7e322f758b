package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/use-agent/buyersguide/browse"
	"github.com/use-agent/buyersguide/cache"
	"github.com/use-agent/buyersguide/config"
	"github.com/use-agent/buyersguide/engine"
	"github.com/use-agent/buyersguide/guide"
	"github.com/use-agent/buyersguide/retry"
	"github.com/use-agent/buyersguide/webhook"
)

// CLI flags overlay the config file and environment.
type CLI struct {
	Config string `help:"Path to configuration file." type:"path"`

	URL        string `help:"Buyers-guide page URL to scrape." short:"u"`
	Output     string `help:"CSV output path." short:"o"`
	Mode       string `help:"Fetch mode: browser, http, or auto."`
	Retries    int    `help:"Retry attempts per part detail." default:"-1"`
	Resume     bool   `help:"Resume from the latest checkpoint."`
	ClearCache bool   `help:"Wipe the part-detail cache before the run."`
	Debug      bool   `help:"Enable debug logging."`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("buyersguide"),
		kong.Description("Scrape a parts buyers-guide page into a flat CSV dataset."))

	cfg, err := config.Load(cli.Config)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	applyFlags(cfg, cli)

	initLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("buyersguide starting",
		"url", cfg.StartURL,
		"output", cfg.Output,
		"mode", cfg.Fetch.Mode,
		"resume", cfg.Resume,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng, cleanup, err := buildEngine(cfg)
	if err != nil {
		slog.Error("failed to initialise engine", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	var store *cache.Store
	if cfg.Cache.Dir != "" {
		store, err = cache.Open(cfg.Cache.Dir, cfg.Cache.TTL)
		if err != nil {
			slog.Error("failed to open cache", "error", err)
			os.Exit(1)
		}
		defer store.Close()

		if cfg.Cache.Clear {
			if err := store.Clear(); err != nil {
				slog.Error("failed to clear cache", "error", err)
				os.Exit(1)
			}
			slog.Info("cache cleared")
		}
		if n, err := store.PruneExpired(); err != nil {
			slog.Warn("cache prune failed", "error", err)
		} else if n > 0 {
			slog.Info("cache pruned", "expired", n)
		}
	}

	runner := &guide.Runner{
		Engine: eng,
		Parts: &guide.PartExtractor{
			Engine: eng,
			Cache:  store,
			Retry: retry.Policy{
				Attempts:  cfg.Retry.Attempts,
				BaseDelay: cfg.Retry.BaseDelay,
			},
		},
		StartURL:      cfg.StartURL,
		Output:        cfg.Output,
		CheckpointDir: cfg.Checkpoint.Dir,
		Resume:        cfg.Resume,
	}

	rows, err := runner.Run(ctx)
	notify(cfg, rows, err)
	if err != nil {
		slog.Error("run failed", "rows_written", rows, "error", err)
		cleanup()
		os.Exit(1)
	}

	slog.Info("run complete", "rows", rows, "output", cfg.Output)
}

// notify posts the run outcome to the configured webhook, with the
// same retry policy as part extraction. Delivery failure never fails
// the run.
func notify(cfg *config.Config, rows int, runErr error) {
	if cfg.Notify.URL == "" {
		return
	}

	event := &webhook.Event{
		Type:     "run.completed",
		StartURL: cfg.StartURL,
		Output:   cfg.Output,
		Rows:     rows,
	}
	if runErr != nil {
		event.Type = "run.failed"
		event.Error = runErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	policy := retry.Policy{Attempts: cfg.Retry.Attempts, BaseDelay: cfg.Retry.BaseDelay}
	_, err := retry.Do(ctx, "notify", policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, webhook.Deliver(ctx, cfg.Notify.URL, cfg.Notify.Secret, event)
	})
	if err != nil {
		slog.Warn("webhook delivery failed", "url", cfg.Notify.URL, "error", err)
	}
}

// applyFlags overlays non-zero CLI flags onto the loaded config.
func applyFlags(cfg *config.Config, cli CLI) {
	if cli.URL != "" {
		cfg.StartURL = cli.URL
	}
	if cli.Output != "" {
		cfg.Output = cli.Output
	}
	if cli.Mode != "" {
		cfg.Fetch.Mode = cli.Mode
	}
	if cli.Retries >= 0 {
		cfg.Retry.Attempts = cli.Retries
	}
	if cli.Resume {
		cfg.Resume = true
	}
	if cli.ClearCache {
		cfg.Cache.Clear = true
	}
	if cli.Debug {
		cfg.Log.Level = "debug"
	}
}

// buildEngine constructs the engine for the configured fetch mode.
// The browser only launches for modes that need it.
func buildEngine(cfg *config.Config) (engine.Engine, func(), error) {
	static := engine.NewStatic(cfg.Browser.Proxy)

	if cfg.Fetch.Mode == "http" {
		return static, func() {}, nil
	}

	browser, err := browse.Launch(cfg.Browser, cfg.Fetch)
	if err != nil {
		return nil, nil, err
	}
	rodEng := engine.NewRod(browser, cfg.Fetch)

	if cfg.Fetch.Mode == "auto" {
		return &engine.Escalating{Primary: static, Fallback: rodEng}, browser.Close, nil
	}
	return rodEng, browser.Close, nil
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
