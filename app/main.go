package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/feed-digest/app/api"
	"github.com/lysyi3m/feed-digest/app/baseline"
	"github.com/lysyi3m/feed-digest/app/cfg"
	"github.com/lysyi3m/feed-digest/app/digest"
	"github.com/lysyi3m/feed-digest/app/fetch"
	"github.com/lysyi3m/feed-digest/app/feed"
	"github.com/lysyi3m/feed-digest/app/metrics"
	"github.com/lysyi3m/feed-digest/app/rules"
	"github.com/lysyi3m/feed-digest/app/tasks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if c == nil {
		return
	}

	setupLogger(c)

	ruleSet, err := rules.Load(c.CategoriesFile, c.AuthorsFile)
	if err != nil {
		slog.Error("Failed to load rules", "error", err)
		os.Exit(1)
	}

	pipeline, source, err := buildPipeline(c, ruleSet)
	if err != nil {
		slog.Error("Failed to configure source", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !c.Serve {
		if err := runOnce(ctx, c, pipeline); err != nil {
			slog.Error("Failed to write output", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := serve(ctx, c, pipeline, source); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(c *cfg.Cfg) {
	level := slog.LevelInfo
	if c.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if c.Serve {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func buildPipeline(c *cfg.Cfg, ruleSet *rules.Rules) (*digest.Pipeline, digest.Source, error) {
	source, err := digest.SourceFromConfig(c)
	if err != nil {
		return nil, digest.Source{}, err
	}

	fetcher := fetch.NewFetcher(&http.Client{Timeout: c.Timeout}, c.UserAgent)
	resolver := baseline.NewResolver(fetcher, baseline.Config{
		Override:      c.BaselineOverride,
		FeedURL:       c.BaselineFeedURL,
		Marker:        c.BaselineMarker,
		BufferEnabled: c.BaselineBuffer,
		BufferMinutes: c.BaselineBufferMinutes,
	})
	urlCleaner := feed.NewURLCleaner(c.CampaignDomain, c.CampaignParam)

	return digest.NewPipeline(fetcher, source, resolver, ruleSet, urlCleaner), source, nil
}

func runOnce(ctx context.Context, c *cfg.Cfg, pipeline *digest.Pipeline) error {
	// Source and reference fetches run in parallel, each bounded by the
	// redirect and retry limits.
	runCtx, cancel := context.WithTimeout(ctx, 2*(fetch.MaxRedirects+fetch.MaxRetries+1)*c.Timeout)
	defer cancel()

	result := pipeline.Run(runCtx)

	if c.Output == "tree" {
		return digest.RenderTree(os.Stdout, digest.BuildTree(result))
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func serve(ctx context.Context, c *cfg.Cfg, pipeline *digest.Pipeline, source digest.Source) error {
	slog.Info("Starting feed digest server", "version", c.Version, "source", source.Label, "mode", c.SourceMode)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	state := tasks.NewState(pipeline)
	scheduler := tasks.NewScheduler(state, m, tasks.SchedulerConfig{
		Source:         source.Label,
		CategoriesFile: c.CategoriesFile,
		AuthorsFile:    c.AuthorsFile,
		Interval:       time.Duration(c.RefreshInterval) * time.Second,
	})
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(state, scheduler, c.Version)
	httpServer := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      api.NewServer(handler, registry, c.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", c.Port, "api_enabled", c.APIAccessKey != "")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case serveErr = <-serverErrChan:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Feed digest server stopped")
	return serveErr
}
