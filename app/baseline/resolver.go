// Package baseline resolves the cutoff instant that the date filter compares
// posts against.
package baseline

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/lysyi3m/feed-digest/app/fetch"
	"github.com/lysyi3m/feed-digest/app/feed"
)

const Lookback = 24 * time.Hour

type Source string

const (
	SourceOverride  Source = "override"
	SourceReference Source = "reference"
	SourceFallback  Source = "fallback"
)

// Baseline is the resolved cutoff. Buffer has already been added to Cutoff.
type Baseline struct {
	Cutoff time.Time     `json:"cutoff"`
	Source Source        `json:"source"`
	Buffer time.Duration `json:"buffer"`
}

type Config struct {
	Override      string
	FeedURL       string
	Marker        string
	BufferEnabled bool
	BufferMinutes int
}

type Fetcher interface {
	Fetch(ctx context.Context, req fetch.Request) []byte
}

type Resolver struct {
	fetcher Fetcher
	parser  feed.Parser
	config  Config
	now     func() time.Time
}

func NewResolver(fetcher Fetcher, config Config) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		parser:  feed.NewRSSParser(),
		config:  config,
		now:     time.Now,
	}
}

// NeedsFetch reports whether Resolve will hit the network.
func (r *Resolver) NeedsFetch() bool {
	return r.config.Override == "" && r.config.FeedURL != ""
}

func (r *Resolver) Resolve(ctx context.Context) Baseline {
	result := r.resolve(ctx)

	if r.config.BufferEnabled && r.config.BufferMinutes > 0 {
		result.Buffer = time.Duration(r.config.BufferMinutes) * time.Minute
		result.Cutoff = result.Cutoff.Add(result.Buffer)
	}

	slog.Info("Baseline resolved", "source", result.Source, "cutoff", result.Cutoff.Format(time.RFC3339), "buffer", result.Buffer)
	return result
}

func (r *Resolver) resolve(ctx context.Context) Baseline {
	if r.config.Override != "" {
		cutoff, err := feed.ParseInstant(r.config.Override)
		if err != nil {
			slog.Warn("Invalid baseline override", "value", r.config.Override, "error", err)
			return r.fallback()
		}
		return Baseline{Cutoff: cutoff, Source: SourceOverride}
	}

	if r.config.FeedURL == "" {
		return r.fallback()
	}

	data := r.fetcher.Fetch(ctx, fetch.Request{URL: r.config.FeedURL})
	if data == nil {
		return r.fallback()
	}

	posts, err := r.parser.Run(data, "baseline")
	if err != nil {
		slog.Warn("Failed to parse baseline feed", "url", r.config.FeedURL, "error", err)
		return r.fallback()
	}

	cutoff, ok := r.newestMarker(posts)
	if !ok {
		slog.Warn("No marker post in baseline feed", "url", r.config.FeedURL, "marker", r.config.Marker)
		return r.fallback()
	}
	return Baseline{Cutoff: cutoff, Source: SourceReference}
}

func (r *Resolver) newestMarker(posts []feed.Post) (time.Time, bool) {
	var matches []time.Time
	for _, post := range posts {
		title := strings.TrimSpace(feed.DecodeEntities(post.Title))
		if !strings.HasPrefix(title, r.config.Marker) {
			continue
		}
		if instant, ok := post.Instant(); ok {
			matches = append(matches, instant)
		}
	}
	if len(matches) == 0 {
		return time.Time{}, false
	}

	slices.SortFunc(matches, func(a, b time.Time) int { return b.Compare(a) })
	return matches[0], true
}

func (r *Resolver) fallback() Baseline {
	return Baseline{Cutoff: r.now().UTC().Add(-Lookback), Source: SourceFallback}
}
