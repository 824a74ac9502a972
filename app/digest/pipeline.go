// Package digest runs one refresh: fetch, parse, normalize, filter and
// categorize, then group the surviving posts by category.
package digest

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/lysyi3m/feed-digest/app/baseline"
	"github.com/lysyi3m/feed-digest/app/fetch"
	"github.com/lysyi3m/feed-digest/app/feed"
	"github.com/lysyi3m/feed-digest/app/rules"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type Fetcher interface {
	Fetch(ctx context.Context, req fetch.Request) []byte
}

type Stats struct {
	Parsed     int `json:"parsed"`
	Duplicates int `json:"duplicates"`
	Filtered   int `json:"filtered"`
	Published  int `json:"published"`
}

type Result struct {
	RunID       string                 `json:"run_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Source      string                 `json:"source"`
	Baseline    baseline.Baseline      `json:"baseline"`
	Posts       []feed.Post            `json:"posts"`
	Groups      map[string][]feed.Post `json:"groups"`
	Order       []string               `json:"order"`
	Stats       Stats                  `json:"stats"`
}

// Pipeline holds only immutable collaborators. Every collection a run builds
// is local to Run, so concurrent runs never share state.
type Pipeline struct {
	fetcher       Fetcher
	source        Source
	resolver      *baseline.Resolver
	rules         *rules.Rules
	canonicalizer *feed.Canonicalizer
	categorizer   *rules.Categorizer
	authorMapper  *rules.AuthorMapper
}

func NewPipeline(fetcher Fetcher, source Source, resolver *baseline.Resolver, ruleSet *rules.Rules, urlCleaner *feed.URLCleaner) *Pipeline {
	return &Pipeline{
		fetcher:       fetcher,
		source:        source,
		resolver:      resolver,
		rules:         ruleSet,
		canonicalizer: feed.NewCanonicalizer(urlCleaner),
		categorizer:   rules.NewCategorizer(ruleSet.Categories),
		authorMapper:  rules.NewAuthorMapper(ruleSet.Authors),
	}
}

// WithRules returns a copy of the pipeline bound to a different rule set.
func (p *Pipeline) WithRules(ruleSet *rules.Rules) *Pipeline {
	next := *p
	next.rules = ruleSet
	next.categorizer = rules.NewCategorizer(ruleSet.Categories)
	next.authorMapper = rules.NewAuthorMapper(ruleSet.Authors)
	return &next
}

func (p *Pipeline) Rules() *rules.Rules {
	return p.rules
}

// Run never fails: an unreachable or malformed source yields an empty result.
func (p *Pipeline) Run(ctx context.Context) Result {
	result := Result{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Source:      p.source.Label,
		Posts:       []feed.Post{},
		Groups:      map[string][]feed.Post{},
	}

	var data []byte
	if p.resolver.NeedsFetch() {
		var g errgroup.Group
		g.Go(func() error {
			data = p.fetcher.Fetch(ctx, p.source.Request)
			return nil
		})
		g.Go(func() error {
			result.Baseline = p.resolver.Resolve(ctx)
			return nil
		})
		_ = g.Wait()
	} else {
		result.Baseline = p.resolver.Resolve(ctx)
		data = p.fetcher.Fetch(ctx, p.source.Request)
	}

	if len(data) == 0 {
		slog.Warn("Source returned no data", "run_id", result.RunID, "source", p.source.Label)
		return result
	}

	posts, err := p.source.Parser.Run(data, p.source.Label)
	if err != nil {
		slog.Warn("Failed to parse source", "run_id", result.RunID, "source", p.source.Label, "error", err)
		return result
	}
	result.Stats.Parsed = len(posts)

	posts = p.canonicalizer.Run(posts)

	unique := feed.Dedupe(posts)
	result.Stats.Duplicates = len(posts) - len(unique)

	fresh := feed.NewDateFilter(result.Baseline.Cutoff).Run(unique)
	result.Stats.Filtered = len(unique) - len(fresh)

	fresh = p.categorizer.Run(fresh)
	fresh = p.authorMapper.Run(fresh)

	result.Posts = fresh
	result.Groups = Group(fresh)
	result.Order = orderOf(p.rules.Categories.Names(), result.Groups)
	result.Stats.Published = len(fresh)

	slog.Info("Refresh completed",
		"run_id", result.RunID,
		"source", p.source.Label,
		"baseline", result.Baseline.Source,
		"parsed", result.Stats.Parsed,
		"duplicates", result.Stats.Duplicates,
		"filtered", result.Stats.Filtered,
		"published", result.Stats.Published)

	return result
}

// Group buckets posts by category, newest first within each bucket. Posts
// with unparsable timestamps sort last and keep their relative order.
func Group(posts []feed.Post) map[string][]feed.Post {
	groups := lo.GroupBy(posts, func(p feed.Post) string {
		return p.Category
	})
	for _, group := range groups {
		slices.SortStableFunc(group, newestFirst)
	}
	return groups
}

func newestFirst(a, b feed.Post) int {
	ta, okA := a.Instant()
	tb, okB := b.Instant()
	switch {
	case okA && okB:
		return tb.Compare(ta)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return 0
	}
}

// orderOf lists the non-empty groups in configured category order.
func orderOf(names []string, groups map[string][]feed.Post) []string {
	return lo.Filter(lo.Uniq(names), func(name string, _ int) bool {
		return len(groups[name]) > 0
	})
}
