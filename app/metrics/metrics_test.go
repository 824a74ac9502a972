package metrics

import (
	"errors"
	"testing"

	"github.com/lysyi3m/feed-digest/app/baseline"
	"github.com/lysyi3m/feed-digest/app/digest"
	"github.com/lysyi3m/feed-digest/app/feed"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRefresh(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRefresh(digest.Result{
		Baseline: baseline.Baseline{Source: baseline.SourceFallback},
		Groups:   map[string][]feed.Post{"Tech": {{}, {}}, "Other": {{}}},
		Stats:    digest.Stats{Parsed: 5, Duplicates: 1, Filtered: 1, Published: 3},
	}, 0.2)

	if got := testutil.ToFloat64(m.RefreshesTotal.WithLabelValues("fallback")); got != 1 {
		t.Errorf("Expected 1 refresh, got %v", got)
	}
	if got := testutil.ToFloat64(m.PostsTotal.WithLabelValues("parsed")); got != 5 {
		t.Errorf("Expected 5 parsed posts, got %v", got)
	}
	if got := testutil.ToFloat64(m.PublishedPosts); got != 3 {
		t.Errorf("Expected 3 published posts, got %v", got)
	}
	if got := testutil.ToFloat64(m.PostsPerCategory.WithLabelValues("Tech")); got != 2 {
		t.Errorf("Expected 2 Tech posts, got %v", got)
	}
}

func TestObserveReload(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveReload(nil)
	m.ObserveReload(errors.New("bad file"))
	m.ObserveReload(nil)

	if got := testutil.ToFloat64(m.RuleReloadsTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("Expected 2 ok reloads, got %v", got)
	}
	if got := testutil.ToFloat64(m.RuleReloadsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("Expected 1 failed reload, got %v", got)
	}
}
