// Package metrics exposes refresh counters to Prometheus.
package metrics

import (
	"github.com/lysyi3m/feed-digest/app/digest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "feed_digest"

type Metrics struct {
	RefreshesTotal   *prometheus.CounterVec
	PostsTotal       *prometheus.CounterVec
	RefreshDuration  prometheus.Histogram
	PublishedPosts   prometheus.Gauge
	PostsPerCategory *prometheus.GaugeVec
	RuleReloadsTotal *prometheus.CounterVec
}

// New registers all collectors on reg, or on the default registerer when reg
// is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RefreshesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "refreshes_total",
			Help:      "Completed refresh runs by baseline source",
		}, []string{"baseline"}),
		PostsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "posts_total",
			Help:      "Posts seen by pipeline stage outcome",
		}, []string{"outcome"}),
		RefreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Wall-clock duration of refresh runs",
			Buckets:   prometheus.DefBuckets,
		}),
		PublishedPosts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "published_posts",
			Help:      "Posts in the latest refresh result",
		}),
		PostsPerCategory: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "category_posts",
			Help:      "Posts per category in the latest refresh result",
		}, []string{"category"}),
		RuleReloadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "rule_reloads_total",
			Help:      "Rule file reloads by status",
		}, []string{"status"}),
	}
}

func (m *Metrics) ObserveRefresh(result digest.Result, seconds float64) {
	m.RefreshesTotal.WithLabelValues(string(result.Baseline.Source)).Inc()
	m.RefreshDuration.Observe(seconds)

	m.PostsTotal.WithLabelValues("parsed").Add(float64(result.Stats.Parsed))
	m.PostsTotal.WithLabelValues("duplicate").Add(float64(result.Stats.Duplicates))
	m.PostsTotal.WithLabelValues("filtered").Add(float64(result.Stats.Filtered))
	m.PostsTotal.WithLabelValues("published").Add(float64(result.Stats.Published))

	m.PublishedPosts.Set(float64(result.Stats.Published))
	m.PostsPerCategory.Reset()
	for category, posts := range result.Groups {
		m.PostsPerCategory.WithLabelValues(category).Set(float64(len(posts)))
	}
}

func (m *Metrics) ObserveReload(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RuleReloadsTotal.WithLabelValues(status).Inc()
}
