package feed

import (
	"log/slog"
	"strings"
	"time"
)

// DateFilter drops posts published at or before a cutoff.
type DateFilter struct {
	cutoff time.Time
}

func NewDateFilter(cutoff time.Time) *DateFilter {
	return &DateFilter{cutoff: cutoff}
}

func (f *DateFilter) Run(posts []Post) []Post {
	kept := make([]Post, 0, len(posts))
	for _, post := range posts {
		if f.Keep(post) {
			kept = append(kept, post)
		}
	}
	return kept
}

// Keep reports whether post is newer than the cutoff. Posts without a
// timestamp are dropped; posts whose timestamp cannot be parsed are kept.
func (f *DateFilter) Keep(post Post) bool {
	if strings.TrimSpace(post.PublishedAt) == "" {
		slog.Debug("Post excluded: no timestamp", "link", post.Link)
		return false
	}

	instant, ok := post.Instant()
	if !ok {
		slog.Debug("Post included: unparsable timestamp", "link", post.Link, "published_at", post.PublishedAt)
		return true
	}

	return instant.After(f.cutoff)
}
