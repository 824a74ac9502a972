package feed

import "time"

const (
	UnknownAuthor        = "unknown"
	MaxDescriptionLength = 500
	maxAuthorLength      = 100
)

// Post is the canonical record every source is reduced to.
type Post struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	PublishedAt string `json:"published_at"`
	Category    string `json:"category"`
	SourceLabel string `json:"source_label"`
	Author      string `json:"author"`
}

// Instant re-derives a comparable instant from PublishedAt.
func (p Post) Instant() (time.Time, bool) {
	t, err := ParseInstant(p.PublishedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
