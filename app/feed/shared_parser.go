package feed

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"
)

type sharedPayload struct {
	Stories []json.RawMessage `json:"stories"`
}

type sharedStory struct {
	Title          string     `json:"story_title"`
	Permalink      string     `json:"story_permalink"`
	Content        any        `json:"story_content"`
	Authors        string     `json:"story_authors"`
	SharedDate     flexString `json:"shared_date"`
	StoryDate      flexString `json:"story_date"`
	StoryTimestamp flexString `json:"story_timestamp"`
}

// flexString accepts both JSON strings and numbers.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = flexString(num.String())
	return nil
}

// SharedParser reads the shared-items API "stories" payload. Posts are dated
// by when they were shared, not when they were originally published.
type SharedParser struct{}

func NewSharedParser() *SharedParser {
	return &SharedParser{}
}

func (p *SharedParser) Run(data []byte, sourceLabel string) ([]Post, error) {
	var payload sharedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse shared stories: %w", err)
	}

	posts := make([]Post, 0, len(payload.Stories))
	for i, raw := range payload.Stories {
		var story sharedStory
		if err := json.Unmarshal(raw, &story); err != nil {
			slog.Warn("Skipping malformed shared story",
				"source", sourceLabel,
				"index", i,
				"raw", fragment(string(raw)),
				"error", err)
			continue
		}

		post := Post{
			Title:       strings.TrimSpace(story.Title),
			Link:        strings.TrimSpace(story.Permalink),
			Description: StripHTML(story.Content, 0),
			PublishedAt: strings.TrimSpace(string(lo.CoalesceOrEmpty(story.SharedDate, story.StoryDate, story.StoryTimestamp))),
			SourceLabel: sourceLabel,
			Author:      FormatAuthors(story.Authors),
		}

		if post.Title == "" || post.Link == "" {
			slog.Warn("Skipping shared story without title or link",
				"source", sourceLabel,
				"index", i,
				"raw", fragment(string(raw)))
			continue
		}

		posts = append(posts, post)
	}

	slog.Debug("Parsed shared stories", "source", sourceLabel, "stories", len(payload.Stories), "posts", len(posts))
	return posts, nil
}
