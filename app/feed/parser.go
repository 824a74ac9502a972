package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
)

// Parser turns a raw source payload into uncanonicalized posts.
type Parser interface {
	Run(data []byte, sourceLabel string) ([]Post, error)
}

var (
	_ Parser = (*RSSParser)(nil)
	_ Parser = (*SharedParser)(nil)
)

// RSSParser reads RSS 0.9x/1.0/2.0 and Atom payloads. gofeed.Parser caches
// its translators lazily, so each call gets its own.
type RSSParser struct{}

func NewRSSParser() *RSSParser {
	return &RSSParser{}
}

func (p *RSSParser) Run(data []byte, sourceLabel string) ([]Post, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("failed to parse feed: empty payload")
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	posts := make([]Post, 0, len(parsed.Items))
	for i, item := range parsed.Items {
		if item == nil {
			continue
		}

		post := Post{
			Title:       strings.TrimSpace(item.Title),
			Link:        p.extractLink(item),
			Description: lo.CoalesceOrEmpty(strings.TrimSpace(item.Description), strings.TrimSpace(item.Content)),
			PublishedAt: lo.CoalesceOrEmpty(strings.TrimSpace(item.Published), strings.TrimSpace(item.Updated)),
			SourceLabel: sourceLabel,
			Author:      p.extractAuthor(item, parsed.Title),
		}

		if post.Title == "" || post.Link == "" {
			slog.Warn("Skipping feed item without title or link",
				"source", sourceLabel,
				"index", i,
				"raw", fragment(fmt.Sprintf("title=%q link=%q guid=%q", item.Title, item.Link, item.GUID)))
			continue
		}

		posts = append(posts, post)
	}

	slog.Debug("Parsed feed", "source", sourceLabel, "title", parsed.Title, "items", len(parsed.Items), "posts", len(posts))
	return posts, nil
}

// extractLink prefers the item's alternate link, then any link, then a GUID
// that is itself a URL.
func (p *RSSParser) extractLink(item *gofeed.Item) string {
	if link := strings.TrimSpace(item.Link); link != "" {
		return link
	}
	for _, link := range item.Links {
		if link = strings.TrimSpace(link); link != "" {
			return link
		}
	}
	if guid := strings.TrimSpace(item.GUID); strings.HasPrefix(guid, "http://") || strings.HasPrefix(guid, "https://") {
		return guid
	}
	return ""
}

func (p *RSSParser) extractAuthor(item *gofeed.Item, feedTitle string) string {
	var candidate string

	people := item.Authors
	if len(people) == 0 && item.Author != nil {
		people = []*gofeed.Person{item.Author}
	}
	for _, person := range people {
		if person == nil {
			continue
		}
		if candidate = lo.CoalesceOrEmpty(strings.TrimSpace(person.Name), strings.TrimSpace(person.Email)); candidate != "" {
			break
		}
	}

	if candidate == "" && item.DublinCoreExt != nil {
		for _, creator := range item.DublinCoreExt.Creator {
			if candidate = strings.TrimSpace(creator); candidate != "" {
				break
			}
		}
	}

	// Blog platforms often repeat the feed title as the author.
	if candidate == "" || len(candidate) > maxAuthorLength || strings.EqualFold(candidate, strings.TrimSpace(feedTitle)) {
		return UnknownAuthor
	}
	return candidate
}

func fragment(s string) string {
	const limit = 200
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}
