package rules

import (
	"strings"

	"github.com/lysyi3m/feed-digest/app/feed"
)

type Categorizer struct {
	config *CategoryConfig
}

func NewCategorizer(config *CategoryConfig) *Categorizer {
	return &Categorizer{config: config}
}

func (c *Categorizer) Run(posts []feed.Post) []feed.Post {
	for i := range posts {
		posts[i].Category = c.Categorize(posts[i].Title, posts[i].Link)
	}
	return posts
}

// Categorize returns exactly one category. URL keywords of every category are
// tried before any title keyword, so a URL hit in a later category beats a
// title hit in an earlier one.
func (c *Categorizer) Categorize(title, link string) string {
	foldedLink := fold(link)
	for _, category := range c.config.Categories {
		for _, keyword := range category.URLKeywords {
			if strings.Contains(foldedLink, fold(keyword)) {
				return category.Name
			}
		}
	}

	foldedTitle := fold(title)
	for _, category := range c.config.Categories {
		for _, keyword := range category.TitleKeywords {
			if c.matchTitle(title, foldedTitle, keyword) {
				return category.Name
			}
		}
	}

	return c.config.DefaultCategory
}

func (c *Categorizer) matchTitle(title, foldedTitle, keyword string) bool {
	if re, ok := c.config.WholeWordPattern(keyword); ok {
		return re.MatchString(title)
	}
	return strings.Contains(foldedTitle, fold(keyword))
}
