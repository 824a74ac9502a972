package rules

import (
	"strings"

	"github.com/lysyi3m/feed-digest/app/feed"
)

// AuthorMapper rewrites authors in tier order: link substring, author
// substring, then exact author. The first hit wins.
type AuthorMapper struct {
	config *AuthorMappingConfig
}

func NewAuthorMapper(config *AuthorMappingConfig) *AuthorMapper {
	return &AuthorMapper{config: config}
}

func (m *AuthorMapper) Run(posts []feed.Post) []feed.Post {
	for i := range posts {
		posts[i].Author = m.Map(posts[i].Link, posts[i].Author)
	}
	return posts
}

func (m *AuthorMapper) Map(link, author string) string {
	foldedLink, foldedAuthor := fold(link), fold(author)

	for _, rule := range m.config.URLContains {
		if strings.Contains(foldedLink, fold(rule.Keyword)) {
			return rule.Author
		}
	}
	for _, rule := range m.config.AuthorContains {
		if strings.Contains(foldedAuthor, fold(rule.Keyword)) {
			return rule.Author
		}
	}
	for _, rule := range m.config.AuthorExact {
		if foldedAuthor == fold(rule.Keyword) {
			return rule.Author
		}
	}

	return author
}
