package rules

import "regexp"

const DefaultCategory = "General"

// Category is a single keyword rule set. Legacy bare keyword lists are
// normalized into TitleKeywords at load time.
type Category struct {
	Name          string
	URLKeywords   []string
	TitleKeywords []string
}

// CategoryConfig is immutable after Load. Categories keep file order.
type CategoryConfig struct {
	Categories      []Category
	DefaultCategory string

	wholeWord map[string]*regexp.Regexp
}

// WholeWordPattern returns the pre-compiled word-boundary pattern for a
// keyword registered in the whole-word set.
func (c *CategoryConfig) WholeWordPattern(keyword string) (*regexp.Regexp, bool) {
	re, ok := c.wholeWord[fold(keyword)]
	return re, ok
}

func (c *CategoryConfig) Names() []string {
	names := make([]string, 0, len(c.Categories)+1)
	for _, category := range c.Categories {
		names = append(names, category.Name)
	}
	return append(names, c.DefaultCategory)
}

type AuthorRule struct {
	Keyword string `yaml:"keyword"`
	Author  string `yaml:"author"`
}

type AuthorMappingConfig struct {
	URLContains    []AuthorRule `yaml:"urlContains"`
	AuthorContains []AuthorRule `yaml:"authorContains"`
	AuthorExact    []AuthorRule `yaml:"authorExact"`
}

// Rules bundles both rule documents so they can be swapped as one value.
type Rules struct {
	Categories *CategoryConfig
	Authors    *AuthorMappingConfig
}
