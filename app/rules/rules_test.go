package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lysyi3m/feed-digest/app/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const categoriesJSON = `{
  "categories": {
    "Technology": {"titleKeywords": ["release", "ai"]},
    "Security": {"urlKeywords": ["/security/"], "titleKeywords": ["breach"]},
    "Business": ["Earnings", "market"]
  },
  "defaultCategory": "Other",
  "wholeWordKeywords": ["ai"]
}`

func mustCategories(t *testing.T, doc string) *CategoryConfig {
	t.Helper()
	config, err := ParseCategories([]byte(doc))
	require.NoError(t, err)
	return config
}

func TestParseCategoriesKeepsOrder(t *testing.T) {
	config := mustCategories(t, categoriesJSON)

	assert.Equal(t, []string{"Technology", "Security", "Business", "Other"}, config.Names())
	assert.Equal(t, "Other", config.DefaultCategory)
}

func TestParseCategoriesLegacyList(t *testing.T) {
	config := mustCategories(t, categoriesJSON)

	business := config.Categories[2]
	assert.Empty(t, business.URLKeywords)
	assert.Equal(t, []string{"Earnings", "market"}, business.TitleKeywords)
}

func TestParseCategoriesYAML(t *testing.T) {
	config := mustCategories(t, `
categories:
  Science:
    urlKeywords: [nature.com]
  Sports:
    - football
`)

	assert.Equal(t, []string{"Science", "Sports", DefaultCategory}, config.Names())
}

func TestParseCategoriesRejectsNonStringKeyword(t *testing.T) {
	_, err := ParseCategories([]byte(`{"categories": {"Numbers": [1, 2]}}`))
	assert.Error(t, err)

	_, err = ParseCategories([]byte(`{"categories": {"Tech": {"titleKeywords": [{"a": "b"}]}}}`))
	assert.Error(t, err)
}

func TestLoadMissingFilesFallsBack(t *testing.T) {
	dir := t.TempDir()

	loaded, err := Load(filepath.Join(dir, "categories.json"), filepath.Join(dir, "authors.json"))
	require.NoError(t, err)

	assert.Empty(t, loaded.Categories.Categories)
	assert.Equal(t, DefaultCategory, loaded.Categories.DefaultCategory)
	assert.Equal(t, DefaultCategory, NewCategorizer(loaded.Categories).Categorize("anything", "https://x.com"))
	assert.Equal(t, "bob", NewAuthorMapper(loaded.Authors).Map("https://x.com", "bob"))
}

func TestLoadUnparsableFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	categoriesFile := filepath.Join(dir, "categories.json")
	authorsFile := filepath.Join(dir, "authors.json")
	require.NoError(t, os.WriteFile(categoriesFile, []byte(`{"categories": {"AI": ["ai"]`), 0o644))
	require.NoError(t, os.WriteFile(authorsFile, []byte(`{"authorExact": [`), 0o644))

	loaded, err := Load(categoriesFile, authorsFile)
	require.NoError(t, err)

	assert.Empty(t, loaded.Categories.Categories)
	assert.Equal(t, DefaultCategory, loaded.Categories.DefaultCategory)
	assert.Empty(t, loaded.Authors.AuthorExact)
}

func TestLoadMalformedStructureFails(t *testing.T) {
	dir := t.TempDir()
	categoriesFile := filepath.Join(dir, "categories.json")
	require.NoError(t, os.WriteFile(categoriesFile, []byte(`{"categories": {"AI": [42]}}`), 0o644))

	_, err := Load(categoriesFile, filepath.Join(dir, "authors.json"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnparsable)
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	categoriesFile := filepath.Join(dir, "categories.json")
	authorsFile := filepath.Join(dir, "authors.json")
	require.NoError(t, os.WriteFile(categoriesFile, []byte(categoriesJSON), 0o644))
	require.NoError(t, os.WriteFile(authorsFile, []byte(`{"authorExact": [{"keyword": "ed", "author": "Editorial Team"}]}`), 0o644))

	loaded, err := Load(categoriesFile, authorsFile)
	require.NoError(t, err)

	assert.Len(t, loaded.Categories.Categories, 3)
	assert.Len(t, loaded.Authors.AuthorExact, 1)
}

func TestCategorizeURLBeatsEarlierTitleMatch(t *testing.T) {
	categorizer := NewCategorizer(mustCategories(t, categoriesJSON))

	got := categorizer.Categorize("New release of the toolkit", "https://example.com/security/toolkit")
	assert.Equal(t, "Security", got)
}

func TestCategorizeWholeWord(t *testing.T) {
	categorizer := NewCategorizer(mustCategories(t, categoriesJSON))

	assert.Equal(t, "Technology", categorizer.Categorize("AI Revolution in Technology", "https://example.com/a"))
	assert.Equal(t, "Other", categorizer.Categorize("Maintaining Your Application", "https://example.com/b"))
}

func TestCategorizeSubstringIsCaseInsensitive(t *testing.T) {
	categorizer := NewCategorizer(mustCategories(t, categoriesJSON))

	assert.Equal(t, "Business", categorizer.Categorize("Q3 EARNINGS beat expectations", "https://example.com/c"))
	assert.Equal(t, "Security", categorizer.Categorize("Data Breach at retailer", "https://example.com/d"))
}

func TestCategorizerRun(t *testing.T) {
	categorizer := NewCategorizer(mustCategories(t, categoriesJSON))

	posts := categorizer.Run([]feed.Post{
		{Title: "Stock market update", Link: "https://example.com/1"},
		{Title: "Weather", Link: "https://example.com/2"},
	})

	assert.Equal(t, "Business", posts[0].Category)
	assert.Equal(t, "Other", posts[1].Category)
}

func TestAuthorMapperTiers(t *testing.T) {
	config, err := ParseAuthors([]byte(`{
  "urlContains": [{"keyword": "/guest/", "author": "Guest Writer"}],
  "authorContains": [{"keyword": "smith", "author": "J. Smith"}],
  "authorExact": [{"keyword": "admin", "author": "Editorial Team"}, {"keyword": "j. smith", "author": "Never"}]
}`))
	require.NoError(t, err)
	mapper := NewAuthorMapper(config)

	tests := []struct {
		name   string
		link   string
		author string
		want   string
	}{
		{"url wins over author rules", "https://example.com/guest/post", "admin", "Guest Writer"},
		{"author contains", "https://example.com/post", "John SMITH", "J. Smith"},
		{"contains beats exact", "https://example.com/post", "j. smith", "J. Smith"},
		{"author exact", "https://example.com/post", "ADMIN", "Editorial Team"},
		{"exact needs full string", "https://example.com/post", "administrator", "administrator"},
		{"no match", "https://example.com/post", "Jane Doe", "Jane Doe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapper.Map(tt.link, tt.author))
		})
	}
}

func TestParseAuthorsRejectsIncompleteRule(t *testing.T) {
	_, err := ParseAuthors([]byte(`{"authorExact": [{"keyword": "admin"}]}`))
	assert.Error(t, err)
}
