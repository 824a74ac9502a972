package rules

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// ErrUnparsable marks a rule document that is not valid JSON or YAML.
var ErrUnparsable = errors.New("rule document is not valid JSON or YAML")

// Load reads both rule files. A missing or unparsable file falls back to an
// empty rule set, a structurally malformed one is an error.
func Load(categoriesFile, authorsFile string) (*Rules, error) {
	categories, err := LoadCategories(categoriesFile)
	if err != nil {
		return nil, err
	}

	authors, err := LoadAuthors(authorsFile)
	if err != nil {
		return nil, err
	}

	slog.Debug("Rules loaded", "categories", len(categories.Categories), "default", categories.DefaultCategory,
		"url_rules", len(authors.URLContains), "author_rules", len(authors.AuthorContains)+len(authors.AuthorExact))

	return &Rules{Categories: categories, Authors: authors}, nil
}

func LoadCategories(path string) (*CategoryConfig, error) {
	data, err := readOptional(path)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return &CategoryConfig{DefaultCategory: DefaultCategory}, nil
	}

	config, err := ParseCategories(data)
	if errors.Is(err, ErrUnparsable) {
		slog.Warn("Rule file unparsable, using defaults", "path", path, "error", err)
		return &CategoryConfig{DefaultCategory: DefaultCategory}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid categories file %s: %w", path, err)
	}
	return config, nil
}

func LoadAuthors(path string) (*AuthorMappingConfig, error) {
	data, err := readOptional(path)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return &AuthorMappingConfig{}, nil
	}

	config, err := ParseAuthors(data)
	if errors.Is(err, ErrUnparsable) {
		slog.Warn("Rule file unparsable, using defaults", "path", path, "error", err)
		return &AuthorMappingConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid authors file %s: %w", path, err)
	}
	return config, nil
}

// ParseCategories decodes a JSON or YAML category document. The node tree is
// walked by hand because map decoding would lose category order.
func ParseCategories(data []byte) (*CategoryConfig, error) {
	config := &CategoryConfig{
		DefaultCategory: DefaultCategory,
		wholeWord:       make(map[string]*regexp.Regexp),
	}

	root, err := documentRoot(data)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return config, nil
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i].Value, root.Content[i+1]

		switch key {
		case "categories":
			if config.Categories, err = decodeCategories(value); err != nil {
				return nil, err
			}
		case "defaultCategory":
			if value.Kind != yaml.ScalarNode || value.Value == "" {
				return nil, fmt.Errorf("defaultCategory at line %d must be a non-empty string", value.Line)
			}
			config.DefaultCategory = value.Value
		case "wholeWordKeywords":
			keywords, err := decodeKeywords(value)
			if err != nil {
				return nil, err
			}
			for _, keyword := range keywords {
				re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
				if err != nil {
					return nil, fmt.Errorf("failed to compile whole-word keyword %q: %w", keyword, err)
				}
				config.wholeWord[fold(keyword)] = re
			}
		default:
			slog.Warn("Unknown key in categories file", "key", key, "line", root.Content[i].Line)
		}
	}

	return config, nil
}

func ParseAuthors(data []byte) (*AuthorMappingConfig, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	var config AuthorMappingConfig
	if doc.Kind == 0 {
		return &config, nil
	}
	if err := doc.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to decode author mappings: %w", err)
	}

	tiers := map[string][]AuthorRule{
		"urlContains":    config.URLContains,
		"authorContains": config.AuthorContains,
		"authorExact":    config.AuthorExact,
	}
	for tier, rules := range tiers {
		for i, rule := range rules {
			if rule.Keyword == "" || rule.Author == "" {
				return nil, fmt.Errorf("%s rule at index %d needs both keyword and author", tier, i)
			}
		}
	}

	return &config, nil
}

func decodeCategories(node *yaml.Node) ([]Category, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("categories at line %d must be a mapping", node.Line)
	}

	categories := make([]Category, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name, body := node.Content[i].Value, node.Content[i+1]
		category := Category{Name: name}

		switch body.Kind {
		case yaml.SequenceNode:
			// Legacy form: a bare list of title keywords.
			keywords, err := decodeKeywords(body)
			if err != nil {
				return nil, fmt.Errorf("category %q: %w", name, err)
			}
			category.TitleKeywords = keywords
		case yaml.MappingNode:
			for j := 0; j+1 < len(body.Content); j += 2 {
				keywords, err := decodeKeywords(body.Content[j+1])
				if err != nil {
					return nil, fmt.Errorf("category %q: %w", name, err)
				}
				switch body.Content[j].Value {
				case "urlKeywords":
					category.URLKeywords = keywords
				case "titleKeywords":
					category.TitleKeywords = keywords
				default:
					return nil, fmt.Errorf("category %q: unknown field %q", name, body.Content[j].Value)
				}
			}
		default:
			return nil, fmt.Errorf("category %q at line %d must be a list or an object", name, body.Line)
		}

		categories = append(categories, category)
	}

	return categories, nil
}

func decodeKeywords(node *yaml.Node) ([]string, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("keywords at line %d must be a list", node.Line)
	}

	keywords := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
			return nil, fmt.Errorf("keyword at line %d must be a string", item.Line)
		}
		if item.Value == "" {
			continue
		}
		keywords = append(keywords, item.Value)
	}
	return keywords, nil
}

func documentRoot(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("categories document must be an object")
	}
	return root, nil
}

func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("Rule file not found, using defaults", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func fold(s string) string {
	return cases.Fold().String(s)
}
