package feed

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// blockElements get a separating space so adjacent paragraphs don't run together.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "td": true, "th": true, "blockquote": true, "pre": true,
	"section": true, "article": true, "figure": true, "figcaption": true,
}

// DecodeEntities decodes the five entities feeds commonly escape twice.
func DecodeEntities(s string) string {
	return entityReplacer.Replace(s)
}

// StripHTML reduces markup to collapsed plain text of at most maxLen runes
// (maxLen <= 0 disables the cap). Structured values some feeds yield for
// text nodes are coerced first.
func StripHTML(value any, maxLen int) string {
	raw := DecodeEntities(coerceText(value))
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	text := raw
	if strings.ContainsAny(raw, "<>") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
		if err == nil {
			doc.Find("script, style").Remove()
			var b strings.Builder
			for _, n := range doc.Nodes {
				collectText(n, &b)
			}
			text = b.String()
		}
	}

	return truncate(collapseWhitespace(text), maxLen)
}

func collectText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if blockElements[n.Data] {
			b.WriteByte(' ')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

func coerceText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	case map[string]any:
		for _, key := range []string{"#text", "text", "_", "value"} {
			if s, ok := v[key].(string); ok {
				return s
			}
		}
		return ""
	case map[string]string:
		for _, key := range []string{"#text", "text", "_", "value"} {
			if s, ok := v[key]; ok {
				return s
			}
		}
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:maxLen])) + "..."
}

// CleanAuthor trims and collapses an author name; empty becomes UnknownAuthor.
func CleanAuthor(author string) string {
	author = collapseWhitespace(DecodeEntities(author))
	if author == "" {
		return UnknownAuthor
	}
	return author
}

// FormatAuthors turns a comma-separated author list into "A", "A & B" or
// "A, B & C".
func FormatAuthors(raw string) string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := collapseWhitespace(part); name != "" {
			names = append(names, name)
		}
	}

	switch len(names) {
	case 0:
		return UnknownAuthor
	case 1:
		return names[0]
	case 2:
		return names[0] + " & " + names[1]
	default:
		last := len(names) - 1
		return strings.Join(names[:last], ", ") + " & " + names[last]
	}
}
