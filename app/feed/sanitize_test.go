package feed

import (
	"strings"
	"testing"
)

type stringerText struct{ s string }

func (s stringerText) String() string { return s.s }

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"plain text", "Hello   world", "Hello world"},
		{"tags removed", "<p>Hello <b>bold</b> world</p>", "Hello bold world"},
		{"script and style dropped", "<style>p{color:red}</style><p>Keep</p><script>alert(1)</script>", "Keep"},
		{"escaped markup", "&lt;p&gt;Escaped &amp; decoded&lt;/p&gt;", "Escaped & decoded"},
		{"quotes", "&quot;quoted&quot; &#39;single&#39;", `"quoted" 'single'`},
		{"paragraphs separated", "<p>One</p><p>Two</p>", "One Two"},
		{"nil", nil, ""},
		{"stringer", stringerText{"<i>node</i>"}, "node"},
		{"text node map", map[string]any{"#text": "<b>mapped</b>"}, "mapped"},
		{"object without text", map[string]any{"href": "x"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.input, 0); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestStripHTMLCapsLength(t *testing.T) {
	got := StripHTML(strings.Repeat("é", 20), 10)
	if got != strings.Repeat("é", 10)+"..." {
		t.Errorf("Expected 10 runes plus ellipsis, got '%s'", got)
	}
}

func TestFormatAuthors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "unknown"},
		{", ,", "unknown"},
		{"Ada Lovelace", "Ada Lovelace"},
		{"A, B", "A & B"},
		{"A, B, C", "A, B & C"},
		{" A ,B,  C , D ", "A, B, C & D"},
	}

	for _, tt := range tests {
		if got := FormatAuthors(tt.input); got != tt.expected {
			t.Errorf("FormatAuthors(%q): expected '%s', got '%s'", tt.input, tt.expected, got)
		}
	}
}

func TestCleanAuthor(t *testing.T) {
	if got := CleanAuthor("  Jane \n Doe "); got != "Jane Doe" {
		t.Errorf("Expected 'Jane Doe', got '%s'", got)
	}
	if got := CleanAuthor("   "); got != UnknownAuthor {
		t.Errorf("Expected '%s', got '%s'", UnknownAuthor, got)
	}
}
