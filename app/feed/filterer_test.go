package feed

import (
	"testing"
	"time"
)

func TestDateFilterRun(t *testing.T) {
	cutoff := time.Date(2025, 10, 27, 6, 0, 0, 0, time.UTC)
	filter := NewDateFilter(cutoff)

	posts := []Post{
		{Link: "https://example.com/newer", PublishedAt: "2025-10-27T07:00:00Z"},
		{Link: "https://example.com/equal", PublishedAt: "2025-10-27T06:00:00Z"},
		{Link: "https://example.com/older", PublishedAt: "2025-10-26T23:00:00Z"},
		{Link: "https://example.com/garbage", PublishedAt: "not-a-date"},
		{Link: "https://example.com/empty", PublishedAt: ""},
		{Link: "https://example.com/future", PublishedAt: "2099-01-01T00:00:00Z"},
	}

	result := filter.Run(posts)

	expected := []string{
		"https://example.com/newer",
		"https://example.com/garbage",
		"https://example.com/future",
	}
	if len(result) != len(expected) {
		t.Fatalf("Expected %d posts, got %d: %v", len(expected), len(result), result)
	}
	for i, link := range expected {
		if result[i].Link != link {
			t.Errorf("Expected post %d to be '%s', got '%s'", i, link, result[i].Link)
		}
	}
}

func TestDateFilterUnmarkedTimestampIsUTC(t *testing.T) {
	// 06:09 UTC is after a 06:00 UTC cutoff regardless of the local zone.
	filter := NewDateFilter(time.Date(2025, 10, 27, 6, 0, 0, 0, time.UTC))
	if !filter.Keep(Post{PublishedAt: "2025-10-27 06:09:00.237000"}) {
		t.Error("Expected unmarked timestamp to be compared as UTC and kept")
	}

	filter = NewDateFilter(time.Date(2025, 10, 27, 6, 10, 0, 0, time.UTC))
	if filter.Keep(Post{PublishedAt: "2025-10-27 06:09:00.237000"}) {
		t.Error("Expected unmarked timestamp to be compared as UTC and dropped")
	}
}

func TestDedupe(t *testing.T) {
	posts := []Post{
		{Title: "First", Link: "https://example.com/a"},
		{Title: "Other", Link: "https://example.com/b"},
		{Title: "Second", Link: "https://example.com/a"},
	}

	result := Dedupe(posts)

	if len(result) != 2 {
		t.Fatalf("Expected 2 posts, got %d", len(result))
	}
	if result[0].Title != "First" {
		t.Errorf("Expected first occurrence to win, got '%s'", result[0].Title)
	}
	if result[1].Link != "https://example.com/b" {
		t.Errorf("Expected order to be preserved, got '%s'", result[1].Link)
	}
}
