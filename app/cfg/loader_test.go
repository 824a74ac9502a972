package cfg

import (
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadArgsRSSMode(t *testing.T) {
	cfg, err := LoadArgs([]string{
		"--feed-url", "https://example.com/feed.xml",
		"--baseline-buffer",
		"--baseline-buffer-minutes", "15",
		"--timeout", "10",
	})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.SourceMode != SourceModeRSS {
		t.Errorf("Expected source mode 'rss', got '%s'", cfg.SourceMode)
	}
	if cfg.FeedURL != "https://example.com/feed.xml" {
		t.Errorf("Expected feed URL 'https://example.com/feed.xml', got '%s'", cfg.FeedURL)
	}
	if !cfg.BaselineBuffer || cfg.BaselineBufferMinutes != 15 {
		t.Errorf("Expected enabled 15 minute buffer, got %v/%d", cfg.BaselineBuffer, cfg.BaselineBufferMinutes)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Expected timeout 10s, got %v", cfg.Timeout)
	}
	if cfg.ItemCount != 50 {
		t.Errorf("Expected default item count 50, got %d", cfg.ItemCount)
	}
	if cfg.UserAgent == "" {
		t.Error("Expected default user agent to be set")
	}
}

func TestLoadArgsSharedModeRequiresBase(t *testing.T) {
	_, err := LoadArgs([]string{"--source-mode", "shared"})
	if err == nil {
		t.Error("Expected error when shared API base is missing")
	}
}

func TestLoadArgsRejectsUnknownMode(t *testing.T) {
	_, err := LoadArgs([]string{"--source-mode", "atom-only", "--feed-url", "https://example.com"})
	if err == nil {
		t.Error("Expected error for invalid source mode")
	}
}

func TestLoadArgsRejectsNegativeItemCount(t *testing.T) {
	_, err := LoadArgs([]string{"--feed-url", "https://example.com", "--item-count=-1"})
	if err == nil {
		t.Error("Expected error for negative item count")
	}
}
