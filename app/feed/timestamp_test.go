package feed

import (
	"testing"
	"time"
)

func TestParseInstantUnmarkedIsUTC(t *testing.T) {
	got, err := ParseInstant("2025-10-27 06:09:00.237000")
	if err != nil {
		t.Fatal(err)
	}

	want := time.Date(2025, 10, 27, 6, 9, 0, 237000000, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestParseInstantEpochSeconds(t *testing.T) {
	got, err := ParseInstant("1761545340")
	if err != nil {
		t.Fatal(err)
	}

	if got.Unix() != 1761545340 {
		t.Errorf("Expected epoch 1761545340, got %d", got.Unix())
	}
	if got.Location() != time.UTC {
		t.Errorf("Expected UTC location, got %v", got.Location())
	}
}

func TestParseInstantFeedFormats(t *testing.T) {
	want := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)

	for _, raw := range []string{
		"Mon, 03 Jul 2023 10:00:00 GMT",
		"Mon, 03 Jul 2023 12:00:00 +0200",
		"2023-07-03T10:00:00Z",
		"2023-07-03T06:00:00-04:00",
		"Mon, 03 Jul 2023 05:00:00 EST",
		"Mon, 03 Jul 2023 06:00:00 EDT",
		"Mon, 03 Jul 2023 03:00:00 PDT",
		"Mon, 03 Jul 2023 04:00:00 MDT",
	} {
		got, err := ParseInstant(raw)
		if err != nil {
			t.Errorf("Unexpected error for %q: %v", raw, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("Expected %v for %q, got %v", want, raw, got)
		}
	}
}

func TestParseInstantRejectsGarbage(t *testing.T) {
	if _, err := ParseInstant("not-a-date"); err == nil {
		t.Error("Expected error for 'not-a-date'")
	}
	if _, err := ParseInstant("   "); err != ErrEmptyTimestamp {
		t.Errorf("Expected ErrEmptyTimestamp, got %v", err)
	}
}

func TestNormalizeTimestamp(t *testing.T) {
	if got := NormalizeTimestamp("2025-10-27 06:09:00"); got != "2025-10-27T06:09:00Z" {
		t.Errorf("Expected '2025-10-27T06:09:00Z', got '%s'", got)
	}
	if got := NormalizeTimestamp(" not-a-date "); got != "not-a-date" {
		t.Errorf("Expected raw value to be kept, got '%s'", got)
	}
}
