package feed

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	ErrEmptyTimestamp = errors.New("empty timestamp")

	epochPattern = regexp.MustCompile(`^\d+$`)
	zonePattern  = regexp.MustCompile(`\s([ECMP][SD]T)$`)

	// dateparse reads these as UTC, so they are rewritten to numeric offsets.
	zoneOffsets = map[string]string{
		"EST": "-0500", "EDT": "-0400",
		"CST": "-0600", "CDT": "-0500",
		"MST": "-0700", "MDT": "-0600",
		"PST": "-0800", "PDT": "-0700",
	}
)

// ParseInstant parses the timestamp renderings produced by both sources.
// All-digit strings are Unix epoch seconds; strings without a zone are UTC.
func ParseInstant(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrEmptyTimestamp
	}

	if epochPattern.MatchString(raw) {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse epoch timestamp %q: %w", raw, err)
		}
		return time.Unix(secs, 0).UTC(), nil
	}

	t, err := dateparse.ParseIn(withNumericZone(raw), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", raw, err)
	}
	return t.UTC(), nil
}

func withNumericZone(raw string) string {
	m := zonePattern.FindStringSubmatchIndex(raw)
	if m == nil {
		return raw
	}
	return raw[:m[2]] + zoneOffsets[raw[m[2]:m[3]]]
}

// NormalizeTimestamp renders a parseable timestamp as RFC 3339 UTC and keeps
// anything else as the source delivered it.
func NormalizeTimestamp(raw string) string {
	t, err := ParseInstant(raw)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return t.Format(time.RFC3339Nano)
}
