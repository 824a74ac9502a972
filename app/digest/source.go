package digest

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/lysyi3m/feed-digest/app/cfg"
	"github.com/lysyi3m/feed-digest/app/fetch"
	"github.com/lysyi3m/feed-digest/app/feed"
)

const limitParam = "limit"

// Source pairs the upstream request with the parser that understands its
// payload.
type Source struct {
	Request fetch.Request
	Parser  feed.Parser
	Label   string
}

func RSSSource(feedURL string, itemCount int, label string) (Source, error) {
	target, err := withLimit(feedURL, itemCount)
	if err != nil {
		return Source{}, err
	}

	return Source{
		Request: fetch.Request{URL: target, Accept: "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8"},
		Parser:  feed.NewRSSParser(),
		Label:   labelFor(label, target),
	}, nil
}

// SharedSource targets {base}/{userID}/{feedID} with basic auth.
func SharedSource(apiBase string, userID, feedID int64, username, secret string, itemCount int, label string) (Source, error) {
	base, err := url.Parse(apiBase)
	if err != nil {
		return Source{}, fmt.Errorf("failed to parse shared API base: %w", err)
	}

	endpoint := base.JoinPath(strconv.FormatInt(userID, 10), strconv.FormatInt(feedID, 10)).String()
	target, err := withLimit(endpoint, itemCount)
	if err != nil {
		return Source{}, err
	}

	return Source{
		Request: fetch.Request{URL: target, Username: username, Password: secret, Accept: "application/json"},
		Parser:  feed.NewSharedParser(),
		Label:   labelFor(label, target),
	}, nil
}

func SourceFromConfig(c *cfg.Cfg) (Source, error) {
	switch c.SourceMode {
	case cfg.SourceModeShared:
		return SharedSource(c.SharedAPIBase, c.SharedUserID, c.SharedFeedID, c.SharedUsername, c.SharedSecret, c.ItemCount, c.SourceLabel)
	case cfg.SourceModeRSS:
		return RSSSource(c.FeedURL, c.ItemCount, c.SourceLabel)
	default:
		return Source{}, fmt.Errorf("unknown source mode: %s", c.SourceMode)
	}
}

func withLimit(raw string, itemCount int) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse source URL: %w", err)
	}
	if itemCount > 0 {
		query := u.Query()
		query.Set(limitParam, strconv.Itoa(itemCount))
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

func labelFor(label, target string) string {
	if label != "" {
		return label
	}
	if u, err := url.Parse(target); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return target
}
