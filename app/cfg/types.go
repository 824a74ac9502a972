package cfg

import "time"

type SourceMode string

const (
	SourceModeRSS    SourceMode = "rss"
	SourceModeShared SourceMode = "shared"
)

type Cfg struct {
	// Source configuration
	SourceMode     SourceMode
	FeedURL        string
	SharedAPIBase  string
	SharedUserID   int64
	SharedFeedID   int64
	SharedUsername string
	SharedSecret   string
	ItemCount      int
	SourceLabel    string

	// Rule files
	CategoriesFile string
	AuthorsFile    string

	// Baseline configuration
	BaselineOverride      string
	BaselineFeedURL       string
	BaselineMarker        string
	BaselineBuffer        bool
	BaselineBufferMinutes int

	// Link tagging
	CampaignDomain string
	CampaignParam  string

	// Fetching
	Timeout   time.Duration
	UserAgent string

	// Host
	Output          string
	Serve           bool
	Port            string
	RefreshInterval int
	APIAccessKey    string

	Debug   bool
	Version string
}
