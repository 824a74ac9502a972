package cfg

import (
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// Version is set at build time via -ldflags
var Version = "dev"

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

func GetVersion() string {
	return lo.CoalesceOrEmpty(Version, "unknown")
}

type rawCfg struct {
	// Source configuration
	SourceMode     string `long:"source-mode" env:"SOURCE_MODE" default:"rss" choice:"rss" choice:"shared" description:"Feed source to ingest"`
	FeedURL        string `long:"feed-url" env:"FEED_URL" description:"RSS/Atom feed URL (rss mode)"`
	SharedAPIBase  string `long:"shared-api-base" env:"SHARED_API_BASE" description:"Shared-items API base URL (shared mode)"`
	SharedUserID   int64  `long:"shared-user-id" env:"SHARED_USER_ID" description:"Shared-items account user ID"`
	SharedFeedID   int64  `long:"shared-feed-id" env:"SHARED_FEED_ID" description:"Shared-items account feed ID"`
	SharedUsername string `long:"shared-username" env:"SHARED_USERNAME" description:"Shared-items API username"`
	SharedSecret   string `long:"shared-secret" env:"SHARED_SECRET" description:"Shared-items API secret"`
	ItemCount      int    `long:"item-count" env:"ITEM_COUNT" default:"50" description:"Number of items requested from the source"`
	SourceLabel    string `long:"source-label" env:"SOURCE_LABEL" description:"Label attached to every post (defaults to the source host)"`

	// Rule files
	CategoriesFile string `long:"categories-file" env:"CATEGORIES_FILE" default:"./config/categories.json" description:"Category rules (JSON or YAML)"`
	AuthorsFile    string `long:"authors-file" env:"AUTHORS_FILE" default:"./config/authors.json" description:"Author mapping rules (JSON or YAML)"`

	// Baseline configuration
	BaselineOverride      string `long:"baseline-override" env:"BASELINE_OVERRIDE" description:"Explicit cutoff timestamp"`
	BaselineFeedURL       string `long:"baseline-feed-url" env:"BASELINE_FEED_URL" description:"Reference feed used to resolve the cutoff"`
	BaselineMarker        string `long:"baseline-marker" env:"BASELINE_MARKER" default:"Weekly Digest" description:"Title prefix of reference posts"`
	BaselineBuffer        bool   `long:"baseline-buffer" env:"BASELINE_BUFFER" description:"Add a buffer to the resolved cutoff"`
	BaselineBufferMinutes int    `long:"baseline-buffer-minutes" env:"BASELINE_BUFFER_MINUTES" default:"0" description:"Buffer size in minutes"`

	// Link tagging
	CampaignDomain string `long:"campaign-domain" env:"CAMPAIGN_DOMAIN" description:"Publisher domain whose links get a campaign parameter"`
	CampaignParam  string `long:"campaign-param" env:"CAMPAIGN_PARAM" default:"utm_campaign" description:"Campaign query parameter name"`

	// Fetching
	Timeout   int    `long:"timeout" env:"FETCH_TIMEOUT" default:"30" description:"Per-refresh fetch timeout in seconds"`
	UserAgent string `long:"user-agent" env:"USER_AGENT" description:"User agent string for HTTP requests"`

	// Host
	Output          string `long:"output" env:"OUTPUT" default:"json" choice:"json" choice:"tree" description:"One-shot output format"`
	Serve           bool   `long:"serve" env:"SERVE" description:"Run the HTTP API with a periodic refresh instead of a one-shot refresh"`
	Port            string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	RefreshInterval int    `long:"refresh-interval" env:"REFRESH_INTERVAL" default:"900" description:"Refresh interval in seconds (serve mode)"`
	APIAccessKey    string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load reads .env (when present), environment variables and command-line flags.
// It returns nil, nil when help was requested.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	_ = godotenv.Load()

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		SourceMode:            SourceMode(raw.SourceMode),
		FeedURL:               raw.FeedURL,
		SharedAPIBase:         raw.SharedAPIBase,
		SharedUserID:          raw.SharedUserID,
		SharedFeedID:          raw.SharedFeedID,
		SharedUsername:        raw.SharedUsername,
		SharedSecret:          raw.SharedSecret,
		ItemCount:             raw.ItemCount,
		SourceLabel:           raw.SourceLabel,
		CategoriesFile:        raw.CategoriesFile,
		AuthorsFile:           raw.AuthorsFile,
		BaselineOverride:      raw.BaselineOverride,
		BaselineFeedURL:       raw.BaselineFeedURL,
		BaselineMarker:        raw.BaselineMarker,
		BaselineBuffer:        raw.BaselineBuffer,
		BaselineBufferMinutes: raw.BaselineBufferMinutes,
		CampaignDomain:        raw.CampaignDomain,
		CampaignParam:         raw.CampaignParam,
		Timeout:               time.Duration(raw.Timeout) * time.Second,
		UserAgent:             lo.CoalesceOrEmpty(raw.UserAgent, defaultUserAgent),
		Output:                raw.Output,
		Serve:                 raw.Serve,
		Port:                  raw.Port,
		RefreshInterval:       raw.RefreshInterval,
		APIAccessKey:          raw.APIAccessKey,
		Debug:                 raw.Debug,
		Version:               GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Cfg) error {
	switch cfg.SourceMode {
	case SourceModeRSS:
		if cfg.FeedURL == "" {
			return fmt.Errorf("feed URL is required in %s mode", cfg.SourceMode)
		}
	case SourceModeShared:
		if cfg.SharedAPIBase == "" {
			return fmt.Errorf("shared API base is required in %s mode", cfg.SourceMode)
		}
	}

	nonNegativeFields := map[string]int{
		"item count":              cfg.ItemCount,
		"baseline buffer minutes": cfg.BaselineBufferMinutes,
		"refresh interval":        cfg.RefreshInterval,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return nil
}
