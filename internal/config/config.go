// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env.
// - External errors are wrapped via this package's error helpers.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8090".
	Addr string `koanf:"addr"`

	// FeedBaseURL is the upstream play-by-play provider.
	FeedBaseURL string `koanf:"feed_base_url"`

	// FeedAPIKey authenticates against the feed provider.
	FeedAPIKey string `koanf:"feed_api_key"`

	// FeedCacheTTLSeconds bounds repeat requests for the same feed data.
	FeedCacheTTLSeconds int `koanf:"feed_cache_ttl_seconds"`

	// PollIntervalSeconds is the live-game polling cadence.
	PollIntervalSeconds int `koanf:"poll_interval_seconds"`

	// IdlePollIntervalSeconds is the cadence while no game is live.
	IdlePollIntervalSeconds int `koanf:"idle_poll_interval_seconds"`

	// PostgameGraceSeconds keeps a finished game's runner alive before
	// deregistering it.
	PostgameGraceSeconds int `koanf:"postgame_grace_seconds"`

	// QueueSize bounds each game runner's play queue.
	QueueSize int `koanf:"queue_size"`

	// HistoryDir is where per-game history records are persisted.
	HistoryDir string `koanf:"history_dir"`

	// RewriteURL points at the optional stylistic rewrite collaborator.
	// Empty disables rewriting.
	RewriteURL string `koanf:"rewrite_url"`

	// RewriteTimeoutMS is the hard per-call rewrite budget.
	RewriteTimeoutMS int `koanf:"rewrite_timeout_ms"`

	// MinLeadAnnounce suppresses largest-lead commentary below this margin.
	MinLeadAnnounce int `koanf:"min_lead_announce"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":8090",
		FeedBaseURL:             "https://api.balldontlie.io/v1",
		FeedCacheTTLSeconds:     5,
		PollIntervalSeconds:     30,
		IdlePollIntervalSeconds: 60,
		PostgameGraceSeconds:    300,
		QueueSize:               2048,
		HistoryDir:              "cache/live_history",
		RewriteTimeoutMS:        2000,
		MinLeadAnnounce:         5,
	}
}
