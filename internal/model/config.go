package model

import "time"

// Config holds the complete answermirror configuration
type Config struct {
	Reddit      RedditConfig      `mapstructure:"reddit" yaml:"reddit"`
	Source      SourceConfig      `mapstructure:"source" yaml:"source"`
	Destination DestinationConfig `mapstructure:"destination" yaml:"destination"`
	Classifier  ClassifierConfig  `mapstructure:"classifier" yaml:"classifier"`
	Publish     PublishConfig     `mapstructure:"publish" yaml:"publish"`
	Poll        PollConfig        `mapstructure:"poll" yaml:"poll"`
	History     HistoryConfig     `mapstructure:"history" yaml:"history"`
	Remediation RemediationConfig `mapstructure:"remediation" yaml:"remediation"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
}

// RedditConfig holds API credentials and HTTP settings
type RedditConfig struct {
	ClientID     string        `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string        `mapstructure:"client_secret" yaml:"client_secret"`
	Username     string        `mapstructure:"username" yaml:"username"`
	Password     string        `mapstructure:"password" yaml:"password"`
	UserAgent    string        `mapstructure:"user_agent" yaml:"user_agent"`
	BaseURL      string        `mapstructure:"base_url" yaml:"base_url"`   // OAuth API host
	TokenURL     string        `mapstructure:"token_url" yaml:"token_url"` // Password-grant token endpoint
	WebURL       string        `mapstructure:"web_url" yaml:"web_url"`     // Prefix for permalinks
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	HTTPProxy    string        `mapstructure:"http_proxy" yaml:"http_proxy"`
	HTTPSProxy   string        `mapstructure:"https_proxy" yaml:"https_proxy"`

	// Client-side throttle; the API allows roughly one request per second per client
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `mapstructure:"burst" yaml:"burst"`
}

// SourceConfig selects the threads to monitor
type SourceConfig struct {
	Subreddit       string   `mapstructure:"subreddit" yaml:"subreddit"`
	HotLimit        int      `mapstructure:"hot_limit" yaml:"hot_limit"`
	MetaFlairs      []string `mapstructure:"meta_flairs" yaml:"meta_flairs"`
	MetaTitleMarker string   `mapstructure:"meta_title_marker" yaml:"meta_title_marker"`
}

// DestinationConfig selects where mirrored answers are posted
type DestinationConfig struct {
	Subreddit string `mapstructure:"subreddit" yaml:"subreddit"`
	DryRun    bool   `mapstructure:"dry_run" yaml:"dry_run"`
}

// ClassifierConfig holds the answer heuristics
type ClassifierConfig struct {
	MinChars          int           `mapstructure:"min_chars" yaml:"min_chars"`
	MinAge            time.Duration `mapstructure:"min_age" yaml:"min_age"`
	RemovedCheck      string        `mapstructure:"removed_check" yaml:"removed_check"` // length, marker, none
	RemovedBodyLength int           `mapstructure:"removed_body_length" yaml:"removed_body_length"`
}

// PublishConfig controls destination submissions
type PublishConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	RetryDelay   time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
	ExcerptChars int           `mapstructure:"excerpt_chars" yaml:"excerpt_chars"`
	TitleLimit   int           `mapstructure:"title_limit" yaml:"title_limit"`
}

// PollConfig controls the loop cadence
type PollConfig struct {
	// Schedule accepts any robfig/cron spec, including "@every 30m"
	Schedule string `mapstructure:"schedule" yaml:"schedule"`
}

// HistoryConfig selects the history backend
type HistoryConfig struct {
	Type string `mapstructure:"type" yaml:"type"` // json or sqlite
	Path string `mapstructure:"path" yaml:"path"`
}

// RemediationConfig controls what happens to vanished answers
type RemediationConfig struct {
	Handler           string        `mapstructure:"handler" yaml:"handler"` // log or discord
	DiscordWebhookURL string        `mapstructure:"discord_webhook_url" yaml:"discord_webhook_url"`
	ReportTTL         time.Duration `mapstructure:"report_ttl" yaml:"report_ttl"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // tint, text or json
	File   string `mapstructure:"file" yaml:"file"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Reddit: RedditConfig{
			UserAgent:         "answermirror/1.0 (by /u/answermirror)",
			BaseURL:           "https://oauth.reddit.com",
			TokenURL:          "https://www.reddit.com/api/v1/access_token",
			WebURL:            "https://www.reddit.com",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 1,
			Burst:             5,
		},
		Source: SourceConfig{
			Subreddit:       "askhistorians",
			HotLimit:        50,
			MetaFlairs:      []string{"meta", "feature"},
			MetaTitleMarker: "[meta]",
		},
		Destination: DestinationConfig{
			Subreddit: "answeredhistory",
		},
		Classifier: ClassifierConfig{
			MinChars:          300,
			MinAge:            30 * time.Minute,
			RemovedCheck:      "length",
			RemovedBodyLength: 9,
		},
		Publish: PublishConfig{
			MaxAttempts:  5,
			RetryDelay:   2 * time.Second,
			ExcerptChars: 200,
			TitleLimit:   300,
		},
		Poll: PollConfig{
			Schedule: "@every 30m",
		},
		History: HistoryConfig{
			Type: "json",
			Path: "history.json",
		},
		Remediation: RemediationConfig{
			Handler:   "log",
			ReportTTL: 24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "tint",
		},
	}
}
