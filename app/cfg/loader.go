package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"news_digest.db" description:"Path to the SQLite database file"`

	// Pipeline configuration
	SourcesFile         string `long:"sources-file" env:"SOURCES_FILE" default:"sources.yml" description:"YAML file listing feed sources"`
	UpdateIntervalHours int    `long:"update-interval" env:"UPDATE_INTERVAL_HOURS" default:"2" description:"Hours between ingestion cycles"`
	MaxItemsPerDigest   int    `long:"max-items" env:"MAX_ITEMS_PER_DIGEST" default:"10" description:"Maximum number of items per delivered digest"`
	RetentionDays       int    `long:"retention-days" env:"RETENTION_DAYS" default:"30" description:"Days to keep sent items before cleanup"`
	FetchTimeout        int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Feed fetch timeout in seconds"`

	// Delivery configuration. Left optional here: commands that never send
	// (show-stats, cleanup) must not demand credentials, and the transport
	// reports missing ones as an auth error when a send is attempted.
	TelegramBotToken string `long:"telegram-bot-token" env:"TELEGRAM_BOT_TOKEN" description:"Telegram bot token used to deliver digests"`
	TelegramChatID   string `long:"telegram-chat-id" env:"TELEGRAM_CHAT_ID" description:"Telegram chat ID of the digest recipient"`

	// Status API configuration
	Port string `long:"port" env:"PORT" default:"8080" description:"HTTP status server port"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"News Digest/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses configuration from command-line flags and environment
// variables. The remaining positional arguments (the CLI command) are
// returned alongside the configuration. A nil Cfg with a nil error means
// help output was requested and printed.
func Load() (*Cfg, []string, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	args, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil, nil
			}
		}
		return nil, nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:              raw.DBPath,
		SourcesFile:         raw.SourcesFile,
		UpdateIntervalHours: raw.UpdateIntervalHours,
		MaxItemsPerDigest:   raw.MaxItemsPerDigest,
		RetentionDays:       raw.RetentionDays,
		FetchTimeout:        raw.FetchTimeout,
		TelegramBotToken:    raw.TelegramBotToken,
		TelegramChatID:      raw.TelegramChatID,
		Port:                raw.Port,
		UserAgent:           raw.UserAgent,
		Timezone:            raw.Timezone,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, args, nil
}

func applyTimezone(timezone string) error {
	if timezone == "" {
		return nil
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}
	time.Local = loc

	return nil
}
