// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the process needs to run. Values come from
// LUNCHY_-prefixed environment variables, optionally seeded from a .env file.
type Config struct {
	// SlackToken authenticates the chat gateway.
	SlackToken string

	// FoursquareID and FoursquareSecret authenticate venue search.
	FoursquareID     string
	FoursquareSecret string

	// SearchNear is the fixed location venue searches are biased toward.
	SearchNear string
	// SearchLimit caps the candidate venues per search.
	SearchLimit int

	// DBPath is the sqlite database file for the restaurant roster.
	DBPath string

	// AnnounceChannel is the channel name scheduled picks are announced in.
	AnnounceChannel string
	// PickSchedule is a five-field cron expression for the weekly pick.
	PickSchedule string

	// SessionTTL is the conversation inactivity timeout.
	SessionTTL time.Duration

	// AutoReconnect keeps the RTM stream alive after disconnects.
	AutoReconnect bool
	// AutoMark marks handled messages as read.
	AutoMark bool

	// Debug enables debug logging.
	Debug bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LUNCHY")
	v.AutomaticEnv()

	v.SetDefault("search_near", "440 Lafayette St. 10003")
	v.SetDefault("search_limit", 5)
	v.SetDefault("db_path", "lunchy.db")
	v.SetDefault("announce_channel", "lunch")
	v.SetDefault("pick_schedule", "0 12 * * 5")
	v.SetDefault("session_ttl", 5*time.Minute)
	v.SetDefault("auto_reconnect", true)
	v.SetDefault("auto_mark", true)
	v.SetDefault("debug", false)

	cfg := &Config{
		SlackToken:       v.GetString("slack_token"),
		FoursquareID:     v.GetString("foursquare_id"),
		FoursquareSecret: v.GetString("foursquare_secret"),
		SearchNear:       v.GetString("search_near"),
		SearchLimit:      v.GetInt("search_limit"),
		DBPath:           v.GetString("db_path"),
		AnnounceChannel:  v.GetString("announce_channel"),
		PickSchedule:     v.GetString("pick_schedule"),
		SessionTTL:       v.GetDuration("session_ttl"),
		AutoReconnect:    v.GetBool("auto_reconnect"),
		AutoMark:         v.GetBool("auto_mark"),
		Debug:            v.GetBool("debug"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.SlackToken == "" {
		return fmt.Errorf("LUNCHY_SLACK_TOKEN is required")
	}
	if c.FoursquareID == "" {
		return fmt.Errorf("LUNCHY_FOURSQUARE_ID is required")
	}
	if c.FoursquareSecret == "" {
		return fmt.Errorf("LUNCHY_FOURSQUARE_SECRET is required")
	}
	if c.SearchLimit < 1 {
		return fmt.Errorf("LUNCHY_SEARCH_LIMIT must be at least 1")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("LUNCHY_SESSION_TTL must be positive")
	}
	return nil
}
