package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunchybot/lunchy/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("LUNCHY_SLACK_TOKEN", "xoxb-test")
	t.Setenv("LUNCHY_FOURSQUARE_ID", "fsq-id")
	t.Setenv("LUNCHY_FOURSQUARE_SECRET", "fsq-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "xoxb-test", cfg.SlackToken)
	assert.Equal(t, "440 Lafayette St. 10003", cfg.SearchNear)
	assert.Equal(t, 5, cfg.SearchLimit)
	assert.Equal(t, "lunchy.db", cfg.DBPath)
	assert.Equal(t, "lunch", cfg.AnnounceChannel)
	assert.Equal(t, "0 12 * * 5", cfg.PickSchedule)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.AutoReconnect)
	assert.True(t, cfg.AutoMark)
	assert.False(t, cfg.Debug)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("LUNCHY_SEARCH_NEAR", "1 Main St 94105")
	t.Setenv("LUNCHY_SEARCH_LIMIT", "3")
	t.Setenv("LUNCHY_ANNOUNCE_CHANNEL", "food")
	t.Setenv("LUNCHY_SESSION_TTL", "90s")
	t.Setenv("LUNCHY_AUTO_MARK", "false")
	t.Setenv("LUNCHY_DEBUG", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "1 Main St 94105", cfg.SearchNear)
	assert.Equal(t, 3, cfg.SearchLimit)
	assert.Equal(t, "food", cfg.AnnounceChannel)
	assert.Equal(t, 90*time.Second, cfg.SessionTTL)
	assert.False(t, cfg.AutoMark)
	assert.True(t, cfg.Debug)
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name string
		omit string
	}{
		{"slack token", "LUNCHY_SLACK_TOKEN"},
		{"foursquare id", "LUNCHY_FOURSQUARE_ID"},
		{"foursquare secret", "LUNCHY_FOURSQUARE_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.omit, "")

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.omit)
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	setRequired(t)
	t.Setenv("LUNCHY_SEARCH_LIMIT", "0")

	_, err := config.Load()
	require.Error(t, err)
}
