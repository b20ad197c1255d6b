package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("FEED_URL", "https://example.com/feed.xml")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("BLOGGER_CLIENT_ID", "cid")
	t.Setenv("BLOGGER_CLIENT_SECRET", "secret")
	t.Setenv("BLOGGER_REFRESH_TOKEN", "refresh")
	t.Setenv("BLOG_ID", "12345")
}

func TestLoad_DefaultsApplied(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.RefillCap)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, "0 * * * *", cfg.Schedule)
	assert.Equal(t, ModeLoop, cfg.RunMode)
	assert.Equal(t, "reblogger.db", cfg.StorePath)
	assert.Equal(t, 20*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 15*time.Second, cfg.PostDelay)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("QUEUE_REFILL_CAP", "3")
	t.Setenv("RUN_MODE", "once")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.RefillCap)
	assert.Equal(t, ModeOnce, cfg.RunMode)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	setRequired(t)
	t.Setenv("QUEUE_REFILL_CAP", "not-a-number")
	t.Setenv("POST_DELAY_SECONDS", "-4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.RefillCap)
	assert.Equal(t, 15*time.Second, cfg.PostDelay)
}

func TestLoad_MissingCredentialsIsFatal(t *testing.T) {
	setRequired(t)
	t.Setenv("BLOGGER_REFRESH_TOKEN", "")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	assert.Contains(t, err.Error(), "BLOGGER_REFRESH_TOKEN")
}

func TestLoad_MissingFeedURLIsFatal(t *testing.T) {
	setRequired(t)
	t.Setenv("FEED_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FEED_URL")
}

func TestLoad_RejectsUnknownRunMode(t *testing.T) {
	setRequired(t)
	t.Setenv("RUN_MODE", "forever")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RUN_MODE")
}
