package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultRefillCap    = 10
	defaultOpenAIModel  = "gpt-4o-mini"
	defaultSchedule     = "0 * * * *"
	defaultStorePath    = "reblogger.db"
	defaultUserAgent    = "Mozilla/5.0 (compatible; reblogger/1.0)"
	defaultFetchSeconds = 20
	defaultPostDelaySec = 15
)

// Run modes accepted by RUN_MODE.
const (
	ModeOnce = "once"
	ModeLoop = "loop"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	FeedURL   string
	RefillCap int

	OpenAIKey   string
	OpenAIModel string
	OpenAIBase  string

	BloggerClientID     string
	BloggerClientSecret string
	BloggerRefreshToken string
	BlogID              string

	Schedule  string
	RunMode   string
	StorePath string
	UserAgent string

	FetchTimeout time.Duration
	PostDelay    time.Duration
}

// Load reads environment variables, filling in defaults for everything except
// the feed URL and the credentials, which are required.
func Load() (Config, error) {
	cfg := Config{
		FeedURL:             os.Getenv("FEED_URL"),
		RefillCap:           intWithDefault("QUEUE_REFILL_CAP", defaultRefillCap),
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:         stringWithDefault("OPENAI_MODEL", defaultOpenAIModel),
		OpenAIBase:          os.Getenv("OPENAI_BASE_URL"),
		BloggerClientID:     os.Getenv("BLOGGER_CLIENT_ID"),
		BloggerClientSecret: os.Getenv("BLOGGER_CLIENT_SECRET"),
		BloggerRefreshToken: os.Getenv("BLOGGER_REFRESH_TOKEN"),
		BlogID:              os.Getenv("BLOG_ID"),
		Schedule:            stringWithDefault("SCHEDULE", defaultSchedule),
		RunMode:             stringWithDefault("RUN_MODE", ModeLoop),
		StorePath:           stringWithDefault("STORE_PATH", defaultStorePath),
		UserAgent:           stringWithDefault("HTTP_USER_AGENT", defaultUserAgent),
		FetchTimeout:        durationFromSeconds("FETCH_TIMEOUT_SECONDS", defaultFetchSeconds),
		PostDelay:           durationFromSeconds("POST_DELAY_SECONDS", defaultPostDelaySec),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first problem that must stop startup.
func (c Config) Validate() error {
	var missing []string
	if c.FeedURL == "" {
		missing = append(missing, "FEED_URL")
	}
	if c.OpenAIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.BloggerClientID == "" {
		missing = append(missing, "BLOGGER_CLIENT_ID")
	}
	if c.BloggerClientSecret == "" {
		missing = append(missing, "BLOGGER_CLIENT_SECRET")
	}
	if c.BloggerRefreshToken == "" {
		missing = append(missing, "BLOGGER_REFRESH_TOKEN")
	}
	if c.BlogID == "" {
		missing = append(missing, "BLOG_ID")
	}
	if len(missing) > 0 {
		return errors.New("missing required configuration: " + strings.Join(missing, ", "))
	}
	if c.RunMode != ModeOnce && c.RunMode != ModeLoop {
		return errors.New("RUN_MODE must be \"once\" or \"loop\", got " + strconv.Quote(c.RunMode))
	}
	return nil
}

func stringWithDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
		log.Printf("invalid %s=%s, using default %d", key, v, fallback)
	}
	return fallback
}

func durationFromSeconds(key string, fallback int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
		log.Printf("invalid %s=%s, using default %d seconds", key, v, fallback)
	}
	return time.Duration(fallback) * time.Second
}
