package config

import (
	"os"
	"strconv"
)

const DefaultPlaceholderAudioURL = "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3"

type ConfigStruct struct {
	Options   Options
	Catalog   CatalogConfig
	RateLimit RateLimitConfig
	History   HistoryConfig
	Sentry    SentryConfig
}

type Options struct {
	Port     string
	LogLevel string
	GinMode  string
}

type CatalogConfig struct {
	// Path to an optional TOML file merged over the built-in catalog
	Path                string
	PlaceholderAudioURL string
	PlaceholderDuration int // seconds
}

type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

type HistoryConfig struct {
	DBPath string
	Limit  int
}

type SentryConfig struct {
	DSN         string
	Environment string
	Release     string
}

func (h *HistoryConfig) IsEnabled() bool {
	return h.DBPath != ""
}

func (s *SentryConfig) IsEnabled() bool {
	return s.DSN != ""
}

// NewConfig reads the environment once. The result is meant to be passed
// by reference and never modified after startup.
func NewConfig() *ConfigStruct {
	return &ConfigStruct{
		Options: Options{
			Port:     getPort(),
			LogLevel: getString("LOG_LEVEL", "info"),
			GinMode:  getString("GIN_MODE", "release"),
		},
		Catalog: CatalogConfig{
			Path:                os.Getenv("CATALOG_PATH"),
			PlaceholderAudioURL: getString("PLACEHOLDER_AUDIO_URL", DefaultPlaceholderAudioURL),
			PlaceholderDuration: getPlaceholderDuration(),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getRateLimit(),
			Burst:             getRateBurst(),
		},
		History: HistoryConfig{
			DBPath: os.Getenv("HISTORY_DB_PATH"),
			Limit:  getHistoryLimit(),
		},
		Sentry: SentryConfig{
			DSN:         os.Getenv("SENTRY_DSN"),
			Environment: getString("SENTRY_ENVIRONMENT", "development"),
			Release:     os.Getenv("RELEASE"),
		},
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getPort() string {
	port := os.Getenv("PORT")
	if port == "" {
		return "8080"
	}
	n, err := strconv.Atoi(port)
	if err != nil || n <= 0 || n > 65535 {
		return "8080"
	}
	return port
}

func getPlaceholderDuration() int {
	durationStr := os.Getenv("PLACEHOLDER_DURATION")
	if durationStr == "" {
		return 180
	}
	duration, err := strconv.Atoi(durationStr)
	if err != nil || duration <= 0 {
		return 180
	}
	return duration
}

func getRateLimit() int {
	limitStr := os.Getenv("RATE_LIMIT_RPS")
	if limitStr == "" {
		return 20
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return 20
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func getRateBurst() int {
	burstStr := os.Getenv("RATE_LIMIT_BURST")
	if burstStr == "" {
		return 40
	}
	burst, err := strconv.Atoi(burstStr)
	if err != nil || burst <= 0 {
		return 40
	}
	if burst > 2000 {
		return 2000
	}
	return burst
}

func getHistoryLimit() int {
	limitStr := os.Getenv("HISTORY_LIMIT")
	if limitStr == "" {
		return 20
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100 // Cap at 100, the history table is an audit log, not a feed
	}
	return limit
}
