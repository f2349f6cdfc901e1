// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DefaultUserAgent matches a current desktop Chrome build. Both target sites
// serve a degraded page to obviously non-browser agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Config struct {
	// MinRating is the lowest rating a scraped product may have and still be
	// kept in a result set.
	MinRating float64
	// MaxItems caps how many products a single listing fetch returns.
	MaxItems int
	// ListingCacheTTL is the freshness window for cached listing results.
	ListingCacheTTL time.Duration
	// SearchCacheTTL is the freshness window for cached search lookups.
	// Zero disables search caching entirely.
	SearchCacheTTL time.Duration

	UserAgent string

	// FanzaListURL is the listing page all sale queries are built on.
	FanzaListURL string
	// FanzaHost is the canonical host relative detail/profile paths are
	// rewritten against.
	FanzaHost string
	// MissAVHost is the base of the secondary search site.
	MissAVHost string

	LogLevel logrus.Level
}

// Load reads the environment, after merging in a .env file when one exists.
func Load() Config {
	// Missing .env is the normal case outside development.
	_ = godotenv.Load()

	return Config{
		MinRating:       envFloat("MIN_RATING", 4.0),
		MaxItems:        envInt("MAX_ITEMS", 50),
		ListingCacheTTL: envSeconds("CACHE_DURATION", time.Hour),
		SearchCacheTTL:  envSeconds("SEARCH_CACHE_DURATION", 0),
		UserAgent:       envString("USER_AGENT", DefaultUserAgent),
		FanzaListURL:    envString("FANZA_BASE_URL", "https://video.dmm.co.jp/av/list/"),
		FanzaHost:       envString("FANZA_HOST", "https://www.dmm.co.jp"),
		MissAVHost:      envString("MISSAV_HOST", "https://missav123.com"),
		LogLevel:        envLevel("LOG_LEVEL", logrus.InfoLevel),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		logrus.WithField("key", key).Warn("ignoring unparsable float in environment")
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		logrus.WithField("key", key).Warn("ignoring unparsable int in environment")
	}
	return fallback
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
		logrus.WithField("key", key).Warn("ignoring unparsable duration in environment")
	}
	return fallback
}

func envLevel(key string, fallback logrus.Level) logrus.Level {
	if v := os.Getenv(key); v != "" {
		if lvl, err := logrus.ParseLevel(v); err == nil {
			return lvl
		}
	}
	return fallback
}
