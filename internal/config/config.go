// Package config handles application configuration from environment
// variables and an optional YAML feeds file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"newsbot/internal/model"
)

// Defaults applied when the corresponding setting is absent.
const (
	defaultDatabasePath    = "./data/bot.db"
	defaultLogLevel        = "info"
	defaultFetchTimeout    = 10 * time.Second
	defaultMaxPerFeed      = 10
	defaultDigestMaxItems  = 20
	defaultPageSize        = 5
	defaultDailyTime       = "09:00"
	defaultRateLimitCalls  = 5
	defaultRateLimitWindow = 30 * time.Second
	defaultRetentionDays   = 30
	defaultSemanticCutoff  = 0.30
	defaultEmbeddingModel  = "text-embedding-3-small"
)

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	DatabasePath     string
	LogLevel         string

	Sources         []model.Source
	FetchTimeout    time.Duration
	MaxPerFeed      int
	DigestMaxItems  int
	PageSize        int
	DailyHour       int
	DailyMinute     int
	RateLimitCalls  int
	RateLimitWindow time.Duration
	RetentionDays   int

	SemanticEnabled bool
	SemanticCutoff  float64
	OpenAIAPIKey    string
	EmbeddingModel  string
}

// feedsFile is the YAML document loaded from FEEDS_CONFIG.
type feedsFile struct {
	Sources []struct {
		Name string `yaml:"name"`
		URL  string `yaml:"url"`
	} `yaml:"sources"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	cfg := &Config{
		TelegramBotToken: token,
		DatabasePath:     envOr("DATABASE_PATH", defaultDatabasePath),
		LogLevel:         envOr("LOG_LEVEL", defaultLogLevel),
		Sources:          DefaultSources(),
		FetchTimeout:     defaultFetchTimeout,
		MaxPerFeed:       defaultMaxPerFeed,
		DigestMaxItems:   defaultDigestMaxItems,
		PageSize:         defaultPageSize,
		RateLimitCalls:   defaultRateLimitCalls,
		RateLimitWindow:  defaultRateLimitWindow,
		RetentionDays:    defaultRetentionDays,
		SemanticCutoff:   defaultSemanticCutoff,
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel:   envOr("EMBEDDING_MODEL", defaultEmbeddingModel),
	}

	var err error
	if cfg.DailyHour, cfg.DailyMinute, err = parseDailyTime(envOr("DAILY_TIME", defaultDailyTime)); err != nil {
		return nil, err
	}
	if err := intFromEnv("FETCH_TIMEOUT_SECONDS", func(v int) { cfg.FetchTimeout = time.Duration(v) * time.Second }); err != nil {
		return nil, err
	}
	if err := intFromEnv("MAX_PER_FEED", func(v int) { cfg.MaxPerFeed = v }); err != nil {
		return nil, err
	}
	if err := intFromEnv("DIGEST_MAX_ITEMS", func(v int) { cfg.DigestMaxItems = v }); err != nil {
		return nil, err
	}
	if err := intFromEnv("PAGE_SIZE", func(v int) { cfg.PageSize = v }); err != nil {
		return nil, err
	}
	if err := intFromEnv("RATE_LIMIT_CALLS", func(v int) { cfg.RateLimitCalls = v }); err != nil {
		return nil, err
	}
	if err := intFromEnv("RATE_LIMIT_WINDOW_SECONDS", func(v int) { cfg.RateLimitWindow = time.Duration(v) * time.Second }); err != nil {
		return nil, err
	}
	if err := intFromEnv("SENT_RETENTION_DAYS", func(v int) { cfg.RetentionDays = v }); err != nil {
		return nil, err
	}

	if raw := os.Getenv("SEMANTIC_ENABLED"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SEMANTIC_ENABLED %q: %w", raw, err)
		}
		cfg.SemanticEnabled = enabled
	}
	if raw := os.Getenv("SEMANTIC_THRESHOLD"); raw != "" {
		cutoff, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SEMANTIC_THRESHOLD %q: %w", raw, err)
		}
		cfg.SemanticCutoff = cutoff
	}

	if path := os.Getenv("FEEDS_CONFIG"); path != "" {
		sources, err := loadFeedsFile(path)
		if err != nil {
			return nil, err
		}
		if len(sources) > 0 {
			cfg.Sources = sources
		}
	}

	return cfg, nil
}

// DefaultSources returns the built-in feed list used when no FEEDS_CONFIG
// file is provided.
func DefaultSources() []model.Source {
	return []model.Source{
		{Name: "IEEE Spectrum", URL: "https://spectrum.ieee.org/feed"},
		{Name: "MIT Technology Review", URL: "https://www.technologyreview.com/feed/"},
		{Name: "Phys.org", URL: "https://phys.org/rss-feed/"},
		{Name: "Automation World", URL: "https://www.automationworld.com/rss"},
		{Name: "Rinnovabili", URL: "https://www.rinnovabili.it/feed/"},
	}
}

func loadFeedsFile(path string) ([]model.Source, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("read feeds config: %w", err)
	}
	var f feedsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse feeds config: %w", err)
	}
	var sources []model.Source
	for _, s := range f.Sources {
		if s.URL == "" {
			return nil, fmt.Errorf("source %q in feeds config has no url", s.Name)
		}
		name := s.Name
		if name == "" {
			name = s.URL
		}
		sources = append(sources, model.Source{Name: name, URL: s.URL})
	}
	return sources, nil
}

func parseDailyTime(raw string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid DAILY_TIME %q, expected HH:MM: %w", raw, err)
	}
	return t.Hour(), t.Minute(), nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intFromEnv(key string, assign func(int)) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fmt.Errorf("invalid %s %q: expected a positive integer", key, raw)
	}
	assign(v)
	return nil
}
