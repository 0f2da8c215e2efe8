package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Queue       QueueConfig     `toml:"queue"`
	Analysis    AnalysisConfig  `toml:"analysis"`
	MarketData  MarketConfig    `toml:"marketdata"`
	Forum       ForumConfig     `toml:"forum"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Logging     LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type QueueConfig struct {
	PollInterval      string `toml:"poll_interval"`      // e.g. "1s" - how often workers poll for messages
	Concurrency       int    `toml:"concurrency"`        // Number of concurrent workers
	VisibilityTimeout string `toml:"visibility_timeout"` // e.g. "5m" - message redelivery timeout
	MaxReceive        int    `toml:"max_receive"`        // Max receives before a message is dropped
	QueueName         string `toml:"queue_name"`         // Queue key prefix in Badger
}

// AnalysisConfig holds the tunable knobs of the analysis pipelines.
type AnalysisConfig struct {
	CacheWindowHours int     `toml:"cache_window_hours"` // Result freshness window (default 1)
	HorizonDays      int     `toml:"horizon_days"`       // Forecast horizon (default 30)
	ArimaWeight      float64 `toml:"arima_weight"`       // Ensemble weight for the ARIMA leg (default 0.4)
	LSTMWeight       float64 `toml:"lstm_weight"`        // Ensemble weight for the LSTM leg (default 0.4)
	SentimentWeight  float64 `toml:"sentiment_weight"`   // Ensemble sentiment coefficient (default 0.2)
	SimpleThreshold  float64 `toml:"simple_threshold"`   // Simple-pipeline |sentiment| gate (default 0.1)
	SimpleCoeff      float64 `toml:"simple_coeff"`       // Simple-pipeline adjustment coefficient (default 0.5)
}

// CacheWindow returns the freshness window as a duration.
func (a AnalysisConfig) CacheWindow() time.Duration {
	hours := a.CacheWindowHours
	if hours <= 0 {
		hours = 1
	}
	return time.Duration(hours) * time.Hour
}

type MarketConfig struct {
	HistoryYears   int    `toml:"history_years"`   // Years of daily history to fetch (default 5)
	RequestTimeout string `toml:"request_timeout"` // HTTP timeout, e.g. "30s"
}

type ForumConfig struct {
	BaseURL        string `toml:"base_url"`        // Forum API base URL
	UserAgent      string `toml:"user_agent"`      // User agent sent with every request
	PostLimit      int    `toml:"post_limit"`      // Posts fetched per ticker (default 25)
	CommentLimit   int    `toml:"comment_limit"`   // Top comments analyzed per post (default 10)
	RateLimit      int    `toml:"rate_limit"`      // Requests per second (default 1)
	RequestTimeout string `toml:"request_timeout"` // HTTP timeout, e.g. "30s"
}

// SchedulerConfig controls the optional watchlist refresh.
type SchedulerConfig struct {
	Enabled   bool     `toml:"enabled"`
	Schedule  string   `toml:"schedule"`  // Cron schedule format
	Watchlist []string `toml:"watchlist"` // Tickers to refresh on schedule
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig returns the built-in defaults. File values, environment
// variables and CLI flags layer on top in that order.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/prestocked",
				ResetOnStartup: false,
			},
		},
		Queue: QueueConfig{
			PollInterval:      "1s",
			Concurrency:       4,
			VisibilityTimeout: "10m",
			MaxReceive:        3,
			QueueName:         "prestocked_jobs",
		},
		Analysis: AnalysisConfig{
			CacheWindowHours: 1,
			HorizonDays:      30,
			ArimaWeight:      0.4,
			LSTMWeight:       0.4,
			SentimentWeight:  0.2,
			SimpleThreshold:  0.1,
			SimpleCoeff:      0.5,
		},
		MarketData: MarketConfig{
			HistoryYears:   5,
			RequestTimeout: "30s",
		},
		Forum: ForumConfig{
			BaseURL:        "https://www.reddit.com",
			UserAgent:      "prestocked/1.0",
			PostLimit:      25,
			CommentLimit:   10,
			RateLimit:      1,
			RequestTimeout: "30s",
		},
		Scheduler: SchedulerConfig{
			Enabled:  false,
			Schedule: "0 */6 * * *",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PRESTOCKED_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("PRESTOCKED_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("PRESTOCKED_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("PRESTOCKED_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if pollInterval := os.Getenv("PRESTOCKED_QUEUE_POLL_INTERVAL"); pollInterval != "" {
		config.Queue.PollInterval = pollInterval
	}
	if concurrency := os.Getenv("PRESTOCKED_QUEUE_CONCURRENCY"); concurrency != "" {
		if c, err := strconv.Atoi(concurrency); err == nil {
			config.Queue.Concurrency = c
		}
	}

	if cacheHours := os.Getenv("PRESTOCKED_CACHE_WINDOW_HOURS"); cacheHours != "" {
		if h, err := strconv.Atoi(cacheHours); err == nil {
			config.Analysis.CacheWindowHours = h
		}
	}

	if userAgent := os.Getenv("PRESTOCKED_FORUM_USER_AGENT"); userAgent != "" {
		config.Forum.UserAgent = userAgent
	}
	if baseURL := os.Getenv("PRESTOCKED_FORUM_BASE_URL"); baseURL != "" {
		config.Forum.BaseURL = baseURL
	}

	if level := os.Getenv("PRESTOCKED_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("PRESTOCKED_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag values (highest priority).
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// PollInterval parses the queue poll interval with a 1s fallback.
func (q QueueConfig) PollIntervalDuration() time.Duration {
	d, err := time.ParseDuration(q.PollInterval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// VisibilityTimeoutDuration parses the visibility timeout with a 10m fallback.
func (q QueueConfig) VisibilityTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(q.VisibilityTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}
