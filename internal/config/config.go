// Package config provides centralized configuration for the pipeline and
// viewer binaries. Values come from a TOML file with environment-variable
// overrides for credentials.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration values.
type Config struct {
	Search  SearchConfig  `toml:"search"`
	Ranking RankingConfig `toml:"ranking"`
	Scrape  ScrapeConfig  `toml:"scrape"`
	Image   ImageConfig   `toml:"image"`
	Data    DataConfig    `toml:"data"`
	Server  ServerConfig  `toml:"server"`
}

// SearchConfig holds search backend settings.
type SearchConfig struct {
	// Queries are the free-text search terms tried each run.
	Queries []string `toml:"queries"`
	// APIKey is the search subscription key (or SEARCH_API_KEY env var).
	APIKey string `toml:"api_key"`
	// Count is the number of results requested per query.
	Count int `toml:"count"`
	// Market is the locale passed to the search backend.
	Market string `toml:"market"`
}

// RankingConfig holds story-ranking settings.
type RankingConfig struct {
	// Workers is the maximum number of concurrent scoring calls.
	Workers int `toml:"workers"`
	// CallTimeoutSeconds bounds each scoring call; timed-out calls are
	// dropped from the ranking output.
	CallTimeoutSeconds int `toml:"call_timeout_seconds"`
	// ValidateContent enables the second-stage content suitability gate.
	ValidateContent bool `toml:"validate_content"`
}

// ScrapeConfig holds content-fetch settings.
type ScrapeConfig struct {
	// TimeoutSeconds is the hard per-request fetch timeout.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// MinWords is the minimum word count for fetched text to be usable.
	MinWords int `toml:"min_words"`
}

// ImageConfig holds image generation and validation settings.
type ImageConfig struct {
	// MaxAttempts is the generate-validate budget per run.
	MaxAttempts int `toml:"max_attempts"`
	// ScoreThreshold is the mean validation score an image must exceed.
	ScoreThreshold float64 `toml:"score_threshold"`
	// FileType is the image output format.
	FileType string `toml:"file_type"`
}

// DataConfig holds on-disk data locations.
type DataConfig struct {
	// Dir is the root data directory (archive document, images, ledger).
	Dir string `toml:"dir"`
}

// ServerConfig holds viewer HTTP server settings.
type ServerConfig struct {
	Port int `toml:"port"`
}

// Keys holds API credentials, loaded from the environment only.
type Keys struct {
	OpenAI    string
	Anthropic string
	Replicate string
	Search    string
}

const defaultConfigContent = `[search]
queries = [
  "uplifting local news story",
  "community comes together good news",
  "heartwarming small town story",
]
api_key = ""          # or set SEARCH_API_KEY
count = 50
market = "en-CA"

[ranking]
workers = 20
call_timeout_seconds = 30
validate_content = true

[scrape]
timeout_seconds = 10
min_words = 300

[image]
max_attempts = 5
score_threshold = 8.0
file_type = "png"

[data]
dir = "./data"

[server]
port = 8080
`

// Load reads and parses the TOML config at path. If the file does not
// exist, a default config file is created there first.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// LoadKeys reads API credentials from the environment. The search key may
// also come from the config file; the env var wins when both are set.
func LoadKeys(cfg *Config) Keys {
	k := Keys{
		OpenAI:    os.Getenv("OPENAI_API_KEY"),
		Anthropic: os.Getenv("ANTHROPIC_API_KEY"),
		Replicate: os.Getenv("REPLICATE_API_TOKEN"),
		Search:    cfg.Search.APIKey,
	}
	if v := os.Getenv("SEARCH_API_KEY"); v != "" {
		k.Search = v
	}
	return k
}

// UseStubs reports whether any backend credential is missing, in which case
// the binaries fall back to the stub clients.
func (k Keys) UseStubs() bool {
	return k.OpenAI == "" || k.Anthropic == "" || k.Replicate == "" || k.Search == ""
}

// FetchTimeout returns the scrape timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Scrape.TimeoutSeconds) * time.Second
}

// RankCallTimeout returns the per-scoring-call wait as a duration.
func (c *Config) RankCallTimeout() time.Duration {
	return time.Duration(c.Ranking.CallTimeoutSeconds) * time.Second
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Search.Count == 0 {
		cfg.Search.Count = 50
	}
	if cfg.Search.Market == "" {
		cfg.Search.Market = "en-CA"
	}
	if cfg.Ranking.Workers == 0 {
		cfg.Ranking.Workers = 20
	}
	if cfg.Ranking.CallTimeoutSeconds == 0 {
		cfg.Ranking.CallTimeoutSeconds = 30
	}
	if cfg.Scrape.TimeoutSeconds == 0 {
		cfg.Scrape.TimeoutSeconds = 10
	}
	if cfg.Scrape.MinWords == 0 {
		cfg.Scrape.MinWords = 300
	}
	if cfg.Image.MaxAttempts == 0 {
		cfg.Image.MaxAttempts = 5
	}
	if cfg.Image.ScoreThreshold == 0 {
		cfg.Image.ScoreThreshold = 8.0
	}
	if cfg.Image.FileType == "" {
		cfg.Image.FileType = "png"
	}
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = "./data"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
}

func validate(cfg *Config) error {
	if len(cfg.Search.Queries) == 0 {
		return fmt.Errorf("search.queries must not be empty")
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}
	if cfg.Image.ScoreThreshold < 0 || cfg.Image.ScoreThreshold > 10 {
		return fmt.Errorf("invalid image.score_threshold %.2f: must be between 0 and 10", cfg.Image.ScoreThreshold)
	}
	switch cfg.Image.FileType {
	case "png", "webp", "jpg":
		// valid
	default:
		return fmt.Errorf("invalid image.file_type %q: must be png, webp, or jpg", cfg.Image.FileType)
	}
	return nil
}
