package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Fetch backends
const (
	BackendColly   = "colly"
	BackendResty   = "resty"
	BackendBrowser = "browser"
)

// Defaults mirror the request the hotel page expects from a desktop browser
const (
	DefaultBaseURL        = "https://www.booking.com"
	DefaultLanguage       = "en-gb"
	DefaultUserAgent      = "Mozilla/5.0 (X11; CrOS x86_64 8172.45.0) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/51.0.2704.64 Safari/537.36"
	DefaultAcceptLanguage = "en-US, en;q=0.5"
	DefaultConcurrency    = 10
	DefaultTimeout        = 30 * time.Second
	DefaultHorizonDays    = 365
)

// Config represents the scraper configuration
type Config struct {
	Fetch   FetchConfig  `yaml:"fetch"`
	Search  SearchConfig `yaml:"search"`
	Filters FilterConfig `yaml:"filters"`
	Output  OutputConfig `yaml:"output"`
}

// FetchConfig controls how pages are requested
type FetchConfig struct {
	Backend        string        `yaml:"backend"`
	BaseURL        string        `yaml:"base_url"`
	Language       string        `yaml:"language"`
	UserAgent      string        `yaml:"user_agent"`
	AcceptLanguage string        `yaml:"accept_language"`
	Concurrency    int           `yaml:"concurrency"`
	Timeout        time.Duration `yaml:"timeout"`
	Adults         int           `yaml:"adults"`
	Children       int           `yaml:"children"`
}

// SearchConfig holds default search inputs, overridable from the command line
type SearchConfig struct {
	Country     string   `yaml:"country"`
	Currency    string   `yaml:"currency"`
	Hotels      []string `yaml:"hotels"`
	HorizonDays int      `yaml:"horizon_days"`
}

// FilterConfig represents the price band applied before aggregation.
// Prices are in minor units; zero means unbounded.
type FilterConfig struct {
	MinPrice int64 `yaml:"min_price"`
	MaxPrice int64 `yaml:"max_price"`
}

// OutputConfig controls rendering and the optional spreadsheet export
type OutputConfig struct {
	Format         string `yaml:"format"`
	SpreadsheetURL string `yaml:"spreadsheet_url"`
	Credentials    string `yaml:"credentials"`
}

// LoadConfig loads configuration from a YAML file.
// Fields missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := mergo.Merge(&cfg, GetDefaultConfig()); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	return &cfg, nil
}

// GetDefaultConfig returns a default configuration
func GetDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Fetch.Backend = BackendColly
	cfg.Fetch.BaseURL = DefaultBaseURL
	cfg.Fetch.Language = DefaultLanguage
	cfg.Fetch.UserAgent = DefaultUserAgent
	cfg.Fetch.AcceptLanguage = DefaultAcceptLanguage
	cfg.Fetch.Concurrency = DefaultConcurrency
	cfg.Fetch.Timeout = DefaultTimeout
	cfg.Fetch.Adults = 2
	cfg.Fetch.Children = 0
	cfg.Search.Country = "us"
	cfg.Search.Currency = "USD"
	cfg.Search.HorizonDays = DefaultHorizonDays
	cfg.Output.Format = "table"
	return cfg
}

// Validate checks that the configuration can drive a run
func (c *Config) Validate() error {
	var errs []error

	switch c.Fetch.Backend {
	case BackendColly, BackendResty, BackendBrowser:
	default:
		errs = append(errs, fmt.Errorf("unknown fetch backend %q", c.Fetch.Backend))
	}
	if c.Fetch.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("concurrency must be positive, got %d", c.Fetch.Concurrency))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Fetch.Timeout))
	}
	if c.Fetch.Adults <= 0 {
		errs = append(errs, fmt.Errorf("adults must be positive, got %d", c.Fetch.Adults))
	}
	if c.Fetch.Children < 0 {
		errs = append(errs, fmt.Errorf("children must not be negative, got %d", c.Fetch.Children))
	}
	if c.Search.HorizonDays <= 0 {
		errs = append(errs, fmt.Errorf("horizon_days must be positive, got %d", c.Search.HorizonDays))
	}
	if c.Filters.MinPrice < 0 || c.Filters.MaxPrice < 0 {
		errs = append(errs, errors.New("price filters must not be negative"))
	}
	if c.Filters.MaxPrice > 0 && c.Filters.MinPrice > c.Filters.MaxPrice {
		errs = append(errs, fmt.Errorf("min_price %d is above max_price %d", c.Filters.MinPrice, c.Filters.MaxPrice))
	}

	return errors.Join(errs...)
}
