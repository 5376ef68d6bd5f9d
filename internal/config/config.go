package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	API struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
		// PageSize must match the server's default page size; the API does
		// not report it.
		PageSize int `yaml:"page_size"`
	} `yaml:"api"`
	Cache struct {
		Freshness       time.Duration `yaml:"freshness"`
		SearchFreshness time.Duration `yaml:"search_freshness"`
		GCTime          time.Duration `yaml:"gc_time"`
		Retries         int           `yaml:"retries"`
		RetryDelay      time.Duration `yaml:"retry_delay"`
		SweepCron       string        `yaml:"sweep_cron"`
		WarmCron        string        `yaml:"warm_cron"`
	} `yaml:"cache"`
	Search struct {
		Debounce  time.Duration `yaml:"debounce"`
		TopMovers int           `yaml:"top_movers"`
	} `yaml:"search"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.API.BaseURL = "http://localhost:3000"
	cfg.API.Timeout = 10 * time.Second
	cfg.API.PageSize = 20
	cfg.Cache.Freshness = 5 * time.Minute
	cfg.Cache.SearchFreshness = 5 * time.Minute
	cfg.Cache.GCTime = 10 * time.Minute
	cfg.Cache.Retries = 3
	cfg.Cache.RetryDelay = time.Second
	cfg.Cache.SweepCron = "@every 1m"
	cfg.Cache.WarmCron = "@every 5m"
	cfg.Search.Debounce = 500 * time.Millisecond
	cfg.Search.TopMovers = 10
	cfg.Server.Port = 8080
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"
	return cfg
}

// Load reads config from a YAML file over the defaults, then applies .env and
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromEnv() error {
	// VITE_API_BASE_URL is honoured for deployments that share a .env with the old frontend.
	if v := os.Getenv("VITE_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("CASE_INDEX_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("CASE_INDEX_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CASE_INDEX_PAGE_SIZE: %w", err)
		}
		c.API.PageSize = n
	}
	if v := os.Getenv("PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = n
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.PageSize <= 0 {
		return fmt.Errorf("api.page_size must be positive, got %d", c.API.PageSize)
	}
	if c.Cache.Retries < 0 {
		return fmt.Errorf("cache.retries must not be negative, got %d", c.Cache.Retries)
	}
	// The sweeper must not drop entries that are still fresh.
	if c.Cache.GCTime < c.Cache.Freshness || c.Cache.GCTime < c.Cache.SearchFreshness {
		return fmt.Errorf("cache.gc_time (%s) must be at least cache.freshness (%s) and cache.search_freshness (%s)",
			c.Cache.GCTime, c.Cache.Freshness, c.Cache.SearchFreshness)
	}
	if c.Search.TopMovers <= 0 {
		return fmt.Errorf("search.top_movers must be positive, got %d", c.Search.TopMovers)
	}
	return nil
}
