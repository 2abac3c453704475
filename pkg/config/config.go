package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Checker struct {
		CronSecret   string        `yaml:"cron_secret"`
		BatchSize    int           `yaml:"batch_size"`
		HistoryRange string        `yaml:"history_range"`
		Scheduler    struct {
			Enabled  bool          `yaml:"enabled"`
			Interval time.Duration `yaml:"interval"`
		} `yaml:"scheduler"`
	} `yaml:"checker"`
	Providers struct {
		Timeout  time.Duration `yaml:"timeout"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
		MaxRPS   float64       `yaml:"max_rps"`
		Yahoo    struct {
			ChartURL  string `yaml:"chart_url"`
			QuoteURL  string `yaml:"quote_url"`
			SearchURL string `yaml:"search_url"`
		} `yaml:"yahoo"`
		AlphaVantage struct {
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"alphavantage"`
		FMP struct {
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"fmp"`
	} `yaml:"providers"`
	Store struct {
		Backend string `yaml:"backend"`
		KVRest  struct {
			URL     string        `yaml:"url"`
			Token   string        `yaml:"token"`
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"kvrest"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"store"`
	Push struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"push"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("CRON_SECRET"); v != "" {
		c.Checker.CronSecret = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_KEY"); v != "" {
		c.Providers.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("FMP_KEY"); v != "" {
		c.Providers.FMP.APIKey = v
	}
	if v := os.Getenv("KV_REST_API_URL"); v != "" {
		c.Store.KVRest.URL = v
	}
	if v := os.Getenv("KV_REST_API_TOKEN"); v != "" {
		c.Store.KVRest.Token = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Store.Redis.Addr = v
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Checker.BatchSize == 0 {
		c.Checker.BatchSize = 5
	}
	if c.Checker.HistoryRange == "" {
		c.Checker.HistoryRange = "1mo"
	}
	if c.Providers.Timeout == 0 {
		c.Providers.Timeout = 10 * time.Second
	}
	if c.Providers.Yahoo.ChartURL == "" {
		c.Providers.Yahoo.ChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	}
	if c.Providers.Yahoo.QuoteURL == "" {
		c.Providers.Yahoo.QuoteURL = "https://query1.finance.yahoo.com/v7/finance/quote"
	}
	if c.Providers.Yahoo.SearchURL == "" {
		c.Providers.Yahoo.SearchURL = "https://query1.finance.yahoo.com/v1/finance/search"
	}
	if c.Providers.AlphaVantage.BaseURL == "" {
		c.Providers.AlphaVantage.BaseURL = "https://www.alphavantage.co/query"
	}
	if c.Providers.FMP.BaseURL == "" {
		c.Providers.FMP.BaseURL = "https://financialmodelingprep.com/api/v3"
	}
	if c.Push.URL == "" {
		c.Push.URL = "https://exp.host/--/api/v2/push/send"
	}
	if c.Push.Timeout == 0 {
		c.Push.Timeout = 10 * time.Second
	}
	if c.Store.KVRest.Timeout == 0 {
		c.Store.KVRest.Timeout = 5 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Checker.CronSecret == "" {
		return fmt.Errorf("checker.cron_secret is required")
	}
	if c.Store.Backend == "" {
		return fmt.Errorf("store.backend is required")
	}
	switch c.Store.Backend {
	case "kvrest":
		if c.Store.KVRest.URL == "" || c.Store.KVRest.Token == "" {
			return fmt.Errorf("store.kvrest.url and store.kvrest.token are required for kvrest backend")
		}
	case "redis":
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for redis backend")
		}
	default:
		return fmt.Errorf("store.backend must be 'kvrest' or 'redis', got '%s'", c.Store.Backend)
	}
	if c.Checker.Scheduler.Enabled && c.Checker.Scheduler.Interval <= 0 {
		return fmt.Errorf("checker.scheduler.interval must be positive when scheduler is enabled")
	}
	return nil
}
