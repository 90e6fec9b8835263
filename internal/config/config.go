package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Places  PlacesConfig  `yaml:"places" mapstructure:"places"`
	MetaAds MetaAdsConfig `yaml:"meta_ads" mapstructure:"meta_ads"`
	Crawl   CrawlConfig   `yaml:"crawl" mapstructure:"crawl"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// PlacesConfig holds Google Places API settings for the competitive
// peer sample.
type PlacesConfig struct {
	Key          string  `yaml:"key" mapstructure:"key"`
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	RadiusMeters float64 `yaml:"radius_meters" mapstructure:"radius_meters"`
	MaxPeers     int     `yaml:"max_peers" mapstructure:"max_peers"`
}

// MetaAdsConfig holds Meta Ad Library settings for paid-ad detection.
type MetaAdsConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// CrawlConfig configures the service-depth crawl.
type CrawlConfig struct {
	MaxPages       int     `yaml:"max_pages" mapstructure:"max_pages"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSecond  float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes   int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RetryOnFailure bool    `yaml:"retry_on_failure" mapstructure:"retry_on_failure"`
}

// BatchConfig configures batch diagnosis.
type BatchConfig struct {
	MaxConcurrentLeads int `yaml:"max_concurrent_leads" mapstructure:"max_concurrent_leads"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// ExportConfig configures decision exports.
type ExportConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Format string `yaml:"format" mapstructure:"format"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DIAGNOSIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "diagnosis.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent_leads", 5)
	v.SetDefault("crawl.max_pages", 6)
	v.SetDefault("crawl.timeout_secs", 30)
	v.SetDefault("crawl.rate_per_second", 2)
	v.SetDefault("crawl.user_agent", "diagnosis-cli/1.0")
	v.SetDefault("crawl.max_body_bytes", 2<<20)
	v.SetDefault("places.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("places.radius_meters", 2414)
	v.SetDefault("places.max_peers", 5)
	v.SetDefault("meta_ads.base_url", "https://graph.facebook.com/v19.0")
	v.SetDefault("export.dir", "exports")
	v.SetDefault("export.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration required for the given mode.
// Mode "diagnose" covers the one-shot and batch paths, "serve" the
// HTTP server. It collects every problem rather than stopping at the
// first.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "diagnose":
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("store.driver %q is not supported (sqlite, postgres)", c.Store.Driver))
	}

	if c.Batch.MaxConcurrentLeads < 1 || c.Batch.MaxConcurrentLeads > 50 {
		problems = append(problems, "batch.max_concurrent_leads must be between 1 and 50")
	}
	if c.Crawl.MaxPages < 1 {
		problems = append(problems, "crawl.max_pages must be >= 1")
	}
	if c.Crawl.RatePerSecond <= 0 {
		problems = append(problems, "crawl.rate_per_second must be > 0")
	}
	if c.Places.MaxPeers < 1 || c.Places.MaxPeers > 5 {
		problems = append(problems, "places.max_peers must be between 1 and 5")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
