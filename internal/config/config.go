package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Source SourceConfig `yaml:"source" mapstructure:"source"`
	HTTP   HTTPConfig   `yaml:"http" mapstructure:"http"`
	Lookup LookupConfig `yaml:"lookup" mapstructure:"lookup"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// SourceConfig selects where the substation directory and chunks are read from.
type SourceConfig struct {
	Kind      string   `yaml:"kind" mapstructure:"kind"`
	BaseURL   string   `yaml:"base_url" mapstructure:"base_url"`
	Dir       string   `yaml:"dir" mapstructure:"dir"`
	ZipPath   string   `yaml:"zip_path" mapstructure:"zip_path"`
	ZipPrefix string   `yaml:"zip_prefix" mapstructure:"zip_prefix"`
	S3        S3Config `yaml:"s3" mapstructure:"s3"`
}

// S3Config holds S3-compatible object storage settings.
type S3Config struct {
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	Prefix    string `yaml:"prefix" mapstructure:"prefix"`
	Region    string `yaml:"region" mapstructure:"region"`
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl" mapstructure:"use_ssl"`
}

// HTTPConfig configures the HTTP blob source.
type HTTPConfig struct {
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries       int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec       float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst            int     `yaml:"burst" mapstructure:"burst"`
	UserAgent        string  `yaml:"user_agent" mapstructure:"user_agent"`
	BreakerThreshold int     `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerResetSecs int     `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// Timeout returns the request timeout as a duration.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSecs) * time.Second
}

// BreakerReset returns how long an open breaker waits before probing.
func (h HTTPConfig) BreakerReset() time.Duration {
	return time.Duration(h.BreakerResetSecs) * time.Second
}

// LookupConfig tunes resolution, area reconstruction and suggestions.
type LookupConfig struct {
	FanoutConcurrency int `yaml:"fanout_concurrency" mapstructure:"fanout_concurrency"`
	SuggestLimit      int `yaml:"suggest_limit" mapstructure:"suggest_limit"`
	SuggestMinChars   int `yaml:"suggest_min_chars" mapstructure:"suggest_min_chars"`
	PageSize          int `yaml:"page_size" mapstructure:"page_size"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
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
	v.SetEnvPrefix("POSTCODES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("source.kind", "http")
	v.SetDefault("source.base_url", "https://postcodes.energy/data")
	v.SetDefault("source.dir", "./data")
	v.SetDefault("source.zip_path", "./data.zip")
	v.SetDefault("source.zip_prefix", "")
	v.SetDefault("source.s3.endpoint", "")
	v.SetDefault("source.s3.bucket", "")
	v.SetDefault("source.s3.prefix", "data")
	v.SetDefault("source.s3.region", "")
	v.SetDefault("source.s3.access_key", "")
	v.SetDefault("source.s3.secret_key", "")
	v.SetDefault("source.s3.use_ssl", true)
	v.SetDefault("http.timeout_secs", 15)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.rate_per_sec", 50)
	v.SetDefault("http.burst", 100)
	v.SetDefault("http.user_agent", "postcode-lookup/1.0")
	v.SetDefault("http.breaker_threshold", 10)
	v.SetDefault("http.breaker_reset_secs", 30)
	v.SetDefault("lookup.fanout_concurrency", 100)
	v.SetDefault("lookup.suggest_limit", 10)
	v.SetDefault("lookup.suggest_min_chars", 3)
	v.SetDefault("lookup.page_size", 100)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks the configuration for the given mode ("cli" or "serve").
// All problems are reported together.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Source.Kind {
	case "http":
		if c.Source.BaseURL == "" {
			problems = append(problems, "source.base_url is required")
		}
	case "dir":
		if c.Source.Dir == "" {
			problems = append(problems, "source.dir is required")
		}
	case "zip":
		if c.Source.ZipPath == "" {
			problems = append(problems, "source.zip_path is required")
		}
	case "s3":
		if c.Source.S3.Endpoint == "" {
			problems = append(problems, "source.s3.endpoint is required")
		}
		if c.Source.S3.Bucket == "" {
			problems = append(problems, "source.s3.bucket is required")
		}
	default:
		problems = append(problems, "source.kind must be one of http, dir, zip, s3")
	}

	if c.Lookup.FanoutConcurrency < 1 {
		problems = append(problems, "lookup.fanout_concurrency must be > 0")
	}
	if c.Lookup.SuggestLimit < 1 {
		problems = append(problems, "lookup.suggest_limit must be > 0")
	}
	if c.Lookup.SuggestMinChars < 1 {
		problems = append(problems, "lookup.suggest_min_chars must be >= 1")
	}
	if c.Lookup.PageSize < 1 {
		problems = append(problems, "lookup.page_size must be > 0")
	}

	switch mode {
	case "cli":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
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
