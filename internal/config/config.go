package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/samvad-hq/waplatform-go/pkg/waapi"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	APIKey         string        `mapstructure:"wa_api_key"`
	BaseURL        string        `mapstructure:"wa_base_url"`
	TimeoutSeconds int64         `mapstructure:"wa_timeout_seconds"`
	MaxRetries     int           `mapstructure:"wa_max_retries"`
	RateLimitRPS   float64       `mapstructure:"wa_rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"wa_rate_limit_burst"`
	Timeout        time.Duration `mapstructure:"-"`

	RelayListenAddr string `mapstructure:"relay_listen_addr"`
	WebhookSecret   string `mapstructure:"webhook_secret"`
	PublishersFile  string `mapstructure:"publishers_file"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageClaimSeconds    int64         `mapstructure:"storage_claim_lease_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageClaimLease      time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	return LoadFrom(viper.New())
}

// LoadFrom applies defaults and environment overrides to v, which may
// already carry bound flags, and decodes the result.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.SetDefault("app_name", "waplatform")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("wa_api_key", "")
	v.SetDefault("wa_base_url", waapi.DefaultBaseURL)
	v.SetDefault("wa_timeout_seconds", int64(waapi.DefaultTimeout/time.Second))
	v.SetDefault("wa_max_retries", waapi.DefaultMaxRetries)
	v.SetDefault("wa_rate_limit_rps", 0)
	v.SetDefault("wa_rate_limit_burst", 1)
	v.SetDefault("relay_listen_addr", ":8081")
	v.SetDefault("webhook_secret", "")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/deliveries.db")
	v.SetDefault("storage_ttl_seconds", int64((24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((time.Hour)/time.Second))
	v.SetDefault("storage_claim_lease_seconds", int64((5*time.Minute)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)

	if cfg.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid wa_timeout_seconds (must be positive seconds)")
	}
	cfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second

	if cfg.MaxRetries <= 0 {
		return nil, fmt.Errorf("invalid wa_max_retries (must be positive)")
	}
	if cfg.RateLimitRPS < 0 {
		return nil, fmt.Errorf("invalid wa_rate_limit_rps (must not be negative)")
	}

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	if cfg.StorageClaimSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_claim_lease_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageClaimLease = time.Duration(cfg.StorageClaimSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}

// ClientConfig returns the SDK settings. The API key is checked by waapi.New.
func (c *Config) ClientConfig() waapi.Config {
	return waapi.Config{
		APIKey:     c.APIKey,
		BaseURL:    c.BaseURL,
		Timeout:    c.Timeout,
		MaxRetries: c.MaxRetries,
	}
}

// ClientOptions returns the SDK options implied by the configuration.
func (c *Config) ClientOptions(log waapi.Logger) []waapi.Option {
	opts := []waapi.Option{waapi.WithLogger(log)}
	if c.RateLimitRPS > 0 {
		opts = append(opts, waapi.WithRateLimit(c.RateLimitRPS, c.RateLimitBurst))
	}
	return opts
}
