// Package config loads ksadmin settings from defaults, an optional YAML file
// and KSADMIN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Hidden route modes.
const (
	HiddenReachable = "reachable"
	HiddenBlocked   = "blocked"
)

// Config is the complete ksadmin configuration.
type Config struct {
	APIURL string `mapstructure:"api_url"`
	WebURL string `mapstructure:"web_url"`

	Storage    string `mapstructure:"storage"`
	StorageDir string `mapstructure:"storage_dir"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisPrefix   string `mapstructure:"redis_prefix"`

	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	RateLimit   float64       `mapstructure:"rate_limit"`
	RateBurst   int           `mapstructure:"rate_burst"`

	LogoutOnUnauthorized bool   `mapstructure:"logout_on_unauthorized"`
	HiddenRoutes         string `mapstructure:"hidden_routes"`

	LogFile  string `mapstructure:"log_file"`
	LogLevel string `mapstructure:"log_level"`
}

var keys = []string{
	"api_url", "web_url",
	"storage", "storage_dir",
	"redis_addr", "redis_password", "redis_db", "redis_prefix",
	"http_timeout", "rate_limit", "rate_burst",
	"logout_on_unauthorized", "hidden_routes",
	"log_file", "log_level",
}

// Dir returns the ksadmin state directory (~/.ksadmin).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ksadmin"
	}
	return filepath.Join(home, ".ksadmin")
}

// Load reads configuration. An empty cfgFile searches ~/.ksadmin/config.yaml,
// which may be absent. An explicit cfgFile must exist.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
	}

	v.SetEnvPrefix("KSADMIN")
	v.AutomaticEnv()
	// AutomaticEnv only applies to keys viper already knows about.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config.Load: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: unmarshal: %w", err)
	}
	cfg.StorageDir = expandHome(cfg.StorageDir)
	cfg.LogFile = expandHome(cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "http://localhost:5000")
	v.SetDefault("web_url", "http://localhost:5173")

	v.SetDefault("storage", StorageFile)
	v.SetDefault("storage_dir", filepath.Join(Dir(), "session"))

	v.SetDefault("redis_addr", "127.0.0.1:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_prefix", "ksadmin:")

	v.SetDefault("http_timeout", 30*time.Second)
	v.SetDefault("rate_limit", 10)
	v.SetDefault("rate_burst", 5)

	v.SetDefault("logout_on_unauthorized", true)
	v.SetDefault("hidden_routes", HiddenReachable)

	v.SetDefault("log_file", filepath.Join(Dir(), "ksadmin.log"))
	v.SetDefault("log_level", "info")
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := validateURL("api_url", c.APIURL); err != nil {
		return err
	}
	if c.WebURL != "" {
		if err := validateURL("web_url", c.WebURL); err != nil {
			return err
		}
	}

	switch c.Storage {
	case StorageFile:
		if c.StorageDir == "" {
			return errors.New("storage_dir is required for file storage")
		}
	case StorageRedis:
		if c.RedisAddr == "" {
			return errors.New("redis_addr is required for redis storage")
		}
		if c.RedisDB < 0 {
			return fmt.Errorf("redis_db must be >= 0, got %d", c.RedisDB)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q (want file, redis or memory)", c.Storage)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be >= 0, got %v", c.RateLimit)
	}
	if c.RateBurst < 0 {
		return fmt.Errorf("rate_burst must be >= 0, got %d", c.RateBurst)
	}

	switch c.HiddenRoutes {
	case HiddenReachable, HiddenBlocked:
	default:
		return fmt.Errorf("unknown hidden_routes %q (want reachable or blocked)", c.HiddenRoutes)
	}
	return nil
}

func validateURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http or https URL, got %q", key, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host: %q", key, raw)
	}
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
