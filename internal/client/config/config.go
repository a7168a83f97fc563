package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "CODEGEN"

// Configuration keys. Flags use the same names with "-" instead of "_".
const (
	KeyConfigFile      = "config"
	KeyAPIURL          = "api_url"
	KeySessionDB       = "session_db"
	KeyRequestTimeout  = "request_timeout"
	KeyRefreshInterval = "credits_refresh_interval"
	KeyPageSize        = "page_size"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
)

// Config holds runtime settings for the codecredits CLI.
type Config struct {
	APIBaseURL             string
	SessionDBPath          string
	RequestTimeout         time.Duration
	CreditsRefreshInterval time.Duration
	PageSize               int
	LogLevel               string
	LogFormat              string
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000"
	c.SessionDBPath = DefaultSessionDBPath()
	c.RequestTimeout = 30 * time.Second
	c.CreditsRefreshInterval = time.Minute
	c.PageSize = 10
	c.LogLevel = "warn"
	c.LogFormat = "text"
}

// DefaultSessionDBPath is session.db under the user config directory, or in
// the working directory when that cannot be resolved.
func DefaultSessionDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "session.db"
	}
	return filepath.Join(dir, "codecredits", "session.db")
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// RegisterFlags adds every setting to fs with its default.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.String(flagName(KeyConfigFile), "", "path to a config file (json, yaml, toml, ...)")
	fs.String(flagName(KeyAPIURL), d.APIBaseURL, "backend base URL")
	fs.String(flagName(KeySessionDB), d.SessionDBPath, "path of the session database")
	fs.Duration(flagName(KeyRequestTimeout), d.RequestTimeout, "per-request timeout")
	fs.Duration(flagName(KeyRefreshInterval), d.CreditsRefreshInterval, "credit balance refresh interval in the interactive shell (0 disables)")
	fs.Int(flagName(KeyPageSize), d.PageSize, "records per history page")
	fs.String(flagName(KeyLogLevel), d.LogLevel, "log level: debug, info, warn, error")
	fs.String(flagName(KeyLogFormat), d.LogFormat, "log format: text or json")
}

// Load resolves the configuration. Later sources override earlier ones:
// defaults, config file, environment (CODEGEN_*, plus API_URL), flags that
// were set explicitly. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	var d Config
	d.LoadDefaults()
	v.SetDefault(KeyAPIURL, d.APIBaseURL)
	v.SetDefault(KeySessionDB, d.SessionDBPath)
	v.SetDefault(KeyRequestTimeout, d.RequestTimeout)
	v.SetDefault(KeyRefreshInterval, d.CreditsRefreshInterval)
	v.SetDefault(KeyPageSize, d.PageSize)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(KeyAPIURL, envPrefix+"_API_URL", "API_URL"); err != nil {
		return nil, fmt.Errorf("bind env %s: %w", KeyAPIURL, err)
	}

	if fs != nil {
		for _, key := range []string{KeyConfigFile, KeyAPIURL, KeySessionDB, KeyRequestTimeout, KeyRefreshInterval, KeyPageSize, KeyLogLevel, KeyLogFormat} {
			f := fs.Lookup(flagName(key))
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", f.Name, err)
			}
		}
	}

	if path := v.GetString(KeyConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		APIBaseURL:             strings.TrimSpace(v.GetString(KeyAPIURL)),
		SessionDBPath:          v.GetString(KeySessionDB),
		RequestTimeout:         v.GetDuration(KeyRequestTimeout),
		CreditsRefreshInterval: v.GetDuration(KeyRefreshInterval),
		PageSize:               v.GetInt(KeyPageSize),
		LogLevel:               v.GetString(KeyLogLevel),
		LogFormat:              v.GetString(KeyLogFormat),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var ErrInvalidConfig = errors.New("invalid config")

// Validate checks values that would otherwise fail on first use.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api url %q must be an absolute http(s) URL", ErrInvalidConfig, c.APIBaseURL)
	}
	if c.SessionDBPath == "" {
		return fmt.Errorf("%w: session db path is empty", ErrInvalidConfig)
	}
	if c.RequestTimeout < 0 || c.CreditsRefreshInterval < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("%w: page size must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
