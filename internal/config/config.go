package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	// the reference time zone must load on hosts without a zoneinfo database
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
)

const (
	defaultTimeZone     = "America/Chicago"
	defaultRolloverHour = 17
	defaultChartStart   = 4
	defaultPolyDegree   = 3
)

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// storage
	DataDir         string `toml:"data_dir"`
	DailyFileName   string `toml:"daily_file"`
	MonthlyFileName string `toml:"monthly_file"`
	HoursFileName   string `toml:"hours_file"`

	// tracker
	TimeZone         string `toml:"time_zone"`
	RolloverHour     int    `toml:"rollover_hour"`
	ChartStartHour   int    `toml:"chart_start_hour"`
	PolynomialDegree int    `toml:"polynomial_degree"`
	// bcrypt hash of the key required for mutating requests, DAILYSCORE_SUBMIT_KEY_HASH env var overrides it
	SubmitKeyHash string `toml:"submit_key_hash"`

	// rate limiting, disabled when redis host is empty
	RedisHost             string `toml:"redis_host"`
	RedisPort             string `toml:"redis_port"`
	SubmitRateLimitPerMin int    `toml:"submit_rate_limit_per_min"`

	// origins allowed to call the JSON API from a browser, same-origin requests are always allowed
	AllowedOrigins []string `toml:"allowed_origins"`

	// charts
	ChartCacheSizeMB int `toml:"chart_cache_size_mb"`
	ChartCacheTTLSec int `toml:"chart_cache_ttl_sec"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch sectionName(env) {
	case "development":
		return t.Development, nil
	case "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func sectionName(env string) string {
	switch strings.ToLower(env) {
	case "dev", "development":
		return "development"
	case "prod", "production":
		return "production"
	default:
		return ""
	}
}

// Load reads the TOML file at path and returns the section for env,
// with defaults applied and env var overrides resolved.
func Load(env, path string) (*Config, error) {
	var t Toml
	md, err := toml.DecodeFile(path, &t)
	if err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section for env [%s] missing", env)
	}

	cfg.Environment = strings.ToLower(env)
	section := sectionName(env)
	cfg.applyDefaults(func(key string) bool {
		return md.IsDefined(section, key)
	})

	if keyHash := os.Getenv("DAILYSCORE_SUBMIT_KEY_HASH"); keyHash != "" {
		cfg.SubmitKeyHash = keyHash
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults fills unset fields. isSet reports whether a key was present
// in the file, for fields where the zero value is a valid setting.
func (c *Config) applyDefaults(isSet func(key string) bool) {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.DataDir == "" {
		c.DataDir = "."
	}
	if c.DailyFileName == "" {
		c.DailyFileName = "daily_data.csv"
	}
	if c.MonthlyFileName == "" {
		c.MonthlyFileName = "monthly_data.csv"
	}
	if c.HoursFileName == "" {
		c.HoursFileName = "hours_data.csv"
	}
	if c.TimeZone == "" {
		c.TimeZone = defaultTimeZone
	}
	if c.RolloverHour == 0 {
		c.RolloverHour = defaultRolloverHour
	}
	if c.ChartStartHour == 0 && !isSet("chart_start_hour") {
		c.ChartStartHour = defaultChartStart
	}
	if c.PolynomialDegree == 0 {
		c.PolynomialDegree = defaultPolyDegree
	}
	if c.SubmitRateLimitPerMin == 0 {
		c.SubmitRateLimitPerMin = 30
	}
	if c.ChartCacheSizeMB == 0 {
		c.ChartCacheSizeMB = 64
	}
	if c.ChartCacheTTLSec == 0 {
		c.ChartCacheTTLSec = 600
	}
}

func (c *Config) Validate() error {
	if c.RolloverHour < 0 || c.RolloverHour > 23 {
		return fmt.Errorf("rollover hour must be within 0-23, got %d", c.RolloverHour)
	}
	if c.ChartStartHour < 0 || c.ChartStartHour > 23 {
		return fmt.Errorf("chart start hour must be within 0-23, got %d", c.ChartStartHour)
	}
	if c.PolynomialDegree < 1 {
		return errors.New("polynomial degree must be positive")
	}
	if c.IsProduction() && c.SubmitKeyHash == "" {
		return errors.New("submit key hash must be set in production")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location is the reference time zone used for "today" and the rollover cutoff.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone [%s]: %w", c.TimeZone, err)
	}
	return loc, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "prod" || c.Environment == "production"
}

func (c *Config) DailyPath() string {
	return filepath.Join(c.DataDir, c.DailyFileName)
}

func (c *Config) MonthlyPath() string {
	return filepath.Join(c.DataDir, c.MonthlyFileName)
}

func (c *Config) HoursPath() string {
	return filepath.Join(c.DataDir, c.HoursFileName)
}
