package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-history/internal/weather"
	"github.com/i474232898/weather-history/internal/weather/providers"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type AppConfig struct {
	Env string `yaml:"env" validate:"required,oneof=development production"`

	WeatherAPIURL     string        `yaml:"weather_api_url" validate:"required,url"`
	WeatherAPITimeout time.Duration `yaml:"weather_api_timeout" validate:"gt=0"`

	// Circuit breaker around the archive API.
	BreakerFailures    uint32        `yaml:"breaker_failures" validate:"gte=1"`
	BreakerOpenTimeout time.Duration `yaml:"breaker_open_timeout" validate:"gt=0"`

	// Initial dashboard selection. DefaultLocation is resolved from
	// DefaultLocationName against the catalog.
	DefaultLocationName string            `yaml:"default_location" validate:"required"`
	DefaultLocation     weather.Location  `yaml:"-"`
	DefaultDays         weather.RangeDays `yaml:"default_days" validate:"oneof=7 14 30 60 90"`

	// Dashboard session retention.
	SessionMaxAge   time.Duration `yaml:"session_max_age" validate:"gte=0"`   // idle time before a dashboard is closed (0 = never)
	SessionMaxCount int           `yaml:"session_max_count" validate:"gte=0"` // max live dashboards (0 = unlimited)
	SweepInterval   time.Duration `yaml:"sweep_interval" validate:"gt=0"`

	ChartWidth  int `yaml:"chart_width" validate:"gte=200,lte=4096"`
	ChartHeight int `yaml:"chart_height" validate:"gte=100,lte=4096"`

	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
	Port     string `yaml:"port" validate:"required,numeric"`
}

// profile holds the values that differ between environments.
type profile struct {
	timeout  time.Duration
	logLevel string
}

var profiles = map[string]profile{
	EnvDevelopment: {timeout: 10 * time.Second, logLevel: "debug"},
	EnvProduction:  {timeout: 15 * time.Second, logLevel: "info"},
}

var validate = validator.New()

// Load reads configuration from .env, an optional YAML file named by
// CONFIG_PATH, and the environment, in increasing order of precedence.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return load(os.Getenv)
}

func load(getenv func(string) string) (*AppConfig, error) {
	env := getenvDefault(getenv, "APP_ENV", EnvDevelopment)
	p, ok := profiles[env]
	if !ok {
		return nil, fmt.Errorf("invalid APP_ENV %q: want %s or %s", env, EnvDevelopment, EnvProduction)
	}

	cfg := &AppConfig{
		Env:                 env,
		WeatherAPIURL:       providers.DefaultArchiveURL,
		WeatherAPITimeout:   p.timeout,
		BreakerFailures:     5,
		BreakerOpenTimeout:  30 * time.Second,
		DefaultLocationName: "New York, NY",
		DefaultDays:         weather.DefaultRange,
		SessionMaxAge:       30 * time.Minute,
		SessionMaxCount:     1000,
		SweepInterval:       time.Minute,
		ChartWidth:          800,
		ChartHeight:         400,
		LogLevel:            p.logLevel,
		Port:                "8080",
	}

	if path := getenv("CONFIG_PATH"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
		// The file must not switch profiles underneath the environment.
		cfg.Env = env
	}

	if err := applyEnv(getenv, cfg); err != nil {
		return nil, err
	}

	loc, ok := weather.LookupLocation(cfg.DefaultLocationName)
	if !ok {
		return nil, fmt.Errorf("invalid DEFAULT_LOCATION %q: not in catalog", cfg.DefaultLocationName)
	}
	cfg.DefaultLocation = loc

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, fmt.Errorf("invalid config: %s", verrs[0].Error())
		}
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func loadFile(path string, cfg *AppConfig) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(getenv func(string) string, cfg *AppConfig) error {
	cfg.WeatherAPIURL = getenvDefault(getenv, "WEATHER_API_URL", cfg.WeatherAPIURL)
	cfg.DefaultLocationName = getenvDefault(getenv, "DEFAULT_LOCATION", cfg.DefaultLocationName)
	cfg.LogLevel = getenvDefault(getenv, "LOG_LEVEL", cfg.LogLevel)
	cfg.Port = getenvDefault(getenv, "PORT", cfg.Port)

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"WEATHER_API_TIMEOUT", &cfg.WeatherAPITimeout},
		{"BREAKER_OPEN_TIMEOUT", &cfg.BreakerOpenTimeout},
		{"SESSION_MAX_AGE", &cfg.SessionMaxAge},
		{"SWEEP_INTERVAL", &cfg.SweepInterval},
	}
	for _, d := range durations {
		if err := getenvDuration(getenv, d.key, d.dst); err != nil {
			return err
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"SESSION_MAX_COUNT", &cfg.SessionMaxCount},
		{"CHART_WIDTH", &cfg.ChartWidth},
		{"CHART_HEIGHT", &cfg.ChartHeight},
	}
	for _, i := range ints {
		if err := getenvInt(getenv, i.key, i.dst); err != nil {
			return err
		}
	}

	days := int(cfg.DefaultDays)
	if err := getenvInt(getenv, "DEFAULT_DAYS", &days); err != nil {
		return err
	}
	cfg.DefaultDays = weather.RangeDays(days)

	failures := int(cfg.BreakerFailures)
	if err := getenvInt(getenv, "BREAKER_FAILURES", &failures); err != nil {
		return err
	}
	if failures < 0 {
		return fmt.Errorf("invalid BREAKER_FAILURES: %d", failures)
	}
	cfg.BreakerFailures = uint32(failures)

	return nil
}

func getenvDefault(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(getenv func(string) string, key string, dst *time.Duration) error {
	v := getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func getenvInt(getenv func(string) string, key string, dst *int) error {
	v := getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}
