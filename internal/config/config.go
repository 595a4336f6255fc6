// Package config loads the server configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // timezone names resolve in minimal images

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the daterange-server configuration.
type Config struct {
	Env        string `yaml:"env" env:"DATERANGE_ENV" env-default:"local"`
	LogLevel   string `yaml:"log_level" env:"DATERANGE_LOG_LEVEL" env-default:"info"`
	Timezone   string `yaml:"timezone" env:"DATERANGE_TIMEZONE" env-default:"UTC"`
	HTTPServer `yaml:"http_server"`
	Form       `yaml:"form"`
}

// HTTPServer configures the listener.
type HTTPServer struct {
	Address         string        `yaml:"address" env:"DATERANGE_ADDRESS" env-default:":8080"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"DATERANGE_REQUEST_TIMEOUT" env-default:"5s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"DATERANGE_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"DATERANGE_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Form configures the mounted date range component.
type Form struct {
	BasePath     string `yaml:"base_path" env:"DATERANGE_BASE_PATH" env-default:"/search"`
	AssetsPath   string `yaml:"assets_path" env:"DATERANGE_ASSETS_PATH" env-default:"/assets"`
	TemplatesDir string `yaml:"templates_dir" env:"DATERANGE_TEMPLATES_DIR"`
	SuccessURL   string `yaml:"success_url" env:"DATERANGE_SUCCESS_URL"`
	CSRF         `yaml:"csrf"`
}

// CSRFKeyLength is the minimum length of CSRF.Key.
const CSRFKeyLength = 32

// CSRF configures token verification on form posts. Protection is enabled
// when Field is set.
type CSRF struct {
	Field string `yaml:"field" env:"DATERANGE_CSRF_FIELD"`
	Key   string `yaml:"key" env:"DATERANGE_CSRF_KEY"`
	// Secure marks the token cookie Secure and enforces the https Referer
	// check. Disable it only when serving plain http.
	Secure bool `yaml:"secure" env:"DATERANGE_CSRF_SECURE" env-default:"true"`
}

// Enabled reports whether form posts must carry a CSRF token.
func (c CSRF) Enabled() bool {
	return strings.TrimSpace(c.Field) != ""
}

// Validate checks the key when protection is enabled.
func (c CSRF) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if len(c.Key) < CSRFKeyLength {
		return fmt.Errorf("config: csrf key must be at least %d bytes", CSRFKeyLength)
	}
	return nil
}

// Load reads the configuration. An empty path reads the environment only.
func Load(path string) (*Config, error) {
	var cfg Config

	if strings.TrimSpace(path) == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	} else {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: file %s does not exist", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if err := cfg.CSRF.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad loads the configuration from path, falling back to CONFIG_PATH,
// and exits the process on failure.
func MustLoad(path string) *Config {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Location resolves the configured timezone used to derive today.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", name, err)
	}
	return loc, nil
}

// SlogLevel parses LogLevel, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"LogLevel: %s\n"+
			"Timezone: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  RequestTimeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"  ShutdownTimeout: %s\n"+
			"Form:\n"+
			"  BasePath: %s\n"+
			"  AssetsPath: %s\n"+
			"  TemplatesDir: %s\n"+
			"  SuccessURL: %s\n"+
			"  CSRFField: %s\n"+
			"  CSRFSecure: %t\n",
		c.Env,
		c.LogLevel,
		c.Timezone,
		c.Address,
		c.RequestTimeout,
		c.IdleTimeout,
		c.ShutdownTimeout,
		c.BasePath,
		c.AssetsPath,
		c.TemplatesDir,
		c.SuccessURL,
		c.CSRF.Field,
		c.CSRF.Secure,
	)
}
