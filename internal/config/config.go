package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ControllerURL  string
	ControllerUser string
	ControllerPass string
	// ControllerTimeout bounds each outbound controller request.
	ControllerTimeout time.Duration

	DBPath   string
	Port     int
	LogLevel zerolog.Level
}

type fileConfig struct {
	ControllerURL     string `yaml:"controller_url"`
	ControllerUser    string `yaml:"controller_username"`
	ControllerPass    string `yaml:"controller_password"`
	ControllerTimeout string `yaml:"controller_timeout"`
	DBPath            string `yaml:"database_path"`
	Port              int    `yaml:"port"`
	LogLevel          string `yaml:"log_level"`
}

// Load builds the configuration from an optional YAML file (CONFIG_FILE)
// with environment variables layered on top. Env always wins.
func Load() (Config, error) {
	cfg := Config{
		ControllerTimeout: 5 * time.Second,
		DBPath:            "./data/idrac.db",
		Port:              8080,
		LogLevel:          zerolog.InfoLevel,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
		applyFile(&cfg, fc)
	}

	if v := os.Getenv("IDRAC_HOST"); v != "" {
		cfg.ControllerURL = v
	}
	if v := os.Getenv("IDRAC_USERNAME"); v != "" {
		cfg.ControllerUser = v
	}
	if v := os.Getenv("IDRAC_PASSWORD"); v != "" {
		cfg.ControllerPass = v
	}
	if v := os.Getenv("IDRAC_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid IDRAC_TIMEOUT: %q", v)
		}
		cfg.ControllerTimeout = d
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 || p > 65535 {
			return Config{}, fmt.Errorf("invalid PORT: %q", v)
		}
		cfg.Port = p
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		l, err := zerolog.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %q", v)
		}
		cfg.LogLevel = l
	}

	return cfg, cfg.Validate()
}

func applyFile(cfg *Config, fc fileConfig) {
	if fc.ControllerURL != "" {
		cfg.ControllerURL = fc.ControllerURL
	}
	if fc.ControllerUser != "" {
		cfg.ControllerUser = fc.ControllerUser
	}
	if fc.ControllerPass != "" {
		cfg.ControllerPass = fc.ControllerPass
	}
	if fc.ControllerTimeout != "" {
		if d, err := time.ParseDuration(fc.ControllerTimeout); err == nil && d > 0 {
			cfg.ControllerTimeout = d
		}
	}
	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.Port > 0 {
		cfg.Port = fc.Port
	}
	if fc.LogLevel != "" {
		if l, err := zerolog.ParseLevel(fc.LogLevel); err == nil {
			cfg.LogLevel = l
		}
	}
}

// Validate reports every missing required option at once so the operator
// can fix the whole set in one pass.
func (c Config) Validate() error {
	var missing []string
	if c.ControllerURL == "" {
		missing = append(missing, "IDRAC_HOST")
	}
	if c.ControllerUser == "" {
		missing = append(missing, "IDRAC_USERNAME")
	}
	if c.ControllerPass == "" {
		missing = append(missing, "IDRAC_PASSWORD")
	}
	if len(missing) > 0 {
		return errors.New("missing required configuration: " + strings.Join(missing, ", "))
	}
	return nil
}
