package server

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the server runtime settings. Values come from the optional
// YAML file, then environment variables, then defaults.
type Config struct {
	Host                     string  `yaml:"host"`
	Port                     int     `yaml:"port"`
	InitialClockSeconds      float64 `yaml:"initial_clock_seconds"`
	CleanupIntervalSeconds   int     `yaml:"cleanup_interval_seconds"`
	FinishedRetentionMinutes int     `yaml:"finished_retention_minutes"`

	// TickInterval is how often session clocks are decremented. One second
	// in production; tests shorten or fake it.
	TickInterval time.Duration `yaml:"-"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Host:                     "0.0.0.0",
		Port:                     5555,
		InitialClockSeconds:      600,
		CleanupIntervalSeconds:   30,
		FinishedRetentionMinutes: 10,
		TickInterval:             time.Second,
	}
}

// LoadConfig reads the YAML file at path when one is given, then applies
// environment overrides and defaults for anything left unset.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	cfg.applyEnv()
	cfg.sanitize()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Host = getEnv("SERVER_HOST", c.Host)
	c.Port = getEnvAsInt("SERVER_PORT", c.Port)
	if v := os.Getenv("INITIAL_CLOCK_SECONDS"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			c.InitialClockSeconds = secs
		}
	}
	c.CleanupIntervalSeconds = getEnvAsInt("CLEANUP_INTERVAL_SECONDS", c.CleanupIntervalSeconds)
	c.FinishedRetentionMinutes = getEnvAsInt("FINISHED_RETENTION_MINUTES", c.FinishedRetentionMinutes)
}

func (c *Config) sanitize() {
	d := DefaultConfig()
	if c.Host == "" {
		c.Host = d.Host
	}
	if c.Port <= 0 {
		c.Port = d.Port
	}
	if c.InitialClockSeconds <= 0 {
		c.InitialClockSeconds = d.InitialClockSeconds
	}
	if c.CleanupIntervalSeconds <= 0 {
		c.CleanupIntervalSeconds = d.CleanupIntervalSeconds
	}
	if c.FinishedRetentionMinutes <= 0 {
		c.FinishedRetentionMinutes = d.FinishedRetentionMinutes
	}
	if c.TickInterval <= 0 {
		c.TickInterval = d.TickInterval
	}
}

// Addr returns the host:port the acceptor binds.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CleanupInterval is how often the eviction janitor runs.
func (c Config) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalSeconds) * time.Second
}

// FinishedRetention is how long a finished, unattended game is kept for
// late reconnection before eviction.
func (c Config) FinishedRetention() time.Duration {
	return time.Duration(c.FinishedRetentionMinutes) * time.Minute
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}
