package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// FileConfig mirrors the optional TOML file named by CONFIG_FILE. Every field
// is optional; environment variables win over file values, file values win
// over defaults.
type FileConfig struct {
	Server struct {
		Port            string `toml:"port"`
		LogLevel        string `toml:"log_level"`
		ReadTimeout     string `toml:"read_timeout"`
		WriteTimeout    string `toml:"write_timeout"`
		IdleTimeout     string `toml:"idle_timeout"`
		ShutdownTimeout string `toml:"shutdown_timeout"`
		RequestTimeout  string `toml:"request_timeout"`
		MaxRequestSize  int    `toml:"max_request_size"`
	} `toml:"server"`

	Mongo struct {
		URI         string `toml:"uri"`
		Database    string `toml:"database"`
		ConnTimeout string `toml:"conn_timeout"`
		OpTimeout   string `toml:"op_timeout"`
	} `toml:"mongo"`

	RateLimit struct {
		Requests int    `toml:"requests"`
		Window   string `toml:"window"`
	} `toml:"rate_limit"`

	Idempotency struct {
		TTL string `toml:"ttl"`
	} `toml:"idempotency"`

	Booking struct {
		MaxPerSlot int    `toml:"max_per_slot"`
		TimeZone   string `toml:"time_zone"`
	} `toml:"booking"`

	Events struct {
		Enabled        *bool  `toml:"enabled"`
		Topic          string `toml:"topic"`
		DLQTopic       string `toml:"dlq_topic"`
		PublishTimeout string `toml:"publish_timeout"`
	} `toml:"events"`

	Metrics struct {
		Enabled *bool  `toml:"enabled"`
		Path    string `toml:"path"`
	} `toml:"metrics"`
}

// loadDotEnv populates the process environment from a local .env file when
// one exists. Variables already set are left untouched.
func loadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

func loadFile(path string) (*FileConfig, error) {
	file := &FileConfig{}
	if path == "" {
		return file, nil
	}

	meta, err := toml.DecodeFile(path, file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in config file %s: %v", path, undecoded)
	}

	return file, nil
}

func orStr(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func orNum(value, fallback int) int {
	if value != 0 {
		return value
	}
	return fallback
}

func orBool(value *bool, fallback bool) bool {
	if value != nil {
		return *value
	}
	return fallback
}

func orDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return fallback
}
