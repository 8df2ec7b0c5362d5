package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalid wraps every Validate failure.
	ErrInvalid      = errors.New("configuration validation failed")
	ErrInputMissing = errors.New("input path does not exist")
	ErrInputNotDir  = errors.New("input path is not a directory")
	ErrChunkSize    = errors.New("chunk size must be positive")
)

// Config holds runtime configuration. It is built once by Load and passed by
// value; nothing mutates it after construction.
type Config struct {
	// Splitting
	InputPath      string   `env:"INPUT_PATH" envDefault:"input-docs" validate:"required"`
	OutputPath     string   `env:"OUTPUT_PATH" envDefault:"output-chunks" validate:"required"`
	ChunkSize      int      `env:"CHUNK_SIZE" envDefault:"100"`
	ExcludeFolders []string `env:"EXCLUDE_FOLDERS" envSeparator:","`
	ExcludeFiles   []string `env:"EXCLUDE_FILES" envSeparator:","`
	MaxDepth       int      `env:"MAX_DEPTH" envDefault:"64" validate:"gt=0"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"none" validate:"oneof=none postgres"` // "postgres" mirrors chunks into a table
	DBURL         string `env:"DB_URL" validate:"required_if=StoreProvider postgres"`
	DBTable       string `env:"DB_TABLE" envDefault:"chunks" validate:"required"`

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"none" validate:"oneof=none nats"` // "nats" publishes one event per chunk
	QueueURL      string `env:"QUEUE_URL" validate:"required_if=QueueProvider nats"`
	QueueSubject  string `env:"QUEUE_SUBJECT" envDefault:"chunks.created" validate:"required"`

	// Manifest
	ManifestProvider string        `env:"MANIFEST_PROVIDER" envDefault:"memory" validate:"oneof=memory redis"`
	RedisAddr        string        `env:"REDIS_ADDR" validate:"required_if=ManifestProvider redis"`
	RedisPassword    string        `env:"REDIS_PASSWORD"`
	ManifestKey      string        `env:"MANIFEST_KEY" envDefault:"doc-splitter:manifest"`
	ManifestTTL      time.Duration `env:"MANIFEST_TTL" envDefault:"24h"`
}

// Load reads configuration from environment variables with defaults.
// The log level is lower-cased; exclusion lists are trimmed and empty
// entries dropped.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.ExcludeFolders = cleanList(cfg.ExcludeFolders)
	cfg.ExcludeFiles = cleanList(cfg.ExcludeFiles)
	return cfg, nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate reports the first problem that should stop a run before any
// file is touched or backend contacted. The error wraps ErrInvalid.
func (c Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (c Config) validate() error {
	info, err := os.Stat(c.InputPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %q", ErrInputMissing, c.InputPath)
		}
		return fmt.Errorf("stat input path %q: %w", c.InputPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %q", ErrInputNotDir, c.InputPath)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w, got %d", ErrChunkSize, c.ChunkSize)
	}
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: failed %q check (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return err
	}
	return nil
}

// IsExcluded reports whether path should be skipped: an ancestor directory
// is an excluded folder, the path is itself an excluded folder, or its base
// name is an excluded file.
func (c Config) IsExcluded(path string) bool {
	clean := filepath.Clean(path)

	dir := filepath.Dir(clean)
	for {
		if c.excludedFolder(filepath.Base(dir)) {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	name := filepath.Base(clean)
	if c.excludedFolder(name) {
		if info, err := os.Stat(clean); err == nil && info.IsDir() {
			return true
		}
	}
	return slices.Contains(c.ExcludeFiles, name)
}

func (c Config) excludedFolder(name string) bool {
	if name == "." || name == string(filepath.Separator) {
		return false
	}
	return slices.Contains(c.ExcludeFolders, name)
}
