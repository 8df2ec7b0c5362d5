package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"doc-splitter/internal/config"
	"doc-splitter/internal/handler"
	"doc-splitter/internal/logger"
	"doc-splitter/internal/manifest"
	"doc-splitter/internal/sink"
)

// Options carries command-line overrides.
type Options struct {
	EnvFile  string // explicit dotenv file; must exist when set
	LogLevel string // overrides LOG_LEVEL when set
}

// Deps bundles the runtime dependencies of a run.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Registry *handler.Registry
	Sinks    []sink.Sink
	Manifest manifest.Manifest
}

// Build loads env and config, validates it, then connects the configured
// sinks. A validation error wraps config.ErrInvalid and has already been
// logged.
func Build(ctx context.Context, opts Options) (Deps, error) {
	if err := loadEnv(opts.EnvFile); err != nil {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return Deps{}, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(opts.LogLevel)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Nothing below may touch a backend until the configuration is known good.
	if err := cfg.Validate(); err != nil {
		log.Error("configuration validation failed",
			"input", cfg.InputPath,
			"chunk_size", cfg.ChunkSize,
			"err", err,
		)
		return Deps{}, err
	}

	deps := Deps{
		Config:   cfg,
		Log:      log,
		Registry: handler.Default(),
		Sinks:    []sink.Sink{sink.NewDir(cfg.OutputPath)},
	}

	st, err := buildStore(ctx, cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	if st != nil {
		deps.Sinks = append(deps.Sinks, st)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		deps.Close()
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	if q != nil {
		deps.Sinks = append(deps.Sinks, q)
	}
	deps.Manifest = buildManifest(cfg, log)
	return deps, nil
}

// Close releases every sink and the manifest.
func (d Deps) Close() error {
	var errs []error
	for _, s := range d.Sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", s.Name(), err))
		}
	}
	if d.Manifest != nil {
		if err := d.Manifest.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close manifest: %w", err))
		}
	}
	return errors.Join(errs...)
}

// loadEnv reads a dotenv file without overriding variables already set.
// A missing default ".env" is fine; a missing explicit file is not.
func loadEnv(path string) error {
	if path != "" {
		return godotenv.Load(path)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func buildStore(ctx context.Context, cfg config.Config, log *slog.Logger) (sink.Sink, error) {
	switch cfg.StoreProvider {
	case "", "none":
		return nil, nil
	case "postgres":
		db, err := sink.NewPostgres(ctx, cfg.DBURL, cfg.DBTable)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store", "table", cfg.DBTable)
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid options: none, postgres)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (sink.Sink, error) {
	switch cfg.QueueProvider {
	case "", "none":
		return nil, nil
	case "nats":
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue", "subject", cfg.QueueSubject)
		return sink.NewNATS(log, nc, cfg.QueueSubject), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid options: none, nats)", cfg.QueueProvider)
	}
}

// buildManifest never fails: an unreachable Redis degrades to the
// in-memory manifest.
func buildManifest(cfg config.Config, log *slog.Logger) manifest.Manifest {
	if cfg.ManifestProvider != "redis" {
		return manifest.NewMemory()
	}
	m, err := manifest.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.ManifestKey, cfg.ManifestTTL)
	if err != nil {
		log.Warn("redis unavailable, using in-memory manifest", "addr", cfg.RedisAddr, "err", err)
		return manifest.NewMemory()
	}
	log.Info("using Redis manifest", "key", cfg.ManifestKey)
	return m
}
