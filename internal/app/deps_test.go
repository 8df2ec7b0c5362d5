package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-splitter/internal/config"
	"doc-splitter/internal/manifest"
	"doc-splitter/internal/sink"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadEnvExplicitFile(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "")
	os.Unsetenv("CHUNK_SIZE")
	t.Setenv("INPUT_PATH", "from-shell")

	path := filepath.Join(t.TempDir(), "custom.env")
	require.NoError(t, os.WriteFile(path, []byte("CHUNK_SIZE=7\nINPUT_PATH=from-file\n"), 0o644))

	require.NoError(t, loadEnv(path))
	assert.Equal(t, "7", os.Getenv("CHUNK_SIZE"))
	// Variables already present in the environment win.
	assert.Equal(t, "from-shell", os.Getenv("INPUT_PATH"))
}

func TestLoadEnvMissingFiles(t *testing.T) {
	assert.Error(t, loadEnv(filepath.Join(t.TempDir(), "missing.env")))

	// No .env in the working directory is not an error.
	t.Chdir(t.TempDir())
	assert.NoError(t, loadEnv(""))
}

func TestBuildOptionalBackendsDisabled(t *testing.T) {
	cfg := config.Config{StoreProvider: "none", QueueProvider: "none", ManifestProvider: "memory"}

	st, err := buildStore(context.Background(), cfg, discard())
	require.NoError(t, err)
	assert.Nil(t, st)

	q, err := buildQueue(cfg, discard())
	require.NoError(t, err)
	assert.Nil(t, q)

	assert.IsType(t, &manifest.Memory{}, buildManifest(cfg, discard()))
}

func TestBuildBackendErrors(t *testing.T) {
	_, err := buildStore(context.Background(), config.Config{StoreProvider: "mysql"}, discard())
	assert.ErrorContains(t, err, "invalid STORE_PROVIDER")

	_, err = buildQueue(config.Config{QueueProvider: "kafka"}, discard())
	assert.ErrorContains(t, err, "invalid QUEUE_PROVIDER")
}

func TestBuildManifestFallsBackWhenRedisUnreachable(t *testing.T) {
	cfg := config.Config{ManifestProvider: "redis", RedisAddr: "127.0.0.1:1", ManifestKey: "k"}
	assert.IsType(t, &manifest.Memory{}, buildManifest(cfg, discard()))
}

var buildKeys = []string{
	"INPUT_PATH", "OUTPUT_PATH", "CHUNK_SIZE", "EXCLUDE_FOLDERS", "EXCLUDE_FILES", "MAX_DEPTH",
	"LOG_LEVEL", "LOG_FORMAT", "STORE_PROVIDER", "DB_URL", "DB_TABLE", "QUEUE_PROVIDER",
	"QUEUE_URL", "QUEUE_SUBJECT", "MANIFEST_PROVIDER", "REDIS_ADDR", "REDIS_PASSWORD",
	"MANIFEST_KEY", "MANIFEST_TTL",
}

// cleanEnv runs the test from an empty directory with no config variables
// set and INPUT_PATH pointing at an existing directory.
func cleanEnv(t *testing.T) string {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, k := range buildKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	in := t.TempDir()
	t.Setenv("INPUT_PATH", in)
	t.Setenv("OUTPUT_PATH", filepath.Join(t.TempDir(), "out"))
	t.Setenv("LOG_LEVEL", "error")
	return in
}

func TestBuildDefaults(t *testing.T) {
	cleanEnv(t)

	deps, err := Build(context.Background(), Options{LogLevel: "debug"})
	require.NoError(t, err)
	defer deps.Close()

	assert.Equal(t, "debug", deps.Config.LogLevel)
	require.Len(t, deps.Sinks, 1)
	assert.IsType(t, &sink.Dir{}, deps.Sinks[0])
	assert.IsType(t, &manifest.Memory{}, deps.Manifest)
	_, ok := deps.Registry.Get("x.md")
	assert.True(t, ok)
}

func TestBuildValidatesBeforeConnecting(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{
			name: "zero chunk size with nats configured",
			env: map[string]string{
				"CHUNK_SIZE":     "0",
				"QUEUE_PROVIDER": "nats",
				"QUEUE_URL":      "nats://127.0.0.1:1",
			},
			wantErr: config.ErrChunkSize,
		},
		{
			name: "missing input with postgres configured",
			env: map[string]string{
				"INPUT_PATH":     "does-not-exist",
				"STORE_PROVIDER": "postgres",
				"DB_URL":         "postgres://127.0.0.1:1/none",
			},
			wantErr: config.ErrInputMissing,
		},
		{
			name:    "redis without address",
			env:     map[string]string{"MANIFEST_PROVIDER": "redis"},
			wantErr: config.ErrInvalid,
		},
		{
			name:    "nats without url",
			env:     map[string]string{"QUEUE_PROVIDER": "nats"},
			wantErr: config.ErrInvalid,
		},
		{
			name:    "unknown log level",
			env:     map[string]string{"LOG_LEVEL": "verbose"},
			wantErr: config.ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Build(context.Background(), Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, config.ErrInvalid)
			assert.NotContains(t, err.Error(), "failed to initialize")
		})
	}
}

func TestBuildLogLevelFlagIsValidated(t *testing.T) {
	cleanEnv(t)

	_, err := Build(context.Background(), Options{LogLevel: "loud"})
	assert.ErrorIs(t, err, config.ErrInvalid)
}
