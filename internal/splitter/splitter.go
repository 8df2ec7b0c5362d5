package splitter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"doc-splitter/internal/chunker"
	"doc-splitter/internal/config"
	"doc-splitter/internal/handler"
	"doc-splitter/internal/manifest"
	"doc-splitter/internal/sink"
)

// ErrInvalidConfig wraps the validation failure that aborts a run.
var ErrInvalidConfig = config.ErrInvalid

// Stats summarises a run.
type Stats struct {
	Directories   int // directories listed
	Processed     int // files handed to a handler
	Excluded      int // files and directories skipped by exclusion rules
	Unmatched     int // files with no handler
	Failed        int // files whose handler returned an error
	Empty         int // files that produced no chunks
	ChunksWritten int
	WriteErrors   int
	Collisions    int
}

// Splitter walks the input tree and writes chunks to every sink.
// It runs on a single goroutine.
type Splitter struct {
	cfg      config.Config
	registry *handler.Registry
	sinks    []sink.Sink
	manifest manifest.Manifest
	log      *slog.Logger
	stats    Stats
}

func New(cfg config.Config, registry *handler.Registry, sinks []sink.Sink, man manifest.Manifest, log *slog.Logger) *Splitter {
	if man == nil {
		man = manifest.NewMemory()
	}
	return &Splitter{
		cfg:      cfg,
		registry: registry,
		sinks:    sinks,
		manifest: man,
		log:      log,
	}
}

// Run validates the configuration and processes the whole input tree.
// Only a validation failure is returned as an error; everything that goes
// wrong during traversal is logged, counted and skipped.
func (s *Splitter) Run(ctx context.Context) (Stats, error) {
	s.stats = Stats{}
	s.log.Info("doc chunk splitter",
		"input", s.cfg.InputPath,
		"output", s.cfg.OutputPath,
		"chunk_size", s.cfg.ChunkSize,
		"exclude_folders", s.cfg.ExcludeFolders,
		"exclude_files", s.cfg.ExcludeFiles,
	)

	if err := s.cfg.Validate(); err != nil {
		s.log.Error("configuration validation failed", "err", err)
		return s.stats, err
	}

	s.log.Info("processing files")
	s.processDirectory(ctx, s.cfg.InputPath, 0, nil)

	s.log.Info("processing complete",
		"directories", s.stats.Directories,
		"processed", s.stats.Processed,
		"excluded", s.stats.Excluded,
		"unmatched", s.stats.Unmatched,
		"failed", s.stats.Failed,
		"empty", s.stats.Empty,
		"chunks", s.stats.ChunksWritten,
		"write_errors", s.stats.WriteErrors,
		"collisions", s.stats.Collisions,
	)
	return s.stats, nil
}

// processDirectory visits dir's entries in name order. ancestors holds the
// directories on the current path and guards against symlink cycles.
func (s *Splitter) processDirectory(ctx context.Context, dir string, depth int, ancestors []fs.FileInfo) {
	if s.cfg.IsExcluded(dir) {
		s.log.Info("skipping excluded directory", "path", dir)
		s.stats.Excluded++
		return
	}

	info, err := os.Stat(dir)
	if err != nil {
		s.log.Error("error processing directory", "path", dir, "err", err)
		return
	}
	for _, a := range ancestors {
		if os.SameFile(a, info) {
			s.log.Warn("skipping directory cycle", "path", dir)
			return
		}
	}
	if depth > s.cfg.MaxDepth {
		s.log.Warn("skipping directory beyond max depth", "path", dir, "max_depth", s.cfg.MaxDepth)
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			s.log.Error("permission denied", "path", dir, "err", err)
		} else {
			s.log.Error("error processing directory", "path", dir, "err", err)
		}
		return
	}
	s.stats.Directories++
	ancestors = append(ancestors, info)

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		// Stat follows symlinks; dangling links and special files are ignored.
		fi, err := os.Stat(path)
		if err != nil {
			s.log.Debug("ignoring unreadable entry", "path", path, "err", err)
			continue
		}
		switch {
		case fi.Mode().IsRegular():
			s.processFile(ctx, path)
		case fi.IsDir():
			s.processDirectory(ctx, path, depth+1, ancestors)
		}
	}
}

func (s *Splitter) processFile(ctx context.Context, path string) {
	if s.cfg.IsExcluded(path) {
		s.log.Info("skipping excluded file", "path", path)
		s.stats.Excluded++
		return
	}

	h, ok := s.registry.Get(path)
	if !ok {
		s.log.Info("skipping unmatched file", "path", path)
		s.stats.Unmatched++
		return
	}

	s.log.Info("processing", "path", path, "handler", h.Name())
	s.stats.Processed++

	chunks, err := h.Process(path, s.cfg.ChunkSize)
	if err != nil {
		s.log.Error("error processing file", "path", path, "err", err)
		s.log.Info("no chunks created", "path", path)
		s.stats.Failed++
		return
	}
	if len(chunks) == 0 {
		s.log.Info("no chunks created", "path", path)
		s.stats.Empty++
		return
	}

	written := s.saveChunks(ctx, path, chunks)
	s.log.Info("created chunks", "path", path, "count", len(chunks), "written", written)
}

// saveChunks writes every chunk to every sink and returns how many chunks
// were written without error.
func (s *Splitter) saveChunks(ctx context.Context, path string, chunks []string) int {
	written := 0
	for i, text := range chunks {
		n := i + 1
		name := OutputFilename(s.cfg.InputPath, path, n)

		if prev, err := s.manifest.Claim(ctx, name, path); err != nil {
			s.log.Warn("manifest claim failed", "name", name, "err", err)
		} else if prev != "" {
			s.log.Warn("output name collision, overwriting", "name", name, "previous", prev, "source", path)
			s.stats.Collisions++
		}

		c := sink.Chunk{
			Source: path,
			Name:   name,
			Index:  n,
			Total:  len(chunks),
			Lines:  len(chunker.SplitLines(text)),
			Text:   text,
		}
		if err := s.writeChunk(ctx, c); err != nil {
			s.log.Error("error saving chunk", "chunk", n, "name", name, "err", err)
			s.stats.WriteErrors++
			continue
		}
		s.log.Info("saved chunk", "chunk", fmt.Sprintf("%d/%d", n, len(chunks)), "name", name)
		s.stats.ChunksWritten++
		written++
	}
	return written
}

// writeChunk hands c to every sink even when an earlier one fails.
func (s *Splitter) writeChunk(ctx context.Context, c sink.Chunk) error {
	var errs []error
	for _, sk := range s.sinks {
		if err := sk.Write(ctx, c); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sk.Name(), err))
		}
	}
	return errors.Join(errs...)
}
