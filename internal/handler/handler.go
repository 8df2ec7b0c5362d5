package handler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"doc-splitter/internal/chunker"
)

var (
	ErrInvalidUTF8 = errors.New("file is not valid UTF-8")
	ErrChunkSize   = errors.New("chunk size must be positive")
)

// Handler recognises a file type and splits files of that type into chunks.
type Handler interface {
	Name() string
	CanHandle(path string) bool
	Process(path string, chunkSize int) ([]string, error)
}

// Ext returns the final extension of path including the dot. Dot-files such
// as ".md" and names ending in a bare dot have no extension.
func Ext(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == base || ext == "." {
		return ""
	}
	return ext
}

// lineHandler chunks any UTF-8 text file by line count.
type lineHandler struct {
	name string
	ext  string
}

// Markdown handles ".md" files.
func Markdown() Handler { return lineHandler{name: "markdown", ext: ".md"} }

// JSON handles ".json" files. Chunks are cut on line boundaries and are not
// guaranteed to be valid JSON on their own.
func JSON() Handler { return lineHandler{name: "json", ext: ".json"} }

func (h lineHandler) Name() string { return h.name }

func (h lineHandler) CanHandle(path string) bool {
	return strings.EqualFold(Ext(path), h.ext)
}

func (h lineHandler) Process(path string, chunkSize int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrChunkSize, chunkSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidUTF8)
	}
	chunks := chunker.ChunkLines(string(content), chunkSize)
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Text)
	}
	return out, nil
}
