package sink

import (
	"context"
	"os"
	"path/filepath"
)

// Chunk is one piece of a source file ready to be persisted.
type Chunk struct {
	Source string // source file path as visited
	Name   string // flat output file name
	Index  int    // 1-based
	Total  int
	Lines  int
	Text   string
}

// Sink persists chunks. Write is called once per chunk in traversal order.
type Sink interface {
	Name() string
	Write(ctx context.Context, c Chunk) error
	Close() error
}

// Dir writes each chunk as a file directly under a single output directory.
type Dir struct {
	root    string
	dirPerm os.FileMode
	perm    os.FileMode
}

// NewDir returns a sink rooted at root. The directory is created on the
// first write.
func NewDir(root string) *Dir {
	return &Dir{root: root, dirPerm: 0o755, perm: 0o644}
}

var _ Sink = (*Dir)(nil)

func (d *Dir) Name() string { return "dir" }

// Root returns the output directory.
func (d *Dir) Root() string { return d.root }

func (d *Dir) Write(_ context.Context, c Chunk) error {
	if err := os.MkdirAll(d.root, d.dirPerm); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(d.root, c.Name), []byte(c.Text), d.perm)
}

func (d *Dir) Close() error { return nil }
