package manifest

import (
	"context"
	"sync"
)

// Manifest records which source file owns each output name.
type Manifest interface {
	// Claim assigns name to source. If name was already owned by a different
	// source, that previous owner is returned; otherwise "". The new owner
	// replaces the old one either way.
	Claim(ctx context.Context, name, source string) (string, error)

	// Close releases any backing connection.
	Close() error
}

// Memory is a per-process manifest. It is the default and the fallback
// when Redis is unavailable.
type Memory struct {
	mu     sync.Mutex
	owners map[string]string
}

func NewMemory() *Memory {
	return &Memory{owners: make(map[string]string)}
}

func (m *Memory) Claim(_ context.Context, name, source string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.owners[name]
	m.owners[name] = source
	if ok && prev != source {
		return prev, nil
	}
	return "", nil
}

func (m *Memory) Close() error { return nil }
