package manifest

import (
	"context"
	"testing"
)

// TestMemoryClaim verifies ownership tracking and collision reporting.
func TestMemoryClaim(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	prev, err := m.Claim(ctx, "a-b-1.md", "in/a/b.md")
	if err != nil || prev != "" {
		t.Fatalf("first claim: expected no owner, got %q (%v)", prev, err)
	}

	// Same source claiming again is not a collision.
	prev, err = m.Claim(ctx, "a-b-1.md", "in/a/b.md")
	if err != nil || prev != "" {
		t.Fatalf("reclaim: expected no owner, got %q (%v)", prev, err)
	}

	prev, err = m.Claim(ctx, "a-b-1.md", "in/a-b.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prev != "in/a/b.md" {
		t.Errorf("expected previous owner in/a/b.md, got %q", prev)
	}

	// Last writer now owns the name.
	prev, _ = m.Claim(ctx, "a-b-1.md", "in/a/b.md")
	if prev != "in/a-b.md" {
		t.Errorf("expected previous owner in/a-b.md, got %q", prev)
	}

	if err := m.Close(); err != nil {
		t.Errorf("Expected no error on Close, got %v", err)
	}
}
