package ids

import (
	"strings"
	"testing"
)

func TestNewProducesUniqueSortedIDs(t *testing.T) {
	seen := make(map[string]bool)
	var prev string
	for i := 0; i < 1000; i++ {
		id := New()
		if len(id) != 26 {
			t.Fatalf("unexpected length %d for %q", len(id), id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		if prev != "" && id <= prev {
			t.Fatalf("ids not monotonic: %q after %q", id, prev)
		}
		prev = id
	}
}

func TestNewWithPrefix(t *testing.T) {
	id := NewWithPrefix("Intake")
	if !strings.HasPrefix(id, "intake_") {
		t.Fatalf("id = %q", id)
	}
	if got := NewWithPrefix("  "); strings.Contains(got, "_") {
		t.Fatalf("blank prefix should yield a bare id, got %q", got)
	}
}
