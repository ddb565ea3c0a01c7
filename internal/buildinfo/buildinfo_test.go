package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	oldV, oldC, oldB := Version, Commit, BuiltAt
	t.Cleanup(func() { Version, Commit, BuiltAt = oldV, oldC, oldB })

	Version, Commit, BuiltAt = "1.2.0", "0123456789abcdef", "2026-01-02"
	got := String()
	want := "planner 1.2.0 (0123456789ab) built 2026-01-02"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if Info()["commit"] != Commit {
		t.Fatalf("explicit commit should win: %v", Info())
	}
}

func TestStringDefaults(t *testing.T) {
	if !strings.HasPrefix(String(), "planner ") {
		t.Fatalf("unexpected version line %q", String())
	}
}
