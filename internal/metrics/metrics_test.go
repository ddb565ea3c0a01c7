package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterDefaultIsIdempotent(t *testing.T) {
	RegisterDefault()
	RegisterDefault()
	before := testutil.ToFloat64(Solves.WithLabelValues("solved"))
	Solves.WithLabelValues("solved").Inc()
	if got := testutil.ToFloat64(Solves.WithLabelValues("solved")); got != before+1 {
		t.Fatalf("solves: got %v want %v", got, before+1)
	}
}

func TestWriteTextfile(t *testing.T) {
	RegisterDefault()
	PlacesScored.Add(3)
	path := filepath.Join(t.TempDir(), "planner.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "itinerary_places_scored_total") {
		t.Fatalf("textfile missing counter:\n%s", b)
	}
}
