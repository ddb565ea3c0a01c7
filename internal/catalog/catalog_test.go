package catalog

import (
	"strings"
	"testing"
)

func TestDefaultLookups(t *testing.T) {
	tb := Default()
	if tb != Default() {
		t.Fatal("Default should return a shared instance")
	}
	if got := tb.VisitMinutes("Museum"); got != 120 {
		t.Errorf("museum visit = %d, want 120", got)
	}
	if got := tb.VisitMinutes("cafe"); got != 30 {
		t.Errorf("cafe visit = %d, want 30", got)
	}
	if got := tb.VisitMinutes("spa"); got != 60 {
		t.Errorf("unknown visit = %d, want default 60", got)
	}
	w, ok := tb.Window("dinner")
	if !ok || w.Earliest != 1080 || w.Latest != 1260 {
		t.Errorf("dinner window = %+v, %v", w, ok)
	}
	if _, ok := tb.Window("spa"); ok {
		t.Error("unknown category should have no window")
	}
}

func TestIsOutdoor(t *testing.T) {
	tb := Default()
	if !tb.IsOutdoor("tourist_attraction", "Park") {
		t.Error("park should be outdoor")
	}
	if !tb.IsOutdoor("nature") {
		t.Error("nature category should be outdoor")
	}
	if tb.IsOutdoor("museum", "aquarium") {
		t.Error("museum should be indoor")
	}
	if tb.IsOutdoor() {
		t.Error("no labels should be indoor")
	}
}

func TestLoadOverlay(t *testing.T) {
	doc := `
default_visit_minutes: 50
visit_minutes:
  Spa: 100
  museum: 90
windows:
  spa: {earliest: 600, latest: 1000}
`
	tb, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := tb.VisitMinutes("spa"); got != 100 {
		t.Errorf("spa = %d, want 100", got)
	}
	if got := tb.VisitMinutes("museum"); got != 90 {
		t.Errorf("museum = %d, want 90", got)
	}
	if got := tb.VisitMinutes("unknown"); got != 50 {
		t.Errorf("default = %d, want 50", got)
	}
	if w, ok := tb.Window("spa"); !ok || w.Earliest != 600 {
		t.Errorf("spa window = %+v, %v", w, ok)
	}
	if !tb.IsOutdoor("beach") {
		t.Error("outdoor defaults should be kept")
	}
	if Default().VisitMinutes("museum") != 120 {
		t.Fatal("overlay must not mutate the defaults")
	}
}

func TestLoadEmptyAndInvalid(t *testing.T) {
	tb, err := Load(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty overlay: %v", err)
	}
	if tb.VisitMinutes("museum") != 120 {
		t.Error("empty overlay should keep defaults")
	}
	if _, err := Load(strings.NewReader("windows:\n  x: {earliest: 900, latest: 800}\n")); err == nil {
		t.Error("inverted window should fail")
	}
	if _, err := Load(strings.NewReader("visit_minutes:\n  x: 0\n")); err == nil {
		t.Error("zero visit should fail")
	}
}

func TestOutdoorReplace(t *testing.T) {
	tb, err := Load(strings.NewReader("outdoor: [rooftop]\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !tb.IsOutdoor("Rooftop") || tb.IsOutdoor("park") {
		t.Error("outdoor list should replace defaults")
	}
}
