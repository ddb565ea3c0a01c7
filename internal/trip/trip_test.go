package trip

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"gotravel/internal/catalog"
	"gotravel/internal/itinerary"
	"gotravel/internal/metrics"
	"gotravel/internal/scoring"
)

const sample = `
city: Paris
vibe: art
start_date: "2026-03-01"
weather: {main: Clear, temp: 18}
places:
  - place_id: louvre
    name: Louvre
    category: museum
    location: {lat: 48.8606, lng: 2.3376}
    rating: 4.7
    user_ratings_total: 250000
    opening_hours:
      0: [{open: 540, close: 1080}]
  - name: Jardin du Luxembourg
    category: nature
    types: [park]
    location: {lat: 48.8462, lng: 2.3372}
    rating: 4.8
  - name: Somewhere
    category: cafe
    rating: 1.0
`

func testPipeline() *Pipeline {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := itinerary.DefaultConfig()
	cfg.MaxIterations = 50
	return &Pipeline{
		Scorer:         scoring.New(catalog.Default()),
		Router:         itinerary.NewRouter(catalog.Default(), cfg, itinerary.WithLogger(log)),
		DayStartMinute: cfg.DayStartMinute,
		Weekday:        time.Monday,
		Log:            log,
	}
}

func TestLoad(t *testing.T) {
	f, err := Load(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.City != "Paris" || len(f.Places) != 3 || f.Weather == nil || f.Weather.TempC != 18 {
		t.Fatalf("unexpected trip: %+v", f)
	}
	h := f.Places[0].Hours
	if h == nil {
		t.Fatalf("opening hours not decoded")
	}
	if open, closes, ok := h.Envelope(time.Sunday); !ok || open != 540 || closes != 1080 {
		t.Fatalf("sunday envelope: %d %d %v", open, closes, ok)
	}
	if f.Places[2].Location != nil {
		t.Fatalf("unlocated place gained coordinates")
	}
	// 2026-03-01 is a Sunday
	if got := f.Weekday(time.Monday); got != time.Sunday {
		t.Fatalf("weekday: got %s", got)
	}
}

func TestLoadJSONOpeningHours(t *testing.T) {
	body := `{"city":"Rome","places":[{"name":"Musei Vaticani","category":"museum",
		"location":{"lat":41.9065,"lng":12.4536},
		"opening_hours":{"1":[{"open":540,"close":1080}],"saturday":[{"open":600,"close":840}]}}]}`
	f, err := Load(strings.NewReader(body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	h := f.Places[0].Hours
	if h == nil {
		t.Fatalf("opening hours not decoded")
	}
	if open, closes, ok := h.Envelope(time.Monday); !ok || open != 540 || closes != 1080 {
		t.Fatalf("monday envelope: %d %d %v", open, closes, ok)
	}
	if open, closes, ok := h.Envelope(time.Saturday); !ok || open != 600 || closes != 840 {
		t.Fatalf("saturday envelope: %d %d %v", open, closes, ok)
	}
	if _, _, ok := h.Envelope(time.Sunday); ok {
		t.Fatalf("sunday should be unknown")
	}
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"empty":     "",
		"bad date":  "start_date: tomorrow\n",
		"weekday":   "start_weekday: 9\n",
		"latitude":  "places:\n  - name: x\n    location: {lat: 123, lng: 0}\n",
		"not yaml":  "places: [",
		"neg days":  "days: -1\n",
		"hours day": "places:\n  - name: x\n    opening_hours: {\"7\": [{open: 540, close: 600}]}\n",
		"hours key": "places:\n  - name: x\n    opening_hours: {someday: [{open: 540, close: 600}]}\n",
	}
	for name, body := range cases {
		if _, err := Load(strings.NewReader(body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestRun(t *testing.T) {
	f, err := Load(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	scored := testutil.ToFloat64(metrics.PlacesScored)
	filtered := testutil.ToFloat64(metrics.PlacesFiltered)

	doc, plan, err := testPipeline().Run(context.Background(), f, 2, 5*time.Second)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(doc.Days) != 2 || doc.Trip.NumDays != 2 || doc.Trip.EndDate != "2026-03-02" {
		t.Fatalf("unexpected document: %+v", doc.Trip)
	}
	// the low rated unlocated cafe is filtered out
	if plan.Routable != 2 || doc.Trip.TotalPlaces != 2 || doc.Trip.PlacesDropped != 1 {
		t.Fatalf("routable=%d places=%d dropped=%d", plan.Routable, doc.Trip.TotalPlaces, doc.Trip.PlacesDropped)
	}
	if got := testutil.ToFloat64(metrics.PlacesScored); got != scored+3 {
		t.Fatalf("scored counter: got %v want %v", got, scored+3)
	}
	if got := testutil.ToFloat64(metrics.PlacesFiltered); got != filtered+1 {
		t.Fatalf("filtered counter: got %v want %v", got, filtered+1)
	}
}

func TestRunTripDaysWin(t *testing.T) {
	f := &File{City: "Paris", Days: 3}
	doc, _, err := testPipeline().Run(context.Background(), f, 1, time.Second)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(doc.Days) != 3 {
		t.Fatalf("expected trip days to win, got %d", len(doc.Days))
	}
}

func TestRunInvalidDays(t *testing.T) {
	doc, _, err := testPipeline().Run(context.Background(), &File{City: "Paris"}, 0, time.Second)
	if !errors.Is(err, itinerary.ErrInvalidDays) {
		t.Fatalf("expected ErrInvalidDays, got %v", err)
	}
	if doc.Success || doc.Error == "" {
		t.Fatalf("expected failure document, got %+v", doc)
	}
}

func TestRunAllMatchesSequential(t *testing.T) {
	load := func() *File {
		f, err := Load(strings.NewReader(sample))
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		return f
	}
	p := testPipeline()
	want, _, err := p.Run(context.Background(), load(), 2, 5*time.Second)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	files := []*File{load(), load(), load(), load()}
	docs, err := p.RunAll(context.Background(), files, 2, 5*time.Second, 2)
	if err != nil {
		t.Fatalf("run all: %v", err)
	}
	for i, d := range docs {
		if d.Trip != want.Trip || len(d.Days) != len(want.Days) {
			t.Fatalf("trip %d differs: %+v vs %+v", i, d.Trip, want.Trip)
		}
		for j := range d.Days {
			if len(d.Days[j].Places) != len(want.Days[j].Places) || d.Days[j].Summary != want.Days[j].Summary {
				t.Fatalf("trip %d day %d differs", i, j+1)
			}
		}
	}
}

func TestRunAllReportsFailure(t *testing.T) {
	files := []*File{{City: "Paris", Days: 1}, {City: "Nowhere"}}
	docs, err := testPipeline().RunAll(context.Background(), files, 0, time.Second, 0)
	if !errors.Is(err, itinerary.ErrInvalidDays) {
		t.Fatalf("expected ErrInvalidDays, got %v", err)
	}
	if !docs[0].Success || docs[1].Success {
		t.Fatalf("unexpected success flags: %v %v", docs[0].Success, docs[1].Success)
	}
}
