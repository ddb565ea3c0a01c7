package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"gotravel/internal/geo"
	"gotravel/internal/itinerary"
	"gotravel/internal/model"
)

func samplePlan() *itinerary.Plan {
	rating, reviews := 4.6, 1200
	louvre := &model.CandidatePlace{
		ID: "louvre", Name: "Louvre", Category: "museum", Address: "Rue de Rivoli",
		Location: &geo.Point{Lat: 48.8606, Lng: 2.3376}, Rating: &rating, ReviewCount: &reviews, Score: 87.46,
	}
	days := model.EmptyDays(2)
	days[0].Stops = []model.RouteStop{
		{Place: louvre, PlaceID: "louvre", Name: "Louvre", Category: "museum", Why: "art", Arrival: 15, Departure: 135, Duration: 120, Score: 87.46},
		{PlaceID: "place_2", Name: "Corner", Arrival: 150, Departure: 210, Duration: 60, Score: 41.04},
	}
	days[0].TravelMinutes, days[0].VisitMinutes, days[0].Score = 40, 180, 128.5
	origin := geo.Point{Lat: 48.8566, Lng: 2.3522}
	return &itinerary.Plan{ID: "plan-1", Days: days, Origin: &origin, State: itinerary.StateSolved}
}

func TestFormat(t *testing.T) {
	doc := Format(Trip{City: "Paris", Vibe: "art", StartDate: "2026-02-27", Candidates: 5}, samplePlan(), 540)
	if !doc.Success || doc.PlanID != "plan-1" || doc.Hotel == nil {
		t.Fatalf("unexpected header: %+v", doc)
	}
	trip := doc.Trip
	if trip.NumDays != 2 || trip.StartDate != "2026-02-27" || trip.EndDate != "2026-02-28" {
		t.Fatalf("trip dates: %+v", trip)
	}
	if trip.TotalPlaces != 2 || trip.PlacesDropped != 3 || trip.TotalScore != 128.5 {
		t.Fatalf("trip totals: %+v", trip)
	}
	d1 := doc.Days[0]
	if d1.Date != "2026-02-27" || doc.Days[1].Date != "2026-02-28" {
		t.Fatalf("day dates: %q %q", d1.Date, doc.Days[1].Date)
	}
	first := d1.Places[0]
	if first.Time.Arrival != "9:15 AM" || first.Time.Departure != "11:15 AM" || first.Time.DurationMinutes != 120 {
		t.Fatalf("time slot: %+v", first.Time)
	}
	if first.Score != 87.5 || first.Coordinates.Lat != 48.8606 || *first.ReviewCount != 1200 || first.Address != "Rue de Rivoli" {
		t.Fatalf("place: %+v", first)
	}
	if d1.Places[1].Category != "other" {
		t.Fatalf("missing category should render as other, got %q", d1.Places[1].Category)
	}
	s := d1.Summary
	if s.NumPlaces != 2 || s.TotalTimeMinutes != 220 || s.StartTime != "9:15 AM" || s.EndTime != "12:30 PM" {
		t.Fatalf("summary: %+v", s)
	}
	if e := doc.Days[1]; len(e.Places) != 0 || e.Summary.StartTime != "" {
		t.Fatalf("empty day: %+v", e)
	}
}

func TestFormatWithoutDate(t *testing.T) {
	for _, date := range []string{"", "next tuesday"} {
		doc := Format(Trip{City: "Paris", StartDate: date}, samplePlan(), 540)
		if doc.Trip.StartDate != "" || doc.Trip.EndDate != "" || doc.Days[0].Date != "" {
			t.Fatalf("%q: expected no dates, got %+v", date, doc.Trip)
		}
	}
}

func TestFailureAndWrite(t *testing.T) {
	doc := Failure(Trip{City: "Paris"}, 3, errors.New("no places"))
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["success"] != false || got["error"] != "no places" {
		t.Fatalf("unexpected failure document: %s", buf.String())
	}
	if days, ok := got["days"].([]any); !ok || len(days) != 0 {
		t.Fatalf("days should be an empty list: %s", buf.String())
	}
}
