// Package response renders a scheduled plan as the itinerary document handed
// to clients.
package response

import (
	"encoding/json"
	"io"
	"math"
	"time"

	"gotravel/internal/geo"
	"gotravel/internal/itinerary"
	"gotravel/internal/model"
)

const dateLayout = "2006-01-02"

// Trip carries the request-level fields that the router never sees.
type Trip struct {
	City       string
	Vibe       string
	StartDate  string // YYYY-MM-DD, optional
	Candidates int    // places that entered the pipeline, before filtering
}

type Document struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	PlanID  string      `json:"plan_id,omitempty"`
	Trip    TripSummary `json:"trip"`
	Days    []DayPlan   `json:"days"`
	Hotel   *geo.Point  `json:"hotel,omitempty"`
}

type TripSummary struct {
	City          string  `json:"city"`
	NumDays       int     `json:"num_days"`
	StartDate     string  `json:"start_date,omitempty"`
	EndDate       string  `json:"end_date,omitempty"`
	TotalPlaces   int     `json:"total_places"`
	TotalScore    float64 `json:"total_score"`
	PlacesDropped int     `json:"places_dropped"`
	Vibe          string  `json:"vibe,omitempty"`
}

type DayPlan struct {
	DayNumber int        `json:"day_number"`
	Date      string     `json:"date,omitempty"`
	Places    []Place    `json:"places"`
	Summary   DaySummary `json:"summary"`
}

type DaySummary struct {
	NumPlaces         int     `json:"num_places"`
	TotalScore        float64 `json:"total_score"`
	TravelTimeMinutes int     `json:"travel_time_minutes"`
	VisitTimeMinutes  int     `json:"visit_time_minutes"`
	TotalTimeMinutes  int     `json:"total_time_minutes"`
	StartTime         string  `json:"start_time,omitempty"`
	EndTime           string  `json:"end_time,omitempty"`
}

type Place struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Coordinates geo.Point `json:"coordinates"`
	Time        TimeSlot  `json:"time"`
	Score       float64   `json:"score"`
	Why         string    `json:"why"`
	Address     string    `json:"address,omitempty"`
	PhotoRef    string    `json:"photo_reference,omitempty"`
	Rating      *float64  `json:"rating,omitempty"`
	ReviewCount *int      `json:"review_count,omitempty"`
}

type TimeSlot struct {
	Arrival         string `json:"arrival"`
	Departure       string `json:"departure"`
	DurationMinutes int    `json:"duration_minutes"`
}

// Format converts plan into a document. Stop times are offsets from
// dayStartMinute and are rendered on a 12-hour clock. An unparsable start
// date leaves every date empty.
func Format(t Trip, plan *itinerary.Plan, dayStartMinute int) Document {
	start, dated := parseDate(t.StartDate)
	doc := Document{
		Success: true,
		PlanID:  plan.ID,
		Trip: TripSummary{
			City:    t.City,
			NumDays: len(plan.Days),
			Vibe:    t.Vibe,
		},
		Days:  make([]DayPlan, 0, len(plan.Days)),
		Hotel: plan.Origin,
	}
	if dated {
		doc.Trip.StartDate = start.Format(dateLayout)
		doc.Trip.EndDate = start.AddDate(0, 0, max(len(plan.Days)-1, 0)).Format(dateLayout)
	}

	var total float64
	for _, d := range plan.Days {
		dp := DayPlan{DayNumber: d.Day, Places: make([]Place, 0, len(d.Stops))}
		if dated {
			dp.Date = start.AddDate(0, 0, d.Day-1).Format(dateLayout)
		}
		for _, s := range d.Stops {
			dp.Places = append(dp.Places, place(s, dayStartMinute))
		}
		dp.Summary = DaySummary{
			NumPlaces:         len(d.Stops),
			TotalScore:        round1(d.Score),
			TravelTimeMinutes: d.TravelMinutes,
			VisitTimeMinutes:  d.VisitMinutes,
			TotalTimeMinutes:  d.TotalMinutes(),
		}
		if n := len(dp.Places); n > 0 {
			dp.Summary.StartTime = dp.Places[0].Time.Arrival
			dp.Summary.EndTime = dp.Places[n-1].Time.Departure
		}
		doc.Trip.TotalPlaces += len(d.Stops)
		total += d.Score
		doc.Days = append(doc.Days, dp)
	}
	doc.Trip.TotalScore = round1(total)
	doc.Trip.PlacesDropped = max(t.Candidates-doc.Trip.TotalPlaces, 0)
	return doc
}

// Failure is the document returned when the pipeline could not run.
func Failure(t Trip, numDays int, err error) Document {
	doc := Document{
		Success: false,
		Error:   err.Error(),
		Trip:    TripSummary{City: t.City, NumDays: numDays, Vibe: t.Vibe},
		Days:    []DayPlan{},
	}
	if start, ok := parseDate(t.StartDate); ok {
		doc.Trip.StartDate = start.Format(dateLayout)
	}
	return doc
}

// Write encodes a document, or a slice of them, as indented JSON.
func Write(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func place(s model.RouteStop, dayStart int) Place {
	out := Place{
		ID:       s.PlaceID,
		Name:     s.Name,
		Category: s.Category,
		Time: TimeSlot{
			Arrival:         model.FormatClock(dayStart + s.Arrival),
			Departure:       model.FormatClock(dayStart + s.Departure),
			DurationMinutes: s.Duration,
		},
		Score: round1(s.Score),
		Why:   s.Why,
	}
	if out.Category == "" {
		out.Category = "other"
	}
	if p := s.Place; p != nil {
		if p.Location != nil {
			out.Coordinates = *p.Location
		}
		out.Address = p.Address
		out.PhotoRef = p.PhotoRef
		out.Rating = p.Rating
		out.ReviewCount = p.ReviewCount
	}
	return out
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, s)
	return t, err == nil
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
