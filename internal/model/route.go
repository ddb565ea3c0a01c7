package model

import "fmt"

// RouteStop is one scheduled visit. Arrival and Departure are minutes from the
// day's opening time; Arrival is when the visit starts.
type RouteStop struct {
	Place       *CandidatePlace `json:"-"`
	PlaceID     string          `json:"place_id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Why         string          `json:"why,omitempty"`
	Arrival     int             `json:"arrival"`
	Departure   int             `json:"departure"`
	Duration    int             `json:"duration"`
	WaitMinutes int             `json:"wait_minutes,omitempty"`
	Score       float64         `json:"score"`
}

// DayRoute is the ordered stop list for one day of the trip.
type DayRoute struct {
	Day           int         `json:"day"`
	Stops         []RouteStop `json:"stops"`
	TravelMinutes int         `json:"total_travel_time"`
	VisitMinutes  int         `json:"total_visit_time"`
	WaitMinutes   int         `json:"total_wait_time"`
	Score         float64     `json:"total_score"`
}

// TotalMinutes is travel plus visit time.
func (d DayRoute) TotalMinutes() int { return d.TravelMinutes + d.VisitMinutes }

// EmptyDays returns n routes numbered 1..n with no stops.
func EmptyDays(n int) []DayRoute {
	days := make([]DayRoute, n)
	for i := range days {
		days[i] = DayRoute{Day: i + 1, Stops: []RouteStop{}}
	}
	return days
}

// FormatClock renders minutes from midnight as a 12-hour clock string, e.g. "9:05 AM".
// Values past midnight wrap onto the next day.
func FormatClock(minutes int) string {
	minutes %= minutesPerDay
	if minutes < 0 {
		minutes += minutesPerDay
	}
	h, m := minutes/60, minutes%60
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	display := h % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, m, period)
}
