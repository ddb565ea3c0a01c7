package itinerary

import (
	"testing"
	"time"

	"gotravel/internal/geo"
	"gotravel/internal/model"
	"gotravel/internal/opt"
)

func TestTravelMinutes(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.TravelMinutes(paris, paris); got != 10 {
		t.Fatalf("same point: got %d want 10", got)
	}
	// one degree of latitude is ~111.195 km, 555.97 minutes at 12 km/h
	if got := cfg.TravelMinutes(geo.Point{}, geo.Point{Lat: 1}); got != 566 {
		t.Fatalf("one degree: got %d want 566", got)
	}
}

func TestTimeWindow(t *testing.T) {
	r := testRouter()
	hours := func(day time.Weekday, open, close int) *model.OpeningHours {
		h := model.OpeningHours{day: {{Open: open, Close: close}}}
		return &h
	}
	cases := []struct {
		name     string
		category string
		hours    *model.OpeningHours
		want     opt.Window
	}{
		{"unknown category", "mystery", nil, opt.Window{Start: 0, End: 720}},
		{"museum default", "museum", nil, opt.Window{Start: 0, End: 360}},
		{"museum narrowed by hours", "museum", hours(time.Monday, 600, 1020), opt.Window{Start: 60, End: 360}},
		{"hours outside preferred window", "museum", hours(time.Monday, 960, 1200), opt.Window{Start: 420, End: 540}},
		{"hours for another day", "museum", hours(time.Tuesday, 960, 1200), opt.Window{Start: 0, End: 360}},
		{"club past day end", "club", nil, opt.Window{Start: 720, End: 720}},
		{"cafe opens before day start", "cafe", nil, opt.Window{Start: 0, End: 540}},
		{"bar open past midnight", "bar", hours(time.Monday, 1080, 120), opt.Window{Start: 540, End: 690}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			pl := &model.CandidatePlace{Category: c.category, Hours: c.hours}
			if got := r.timeWindow(pl, time.Monday); got != c.want {
				t.Fatalf("got %+v want %+v", got, c.want)
			}
		})
	}
}

func TestBuildProblemPerDayWeekdays(t *testing.T) {
	r := testRouter()
	h := model.OpeningHours{time.Sunday: {{Open: 960, Close: 1200}}}
	pl := &model.CandidatePlace{Category: "museum", Location: &paris, Score: 87.46, Hours: &h}
	prob := r.buildProblem([]*model.CandidatePlace{pl}, paris, 2, time.Saturday)
	if err := prob.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := prob.Windows[0][1]; got != (opt.Window{Start: 0, End: 360}) {
		t.Fatalf("saturday window: %+v", got)
	}
	if got := prob.Windows[1][1]; got != (opt.Window{Start: 420, End: 540}) {
		t.Fatalf("sunday window: %+v", got)
	}
	if prob.Windows[0][0] != (opt.Window{Start: 0, End: 780}) {
		t.Fatalf("depot window: %+v", prob.Windows[0][0])
	}
	if prob.Penalty[1] != 874 || prob.Prize[1] != 874 || prob.Penalty[0] != 0 {
		t.Fatalf("penalties: %v prizes: %v", prob.Penalty, prob.Prize)
	}
	if prob.Service[1] != 120 || prob.Travel[0][1] != 10 || prob.MaxRouteMin != 780 || prob.MaxWaitMin != 120 {
		t.Fatalf("unexpected model: %+v", prob)
	}
}
