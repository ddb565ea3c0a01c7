package itinerary

import (
	"math"
	"time"

	"gotravel/internal/geo"
	"gotravel/internal/model"
	"gotravel/internal/opt"
)

// TravelMinutes is the hop time between two points: great-circle distance at
// the configured average speed, rounded, plus the per-hop buffer.
func (c Config) TravelMinutes(a, b geo.Point) int {
	km := geo.HaversineKm(a, b)
	return int(math.Round(km/c.SpeedKmh*60)) + c.HopBufferMinutes
}

// buildProblem lays out node 0 as the origin and nodes 1..n as located, in order.
func (r *Router) buildProblem(located []*model.CandidatePlace, origin geo.Point, days int, start time.Weekday) opt.Problem {
	n := len(located) + 1
	pts := make([]geo.Point, n)
	pts[0] = origin
	for i, pl := range located {
		pts[i+1] = *pl.Location
	}

	travel := make([][]int, n)
	for i := range travel {
		travel[i] = make([]int, n)
		for j := range travel[i] {
			if i != j {
				travel[i][j] = r.cfg.TravelMinutes(pts[i], pts[j])
			}
		}
	}

	service := make([]int, n)
	prize := make([]int64, n)
	for i, pl := range located {
		service[i+1] = r.tables.VisitMinutes(pl.Category)
		prize[i+1] = int64(pl.Score * r.cfg.PrizeScale)
	}
	penalty := append([]int64(nil), prize...)

	windows := make([][]opt.Window, days)
	for d := range windows {
		wd := time.Weekday((int(start) + d) % 7)
		row := make([]opt.Window, n)
		row[0] = opt.Window{Start: 0, End: r.cfg.DayMinutes()}
		for i, pl := range located {
			row[i+1] = r.timeWindow(pl, wd)
		}
		windows[d] = row
	}

	return opt.Problem{
		Travel:          travel,
		Service:         service,
		Windows:         windows,
		Penalty:         penalty,
		Prize:           prize,
		Vehicles:        days,
		MaxRouteMin:     r.cfg.DayMinutes(),
		MaxWaitMin:      r.cfg.MaxWaitMinutes,
		IterationsLimit: r.cfg.MaxIterations,
		Log:             r.log,
	}
}

// timeWindow is the allowed visit-start range for pl on day, relative to the
// day start. The category window is narrowed to the opening hours when they
// are known; if the two do not overlap the opening hours win. The result is
// clamped so the visit can finish by the end of the day.
func (r *Router) timeWindow(pl *model.CandidatePlace, day time.Weekday) opt.Window {
	visit := r.tables.VisitMinutes(pl.Category)
	dayStart, dayEnd := r.cfg.DayStartMinute, r.cfg.DayEndMinute

	earliest, latest := dayStart, dayEnd-visit
	if w, ok := r.tables.Window(pl.Category); ok {
		earliest, latest = w.Earliest, w.Latest
	}
	if pl.Hours != nil {
		if opens, closes, ok := pl.Hours.Envelope(day); ok {
			earliest = max(earliest, opens)
			latest = min(latest, closes-visit)
			if earliest > latest {
				earliest = opens
				latest = max(opens, closes-visit)
			}
		}
	}
	earliest = max(earliest, dayStart)
	latest = min(latest, dayEnd-visit)
	latest = max(latest, earliest)

	return opt.Window{
		Start: max(0, earliest-dayStart),
		End:   min(r.cfg.DayMinutes(), latest-dayStart),
	}
}
