// Package itinerary turns scored places into one timed route per trip day.
// Days are modelled as vehicles sharing a single base location; places that do
// not fit are dropped at a cost equal to their scaled score.
package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"gotravel/internal/catalog"
	"gotravel/internal/geo"
	"gotravel/internal/metrics"
	"gotravel/internal/model"
	"gotravel/internal/opt"
)

var (
	ErrInvalidDays   = errors.New("itinerary: number of days must be positive")
	ErrInvalidBudget = errors.New("itinerary: time budget must be positive")
)

// State is the lifecycle of one Schedule call.
type State string

const (
	StateUnsolved   State = "unsolved"
	StateModeled    State = "modeled"
	StateSolved     State = "solved"
	StateInfeasible State = "infeasible"
)

// Config holds the routing model constants.
type Config struct {
	SpeedKmh         float64
	HopBufferMinutes int
	DayStartMinute   int // minutes from midnight
	DayEndMinute     int
	MaxWaitMinutes   int
	PrizeScale       float64
	Seed             int64
	MaxIterations    int
}

func DefaultConfig() Config {
	return Config{
		SpeedKmh:         12,
		HopBufferMinutes: 10,
		DayStartMinute:   540,
		DayEndMinute:     1320,
		MaxWaitMinutes:   120,
		PrizeScale:       10,
		Seed:             1,
	}
}

// DayMinutes is the per-day budget.
func (c Config) DayMinutes() int { return c.DayEndMinute - c.DayStartMinute }

// Params are the per-call inputs.
type Params struct {
	Days         int
	Origin       *geo.Point // nil means the centroid of the located places
	TimeBudget   time.Duration
	StartWeekday time.Weekday // weekday of day 1
}

// Plan is the result of one Schedule call.
type Plan struct {
	ID       string
	Days     []model.DayRoute
	Origin   *geo.Point // nil when no place had coordinates and none was given
	State    State
	Routable int // places with coordinates
	Dropped  int // routable places left out of every day
	Solver   opt.Metrics
}

// Visited counts the stops over all days.
func (p *Plan) Visited() int {
	n := 0
	for _, d := range p.Days {
		n += len(d.Stops)
	}
	return n
}

type Router struct {
	tables *catalog.Tables
	cfg    Config
	log    *slog.Logger
}

type Option func(*Router)

// WithLogger sets the logger used by the router and the solver.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRouter returns a router over the given tables; nil selects catalog.Default.
func NewRouter(tables *catalog.Tables, cfg Config, opts ...Option) *Router {
	if tables == nil {
		tables = catalog.Default()
	}
	r := &Router{tables: tables, cfg: cfg, log: slog.Default()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Schedule partitions places into p.Days routes. It always returns exactly
// p.Days routes; places without coordinates are never scheduled. The search
// runs until p.TimeBudget elapses or ctx is done and keeps the best plan found.
func (r *Router) Schedule(ctx context.Context, places []*model.CandidatePlace, p Params) (*Plan, error) {
	if p.Days <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDays, p.Days)
	}
	if p.TimeBudget <= 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidBudget, p.TimeBudget)
	}
	started := time.Now()
	plan := &Plan{ID: uuid.NewString(), Days: model.EmptyDays(p.Days), State: StateUnsolved}
	defer func() { r.observe(plan, time.Since(started)) }()

	located := make([]*model.CandidatePlace, 0, len(places))
	for _, pl := range places {
		if pl.HasLocation() {
			located = append(located, pl)
		}
	}
	plan.Routable = len(located)
	plan.Origin = p.Origin
	if plan.Origin == nil {
		if c, ok := geo.Centroid(model.ValidLocations(located)); ok {
			plan.Origin = &c
		}
	}
	if len(located) == 0 {
		plan.State = StateSolved
		return plan, nil
	}

	prob := r.buildProblem(located, *plan.Origin, p.Days, p.StartWeekday)
	plan.State = StateModeled

	sol, m, err := opt.Solve(ctx, prob, r.cfg.Seed, p.TimeBudget)
	if err != nil {
		return nil, fmt.Errorf("itinerary: solve: %w", err)
	}
	plan.Solver = m

	days, err := r.extract(&prob, sol, located)
	if err != nil {
		r.log.Warn("no feasible itinerary", "plan", plan.ID, "error", err)
		plan.State = StateInfeasible
		plan.Dropped = len(located)
		return plan, nil
	}
	plan.Days = days
	plan.State = StateSolved
	plan.Dropped = len(located) - plan.Visited()
	r.log.Info("itinerary scheduled",
		"plan", plan.ID,
		"days", p.Days,
		"routable", plan.Routable,
		"visited", plan.Visited(),
		"dropped", plan.Dropped,
		"iterations", m.Iterations,
		"stop", string(m.Stop),
	)
	return plan, nil
}

func (r *Router) observe(plan *Plan, elapsed time.Duration) {
	metrics.Solves.WithLabelValues(string(plan.State)).Inc()
	metrics.SolveDuration.Observe(elapsed.Seconds())
	metrics.PlacesDropped.Add(float64(plan.Dropped))
	if plan.Solver.Iterations > 0 {
		metrics.SolverIterations.Observe(float64(plan.Solver.Iterations))
	}
}

// extract walks each solved route and re-derives its timeline. A route that
// fails to schedule or a place that lands on two days rejects the whole plan.
func (r *Router) extract(prob *opt.Problem, sol opt.Solution, located []*model.CandidatePlace) ([]model.DayRoute, error) {
	plans := append([]opt.RoutePlan(nil), sol.Plans...)
	sort.Slice(plans, func(i, j int) bool { return plans[i].Vehicle < plans[j].Vehicle })
	days := model.EmptyDays(prob.Vehicles)
	seen := make(map[int]bool)
	for _, rp := range plans {
		tl, ok := opt.Schedule(prob, rp.Vehicle, rp.Order)
		if !ok {
			return nil, fmt.Errorf("day %d: route %v violates its constraints", rp.Vehicle+1, rp.Order)
		}
		day := &days[rp.Vehicle]
		for _, v := range tl.Visits {
			if seen[v.Node] {
				return nil, fmt.Errorf("node %d scheduled twice", v.Node)
			}
			seen[v.Node] = true
			pl := located[v.Node-1]
			id := pl.ID
			if id == "" {
				id = fmt.Sprintf("place_%d", v.Node)
			}
			day.Stops = append(day.Stops, model.RouteStop{
				Place:       pl,
				PlaceID:     id,
				Name:        pl.Name,
				Category:    pl.Category,
				Why:         pl.Why,
				Arrival:     v.Start,
				Departure:   v.Depart,
				Duration:    v.Depart - v.Start,
				WaitMinutes: v.Start - v.Arrive,
				Score:       pl.Score,
			})
			day.Score += pl.Score
		}
		day.TravelMinutes = tl.Travel
		day.VisitMinutes = tl.Service
		day.WaitMinutes = tl.Wait
	}
	return days, nil
}
