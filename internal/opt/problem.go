package opt

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// Window bounds the start of a visit, in minutes from the start of the route.
type Window struct{ Start, End int }

// Problem is a prize-collecting vehicle routing problem with time windows.
// Node 0 is the shared depot; every vehicle leaves it at minute 0 and returns
// to it. Customer nodes may be left unvisited at the cost of their Penalty.
type Problem struct {
	Travel                  [][]int    // travel minutes between nodes, Travel[i][i] == 0
	Service                 []int      // minutes spent at each node
	Windows                 [][]Window // Windows[vehicle][node]; a single row applies to every vehicle
	Penalty                 []int64    // cost of leaving a node unvisited
	Prize                   []int64    // credited when a node is visited (reporting only)
	Vehicles                int
	MaxRouteMin             int       // horizon per vehicle, return leg included
	MaxWaitMin              int       // waiting allowed before a visit; negative means unbounded
	IterationsLimit         int       // optional iteration cap
	InitialTemp             float64   // initial temperature for SA; 0 derives it from the seed cost
	Cooling                 float64   // cooling factor per iteration
	InitialRemovalWeights   []float64 // [random, shaw, worst]
	InitialInsertionWeights []float64 // [greedy, regret2]
	Log                     *slog.Logger
}

// Nodes is the node count including the depot.
func (p *Problem) Nodes() int { return len(p.Service) }

// Validate checks the model dimensions.
func (p *Problem) Validate() error {
	n := p.Nodes()
	if n == 0 {
		return errors.New("opt: problem has no depot")
	}
	if p.Vehicles <= 0 {
		return fmt.Errorf("opt: vehicles must be > 0, got %d", p.Vehicles)
	}
	if p.MaxRouteMin <= 0 {
		return fmt.Errorf("opt: max route minutes must be > 0, got %d", p.MaxRouteMin)
	}
	if len(p.Travel) != n {
		return fmt.Errorf("opt: travel matrix has %d rows, want %d", len(p.Travel), n)
	}
	for i, row := range p.Travel {
		if len(row) != n {
			return fmt.Errorf("opt: travel row %d has %d columns, want %d", i, len(row), n)
		}
	}
	if len(p.Penalty) != n {
		return fmt.Errorf("opt: %d penalties for %d nodes", len(p.Penalty), n)
	}
	if p.Prize != nil && len(p.Prize) != n {
		return fmt.Errorf("opt: %d prizes for %d nodes", len(p.Prize), n)
	}
	if len(p.Windows) != 1 && len(p.Windows) != p.Vehicles {
		return fmt.Errorf("opt: %d window rows for %d vehicles", len(p.Windows), p.Vehicles)
	}
	for v, row := range p.Windows {
		if len(row) != n {
			return fmt.Errorf("opt: window row %d has %d entries, want %d", v, len(row), n)
		}
	}
	return nil
}

func (p *Problem) window(vehicle, node int) Window {
	if len(p.Windows) == 1 {
		return p.Windows[0][node]
	}
	return p.Windows[vehicle][node]
}

// Visit is the timing of one stop on a route.
type Visit struct {
	Node   int
	Arrive int // arrival at the node
	Start  int // visit start, after any waiting
	Depart int
}

// Timeline is a fully scheduled route.
type Timeline struct {
	Visits  []Visit
	Travel  int // all legs, depot legs included
	Service int
	Wait    int
	End     int // return time at the depot
}

// Cost is the routing cost of the timeline: arc costs (travel plus service at
// the destination) plus the route span.
func (t Timeline) Cost() int64 { return int64(t.Travel + t.Service + t.End) }

type totals struct {
	travel, service, wait, end int
}

func (t totals) cost() int64 { return int64(t.travel + t.service + t.end) }

// walk simulates a route of n stops where at(i) yields the i-th node. visit,
// when non-nil, receives each scheduled stop.
func (p *Problem) walk(vehicle, n int, at func(int) int, visit func(Visit)) (totals, bool) {
	var tt totals
	t, prev := 0, 0
	for i := 0; i < n; i++ {
		node := at(i)
		leg := p.Travel[prev][node]
		arrive := t + leg
		w := p.window(vehicle, node)
		start := arrive
		if start < w.Start {
			start = w.Start
		}
		if start > w.End {
			return tt, false
		}
		if p.MaxWaitMin >= 0 && start-arrive > p.MaxWaitMin {
			return tt, false
		}
		depart := start + p.Service[node]
		if visit != nil {
			visit(Visit{Node: node, Arrive: arrive, Start: start, Depart: depart})
		}
		tt.travel += leg
		tt.service += p.Service[node]
		tt.wait += start - arrive
		t, prev = depart, node
	}
	if n > 0 {
		tt.travel += p.Travel[prev][0]
		t += p.Travel[prev][0]
	}
	tt.end = t
	if t > p.MaxRouteMin {
		return tt, false
	}
	return tt, true
}

// Schedule times the given visiting order for vehicle. ok is false when a
// window, the waiting limit or the route horizon is violated.
func Schedule(p *Problem, vehicle int, order []int) (Timeline, bool) {
	tl := Timeline{Visits: make([]Visit, 0, len(order))}
	tt, ok := p.walk(vehicle, len(order), func(i int) int { return order[i] }, func(v Visit) {
		tl.Visits = append(tl.Visits, v)
	})
	tl.Travel, tl.Service, tl.Wait, tl.End = tt.travel, tt.service, tt.wait, tt.end
	return tl, ok
}

const infeasible = math.MaxInt64

// routeCost is the routing cost of order, or infeasible.
func (p *Problem) routeCost(vehicle int, order []int) int64 {
	tt, ok := p.walk(vehicle, len(order), func(i int) int { return order[i] }, nil)
	if !ok {
		return infeasible
	}
	return tt.cost()
}

// insertCost is the routing cost of order with node inserted before pos.
func (p *Problem) insertCost(vehicle int, order []int, node, pos int) int64 {
	tt, ok := p.walk(vehicle, len(order)+1, func(i int) int {
		switch {
		case i < pos:
			return order[i]
		case i == pos:
			return node
		default:
			return order[i-1]
		}
	}, nil)
	if !ok {
		return infeasible
	}
	return tt.cost()
}

// RoutePlan is the visiting order of one vehicle, depot excluded.
type RoutePlan struct {
	Vehicle int
	Order   []int
}

// Solution assigns customers to vehicles. Nodes on no plan are dropped.
type Solution struct {
	Plans []RoutePlan
	Cost  int64
}

func emptySolution(p *Problem) Solution {
	plans := make([]RoutePlan, p.Vehicles)
	for v := range plans {
		plans[v] = RoutePlan{Vehicle: v, Order: []int{}}
	}
	return Solution{Plans: plans}
}

func (s Solution) clone() Solution {
	out := Solution{Plans: make([]RoutePlan, len(s.Plans)), Cost: s.Cost}
	for i, pl := range s.Plans {
		out.Plans[i] = RoutePlan{Vehicle: pl.Vehicle, Order: append([]int(nil), pl.Order...)}
	}
	return out
}

// Unassigned lists the customer nodes on no plan, ascending.
func (s Solution) Unassigned(p *Problem) []int {
	present := make([]bool, p.Nodes())
	for _, pl := range s.Plans {
		for _, n := range pl.Order {
			present[n] = true
		}
	}
	var out []int
	for n := 1; n < p.Nodes(); n++ {
		if !present[n] {
			out = append(out, n)
		}
	}
	return out
}

// Assigned counts the customer nodes on some plan.
func (s Solution) Assigned() int {
	n := 0
	for _, pl := range s.Plans {
		n += len(pl.Order)
	}
	return n
}

// Evaluate returns the objective of s: routing cost of every plan plus the
// penalty of every dropped node. ok is false if any plan is infeasible.
func Evaluate(p *Problem, s Solution) (int64, bool) {
	var total int64
	for _, pl := range s.Plans {
		c := p.routeCost(pl.Vehicle, pl.Order)
		if c == infeasible {
			return infeasible, false
		}
		total += c
	}
	for _, n := range s.Unassigned(p) {
		total += p.Penalty[n]
	}
	return total, true
}
