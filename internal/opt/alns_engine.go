package opt

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"time"

	"golang.org/x/time/rate"
)

// StopReason records why the search loop ended.
type StopReason string

const (
	StopDeadline   StopReason = "deadline"
	StopIterations StopReason = "iterations"
	StopCancelled  StopReason = "cancelled"
	StopTrivial    StopReason = "trivial" // nothing left to search
)

type Metrics struct {
	RemovalSelects        [3]int // random, shaw, worst
	InsertSelects         [2]int // greedy, regret2
	Iterations            int
	Improvements          int
	AcceptedWorse         int
	SeedCost              int64
	BestCost              int64
	FinalCost             int64 // cost of the current solution when the loop ended
	Assigned              int
	Dropped               int
	FinalRemovalWeights   [3]float64
	FinalInsertionWeights [2]float64
	Snapshots             []WeightSnapshot
	Stop                  StopReason
	Elapsed               time.Duration
}

type WeightSnapshot struct {
	Iteration int
	Removal   [3]float64
	Insertion [2]float64
}

const snapshotEvery = 50

// Solve runs adaptive large neighbourhood search with simulated annealing
// acceptance. The search stops at the time budget, the iteration limit or
// when ctx is done, whichever comes first; the best solution found so far is
// returned in every case. A zero timeBudget requires an iteration limit.
func Solve(ctx context.Context, p Problem, seed int64, timeBudget time.Duration) (Solution, Metrics, error) {
	if err := p.Validate(); err != nil {
		return Solution{}, Metrics{}, err
	}
	if timeBudget <= 0 && p.IterationsLimit <= 0 {
		return Solution{}, Metrics{}, errors.New("opt: need a time budget or an iteration limit")
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log := p.Log
	if log == nil {
		log = slog.Default()
	}
	started := time.Now()
	var deadline time.Time
	if timeBudget > 0 {
		deadline = started.Add(timeBudget)
	}
	var m Metrics
	stop := func() bool {
		if ctx.Err() != nil {
			m.Stop = StopCancelled
			return true
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			m.Stop = StopDeadline
			return true
		}
		return false
	}
	s := &searcher{p: &p, rng: rand.New(rand.NewSource(seed)), stop: stop}
	s.markCandidates()

	curr := s.greedySeed()
	best := curr.clone()
	m.SeedCost, m.BestCost = curr.Cost, curr.Cost

	remW := []float64{1, 1, 1} // random, shaw, worst
	insW := []float64{1, 1}    // greedy, regret2
	if len(p.InitialRemovalWeights) == len(remW) {
		copy(remW, p.InitialRemovalWeights)
	}
	if len(p.InitialInsertionWeights) == len(insW) {
		copy(insW, p.InitialInsertionWeights)
	}
	temp := math.Max(1, 0.02*float64(curr.Cost))
	if p.InitialTemp > 0 {
		temp = p.InitialTemp
	}
	cool := 0.995
	if p.Cooling > 0 && p.Cooling < 1 {
		cool = p.Cooling
	}
	progress := rate.Sometimes{Interval: time.Second}

	if s.active == 0 {
		m.Stop = StopTrivial
	}
	for m.Stop == "" {
		if stop() {
			break
		}
		if p.IterationsLimit > 0 && m.Iterations >= p.IterationsLimit {
			m.Stop = StopIterations
			break
		}
		m.Iterations++

		cand := curr.clone()
		k := 1 + s.rng.Intn(4)
		op := selectOp(remW, s.rng)
		m.RemovalSelects[op]++
		ip := selectOp(insW, s.rng)
		m.InsertSelects[ip]++
		var ranked []int
		switch op {
		case 0:
			ranked = s.randomOrder(cand)
		case 1:
			ranked = s.shawOrder(cand)
		case 2:
			ranked = s.worstOrder(cand)
		}
		s.removeUpTo(&cand, ranked, k)
		switch ip {
		case 0:
			s.greedyInsert(&cand)
		case 1:
			s.regretInsert(&cand)
		}
		s.localSearch(&cand)
		cand.Cost, _ = Evaluate(s.p, cand)

		delta := float64(cand.Cost - curr.Cost)
		if delta < 0 || s.rng.Float64() < math.Exp(-delta/(temp+1e-9)) {
			curr = cand
			switch {
			case curr.Cost < best.Cost:
				best = curr.clone()
				remW[op] += 0.1
				insW[ip] += 0.1
				m.Improvements++
				m.BestCost = best.Cost
			case delta < 0:
				remW[op] += 0.05
				insW[ip] += 0.05
			default:
				remW[op] += 0.01
				insW[ip] += 0.01
				m.AcceptedWorse++
			}
		} else {
			remW[op] = math.Max(0.01, remW[op]*0.999)
			insW[ip] = math.Max(0.01, insW[ip]*0.999)
		}
		temp *= cool
		if m.Iterations%snapshotEvery == 0 {
			m.Snapshots = append(m.Snapshots, WeightSnapshot{
				Iteration: m.Iterations,
				Removal:   [3]float64{remW[0], remW[1], remW[2]},
				Insertion: [2]float64{insW[0], insW[1]},
			})
		}
		progress.Do(func() {
			log.Debug("alns progress", "iteration", m.Iterations, "best", best.Cost, "current", curr.Cost, "temp", temp)
		})
	}
	m.FinalCost = curr.Cost
	m.Assigned = best.Assigned()
	m.Dropped = p.Nodes() - 1 - m.Assigned
	m.FinalRemovalWeights = [3]float64{remW[0], remW[1], remW[2]}
	m.FinalInsertionWeights = [2]float64{insW[0], insW[1]}
	m.Elapsed = time.Since(started)
	log.Debug("alns finished", "iterations", m.Iterations, "seed_cost", m.SeedCost, "best", m.BestCost, "dropped", m.Dropped, "stop", string(m.Stop))
	return best, m, nil
}

type searcher struct {
	p         *Problem
	rng       *rand.Rand
	stop      func() bool
	candidate []bool // node can be served alone by some vehicle
	active    int
}

func (s *searcher) markCandidates() {
	s.candidate = make([]bool, s.p.Nodes())
	for n := 1; n < s.p.Nodes(); n++ {
		for v := 0; v < s.p.Vehicles; v++ {
			if s.p.routeCost(v, []int{n}) != infeasible {
				s.candidate[n] = true
				s.active++
				break
			}
		}
	}
}

// pool lists the dropped nodes worth trying to insert.
func (s *searcher) pool(sol Solution) []int {
	var out []int
	for _, n := range sol.Unassigned(s.p) {
		if s.candidate[n] {
			out = append(out, n)
		}
	}
	return out
}

func (s *searcher) routeCosts(sol Solution) []int64 {
	out := make([]int64, len(sol.Plans))
	for i, pl := range sol.Plans {
		out[i] = s.p.routeCost(pl.Vehicle, pl.Order)
	}
	return out
}

func (s *searcher) greedySeed() Solution {
	sol := emptySolution(s.p)
	s.greedyInsert(&sol)
	sol.Cost, _ = Evaluate(s.p, sol)
	return sol
}

type insertion struct {
	node, plan, pos int
	delta           int64
}

// bestInsertions returns the cheapest and second cheapest feasible insertion
// of node. Deltas include the penalty that is no longer paid.
func (s *searcher) bestInsertions(sol Solution, costs []int64, node int) (best, second insertion) {
	best = insertion{node: node, plan: -1, delta: infeasible}
	second = best
	for pi, pl := range sol.Plans {
		for pos := 0; pos <= len(pl.Order); pos++ {
			c := s.p.insertCost(pl.Vehicle, pl.Order, node, pos)
			if c == infeasible {
				continue
			}
			d := c - costs[pi] - s.p.Penalty[node]
			switch {
			case d < best.delta:
				second = best
				best = insertion{node: node, plan: pi, pos: pos, delta: d}
			case d < second.delta:
				second = insertion{node: node, plan: pi, pos: pos, delta: d}
			}
		}
	}
	return best, second
}

func (s *searcher) apply(sol *Solution, costs []int64, in insertion) {
	pl := &sol.Plans[in.plan]
	pl.Order = insertAt(pl.Order, in.node, in.pos)
	costs[in.plan] = s.p.routeCost(pl.Vehicle, pl.Order)
}

// greedyInsert repeatedly applies the cheapest insertion that lowers the
// objective. Nodes with no such insertion stay dropped.
func (s *searcher) greedyInsert(sol *Solution) {
	nodes := s.pool(*sol)
	costs := s.routeCosts(*sol)
	for len(nodes) > 0 && !s.stop() {
		pick, at := insertion{plan: -1, delta: 0}, -1
		for i, n := range nodes {
			b, _ := s.bestInsertions(*sol, costs, n)
			if b.plan >= 0 && b.delta < pick.delta {
				pick, at = b, i
			}
		}
		if at < 0 {
			return
		}
		s.apply(sol, costs, pick)
		nodes = append(nodes[:at], nodes[at+1:]...)
	}
}

// regretInsert inserts the node that loses most by waiting first. Leaving a
// node dropped is always an alternative, so the second choice is capped at 0.
func (s *searcher) regretInsert(sol *Solution) {
	nodes := s.pool(*sol)
	costs := s.routeCosts(*sol)
	for len(nodes) > 0 && !s.stop() {
		pick, at := insertion{plan: -1}, -1
		var bestRegret int64 = -1
		for i, n := range nodes {
			b, sec := s.bestInsertions(*sol, costs, n)
			if b.plan < 0 || b.delta >= 0 {
				continue
			}
			alt := sec.delta
			if alt > 0 {
				alt = 0
			}
			regret := alt - b.delta
			if regret > bestRegret || (regret == bestRegret && b.delta < pick.delta) {
				bestRegret, pick, at = regret, b, i
			}
		}
		if at < 0 {
			return
		}
		s.apply(sol, costs, pick)
		nodes = append(nodes[:at], nodes[at+1:]...)
	}
}

// removeUpTo drops up to k nodes in ranked order. A node whose removal would
// leave its route infeasible (for example by lengthening a wait) is skipped.
func (s *searcher) removeUpTo(sol *Solution, ranked []int, k int) {
	where := locate(*sol, s.p.Nodes())
	removed := 0
	for _, n := range ranked {
		if removed == k {
			return
		}
		pi := where[n].plan
		if pi < 0 {
			continue
		}
		pl := &sol.Plans[pi]
		idx := indexOf(pl.Order, n)
		next := without(pl.Order, idx)
		if s.p.routeCost(pl.Vehicle, next) == infeasible {
			continue
		}
		pl.Order = next
		where[n] = position{plan: -1}
		removed++
	}
}

func (s *searcher) randomOrder(sol Solution) []int {
	var all []int
	for _, pl := range sol.Plans {
		all = append(all, pl.Order...)
	}
	s.rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	return all
}

// shawOrder ranks nodes by relatedness to a random seed node: short travel in
// both directions and similar window openings.
func (s *searcher) shawOrder(sol Solution) []int {
	var assigned []int
	for _, pl := range sol.Plans {
		assigned = append(assigned, pl.Order...)
	}
	if len(assigned) == 0 {
		return nil
	}
	seed := assigned[s.rng.Intn(len(assigned))]
	ws := s.p.window(0, seed)
	type pair struct {
		node  int
		score float64
	}
	rel := make([]pair, 0, len(assigned))
	for _, n := range assigned {
		if n == seed {
			continue
		}
		w := s.p.window(0, n)
		score := float64(s.p.Travel[seed][n]+s.p.Travel[n][seed]) + 0.5*math.Abs(float64(ws.Start-w.Start))
		rel = append(rel, pair{node: n, score: score})
	}
	sort.SliceStable(rel, func(i, j int) bool { return rel[i].score < rel[j].score })
	out := []int{seed}
	for _, r := range rel {
		out = append(out, r.node)
	}
	return out
}

// worstOrder ranks nodes by routing cost saved on removal net of their penalty.
func (s *searcher) worstOrder(sol Solution) []int {
	type pair struct {
		node int
		gain int64
	}
	var rel []pair
	for _, pl := range sol.Plans {
		base := s.p.routeCost(pl.Vehicle, pl.Order)
		for i, n := range pl.Order {
			c := s.p.routeCost(pl.Vehicle, without(pl.Order, i))
			if c == infeasible {
				continue
			}
			rel = append(rel, pair{node: n, gain: base - c - s.p.Penalty[n]})
		}
	}
	sort.SliceStable(rel, func(i, j int) bool { return rel[i].gain > rel[j].gain })
	out := make([]int, len(rel))
	for i, r := range rel {
		out[i] = r.node
	}
	return out
}

func selectOp(weights []float64, rng *rand.Rand) int {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		return 0
	}
	r := rng.Float64() * sum
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return i
		}
	}
	return len(weights) - 1
}

type position struct{ plan, idx int }

func locate(sol Solution, nodes int) []position {
	out := make([]position, nodes)
	for i := range out {
		out[i] = position{plan: -1, idx: -1}
	}
	for pi, pl := range sol.Plans {
		for i, n := range pl.Order {
			out[n] = position{plan: pi, idx: i}
		}
	}
	return out
}

func indexOf(order []int, node int) int {
	for i, n := range order {
		if n == node {
			return i
		}
	}
	return -1
}

func insertAt(order []int, node, pos int) []int {
	out := make([]int, 0, len(order)+1)
	out = append(out, order[:pos]...)
	out = append(out, node)
	return append(out, order[pos:]...)
}

func without(order []int, idx int) []int {
	out := make([]int, 0, len(order))
	out = append(out, order[:idx]...)
	return append(out, order[idx+1:]...)
}
