package opt

// localSearch applies first-improvement moves until none lowers the objective
// or the search is told to stop.
func (s *searcher) localSearch(sol *Solution) {
	costs := s.routeCosts(*sol)
	for !s.stop() {
		improved := s.relocate(sol, costs)
		improved = s.twoOpt(sol, costs) || improved
		improved = s.crossExchange(sol, costs) || improved
		improved = s.swapDropped(sol, costs) || improved
		if !improved {
			return
		}
	}
}

// relocate moves one node to another position, on the same or another route.
func (s *searcher) relocate(sol *Solution, costs []int64) bool {
	improved := false
	for a := range sol.Plans {
		for i := 0; i < len(sol.Plans[a].Order); i++ {
			if s.stop() {
				return improved
			}
			node := sol.Plans[a].Order[i]
			rest := without(sol.Plans[a].Order, i)
			for b := range sol.Plans {
				if a == b {
					for j := 0; j <= len(rest); j++ {
						if j == i {
							continue
						}
						cand := insertAt(rest, node, j)
						c := s.p.routeCost(sol.Plans[a].Vehicle, cand)
						if c < costs[a] {
							sol.Plans[a].Order, costs[a] = cand, c
							rest = without(cand, j)
							i, improved = j, true
						}
					}
					continue
				}
				ca := s.p.routeCost(sol.Plans[a].Vehicle, rest)
				if ca == infeasible {
					continue
				}
				for j := 0; j <= len(sol.Plans[b].Order); j++ {
					cb := s.p.insertCost(sol.Plans[b].Vehicle, sol.Plans[b].Order, node, j)
					if cb == infeasible || ca+cb >= costs[a]+costs[b] {
						continue
					}
					sol.Plans[b].Order = insertAt(sol.Plans[b].Order, node, j)
					sol.Plans[a].Order = rest
					costs[a], costs[b] = ca, cb
					improved = true
					break
				}
				if indexOf(sol.Plans[a].Order, node) < 0 {
					// node left route a; the slot at i now holds its successor
					i--
					break
				}
			}
		}
	}
	return improved
}

// twoOpt reverses a segment within a route.
func (s *searcher) twoOpt(sol *Solution, costs []int64) bool {
	improved := false
	for a := range sol.Plans {
		order := sol.Plans[a].Order
		for i := 0; i < len(order)-1; i++ {
			if s.stop() {
				return improved
			}
			for k := i + 1; k < len(order); k++ {
				cand := append([]int(nil), order...)
				for x, y := i, k; x < y; x, y = x+1, y-1 {
					cand[x], cand[y] = cand[y], cand[x]
				}
				c := s.p.routeCost(sol.Plans[a].Vehicle, cand)
				if c < costs[a] {
					order, costs[a] = cand, c
					improved = true
				}
			}
		}
		sol.Plans[a].Order = order
	}
	return improved
}

// crossExchange swaps one node between two routes.
func (s *searcher) crossExchange(sol *Solution, costs []int64) bool {
	improved := false
	for a := 0; a < len(sol.Plans); a++ {
		for b := a + 1; b < len(sol.Plans); b++ {
			for i := 0; i < len(sol.Plans[a].Order); i++ {
				if s.stop() {
					return improved
				}
				for j := 0; j < len(sol.Plans[b].Order); j++ {
					ca := append([]int(nil), sol.Plans[a].Order...)
					cb := append([]int(nil), sol.Plans[b].Order...)
					ca[i], cb[j] = cb[j], ca[i]
					costA := s.p.routeCost(sol.Plans[a].Vehicle, ca)
					if costA == infeasible {
						continue
					}
					costB := s.p.routeCost(sol.Plans[b].Vehicle, cb)
					if costB == infeasible || costA+costB >= costs[a]+costs[b] {
						continue
					}
					sol.Plans[a].Order, sol.Plans[b].Order = ca, cb
					costs[a], costs[b] = costA, costB
					improved = true
				}
			}
		}
	}
	return improved
}

// swapDropped replaces a visited node with a dropped one when the exchange
// pays for itself in penalties.
func (s *searcher) swapDropped(sol *Solution, costs []int64) bool {
	improved := false
	dropped := s.pool(*sol)
	for di := 0; di < len(dropped); di++ {
		if s.stop() {
			return improved
		}
		u := dropped[di]
	search:
		for a := range sol.Plans {
			for i, old := range sol.Plans[a].Order {
				cand := append([]int(nil), sol.Plans[a].Order...)
				cand[i] = u
				c := s.p.routeCost(sol.Plans[a].Vehicle, cand)
				if c == infeasible {
					continue
				}
				if c-costs[a]+s.p.Penalty[old]-s.p.Penalty[u] >= 0 {
					continue
				}
				sol.Plans[a].Order, costs[a] = cand, c
				dropped[di] = old
				improved = true
				break search
			}
		}
	}
	return improved
}
