package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the planner
	Registry = prometheus.NewRegistry()
	// PlacesScored counts candidate places run through the scorer
	PlacesScored = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "itinerary_places_scored_total", Help: "Candidate places scored."},
	)
	// PlacesFiltered counts places removed by the score threshold
	PlacesFiltered = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "itinerary_places_filtered_total", Help: "Places below the score threshold."},
	)
	// Solves counts router runs by outcome state
	Solves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "itinerary_solves_total", Help: "Itinerary solves by final state."},
		[]string{"state"},
	)
	// SolveDuration records wall time spent in the router
	SolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "itinerary_solve_duration_seconds", Help: "Itinerary solve duration in seconds.", Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60}},
	)
	// SolverIterations records search iterations per solve
	SolverIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "itinerary_solver_iterations", Help: "Search iterations per solve.", Buckets: prometheus.ExponentialBuckets(10, 4, 8)},
	)
	// PlacesDropped counts routable places left out of every day
	PlacesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "itinerary_places_dropped_total", Help: "Places dropped by the router."},
	)
)

// RegisterDefault registers collectors to the planner registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(PlacesScored)
		Registry.MustRegister(PlacesFiltered)
		Registry.MustRegister(Solves)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(SolverIterations)
		Registry.MustRegister(PlacesDropped)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once

// WriteTextfile exports the registry in the node_exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
