// Package trip reads trip requests and runs them through the scorer and the
// router.
package trip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"gotravel/internal/geo"
	"gotravel/internal/itinerary"
	"gotravel/internal/metrics"
	"gotravel/internal/model"
	"gotravel/internal/response"
	"gotravel/internal/scoring"
)

// File is an enriched trip request. JSON documents decode as well, being YAML.
type File struct {
	City         string                  `yaml:"city"`
	Vibe         string                  `yaml:"vibe"`
	Days         int                     `yaml:"days"`
	StartDate    string                  `yaml:"start_date"`
	StartWeekday *int                    `yaml:"start_weekday"` // 0 = Sunday; derived from start_date when absent
	Origin       *geo.Point              `yaml:"origin"`
	Centroid     *geo.Point              `yaml:"centroid"`
	Weather      *model.WeatherSnapshot  `yaml:"weather"`
	Places       []*model.CandidatePlace `yaml:"places"`
}

// Load decodes and validates a trip file.
func Load(r io.Reader) (*File, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("trip: empty trip file")
		}
		return nil, fmt.Errorf("trip: decode: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate rejects fields that cannot be degraded to a default.
func (f *File) Validate() error {
	if f.Days < 0 {
		return fmt.Errorf("trip: days must be >= 0, got %d", f.Days)
	}
	if f.StartWeekday != nil && (*f.StartWeekday < 0 || *f.StartWeekday > 6) {
		return fmt.Errorf("trip: start_weekday must be 0..6, got %d", *f.StartWeekday)
	}
	if f.StartDate != "" {
		if _, err := time.Parse("2006-01-02", f.StartDate); err != nil {
			return fmt.Errorf("trip: invalid start_date %q", f.StartDate)
		}
	}
	for i, p := range f.Places {
		if p == nil {
			return fmt.Errorf("trip: place %d is empty", i)
		}
		if p.Location != nil && (p.Location.Lat < -90 || p.Location.Lat > 90 || p.Location.Lng < -180 || p.Location.Lng > 180) {
			return fmt.Errorf("trip: place %q has out of range coordinates", p.Name)
		}
	}
	return nil
}

// Weekday is the weekday of day 1: start_weekday, else the weekday of
// start_date, else fallback.
func (f *File) Weekday(fallback time.Weekday) time.Weekday {
	if f.StartWeekday != nil {
		return time.Weekday(*f.StartWeekday)
	}
	if t, err := time.Parse("2006-01-02", f.StartDate); err == nil {
		return t.Weekday()
	}
	return fallback
}

// Pipeline scores a trip's candidates and schedules the survivors.
type Pipeline struct {
	Scorer         *scoring.Scorer
	Router         *itinerary.Router
	DayStartMinute int
	Weekday        time.Weekday // used when the trip names no start day
	Log            *slog.Logger
}

// Run plans f over days (f.Days wins when set) within budget.
func (p *Pipeline) Run(ctx context.Context, f *File, days int, budget time.Duration) (response.Document, *itinerary.Plan, error) {
	log := p.Log
	if log == nil {
		log = slog.Default()
	}
	if f.Days > 0 {
		days = f.Days
	}
	t := response.Trip{City: f.City, Vibe: f.Vibe, StartDate: f.StartDate, Candidates: len(f.Places)}

	ranked := p.Scorer.ScoreAndRank(f.Places, f.Weather, f.Centroid)
	metrics.PlacesScored.Add(float64(len(f.Places)))
	metrics.PlacesFiltered.Add(float64(len(f.Places) - len(ranked)))
	log.Info("places scored", "city", f.City, "candidates", len(f.Places), "kept", len(ranked))

	plan, err := p.Router.Schedule(ctx, ranked, itinerary.Params{
		Days:         days,
		Origin:       f.Origin,
		TimeBudget:   budget,
		StartWeekday: f.Weekday(p.Weekday),
	})
	if err != nil {
		return response.Failure(t, days, err), nil, err
	}
	return response.Format(t, plan, p.DayStartMinute), plan, nil
}

// RunAll plans independent trips with at most parallel solves in flight.
// Documents come back in input order; a trip that fails gets a failure
// document and the first error is returned after every trip has finished.
func (p *Pipeline) RunAll(ctx context.Context, files []*File, days int, budget time.Duration, parallel int) ([]response.Document, error) {
	docs := make([]response.Document, len(files))
	var g errgroup.Group
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, f := range files {
		g.Go(func() error {
			doc, _, err := p.Run(ctx, f, days, budget)
			docs[i] = doc
			if err != nil {
				return fmt.Errorf("trip %d (%s): %w", i, f.City, err)
			}
			return nil
		})
	}
	return docs, g.Wait()
}
