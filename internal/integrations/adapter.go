package integrations

import (
	"context"

	"gotravel/internal/model"
)

// PlaceSource defines the minimal interface for sources of enriched candidate places.
type PlaceSource interface {
	Name() string
	FetchPlaces(ctx context.Context) ([]*model.CandidatePlace, error)
}

// Collect fetches from every source in order and concatenates the results.
func Collect(ctx context.Context, sources ...PlaceSource) ([]*model.CandidatePlace, error) {
	var out []*model.CandidatePlace
	for _, s := range sources {
		places, err := s.FetchPlaces(ctx)
		if err != nil {
			return nil, &SourceError{Source: s.Name(), Err: err}
		}
		out = append(out, places...)
	}
	return out, nil
}

// SourceError names the source that failed.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string { return e.Source + ": " + e.Err.Error() }
func (e *SourceError) Unwrap() error { return e.Err }
