// Package model holds the domain types for candidate places and scheduled trips.
package model

import (
	"strings"

	"gotravel/internal/geo"
)

// CandidatePlace is an enriched candidate awaiting scoring and scheduling.
// Location is nil until enrichment resolves coordinates; Score is set by the scorer.
type CandidatePlace struct {
	ID          string        `json:"place_id,omitempty" yaml:"place_id,omitempty"`
	Name        string        `json:"name" yaml:"name"`
	Category    string        `json:"category" yaml:"category"`
	Why         string        `json:"why,omitempty" yaml:"why,omitempty"`
	Types       []string      `json:"types,omitempty" yaml:"types,omitempty"`
	Address     string        `json:"formatted_address,omitempty" yaml:"formatted_address,omitempty"`
	PhotoRef    string        `json:"photo_reference,omitempty" yaml:"photo_reference,omitempty"`
	Location    *geo.Point    `json:"location,omitempty" yaml:"location,omitempty"`
	Rating      *float64      `json:"rating,omitempty" yaml:"rating,omitempty"`
	ReviewCount *int          `json:"user_ratings_total,omitempty" yaml:"user_ratings_total,omitempty"`
	Hours       *OpeningHours `json:"opening_hours,omitempty" yaml:"opening_hours,omitempty"`
	Score       float64       `json:"score" yaml:"-"`
}

// HasLocation reports whether the place has resolved coordinates.
func (p *CandidatePlace) HasLocation() bool { return p != nil && p.Location != nil }

// NormalizedCategory is the lower-cased, trimmed category used for table lookups.
func (p *CandidatePlace) NormalizedCategory() string {
	return strings.ToLower(strings.TrimSpace(p.Category))
}

// ValidLocations returns the coordinates of every place that has them, in input order.
func ValidLocations(places []*CandidatePlace) []geo.Point {
	out := make([]geo.Point, 0, len(places))
	for _, p := range places {
		if p.HasLocation() {
			out = append(out, *p.Location)
		}
	}
	return out
}
