// Package scoring computes per-place utility from rating, distance to the trip
// centroid, weather suitability and review volume.
package scoring

import (
	"math"
	"sort"

	"gotravel/internal/catalog"
	"gotravel/internal/geo"
	"gotravel/internal/model"
)

const (
	// MinScoreThreshold is the lowest score kept by ScoreAndRank.
	MinScoreThreshold = 40.0

	// DistanceDecayRate is k in exp(-k * km).
	DistanceDecayRate = 0.15

	defaultBase        = 60.0
	noLocationMult     = 0.5
	badWeatherMult     = 0.3
	coldMult           = 0.5
	coldThresholdC     = 5.0
	popularReviews     = 1000
	establishedReviews = 100
	popularBonus       = 10.0
	establishedBonus   = 5.0
)

// Breakdown is the per-factor decomposition of a score.
type Breakdown struct {
	Base        float64 `json:"base"`
	DistanceKm  float64 `json:"distance_km"`
	DistMult    float64 `json:"distance_multiplier"`
	WeatherMult float64 `json:"weather_multiplier"`
	SocialBonus float64 `json:"social_bonus"`
	Score       float64 `json:"score"`
}

// Scorer is safe for concurrent use; it holds only read-only tables.
type Scorer struct {
	tables *catalog.Tables
}

// New returns a Scorer; nil tables means catalog.Default().
func New(tables *catalog.Tables) *Scorer {
	if tables == nil {
		tables = catalog.Default()
	}
	return &Scorer{tables: tables}
}

// Explain computes the score breakdown of p relative to centroid.
func (s *Scorer) Explain(p *model.CandidatePlace, w *model.WeatherSnapshot, centroid geo.Point) Breakdown {
	b := Breakdown{
		Base:        baseScore(p.Rating),
		DistMult:    noLocationMult,
		WeatherMult: s.weatherMultiplier(p, w),
		SocialBonus: socialBonus(p.ReviewCount),
	}
	if p.HasLocation() {
		b.DistanceKm = geo.HaversineKm(*p.Location, centroid)
		b.DistMult = math.Exp(-DistanceDecayRate * b.DistanceKm)
	}
	b.Score = b.Base*b.DistMult*b.WeatherMult + b.SocialBonus
	return b
}

// Score returns the utility of p relative to centroid.
func (s *Scorer) Score(p *model.CandidatePlace, w *model.WeatherSnapshot, centroid geo.Point) float64 {
	return s.Explain(p, w, centroid).Score
}

// ScoreAndRank sets Score on every place and returns those at or above
// MinScoreThreshold, highest first. Equal scores keep input order. When centroid
// is nil the mean of all known coordinates is used, or (0,0) if there are none.
func (s *Scorer) ScoreAndRank(places []*model.CandidatePlace, w *model.WeatherSnapshot, centroid *geo.Point) []*model.CandidatePlace {
	if len(places) == 0 {
		return []*model.CandidatePlace{}
	}
	var c geo.Point
	if centroid != nil {
		c = *centroid
	} else {
		c, _ = geo.Centroid(model.ValidLocations(places))
	}
	ranked := make([]*model.CandidatePlace, 0, len(places))
	for _, p := range places {
		if p == nil {
			continue
		}
		p.Score = s.Score(p, w, c)
		if p.Score >= MinScoreThreshold {
			ranked = append(ranked, p)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked
}

func baseScore(rating *float64) float64 {
	if rating == nil || math.IsNaN(*rating) {
		return defaultBase
	}
	return math.Max(0, math.Min(5, *rating)) * 20
}

func (s *Scorer) weatherMultiplier(p *model.CandidatePlace, w *model.WeatherSnapshot) float64 {
	if w == nil {
		return 1
	}
	labels := append(append([]string(nil), p.Types...), p.Category)
	if !s.tables.IsOutdoor(labels...) {
		return 1
	}
	mult := 1.0
	switch w.Condition() {
	case model.ConditionRain, model.ConditionDrizzle, model.ConditionThunderstorm, model.ConditionSnow:
		mult *= badWeatherMult
	}
	if w.TempC < coldThresholdC {
		mult *= coldMult
	}
	return mult
}

func socialBonus(reviews *int) float64 {
	switch {
	case reviews == nil:
		return 0
	case *reviews >= popularReviews:
		return popularBonus
	case *reviews >= establishedReviews:
		return establishedBonus
	default:
		return 0
	}
}
