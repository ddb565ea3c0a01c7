package model

import "strings"

// Condition is the coarse weather category the scorer reasons about.
type Condition string

const (
	ConditionClear        Condition = "clear"
	ConditionRain         Condition = "rain"
	ConditionDrizzle      Condition = "drizzle"
	ConditionThunderstorm Condition = "thunderstorm"
	ConditionSnow         Condition = "snow"
	ConditionOther        Condition = "other"
)

// WeatherSnapshot is the current weather for the destination.
// Main carries the provider's condition keyword (e.g. "Rain", "Clear").
type WeatherSnapshot struct {
	Main        string   `json:"main" yaml:"main"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	TempC       float64  `json:"temp" yaml:"temp"`
	FeelsLikeC  *float64 `json:"feels_like,omitempty" yaml:"feels_like,omitempty"`
	Humidity    *int     `json:"humidity,omitempty" yaml:"humidity,omitempty"`
}

// Condition maps the provider keyword onto a Condition, case-insensitively.
func (w WeatherSnapshot) Condition() Condition {
	switch strings.ToLower(strings.TrimSpace(w.Main)) {
	case "clear":
		return ConditionClear
	case "rain":
		return ConditionRain
	case "drizzle":
		return ConditionDrizzle
	case "thunderstorm":
		return ConditionThunderstorm
	case "snow":
		return ConditionSnow
	default:
		return ConditionOther
	}
}
