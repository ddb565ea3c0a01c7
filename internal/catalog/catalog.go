// Package catalog holds the static lookup tables shared by the scorer and the
// router: visit durations, preferred visit windows and the outdoor type set.
// Tables are read-only once built.
package catalog

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Window is a preferred range of visit-start times in minutes from midnight.
type Window struct {
	Earliest int `yaml:"earliest"`
	Latest   int `yaml:"latest"`
}

// Tables is the immutable category configuration.
type Tables struct {
	DefaultVisitMinutes int
	visit               map[string]int
	windows             map[string]Window
	outdoor             map[string]struct{}
}

var (
	defaultOnce   sync.Once
	defaultTables *Tables
)

// Default returns the built-in tables. The same instance is returned on every call.
func Default() *Tables {
	defaultOnce.Do(func() {
		defaultTables = &Tables{
			DefaultVisitMinutes: 60,
			visit: map[string]int{
				"landmark":   45,
				"museum":     120,
				"restaurant": 75,
				"nature":     90,
				"nightlife":  120,
				"club":       120,
				"bar":        90,
				"shopping":   60,
				"cultural":   60,
				"cafe":       30,
				"breakfast":  45,
				"brunch":     60,
				"lunch":      60,
				"dinner":     90,
			},
			windows: map[string]Window{
				"breakfast":  {540, 660},
				"brunch":     {600, 780},
				"cafe":       {480, 1080},
				"museum":     {540, 900},
				"landmark":   {540, 1020},
				"cultural":   {540, 1020},
				"nature":     {540, 1020},
				"shopping":   {600, 1080},
				"lunch":      {720, 840},
				"restaurant": {720, 1200},
				"dinner":     {1080, 1260},
				"nightlife":  {1080, 1380},
				"club":       {1260, 1440},
				"bar":        {1080, 1380},
			},
			outdoor: setOf(
				"park", "zoo", "amusement_park", "campground", "stadium",
				"natural_feature", "nature_reserve", "hiking_area", "beach",
				"garden", "nature", "outdoor",
			),
		}
	})
	return defaultTables
}

func setOf(items ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(items))
	for _, it := range items {
		s[normalize(it)] = struct{}{}
	}
	return s
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// VisitMinutes returns the visit duration for category, or the default.
func (t *Tables) VisitMinutes(category string) int {
	if d, ok := t.visit[normalize(category)]; ok {
		return d
	}
	return t.DefaultVisitMinutes
}

// Window returns the preferred visit-start window for category.
func (t *Tables) Window(category string) (Window, bool) {
	w, ok := t.windows[normalize(category)]
	return w, ok
}

// IsOutdoor reports whether any of the labels is an outdoor type.
func (t *Tables) IsOutdoor(labels ...string) bool {
	for _, l := range labels {
		if _, ok := t.outdoor[normalize(l)]; ok {
			return true
		}
	}
	return false
}

// Overlay is the YAML shape accepted by Load. Entries replace or extend the
// defaults; an outdoor list replaces the default set entirely.
type Overlay struct {
	DefaultVisitMinutes int               `yaml:"default_visit_minutes"`
	VisitMinutes        map[string]int    `yaml:"visit_minutes"`
	Windows             map[string]Window `yaml:"windows"`
	Outdoor             []string          `yaml:"outdoor"`
}

// Load reads a YAML overlay and merges it onto a copy of Default().
func Load(r io.Reader) (*Tables, error) {
	var ov Overlay
	if err := yaml.NewDecoder(r).Decode(&ov); err != nil && err != io.EOF {
		return nil, fmt.Errorf("catalog: decode overlay: %w", err)
	}
	return Merge(Default(), ov)
}

// Merge returns a new Tables built from base with ov applied.
func Merge(base *Tables, ov Overlay) (*Tables, error) {
	out := &Tables{
		DefaultVisitMinutes: base.DefaultVisitMinutes,
		visit:               make(map[string]int, len(base.visit)+len(ov.VisitMinutes)),
		windows:             make(map[string]Window, len(base.windows)+len(ov.Windows)),
	}
	for k, v := range base.visit {
		out.visit[k] = v
	}
	for k, v := range base.windows {
		out.windows[k] = v
	}
	if ov.DefaultVisitMinutes < 0 {
		return nil, fmt.Errorf("catalog: default_visit_minutes must be >= 0")
	}
	if ov.DefaultVisitMinutes > 0 {
		out.DefaultVisitMinutes = ov.DefaultVisitMinutes
	}
	for k, v := range ov.VisitMinutes {
		if v <= 0 {
			return nil, fmt.Errorf("catalog: visit_minutes[%s] must be > 0", k)
		}
		out.visit[normalize(k)] = v
	}
	for k, w := range ov.Windows {
		if w.Latest < w.Earliest {
			return nil, fmt.Errorf("catalog: window %s latest %d before earliest %d", k, w.Latest, w.Earliest)
		}
		out.windows[normalize(k)] = w
	}
	if len(ov.Outdoor) > 0 {
		out.outdoor = setOf(ov.Outdoor...)
	} else {
		out.outdoor = make(map[string]struct{}, len(base.outdoor))
		for k := range base.outdoor {
			out.outdoor[k] = struct{}{}
		}
	}
	return out, nil
}
