package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const minutesPerDay = 24 * 60

// Period is one opening interval in minutes from midnight.
// A Close at or before Open means the place closes after midnight.
type Period struct {
	Open  int `json:"open" yaml:"open"`
	Close int `json:"close" yaml:"close"`
}

// OpeningHours lists the opening periods for each weekday. Weekdays with no
// entry are unknown, not closed. Keys decode from 0-6 (Sunday first) or from
// weekday names, full or three-letter, in any case.
type OpeningHours map[time.Weekday][]Period

var weekdayNames = map[string]time.Weekday{}

func init() {
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		weekdayNames[name] = d
		weekdayNames[name[:3]] = d
	}
}

// ParseWeekday accepts "0"-"6" or a weekday name.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("weekday %d out of range 0-6", n)
		}
		return time.Weekday(n), nil
	}
	if d, ok := weekdayNames[s]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func (h *OpeningHours) fromRaw(raw map[string][]Period) error {
	out := make(OpeningHours, len(raw))
	for k, periods := range raw {
		d, err := ParseWeekday(k)
		if err != nil {
			return fmt.Errorf("opening hours: %w", err)
		}
		out[d] = append(out[d], periods...)
	}
	*h = out
	return nil
}

// UnmarshalYAML reads the key text directly so quoted ("1"), plain (1) and
// named (monday) keys all decode.
func (h *OpeningHours) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("opening hours: line %d: expected a mapping", n.Line)
	}
	raw := make(map[string][]Period, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var periods []Period
		if err := n.Content[i+1].Decode(&periods); err != nil {
			return fmt.Errorf("opening hours: %w", err)
		}
		key := n.Content[i].Value
		raw[key] = append(raw[key], periods...)
	}
	return h.fromRaw(raw)
}

func (h *OpeningHours) UnmarshalJSON(b []byte) error {
	var raw map[string][]Period
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("opening hours: %w", err)
	}
	return h.fromRaw(raw)
}

// Envelope collapses the periods for day into a single [open, close] range
// spanning the earliest opening and the latest closing.
func (h OpeningHours) Envelope(day time.Weekday) (open, close int, ok bool) {
	periods := h[day]
	if len(periods) == 0 {
		return 0, 0, false
	}
	open, close = minutesPerDay, 0
	for _, p := range periods {
		c := p.Close
		if c <= p.Open {
			c += minutesPerDay
		}
		if p.Open < open {
			open = p.Open
		}
		if c > close {
			close = c
		}
	}
	return open, close, true
}
