package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gotravel/internal/geo"
	"gotravel/internal/model"
)

// Adapter reads enriched places from a CSV export with a header row. Known
// columns: place_id, name, category, why, lat, lng, rating,
// user_ratings_total, formatted_address, photo_reference, types (separated
// by ';'). Unknown columns are ignored; empty cells leave a field unset.
type Adapter struct {
	Path string
	// Open overrides how Path is opened; tests use it.
	Open func(path string) (io.ReadCloser, error)
}

func (a Adapter) Name() string { return "csv:" + a.Path }

func (a Adapter) FetchPlaces(ctx context.Context) ([]*model.CandidatePlace, error) {
	open := a.Open
	if open == nil {
		open = func(p string) (io.ReadCloser, error) { return os.Open(p) }
	}
	f, err := open(a.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(ctx, f)
}

// Parse decodes CSV records into places. Rows with neither a name nor an id
// are skipped.
func Parse(ctx context.Context, r io.Reader) ([]*model.CandidatePlace, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["name"]; !ok {
		return nil, errors.New("header has no name column")
	}

	var out []*model.CandidatePlace
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		get := func(name string) string {
			if i, ok := col[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		p := &model.CandidatePlace{
			ID:       get("place_id"),
			Name:     get("name"),
			Category: get("category"),
			Why:      get("why"),
			Address:  get("formatted_address"),
			PhotoRef: get("photo_reference"),
		}
		if p.Name == "" && p.ID == "" {
			continue
		}
		if t := get("types"); t != "" {
			for _, s := range strings.Split(t, ";") {
				if s = strings.TrimSpace(s); s != "" {
					p.Types = append(p.Types, s)
				}
			}
		}
		if lat, lng := get("lat"), get("lng"); lat != "" && lng != "" {
			la, err1 := strconv.ParseFloat(lat, 64)
			ln, err2 := strconv.ParseFloat(lng, 64)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("line %d: bad coordinates %q,%q", line, lat, lng)
			}
			p.Location = &geo.Point{Lat: la, Lng: ln}
		}
		if v := get("rating"); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad rating %q", line, v)
			}
			p.Rating = &f
		}
		if v := get("user_ratings_total"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad review count %q", line, v)
			}
			p.ReviewCount = &n
		}
		out = append(out, p)
	}
}
