package csvfile

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"gotravel/internal/integrations"
)

const sample = `place_id,name,category,lat,lng,rating,user_ratings_total,types,extra
louvre,Louvre,museum,48.8606,2.3376,4.7,250000,museum;tourist_attraction,x
,Corner Cafe,cafe,,,,,,
,,,,,,,,
`

func TestParse(t *testing.T) {
	places, err := Parse(context.Background(), strings.NewReader(sample))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(places) != 2 {
		t.Fatalf("expected 2 places, got %d", len(places))
	}
	l := places[0]
	if l.ID != "louvre" || l.Location == nil || l.Location.Lat != 48.8606 || *l.Rating != 4.7 || *l.ReviewCount != 250000 {
		t.Fatalf("unexpected louvre: %+v", l)
	}
	if len(l.Types) != 2 || l.Types[1] != "tourist_attraction" {
		t.Fatalf("types: %v", l.Types)
	}
	c := places[1]
	if c.Location != nil || c.Rating != nil || c.ReviewCount != nil {
		t.Fatalf("empty cells should stay unset: %+v", c)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"no name column": "id,category\n1,cafe\n",
		"bad lat":        "name,lat,lng\nx,north,2\n",
		"bad rating":     "name,rating\nx,five\n",
		"bad reviews":    "name,user_ratings_total\nx,many\n",
	}
	for name, body := range cases {
		if _, err := Parse(context.Background(), strings.NewReader(body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if places, err := Parse(context.Background(), strings.NewReader("")); err != nil || places != nil {
		t.Fatalf("empty input: %v %v", places, err)
	}
}

func TestAdapterThroughCollect(t *testing.T) {
	a := Adapter{Path: "places.csv", Open: func(string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(sample)), nil
	}}
	places, err := integrations.Collect(context.Background(), a)
	if err != nil || len(places) != 2 {
		t.Fatalf("collect: %v %d", err, len(places))
	}

	missing := Adapter{Path: "missing.csv", Open: func(string) (io.ReadCloser, error) { return nil, os.ErrNotExist }}
	_, err = integrations.Collect(context.Background(), a, missing)
	var se *integrations.SourceError
	if !errors.As(err, &se) || se.Source != "csv:missing.csv" || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}
