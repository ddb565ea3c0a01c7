// Package geo holds coordinate helpers shared by the scorer and the router.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// HaversineKm returns the great-circle distance between a and b in kilometers.
func HaversineKm(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// Centroid returns the mean of the given points. ok is false when pts is empty,
// in which case the zero Point is returned.
func Centroid(pts []Point) (c Point, ok bool) {
	if len(pts) == 0 {
		return Point{}, false
	}
	for _, p := range pts {
		c.Lat += p.Lat
		c.Lng += p.Lng
	}
	n := float64(len(pts))
	c.Lat /= n
	c.Lng /= n
	return c, true
}
