// Package geo provides great-circle distance math for redemption
// location checks. All functions are pure; a missing location is a
// business state, so radius checks on a nil point return false rather
// than an error.
package geo

import "math"

// Mean Earth radius in kilometres (spherical approximation).
const earthRadiusKm = 6371.0

type Point struct {
	Lat float64
	Lng float64
}

// Valid reports whether both coordinates are finite and within range
// (lat in [-90,90], lng in [-180,180]).
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// DistanceKm returns the haversine great-circle distance between a and b.
func DistanceKm(a, b Point) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// IsWithinRadius reports whether p lies within radiusKm of center.
// A nil point never satisfies a radius check.
func IsWithinRadius(p *Point, center Point, radiusKm float64) bool {
	if p == nil || radiusKm < 0 {
		return false
	}
	return DistanceKm(*p, center) <= radiusKm
}
