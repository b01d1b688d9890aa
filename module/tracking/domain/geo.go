package domain

import (
	"errors"
	"math"
)

const earthRadiusKm = 6371

// ErrInvalidPointCount is returned by InterpolatePath when the requested
// number of intervals is not positive.
var ErrInvalidPointCount = errors.New("point count must be positive")

// GeoPoint is a WGS 84 coordinate in degrees. Coordinate ranges are not
// validated here; callers feeding user input must validate upstream.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceKm returns the haversine great-circle distance between two
// points in kilometers.
func DistanceKm(a, b GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// InterpolatePath returns n+1 evenly spaced points from start to end,
// both endpoints included, point i at fractional distance i/n. The
// interpolation is linear in lat/lng space, not geodesic; at ambulance
// trip scale the difference is far below GPS accuracy.
func InterpolatePath(start, end GeoPoint, n int) ([]GeoPoint, error) {
	if n <= 0 {
		return nil, ErrInvalidPointCount
	}

	points := make([]GeoPoint, 0, n+1)
	for i := 0; i <= n; i++ {
		f := float64(i) / float64(n)
		points = append(points, GeoPoint{
			Lat: start.Lat + (end.Lat-start.Lat)*f,
			Lng: start.Lng + (end.Lng-start.Lng)*f,
		})
	}
	return points, nil
}
