// Package geo provides great-circle distance calculations between airports.
package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean radius of Earth in kilometers.
const EarthRadiusKm = 6371.0

// Coordinates represents a geographic point in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IsValid returns true if the coordinates are within valid ranges.
// Latitude must be between -90 and 90, longitude between -180 and 180.
func (c Coordinates) IsValid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// HaversineKm calculates the great-circle distance in kilometers using
// the haversine formula on a sphere of radius EarthRadiusKm.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := degreesToRadians(lat1)
	lat2Rad := degreesToRadians(lat2)
	deltaLat := degreesToRadians(lat2 - lat1)
	deltaLon := degreesToRadians(lon2 - lon1)

	sinLat := math.Sin(deltaLat / 2)
	sinLon := math.Sin(deltaLon / 2)
	a := sinLat*sinLat + math.Cos(lat1Rad)*math.Cos(lat2Rad)*sinLon*sinLon

	// Floating-point error can push a slightly above 1 for antipodal points.
	c := 2 * math.Asin(math.Sqrt(math.Min(1, a)))

	return EarthRadiusKm * c
}

// DistanceKm returns the great-circle distance between two points rounded
// to the nearest whole kilometer. It is symmetric and DistanceKm(p, p) == 0.
func DistanceKm(from, to Coordinates) int {
	return int(math.Round(HaversineKm(from.Lat, from.Lon, to.Lat, to.Lon)))
}

// Nearest returns the index of the point in points closest to target and
// its distance in kilometers. It returns -1 when points is empty.
func Nearest(target Coordinates, points []Coordinates) (int, float64) {
	if len(points) == 0 {
		return -1, 0
	}

	origin := s2.LatLngFromDegrees(target.Lat, target.Lon)
	best := -1
	bestAngle := math.Inf(1)
	for i, p := range points {
		angle := origin.Distance(s2.LatLngFromDegrees(p.Lat, p.Lon)).Radians()
		if angle < bestAngle {
			best = i
			bestAngle = angle
		}
	}

	return best, bestAngle * EarthRadiusKm
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
