// Package geo holds the distance math shared by clustering and the nearby lookups.
package geo

import (
	"fmt"
	"math"

	"github.com/uber/h3-go/v4"
)

// EarthRadius is the mean Earth radius in meters
const EarthRadius = 6371000.0

// Point is a WGS84 coordinate in degrees
type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%f, %f)", p.Lat, p.Lng)
}

// Valid reports whether the point is finite and within the WGS84 ranges
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func toRadians(d float64) float64 {
	return d * math.Pi / 180
}

// Distance returns the great-circle distance in meters using the Haversine formula
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	if lat1 == lat2 && lng1 == lng2 {
		return 0
	}

	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadius * c
}

// DistanceTo is Distance between two points
func (p Point) DistanceTo(other Point) float64 {
	return Distance(p.Lat, p.Lng, other.Lat, other.Lng)
}

// DegreeDistance is the planar distance in degrees. It is only good for coarse
// "same area" checks and must not be used for meter thresholds.
func DegreeDistance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := math.Abs(lat1 - lat2)
	dLng := math.Abs(lng1 - lng2)
	return math.Sqrt(dLat*dLat + dLng*dLng)
}

// CellOf returns the H3 cell containing the point at the given resolution
func CellOf(p Point, res int) (h3.Cell, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return 0, fmt.Errorf("failed to convert %s to h3 cell at res %d: %w", p, res, err)
	}
	return cell, nil
}
