// Package geo holds the pure geometry primitives shared by fence
// containment checks and job-search ranking. Keeping a single distance
// implementation here prevents attendance validation and search results from
// ever disagreeing about how far apart two points are.
package geo

import (
	"math"

	"github.com/k-j-hyun/HRMS-jjpartners/model"
)

// EarthRadiusM is the mean Earth radius used for all great-circle
// calculations (metres).
const EarthRadiusM = 6371000.0

// DistanceMeters returns the great-circle distance between two coordinates
// using the haversine formula.
func DistanceMeters(a, b model.Coordinate) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusM * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// PointInRing reports whether p lies inside the closed polygon described by
// ring, using ray casting. Longitudes are normalised relative to the test
// point so edges crossing the antimeridian stay contiguous.
func PointInRing(p model.Coordinate, ring []model.Coordinate) bool {
	n := len(ring)
	if n < 3 {
		return false
	}

	// The test point sits at x=0 in the normalised frame; the ray extends
	// toward +x.
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		yi, yj := ring[i].Lat, ring[j].Lat
		if (yi > p.Lat) == (yj > p.Lat) {
			continue
		}
		xi := lonDelta(ring[i].Lon, p.Lon)
		xj := lonDelta(ring[j].Lon, p.Lon)
		xCross := xi + (p.Lat-yi)/(yj-yi)*(xj-xi)
		if xCross > 0 {
			inside = !inside
		}
	}
	return inside
}

// lonDelta normalises the signed longitude difference lon-ref into
// [-180, 180).
func lonDelta(lon, ref float64) float64 {
	return math.Mod(lon-ref+540, 360) - 180
}
