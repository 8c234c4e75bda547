package geo

import (
	"fmt"

	"github.com/k-j-hyun/HRMS-jjpartners/model"
)

// FenceContains reports whether p lies inside the fence boundary.
//
// For circular fences the boundary is shrunk by shrinkM metres before the
// test, so a reading with a large reported GPS error cannot pass on the
// strength of a fix that may actually be outside. Polygonal fences use a
// plain containment test; the accuracy gate lives in the validator's
// ceiling check.
//
// Fences of an unknown kind contain nothing.
func FenceContains(f model.GeoFence, p model.Coordinate, shrinkM float64) bool {
	switch f.Kind {
	case model.FenceCircle:
		return DistanceMeters(f.Center, p) <= f.RadiusM-shrinkM
	case model.FencePolygon:
		return PointInRing(p, f.Ring)
	default:
		return false
	}
}

// ValidateFence checks the structural invariants of a fence: a circular
// fence needs a valid centre and a positive radius; a polygonal fence needs
// at least three valid vertices forming a non-self-intersecting ring.
func ValidateFence(f model.GeoFence) error {
	if f.ID == "" {
		return fmt.Errorf("%w: missing fence ID", model.ErrInvalidFence)
	}
	switch f.Kind {
	case model.FenceCircle:
		if err := f.Center.Validate(); err != nil {
			return fmt.Errorf("%w: fence %q centre: %v", model.ErrInvalidFence, f.ID, err)
		}
		if f.RadiusM <= 0 {
			return fmt.Errorf("%w: fence %q radius must be positive, got %v", model.ErrInvalidFence, f.ID, f.RadiusM)
		}
	case model.FencePolygon:
		if len(f.Ring) < 3 {
			return fmt.Errorf("%w: fence %q ring needs at least 3 vertices, got %d", model.ErrInvalidFence, f.ID, len(f.Ring))
		}
		for i, v := range f.Ring {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("%w: fence %q ring vertex %d: %v", model.ErrInvalidFence, f.ID, i, err)
			}
		}
		if RingSelfIntersects(f.Ring) {
			return fmt.Errorf("%w: fence %q ring is self-intersecting", model.ErrInvalidFence, f.ID)
		}
	default:
		return fmt.Errorf("%w: fence %q has unknown kind %q", model.ErrInvalidFence, f.ID, f.Kind)
	}
	return nil
}

// RingSelfIntersects reports whether any two non-adjacent edges of the
// closed ring cross. Edges sharing a vertex are skipped, so touching at the
// implicit closing vertex is fine.
func RingSelfIntersects(ring []model.Coordinate) bool {
	n := len(ring)
	if n < 4 {
		// A triangle cannot self-intersect.
		return false
	}

	// Work in a planar frame with longitudes normalised against the first
	// vertex so antimeridian-straddling rings behave.
	pts := make([]planarPoint, n)
	ref := ring[0].Lon
	for i, v := range ring {
		pts[i] = planarPoint{x: lonDelta(v.Lon, ref), y: v.Lat}
	}

	for i := 0; i < n; i++ {
		a1 := pts[i]
		a2 := pts[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// Skip the edge itself and edges sharing an endpoint.
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue
			}
			b1 := pts[j]
			b2 := pts[(j+1)%n]
			if segmentsCross(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

type planarPoint struct {
	x, y float64
}

// segmentsCross reports a proper crossing between segments p1p2 and q1q2.
func segmentsCross(p1, p2, q1, q2 planarPoint) bool {
	d1 := crossProduct(q1, q2, p1)
	d2 := crossProduct(q1, q2, p2)
	d3 := crossProduct(p1, p2, q1)
	d4 := crossProduct(p1, p2, q2)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func crossProduct(a, b, c planarPoint) float64 {
	return (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
}
