package geo

import (
	"math"
	"testing"

	"github.com/k-j-hyun/HRMS-jjpartners/model"
)

func TestDistanceMetersOneDegreeAtEquator(t *testing.T) {
	a := model.Coordinate{Lat: 0, Lon: 0}
	b := model.Coordinate{Lat: 0, Lon: 1}

	want := EarthRadiusM * math.Pi / 180
	got := DistanceMeters(a, b)
	if math.Abs(got-want) > 0.01 {
		t.Fatalf("DistanceMeters = %v, want %v", got, want)
	}
}

func TestDistanceMetersSymmetricAndZero(t *testing.T) {
	a := model.Coordinate{Lat: 37.5665, Lon: 126.9780}
	b := model.Coordinate{Lat: 37.5700, Lon: 126.9900}

	if d := DistanceMeters(a, a); d != 0 {
		t.Fatalf("distance to self = %v, want 0", d)
	}
	if d1, d2 := DistanceMeters(a, b), DistanceMeters(b, a); d1 != d2 {
		t.Fatalf("distance not symmetric: %v vs %v", d1, d2)
	}
}

func TestDistanceMetersSmallOffset(t *testing.T) {
	// One ten-thousandth of a degree of longitude at Seoul's latitude is
	// a little under nine metres.
	a := model.Coordinate{Lat: 37.5665, Lon: 126.9780}
	b := model.Coordinate{Lat: 37.5665, Lon: 126.9781}

	d := DistanceMeters(a, b)
	if d < 8.5 || d > 9.1 {
		t.Fatalf("DistanceMeters = %v, want roughly 8.8", d)
	}
}

func TestPointInRingSquare(t *testing.T) {
	ring := []model.Coordinate{
		{Lat: 37.56, Lon: 126.97},
		{Lat: 37.57, Lon: 126.97},
		{Lat: 37.57, Lon: 126.99},
		{Lat: 37.56, Lon: 126.99},
	}

	cases := []struct {
		name string
		p    model.Coordinate
		want bool
	}{
		{"inside", model.Coordinate{Lat: 37.565, Lon: 126.98}, true},
		{"north of ring", model.Coordinate{Lat: 37.58, Lon: 126.98}, false},
		{"west of ring", model.Coordinate{Lat: 37.565, Lon: 126.96}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PointInRing(tc.p, ring); got != tc.want {
				t.Fatalf("PointInRing(%v) = %v, want %v", tc.p, got, tc.want)
			}
		})
	}
}

func TestPointInRingAntimeridian(t *testing.T) {
	// A band straddling the antimeridian between 179E and 179W.
	ring := []model.Coordinate{
		{Lat: 10, Lon: 179},
		{Lat: 10, Lon: -179},
		{Lat: -10, Lon: -179},
		{Lat: -10, Lon: 179},
	}

	inside := model.Coordinate{Lat: 0, Lon: 179.5}
	if !PointInRing(inside, ring) {
		t.Fatalf("point %v should be inside antimeridian ring", inside)
	}
	alsoInside := model.Coordinate{Lat: 0, Lon: -179.5}
	if !PointInRing(alsoInside, ring) {
		t.Fatalf("point %v should be inside antimeridian ring", alsoInside)
	}
	outside := model.Coordinate{Lat: 0, Lon: 170}
	if PointInRing(outside, ring) {
		t.Fatalf("point %v should be outside antimeridian ring", outside)
	}
}

func TestPointInRingTooFewVertices(t *testing.T) {
	ring := []model.Coordinate{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}}
	if PointInRing(model.Coordinate{Lat: 0.5, Lon: 0.5}, ring) {
		t.Fatalf("degenerate ring should contain nothing")
	}
}

func TestRingSelfIntersects(t *testing.T) {
	square := []model.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 10, Lon: 0},
		{Lat: 10, Lon: 10},
		{Lat: 0, Lon: 10},
	}
	if RingSelfIntersects(square) {
		t.Fatalf("square reported as self-intersecting")
	}

	bowtie := []model.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 10, Lon: 10},
		{Lat: 10, Lon: 0},
		{Lat: 0, Lon: 10},
	}
	if !RingSelfIntersects(bowtie) {
		t.Fatalf("bowtie not reported as self-intersecting")
	}
}

func TestFenceContainsCircleShrink(t *testing.T) {
	center := model.Coordinate{Lat: 37.5665, Lon: 126.9780}
	fence := model.GeoFence{
		ID:      "site-1",
		Kind:    model.FenceCircle,
		Center:  center,
		RadiusM: 50,
	}

	p := model.Coordinate{Lat: 37.5665, Lon: 126.9781}
	d := DistanceMeters(center, p)

	// Shrinking to just past the reading keeps it inside; shrinking past
	// it pushes it out.
	if !FenceContains(fence, p, fence.RadiusM-d-0.001) {
		t.Fatalf("point at %.3fm should be inside with %.3fm shrink", d, fence.RadiusM-d-0.001)
	}
	if FenceContains(fence, p, fence.RadiusM-d+0.001) {
		t.Fatalf("point at %.3fm should be outside with %.3fm shrink", d, fence.RadiusM-d+0.001)
	}
}

func TestFenceContainsBoundaryWithAccuracy(t *testing.T) {
	// radius 50m, accuracy 10m: the effective boundary sits at 40m.
	center := model.Coordinate{Lat: 37.5665, Lon: 126.9780}
	fence := model.GeoFence{
		ID:      "site-1",
		Kind:    model.FenceCircle,
		Center:  center,
		RadiusM: 50,
	}

	near := model.Coordinate{Lat: 37.5665, Lon: 126.9780 + 0.00045} // ~39.7m
	far := model.Coordinate{Lat: 37.5665, Lon: 126.9780 + 0.00046}  // ~40.6m

	if !FenceContains(fence, near, 10) {
		t.Fatalf("reading %.2fm away should be inside", DistanceMeters(center, near))
	}
	if FenceContains(fence, far, 10) {
		t.Fatalf("reading %.2fm away should be outside", DistanceMeters(center, far))
	}
}

func TestFenceContainsUnknownKind(t *testing.T) {
	fence := model.GeoFence{ID: "site-x", Kind: "blob", RadiusM: 100}
	if FenceContains(fence, model.Coordinate{}, 0) {
		t.Fatalf("unknown fence kind should contain nothing")
	}
}

func TestValidateFence(t *testing.T) {
	cases := []struct {
		name    string
		fence   model.GeoFence
		wantErr bool
	}{
		{
			"valid circle",
			model.GeoFence{ID: "c", Kind: model.FenceCircle, Center: model.Coordinate{Lat: 37.5, Lon: 127}, RadiusM: 50},
			false,
		},
		{
			"zero radius",
			model.GeoFence{ID: "c", Kind: model.FenceCircle, Center: model.Coordinate{Lat: 37.5, Lon: 127}},
			true,
		},
		{
			"bad centre latitude",
			model.GeoFence{ID: "c", Kind: model.FenceCircle, Center: model.Coordinate{Lat: 97, Lon: 127}, RadiusM: 50},
			true,
		},
		{
			"valid polygon",
			model.GeoFence{ID: "p", Kind: model.FencePolygon, Ring: []model.Coordinate{
				{Lat: 0, Lon: 0}, {Lat: 1, Lon: 0}, {Lat: 1, Lon: 1}, {Lat: 0, Lon: 1},
			}},
			false,
		},
		{
			"two vertex ring",
			model.GeoFence{ID: "p", Kind: model.FencePolygon, Ring: []model.Coordinate{
				{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1},
			}},
			true,
		},
		{
			"self-intersecting ring",
			model.GeoFence{ID: "p", Kind: model.FencePolygon, Ring: []model.Coordinate{
				{Lat: 0, Lon: 0}, {Lat: 10, Lon: 10}, {Lat: 10, Lon: 0}, {Lat: 0, Lon: 10},
			}},
			true,
		},
		{
			"missing ID",
			model.GeoFence{Kind: model.FenceCircle, RadiusM: 50},
			true,
		},
		{
			"unknown kind",
			model.GeoFence{ID: "x", Kind: "hexagon", RadiusM: 50},
			true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFence(tc.fence)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateFence: err = %v, wantErr = %v", err, tc.wantErr)
			}
		})
	}
}
