package model

import "errors"

// ErrInvalidFence indicates malformed boundary data.
var ErrInvalidFence = errors.New("invalid fence")

// FenceKind selects the boundary shape carried by a GeoFence.
type FenceKind string

const (
	FenceCircle  FenceKind = "circle"
	FencePolygon FenceKind = "polygon"
)

// CheckOutPolicy controls where an employee may check out from.
type CheckOutPolicy string

const (
	// CheckOutStrict requires the check-out reading to be inside the fence.
	CheckOutStrict CheckOutPolicy = "strict"
	// CheckOutLenient allows check-out from anywhere. Unreliable readings
	// are still rejected.
	CheckOutLenient CheckOutPolicy = "lenient"
)

// GeoFence is an immutable work-site boundary. Replacing a site's boundary
// registers a new fence under a new ID; attendance records keep the fence ID
// that was active when the record was created rather than a live reference.
type GeoFence struct {
	ID   string    `json:"id" yaml:"id"`
	Name string    `json:"name" yaml:"name"`
	Kind FenceKind `json:"kind" yaml:"kind"`

	// Center and RadiusM describe a circular fence.
	Center  Coordinate `json:"center" yaml:"center"`
	RadiusM float64    `json:"radius_m" yaml:"radius_m"`

	// Ring is the ordered boundary of a polygonal fence with at least three
	// vertices. The closing edge from the last vertex back to the first is
	// implicit.
	Ring []Coordinate `json:"ring,omitempty" yaml:"ring,omitempty"`

	// CheckOut is the check-out enforcement policy for this site. An empty
	// value is treated as strict by the state machine.
	CheckOut CheckOutPolicy `json:"checkout_policy" yaml:"checkout_policy"`
}
