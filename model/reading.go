package model

import "time"

// LocationReading is a single GPS fix reported by a client. Readings are
// ephemeral: each one is validated in the context of a single request and
// never persisted on its own.
type LocationReading struct {
	EmployeeID string
	Position   Coordinate

	// AccuracyM is the reported GPS error radius in metres.
	AccuracyM float64

	// CapturedAt is when the device took the fix; ReceivedAt is when the
	// server accepted the request. The gap between the two is the fix age
	// used for staleness checks.
	CapturedAt time.Time
	ReceivedAt time.Time
}

// Age returns how old the fix was when the server received it.
func (r LocationReading) Age() time.Duration {
	return r.ReceivedAt.Sub(r.CapturedAt)
}
