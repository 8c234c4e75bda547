package model

import "time"

// RecordStatus is the lifecycle state of an attendance record.
type RecordStatus string

const (
	// StatusOpen marks an in-progress shift: checked in, not yet out.
	StatusOpen RecordStatus = "OPEN"
	// StatusClosed marks a shift completed by a normal check-out.
	StatusClosed RecordStatus = "CLOSED"
	// StatusForceClosed marks a shift terminated administratively, for
	// example because the employee never checked out.
	StatusForceClosed RecordStatus = "FORCE_CLOSED"
)

// AttendanceRecord is one check-in/check-out interval for an employee at a
// site. While OPEN it is owned exclusively by the attendance state machine;
// once closed it becomes an immutable fact consumed by the duration ledger.
type AttendanceRecord struct {
	ID         string
	EmployeeID string
	FenceID    string

	CheckInAt time.Time
	// CheckOutAt is the zero time while the record is OPEN.
	CheckOutAt time.Time

	Status RecordStatus

	// CloseReason is set when the record was force-closed.
	CloseReason string
}

// Closed reports whether the record has reached a terminal status.
func (r AttendanceRecord) Closed() bool {
	return r.Status == StatusClosed || r.Status == StatusForceClosed
}

// Interval returns the worked interval for a closed record. It returns
// ok=false for OPEN records: an in-progress shift never contributes a
// partial duration to totals.
func (r AttendanceRecord) Interval() (WorkInterval, bool) {
	if !r.Closed() {
		return WorkInterval{}, false
	}
	return WorkInterval{
		Start:       r.CheckInAt,
		End:         r.CheckOutAt,
		ForceClosed: r.Status == StatusForceClosed,
	}, true
}

// WorkInterval is a derived, read-only view of a closed attendance record.
type WorkInterval struct {
	Start       time.Time
	End         time.Time
	ForceClosed bool
}

// Duration returns the interval length.
func (w WorkInterval) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Clip bounds the interval to [from, to]. It returns ok=false when the
// interval does not overlap the range at all.
func (w WorkInterval) Clip(from, to time.Time) (WorkInterval, bool) {
	if !w.End.After(from) || !w.Start.Before(to) {
		return WorkInterval{}, false
	}
	clipped := w
	if clipped.Start.Before(from) {
		clipped.Start = from
	}
	if clipped.End.After(to) {
		clipped.End = to
	}
	return clipped, true
}
