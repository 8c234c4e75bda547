// Package violation derives attendance policy violations from closed
// records: late arrivals, early departures, and implausibly short shifts.
// Detection is a pure computation so payroll reruns always reproduce the
// same findings.
package violation

import (
	"time"

	"github.com/k-j-hyun/HRMS-jjpartners/model"
)

// Type names a violation category.
type Type string

const (
	LateArrival    Type = "late_arrival"
	EarlyDeparture Type = "early_departure"
	ShortShift     Type = "short_shift"
)

// Severity grades a violation for review queues.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Grace and grading thresholds.
const (
	// DefaultLateThreshold is how late an arrival may be before it counts.
	DefaultLateThreshold = 10 * time.Minute
	// DefaultEarlyLeaveThreshold is how early a departure may be before it
	// counts.
	DefaultEarlyLeaveThreshold = 30 * time.Minute
	// DefaultMinShift is the shortest shift not flagged as suspicious.
	DefaultMinShift = 30 * time.Minute
)

// Schedule is an employee's expected working window for one day, expressed
// as offsets from midnight of the shift date in the schedule's location.
type Schedule struct {
	// WorkStart and WorkEnd are offsets from midnight, e.g. 9h and 18h.
	WorkStart time.Duration
	WorkEnd   time.Duration
	// Location is the timezone midnight is taken in. Nil means UTC.
	Location *time.Location
}

func (s Schedule) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// startEnd anchors the schedule to the calendar day of t.
func (s Schedule) startEnd(t time.Time) (time.Time, time.Time) {
	local := t.In(s.location())
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location())
	return midnight.Add(s.WorkStart), midnight.Add(s.WorkEnd)
}

// Violation is one policy finding against a closed record.
type Violation struct {
	Type       Type
	Severity   Severity
	EmployeeID string
	RecordID   string
	// Amount is how far over the threshold the record was: minutes late,
	// minutes early, or the actual shift length for a short shift.
	Amount time.Duration
}

// Detector applies the violation thresholds. The zero value is unusable;
// construct with NewDetector.
type Detector struct {
	LateThreshold       time.Duration
	EarlyLeaveThreshold time.Duration
	MinShift            time.Duration
}

// NewDetector returns a Detector with the default thresholds.
func NewDetector() Detector {
	return Detector{
		LateThreshold:       DefaultLateThreshold,
		EarlyLeaveThreshold: DefaultEarlyLeaveThreshold,
		MinShift:            DefaultMinShift,
	}
}

// Detect returns the violations a closed record commits against the
// schedule. OPEN records produce no findings: their departure and length
// are not yet known.
func (d Detector) Detect(schedule Schedule, rec model.AttendanceRecord) []Violation {
	if !rec.Closed() {
		return nil
	}
	start, end := schedule.startEnd(rec.CheckInAt)

	var found []Violation
	if late := rec.CheckInAt.Sub(start); late >= d.LateThreshold {
		found = append(found, Violation{
			Type:       LateArrival,
			Severity:   lateSeverity(late),
			EmployeeID: rec.EmployeeID,
			RecordID:   rec.ID,
			Amount:     late,
		})
	}
	if early := end.Sub(rec.CheckOutAt); early >= d.EarlyLeaveThreshold {
		found = append(found, Violation{
			Type:       EarlyDeparture,
			Severity:   earlySeverity(early),
			EmployeeID: rec.EmployeeID,
			RecordID:   rec.ID,
			Amount:     early,
		})
	}
	if worked := rec.CheckOutAt.Sub(rec.CheckInAt); worked < d.MinShift {
		found = append(found, Violation{
			Type:       ShortShift,
			Severity:   SeverityMedium,
			EmployeeID: rec.EmployeeID,
			RecordID:   rec.ID,
			Amount:     worked,
		})
	}
	return found
}

// DetectAll runs Detect over a batch of records under one schedule.
func (d Detector) DetectAll(schedule Schedule, records []model.AttendanceRecord) []Violation {
	var found []Violation
	for _, rec := range records {
		found = append(found, d.Detect(schedule, rec)...)
	}
	return found
}

func lateSeverity(late time.Duration) Severity {
	switch {
	case late >= time.Hour:
		return SeverityHigh
	case late >= 30*time.Minute:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func earlySeverity(early time.Duration) Severity {
	switch {
	case early >= 2*time.Hour:
		return SeverityHigh
	case early >= time.Hour:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
