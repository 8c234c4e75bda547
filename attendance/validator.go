package attendance

import (
	"time"

	"github.com/k-j-hyun/HRMS-jjpartners/geo"
	"github.com/k-j-hyun/HRMS-jjpartners/model"
)

// Classification is the outcome of validating a location reading against a
// fence.
type Classification int

const (
	// Inside means the reading confidently places the employee within the
	// fence, after the boundary has been shrunk by the reported accuracy.
	Inside Classification = iota
	// Outside means the reading is trustworthy but outside the boundary.
	Outside
	// Unreliable means the reading must not be trusted either way: the
	// reported accuracy or fix age exceeded the configured thresholds.
	Unreliable
)

func (c Classification) String() string {
	switch c {
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	case Unreliable:
		return "unreliable"
	default:
		return "unknown"
	}
}

// Default validation thresholds.
const (
	// DefaultAccuracyCeilingM is the worst reported GPS accuracy accepted.
	DefaultAccuracyCeilingM = 100.0
	// DefaultStalenessWindow is the maximum allowed fix age, measured from
	// capture to receipt.
	DefaultStalenessWindow = 120 * time.Second
	// MinPlausibleAccuracyM guards against mock-location providers, which
	// tend to report an impossibly precise fix.
	MinPlausibleAccuracyM = 1.0
)

// Validator classifies location readings against a fence. It is a pure
// value: identical (fence, reading) inputs always produce identical
// classifications.
type Validator struct {
	// AccuracyCeilingM rejects readings whose reported GPS error exceeds
	// this many metres.
	AccuracyCeilingM float64

	// StalenessWindow rejects readings whose capture time is older than
	// this relative to the receipt time.
	StalenessWindow time.Duration

	// RejectImplausibleAccuracy additionally rejects readings claiming an
	// accuracy below MinPlausibleAccuracyM.
	RejectImplausibleAccuracy bool
}

// DefaultValidator returns a Validator with the standard thresholds and the
// mock-location heuristic enabled.
func DefaultValidator() Validator {
	return Validator{
		AccuracyCeilingM:          DefaultAccuracyCeilingM,
		StalenessWindow:           DefaultStalenessWindow,
		RejectImplausibleAccuracy: true,
	}
}

// Validate classifies reading against fence. Reliability gates run first so
// a stale or inaccurate fix can never silently pass as Inside; containment
// shrinks circular fences by the reported accuracy.
func (v Validator) Validate(fence model.GeoFence, reading model.LocationReading) Classification {
	if reading.AccuracyM > v.AccuracyCeilingM {
		return Unreliable
	}
	if v.RejectImplausibleAccuracy && reading.AccuracyM < MinPlausibleAccuracyM {
		return Unreliable
	}
	if reading.Age() > v.StalenessWindow {
		return Unreliable
	}
	if geo.FenceContains(fence, reading.Position, reading.AccuracyM) {
		return Inside
	}
	return Outside
}
