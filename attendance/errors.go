package attendance

import (
	"errors"

	"github.com/k-j-hyun/HRMS-jjpartners/model"
)

var (
	// ErrOutOfRange indicates a validated position outside the work-site
	// boundary.
	ErrOutOfRange = errors.New("location outside work-site boundary")
	// ErrUnreliableLocation indicates the reading's accuracy or age
	// exceeded the configured thresholds.
	ErrUnreliableLocation = errors.New("location reading unreliable")
	// ErrAlreadyCheckedIn indicates the employee already has an OPEN
	// attendance record.
	ErrAlreadyCheckedIn = errors.New("employee already checked in")
	// ErrNotCheckedIn indicates the employee has no OPEN attendance record.
	ErrNotCheckedIn = errors.New("employee not checked in")
)

// Re-export the model validation sentinels so callers can depend on
// attendance.* alone.
var (
	// ErrInvalidFence indicates malformed boundary data.
	ErrInvalidFence = model.ErrInvalidFence
	// ErrInvalidCoordinate indicates an out-of-range lat/lon pair.
	ErrInvalidCoordinate = model.ErrInvalidCoordinate
)

// IsPolicyViolation reports whether err is an expected user-facing
// validation failure rather than a storage or infrastructure fault. The web
// layer renders the two differently: "you are not at the work site" for the
// former, "try again" for the latter.
func IsPolicyViolation(err error) bool {
	for _, sentinel := range []error{
		ErrOutOfRange,
		ErrUnreliableLocation,
		ErrAlreadyCheckedIn,
		ErrNotCheckedIn,
		ErrInvalidFence,
		ErrInvalidCoordinate,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
