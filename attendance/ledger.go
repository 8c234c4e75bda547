package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/k-j-hyun/HRMS-jjpartners/model"
)

// Ledger computes worked durations from closed attendance records. It never
// counts OPEN records: an in-progress shift has no duration until it is
// closed.
type Ledger struct {
	store RecordStore
}

// NewLedger builds a ledger over the given record store.
func NewLedger(store RecordStore) *Ledger {
	return &Ledger{store: store}
}

// Total is the outcome of a duration query.
type Total struct {
	// Worked is the sum of all closed intervals clipped to the query range.
	Worked time.Duration
	// IncludesForceClosed flags that at least one contributing interval came
	// from a force-closed record, so the total may not reflect actual
	// presence.
	IncludesForceClosed bool
	// Intervals are the clipped contributing intervals, ordered as returned
	// by the store.
	Intervals []model.WorkInterval
}

// TotalWorked sums the employee's closed intervals over [from, to].
// Intervals straddling the range boundaries contribute only their portion
// inside the range. An inverted or empty range yields a zero total.
func (l *Ledger) TotalWorked(ctx context.Context, employeeID string, from, to time.Time) (Total, error) {
	if !to.After(from) {
		return Total{}, nil
	}

	records, err := l.store.ClosedRecordsOverlapping(ctx, employeeID, from, to)
	if err != nil {
		return Total{}, fmt.Errorf("load closed records: %w", err)
	}

	var total Total
	for _, rec := range records {
		interval, ok := rec.Interval()
		if !ok {
			continue
		}
		clipped, ok := interval.Clip(from, to)
		if !ok {
			continue
		}
		total.Worked += clipped.Duration()
		total.IncludesForceClosed = total.IncludesForceClosed || clipped.ForceClosed
		total.Intervals = append(total.Intervals, clipped)
	}
	return total, nil
}
