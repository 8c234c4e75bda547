package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/k-j-hyun/HRMS-jjpartners/clock"
	"github.com/k-j-hyun/HRMS-jjpartners/internal/logging"
)

const (
	// DefaultMaxShift is how long a shift may stay OPEN before the sweeper
	// force-closes it.
	DefaultMaxShift = 16 * time.Hour
	// DefaultSweepInterval is how often the sweeper scans for stale shifts.
	DefaultSweepInterval = 5 * time.Minute

	// SweepCloseReason is recorded on every record the sweeper closes.
	SweepCloseReason = "maximum shift duration exceeded"
)

// Sweeper force-closes shifts whose employees never checked out. Each stale
// record is closed at check-in time plus the maximum shift length, not at
// sweep time, so a late sweep does not inflate the worked duration.
type Sweeper struct {
	Service  *Service
	Store    RecordStore
	Clock    clock.Clock
	MaxShift time.Duration
	Interval time.Duration
	Log      logging.Logger
}

// NewSweeper builds a sweeper with the default shift ceiling and scan
// interval.
func NewSweeper(svc *Service, store RecordStore, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		Service:  svc,
		Store:    store,
		Clock:    clock.Real(),
		MaxShift: DefaultMaxShift,
		Interval: DefaultSweepInterval,
		Log:      logging.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SweeperOption customises Sweeper construction.
type SweeperOption func(*Sweeper)

// WithSweeperClock substitutes the sweeper's time source.
func WithSweeperClock(c clock.Clock) SweeperOption {
	return func(s *Sweeper) { s.Clock = c }
}

// WithMaxShift sets the shift length after which an OPEN record is stale.
func WithMaxShift(d time.Duration) SweeperOption {
	return func(s *Sweeper) { s.MaxShift = d }
}

// WithSweepInterval sets how often Run scans for stale shifts.
func WithSweepInterval(d time.Duration) SweeperOption {
	return func(s *Sweeper) { s.Interval = d }
}

// WithSweeperLogger attaches a structured logger.
func WithSweeperLogger(l logging.Logger) SweeperOption {
	return func(s *Sweeper) { s.Log = l }
}

// Run sweeps on the configured interval until ctx is cancelled. Sweep
// failures are logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Log.Info(ctx, "stale-shift sweeper started",
		logging.Duration("interval", s.Interval),
		logging.Duration("max_shift", s.MaxShift),
	)
	for {
		select {
		case <-ctx.Done():
			s.Log.Info(ctx, "stale-shift sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.Log.Error(ctx, "sweep failed", logging.Err(err))
			}
		}
	}
}

// SweepOnce force-closes every OPEN record older than the shift ceiling and
// returns how many it closed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := s.Clock.Now().Add(-s.MaxShift)
	stale, err := s.Store.OpenRecordsOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list stale open records: %w", err)
	}

	closed := 0
	for _, rec := range stale {
		closeAt := rec.CheckInAt.Add(s.MaxShift)
		if _, err := s.Service.ForceCloseAt(ctx, rec.EmployeeID, SweepCloseReason, closeAt); err != nil {
			s.Log.Error(ctx, "stale shift force-close failed",
				logging.String("employee_id", rec.EmployeeID),
				logging.String("record_id", rec.ID),
				logging.Err(err),
			)
			continue
		}
		closed++
	}
	if closed > 0 {
		s.Log.Info(ctx, "stale shifts force-closed", logging.Int("count", closed))
	}
	return closed, nil
}
