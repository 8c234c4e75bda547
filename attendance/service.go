// Package attendance implements the geofenced attendance core: validating
// reported GPS positions against a work-site fence, driving the per-employee
// check-in/check-out state machine, and computing worked durations from
// closed records.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/k-j-hyun/HRMS-jjpartners/clock"
	"github.com/k-j-hyun/HRMS-jjpartners/internal/logging"
	"github.com/k-j-hyun/HRMS-jjpartners/model"
	"github.com/k-j-hyun/HRMS-jjpartners/store"
)

// RecordStore is the persistence contract the state machine drives. Every
// method must be individually atomic; the service layers a per-employee
// lock on top so the read-validate-write sequence of a transition is
// serialised as a whole.
type RecordStore interface {
	// OpenRecord returns the employee's OPEN record, or nil when the
	// employee is checked out.
	OpenRecord(ctx context.Context, employeeID string) (*model.AttendanceRecord, error)
	// InsertRecord stores a new record, failing with
	// store.ErrOpenRecordExists when it would create a second OPEN record
	// for the employee.
	InsertRecord(ctx context.Context, rec *model.AttendanceRecord) error
	// UpdateRecord replaces an existing record.
	UpdateRecord(ctx context.Context, rec *model.AttendanceRecord) error
	// ClosedRecordsOverlapping returns the employee's closed records whose
	// interval overlaps [from, to].
	ClosedRecordsOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]model.AttendanceRecord, error)
	// OpenRecordsOlderThan returns all OPEN records checked in before
	// cutoff.
	OpenRecordsOlderThan(ctx context.Context, cutoff time.Time) ([]model.AttendanceRecord, error)
	// OpenRecordCount returns the number of OPEN records overall.
	OpenRecordCount(ctx context.Context) (int, error)
}

// FenceResolver looks up the immutable fence snapshot registered under a
// fence ID.
type FenceResolver interface {
	FenceByID(ctx context.Context, fenceID string) (model.GeoFence, error)
}

// MetricsRecorder receives transition outcomes so a collector can expose
// them without the domain importing a metrics library.
type MetricsRecorder interface {
	RecordCheckIn(result string)
	RecordCheckOut(result string)
	RecordForceClose()
	RecordValidation(outcome string)
	SetOpenRecords(n int)
	ObserveTransition(op string, elapsed time.Duration)
}

// Status is an employee's current attendance state.
type Status struct {
	CheckedIn bool
	// Since, FenceID, and RecordID are set only while CheckedIn.
	Since    time.Time
	FenceID  string
	RecordID string
}

// Service is the attendance state machine. All transitions for one employee
// are serialised behind a per-employee lock; transitions for different
// employees proceed in parallel.
type Service struct {
	store     RecordStore
	fences    FenceResolver
	validator Validator
	clk       clock.Clock
	log       logging.Logger
	metrics   MetricsRecorder
	ledger    *Ledger

	locks keyedMutex
}

// Option customises Service construction.
type Option func(*Service)

// WithClock substitutes the time source, primarily for tests.
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clk = c }
}

// WithValidator substitutes the location validator thresholds.
func WithValidator(v Validator) Option {
	return func(s *Service) { s.validator = v }
}

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetricsRecorder attaches an optional transition metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService wires the state machine over a record store and fence
// registry.
func NewService(records RecordStore, fences FenceResolver, opts ...Option) *Service {
	s := &Service{
		store:     records,
		fences:    fences,
		validator: DefaultValidator(),
		clk:       clock.Real(),
		log:       logging.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ledger = NewLedger(s.store)
	return s
}

// CheckIn transitions the employee from CHECKED_OUT to CHECKED_IN. It
// requires no OPEN record and a reading classified Inside the fence. On
// success it returns the newly created OPEN record.
func (s *Service) CheckIn(ctx context.Context, employeeID, fenceID string, pos model.Coordinate, accuracyM float64, capturedAt time.Time) (model.AttendanceRecord, error) {
	start := s.clk.Now()
	defer s.observe("check_in", start)

	if err := pos.Validate(); err != nil {
		s.countCheckIn("invalid_coordinate")
		return model.AttendanceRecord{}, err
	}

	unlock := s.locks.lock(employeeID)
	defer unlock()

	open, err := s.store.OpenRecord(ctx, employeeID)
	if err != nil {
		s.countCheckIn("store_error")
		return model.AttendanceRecord{}, fmt.Errorf("load open record: %w", err)
	}
	if open != nil {
		s.countCheckIn("already_checked_in")
		return model.AttendanceRecord{}, fmt.Errorf("employee %q: %w", employeeID, ErrAlreadyCheckedIn)
	}

	fence, err := s.fences.FenceByID(ctx, fenceID)
	if err != nil {
		s.countCheckIn("invalid_fence")
		return model.AttendanceRecord{}, fmt.Errorf("%w: fence %q not resolvable", ErrInvalidFence, fenceID)
	}

	now := s.clk.Now()
	reading := model.LocationReading{
		EmployeeID: employeeID,
		Position:   pos,
		AccuracyM:  accuracyM,
		CapturedAt: capturedAt,
		ReceivedAt: now,
	}
	switch class := s.validator.Validate(fence, reading); class {
	case Inside:
		s.countValidation(class)
	case Outside:
		s.countValidation(class)
		s.countCheckIn("out_of_range")
		return model.AttendanceRecord{}, fmt.Errorf("employee %q at fence %q: %w", employeeID, fenceID, ErrOutOfRange)
	case Unreliable:
		s.countValidation(class)
		s.countCheckIn("unreliable")
		return model.AttendanceRecord{}, fmt.Errorf("employee %q: %w", employeeID, ErrUnreliableLocation)
	}

	rec := &model.AttendanceRecord{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		FenceID:    fence.ID,
		CheckInAt:  now,
		Status:     model.StatusOpen,
	}
	if err := s.store.InsertRecord(ctx, rec); err != nil {
		if errors.Is(err, store.ErrOpenRecordExists) {
			s.countCheckIn("already_checked_in")
			return model.AttendanceRecord{}, fmt.Errorf("employee %q: %w", employeeID, ErrAlreadyCheckedIn)
		}
		s.countCheckIn("store_error")
		return model.AttendanceRecord{}, fmt.Errorf("insert attendance record: %w", err)
	}

	s.countCheckIn("success")
	s.syncOpenGauge(ctx)
	s.log.Info(ctx, "employee checked in",
		logging.String("employee_id", employeeID),
		logging.String("fence_id", fence.ID),
		logging.String("record_id", rec.ID),
	)
	return *rec, nil
}

// CheckOut transitions the employee from CHECKED_IN to CHECKED_OUT, closing
// the OPEN record. Strict fences require the reading to be Inside; lenient
// fences allow check-out from anywhere but still reject Unreliable
// readings. An empty fence policy is treated as strict.
func (s *Service) CheckOut(ctx context.Context, employeeID string, pos model.Coordinate, accuracyM float64, capturedAt time.Time) (model.AttendanceRecord, error) {
	start := s.clk.Now()
	defer s.observe("check_out", start)

	if err := pos.Validate(); err != nil {
		s.countCheckOut("invalid_coordinate")
		return model.AttendanceRecord{}, err
	}

	unlock := s.locks.lock(employeeID)
	defer unlock()

	open, err := s.store.OpenRecord(ctx, employeeID)
	if err != nil {
		s.countCheckOut("store_error")
		return model.AttendanceRecord{}, fmt.Errorf("load open record: %w", err)
	}
	if open == nil {
		s.countCheckOut("not_checked_in")
		return model.AttendanceRecord{}, fmt.Errorf("employee %q: %w", employeeID, ErrNotCheckedIn)
	}

	fence, err := s.fences.FenceByID(ctx, open.FenceID)
	if err != nil {
		s.countCheckOut("invalid_fence")
		return model.AttendanceRecord{}, fmt.Errorf("%w: fence %q not resolvable", ErrInvalidFence, open.FenceID)
	}

	now := s.clk.Now()
	reading := model.LocationReading{
		EmployeeID: employeeID,
		Position:   pos,
		AccuracyM:  accuracyM,
		CapturedAt: capturedAt,
		ReceivedAt: now,
	}
	class := s.validator.Validate(fence, reading)
	s.countValidation(class)

	policy := fence.CheckOut
	if policy == "" {
		policy = model.CheckOutStrict
	}
	switch {
	case class == Unreliable:
		s.countCheckOut("unreliable")
		return model.AttendanceRecord{}, fmt.Errorf("employee %q: %w", employeeID, ErrUnreliableLocation)
	case class == Outside && policy == model.CheckOutStrict:
		s.countCheckOut("out_of_range")
		return model.AttendanceRecord{}, fmt.Errorf("employee %q at fence %q: %w", employeeID, fence.ID, ErrOutOfRange)
	}

	// Clamp against clock skew so a closed record never has a negative
	// duration.
	if now.Before(open.CheckInAt) {
		now = open.CheckInAt
	}
	open.CheckOutAt = now
	open.Status = model.StatusClosed
	if err := s.store.UpdateRecord(ctx, open); err != nil {
		s.countCheckOut("store_error")
		return model.AttendanceRecord{}, fmt.Errorf("close attendance record: %w", err)
	}

	s.countCheckOut("success")
	s.syncOpenGauge(ctx)
	s.log.Info(ctx, "employee checked out",
		logging.String("employee_id", employeeID),
		logging.String("fence_id", fence.ID),
		logging.String("record_id", open.ID),
		logging.Duration("worked", open.CheckOutAt.Sub(open.CheckInAt)),
	)
	return *open, nil
}

// ForceClose administratively closes the employee's OPEN record at the
// current time. It is a no-op returning (nil, nil) when the employee has no
// OPEN record.
func (s *Service) ForceClose(ctx context.Context, employeeID, reason string) (*model.AttendanceRecord, error) {
	return s.ForceCloseAt(ctx, employeeID, reason, s.clk.Now())
}

// ForceCloseAt is ForceClose with a caller-chosen close timestamp, for
// policies like "end of shift window". The timestamp is clamped to the
// record's check-in time.
func (s *Service) ForceCloseAt(ctx context.Context, employeeID, reason string, closeAt time.Time) (*model.AttendanceRecord, error) {
	start := s.clk.Now()
	defer s.observe("force_close", start)

	unlock := s.locks.lock(employeeID)
	defer unlock()

	open, err := s.store.OpenRecord(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("load open record: %w", err)
	}
	if open == nil {
		return nil, nil
	}

	if closeAt.Before(open.CheckInAt) {
		closeAt = open.CheckInAt
	}
	open.CheckOutAt = closeAt.UTC()
	open.Status = model.StatusForceClosed
	open.CloseReason = reason
	if err := s.store.UpdateRecord(ctx, open); err != nil {
		return nil, fmt.Errorf("force-close attendance record: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordForceClose()
	}
	s.syncOpenGauge(ctx)
	s.log.Warn(ctx, "attendance record force-closed",
		logging.String("employee_id", employeeID),
		logging.String("record_id", open.ID),
		logging.String("reason", reason),
	)
	return open, nil
}

// CurrentStatus reports whether the employee is checked in, and since when.
func (s *Service) CurrentStatus(ctx context.Context, employeeID string) (Status, error) {
	open, err := s.store.OpenRecord(ctx, employeeID)
	if err != nil {
		return Status{}, fmt.Errorf("load open record: %w", err)
	}
	if open == nil {
		return Status{}, nil
	}
	return Status{
		CheckedIn: true,
		Since:     open.CheckInAt,
		FenceID:   open.FenceID,
		RecordID:  open.ID,
	}, nil
}

// TotalWorked sums the employee's closed intervals over [from, to]. See
// Ledger.TotalWorked.
func (s *Service) TotalWorked(ctx context.Context, employeeID string, from, to time.Time) (Total, error) {
	return s.ledger.TotalWorked(ctx, employeeID, from, to)
}

func (s *Service) countCheckIn(result string) {
	if s.metrics != nil {
		s.metrics.RecordCheckIn(result)
	}
}

func (s *Service) countCheckOut(result string) {
	if s.metrics != nil {
		s.metrics.RecordCheckOut(result)
	}
}

func (s *Service) countValidation(class Classification) {
	if s.metrics != nil {
		s.metrics.RecordValidation(class.String())
	}
}

func (s *Service) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveTransition(op, s.clk.Now().Sub(start))
	}
}

func (s *Service) syncOpenGauge(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	n, err := s.store.OpenRecordCount(ctx)
	if err != nil {
		s.log.Warn(ctx, "open record count unavailable", logging.Err(err))
		return
	}
	s.metrics.SetOpenRecords(n)
}
