// Package store provides the in-memory attendance record store and fence
// registry. Every mutation is atomic under the store lock, and the
// one-OPEN-record-per-employee invariant is enforced here as a backstop even
// though the attendance service already serialises transitions per employee.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/k-j-hyun/HRMS-jjpartners/geo"
	"github.com/k-j-hyun/HRMS-jjpartners/model"
)

var (
	// ErrRecordNotFound indicates a requested attendance record is missing.
	ErrRecordNotFound = errors.New("attendance record not found")
	// ErrRecordExists indicates an insert reused an existing record ID.
	ErrRecordExists = errors.New("attendance record already exists")
	// ErrOpenRecordExists indicates an insert would create a second OPEN
	// record for the same employee.
	ErrOpenRecordExists = errors.New("open attendance record already exists for employee")
	// ErrFenceExists indicates a fence ID is already registered.
	ErrFenceExists = errors.New("fence already registered")
	// ErrFenceNotFound indicates a requested fence is not registered.
	ErrFenceNotFound = errors.New("fence not found")
)

// Memory is a thread-safe in-memory store. It keeps attendance records by
// record ID plus an index of the single OPEN record per employee, and a
// registry of immutable fence snapshots by fence ID.
type Memory struct {
	mu sync.RWMutex

	records        map[string]model.AttendanceRecord
	openByEmployee map[string]string
	fences         map[string]model.GeoFence
}

// NewMemory constructs an empty store.
func NewMemory() *Memory {
	return &Memory{
		records:        make(map[string]model.AttendanceRecord),
		openByEmployee: make(map[string]string),
		fences:         make(map[string]model.GeoFence),
	}
}

// AddFence registers an immutable fence snapshot. The fence is validated on
// the way in; a registered fence is never mutated, only superseded by a new
// registration under a new ID.
func (s *Memory) AddFence(ctx context.Context, f model.GeoFence) error {
	if err := geo.ValidateFence(f); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.fences[f.ID]; exists {
		return fmt.Errorf("%w: %q", ErrFenceExists, f.ID)
	}
	s.fences[f.ID] = f
	return nil
}

// FenceByID returns the fence registered under id.
func (s *Memory) FenceByID(ctx context.Context, id string) (model.GeoFence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fences[id]
	if !ok {
		return model.GeoFence{}, fmt.Errorf("%w: %q", ErrFenceNotFound, id)
	}
	return f, nil
}

// OpenRecord returns a copy of the employee's OPEN record, or nil when the
// employee is checked out.
func (s *Memory) OpenRecord(ctx context.Context, employeeID string) (*model.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.openByEmployee[employeeID]
	if !ok {
		return nil, nil
	}
	rec := s.records[id]
	return &rec, nil
}

// InsertRecord stores a new record. Inserting a second OPEN record for the
// same employee fails with ErrOpenRecordExists.
func (s *Memory) InsertRecord(ctx context.Context, rec *model.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return fmt.Errorf("%w: %q", ErrRecordExists, rec.ID)
	}
	if rec.Status == model.StatusOpen {
		if openID, exists := s.openByEmployee[rec.EmployeeID]; exists {
			return fmt.Errorf("%w: employee %q record %q", ErrOpenRecordExists, rec.EmployeeID, openID)
		}
		s.openByEmployee[rec.EmployeeID] = rec.ID
	}
	s.records[rec.ID] = *rec
	return nil
}

// UpdateRecord replaces an existing record. Closing a record drops it from
// the open index.
func (s *Memory) UpdateRecord(ctx context.Context, rec *model.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.records[rec.ID]
	if !exists {
		return fmt.Errorf("%w: %q", ErrRecordNotFound, rec.ID)
	}
	if prev.Status == model.StatusOpen && rec.Status != model.StatusOpen {
		delete(s.openByEmployee, rec.EmployeeID)
	}
	s.records[rec.ID] = *rec
	return nil
}

// ClosedRecordsOverlapping returns copies of the employee's closed records
// whose interval overlaps [from, to].
func (s *Memory) ClosedRecordsOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]model.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var res []model.AttendanceRecord
	for _, rec := range s.records {
		if rec.EmployeeID != employeeID || !rec.Closed() {
			continue
		}
		if rec.CheckOutAt.After(from) && rec.CheckInAt.Before(to) {
			res = append(res, rec)
		}
	}
	return res, nil
}

// OpenRecordsOlderThan returns copies of all OPEN records whose check-in is
// before cutoff, for the stale-shift sweeper.
func (s *Memory) OpenRecordsOlderThan(ctx context.Context, cutoff time.Time) ([]model.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var res []model.AttendanceRecord
	for _, id := range s.openByEmployee {
		rec := s.records[id]
		if rec.CheckInAt.Before(cutoff) {
			res = append(res, rec)
		}
	}
	return res, nil
}

// OpenRecordCount returns the number of OPEN records across all employees.
func (s *Memory) OpenRecordCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.openByEmployee), nil
}
