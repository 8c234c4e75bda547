// Package pgstore persists attendance records and fences in PostgreSQL via
// pgx. The one-OPEN-record-per-employee invariant is enforced by a partial
// unique index so it holds even across multiple service instances sharing
// the database.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/k-j-hyun/HRMS-jjpartners/geo"
	"github.com/k-j-hyun/HRMS-jjpartners/model"
	"github.com/k-j-hyun/HRMS-jjpartners/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS fences (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL DEFAULT '',
    kind            TEXT NOT NULL,
    center_lat      DOUBLE PRECISION NOT NULL DEFAULT 0,
    center_lon      DOUBLE PRECISION NOT NULL DEFAULT 0,
    radius_m        DOUBLE PRECISION NOT NULL DEFAULT 0,
    ring            JSONB,
    checkout_policy TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS attendance_records (
    id           TEXT PRIMARY KEY,
    employee_id  TEXT NOT NULL,
    fence_id     TEXT NOT NULL,
    check_in_at  TIMESTAMPTZ NOT NULL,
    check_out_at TIMESTAMPTZ,
    status       TEXT NOT NULL,
    close_reason TEXT NOT NULL DEFAULT ''
);

CREATE UNIQUE INDEX IF NOT EXISTS attendance_one_open_per_employee
    ON attendance_records (employee_id) WHERE status = 'OPEN';

CREATE INDEX IF NOT EXISTS attendance_employee_interval
    ON attendance_records (employee_id, check_in_at);
`

// uniqueViolation is the PostgreSQL error code raised when an insert hits
// the partial unique index.
const uniqueViolation = "23505"

// Store is a PostgreSQL-backed record store and fence registry.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pgx pool against databaseURL and ensures the schema
// exists.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool without touching the schema.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the tables and indexes if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// AddFence registers an immutable fence snapshot.
func (s *Store) AddFence(ctx context.Context, f model.GeoFence) error {
	if err := geo.ValidateFence(f); err != nil {
		return err
	}
	ring, err := json.Marshal(f.Ring)
	if err != nil {
		return fmt.Errorf("encode fence ring: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO fences (id, name, kind, center_lat, center_lon, radius_m, ring, checkout_policy)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		f.ID, f.Name, string(f.Kind), f.Center.Lat, f.Center.Lon, f.RadiusM, ring, string(f.CheckOut),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %q", store.ErrFenceExists, f.ID)
	}
	if err != nil {
		return fmt.Errorf("insert fence: %w", err)
	}
	return nil
}

// FenceByID returns the fence registered under id.
func (s *Store) FenceByID(ctx context.Context, id string) (model.GeoFence, error) {
	var (
		f    model.GeoFence
		kind string
		pol  string
		ring []byte
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, kind, center_lat, center_lon, radius_m, ring, checkout_policy
		FROM fences WHERE id = $1`, id,
	).Scan(&f.ID, &f.Name, &kind, &f.Center.Lat, &f.Center.Lon, &f.RadiusM, &ring, &pol)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.GeoFence{}, fmt.Errorf("%w: %q", store.ErrFenceNotFound, id)
	}
	if err != nil {
		return model.GeoFence{}, fmt.Errorf("select fence: %w", err)
	}
	f.Kind = model.FenceKind(kind)
	f.CheckOut = model.CheckOutPolicy(pol)
	if len(ring) > 0 {
		if err := json.Unmarshal(ring, &f.Ring); err != nil {
			return model.GeoFence{}, fmt.Errorf("decode fence ring: %w", err)
		}
	}
	return f, nil
}

// OpenRecord returns the employee's OPEN record, or nil when checked out.
func (s *Store) OpenRecord(ctx context.Context, employeeID string) (*model.AttendanceRecord, error) {
	rec, err := scanRecord(s.pool.QueryRow(ctx, `
		SELECT id, employee_id, fence_id, check_in_at, check_out_at, status, close_reason
		FROM attendance_records
		WHERE employee_id = $1 AND status = 'OPEN'`, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select open record: %w", err)
	}
	return &rec, nil
}

// InsertRecord stores a new record. The partial unique index turns a second
// OPEN insert for the same employee into store.ErrOpenRecordExists.
func (s *Store) InsertRecord(ctx context.Context, rec *model.AttendanceRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO attendance_records (id, employee_id, fence_id, check_in_at, check_out_at, status, close_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.EmployeeID, rec.FenceID, rec.CheckInAt, nullableTime(rec.CheckOutAt), string(rec.Status), rec.CloseReason,
	)
	if isUniqueViolation(err) {
		if rec.Status == model.StatusOpen {
			return fmt.Errorf("%w: employee %q", store.ErrOpenRecordExists, rec.EmployeeID)
		}
		return fmt.Errorf("%w: %q", store.ErrRecordExists, rec.ID)
	}
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// UpdateRecord replaces an existing record.
func (s *Store) UpdateRecord(ctx context.Context, rec *model.AttendanceRecord) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE attendance_records
		SET employee_id = $2, fence_id = $3, check_in_at = $4, check_out_at = $5, status = $6, close_reason = $7
		WHERE id = $1`,
		rec.ID, rec.EmployeeID, rec.FenceID, rec.CheckInAt, nullableTime(rec.CheckOutAt), string(rec.Status), rec.CloseReason,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %q", store.ErrRecordNotFound, rec.ID)
	}
	return nil
}

// ClosedRecordsOverlapping returns the employee's closed records whose
// interval overlaps [from, to].
func (s *Store) ClosedRecordsOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]model.AttendanceRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, employee_id, fence_id, check_in_at, check_out_at, status, close_reason
		FROM attendance_records
		WHERE employee_id = $1
		  AND status IN ('CLOSED', 'FORCE_CLOSED')
		  AND check_out_at > $2
		  AND check_in_at < $3
		ORDER BY check_in_at`, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("select closed records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// OpenRecordsOlderThan returns all OPEN records checked in before cutoff.
func (s *Store) OpenRecordsOlderThan(ctx context.Context, cutoff time.Time) ([]model.AttendanceRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, employee_id, fence_id, check_in_at, check_out_at, status, close_reason
		FROM attendance_records
		WHERE status = 'OPEN' AND check_in_at < $1
		ORDER BY check_in_at`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("select stale open records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// OpenRecordCount returns the number of OPEN records overall.
func (s *Store) OpenRecordCount(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attendance_records WHERE status = 'OPEN'`,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count open records: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (model.AttendanceRecord, error) {
	var (
		rec      model.AttendanceRecord
		checkOut *time.Time
		status   string
	)
	err := row.Scan(&rec.ID, &rec.EmployeeID, &rec.FenceID, &rec.CheckInAt, &checkOut, &status, &rec.CloseReason)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	if checkOut != nil {
		rec.CheckOutAt = checkOut.UTC()
	}
	rec.CheckInAt = rec.CheckInAt.UTC()
	rec.Status = model.RecordStatus(status)
	return rec, nil
}

func collectRecords(rows pgx.Rows) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
