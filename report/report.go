// Package report renders attendance data for payroll export. The daily CSV
// is byte-stable: identical inputs always render identical bytes, so
// downstream diffing and golden tests work.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/k-j-hyun/HRMS-jjpartners/model"
)

var csvHeader = []string{
	"employee_id", "fence_id", "check_in", "check_out",
	"status", "worked_minutes", "close_reason",
}

// Daily renders the closed records overlapping the calendar day starting at
// day as CSV. Worked minutes are clipped to the day; check-in and check-out
// columns keep the record's real timestamps. OPEN records are omitted. Rows
// sort by employee ID, then check-in time.
func Daily(day time.Time, records []model.AttendanceRecord) ([]byte, error) {
	from := day.UTC().Truncate(24 * time.Hour)
	to := from.Add(24 * time.Hour)

	var rows []model.AttendanceRecord
	for _, rec := range records {
		interval, ok := rec.Interval()
		if !ok {
			continue
		}
		if _, ok := interval.Clip(from, to); !ok {
			continue
		}
		rows = append(rows, rec)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].EmployeeID != rows[j].EmployeeID {
			return rows[i].EmployeeID < rows[j].EmployeeID
		}
		return rows[i].CheckInAt.Before(rows[j].CheckInAt)
	})

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write report header: %w", err)
	}
	for _, rec := range rows {
		interval, _ := rec.Interval()
		clipped, _ := interval.Clip(from, to)
		record := []string{
			rec.EmployeeID,
			rec.FenceID,
			rec.CheckInAt.UTC().Format(time.RFC3339),
			rec.CheckOutAt.UTC().Format(time.RFC3339),
			string(rec.Status),
			strconv.Itoa(int(clipped.Duration().Minutes())),
			rec.CloseReason,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush report: %w", err)
	}
	return buf.Bytes(), nil
}
