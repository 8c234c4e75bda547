package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/k-j-hyun/HRMS-jjpartners/model"
	"github.com/k-j-hyun/HRMS-jjpartners/store"
)

func insertClosed(t *testing.T, mem *store.Memory, id string, in, out time.Time, status model.RecordStatus) {
	t.Helper()
	err := mem.InsertRecord(context.Background(), &model.AttendanceRecord{
		ID:         id,
		EmployeeID: "emp-1",
		FenceID:    "fence-hq",
		CheckInAt:  in,
		CheckOutAt: out,
		Status:     status,
	})
	if err != nil {
		t.Fatalf("InsertRecord(%q): %v", id, err)
	}
}

func TestLedgerClipsIntervalsToRange(t *testing.T) {
	mem := store.NewMemory()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	// Fully inside the day: 09:00-12:00.
	insertClosed(t, mem, "r1", day.Add(9*time.Hour), day.Add(12*time.Hour), model.StatusClosed)
	// Straddles midnight into the day: 22:00 previous day to 02:00.
	insertClosed(t, mem, "r2", day.Add(-2*time.Hour), day.Add(2*time.Hour), model.StatusClosed)
	// Straddles the end of the day: 23:00 to 01:00 next day.
	insertClosed(t, mem, "r3", day.Add(23*time.Hour), day.Add(25*time.Hour), model.StatusClosed)
	// Entirely outside the day.
	insertClosed(t, mem, "r4", day.Add(-10*time.Hour), day.Add(-8*time.Hour), model.StatusClosed)
	// OPEN record must not count.
	if err := mem.InsertRecord(context.Background(), &model.AttendanceRecord{
		ID: "r5", EmployeeID: "emp-1", FenceID: "fence-hq",
		CheckInAt: day.Add(14 * time.Hour), Status: model.StatusOpen,
	}); err != nil {
		t.Fatalf("InsertRecord(r5): %v", err)
	}

	ledger := NewLedger(mem)
	total, err := ledger.TotalWorked(context.Background(), "emp-1", day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("TotalWorked: %v", err)
	}
	// 3h + 2h clipped + 1h clipped.
	if total.Worked != 6*time.Hour {
		t.Fatalf("Worked = %v, want 6h", total.Worked)
	}
	if total.IncludesForceClosed {
		t.Fatal("IncludesForceClosed = true, want false")
	}
	if len(total.Intervals) != 3 {
		t.Fatalf("len(Intervals) = %d, want 3", len(total.Intervals))
	}
	for _, iv := range total.Intervals {
		if iv.Start.Before(day) || iv.End.After(day.Add(24*time.Hour)) {
			t.Fatalf("interval %+v escapes the query range", iv)
		}
	}
}

func TestLedgerFlagsForceClosed(t *testing.T) {
	mem := store.NewMemory()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	insertClosed(t, mem, "r1", day.Add(9*time.Hour), day.Add(17*time.Hour), model.StatusForceClosed)

	total, err := NewLedger(mem).TotalWorked(context.Background(), "emp-1", day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("TotalWorked: %v", err)
	}
	if total.Worked != 8*time.Hour {
		t.Fatalf("Worked = %v, want 8h", total.Worked)
	}
	if !total.IncludesForceClosed {
		t.Fatal("IncludesForceClosed = false, want true")
	}
}

func TestLedgerEmptyAndInvertedRanges(t *testing.T) {
	mem := store.NewMemory()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	insertClosed(t, mem, "r1", day.Add(9*time.Hour), day.Add(17*time.Hour), model.StatusClosed)
	ledger := NewLedger(mem)

	for _, tc := range []struct {
		name     string
		from, to time.Time
	}{
		{"empty", day, day},
		{"inverted", day.Add(24 * time.Hour), day},
	} {
		t.Run(tc.name, func(t *testing.T) {
			total, err := ledger.TotalWorked(context.Background(), "emp-1", tc.from, tc.to)
			if err != nil {
				t.Fatalf("TotalWorked: %v", err)
			}
			if total.Worked != 0 || len(total.Intervals) != 0 {
				t.Fatalf("total = %+v, want zero", total)
			}
		})
	}
}

func TestLedgerUnknownEmployee(t *testing.T) {
	mem := store.NewMemory()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	total, err := NewLedger(mem).TotalWorked(context.Background(), "emp-none", day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("TotalWorked: %v", err)
	}
	if total.Worked != 0 {
		t.Fatalf("Worked = %v, want 0", total.Worked)
	}
}
