package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/k-j-hyun/HRMS-jjpartners/clock"
	"github.com/k-j-hyun/HRMS-jjpartners/model"
)

func TestSweeperClosesStaleShifts(t *testing.T) {
	svc, mem, clk := newTestService(t, lenientFence())
	ctx := context.Background()
	inside := model.Coordinate{Lat: 37.5665, Lon: 126.9781}

	// emp-old checks in first, then 17 hours pass before emp-new does.
	if _, err := svc.CheckIn(ctx, "emp-old", "fence-site-b", inside, 5, clk.Now()); err != nil {
		t.Fatalf("CheckIn emp-old: %v", err)
	}
	clk.Advance(17 * time.Hour)
	if _, err := svc.CheckIn(ctx, "emp-new", "fence-site-b", inside, 5, clk.Now()); err != nil {
		t.Fatalf("CheckIn emp-new: %v", err)
	}

	sweeper := NewSweeper(svc, mem, WithSweeperClock(clk), WithMaxShift(16*time.Hour))
	closed, err := sweeper.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if closed != 1 {
		t.Fatalf("closed = %d, want 1", closed)
	}

	// emp-old was force-closed at check-in + max shift, not at sweep time.
	total, err := svc.TotalWorked(ctx, "emp-old", testStart, testStart.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("TotalWorked: %v", err)
	}
	if total.Worked != 16*time.Hour {
		t.Fatalf("Worked = %v, want 16h", total.Worked)
	}
	if !total.IncludesForceClosed {
		t.Fatal("IncludesForceClosed = false, want true")
	}

	st, err := svc.CurrentStatus(ctx, "emp-new")
	if err != nil || !st.CheckedIn {
		t.Fatalf("emp-new status = %+v, %v; want still checked in", st, err)
	}
}

func TestSweeperIdleWhenNothingStale(t *testing.T) {
	svc, mem, clk := newTestService(t, lenientFence())
	ctx := context.Background()
	inside := model.Coordinate{Lat: 37.5665, Lon: 126.9781}

	if _, err := svc.CheckIn(ctx, "emp-1", "fence-site-b", inside, 5, clk.Now()); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	clk.Advance(2 * time.Hour)

	sweeper := NewSweeper(svc, mem, WithSweeperClock(clk), WithMaxShift(16*time.Hour))
	closed, err := sweeper.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if closed != 0 {
		t.Fatalf("closed = %d, want 0", closed)
	}
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	svc, mem, _ := newTestService(t, lenientFence())
	sweeper := NewSweeper(svc, mem,
		WithSweeperClock(clock.NewManual(testStart)),
		WithSweepInterval(time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
