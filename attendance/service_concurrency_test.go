package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/k-j-hyun/HRMS-jjpartners/model"
)

func TestConcurrentCheckInsSingleEmployee(t *testing.T) {
	svc, mem, clk := newTestService(t, strictFence())
	ctx := context.Background()
	inside := model.Coordinate{Lat: 37.5665, Lon: 126.9781}

	const attempts = 64
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CheckIn(ctx, "emp-1", "fence-hq", inside, 5, clk.Now())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrAlreadyCheckedIn):
				duplicates++
			default:
				t.Errorf("unexpected CheckIn error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("successful check-ins = %d, want exactly 1", successes)
	}
	if duplicates != attempts-1 {
		t.Fatalf("duplicate rejections = %d, want %d", duplicates, attempts-1)
	}
	n, err := mem.OpenRecordCount(ctx)
	if err != nil || n != 1 {
		t.Fatalf("open record count = %d, %v; want 1", n, err)
	}
}

func TestConcurrentDistinctEmployees(t *testing.T) {
	svc, mem, clk := newTestService(t, lenientFence())
	ctx := context.Background()
	inside := model.Coordinate{Lat: 37.5665, Lon: 126.9781}

	const employees = 32
	var wg sync.WaitGroup
	errs := make(chan error, employees)
	for i := 0; i < employees; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			emp := fmt.Sprintf("emp-%03d", i)
			if _, err := svc.CheckIn(ctx, emp, "fence-site-b", inside, 5, clk.Now()); err != nil {
				errs <- fmt.Errorf("%s check-in: %w", emp, err)
				return
			}
			if _, err := svc.CheckOut(ctx, emp, inside, 5, clk.Now()); err != nil {
				errs <- fmt.Errorf("%s check-out: %w", emp, err)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	n, err := mem.OpenRecordCount(ctx)
	if err != nil || n != 0 {
		t.Fatalf("open record count = %d, %v; want 0", n, err)
	}
}

func TestConcurrentCheckOutRace(t *testing.T) {
	svc, _, clk := newTestService(t, lenientFence())
	ctx := context.Background()
	inside := model.Coordinate{Lat: 37.5665, Lon: 126.9781}

	if _, err := svc.CheckIn(ctx, "emp-1", "fence-site-b", inside, 5, clk.Now()); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	clk.Advance(time.Hour)

	const attempts = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CheckOut(ctx, "emp-1", inside, 5, clk.Now())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrNotCheckedIn):
			default:
				t.Errorf("unexpected CheckOut error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("successful check-outs = %d, want exactly 1", successes)
	}
}
