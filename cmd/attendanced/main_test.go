package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/k-j-hyun/HRMS-jjpartners/internal/logging"
	"github.com/k-j-hyun/HRMS-jjpartners/store"
)

const testSites = `
sites:
  - id: fence-hq
    name: headquarters
    center: {lat: 37.5665, lon: 126.9780}
    radius_m: 50
    checkout_policy: strict
  - id: fence-yard
    name: storage yard
    center: {lat: 37.5700, lon: 126.9900}
    radius_m: 120
`

func writeSites(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sites.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadFencesSeedsStore(t *testing.T) {
	mem := store.NewMemory()
	path := writeSites(t, testSites)

	if err := loadFences(context.Background(), logging.Noop(), mem, path); err != nil {
		t.Fatalf("loadFences: %v", err)
	}
	for _, id := range []string{"fence-hq", "fence-yard"} {
		if _, err := mem.FenceByID(context.Background(), id); err != nil {
			t.Fatalf("fence %q not registered: %v", id, err)
		}
	}
}

func TestLoadFencesToleratesReRegistration(t *testing.T) {
	mem := store.NewMemory()
	path := writeSites(t, testSites)
	ctx := context.Background()

	if err := loadFences(ctx, logging.Noop(), mem, path); err != nil {
		t.Fatalf("first loadFences: %v", err)
	}
	// A second pass logs and skips duplicates instead of failing.
	if err := loadFences(ctx, logging.Noop(), mem, path); err != nil {
		t.Fatalf("second loadFences: %v", err)
	}
}

func TestLoadFencesMissingFile(t *testing.T) {
	mem := store.NewMemory()
	if err := loadFences(context.Background(), logging.Noop(), mem, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("loadFences succeeded, want error for missing file")
	}
}

func TestOpenStoreDefaultsToMemory(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	records, closeStore, err := openStore(context.Background(), logging.Noop())
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer closeStore()
	if _, ok := records.(*store.Memory); !ok {
		t.Fatalf("openStore returned %T, want *store.Memory", records)
	}
}
