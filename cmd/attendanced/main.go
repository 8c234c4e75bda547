// Command attendanced runs the attendance core as a long-lived daemon: it
// loads the work-site fences, wires the state machine over an in-memory or
// PostgreSQL record store, sweeps stale shifts, and serves Prometheus
// metrics.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/k-j-hyun/HRMS-jjpartners/attendance"
	"github.com/k-j-hyun/HRMS-jjpartners/config"
	"github.com/k-j-hyun/HRMS-jjpartners/internal/logging"
	"github.com/k-j-hyun/HRMS-jjpartners/internal/observability"
	"github.com/k-j-hyun/HRMS-jjpartners/model"
	"github.com/k-j-hyun/HRMS-jjpartners/store"
	"github.com/k-j-hyun/HRMS-jjpartners/store/pgstore"
)

// fenceStore is the storage surface the daemon needs: the state machine's
// record store plus fence registration and lookup.
type fenceStore interface {
	attendance.RecordStore
	attendance.FenceResolver
	AddFence(ctx context.Context, f model.GeoFence) error
}

func main() {
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics")
	sitesPath := flag.String("sites", "configs/sites.yaml", "Path to the YAML work-site fence definitions")
	sweepInterval := flag.Duration("sweep-interval", attendance.DefaultSweepInterval, "How often to scan for shifts missing a check-out")
	maxShift := flag.Duration("max-shift", attendance.DefaultMaxShift, "Shift length after which an open record is force-closed")
	flag.Parse()

	_ = godotenv.Load()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	collector, err := observability.NewAttendanceCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	records, closeStore, err := openStore(ctx, log)
	if err != nil {
		log.Error(ctx, "failed to open record store", logging.Err(err))
		os.Exit(1)
	}
	defer closeStore()

	if err := loadFences(ctx, log, records, *sitesPath); err != nil {
		log.Error(ctx, "failed to load work-site fences", logging.Err(err))
		os.Exit(1)
	}

	svc := attendance.NewService(records, records,
		attendance.WithLogger(log),
		attendance.WithMetricsRecorder(collector),
	)

	sweeper := attendance.NewSweeper(svc, records,
		attendance.WithMaxShift(*maxShift),
		attendance.WithSweepInterval(*sweepInterval),
		attendance.WithSweeperLogger(log),
	)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go sweeper.Run(runCtx)

	log.Info(ctx, "attendance daemon running",
		logging.String("sites", *sitesPath),
		logging.Duration("max_shift", *maxShift),
	)
	<-runCtx.Done()

	log.Info(ctx, "shutting down attendance daemon")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

// openStore picks PostgreSQL when DATABASE_URL is set and falls back to the
// in-memory store otherwise.
func openStore(ctx context.Context, log logging.Logger) (fenceStore, func(), error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Info(ctx, "DATABASE_URL unset; using in-memory record store")
		return store.NewMemory(), func() {}, nil
	}

	pg, err := pgstore.Connect(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}
	log.Info(ctx, "connected to PostgreSQL record store")
	return pg, pg.Close, nil
}

func loadFences(ctx context.Context, log logging.Logger, dst fenceStore, path string) error {
	fences, err := config.LoadSites(path)
	if err != nil {
		return err
	}
	added := 0
	for _, f := range fences {
		if err := dst.AddFence(ctx, f); err != nil {
			// Restarts re-register the same fences against a persistent
			// store.
			log.Warn(ctx, "skipping fence",
				logging.String("fence_id", f.ID),
				logging.Err(err),
			)
			continue
		}
		added++
	}
	log.Info(ctx, "loaded work-site fences",
		logging.String("path", path),
		logging.Int("count", added),
	)
	return nil
}

func serveMetrics(addr string, collector *observability.AttendanceCollector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
