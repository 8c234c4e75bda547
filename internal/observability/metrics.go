package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AttendanceCollector bundles Prometheus metrics for the attendance state
// machine and exposes a ready-to-serve /metrics handler. It satisfies the
// attendance MetricsRecorder interface so the service can drive it without
// importing Prometheus.
type AttendanceCollector struct {
	gatherer prometheus.Gatherer

	CheckIns           *prometheus.CounterVec
	CheckOuts          *prometheus.CounterVec
	ForceCloses        prometheus.Counter
	Validations        *prometheus.CounterVec
	OpenRecords        prometheus.Gauge
	TransitionDuration *prometheus.HistogramVec
}

// NewAttendanceCollector registers the attendance metrics against the
// provided registerer, defaulting to the global Prometheus registry when
// nil. Re-registering against the same registry returns the existing
// collectors instead of failing.
func NewAttendanceCollector(reg prometheus.Registerer) (*AttendanceCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	checkIns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_check_ins_total",
		Help: "Total check-in attempts, labeled by result.",
	}, []string{"result"})
	checkIns, err := registerCounterVec(reg, checkIns, "attendance_check_ins_total")
	if err != nil {
		return nil, err
	}

	checkOuts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_check_outs_total",
		Help: "Total check-out attempts, labeled by result.",
	}, []string{"result"})
	checkOuts, err = registerCounterVec(reg, checkOuts, "attendance_check_outs_total")
	if err != nil {
		return nil, err
	}

	forceCloses, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_force_closes_total",
		Help: "Total administratively closed attendance records.",
	}), "attendance_force_closes_total")
	if err != nil {
		return nil, err
	}

	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_location_validations_total",
		Help: "Total location validations, labeled by classification outcome.",
	}, []string{"outcome"})
	validations, err = registerCounterVec(reg, validations, "attendance_location_validations_total")
	if err != nil {
		return nil, err
	}

	openRecords, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "attendance_open_records",
		Help: "Current number of OPEN attendance records.",
	}), "attendance_open_records")
	if err != nil {
		return nil, err
	}

	transitions := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "attendance_transition_duration_seconds",
		Help:    "State machine transition latency in seconds, labeled by operation.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"op"})
	transitions, err = registerHistogramVec(reg, transitions, "attendance_transition_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &AttendanceCollector{
		gatherer:           gatherer,
		CheckIns:           checkIns,
		CheckOuts:          checkOuts,
		ForceCloses:        forceCloses,
		Validations:        validations,
		OpenRecords:        openRecords,
		TransitionDuration: transitions,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *AttendanceCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// RecordCheckIn counts one check-in attempt by result.
func (c *AttendanceCollector) RecordCheckIn(result string) {
	if c == nil || c.CheckIns == nil {
		return
	}
	c.CheckIns.WithLabelValues(result).Inc()
}

// RecordCheckOut counts one check-out attempt by result.
func (c *AttendanceCollector) RecordCheckOut(result string) {
	if c == nil || c.CheckOuts == nil {
		return
	}
	c.CheckOuts.WithLabelValues(result).Inc()
}

// RecordForceClose counts one administrative close.
func (c *AttendanceCollector) RecordForceClose() {
	if c == nil || c.ForceCloses == nil {
		return
	}
	c.ForceCloses.Inc()
}

// RecordValidation counts one location validation by outcome.
func (c *AttendanceCollector) RecordValidation(outcome string) {
	if c == nil || c.Validations == nil {
		return
	}
	c.Validations.WithLabelValues(outcome).Inc()
}

// SetOpenRecords updates the OPEN record gauge.
func (c *AttendanceCollector) SetOpenRecords(n int) {
	if c == nil || c.OpenRecords == nil {
		return
	}
	c.OpenRecords.Set(float64(n))
}

// ObserveTransition records one state machine transition latency.
func (c *AttendanceCollector) ObserveTransition(op string, elapsed time.Duration) {
	if c == nil || c.TransitionDuration == nil {
		return
	}
	c.TransitionDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
