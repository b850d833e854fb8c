// internal/monitor/metrics.go
package monitor

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/tamzrod/mate3-sunspec/internal/poller"
	"github.com/tamzrod/mate3-sunspec/internal/status"
)

// Metrics holds the poller's prometheus collectors.
type Metrics struct {
	Cycles         *prometheus.CounterVec
	CycleDuration  *prometheus.HistogramVec
	BlocksSeen     *prometheus.GaugeVec
	Measurement    *prometheus.GaugeVec
	Health         *prometheus.GaugeVec
	LastErrorCode  *prometheus.GaugeVec
	SecondsInError *prometheus.GaugeVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mate3_poll_cycles_total",
			Help: "Poll cycles by outcome.",
		}, []string{"device", "result"}),

		CycleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mate3_poll_duration_seconds",
			Help:    "Duration of one SunSpec discovery and decode cycle.",
			Buckets: prometheus.DefBuckets,
		}, []string{"device"}),

		BlocksSeen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mate3_blocks",
			Help: "Blocks found in the last chain walk, by block name.",
		}, []string{"device", "block"}),

		Measurement: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mate3_measurement",
			Help: "Last decoded measurement value.",
		}, []string{"device", "block", "address", "name"}),

		Health: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mate3_device_health",
			Help: "Device health code (0 unknown, 1 ok, 2 error).",
		}, []string{"device"}),

		LastErrorCode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mate3_device_last_error_code",
			Help: "Code of the last poll error, 0 when healthy.",
		}, []string{"device"}),

		SecondsInError: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mate3_device_seconds_in_error",
			Help: "Seconds the device has been in error.",
		}, []string{"device"}),

		gatherer: reg,
	}

	reg.MustRegister(
		m.Cycles,
		m.CycleDuration,
		m.BlocksSeen,
		m.Measurement,
		m.Health,
		m.LastErrorCode,
		m.SecondsInError,
	)

	return m
}

// ObservePoll records one poll cycle.
func (m *Metrics) ObservePoll(res poller.PollResult) {
	m.CycleDuration.WithLabelValues(res.DeviceID).Observe(res.Duration.Seconds())

	// block and measurement series reflect the last successful walk only
	device := prometheus.Labels{"device": res.DeviceID}
	m.BlocksSeen.DeletePartialMatch(device)
	m.Measurement.DeletePartialMatch(device)

	if res.Err != nil {
		m.Cycles.WithLabelValues(res.DeviceID, "error").Inc()
		return
	}
	m.Cycles.WithLabelValues(res.DeviceID, "ok").Inc()

	counts := make(map[string]int)
	for _, b := range res.Blocks {
		counts[b.Name]++
	}
	for name, n := range counts {
		m.BlocksSeen.WithLabelValues(res.DeviceID, name).Set(float64(n))
	}

	for _, b := range res.Blocks {
		addr := strconv.Itoa(int(b.Address))
		for name, v := range b.Measurements {
			m.Measurement.WithLabelValues(res.DeviceID, b.Name, addr, name).Set(v)
		}
	}
}

// ObserveStatus publishes a device health snapshot.
func (m *Metrics) ObserveStatus(device string, s status.Snapshot) {
	m.Health.WithLabelValues(device).Set(float64(s.Health))
	m.LastErrorCode.WithLabelValues(device).Set(float64(s.LastErrorCode))
	m.SecondsInError.WithLabelValues(device).Set(float64(s.SecondsInError))
}

// Handler serves /metrics and /health.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

// Serve runs the metrics HTTP server until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, log logrus.FieldLogger) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", addr).Info("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("metrics server stopped")
	}
}
