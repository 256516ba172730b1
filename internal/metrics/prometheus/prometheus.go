package prometheus

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/SailingSF/thinkr-web-app-sub000/internal/metrics"
	"github.com/SailingSF/thinkr-web-app-sub000/internal/model"
)

const prefix = "thinkr"

// Config is the configuration of the Prometheus recorder.
type Config struct {
	// Registerer is the registerer used to register the metrics. Defaults to the
	// Prometheus default registerer.
	Registerer prometheus.Registerer
	// DurationBuckets are the buckets of the operation duration histogram.
	DurationBuckets []float64
}

func (c *Config) defaults() {
	if c.Registerer == nil {
		c.Registerer = prometheus.DefaultRegisterer
	}
	if len(c.DurationBuckets) == 0 {
		c.DurationBuckets = []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120, 300}
	}
}

type recorder struct {
	pollAttempts      *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// NewRecorder returns a new metrics recorder that records on Prometheus.
func NewRecorder(cfg Config) metrics.Recorder {
	cfg.defaults()

	r := &recorder{
		pollAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Subsystem: "poller",
			Name:      "attempts_total",
			Help:      "The total number of status check attempts.",
		}, []string{"kind", "retry"}),

		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: prefix,
			Subsystem: "poller",
			Name:      "operation_duration_seconds",
			Help:      "The duration of polled operations until they finished.",
			Buckets:   cfg.DurationBuckets,
		}, []string{"kind", "outcome", "failure_kind"}),
	}

	cfg.Registerer.MustRegister(
		r.pollAttempts,
		r.operationDuration,
	)

	return r
}

func (r recorder) ObservePollAttempt(_ context.Context, kind model.OperationKind, retry bool) {
	r.pollAttempts.WithLabelValues(string(kind), strconv.FormatBool(retry)).Inc()
}

func (r recorder) ObserveOperationFinished(_ context.Context, kind model.OperationKind, outcome model.Outcome, failureKind model.FailureKind, duration time.Duration) {
	r.operationDuration.WithLabelValues(string(kind), string(outcome), string(failureKind)).Observe(duration.Seconds())
}
