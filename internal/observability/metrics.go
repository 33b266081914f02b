package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	writeAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tagcard",
			Subsystem: "write",
			Name:      "attempts_total",
			Help:      "Encoding candidate write attempts against the transceiver.",
		},
		[]string{"candidate", "accepted"},
	)
	sessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tagcard",
			Subsystem: "session",
			Name:      "total",
			Help:      "Terminal outcomes of transceiver sessions.",
		},
		[]string{"kind", "outcome"},
	)
	sessionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tagcard",
			Subsystem: "session",
			Name:      "duration_seconds",
			Help:      "Time a session held the transceiver.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind", "outcome"},
	)
	decodeResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tagcard",
			Subsystem: "decode",
			Name:      "results_total",
			Help:      "Decode results for scanned tags.",
		},
		[]string{"result"},
	)
)

// Recorder receives session metrics.
type Recorder interface {
	WriteAttempt(candidate string, accepted bool)
	Session(kind, outcome string, d time.Duration)
	Decode(result string)
}

// Discard drops every measurement.
var Discard Recorder = discard{}

type discard struct{}

func (discard) WriteAttempt(string, bool)             {}
func (discard) Session(string, string, time.Duration) {}
func (discard) Decode(string)                         {}

// Prometheus records into the default registry.
type Prometheus struct{}

func (Prometheus) WriteAttempt(candidate string, accepted bool) {
	RecordWriteAttempt(candidate, accepted)
}

func (Prometheus) Session(kind, outcome string, d time.Duration) {
	RecordSession(kind, outcome, d)
}

func (Prometheus) Decode(result string) {
	RecordDecode(result)
}

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(writeAttempts, sessions, sessionDuration, decodeResults)
	})
}

func RecordWriteAttempt(candidate string, accepted bool) {
	RegisterMetrics()
	writeAttempts.WithLabelValues(candidate, strconv.FormatBool(accepted)).Inc()
}

func RecordSession(kind, outcome string, d time.Duration) {
	RegisterMetrics()
	sessions.WithLabelValues(kind, outcome).Inc()
	sessionDuration.WithLabelValues(kind, outcome).Observe(d.Seconds())
}

func RecordDecode(result string) {
	RegisterMetrics()
	decodeResults.WithLabelValues(result).Inc()
}
