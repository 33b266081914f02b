package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	before := testutil.ToFloat64(sessions.WithLabelValues("write", "success"))
	var rec Recorder = Prometheus{}
	rec.WriteAttempt("structured-mime", false)
	rec.WriteAttempt("generic-text", true)
	rec.Session("write", "success", 40*time.Millisecond)
	rec.Decode("found")

	if got := testutil.ToFloat64(sessions.WithLabelValues("write", "success")); got != before+1 {
		t.Fatalf("session counter=%v want %v", got, before+1)
	}
	if got := testutil.ToFloat64(writeAttempts.WithLabelValues("generic-text", "true")); got < 1 {
		t.Fatalf("write attempt not recorded: %v", got)
	}
}

func TestDiscardRecorderIsNoop(t *testing.T) {
	Discard.WriteAttempt("x", true)
	Discard.Session("read", "error", time.Second)
	Discard.Decode("not-found")
}
