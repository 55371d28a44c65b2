package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCheckoutMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newCheckoutMetricsWithRegisterer(reg)

	m.RecordCheckoutStarted()
	m.RecordCheckoutStarted()
	m.RecordCheckoutCommitted()
	m.RecordCheckoutFailed(FailReasonInsufficientStock)
	m.RecordCheckoutFinished()
	m.RecordCheckoutDuration(150 * time.Millisecond)
	m.RecordNotificationRequested()
	m.RecordNotificationFailed()
	m.RecordNumberRetry()

	if got := testutil.ToFloat64(m.checkoutStarted); got != 2 {
		t.Fatalf("checkoutStarted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.checkoutCommitted); got != 1 {
		t.Fatalf("checkoutCommitted = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.checkoutFailed.WithLabelValues(FailReasonInsufficientStock)); got != 1 {
		t.Fatalf("checkoutFailed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.activeCheckouts); got != 1 {
		t.Fatalf("activeCheckouts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.notificationsFailed); got != 1 {
		t.Fatalf("notificationsFailed = %v, want 1", got)
	}
}

func TestCheckoutMetrics_DoubleRegistration(t *testing.T) {
	// Повторная инициализация в одном registry должна переиспользовать коллекторы.
	reg := prometheus.NewRegistry()
	first := newCheckoutMetricsWithRegisterer(reg)
	second := newCheckoutMetricsWithRegisterer(reg)

	first.RecordCheckoutCommitted()
	second.RecordCheckoutCommitted()

	if got := testutil.ToFloat64(first.checkoutCommitted); got != 2 {
		t.Fatalf("expected shared counter with value 2, got %v", got)
	}
}
