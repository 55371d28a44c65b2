package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Причины неудачного оформления для лейбла reason.
const (
	FailReasonValidation         = "validation"
	FailReasonProductUnavailable = "product_unavailable"
	FailReasonInsufficientStock  = "insufficient_stock"
	FailReasonStorage            = "storage"
)

// CheckoutMetrics содержит метрики оформления заказов.
type CheckoutMetrics struct {
	// Счётчики исходов
	checkoutStarted   prometheus.Counter
	checkoutCommitted prometheus.Counter
	checkoutFailed    *prometheus.CounterVec

	// Гистограмма времени оформления
	checkoutDuration prometheus.Histogram

	// Счётчики уведомлений
	notificationsRequested prometheus.Counter
	notificationsFailed    prometheus.Counter

	// Счётчик повторов генерации номера заказа
	numberRetries prometheus.Counter

	// Gauge для оформлений в полёте
	activeCheckouts prometheus.Gauge
}

// NewCheckoutMetrics создаёт новый экземпляр метрик оформления.
func NewCheckoutMetrics() *CheckoutMetrics {
	return newCheckoutMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newCheckoutMetricsWithRegisterer(registerer prometheus.Registerer) *CheckoutMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CheckoutMetrics{
		checkoutStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "estore_checkout_started_total",
			Help: "Total number of order creation attempts started",
		}),
		checkoutCommitted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "estore_checkout_committed_total",
			Help: "Total number of orders committed successfully",
		}),
		checkoutFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "estore_checkout_failed_total",
			Help: "Total number of order creation attempts failed, by reason",
		}, []string{"reason"}),
		checkoutDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "estore_checkout_duration_seconds",
			Help:    "Duration of order creation attempts in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		notificationsRequested: registerCounter(registerer, prometheus.CounterOpts{
			Name: "estore_order_notifications_requested_total",
			Help: "Total number of order confirmation requests dispatched",
		}),
		notificationsFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "estore_order_notifications_failed_total",
			Help: "Total number of order confirmation dispatch failures",
		}),
		numberRetries: registerCounter(registerer, prometheus.CounterOpts{
			Name: "estore_order_number_retries_total",
			Help: "Total number of order number regenerations after a collision",
		}),
		activeCheckouts: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "estore_active_checkouts",
			Help: "Number of order creation attempts currently in flight",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCheckoutStarted увеличивает счётчик начатых оформлений.
func (m *CheckoutMetrics) RecordCheckoutStarted() {
	m.checkoutStarted.Inc()
	m.activeCheckouts.Inc()
}

// RecordCheckoutCommitted увеличивает счётчик закоммиченных заказов.
func (m *CheckoutMetrics) RecordCheckoutCommitted() {
	m.checkoutCommitted.Inc()
}

// RecordCheckoutFailed увеличивает счётчик неудачных оформлений по причине.
func (m *CheckoutMetrics) RecordCheckoutFailed(reason string) {
	m.checkoutFailed.WithLabelValues(reason).Inc()
}

// RecordCheckoutFinished уменьшает количество оформлений в полёте.
func (m *CheckoutMetrics) RecordCheckoutFinished() {
	m.activeCheckouts.Dec()
}

// RecordCheckoutDuration записывает время оформления.
func (m *CheckoutMetrics) RecordCheckoutDuration(duration time.Duration) {
	m.checkoutDuration.Observe(duration.Seconds())
}

// RecordNotificationRequested увеличивает счётчик отправленных запросов на уведомление.
func (m *CheckoutMetrics) RecordNotificationRequested() {
	m.notificationsRequested.Inc()
}

// RecordNotificationFailed увеличивает счётчик сбоев уведомлений.
func (m *CheckoutMetrics) RecordNotificationFailed() {
	m.notificationsFailed.Inc()
}

// RecordNumberRetry увеличивает счётчик повторов генерации номера заказа.
func (m *CheckoutMetrics) RecordNumberRetry() {
	m.numberRetries.Inc()
}
