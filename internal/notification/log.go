package notification

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/dmikhailov/estore/internal/domain"
)

// LogDispatcher пишет запрос на уведомление в лог вместо брокера.
// Используется, когда Kafka не сконфигурирован.
type LogDispatcher struct {
	logger *log.Entry
}

// NewLogDispatcher возвращает log-only dispatcher.
func NewLogDispatcher(logger *log.Entry) *LogDispatcher {
	if logger == nil {
		logger = log.WithField("component", "notification-log")
	}
	return &LogDispatcher{logger: logger}
}

// OrderConfirmation логирует запрос и всегда успешен.
func (d *LogDispatcher) OrderConfirmation(_ context.Context, order domain.Order) error {
	d.logger.WithFields(log.Fields{
		"order_number":   order.Number,
		"customer_email": order.CustomerEmail,
		"total_amount":   order.TotalAmount.StringFixed(2),
	}).Info("order confirmation requested")
	return nil
}

var _ domain.NotificationDispatcher = (*LogDispatcher)(nil)
