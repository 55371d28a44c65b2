// Package notification выдаёт запросы "отправь подтверждение заказа X"
// внешнему почтовому сервису. Само письмо формирует и шлёт внешний сервис;
// здесь только fire-and-forget запрос после коммита заказа.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/dmikhailov/estore/internal/domain"
)

// TopicOrderNotifications — топик с запросами на письма о заказах.
const TopicOrderNotifications = "estore.order.notifications"

// EventTypeOrderConfirmation — тип события запроса подтверждения.
const EventTypeOrderConfirmation = "order.confirmation.requested"

// confirmationEvent — полезная нагрузка запроса на подтверждение заказа.
type confirmationEvent struct {
	EventType     string                  `json:"event_type"`
	OrderNumber   string                  `json:"order_number"`
	CustomerName  string                  `json:"customer_name"`
	CustomerEmail string                  `json:"customer_email"`
	TotalAmount   string                  `json:"total_amount"`
	Lines         []confirmationLineEvent `json:"lines"`
	RequestedAt   time.Time               `json:"requested_at"`
}

type confirmationLineEvent struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Qty         int32  `json:"qty"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

// KafkaDispatcher публикует запросы на уведомления в Kafka.
type KafkaDispatcher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *log.Entry
}

// NewKafkaDispatcher создаёт dispatcher поверх sync-producer.
func NewKafkaDispatcher(brokers []string) (*KafkaDispatcher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1 // требование идемпотентного продюсера

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &KafkaDispatcher{
		producer: producer,
		topic:    TopicOrderNotifications,
		logger:   log.WithField("component", "notification-kafka"),
	}, nil
}

// OrderConfirmation публикует запрос на письмо-подтверждение заказа.
// Ключ — номер заказа, чтобы события одного заказа шли в одну партицию.
func (d *KafkaDispatcher) OrderConfirmation(_ context.Context, order domain.Order) error {
	event := confirmationEvent{
		EventType:     EventTypeOrderConfirmation,
		OrderNumber:   order.Number,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		TotalAmount:   order.TotalAmount.StringFixed(2),
		RequestedAt:   time.Now().UTC(),
	}
	for _, line := range order.Lines {
		event.Lines = append(event.Lines, confirmationLineEvent{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Qty:         line.Qty,
			UnitPrice:   line.UnitPrice.StringFixed(2),
			LineTotal:   line.LineTotal.StringFixed(2),
		})
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal confirmation event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     d.topic,
		Key:       sarama.StringEncoder(order.Number),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: time.Now(),
	}

	partition, offset, err := d.producer.SendMessage(msg)
	if err != nil {
		d.logger.WithError(err).WithField("order_number", order.Number).Error("failed to publish confirmation request")
		return fmt.Errorf("send confirmation request: %w", err)
	}

	d.logger.WithFields(log.Fields{
		"order_number": order.Number,
		"partition":    partition,
		"offset":       offset,
	}).Debug("confirmation request published")

	return nil
}

// Close закрывает producer.
func (d *KafkaDispatcher) Close() error {
	if err := d.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}

var _ domain.NotificationDispatcher = (*KafkaDispatcher)(nil)
