// Package checkout реализует транзакционное оформление заказа:
// валидация → срез каталога → расчёт → резервирование → запись → уведомление.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/dmikhailov/estore/internal/domain"
	"github.com/dmikhailov/estore/internal/metrics"
	"github.com/dmikhailov/estore/internal/pricing"
)

// maxNumberAttempts ограничивает повторы всей транзакции при коллизии номера
// заказа. Неудачный INSERT отравляет транзакцию Postgres, поэтому номер
// перегенерируется снаружи, а не внутри неё.
const maxNumberAttempts = 5

// CreateOrderRequest — вход оформления заказа.
type CreateOrderRequest struct {
	CustomerName    string
	CustomerEmail   string
	ShippingAddress string
	BillingAddress  string
	PaymentMethod   string
	Notes           string
	Items           []domain.CartItem
}

// Coordinator последовательно проводит оформление заказа как одну
// атомарную единицу работы. Все эффекты до коммита откатываются при
// первой же ошибке; после коммита заказ необратим, а сбой уведомления
// только логируется.
type Coordinator struct {
	store    domain.CheckoutStore
	notifier domain.NotificationDispatcher
	numbers  *NumberGenerator
	logger   *log.Entry
	metrics  *metrics.CheckoutMetrics
}

// NewCoordinator создаёт рабочий экземпляр координатора.
func NewCoordinator(store domain.CheckoutStore, notifier domain.NotificationDispatcher, logger *log.Entry) *Coordinator {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &Coordinator{
		store:    store,
		notifier: notifier,
		numbers:  NewNumberGenerator(),
		logger:   logger,
		metrics:  metrics.NewCheckoutMetrics(),
	}
}

// NewCoordinatorWithoutMetrics создаёт координатор без метрик (для тестов).
func NewCoordinatorWithoutMetrics(store domain.CheckoutStore, notifier domain.NotificationDispatcher, logger *log.Entry) *Coordinator {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &Coordinator{
		store:    store,
		notifier: notifier,
		numbers:  NewNumberGenerator(),
		logger:   logger,
	}
}

// CreateOrder проводит оформление заказа и возвращает созданный заказ со
// всеми позициями. Ошибки до коммита не оставляют никаких эффектов в
// хранилище; сбой уведомления после коммита не влияет на результат.
func (c *Coordinator) CreateOrder(ctx context.Context, req CreateOrderRequest) (domain.Order, error) {
	start := time.Now()
	if c.metrics != nil {
		c.metrics.RecordCheckoutStarted()
	}
	defer func() {
		if c.metrics != nil {
			c.metrics.RecordCheckoutDuration(time.Since(start))
			c.metrics.RecordCheckoutFinished()
		}
	}()

	// Структурная валидация до любого обращения к хранилищу.
	if err := validateRequest(req); err != nil {
		c.recordFailure(metrics.FailReasonValidation)
		return domain.Order{}, err
	}

	order, err := c.createWithNumberRetry(ctx, req)
	if err != nil {
		c.recordFailure(failureReason(err))
		return domain.Order{}, err
	}

	if c.metrics != nil {
		c.metrics.RecordCheckoutCommitted()
	}
	c.logger.WithFields(log.Fields{
		"order_number": order.Number,
		"total":        order.TotalAmount.String(),
		"lines":        len(order.Lines),
	}).Info("order committed")

	c.notify(ctx, order)

	return order, nil
}

// createWithNumberRetry исполняет транзакцию оформления, перегенерируя номер
// заказа при коллизии уникального индекса.
func (c *Coordinator) createWithNumberRetry(ctx context.Context, req CreateOrderRequest) (domain.Order, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number, err := c.numbers.Generate()
		if err != nil {
			return domain.Order{}, fmt.Errorf("generate order number: %w", err)
		}

		order, err := c.runTx(ctx, req, number)
		if err == nil {
			return order, nil
		}
		if errors.Is(err, domain.ErrOrderNumberConflict) {
			if c.metrics != nil {
				c.metrics.RecordNumberRetry()
			}
			c.logger.WithFields(log.Fields{
				"order_number": number,
				"attempt":      attempt + 1,
			}).Warn("order number collision, retrying")
			continue
		}
		return domain.Order{}, err
	}

	return domain.Order{}, fmt.Errorf("exhausted %d attempts: %w", maxNumberAttempts, domain.ErrOrderNumberConflict)
}

// runTx — одна попытка оформления внутри транзакции хранилища.
// Резервы и запись заказа коммитятся или откатываются вместе.
func (c *Coordinator) runTx(ctx context.Context, req CreateOrderRequest, number string) (domain.Order, error) {
	var order domain.Order

	err := c.store.WithinTx(ctx, func(tx domain.CheckoutTx) error {
		// Срез каждого товара: отсутствие или неактивность прерывает
		// оформление до каких-либо резервов.
		lines := make([]pricing.Line, 0, len(req.Items))
		for _, item := range req.Items {
			snap, err := tx.Snapshot(ctx, item.ProductID)
			if errors.Is(err, domain.ErrProductNotFound) {
				return &domain.ProductUnavailableError{ProductID: item.ProductID}
			}
			if err != nil {
				return fmt.Errorf("snapshot product %s: %w", item.ProductID, err)
			}
			if !snap.Active {
				return &domain.ProductUnavailableError{ProductID: item.ProductID}
			}
			lines = append(lines, pricing.Line{Product: snap, Qty: item.Qty})
		}

		priced, err := pricing.Price(lines)
		if err != nil {
			return err
		}

		// Резервируем остаток по каждой позиции; первый отказ откатывает
		// резервы всех предыдущих позиций вместе с транзакцией.
		for _, line := range priced.Lines {
			if err := tx.Reserve(ctx, line.Product.ID, line.Qty); err != nil {
				return err
			}
		}

		order = assembleOrder(req, priced, number)
		return tx.InsertOrder(ctx, order)
	})
	if err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

// notify выдаёт запрос на подтверждение заказа. Вызывается только после
// коммита; отмена исходного контекста не должна блокировать уведомление.
func (c *Coordinator) notify(ctx context.Context, order domain.Order) {
	if c.notifier == nil {
		return
	}
	if c.metrics != nil {
		c.metrics.RecordNotificationRequested()
	}
	if err := c.notifier.OrderConfirmation(context.WithoutCancel(ctx), order); err != nil {
		if c.metrics != nil {
			c.metrics.RecordNotificationFailed()
		}
		c.logger.WithError(err).WithField("order_number", order.Number).Warn("order confirmation dispatch failed")
	}
}

func (c *Coordinator) recordFailure(reason string) {
	if c.metrics != nil {
		c.metrics.RecordCheckoutFailed(reason)
	}
}

func assembleOrder(req CreateOrderRequest, priced pricing.Result, number string) domain.Order {
	now := time.Now().UTC()
	orderID := uuid.NewString()

	orderLines := make([]domain.OrderLine, 0, len(priced.Lines))
	for _, line := range priced.Lines {
		orderLines = append(orderLines, domain.OrderLine{
			ID:          uuid.NewString(),
			OrderID:     orderID,
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Qty:         line.Qty,
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.LineTotal,
			CreatedAt:   now,
		})
	}

	return domain.Order{
		ID:              orderID,
		Number:          number,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		Status:          domain.OrderStatusPending,
		TotalAmount:     priced.Total,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
		Lines:           orderLines,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// validateRequest проверяет форму запроса и собирает все замечания разом.
func validateRequest(req CreateOrderRequest) error {
	fields := make(map[string]string)

	if req.CustomerName == "" {
		fields["customer_name"] = "required"
	}
	if req.CustomerEmail == "" {
		fields["customer_email"] = "required"
	} else if addr, err := mail.ParseAddress(req.CustomerEmail); err != nil || addr.Address != req.CustomerEmail {
		fields["customer_email"] = "must be a valid email address"
	}
	if req.ShippingAddress == "" {
		fields["shipping_address"] = "required"
	}
	if len(req.Items) == 0 {
		fields["items"] = "must contain at least one item"
	}
	for i, item := range req.Items {
		if item.ProductID == "" {
			fields[fmt.Sprintf("items[%d].product_id", i)] = "required"
		}
		if item.Qty < 1 {
			fields[fmt.Sprintf("items[%d].quantity", i)] = "must be at least 1"
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func failureReason(err error) string {
	switch {
	case domain.IsValidation(err):
		return metrics.FailReasonValidation
	case domain.IsProductUnavailable(err):
		return metrics.FailReasonProductUnavailable
	case domain.IsInsufficientStock(err):
		return metrics.FailReasonInsufficientStock
	default:
		return metrics.FailReasonStorage
	}
}
