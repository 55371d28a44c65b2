package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/dmikhailov/estore/internal/domain"
	"github.com/dmikhailov/estore/internal/service/checkout"
)

type orderHandlers struct {
	checkout *checkout.Coordinator
	orders   domain.OrderRepository
	notifier domain.NotificationDispatcher
	logger   *log.Entry
}

type createOrderPayload struct {
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	ShippingAddress string `json:"shipping_address"`
	BillingAddress  string `json:"billing_address"`
	PaymentMethod   string `json:"payment_method"`
	Notes           string `json:"notes"`
	Items           []struct {
		ProductID string `json:"product_id"`
		Qty       int32  `json:"qty"`
	} `json:"items"`
}

func (h *orderHandlers) createOrder(c *gin.Context) {
	var payload createOrderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, h.logger, &domain.ValidationError{Fields: map[string]string{
			"body": "invalid JSON payload",
		}})
		return
	}

	req := checkout.CreateOrderRequest{
		CustomerName:    payload.CustomerName,
		CustomerEmail:   payload.CustomerEmail,
		ShippingAddress: payload.ShippingAddress,
		BillingAddress:  payload.BillingAddress,
		PaymentMethod:   payload.PaymentMethod,
		Notes:           payload.Notes,
	}
	for _, item := range payload.Items {
		req.Items = append(req.Items, domain.CartItem{
			ProductID: item.ProductID,
			Qty:       item.Qty,
		})
	}

	order, err := h.checkout.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusCreated, toOrderView(order))
}

func (h *orderHandlers) listOrders(c *gin.Context) {
	filter, err := parseOrderFilter(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	orders, total, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	filter.Normalize()

	items := make([]orderView, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderView(o))
	}
	respondData(c, http.StatusOK, orderPageView{
		Items:   items,
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
	})
}

func (h *orderHandlers) getOrder(c *gin.Context) {
	order, err := h.orders.GetByNumber(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toOrderView(order))
}

type updateStatusPayload struct {
	Status string `json:"status"`
}

func (h *orderHandlers) updateStatus(c *gin.Context) {
	var payload updateStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, h.logger, &domain.ValidationError{Fields: map[string]string{
			"body": "invalid JSON payload",
		}})
		return
	}

	order, err := h.orders.UpdateStatus(
		c.Request.Context(),
		c.Param("orderNumber"),
		domain.OrderStatus(strings.TrimSpace(payload.Status)),
	)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, toOrderView(order))
}

type resendConfirmationPayload struct {
	OrderNumber string `json:"order_number"`
}

// resendConfirmation перезапускает письмо-подтверждение по номеру заказа.
func (h *orderHandlers) resendConfirmation(c *gin.Context) {
	var payload resendConfirmationPayload
	if err := c.ShouldBindJSON(&payload); err != nil || strings.TrimSpace(payload.OrderNumber) == "" {
		respondError(c, h.logger, &domain.ValidationError{Fields: map[string]string{
			"order_number": "is required",
		}})
		return
	}

	order, err := h.orders.GetByNumber(c.Request.Context(), strings.TrimSpace(payload.OrderNumber))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.notifier.OrderConfirmation(c.Request.Context(), order); err != nil {
		h.logger.WithError(err).WithField("order_number", order.Number).
			Error("resend order confirmation failed")
		c.JSON(http.StatusInternalServerError, envelope{
			Success: false,
			Message: "failed to send confirmation",
		})
		return
	}

	respondMessage(c, http.StatusOK, "confirmation sent")
}

func parseOrderFilter(c *gin.Context) (domain.OrderFilter, error) {
	filter := domain.OrderFilter{
		CustomerEmail: strings.TrimSpace(c.Query("customer_email")),
		Status:        domain.OrderStatus(strings.TrimSpace(c.Query("status"))),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return domain.OrderFilter{}, domain.ErrStatusUnknown
	}

	var err error
	if filter.DateFrom, err = parseTimeQuery(c, "date_from"); err != nil {
		return domain.OrderFilter{}, err
	}
	if filter.DateTo, err = parseTimeQuery(c, "date_to"); err != nil {
		return domain.OrderFilter{}, err
	}
	if filter.Page, err = parseIntQuery(c, "page"); err != nil {
		return domain.OrderFilter{}, err
	}
	if filter.PerPage, err = parseIntQuery(c, "per_page"); err != nil {
		return domain.OrderFilter{}, err
	}

	return filter, nil
}

func parseTimeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, &domain.ValidationError{Fields: map[string]string{
			name: "must be an RFC3339 timestamp",
		}}
	}
	return &ts, nil
}
