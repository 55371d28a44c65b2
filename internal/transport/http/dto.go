package http

import (
	"time"

	"github.com/dmikhailov/estore/internal/domain"
)

type productView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	SKU           string    `json:"sku"`
	Price         string    `json:"price"`
	StockQuantity int32     `json:"stock_quantity"`
	ImageURL      string    `json:"image_url"`
	Category      string    `json:"category"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type productPageView struct {
	Items   []productView `json:"items"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

type orderLineView struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Qty         int32  `json:"qty"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

type orderView struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"order_number"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	Status          string          `json:"status"`
	TotalAmount     string          `json:"total_amount"`
	ShippingAddress string          `json:"shipping_address"`
	BillingAddress  string          `json:"billing_address,omitempty"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Items           []orderLineView `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type orderPageView struct {
	Items   []orderView `json:"items"`
	Total   int         `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
}

func toProductView(p domain.Product) productView {
	return productView{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		SKU:           p.SKU,
		Price:         p.Price.StringFixed(2),
		StockQuantity: p.StockQuantity,
		ImageURL:      p.ImageURL,
		Category:      p.Category,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toOrderView(o domain.Order) orderView {
	items := make([]orderLineView, 0, len(o.Lines))
	for _, line := range o.Lines {
		items = append(items, orderLineView{
			ID:          line.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Qty:         line.Qty,
			UnitPrice:   line.UnitPrice.StringFixed(2),
			LineTotal:   line.LineTotal.StringFixed(2),
		})
	}

	return orderView{
		ID:              o.ID,
		OrderNumber:     o.Number,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		Status:          string(o.Status),
		TotalAmount:     o.TotalAmount.StringFixed(2),
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		PaymentMethod:   o.PaymentMethod,
		Notes:           o.Notes,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
