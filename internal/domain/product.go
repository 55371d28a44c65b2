package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product описывает товар каталога.
type Product struct {
	ID          string
	Name        string
	Description string
	SKU         string
	// Price — цена за единицу, фиксированная точность в два знака.
	Price decimal.Decimal
	// StockQuantity — доступный остаток; не может быть отрицательным.
	StockQuantity int32
	ImageURL      string
	Category      string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProductSnapshot — согласованный срез товара на момент оформления заказа.
// Все поля получены одним чтением из хранилища.
type ProductSnapshot struct {
	ID     string
	Name   string
	Price  decimal.Decimal
	Stock  int32
	Active bool
}

// ProductFilter задаёт условия выборки каталога.
type ProductFilter struct {
	// Category — точное совпадение категории.
	Category string
	// Search — подстрока в имени или описании.
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Page     int
	PerPage  int
}

// Normalize подставляет значения пагинации по умолчанию.
func (f *ProductFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 10
	}
}
