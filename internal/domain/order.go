package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан и ожидает обработки.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessing — заказ взят в работу.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ доставлен покупателю.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid проверяет, входит ли статус в допустимое множество.
// Переходы между статусами намеренно не ограничены: единственная проверка
// при смене статуса — принадлежность этому множеству.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderLine представляет одну позицию заказа.
type OrderLine struct {
	ID      string
	OrderID string
	// ProductID — ссылка на товар каталога; жизненный цикл товара независим.
	ProductID string
	// ProductName — имя товара на момент заказа, для отображения истории.
	ProductName string
	Qty         int32
	// UnitPrice — цена за единицу на момент заказа. Копия, не живая ссылка:
	// последующие изменения каталога не затрагивают сохранённые заказы.
	UnitPrice decimal.Decimal
	// LineTotal всегда равен Qty * UnitPrice.
	LineTotal decimal.Decimal
	CreatedAt time.Time
}

// Order агрегирует заказ и его позиции. Заказ создаётся атомарно вместе со
// всеми позициями; после создания меняется только статус.
type Order struct {
	ID string
	// Number — человекочитаемый уникальный номер заказа.
	Number        string
	CustomerName  string
	CustomerEmail string
	Status        OrderStatus
	// TotalAmount равен сумме LineTotal всех позиций.
	TotalAmount     decimal.Decimal
	ShippingAddress string
	BillingAddress  string
	PaymentMethod   string
	Notes           string
	Lines           []OrderLine
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CartItem — строка корзины на входе оформления. Корзина не персистится;
// дубликаты ProductID допустимы и обрабатываются как отдельные позиции.
type CartItem struct {
	ProductID string
	Qty       int32
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerName == "" {
		errs = append(errs, ErrCustomerNameRequired)
	}
	if o.CustomerEmail == "" {
		errs = append(errs, ErrCustomerEmailRequired)
	}
	if o.ShippingAddress == "" {
		errs = append(errs, ErrShippingAddressRequired)
	}
	if len(o.Lines) == 0 {
		errs = append(errs, ErrLinesRequired)
	}
	if o.TotalAmount.IsNegative() {
		errs = append(errs, ErrAmountNegative)
	}

	// Сверяем сумму заказа с суммой позиций: qty * unit price.
	sum := decimal.Zero
	for _, line := range o.Lines {
		if line.Qty <= 0 {
			errs = append(errs, ErrLineQtyInvalid)
		}
		if line.UnitPrice.IsNegative() {
			errs = append(errs, ErrLinePriceInvalid)
		}
		if !line.LineTotal.Equal(line.UnitPrice.Mul(decimal.NewFromInt32(line.Qty))) {
			errs = append(errs, ErrLineTotalMismatch)
		}
		sum = sum.Add(line.LineTotal)
	}
	if !sum.Equal(o.TotalAmount) {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}

// OrderFilter задаёт условия выборки списка заказов.
type OrderFilter struct {
	// CustomerEmail — подстрока в email покупателя.
	CustomerEmail string
	Status        OrderStatus
	DateFrom      *time.Time
	DateTo        *time.Time
	Page          int
	PerPage       int
}

// Normalize подставляет значения пагинации по умолчанию.
func (f *OrderFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 10
	}
}
