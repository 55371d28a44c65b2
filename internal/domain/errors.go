package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Ошибка отсутствующего имени покупателя.
	ErrCustomerNameRequired = errors.New("customer_name is required")
	// Ошибка отсутствующего email покупателя.
	ErrCustomerEmailRequired = errors.New("customer_email is required")
	// Ошибка некорректного формата email.
	ErrCustomerEmailInvalid = errors.New("customer_email is not a valid email address")
	// Ошибка отсутствующего адреса доставки.
	ErrShippingAddressRequired = errors.New("shipping_address is required")
	// Ошибка пустой корзины.
	ErrLinesRequired = errors.New("order must contain at least one line")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrLineQtyInvalid = errors.New("line qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrLinePriceInvalid = errors.New("line unit price must be non-negative")
	// Ошибка несоответствия суммы позиции qty * unit price.
	ErrLineTotalMismatch = errors.New("line total does not match qty * unit price")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("total_amount must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order total does not match lines sum")

	// ErrProductNotFound возвращается, если товар не найден в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderNumberConflict сигнализирует о коллизии номера заказа при вставке.
	// Уникальность обеспечивает хранилище; вызывающая сторона перегенерирует
	// номер и повторяет попытку.
	ErrOrderNumberConflict = errors.New("order number already exists")
	// ErrStatusUnknown возвращается при попытке установить статус вне множества допустимых.
	ErrStatusUnknown = errors.New("unknown order status")
)

// ValidationError собирает ошибки структурной валидации входных данных по полям.
// Возникает до любого обращения к хранилищу и не оставляет побочных эффектов.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ProductUnavailableError возвращается, когда товар из корзины отсутствует
// или неактивен. Оформление прерывается без частичных резервов.
type ProductUnavailableError struct {
	ProductID string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s not found or inactive", e.ProductID)
}

// InsufficientStockError возвращается при нехватке остатка для резервирования.
type InsufficientStockError struct {
	ProductID string
	Requested int32
	Available int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// IsValidation проверяет, является ли ошибка ошибкой валидации входных данных.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsProductUnavailable проверяет, является ли ошибка недоступностью товара.
func IsProductUnavailable(err error) bool {
	var pe *ProductUnavailableError
	return errors.As(err, &pe)
}

// IsInsufficientStock проверяет, является ли ошибка нехваткой остатка.
func IsInsufficientStock(err error) bool {
	var se *InsufficientStockError
	return errors.As(err, &se)
}
