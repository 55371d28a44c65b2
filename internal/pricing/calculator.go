// Package pricing считает стоимость позиций и итог заказа.
// Все функции чистые: никакого состояния и обращений к хранилищу.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/dmikhailov/estore/internal/domain"
)

// Line — входная пара для расчёта: срез товара и запрошенное количество.
type Line struct {
	Product domain.ProductSnapshot
	Qty     int32
}

// PricedLine — рассчитанная позиция с зафиксированной ценой.
type PricedLine struct {
	Product   domain.ProductSnapshot
	Qty       int32
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Result содержит рассчитанные позиции и итоговую сумму заказа.
type Result struct {
	Lines []PricedLine
	Total decimal.Decimal
}

// Price рассчитывает суммы позиций и итог заказа.
// Количество должно быть положительным целым, иначе ErrLineQtyInvalid.
// Деньги считаются с фиксированной точностью в два знака; округление
// half-up применяется к каждой позиции отдельно, итог — точная сумма
// уже округлённых позиций.
func Price(lines []Line) (Result, error) {
	priced := make([]PricedLine, 0, len(lines))
	total := decimal.Zero

	for _, line := range lines {
		if line.Qty <= 0 {
			return Result{}, domain.ErrLineQtyInvalid
		}

		unit := line.Product.Price.Round(2)
		lineTotal := unit.Mul(decimal.NewFromInt32(line.Qty)).Round(2)

		priced = append(priced, PricedLine{
			Product:   line.Product,
			Qty:       line.Qty,
			UnitPrice: unit,
			LineTotal: lineTotal,
		})
		total = total.Add(lineTotal)
	}

	return Result{Lines: priced, Total: total}, nil
}
