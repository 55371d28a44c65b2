package pricing_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dmikhailov/estore/internal/domain"
	"github.com/dmikhailov/estore/internal/pricing"
)

func snap(id, price string) domain.ProductSnapshot {
	return domain.ProductSnapshot{
		ID:     id,
		Name:   "product " + id,
		Price:  decimal.RequireFromString(price),
		Stock:  100,
		Active: true,
	}
}

func TestPrice_TwoLines(t *testing.T) {
	// 49.99 * 2 + 29.99 * 1 = 129.97
	res, err := pricing.Price([]pricing.Line{
		{Product: snap("p1", "49.99"), Qty: 2},
		{Product: snap("p2", "29.99"), Qty: 1},
	})
	if err != nil {
		t.Fatalf("price: %v", err)
	}

	if got := res.Total.String(); got != "129.97" {
		t.Fatalf("total = %s, want 129.97", got)
	}
	if got := res.Lines[0].LineTotal.String(); got != "99.98" {
		t.Fatalf("line 0 total = %s, want 99.98", got)
	}
	if got := res.Lines[1].LineTotal.String(); got != "29.99" {
		t.Fatalf("line 1 total = %s, want 29.99", got)
	}
}

func TestPrice_InvalidQty(t *testing.T) {
	for _, qty := range []int32{0, -1} {
		_, err := pricing.Price([]pricing.Line{{Product: snap("p1", "10.00"), Qty: qty}})
		if !errors.Is(err, domain.ErrLineQtyInvalid) {
			t.Fatalf("qty=%d: expected ErrLineQtyInvalid, got %v", qty, err)
		}
	}
}

func TestPrice_RoundingPerLine(t *testing.T) {
	// Цена с лишней точностью округляется на уровне позиции, не итога.
	res, err := pricing.Price([]pricing.Line{
		{Product: snap("p1", "0.005"), Qty: 3},
	})
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	// 0.005 → 0.01 за единицу, 0.01 * 3 = 0.03.
	if got := res.Lines[0].UnitPrice.String(); got != "0.01" {
		t.Fatalf("unit price = %s, want 0.01", got)
	}
	if got := res.Total.String(); got != "0.03" {
		t.Fatalf("total = %s, want 0.03", got)
	}
}

func TestPrice_EmptyInput(t *testing.T) {
	res, err := pricing.Price(nil)
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if len(res.Lines) != 0 || !res.Total.IsZero() {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestPrice_DuplicateProducts(t *testing.T) {
	// Дубликаты товара в корзине считаются независимыми позициями.
	res, err := pricing.Price([]pricing.Line{
		{Product: snap("p1", "10.00"), Qty: 1},
		{Product: snap("p1", "10.00"), Qty: 2},
	})
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if got := res.Total.String(); got != "30" {
		t.Fatalf("total = %s, want 30", got)
	}
}
