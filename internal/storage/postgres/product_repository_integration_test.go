package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dmikhailov/estore/internal/domain"
)

func TestProductRepository_PostgresGetActive(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	active := sampleProduct("prod-active", "19.99", 10)
	inactive := sampleProduct("prod-hidden", "29.99", 5)
	inactive.IsActive = false
	insertProductForIntegrationTest(t, store, active)
	insertProductForIntegrationTest(t, store, inactive)

	got, err := repo.GetActive(context.Background(), "prod-active")
	if err != nil {
		t.Fatalf("get active product: %v", err)
	}
	if got.ID != "prod-active" || !got.Price.Equal(decimal.RequireFromString("19.99")) {
		t.Fatalf("unexpected product: %+v", got)
	}

	if _, err := repo.GetActive(context.Background(), "prod-hidden"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("inactive product must read as not found, got %v", err)
	}
	if _, err := repo.GetActive(context.Background(), "prod-missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductRepository_PostgresListFilters(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	cheap := sampleProduct("prod-cheap", "9.99", 10)
	cheap.Name = "Alpha Widget"
	cheap.Category = "widgets"
	mid := sampleProduct("prod-mid", "49.99", 10)
	mid.Name = "Beta Widget"
	mid.Category = "widgets"
	mid.Description = "premium finish"
	pricey := sampleProduct("prod-pricey", "199.99", 10)
	pricey.Name = "Gamma Gadget"
	pricey.Category = "gadgets"
	hidden := sampleProduct("prod-hidden", "5.00", 10)
	hidden.IsActive = false

	for _, p := range []domain.Product{cheap, mid, pricey, hidden} {
		insertProductForIntegrationTest(t, store, p)
	}

	all, total, err := repo.List(context.Background(), domain.ProductFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("inactive products must be excluded: total=%d len=%d", total, len(all))
	}
	if all[0].Name != "Alpha Widget" {
		t.Fatalf("expected name ordering, got %s first", all[0].Name)
	}

	widgets, total, err := repo.List(context.Background(), domain.ProductFilter{Category: "widgets"})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if total != 2 || len(widgets) != 2 {
		t.Fatalf("unexpected category result: total=%d %+v", total, widgets)
	}

	found, total, err := repo.List(context.Background(), domain.ProductFilter{Search: "premium"})
	if err != nil {
		t.Fatalf("list by search: %v", err)
	}
	if total != 1 || found[0].ID != "prod-mid" {
		t.Fatalf("search must cover descriptions: total=%d %+v", total, found)
	}

	min := decimal.RequireFromString("40")
	max := decimal.RequireFromString("200")
	ranged, total, err := repo.List(context.Background(), domain.ProductFilter{MinPrice: &min, MaxPrice: &max})
	if err != nil {
		t.Fatalf("list by price range: %v", err)
	}
	if total != 2 || len(ranged) != 2 {
		t.Fatalf("unexpected price range result: total=%d %+v", total, ranged)
	}

	paged, total, err := repo.List(context.Background(), domain.ProductFilter{Page: 2, PerPage: 2})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if total != 3 || len(paged) != 1 || paged[0].Name != "Gamma Gadget" {
		t.Fatalf("unexpected page result: total=%d %+v", total, paged)
	}
}

func TestProductRepository_PostgresCategories(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	a := sampleProduct("prod-a", "10.00", 1)
	a.Category = "widgets"
	b := sampleProduct("prod-b", "10.00", 1)
	b.Category = "gadgets"
	c := sampleProduct("prod-c", "10.00", 1)
	c.Category = "widgets"
	d := sampleProduct("prod-d", "10.00", 1)
	d.Category = "hidden"
	d.IsActive = false

	for _, p := range []domain.Product{a, b, c, d} {
		insertProductForIntegrationTest(t, store, p)
	}

	categories, err := repo.Categories(context.Background())
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	want := []string{"gadgets", "widgets"}
	if len(categories) != len(want) {
		t.Fatalf("unexpected categories: %v", categories)
	}
	for i := range want {
		if categories[i] != want[i] {
			t.Fatalf("unexpected categories order: %v", categories)
		}
	}
}
