package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmikhailov/estore/internal/domain"
)

func TestCheckoutStore_PostgresCommitPersistsOrderAndStock(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	insertProductForIntegrationTest(t, store, sampleProduct("prod-1", "49.99", 10))

	checkout := NewCheckoutStore(store)
	now := time.Now().UTC().Round(time.Microsecond)
	order := sampleStoredOrder("ORD-COMMIT01", now)

	err := checkout.WithinTx(context.Background(), func(tx domain.CheckoutTx) error {
		snap, err := tx.Snapshot(context.Background(), "prod-1")
		if err != nil {
			return err
		}
		if snap.Stock != 10 || !snap.Active {
			t.Fatalf("unexpected snapshot: %+v", snap)
		}
		if err := tx.Reserve(context.Background(), "prod-1", 2); err != nil {
			return err
		}
		return tx.InsertOrder(context.Background(), order)
	})
	if err != nil {
		t.Fatalf("checkout tx: %v", err)
	}

	if stock := productStockForIntegrationTest(t, store, "prod-1"); stock != 8 {
		t.Fatalf("unexpected stock after commit: got=%d want=8", stock)
	}

	repo := NewOrderRepository(store)
	got, err := repo.GetByNumber(context.Background(), order.Number)
	if err != nil {
		t.Fatalf("get stored order: %v", err)
	}
	if got.CustomerEmail != order.CustomerEmail || got.Status != domain.OrderStatusPending {
		t.Fatalf("unexpected stored order: %+v", got)
	}
	if len(got.Lines) != 1 || got.Lines[0].Qty != 2 {
		t.Fatalf("unexpected stored lines: %+v", got.Lines)
	}
	if !got.TotalAmount.Equal(order.TotalAmount) {
		t.Fatalf("unexpected total: got=%s want=%s", got.TotalAmount, order.TotalAmount)
	}
}

func TestCheckoutStore_PostgresRollbackOnError(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	insertProductForIntegrationTest(t, store, sampleProduct("prod-1", "49.99", 10))

	checkout := NewCheckoutStore(store)
	wantErr := errors.New("forced failure")

	err := checkout.WithinTx(context.Background(), func(tx domain.CheckoutTx) error {
		if err := tx.Reserve(context.Background(), "prod-1", 4); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected forced failure, got %v", err)
	}

	if stock := productStockForIntegrationTest(t, store, "prod-1"); stock != 10 {
		t.Fatalf("reserve must be rolled back: got=%d want=10", stock)
	}
}

func TestCheckoutStore_PostgresReserveInsufficientStock(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	insertProductForIntegrationTest(t, store, sampleProduct("prod-1", "49.99", 5))

	checkout := NewCheckoutStore(store)
	err := checkout.WithinTx(context.Background(), func(tx domain.CheckoutTx) error {
		return tx.Reserve(context.Background(), "prod-1", 10)
	})

	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ProductID != "prod-1" || stockErr.Requested != 10 || stockErr.Available != 5 {
		t.Fatalf("unexpected stock error payload: %+v", stockErr)
	}

	if stock := productStockForIntegrationTest(t, store, "prod-1"); stock != 5 {
		t.Fatalf("stock must stay intact: got=%d want=5", stock)
	}
}

func TestCheckoutStore_PostgresReserveMissingProduct(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)

	checkout := NewCheckoutStore(store)
	err := checkout.WithinTx(context.Background(), func(tx domain.CheckoutTx) error {
		return tx.Reserve(context.Background(), "no-such-product", 1)
	})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCheckoutStore_PostgresNumberConflict(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)

	now := time.Now().UTC().Round(time.Microsecond)
	first := sampleStoredOrder("ORD-SAMENUM1", now)
	insertOrderForIntegrationTest(t, store, first)

	duplicate := sampleStoredOrder("ORD-SAMENUM1", now)
	duplicate.ID = "order-other-id"
	duplicate.Lines[0].ID = "order-other-line"

	checkout := NewCheckoutStore(store)
	err := checkout.WithinTx(context.Background(), func(tx domain.CheckoutTx) error {
		return tx.InsertOrder(context.Background(), duplicate)
	})
	if !errors.Is(err, domain.ErrOrderNumberConflict) {
		t.Fatalf("expected ErrOrderNumberConflict, got %v", err)
	}
}

func TestCheckoutStore_PostgresConcurrentLastUnit(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	insertProductForIntegrationTest(t, store, sampleProduct("prod-last", "19.99", 1))

	checkout := NewCheckoutStore(store)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- checkout.WithinTx(context.Background(), func(tx domain.CheckoutTx) error {
				return tx.Reserve(context.Background(), "prod-last", 1)
			})
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, failed int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr *domain.InsufficientStockError
		if !errors.As(err, &stockErr) {
			t.Fatalf("unexpected concurrent reserve error: %v", err)
		}
		failed++
	}
	if succeeded != 1 || failed != 1 {
		t.Fatalf("expected exactly one winner: succeeded=%d failed=%d", succeeded, failed)
	}

	if stock := productStockForIntegrationTest(t, store, "prod-last"); stock != 0 {
		t.Fatalf("unexpected final stock: got=%d want=0", stock)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("expected unique violation for code 23505")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "22001"}) {
		t.Fatal("unexpected unique violation for non-unique code")
	}
	if isUniqueViolation(errors.New("plain error")) {
		t.Fatal("plain error must not be unique violation")
	}
}
