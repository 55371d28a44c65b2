package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmikhailov/estore/internal/domain"
)

const checkoutTxTimeout = 10 * time.Second

// checkoutStore реализует транзакцию оформления заказа поверх одной
// SQL-транзакции: срезы каталога, резервы и запись заказа коммитятся
// или откатываются вместе.
type checkoutStore struct {
	db *sql.DB
}

// NewCheckoutStore создаёт PostgreSQL-реализацию CheckoutStore.
func NewCheckoutStore(store *Store) domain.CheckoutStore {
	return &checkoutStore{db: store.DB()}
}

func (s *checkoutStore) WithinTx(ctx context.Context, fn func(tx domain.CheckoutTx) error) error {
	ctx, cancel := context.WithTimeout(ctx, checkoutTxTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin checkout tx: %w", err)
	}

	if err := fn(&checkoutTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit checkout tx: %w", err)
	}
	return nil
}

type checkoutTx struct {
	tx *sql.Tx
}

// Snapshot читает согласованный срез товара одним запросом.
func (t *checkoutTx) Snapshot(ctx context.Context, productID string) (domain.ProductSnapshot, error) {
	var (
		snap  domain.ProductSnapshot
		price string
	)
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, name, price, stock_quantity, is_active
		FROM products
		WHERE id = $1
	`, productID).Scan(&snap.ID, &snap.Name, &price, &snap.Stock, &snap.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ProductSnapshot{}, domain.ErrProductNotFound
		}
		return domain.ProductSnapshot{}, fmt.Errorf("snapshot product: %w", err)
	}

	snap.Price, err = scanDecimal(price)
	if err != nil {
		return domain.ProductSnapshot{}, fmt.Errorf("snapshot product price: %w", err)
	}
	return snap, nil
}

// Reserve выполняет условный декремент остатка. Row-level lock Postgres
// сериализует конкурентные резервы одного товара; проверка идёт по числу
// затронутых строк, а не по чтению из памяти приложения.
func (t *checkoutTx) Reserve(ctx context.Context, productID string, qty int32) error {
	if qty <= 0 {
		return domain.ErrLineQtyInvalid
	}

	res, err := t.tx.ExecContext(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $2,
		    updated_at = NOW()
		WHERE id = $1
		  AND stock_quantity >= $2
	`, productID, qty)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserve stock rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Декремент не прошёл: либо товара нет, либо остатка не хватает.
	var available int32
	err = t.tx.QueryRowContext(ctx, `
		SELECT stock_quantity FROM products WHERE id = $1
	`, productID).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("read available stock: %w", err)
	}

	return &domain.InsufficientStockError{
		ProductID: productID,
		Requested: qty,
		Available: available,
	}
}

// InsertOrder записывает заказ и все позиции внутри текущей транзакции.
func (t *checkoutTx) InsertOrder(ctx context.Context, order domain.Order) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, order_number, customer_name, customer_email, status, total_amount,
			shipping_address, billing_address, payment_method, notes, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		order.ID, order.Number, order.CustomerName, order.CustomerEmail,
		string(order.Status), order.TotalAmount.StringFixed(2),
		order.ShippingAddress, order.BillingAddress, order.PaymentMethod,
		order.Notes, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderNumberConflict
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, line := range order.Lines {
		if _, err := t.tx.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, product_name, qty, unit_price, line_total, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
			line.ID, order.ID, line.ProductID, line.ProductName,
			line.Qty, line.UnitPrice.StringFixed(2), line.LineTotal.StringFixed(2),
			line.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.CheckoutStore = (*checkoutStore)(nil)
var _ domain.CheckoutTx = (*checkoutTx)(nil)
