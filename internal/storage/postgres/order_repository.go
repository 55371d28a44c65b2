package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmikhailov/estore/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
// Создание заказов сюда не входит: оно идёт только через CheckoutStore.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

const orderColumns = `id, order_number, customer_name, customer_email, status, total_amount,
	shipping_address, billing_address, payment_method, notes, created_at, updated_at`

func (r *orderRepository) GetByID(ctx context.Context, id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id)
	return r.scanOrderWithLines(ctx, row)
}

func (r *orderRepository) GetByNumber(ctx context.Context, number string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE order_number = $1
	`, number)
	return r.scanOrderWithLines(ctx, row)
}

func (r *orderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int, error) {
	filter.Normalize()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	where, args := buildOrderWhere(filter)

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, orderColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		lines, err := r.loadLines(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Lines = lines
	}

	return orders, total, nil
}

// UpdateStatus меняет статус заказа по номеру. Легальность ограничена
// принадлежностью множеству статусов; произвольные переходы допустимы.
func (r *orderRepository) UpdateStatus(ctx context.Context, number string, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, domain.ErrStatusUnknown
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
		    updated_at = NOW()
		WHERE order_number = $2
	`, string(status), number)
	if err != nil {
		return domain.Order{}, fmt.Errorf("update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Order{}, fmt.Errorf("update status rows affected: %w", err)
	}
	if affected == 0 {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	return r.GetByNumber(ctx, number)
}

func (r *orderRepository) scanOrderWithLines(ctx context.Context, row rowScanner) (domain.Order, error) {
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	lines, err := r.loadLines(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Lines = lines
	return order, nil
}

func (r *orderRepository) loadLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, qty, unit_price, line_total, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0)
	for rows.Next() {
		var (
			line      domain.OrderLine
			unitPrice string
			lineTotal string
		)
		if err := rows.Scan(
			&line.ID, &line.OrderID, &line.ProductID, &line.ProductName,
			&line.Qty, &unitPrice, &lineTotal, &line.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		if line.UnitPrice, err = scanDecimal(unitPrice); err != nil {
			return nil, fmt.Errorf("order line unit price: %w", err)
		}
		if line.LineTotal, err = scanDecimal(lineTotal); err != nil {
			return nil, fmt.Errorf("order line total: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}

	return lines, nil
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order  domain.Order
		status string
		total  string
	)
	if err := row.Scan(
		&order.ID, &order.Number, &order.CustomerName, &order.CustomerEmail,
		&status, &total, &order.ShippingAddress, &order.BillingAddress,
		&order.PaymentMethod, &order.Notes, &order.CreatedAt, &order.UpdatedAt,
	); err != nil {
		return domain.Order{}, err
	}

	order.Status = domain.OrderStatus(status)
	parsed, err := scanDecimal(total)
	if err != nil {
		return domain.Order{}, err
	}
	order.TotalAmount = parsed
	return order, nil
}

// buildOrderWhere собирает WHERE по фильтрам списка заказов.
func buildOrderWhere(filter domain.OrderFilter) (string, []any) {
	conds := make([]string, 0, 4)
	args := make([]any, 0, 4)

	if filter.CustomerEmail != "" {
		args = append(args, "%"+filter.CustomerEmail+"%")
		conds = append(conds, fmt.Sprintf("customer_email ILIKE $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

var _ domain.OrderRepository = (*orderRepository)(nil)
