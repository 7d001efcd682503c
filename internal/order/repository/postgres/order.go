package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/order/domain"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/order/repository"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/database"
	apperrors "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const insertOrderQuery = `
	INSERT INTO orders (id, user_id, status, items_amount, tax_amount, shipping_amount, total_amount, currency, shipping_address, payment_method, is_paid, canceled_reason, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

// Items carry an explicit position so reads replay the line order the
// customer saw at checkout.
const insertOrderItemQuery = `
	INSERT INTO order_items (id, order_id, product_id, variant_id, name, unit_price, sale_price, quantity, position)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// Create inserts a new order and its items atomically within a transaction.
// On any failure nothing is committed.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateOrder", insertOrderQuery)
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var shippingJSON []byte
	if o.ShippingAddress != nil {
		shippingJSON, err = json.Marshal(o.ShippingAddress)
		if err != nil {
			return fmt.Errorf("marshal shipping address: %w", err)
		}
	}

	_, err = tx.Exec(ctx, insertOrderQuery,
		o.ID,
		o.UserID,
		o.Status,
		o.ItemsAmount,
		o.TaxAmount,
		o.ShippingAmount,
		o.TotalAmount,
		o.Currency,
		shippingJSON,
		o.PaymentMethod,
		o.IsPaid,
		o.CanceledReason,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, item := range o.Items {
		_, err = tx.Exec(ctx, insertOrderItemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.VariantID,
			item.Name,
			item.UnitPrice,
			item.SalePrice,
			item.Quantity,
			i,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

const orderColumns = `id, user_id, status, items_amount, tax_amount, shipping_amount, total_amount, currency, shipping_address, payment_method, is_paid, paid_at, payment_ref, canceled_reason, created_at, updated_at`

const orderItemColumns = `id, order_id, product_id, variant_id, name, unit_price, sale_price, quantity`

// GetByID retrieves an order by its ID, eagerly loading its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (o *domain.Order, err error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetOrder", query)
	defer func() { end(err) }()

	var (
		order        domain.Order
		shippingJSON []byte
	)

	err = r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.ItemsAmount,
		&order.TaxAmount,
		&order.ShippingAmount,
		&order.TotalAmount,
		&order.Currency,
		&shippingJSON,
		&order.PaymentMethod,
		&order.IsPaid,
		&order.PaidAt,
		&order.PaymentRef,
		&order.CanceledReason,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if len(shippingJSON) > 0 && string(shippingJSON) != "null" {
		var addr domain.Address
		if err = json.Unmarshal(shippingJSON, &addr); err != nil {
			return nil, fmt.Errorf("unmarshal shipping address: %w", err)
		}
		order.ShippingAddress = &addr
	}

	items, err := r.loadOrderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

// List returns orders matching the given filter with the total count. Items
// are batch-loaded to avoid per-order queries.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) (result []domain.Order, total int, err error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM orders
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	ctx, end := database.TraceQuery(ctx, "ListOrders", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var totalCount int
	orders := make([]domain.Order, 0)

	for rows.Next() {
		var (
			o            domain.Order
			shippingJSON []byte
		)

		if err = rows.Scan(
			&o.ID,
			&o.UserID,
			&o.Status,
			&o.ItemsAmount,
			&o.TaxAmount,
			&o.ShippingAmount,
			&o.TotalAmount,
			&o.Currency,
			&shippingJSON,
			&o.PaymentMethod,
			&o.IsPaid,
			&o.PaidAt,
			&o.PaymentRef,
			&o.CanceledReason,
			&o.CreatedAt,
			&o.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}

		if len(shippingJSON) > 0 && string(shippingJSON) != "null" {
			var addr domain.Address
			if err = json.Unmarshal(shippingJSON, &addr); err != nil {
				return nil, 0, fmt.Errorf("unmarshal shipping address: %w", err)
			}
			o.ShippingAddress = &addr
		}

		orders = append(orders, o)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	if len(orders) > 0 {
		orderIDs := make([]string, len(orders))
		for i := range orders {
			orderIDs[i] = orders[i].ID
		}

		itemsQuery := `
			SELECT ` + orderItemColumns + `
			FROM order_items
			WHERE order_id = ANY($1)
			ORDER BY position`

		itemRows, err := r.pool.Query(ctx, itemsQuery, orderIDs)
		if err != nil {
			return nil, 0, fmt.Errorf("batch load order items: %w", err)
		}
		defer itemRows.Close()

		itemsByOrderID := make(map[string][]domain.OrderItem, len(orders))
		for itemRows.Next() {
			var item domain.OrderItem
			if err := itemRows.Scan(
				&item.ID,
				&item.OrderID,
				&item.ProductID,
				&item.VariantID,
				&item.Name,
				&item.UnitPrice,
				&item.SalePrice,
				&item.Quantity,
			); err != nil {
				return nil, 0, fmt.Errorf("scan order item: %w", err)
			}
			itemsByOrderID[item.OrderID] = append(itemsByOrderID[item.OrderID], item)
		}
		if err := itemRows.Err(); err != nil {
			return nil, 0, fmt.Errorf("iterate batch order item rows: %w", err)
		}

		for i := range orders {
			if items, ok := itemsByOrderID[orders[i].ID]; ok {
				orders[i].Items = items
			} else {
				orders[i].Items = []domain.OrderItem{}
			}
		}
	}

	return orders, totalCount, nil
}

// UpdateStatus changes the status of an order. The reason is persisted only
// on a cancel transition; for any other transition it travels in the
// status_changed event but does not overwrite the cancel record.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status string, reason string) (err error) {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3`
	args := []any{status, time.Now().UTC(), id}

	if status == domain.OrderStatusCanceled {
		query = `
			UPDATE orders
			SET status = $1, canceled_reason = $2, updated_at = $3
			WHERE id = $4`
		args = []any{status, reason, time.Now().UTC(), id}
	}

	ctx, end := database.TraceQuery(ctx, "UpdateOrderStatus", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// MarkPaid flips is_paid for an unpaid order. The is_paid = FALSE guard makes
// a second verification of the same order hit zero rows, which is reported as
// a conflict rather than silently repeated.
func (r *OrderRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time, paymentRef string) (err error) {
	query := `
		UPDATE orders
		SET is_paid = TRUE, paid_at = $1, payment_ref = $2, updated_at = $3
		WHERE id = $4 AND is_paid = FALSE`

	ctx, end := database.TraceQuery(ctx, "MarkOrderPaid", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, paidAt, paymentRef, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}

	if ct.RowsAffected() == 0 {
		// Either the order does not exist or it is already paid.
		var exists bool
		if err = r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check order existence: %w", err)
		}
		if !exists {
			return apperrors.NotFound("order", id)
		}
		return apperrors.Conflict("order is already paid")
	}

	return nil
}

// loadOrderItems retrieves all items belonging to a given order in the
// position they were written at creation.
func (r *OrderRepository) loadOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `
		SELECT ` + orderItemColumns + `
		FROM order_items
		WHERE order_id = $1
		ORDER BY position`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.VariantID,
			&item.Name,
			&item.UnitPrice,
			&item.SalePrice,
			&item.Quantity,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item rows: %w", err)
	}

	if items == nil {
		items = []domain.OrderItem{}
	}

	return items, nil
}
