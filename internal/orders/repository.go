package orders

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bazaarlabs/orderhub/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, user_id, customer_name, customer_email, customer_phone,
		       addr_name, addr_street, addr_state, addr_pincode, addr_phone,
		       payment_method, subtotal, shipping_fee, total, status,
		       courier_name, tracking_id, tracking_url, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...any) error }, order *domain.Order) error {
	return row.Scan(&order.ID, &order.UserID, &order.CustomerName, &order.CustomerEmail, &order.CustomerPhone,
		&order.Address.Name, &order.Address.Street, &order.Address.State, &order.Address.Pincode, &order.Address.Phone,
		&order.PaymentMethod, &order.Subtotal, &order.ShippingFee, &order.Total, &order.Status,
		&order.Courier.Name, &order.Courier.TrackingID, &order.Courier.TrackingURL, &order.CreatedAt, &order.UpdatedAt)
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	order.ID = uuid.New().String()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, customer_name, customer_email, customer_phone,
			addr_name, addr_street, addr_state, addr_pincode, addr_phone,
			payment_method, subtotal, shipping_fee, total, status,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
	`, order.ID, order.UserID, order.CustomerName, order.CustomerEmail, order.CustomerPhone,
		order.Address.Name, order.Address.Street, order.Address.State, order.Address.Pincode, order.Address.Phone,
		order.PaymentMethod, order.Subtotal, order.ShippingFee, order.Total, order.Status,
		order.CreatedAt)
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, store_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New().String(), order.ID, item.ProductID, item.StoreID, item.Quantity, item.UnitPrice)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{}

	err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id), order)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, store_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.StoreID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

type ListFilter struct {
	StoreID string
	Limit   int
	Offset  int
}

func (r *OrderRepository) List(ctx context.Context, filter ListFilter) ([]domain.Order, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var rows *sql.Rows
	var err error
	if filter.StoreID != "" {
		rows, err = r.db.QueryContext(ctx, `
			SELECT `+orderColumns+`
			FROM orders
			WHERE id IN (SELECT order_id FROM order_items WHERE store_id = $1)
			ORDER BY created_at DESC LIMIT $2 OFFSET $3
		`, filter.StoreID, limit, filter.Offset)
	} else {
		rows, err = r.db.QueryContext(ctx, `
			SELECT `+orderColumns+`
			FROM orders
			ORDER BY created_at DESC LIMIT $1 OFFSET $2
		`, limit, filter.Offset)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		var order domain.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, err
		}
		order.Items = []domain.OrderItem{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, store_id, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1)
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.StoreID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		order := orderMap[orderID]
		order.Items = append(order.Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}

// UpdateStatus performs a compare-and-swap on the status column. It returns
// false when the order no longer holds the expected status, so two staff
// members updating the same order concurrently cannot silently overwrite
// each other's transition.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`, to, at, id, from)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *OrderRepository) SetCourier(ctx context.Context, id string, courier domain.Courier, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET courier_name = $1, tracking_id = $2, tracking_url = $3, updated_at = $4
		WHERE id = $5
	`, courier.Name, courier.TrackingID, courier.TrackingURL, at, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}
