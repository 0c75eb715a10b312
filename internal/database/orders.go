package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, restaurant_id, table_id, status, created_at, served_at`

type CreateOrderParams struct {
	RestaurantID uuid.UUID
	TableID      string
	Status       string
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO orders (id, restaurant_id, table_id, status, created_at)
		VALUES (gen_random_uuid(), $1, $2, $3, now())
		RETURNING `+orderColumns,
		arg.RestaurantID, arg.TableID, arg.Status,
	)
	return scanOrder(row)
}

type CreateOrderItemParams struct {
	OrderID   uuid.UUID
	Name      string
	UnitPrice pgtype.Numeric
	Quantity  int32
	Position  int32
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO order_items (order_id, name, unit_price, quantity, position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, order_id, name, unit_price, quantity, position`,
		arg.OrderID, arg.Name, arg.UnitPrice, arg.Quantity, arg.Position,
	)
	var i OrderItem
	err := row.Scan(&i.ID, &i.OrderID, &i.Name, &i.UnitPrice, &i.Quantity, &i.Position)
	return i, err
}

type GetOrderParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) GetOrder(ctx context.Context, arg GetOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1 AND restaurant_id = $2`,
		arg.ID, arg.RestaurantID,
	)
	return scanOrder(row)
}

type ListOrdersParams struct {
	RestaurantID uuid.UUID
	// Statuses filters to the given statuses; empty means all.
	Statuses []string
	// TableID filters to one table when valid.
	TableID pgtype.Text
}

// ListOrders returns orders in creation order (id breaks created_at ties
// so the ordering is total).
func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE restaurant_id = $1
		  AND (cardinality($2::text[]) = 0 OR status = ANY($2))
		  AND ($3::text IS NULL OR table_id = $3)
		ORDER BY created_at, id`,
		arg.RestaurantID, arg.Statuses, arg.TableID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	return q.listItems(ctx, []uuid.UUID{orderID})
}

// ListOrderItemsByOrderIDs fetches items for a batch of orders in one
// round trip, ordered by (order_id, position).
func (q *Queries) ListOrderItemsByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) ([]OrderItem, error) {
	return q.listItems(ctx, orderIDs)
}

func (q *Queries) listItems(ctx context.Context, orderIDs []uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, order_id, name, unit_price, quantity, position
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`,
		orderIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(&i.ID, &i.OrderID, &i.Name, &i.UnitPrice, &i.Quantity, &i.Position); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

type UpdateOrderStatusParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Status       string
	// FromStatuses guards against concurrent transitions: the update
	// applies only while the current status is still in this set.
	FromStatuses []string
	// MarkServed stamps served_at on the first PLACED→SERVED move.
	MarkServed bool
}

// UpdateOrderStatus performs the conditional forward transition as a
// single atomic write. pgx.ErrNoRows means the order is missing or its
// status changed underneath the caller.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders
		SET status = $3,
		    served_at = CASE WHEN $4 AND served_at IS NULL THEN now() ELSE served_at END
		WHERE id = $1 AND restaurant_id = $2 AND status = ANY($5)
		RETURNING `+orderColumns,
		arg.ID, arg.RestaurantID, arg.Status, arg.MarkServed, arg.FromStatuses,
	)
	return scanOrder(row)
}

func (q *Queries) DeleteOrderItems(ctx context.Context, orderID uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.RestaurantID, &o.TableID, &o.Status, &o.CreatedAt, &o.ServedAt)
	return o, err
}
