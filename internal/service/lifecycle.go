package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/qrdine/api/internal/database"
	"github.com/qrdine/api/internal/enum"
)

// DB is the connection surface the lifecycle manager requires:
// plain query execution plus transactions. *pgxpool.Pool satisfies it.
type DB interface {
	database.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods the lifecycle manager needs.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	DeleteOrderItems(ctx context.Context, orderID uuid.UUID) error
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx), so the
// service can run multi-statement operations in one transaction.
type NewOrderStore func(db database.DBTX) OrderStore

// EventPublisher receives fire-and-forget notifications after a
// successful store write. Delivery is at-most-once and best-effort; a
// missed event heals on the next full-refresh poll.
type EventPublisher interface {
	OrderCreated(restaurantID uuid.UUID, order Order)
}

// ReportInvalidator drops cached report bundles for a restaurant.
// Called whenever an order reaches PAID, since only paid orders feed
// the analytics.
type ReportInvalidator interface {
	Invalidate(ctx context.Context, restaurantID uuid.UUID)
}

// SubmitOrderRequest is the validated input for a new order.
type SubmitOrderRequest struct {
	RestaurantID uuid.UUID
	Table        string
	Items        []LineItem
}

// AdvanceResult is the per-order outcome of a batch transition. A
// failing order never blocks the rest of the batch.
type AdvanceResult struct {
	OrderID uuid.UUID
	Order   *Order
	Err     error
}

// LifecycleService is the sole mutator of order state: it validates
// submissions, applies forward-only status transitions, and amends the
// items of open orders.
type LifecycleService struct {
	pool     DB
	newStore NewOrderStore
	events   EventPublisher    // optional
	reports  ReportInvalidator // optional
}

func NewLifecycleService(pool DB, newStore NewOrderStore, events EventPublisher, reports ReportInvalidator) *LifecycleService {
	return &LifecycleService{pool: pool, newStore: newStore, events: events, reports: reports}
}

// Submit creates a new PLACED order and broadcasts it to subscribed
// kitchen/management views after the write commits.
func (s *LifecycleService) Submit(ctx context.Context, req SubmitOrderRequest) (Order, error) {
	if strings.TrimSpace(req.Table) == "" {
		return Order{}, ErrMissingTable
	}
	if err := validateItems(req.Items); err != nil {
		return Order{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	row, err := store.CreateOrder(ctx, database.CreateOrderParams{
		RestaurantID: req.RestaurantID,
		TableID:      req.Table,
		Status:       enum.OrderStatusPlaced,
	})
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}

	itemRows, err := insertItems(ctx, store, row.ID, req.Items)
	if err != nil {
		return Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, fmt.Errorf("commit tx: %w", err)
	}

	order := OrderFromRows(row, itemRows)
	if s.events != nil {
		s.events.OrderCreated(req.RestaurantID, order)
	}
	return order, nil
}

// Advance moves one order forward on the status lattice. The write is a
// single conditional update, so a concurrent transition on the same
// order surfaces here as ErrInvalidTransition rather than a lost
// update.
func (s *LifecycleService) Advance(ctx context.Context, restaurantID, orderID uuid.UUID, target string) (Order, error) {
	if !enum.IsValidOrderStatus(target) {
		return Order{}, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}

	store := s.newStore(s.pool)

	current, err := store.GetOrder(ctx, database.GetOrderParams{ID: orderID, RestaurantID: restaurantID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, fmt.Errorf("get order: %w", err)
	}

	if !enum.CanTransition(current.Status, target) {
		return Order{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, target)
	}

	row, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:           orderID,
		RestaurantID: restaurantID,
		Status:       target,
		FromStatuses: []string{current.Status},
		MarkServed:   target == enum.OrderStatusServed,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Raced with another transition between read and write.
			return Order{}, fmt.Errorf("%w: order status changed concurrently", ErrInvalidTransition)
		}
		return Order{}, fmt.Errorf("update order status: %w", err)
	}

	itemRows, err := store.ListOrderItemsByOrder(ctx, orderID)
	if err != nil {
		return Order{}, fmt.Errorf("list order items: %w", err)
	}

	if target == enum.OrderStatusPaid && s.reports != nil {
		s.reports.Invalidate(ctx, restaurantID)
	}
	return OrderFromRows(row, itemRows), nil
}

// AdvanceBatch applies one target status to many orders, validating
// each independently and reporting a per-order outcome: settling a
// whole table must not be blocked by one stale order in the set.
func (s *LifecycleService) AdvanceBatch(ctx context.Context, restaurantID uuid.UUID, orderIDs []uuid.UUID, target string) []AdvanceResult {
	results := make([]AdvanceResult, len(orderIDs))
	for i, id := range orderIDs {
		order, err := s.Advance(ctx, restaurantID, id, target)
		results[i] = AdvanceResult{OrderID: id, Err: err}
		if err == nil {
			results[i].Order = &order
		}
	}
	return results
}

// Amend replaces the item list of an order that has not been paid.
func (s *LifecycleService) Amend(ctx context.Context, restaurantID, orderID uuid.UUID, items []LineItem) (Order, error) {
	if err := validateItems(items); err != nil {
		return Order{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	row, err := store.GetOrder(ctx, database.GetOrderParams{ID: orderID, RestaurantID: restaurantID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	if row.Status == enum.OrderStatusPaid {
		return Order{}, ErrOrderPaid
	}

	if err := store.DeleteOrderItems(ctx, orderID); err != nil {
		return Order{}, fmt.Errorf("delete order items: %w", err)
	}
	itemRows, err := insertItems(ctx, store, orderID, items)
	if err != nil {
		return Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return OrderFromRows(row, itemRows), nil
}

// --- Helpers ---

func validateItems(items []LineItem) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	for i, li := range items {
		if strings.TrimSpace(li.Name) == "" {
			return fmt.Errorf("items[%d]: %w", i, ErrMissingItemName)
		}
		if li.Quantity <= 0 {
			return fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
		if li.Price.IsNegative() {
			return fmt.Errorf("items[%d]: %w", i, ErrInvalidPrice)
		}
	}
	return nil
}

func insertItems(ctx context.Context, store OrderStore, orderID uuid.UUID, items []LineItem) ([]database.OrderItem, error) {
	rows := make([]database.OrderItem, len(items))
	for i, li := range items {
		row, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:   orderID,
			Name:      li.Name,
			UnitPrice: DecimalToNumeric(li.Price),
			Quantity:  li.Quantity,
			Position:  int32(i),
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		rows[i] = row
	}
	return rows, nil
}
