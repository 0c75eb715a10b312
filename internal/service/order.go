package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/qrdine/api/internal/database"
	"github.com/shopspring/decimal"
)

// LineItem is one ordered dish: the name and price are frozen at order
// time, so later menu edits never change what the table owes.
type LineItem struct {
	Name     string
	Price    decimal.Decimal
	Quantity int32
}

// Subtotal is always derived, never stored.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt32(li.Quantity))
}

// Order is the domain view the pure computations operate on.
type Order struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Table        string
	Status       string
	CreatedAt    time.Time
	ServedAt     *time.Time
	Items        []LineItem
}

// Total is the order value, summing price times quantity over its items.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range o.Items {
		total = total.Add(li.Subtotal())
	}
	return total
}

// Size is the total item quantity of the order.
func (o Order) Size() int64 {
	var n int64
	for _, li := range o.Items {
		n += int64(li.Quantity)
	}
	return n
}

// PrepTime is the recorded preparation duration, or false when the
// order was never marked served.
func (o Order) PrepTime() (time.Duration, bool) {
	if o.ServedAt == nil {
		return 0, false
	}
	return o.ServedAt.Sub(o.CreatedAt), true
}

// MenuItem is the slice of the menu the core reads: enough to price
// nothing (prices live on orders) and categorize everything.
type MenuItem struct {
	Name     string
	Category string
	Price    decimal.Decimal
}

// --- Row mapping ---

// OrderFromRows builds the domain view from an order row and its items.
// Items must already be in position order.
func OrderFromRows(o database.Order, items []database.OrderItem) Order {
	order := Order{
		ID:           o.ID,
		RestaurantID: o.RestaurantID,
		Table:        o.TableID,
		Status:       o.Status,
		CreatedAt:    o.CreatedAt,
	}
	if o.ServedAt.Valid {
		t := o.ServedAt.Time
		order.ServedAt = &t
	}
	order.Items = make([]LineItem, len(items))
	for i, it := range items {
		order.Items[i] = LineItem{
			Name:     it.Name,
			Price:    NumericToDecimal(it.UnitPrice),
			Quantity: it.Quantity,
		}
	}
	return order
}

// OrdersFromRows assembles domain orders from rows plus a flat item
// batch (as returned by ListOrderItemsByOrderIDs). Row order is kept.
func OrdersFromRows(rows []database.Order, items []database.OrderItem) []Order {
	byOrder := make(map[uuid.UUID][]database.OrderItem, len(rows))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	orders := make([]Order, len(rows))
	for i, row := range rows {
		orders[i] = OrderFromRows(row, byOrder[row.ID])
	}
	return orders
}

func MenuItemFromRow(m database.MenuItem) MenuItem {
	return MenuItem{
		Name:     m.Name,
		Category: m.Category,
		Price:    NumericToDecimal(m.Price),
	}
}

func MenuItemsFromRows(rows []database.MenuItem) []MenuItem {
	items := make([]MenuItem, len(rows))
	for i, row := range rows {
		items[i] = MenuItemFromRow(row)
	}
	return items
}

func NumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func DecimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
