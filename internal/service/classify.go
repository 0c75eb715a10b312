package service

import (
	"sort"
	"strings"

	"github.com/qrdine/api/internal/enum"
)

// TableClassification splits one table's open orders into the main
// order the kitchen works first and the add-ons placed after it.
type TableClassification struct {
	Table  string
	Main   *Order
	AddOns []Order
}

// ClassifyTable partitions a table's open (non-PAID) orders.
//
// The main order is the earliest-created order with status PLACED or
// SERVED; identical timestamps are broken by the smaller id string so
// the result is deterministic. Add-ons are every other PLACED order;
// an already-served order is not actionable again until paid, so it
// never reappears as an add-on.
func ClassifyTable(open []Order) TableClassification {
	var c TableClassification
	if len(open) == 0 {
		return c
	}
	c.Table = open[0].Table

	for i := range open {
		o := &open[i]
		switch o.Status {
		case enum.OrderStatusPlaced, enum.OrderStatusServed:
		default:
			continue
		}
		if c.Main == nil || earlier(*o, *c.Main) {
			c.Main = o
		}
	}
	if c.Main == nil {
		return c
	}

	for i := range open {
		o := open[i]
		if o.ID == c.Main.ID {
			continue
		}
		if o.Status == enum.OrderStatusPlaced {
			c.AddOns = append(c.AddOns, o)
		}
	}
	return c
}

// BuildKitchenQueue classifies every table with open orders, sorted by
// table identifier for a stable kitchen view.
func BuildKitchenQueue(open []Order) []TableClassification {
	byTable := make(map[string][]Order)
	var tables []string
	for _, o := range open {
		if _, seen := byTable[o.Table]; !seen {
			tables = append(tables, o.Table)
		}
		byTable[o.Table] = append(byTable[o.Table], o)
	}
	sort.Strings(tables)

	queue := make([]TableClassification, 0, len(tables))
	for _, table := range tables {
		queue = append(queue, ClassifyTable(byTable[table]))
	}
	return queue
}

func earlier(a, b Order) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return strings.Compare(a.ID.String(), b.ID.String()) < 0
}
