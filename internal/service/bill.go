package service

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillLine is one merged line of a consolidated bill.
type BillLine struct {
	Name     string
	Price    decimal.Decimal
	Quantity int32
	Subtotal decimal.Decimal
}

// Bill is the consolidated unpaid bill for one table. SourceOrderIDs is
// the exact order set that was merged, so settling the bill transitions
// precisely those orders.
type Bill struct {
	Table          string
	Lines          []BillLine
	Total          decimal.Decimal
	SourceOrderIDs []uuid.UUID
}

// AggregateBill merges the line items of a table's unpaid orders into
// one bill. Items are grouped by name in first-seen order across the
// input (conventionally creation order); quantities are summed and the
// price is the one recorded on the first occurrence; a later menu
// price change must not retouch an open bill.
func AggregateBill(table string, unpaid []Order) Bill {
	bill := Bill{Table: table, Total: decimal.Zero}
	lineIdx := make(map[string]int)

	for _, o := range unpaid {
		bill.SourceOrderIDs = append(bill.SourceOrderIDs, o.ID)
		for _, li := range o.Items {
			if idx, ok := lineIdx[li.Name]; ok {
				bill.Lines[idx].Quantity += li.Quantity
				continue
			}
			lineIdx[li.Name] = len(bill.Lines)
			bill.Lines = append(bill.Lines, BillLine{
				Name:     li.Name,
				Price:    li.Price,
				Quantity: li.Quantity,
			})
		}
	}

	for i := range bill.Lines {
		line := &bill.Lines[i]
		line.Subtotal = line.Price.Mul(decimal.NewFromInt32(line.Quantity))
		bill.Total = bill.Total.Add(line.Subtotal)
	}
	return bill
}
