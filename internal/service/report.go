package service

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ComboSeparator joins the sorted distinct item names of an order into
// its canonical combo key.
const ComboSeparator = "+"

// DefaultTopN bounds the top/least rankings when the caller does not
// ask for a specific size.
const DefaultTopN = 5

type DayRevenue struct {
	Day     string // YYYY-MM-DD, restaurant-local
	Revenue decimal.Decimal
}

type HourRevenue struct {
	Hour    int // 0–23
	Revenue decimal.Decimal
}

type ItemCount struct {
	Name     string
	Quantity int64
}

type ComboCount struct {
	Combo string
	Count int
}

// ReportBundle is the full derived-analytics aggregate. It is computed
// fresh from the paid-order set on every request and never persisted.
type ReportBundle struct {
	TodaySales decimal.Decimal
	WeekSales  decimal.Decimal
	MonthSales decimal.Decimal

	NumOrders      int
	AvgOrderValue  decimal.Decimal
	AvgOrderSize   float64
	AvgPrepMinutes float64
	ActiveTables   int

	// PeakHour is nil when no hour bucket carries revenue.
	PeakHour *int

	SalesByDay      []DayRevenue
	SalesByHour     []HourRevenue
	CategoryRevenue map[string]decimal.Decimal

	TopItems   []ItemCount
	LeastItems []ItemCount
	TopCombos  []ComboCount
}

// ComboKey is the canonical co-occurrence key of an order: the distinct
// item names, sorted, joined with ComboSeparator. Order-independent by
// construction; a single-item order yields a degenerate one-name key.
func ComboKey(items []LineItem) string {
	seen := make(map[string]bool, len(items))
	names := make([]string, 0, len(items))
	for _, li := range items {
		if !seen[li.Name] {
			seen[li.Name] = true
			names = append(names, li.Name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ComboSeparator)
}

// ComputeReport derives the full KPI bundle from the paid-order set.
//
// It is a pure function of its inputs: the reference instant, not the
// wall clock, anchors the today/this-week/this-month windows, so two
// calls with identical inputs produce identical bundles. The week
// window starts on the Sunday of the reference instant's week. An
// empty order set yields zeroed KPIs, never an error.
func ComputeReport(paid []Order, idx CategoryIndex, ref time.Time, topN int) ReportBundle {
	if topN <= 0 {
		topN = DefaultTopN
	}
	loc := ref.Location()

	bundle := ReportBundle{
		TodaySales:      decimal.Zero,
		WeekSales:       decimal.Zero,
		MonthSales:      decimal.Zero,
		AvgOrderValue:   decimal.Zero,
		CategoryRevenue: make(map[string]decimal.Decimal),
	}

	today := dateOf(ref, loc)
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))

	dayRevenue := make(map[string]decimal.Decimal)
	var dayKeys []string
	var hourRevenue [24]decimal.Decimal

	itemQty := make(map[string]int64)
	var itemOrder []string
	comboCount := make(map[string]int)
	var comboOrder []string
	tables := make(map[string]bool)

	totalValue := decimal.Zero
	var totalSize int64
	var prepSum time.Duration
	var prepCount int

	for _, o := range paid {
		local := o.CreatedAt.In(loc)
		day := dateOf(local, loc)
		value := o.Total()

		dayKey := day.Format("2006-01-02")
		if _, seen := dayRevenue[dayKey]; !seen {
			dayKeys = append(dayKeys, dayKey)
		}
		dayRevenue[dayKey] = dayRevenue[dayKey].Add(value)
		hourRevenue[local.Hour()] = hourRevenue[local.Hour()].Add(value)

		if day.Equal(today) {
			bundle.TodaySales = bundle.TodaySales.Add(value)
		}
		if !day.Before(weekStart) && !day.After(today) {
			bundle.WeekSales = bundle.WeekSales.Add(value)
		}
		if day.Year() == today.Year() && day.Month() == today.Month() {
			bundle.MonthSales = bundle.MonthSales.Add(value)
		}

		for _, li := range o.Items {
			cat := idx.Category(li.Name)
			cur, ok := bundle.CategoryRevenue[cat]
			if !ok {
				cur = decimal.Zero
			}
			bundle.CategoryRevenue[cat] = cur.Add(li.Subtotal())

			if _, seen := itemQty[li.Name]; !seen {
				itemOrder = append(itemOrder, li.Name)
			}
			itemQty[li.Name] += int64(li.Quantity)
		}

		key := ComboKey(o.Items)
		if key != "" {
			if _, seen := comboCount[key]; !seen {
				comboOrder = append(comboOrder, key)
			}
			comboCount[key]++
		}

		tables[o.Table] = true
		totalValue = totalValue.Add(value)
		totalSize += o.Size()
		if prep, ok := o.PrepTime(); ok {
			prepSum += prep
			prepCount++
		}
	}

	bundle.NumOrders = len(paid)
	bundle.ActiveTables = len(tables)
	if len(paid) > 0 {
		bundle.AvgOrderValue = totalValue.DivRound(decimal.NewFromInt(int64(len(paid))), 2)
		bundle.AvgOrderSize = float64(totalSize) / float64(len(paid))
	}
	if prepCount > 0 {
		bundle.AvgPrepMinutes = prepSum.Minutes() / float64(prepCount)
	}

	sort.Strings(dayKeys)
	for _, day := range dayKeys {
		bundle.SalesByDay = append(bundle.SalesByDay, DayRevenue{Day: day, Revenue: dayRevenue[day]})
	}

	for hour := 0; hour < 24; hour++ {
		rev := hourRevenue[hour]
		if rev.IsZero() {
			continue
		}
		bundle.SalesByHour = append(bundle.SalesByHour, HourRevenue{Hour: hour, Revenue: rev})
		if bundle.PeakHour == nil || rev.GreaterThan(hourRevenue[*bundle.PeakHour]) {
			h := hour
			bundle.PeakHour = &h
		}
	}

	ranking := make([]ItemCount, len(itemOrder))
	for i, name := range itemOrder {
		ranking[i] = ItemCount{Name: name, Quantity: itemQty[name]}
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Quantity > ranking[j].Quantity
	})
	bundle.TopItems = headItems(ranking, topN)
	bundle.LeastItems = tailItems(ranking, topN)

	combos := make([]ComboCount, len(comboOrder))
	for i, key := range comboOrder {
		combos[i] = ComboCount{Combo: key, Count: comboCount[key]}
	}
	sort.SliceStable(combos, func(i, j int) bool {
		return combos[i].Count > combos[j].Count
	})
	if len(combos) > topN {
		combos = combos[:topN]
	}
	bundle.TopCombos = combos

	return bundle
}

func headItems(ranking []ItemCount, n int) []ItemCount {
	if len(ranking) > n {
		ranking = ranking[:n]
	}
	return append([]ItemCount(nil), ranking...)
}

func tailItems(ranking []ItemCount, n int) []ItemCount {
	if len(ranking) > n {
		ranking = ranking[len(ranking)-n:]
	}
	return append([]ItemCount(nil), ranking...)
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
