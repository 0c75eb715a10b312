package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/qrdine/api/internal/database"
	"github.com/qrdine/api/internal/enum"
	"github.com/qrdine/api/internal/service"
)

// ReportStore defines the database methods the dashboard needs.
// Satisfied by *database.Queries; narrow interface for testability.
type ReportStore interface {
	OrderReader
	ListMenuItems(ctx context.Context, restaurantID uuid.UUID) ([]database.MenuItem, error)
}

// ReportCacher stores rendered dashboard payloads. Satisfied by
// *cache.ReportCache; a nil implementation disables caching.
type ReportCacher interface {
	Get(ctx context.Context, restaurantID uuid.UUID, topN int) []byte
	Set(ctx context.Context, restaurantID uuid.UUID, topN int, payload []byte)
}

// ReportHandler serves the paid-order analytics dashboard.
type ReportHandler struct {
	store ReportStore
	cache ReportCacher
}

func NewReportHandler(store ReportStore, cache ReportCacher) *ReportHandler {
	return &ReportHandler{store: store, cache: cache}
}

type dayRevenueResponse struct {
	Day     string `json:"day"`
	Revenue string `json:"revenue"`
}

type hourRevenueResponse struct {
	Hour    int    `json:"hour"`
	Revenue string `json:"revenue"`
}

type itemCountResponse struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

type comboCountResponse struct {
	Combo string `json:"combo"`
	Count int    `json:"count"`
}

type reportResponse struct {
	TodaySales      string                `json:"today_sales"`
	WeekSales       string                `json:"week_sales"`
	MonthSales      string                `json:"month_sales"`
	NumOrders       int                   `json:"num_orders"`
	AvgOrderValue   string                `json:"avg_order_value"`
	AvgOrderSize    float64               `json:"avg_order_size"`
	AvgPrepMinutes  float64               `json:"avg_prep_minutes"`
	ActiveTables    int                   `json:"active_tables"`
	PeakHour        *int                  `json:"peak_hour"`
	SalesByDay      []dayRevenueResponse  `json:"sales_by_day"`
	SalesByHour     []hourRevenueResponse `json:"sales_by_hour"`
	CategoryRevenue map[string]string     `json:"category_revenue"`
	TopItems        []itemCountResponse   `json:"top_items"`
	LeastItems      []itemCountResponse   `json:"least_items"`
	TopCombos       []comboCountResponse  `json:"top_combos"`
}

// Dashboard handles GET /restaurants/{rid}/reports/dashboard.
//
// Query params: top bounds the item/combo rankings (default 5); ref
// pins the reference instant (RFC 3339 or YYYY-MM-DD) for reproducible
// historical views. Only the live view (no ref) is served from cache.
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	topN := service.DefaultTopN
	if s := r.URL.Query().Get("top"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid top parameter"})
			return
		}
		topN = v
	}

	ref := time.Now()
	cacheable := true
	if s := r.URL.Query().Get("ref"); s != "" {
		t, err := parseRef(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ref format, use RFC 3339 or YYYY-MM-DD"})
			return
		}
		ref = t
		cacheable = false
	}

	if cacheable && h.cache != nil {
		if payload := h.cache.Get(r.Context(), restaurantID, topN); payload != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(payload)
			return
		}
	}

	paid, err := loadOrders(r.Context(), h.store, database.ListOrdersParams{
		RestaurantID: restaurantID,
		Statuses:     []string{enum.OrderStatusPaid},
	})
	if err != nil {
		writeServiceError(w, "report orders", err)
		return
	}

	menuRows, err := h.store.ListMenuItems(r.Context(), restaurantID)
	if err != nil {
		writeServiceError(w, "report menu", err)
		return
	}
	idx := service.BuildCategoryIndex(service.MenuItemsFromRows(menuRows))

	bundle := service.ComputeReport(paid, idx, ref, topN)
	resp := toReportResponse(bundle)

	if cacheable && h.cache != nil {
		if payload, err := json.Marshal(resp); err == nil {
			h.cache.Set(r.Context(), restaurantID, topN, payload)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func parseRef(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func toReportResponse(b service.ReportBundle) reportResponse {
	resp := reportResponse{
		TodaySales:      b.TodaySales.StringFixed(2),
		WeekSales:       b.WeekSales.StringFixed(2),
		MonthSales:      b.MonthSales.StringFixed(2),
		NumOrders:       b.NumOrders,
		AvgOrderValue:   b.AvgOrderValue.StringFixed(2),
		AvgOrderSize:    b.AvgOrderSize,
		AvgPrepMinutes:  b.AvgPrepMinutes,
		ActiveTables:    b.ActiveTables,
		PeakHour:        b.PeakHour,
		SalesByDay:      make([]dayRevenueResponse, len(b.SalesByDay)),
		SalesByHour:     make([]hourRevenueResponse, len(b.SalesByHour)),
		CategoryRevenue: make(map[string]string, len(b.CategoryRevenue)),
		TopItems:        make([]itemCountResponse, len(b.TopItems)),
		LeastItems:      make([]itemCountResponse, len(b.LeastItems)),
		TopCombos:       make([]comboCountResponse, len(b.TopCombos)),
	}
	for i, d := range b.SalesByDay {
		resp.SalesByDay[i] = dayRevenueResponse{Day: d.Day, Revenue: d.Revenue.StringFixed(2)}
	}
	for i, hr := range b.SalesByHour {
		resp.SalesByHour[i] = hourRevenueResponse{Hour: hr.Hour, Revenue: hr.Revenue.StringFixed(2)}
	}
	for cat, rev := range b.CategoryRevenue {
		resp.CategoryRevenue[cat] = rev.StringFixed(2)
	}
	for i, it := range b.TopItems {
		resp.TopItems[i] = itemCountResponse{Name: it.Name, Quantity: it.Quantity}
	}
	for i, it := range b.LeastItems {
		resp.LeastItems[i] = itemCountResponse{Name: it.Name, Quantity: it.Quantity}
	}
	for i, c := range b.TopCombos {
		resp.TopCombos[i] = comboCountResponse{Combo: c.Combo, Count: c.Count}
	}
	return resp
}
