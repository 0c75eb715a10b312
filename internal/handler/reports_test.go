package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/qrdine/api/internal/auth"
	"github.com/qrdine/api/internal/database"
	"github.com/qrdine/api/internal/enum"
	"github.com/qrdine/api/internal/handler"
	"github.com/qrdine/api/internal/middleware"
)

type mockReportCache struct {
	getFn   func(restaurantID uuid.UUID, topN int) []byte
	setFn   func(restaurantID uuid.UUID, topN int, payload []byte)
	setData []byte
}

func (m *mockReportCache) Get(ctx context.Context, restaurantID uuid.UUID, topN int) []byte {
	if m.getFn != nil {
		return m.getFn(restaurantID, topN)
	}
	return nil
}

func (m *mockReportCache) Set(ctx context.Context, restaurantID uuid.UUID, topN int, payload []byte) {
	if m.setFn != nil {
		m.setFn(restaurantID, topN, payload)
		return
	}
	m.setData = payload
}

func setupReportRouter(store handler.ReportStore, cache handler.ReportCacher) *chi.Mux {
	h := handler.NewReportHandler(store, cache)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/restaurants/{rid}", func(r chi.Router) {
		r.Use(middleware.RequireRestaurant)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enum.UserRoleOwner, enum.UserRoleManager))
			r.Get("/reports/dashboard", h.Dashboard)
		})
	})
	return r
}

func managerClaims(restaurantID uuid.UUID) *auth.Claims {
	return &auth.Claims{
		UserID:       uuid.New(),
		RestaurantID: restaurantID,
		Role:         enum.UserRoleManager,
	}
}

// paidOrdersStore serves two paid orders from 2024-01-01 worth 200 and
// 300, plus a small menu for category attribution.
func paidOrdersStore(t *testing.T, restaurantID uuid.UUID) *mockStore {
	t.Helper()
	day := time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)
	firstID := uuid.New()
	secondID := uuid.New()
	return &mockStore{
		listOrdersFn: func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
			if len(arg.Statuses) != 1 || arg.Statuses[0] != enum.OrderStatusPaid {
				t.Errorf("expected PAID filter, got %v", arg.Statuses)
			}
			return []database.Order{
				{ID: firstID, RestaurantID: restaurantID, TableID: "1", Status: enum.OrderStatusPaid, CreatedAt: day},
				{ID: secondID, RestaurantID: restaurantID, TableID: "2", Status: enum.OrderStatusPaid, CreatedAt: day.Add(30 * time.Minute)},
			}, nil
		},
		listOrderItemsFn: func(ctx context.Context, orderIDs []uuid.UUID) ([]database.OrderItem, error) {
			return []database.OrderItem{
				{ID: 1, OrderID: firstID, Name: "Coke", UnitPrice: testNumeric("100.00"), Quantity: 2},
				{ID: 2, OrderID: secondID, Name: "Thali", UnitPrice: testNumeric("300.00"), Quantity: 1},
			}, nil
		},
		listMenuItemsFn: func(ctx context.Context, rid uuid.UUID) ([]database.MenuItem, error) {
			return []database.MenuItem{
				{ID: uuid.New(), RestaurantID: rid, Name: "Coke", Category: "Beverages", Price: testNumeric("100.00")},
			}, nil
		},
	}
}

func TestDashboard_ComputesKPIs(t *testing.T) {
	restaurantID := uuid.New()
	claims := managerClaims(restaurantID)

	router := setupReportRouter(paidOrdersStore(t, restaurantID), nil)
	rr := doAuthRequest(t, router, http.MethodGet,
		"/restaurants/"+restaurantID.String()+"/reports/dashboard?ref=2024-01-01", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeJSON(t, rr)
	if resp["today_sales"] != "500.00" {
		t.Errorf("expected today sales 500.00, got %v", resp["today_sales"])
	}
	if resp["num_orders"] != float64(2) {
		t.Errorf("expected 2 orders, got %v", resp["num_orders"])
	}
	if resp["avg_order_value"] != "250.00" {
		t.Errorf("expected avg order value 250.00, got %v", resp["avg_order_value"])
	}
	if resp["active_tables"] != float64(2) {
		t.Errorf("expected 2 active tables, got %v", resp["active_tables"])
	}

	days := resp["sales_by_day"].([]interface{})
	if len(days) != 1 {
		t.Fatalf("expected 1 day bucket, got %d", len(days))
	}
	day := days[0].(map[string]interface{})
	if day["day"] != "2024-01-01" || day["revenue"] != "500.00" {
		t.Errorf("unexpected day bucket: %v", day)
	}

	categories := resp["category_revenue"].(map[string]interface{})
	if categories["Beverages"] != "200.00" {
		t.Errorf("expected Beverages 200.00, got %v", categories["Beverages"])
	}
	if categories["Other"] != "300.00" {
		t.Errorf("expected Other 300.00, got %v", categories["Other"])
	}
}

func TestDashboard_EmptyReport(t *testing.T) {
	restaurantID := uuid.New()
	claims := managerClaims(restaurantID)

	router := setupReportRouter(&mockStore{}, nil)
	rr := doAuthRequest(t, router, http.MethodGet,
		"/restaurants/"+restaurantID.String()+"/reports/dashboard", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeJSON(t, rr)
	if resp["today_sales"] != "0.00" || resp["num_orders"] != float64(0) {
		t.Errorf("expected zero KPIs, got %v", resp)
	}
	if resp["peak_hour"] != nil {
		t.Errorf("expected no peak hour, got %v", resp["peak_hour"])
	}
}

func TestDashboard_InvalidTop(t *testing.T) {
	restaurantID := uuid.New()
	claims := managerClaims(restaurantID)
	router := setupReportRouter(&mockStore{}, nil)

	for _, top := range []string{"0", "-3", "abc"} {
		rr := doAuthRequest(t, router, http.MethodGet,
			"/restaurants/"+restaurantID.String()+"/reports/dashboard?top="+top, nil, claims)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("top=%s: expected 400, got %d", top, rr.Code)
		}
	}
}

func TestDashboard_KitchenRoleForbidden(t *testing.T) {
	restaurantID := uuid.New()
	claims := testClaims(restaurantID)
	router := setupReportRouter(&mockStore{}, nil)

	rr := doAuthRequest(t, router, http.MethodGet,
		"/restaurants/"+restaurantID.String()+"/reports/dashboard", nil, claims)

	if rr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rr.Code)
	}
}

func TestDashboard_CacheHit(t *testing.T) {
	restaurantID := uuid.New()
	claims := managerClaims(restaurantID)
	cached := []byte(`{"today_sales":"42.00"}`)

	store := &mockStore{
		listOrdersFn: func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
			t.Error("expected cache hit to skip the database")
			return nil, nil
		},
	}
	cache := &mockReportCache{
		getFn: func(rid uuid.UUID, topN int) []byte {
			if rid != restaurantID {
				t.Errorf("expected restaurant %v, got %v", restaurantID, rid)
			}
			return cached
		},
	}

	router := setupReportRouter(store, cache)
	rr := doAuthRequest(t, router, http.MethodGet,
		"/restaurants/"+restaurantID.String()+"/reports/dashboard", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Body.String() != string(cached) {
		t.Errorf("expected cached payload, got %s", rr.Body.String())
	}
}

func TestDashboard_CacheMissStoresResult(t *testing.T) {
	restaurantID := uuid.New()
	claims := managerClaims(restaurantID)
	cache := &mockReportCache{}

	router := setupReportRouter(paidOrdersStore(t, restaurantID), cache)
	rr := doAuthRequest(t, router, http.MethodGet,
		"/restaurants/"+restaurantID.String()+"/reports/dashboard", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(cache.setData) == 0 {
		t.Error("expected rendered payload to be cached")
	}
}

func TestDashboard_RefNeverCached(t *testing.T) {
	restaurantID := uuid.New()
	claims := managerClaims(restaurantID)

	cache := &mockReportCache{
		getFn: func(rid uuid.UUID, topN int) []byte {
			t.Error("expected ref view to bypass the cache")
			return nil
		},
		setFn: func(rid uuid.UUID, topN int, payload []byte) {
			t.Error("expected ref view not to be cached")
		},
	}

	router := setupReportRouter(paidOrdersStore(t, restaurantID), cache)
	rr := doAuthRequest(t, router, http.MethodGet,
		"/restaurants/"+restaurantID.String()+"/reports/dashboard?ref=2024-01-01", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
}
