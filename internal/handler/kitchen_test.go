package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/qrdine/api/internal/database"
	"github.com/qrdine/api/internal/enum"
	"github.com/qrdine/api/internal/handler"
	"github.com/qrdine/api/internal/middleware"
)

func setupKitchenRouter(store handler.OrderReader) *chi.Mux {
	h := handler.NewKitchenHandler(store)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/restaurants/{rid}", func(r chi.Router) {
		r.Use(middleware.RequireRestaurant)
		r.Get("/kitchen/queue", h.Queue)
		r.Get("/tables/{table}/classification", h.Classify)
	})
	return r
}

func TestKitchenQueue_ClassifiesTables(t *testing.T) {
	restaurantID := uuid.New()
	claims := testClaims(restaurantID)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	mainID := uuid.New()
	addOnID := uuid.New()
	otherID := uuid.New()

	store := &mockStore{
		listOrdersFn: func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
			return []database.Order{
				{ID: addOnID, RestaurantID: restaurantID, TableID: "5", Status: enum.OrderStatusPlaced, CreatedAt: base.Add(5 * time.Minute)},
				{ID: mainID, RestaurantID: restaurantID, TableID: "5", Status: enum.OrderStatusPlaced, CreatedAt: base},
				{ID: otherID, RestaurantID: restaurantID, TableID: "2", Status: enum.OrderStatusPlaced, CreatedAt: base},
			}, nil
		},
		listOrderItemsFn: func(ctx context.Context, orderIDs []uuid.UUID) ([]database.OrderItem, error) {
			return []database.OrderItem{
				{ID: 1, OrderID: mainID, Name: "Coke", UnitPrice: testNumeric("50.00"), Quantity: 2},
				{ID: 2, OrderID: addOnID, Name: "Fries", UnitPrice: testNumeric("80.00"), Quantity: 1},
				{ID: 3, OrderID: otherID, Name: "Tea", UnitPrice: testNumeric("20.00"), Quantity: 1},
			}, nil
		},
	}
	router := setupKitchenRouter(store)

	rr := doAuthRequest(t, router, http.MethodGet,
		"/restaurants/"+restaurantID.String()+"/kitchen/queue", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeJSON(t, rr)
	tables := resp["tables"].([]interface{})
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}

	// Sorted by table identifier.
	first := tables[0].(map[string]interface{})
	if first["table"] != "2" {
		t.Errorf("expected table 2 first, got %v", first["table"])
	}

	second := tables[1].(map[string]interface{})
	if second["table"] != "5" {
		t.Fatalf("expected table 5 second, got %v", second["table"])
	}
	main := second["main"].(map[string]interface{})
	if main["id"] != mainID.String() {
		t.Errorf("expected earliest open order as main, got %v", main["id"])
	}
	addOns := second["add_ons"].([]interface{})
	if len(addOns) != 1 {
		t.Fatalf("expected 1 add-on, got %d", len(addOns))
	}
	if addOns[0].(map[string]interface{})["id"] != addOnID.String() {
		t.Errorf("expected later order as add-on, got %v", addOns[0])
	}
}

func TestClassify_EmptyTable(t *testing.T) {
	restaurantID := uuid.New()
	claims := testClaims(restaurantID)
	router := setupKitchenRouter(&mockStore{})

	rr := doAuthRequest(t, router, http.MethodGet,
		"/restaurants/"+restaurantID.String()+"/tables/7/classification", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeJSON(t, rr)
	if resp["table"] != "7" {
		t.Errorf("expected table 7, got %v", resp["table"])
	}
	if resp["main"] != nil {
		t.Errorf("expected no main order, got %v", resp["main"])
	}
}
