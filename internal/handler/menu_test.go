package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/qrdine/api/internal/database"
	"github.com/qrdine/api/internal/handler"
	"github.com/qrdine/api/internal/middleware"
)

func setupMenuRouter(store handler.MenuStore) *chi.Mux {
	h := handler.NewMenuHandler(store)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/restaurants/{rid}", func(r chi.Router) {
		r.Use(middleware.RequireRestaurant)
		r.Route("/menu", h.RegisterRoutes)
	})
	return r
}

func TestMenuCreate_HappyPath(t *testing.T) {
	restaurantID := uuid.New()
	claims := testClaims(restaurantID)

	store := &mockStore{
		createMenuItemFn: func(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error) {
			if arg.Name != "Paneer Tikka" || arg.Category != "Starters" {
				t.Errorf("unexpected params: %+v", arg)
			}
			if !arg.SpiceLevel.Valid || arg.SpiceLevel.String != "MEDIUM" {
				t.Errorf("expected spice level MEDIUM, got %+v", arg.SpiceLevel)
			}
			if arg.Description.Valid {
				t.Errorf("expected null description, got %+v", arg.Description)
			}
			return database.MenuItem{
				ID:           uuid.New(),
				RestaurantID: arg.RestaurantID,
				Name:         arg.Name,
				Category:     arg.Category,
				Price:        arg.Price,
				Veg:          arg.Veg,
				SpiceLevel:   arg.SpiceLevel,
				CreatedAt:    time.Now(),
			}, nil
		},
	}
	router := setupMenuRouter(store)

	body := map[string]interface{}{
		"name":        "Paneer Tikka",
		"category":    "Starters",
		"price":       "180.50",
		"veg":         true,
		"spice_level": "MEDIUM",
	}
	rr := doAuthRequest(t, router, http.MethodPost,
		"/restaurants/"+restaurantID.String()+"/menu/items", body, claims)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeJSON(t, rr)
	if resp["price"] != "180.50" {
		t.Errorf("expected price 180.50, got %v", resp["price"])
	}
	if resp["veg"] != true {
		t.Errorf("expected veg item, got %v", resp["veg"])
	}
	if resp["description"] != nil {
		t.Errorf("expected null description, got %v", resp["description"])
	}
}

func TestMenuCreate_Validation(t *testing.T) {
	restaurantID := uuid.New()
	claims := testClaims(restaurantID)
	router := setupMenuRouter(&mockStore{})

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing name", map[string]interface{}{"price": "10"}},
		{"bad price", map[string]interface{}{"name": "Tea", "price": "abc"}},
		{"negative price", map[string]interface{}{"name": "Tea", "price": "-5"}},
		{"bad spice level", map[string]interface{}{"name": "Tea", "price": "10", "spice_level": "NUCLEAR"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := doAuthRequest(t, router, http.MethodPost,
				"/restaurants/"+restaurantID.String()+"/menu/items", tc.body, claims)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestMenuList(t *testing.T) {
	restaurantID := uuid.New()
	claims := testClaims(restaurantID)

	store := &mockStore{
		listMenuItemsFn: func(ctx context.Context, rid uuid.UUID) ([]database.MenuItem, error) {
			if rid != restaurantID {
				t.Errorf("expected restaurant %v, got %v", restaurantID, rid)
			}
			return []database.MenuItem{
				{
					ID:           uuid.New(),
					RestaurantID: rid,
					Name:         "Coke",
					Category:     "Beverages",
					Price:        testNumeric("50.00"),
					SpiceLevel:   pgtype.Text{},
					CreatedAt:    time.Now(),
				},
			}, nil
		},
	}
	router := setupMenuRouter(store)

	rr := doAuthRequest(t, router, http.MethodGet,
		"/restaurants/"+restaurantID.String()+"/menu/items", nil, claims)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeJSON(t, rr)
	items := resp["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0].(map[string]interface{})
	if item["name"] != "Coke" || item["price"] != "50.00" {
		t.Errorf("unexpected item: %v", item)
	}
	if item["spice_level"] != nil {
		t.Errorf("expected null spice level, got %v", item["spice_level"])
	}
}
