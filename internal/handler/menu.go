package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/qrdine/api/internal/database"
	"github.com/qrdine/api/internal/enum"
	"github.com/qrdine/api/internal/service"
	"github.com/shopspring/decimal"
)

// MenuStore defines the database methods needed by menu handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListMenuItems(ctx context.Context, restaurantID uuid.UUID) ([]database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
}

// MenuHandler handles menu endpoints.
type MenuHandler struct {
	store MenuStore
}

func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store}
}

func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/items", h.List)
	r.Post("/items", h.Create)
}

type createMenuItemRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	Veg         bool   `json:"veg"`
	SpiceLevel  string `json:"spice_level"`
	Description string `json:"description"`
	PhotoURL    string `json:"photo_url"`
}

type menuItemResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       string    `json:"price"`
	Veg         bool      `json:"veg"`
	SpiceLevel  *string   `json:"spice_level"`
	Description *string   `json:"description"`
	PhotoURL    *string   `json:"photo_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type menuListResponse struct {
	Items []menuItemResponse `json:"items"`
}

// List handles GET /restaurants/{rid}/menu/items.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	rows, err := h.store.ListMenuItems(r.Context(), restaurantID)
	if err != nil {
		writeServiceError(w, "list menu items", err)
		return
	}

	resp := menuListResponse{Items: make([]menuItemResponse, len(rows))}
	for i, m := range rows {
		resp.Items[i] = toMenuItemResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /restaurants/{rid}/menu/items. Names are unique
// per restaurant; posting an existing name updates the item in place.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	var req createMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}
	if req.SpiceLevel != "" && !isValidSpiceLevel(req.SpiceLevel) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid spice_level"})
		return
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		RestaurantID: restaurantID,
		Name:         req.Name,
		Category:     req.Category,
		Price:        service.DecimalToNumeric(price),
		Veg:          req.Veg,
		SpiceLevel:   textOrNull(req.SpiceLevel),
		Description:  textOrNull(req.Description),
		PhotoURL:     textOrNull(req.PhotoURL),
	})
	if err != nil {
		writeServiceError(w, "create menu item", err)
		return
	}

	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

func isValidSpiceLevel(s string) bool {
	switch s {
	case enum.SpiceLevelMild, enum.SpiceLevelMedium, enum.SpiceLevelHot:
		return true
	}
	return false
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	resp := menuItemResponse{
		ID:        m.ID,
		Name:      m.Name,
		Category:  m.Category,
		Price:     service.NumericToDecimal(m.Price).StringFixed(2),
		Veg:       m.Veg,
		CreatedAt: m.CreatedAt,
	}
	if m.SpiceLevel.Valid {
		resp.SpiceLevel = &m.SpiceLevel.String
	}
	if m.Description.Valid {
		resp.Description = &m.Description.String
	}
	if m.PhotoURL.Valid {
		resp.PhotoURL = &m.PhotoURL.String
	}
	return resp
}
