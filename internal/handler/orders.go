package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/qrdine/api/internal/database"
	"github.com/qrdine/api/internal/enum"
	"github.com/qrdine/api/internal/service"
	"github.com/shopspring/decimal"
)

// OrderLifecycle defines the service methods needed by order handlers.
// Satisfied by *service.LifecycleService; narrow interface for testability.
type OrderLifecycle interface {
	Submit(ctx context.Context, req service.SubmitOrderRequest) (service.Order, error)
	Advance(ctx context.Context, restaurantID, orderID uuid.UUID, target string) (service.Order, error)
	AdvanceBatch(ctx context.Context, restaurantID uuid.UUID, orderIDs []uuid.UUID, target string) []service.AdvanceResult
	Amend(ctx context.Context, restaurantID, orderID uuid.UUID, items []service.LineItem) (service.Order, error)
}

// OrderReader defines the database methods the read endpoints need.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderReader interface {
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrderItemsByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) ([]database.OrderItem, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	lc    OrderLifecycle
	store OrderReader
}

func NewOrderHandler(lc OrderLifecycle, store OrderReader) *OrderHandler {
	return &OrderHandler{lc: lc, store: store}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted inside a restaurant-scoped subrouter:
// /restaurants/{rid}/orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Patch("/status", h.BatchUpdateStatus)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Put("/{id}/items", h.Amend)
}

// --- Request / Response types ---

type lineItemRequest struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int32  `json:"quantity"`
}

type createOrderRequest struct {
	Table string            `json:"table"`
	Items []lineItemRequest `json:"items"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type batchStatusRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

type amendItemsRequest struct {
	Items []lineItemRequest `json:"items"`
}

type lineItemResponse struct {
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int32  `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type orderResponse struct {
	ID           uuid.UUID          `json:"id"`
	RestaurantID uuid.UUID          `json:"restaurant_id"`
	Table        string             `json:"table"`
	Status       string             `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	ServedAt     *time.Time         `json:"served_at"`
	Items        []lineItemResponse `json:"items"`
	Total        string             `json:"total"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
}

type batchResultResponse struct {
	OrderID uuid.UUID      `json:"order_id"`
	Order   *orderResponse `json:"order,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type batchStatusResponse struct {
	Results []batchResultResponse `json:"results"`
}

// --- Handlers ---

// Create handles POST /restaurants/{rid}/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	items, err := parseLineItems(req.Items)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	order, err := h.lc.Submit(r.Context(), service.SubmitOrderRequest{
		RestaurantID: restaurantID,
		Table:        req.Table,
		Items:        items,
	})
	if err != nil {
		writeServiceError(w, "create order", err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

// List handles GET /restaurants/{rid}/orders with optional status and
// table filters.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	params := database.ListOrdersParams{RestaurantID: restaurantID}
	if s := r.URL.Query().Get("status"); s != "" {
		if !enum.IsValidOrderStatus(s) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		params.Statuses = []string{s}
	}
	if t := r.URL.Query().Get("table"); t != "" {
		params.TableID = pgtype.Text{String: t, Valid: true}
	}

	orders, err := loadOrders(r.Context(), h.store, params)
	if err != nil {
		writeServiceError(w, "list orders", err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, orderListResponse{Orders: resp})
}

// UpdateStatus handles PATCH /restaurants/{rid}/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	order, err := h.lc.Advance(r.Context(), restaurantID, orderID, req.Status)
	if err != nil {
		writeServiceError(w, "update order status", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// BatchUpdateStatus handles PATCH /restaurants/{rid}/orders/status.
// Each order is transitioned independently; the response carries a
// per-order outcome rather than failing the whole batch.
func (h *OrderHandler) BatchUpdateStatus(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	var req batchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ids are required"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	ids := make([]uuid.UUID, len(req.IDs))
	for i, s := range req.IDs {
		id, err := uuid.Parse(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID: " + s})
			return
		}
		ids[i] = id
	}

	results := h.lc.AdvanceBatch(r.Context(), restaurantID, ids, req.Status)
	writeJSON(w, http.StatusOK, toBatchResponse(results))
}

// Amend handles PUT /restaurants/{rid}/orders/{id}/items.
func (h *OrderHandler) Amend(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req amendItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	items, err := parseLineItems(req.Items)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	order, err := h.lc.Amend(r.Context(), restaurantID, orderID, items)
	if err != nil {
		writeServiceError(w, "amend order items", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// --- Helpers ---

func formatItemError(idx int, msg string) string {
	return "items[" + strconv.Itoa(idx) + "]: " + msg
}

func parseLineItems(reqs []lineItemRequest) ([]service.LineItem, error) {
	items := make([]service.LineItem, len(reqs))
	for i, it := range reqs {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return nil, errors.New(formatItemError(i, "invalid price"))
		}
		items[i] = service.LineItem{
			Name:     it.Name,
			Price:    price,
			Quantity: it.Quantity,
		}
	}
	return items, nil
}

// loadOrders fetches order rows plus their items in two round trips and
// assembles the domain view.
func loadOrders(ctx context.Context, store OrderReader, params database.ListOrdersParams) ([]service.Order, error) {
	rows, err := store.ListOrders(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	items, err := store.ListOrderItemsByOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return service.OrdersFromRows(rows, items), nil
}

func toOrderResponse(o service.Order) orderResponse {
	resp := orderResponse{
		ID:           o.ID,
		RestaurantID: o.RestaurantID,
		Table:        o.Table,
		Status:       o.Status,
		CreatedAt:    o.CreatedAt,
		ServedAt:     o.ServedAt,
		Total:        o.Total().StringFixed(2),
	}
	resp.Items = make([]lineItemResponse, len(o.Items))
	for i, li := range o.Items {
		resp.Items[i] = lineItemResponse{
			Name:      li.Name,
			UnitPrice: li.Price.StringFixed(2),
			Quantity:  li.Quantity,
			Subtotal:  li.Subtotal().StringFixed(2),
		}
	}
	return resp
}

func toBatchResponse(results []service.AdvanceResult) batchStatusResponse {
	resp := batchStatusResponse{Results: make([]batchResultResponse, len(results))}
	for i, res := range results {
		out := batchResultResponse{OrderID: res.OrderID}
		if res.Err != nil {
			out.Error = res.Err.Error()
		} else if res.Order != nil {
			r := toOrderResponse(*res.Order)
			out.Order = &r
		}
		resp.Results[i] = out
	}
	return resp
}
