package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/qrdine/api/internal/database"
	"github.com/qrdine/api/internal/enum"
	"github.com/qrdine/api/internal/service"
)

// KitchenHandler serves the kitchen's working view: which order each
// table is waiting on, and which add-ons came in after it.
type KitchenHandler struct {
	store OrderReader
}

func NewKitchenHandler(store OrderReader) *KitchenHandler {
	return &KitchenHandler{store: store}
}

type tableClassificationResponse struct {
	Table  string          `json:"table"`
	Main   *orderResponse  `json:"main"`
	AddOns []orderResponse `json:"add_ons"`
}

type kitchenQueueResponse struct {
	Tables []tableClassificationResponse `json:"tables"`
}

// Queue handles GET /restaurants/{rid}/kitchen/queue: every table with
// open orders, classified, sorted by table identifier.
func (h *KitchenHandler) Queue(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	open, err := loadOrders(r.Context(), h.store, database.ListOrdersParams{
		RestaurantID: restaurantID,
		Statuses:     enum.OpenOrderStatuses(),
	})
	if err != nil {
		writeServiceError(w, "kitchen queue", err)
		return
	}

	queue := service.BuildKitchenQueue(open)
	resp := kitchenQueueResponse{Tables: make([]tableClassificationResponse, len(queue))}
	for i, c := range queue {
		resp.Tables[i] = toClassificationResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Classify handles GET /restaurants/{rid}/tables/{table}/classification.
func (h *KitchenHandler) Classify(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	table := chi.URLParam(r, "table")
	if table == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing table"})
		return
	}

	open, err := loadOrders(r.Context(), h.store, database.ListOrdersParams{
		RestaurantID: restaurantID,
		Statuses:     enum.OpenOrderStatuses(),
		TableID:      pgtype.Text{String: table, Valid: true},
	})
	if err != nil {
		writeServiceError(w, "classify table", err)
		return
	}

	c := service.ClassifyTable(open)
	if c.Table == "" {
		c.Table = table
	}
	writeJSON(w, http.StatusOK, toClassificationResponse(c))
}

func toClassificationResponse(c service.TableClassification) tableClassificationResponse {
	resp := tableClassificationResponse{
		Table:  c.Table,
		AddOns: make([]orderResponse, len(c.AddOns)),
	}
	if c.Main != nil {
		main := toOrderResponse(*c.Main)
		resp.Main = &main
	}
	for i, o := range c.AddOns {
		resp.AddOns[i] = toOrderResponse(o)
	}
	return resp
}
