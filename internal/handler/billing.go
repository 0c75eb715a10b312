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

// BillingHandler produces consolidated table bills and settles them.
type BillingHandler struct {
	store OrderReader
	lc    OrderLifecycle
}

func NewBillingHandler(store OrderReader, lc OrderLifecycle) *BillingHandler {
	return &BillingHandler{store: store, lc: lc}
}

type billLineResponse struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int32  `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

type billResponse struct {
	Table    string             `json:"table"`
	Lines    []billLineResponse `json:"lines"`
	Total    string             `json:"total"`
	OrderIDs []uuid.UUID        `json:"order_ids"`
}

type settleResponse struct {
	Bill    billResponse          `json:"bill"`
	Results []batchResultResponse `json:"results"`
}

// Bill handles GET /restaurants/{rid}/tables/{table}/bill: the merged
// unpaid bill across every open order of the table.
func (h *BillingHandler) Bill(w http.ResponseWriter, r *http.Request) {
	restaurantID, table, ok := parseTableParams(w, r)
	if !ok {
		return
	}

	bill, err := h.loadBill(r, restaurantID, table)
	if err != nil {
		writeServiceError(w, "table bill", err)
		return
	}

	writeJSON(w, http.StatusOK, toBillResponse(bill))
}

// Settle handles POST /restaurants/{rid}/tables/{table}/settle. The
// transition targets exactly the order set that was aggregated into the
// bill, so an order placed between aggregation and settlement stays
// unpaid and shows up on the table's next bill.
func (h *BillingHandler) Settle(w http.ResponseWriter, r *http.Request) {
	restaurantID, table, ok := parseTableParams(w, r)
	if !ok {
		return
	}

	bill, err := h.loadBill(r, restaurantID, table)
	if err != nil {
		writeServiceError(w, "settle table", err)
		return
	}
	if len(bill.SourceOrderIDs) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no unpaid orders for this table"})
		return
	}

	results := h.lc.AdvanceBatch(r.Context(), restaurantID, bill.SourceOrderIDs, enum.OrderStatusPaid)
	writeJSON(w, http.StatusOK, settleResponse{
		Bill:    toBillResponse(bill),
		Results: toBatchResponse(results).Results,
	})
}

func (h *BillingHandler) loadBill(r *http.Request, restaurantID uuid.UUID, table string) (service.Bill, error) {
	unpaid, err := loadOrders(r.Context(), h.store, database.ListOrdersParams{
		RestaurantID: restaurantID,
		Statuses:     enum.OpenOrderStatuses(),
		TableID:      pgtype.Text{String: table, Valid: true},
	})
	if err != nil {
		return service.Bill{}, err
	}
	return service.AggregateBill(table, unpaid), nil
}

func parseTableParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, string, bool) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return uuid.Nil, "", false
	}
	table := chi.URLParam(r, "table")
	if table == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing table"})
		return uuid.Nil, "", false
	}
	return restaurantID, table, true
}

func toBillResponse(b service.Bill) billResponse {
	resp := billResponse{
		Table:    b.Table,
		Lines:    make([]billLineResponse, len(b.Lines)),
		Total:    b.Total.StringFixed(2),
		OrderIDs: b.SourceOrderIDs,
	}
	for i, line := range b.Lines {
		resp.Lines[i] = billLineResponse{
			Name:     line.Name,
			Price:    line.Price.StringFixed(2),
			Quantity: line.Quantity,
			Subtotal: line.Subtotal.StringFixed(2),
		}
	}
	return resp
}
