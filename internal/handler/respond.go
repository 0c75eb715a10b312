package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/qrdine/api/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeServiceError maps lifecycle errors to HTTP status codes. op
// names the failing operation for the server log; clients only ever
// see a generic message for unexpected failures.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case service.IsInvalidInput(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrOrderPaid):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
