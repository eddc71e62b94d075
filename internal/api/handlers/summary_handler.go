package handlers

import (
	"net/http"
	"strconv"

	"github.com/umutoz/defter-be/internal/auth"
	"github.com/umutoz/defter-be/internal/services"
)

// SummaryHandler handles HTTP requests for ledger aggregation.
type SummaryHandler struct {
	service services.SummaryServiceProvider
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(service services.SummaryServiceProvider) *SummaryHandler {
	return &SummaryHandler{service: service}
}

// Get handles the balance summary. The month query parameter selects a
// month as YYYY-MM; default is the current month (UTC).
func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	summary, err := h.service.Summary(r.Context(), userID, r.URL.Query().Get("month"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Days handles the per-day income/expense series for the dashboard.
func (h *SummaryHandler) Days(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid query parameter: days", http.StatusBadRequest)
			return
		}
		days = n
	}

	series, err := h.service.Days(r.Context(), userID, days)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, series)
}
