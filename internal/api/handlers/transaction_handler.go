package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/umutoz/defter-be/internal/auth"
	"github.com/umutoz/defter-be/internal/models"
	"github.com/umutoz/defter-be/internal/money"
	"github.com/umutoz/defter-be/internal/services"
)

// TransactionHandler handles HTTP requests for the ledger.
type TransactionHandler struct {
	service services.TransactionServiceProvider
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(service services.TransactionServiceProvider) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// TransactionPayload defines the structure for create requests.
type TransactionPayload struct {
	Title         string  `json:"title"`
	Amount        float64 `json:"amount"`
	Kind          string  `json:"kind"`
	PaymentMethod string  `json:"paymentMethod"`
	Description   string  `json:"description"`
}

// Create handles recording a new ledger entry.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var payload TransactionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tx, err := h.service.CreateTransaction(r.Context(), userID, services.CreateTransactionParams{
		Title:         payload.Title,
		Amount:        payload.Amount,
		Kind:          payload.Kind,
		PaymentMethod: payload.PaymentMethod,
		Description:   payload.Description,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, tx)
}

// List handles listing the user's ledger, newest first. Supported query
// parameters: from, to (YYYY-MM-DD, [from, to)), q (title substring),
// kind, min_amount, max_amount, limit, offset.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	filter, err := parseTransactionFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	transactions, err := h.service.ListTransactions(r.Context(), userID, filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, transactions)
}

// Delete handles removing a ledger entry.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteTransaction(r.Context(), userID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseTransactionFilter(r *http.Request) (services.TransactionFilter, error) {
	var filter services.TransactionFilter
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return filter, errInvalidParam("from")
		}
		t := d.Time
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return filter, errInvalidParam("to")
		}
		t := d.Time
		filter.To = &t
	}
	filter.Query = q.Get("q")
	filter.Kind = q.Get("kind")

	if v := q.Get("min_amount"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, errInvalidParam("min_amount")
		}
		c, err := money.FromFloat(f)
		if err != nil {
			return filter, errInvalidParam("min_amount")
		}
		filter.MinAmount = &c
	}
	if v := q.Get("max_amount"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, errInvalidParam("max_amount")
		}
		c, err := money.FromFloat(f)
		if err != nil {
			return filter, errInvalidParam("max_amount")
		}
		filter.MaxAmount = &c
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, errInvalidParam("limit")
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, errInvalidParam("offset")
		}
		filter.Offset = n
	}

	// month=YYYY-MM is shorthand for a [first, next-first) date range.
	if v := q.Get("month"); v != "" {
		t, err := time.ParseInLocation(services.MonthLayout, v, time.UTC)
		if err != nil {
			return filter, errInvalidParam("month")
		}
		from := t
		to := t.AddDate(0, 1, 0)
		filter.From = &from
		filter.To = &to
	}

	return filter, nil
}

type paramError string

func (e paramError) Error() string { return "Invalid query parameter: " + string(e) }

func errInvalidParam(name string) error { return paramError(name) }
