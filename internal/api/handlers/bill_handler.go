package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/umutoz/defter-be/internal/auth"
	"github.com/umutoz/defter-be/internal/models"
	"github.com/umutoz/defter-be/internal/services"
)

// BillHandler handles HTTP requests for bills.
type BillHandler struct {
	service services.BillServiceProvider
}

// NewBillHandler creates a new BillHandler.
func NewBillHandler(service services.BillServiceProvider) *BillHandler {
	return &BillHandler{service: service}
}

// BillPayload defines the structure for create and update requests.
type BillPayload struct {
	Title       string       `json:"title"`
	Amount      float64      `json:"amount"`
	DueDate     *models.Date `json:"dueDate"`
	Description string       `json:"description"`
}

func (p BillPayload) params() services.BillParams {
	return services.BillParams{
		Title:       p.Title,
		Amount:      p.Amount,
		DueDate:     p.DueDate,
		Description: p.Description,
	}
}

// Create handles recording a new bill.
func (h *BillHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var payload BillPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	bill, err := h.service.CreateBill(r.Context(), userID, payload.params())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, bill)
}

// List handles listing the user's bills. The status query parameter
// narrows to paid, unpaid or overdue bills; default is all.
func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	bills, err := h.service.ListBills(r.Context(), userID, r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bills)
}

// Update handles editing a bill's fields.
func (h *BillHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var payload BillPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	bill, err := h.service.UpdateBill(r.Context(), userID, id, payload.params())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bill)
}

// Delete handles removing a bill together with its linked transaction.
func (h *BillHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteBill(r.Context(), userID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetPaidPayload defines the structure for paid-state requests.
type SetPaidPayload struct {
	Paid bool `json:"paid"`
}

// SetPaid handles flipping a bill's paid state.
func (h *BillHandler) SetPaid(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var payload SetPaidPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	bill, err := h.service.SetBillPaid(r.Context(), userID, id, payload.Paid)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bill)
}
