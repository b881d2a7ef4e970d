package web

import (
	"errors"
	"net/http"

	"pos-backend/internal/app"
	"pos-backend/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// apiListTransactions handles GET /api/transactions?type=INCOME|EXPENSE.
func (h *Handler) apiListTransactions(w http.ResponseWriter, r *http.Request) {
	typeFilter := r.URL.Query().Get("type")
	var typePtr *string
	if typeFilter != "" {
		typePtr = &typeFilter
	}

	result, err := h.svc.ListTransactions(r.Context(), typePtr)
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result.Transactions)
}

// apiGetTransaction handles GET /api/transactions/{id}.
func (h *Handler) apiGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r)
	if err != nil {
		writeError(w, r, "invalid transaction id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	transaction, err := h.svc.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, transaction)
}

// apiRegisterTransaction handles POST /api/transactions.
// Body: { type, total_amount, method, product_id?, quantity?, unit_cost?,
//         card_id?, installment_count?, transaction_date?, description?,
//         idempotency_key? }
func (h *Handler) apiRegisterTransaction(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type             string `json:"type"`
		ProductID        string `json:"product_id"`
		Quantity         int    `json:"quantity"`
		UnitCost         string `json:"unit_cost"`
		CardID           string `json:"card_id"`
		Method           string `json:"method"`
		TotalAmount      string `json:"total_amount"`
		InstallmentCount int    `json:"installment_count"`
		TransactionDate  string `json:"transaction_date"`
		Description      string `json:"description"`
		IdempotencyKey   string `json:"idempotency_key"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	totalAmount, err := decimal.NewFromString(body.TotalAmount)
	if err != nil || !totalAmount.IsPositive() {
		writeError(w, r, "total_amount must be a positive amount", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	req := app.RegisterTransactionRequest{
		Type:             body.Type,
		Quantity:         body.Quantity,
		Method:           body.Method,
		TotalAmount:      totalAmount,
		InstallmentCount: body.InstallmentCount,
		TransactionDate:  body.TransactionDate,
		Description:      body.Description,
		IdempotencyKey:   body.IdempotencyKey,
	}

	if body.ProductID != "" {
		productID, err := uuid.Parse(body.ProductID)
		if err != nil {
			writeError(w, r, "invalid product_id", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.ProductID = &productID
	}
	if body.CardID != "" {
		cardID, err := uuid.Parse(body.CardID)
		if err != nil {
			writeError(w, r, "invalid card_id", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.CardID = &cardID
	}
	if body.UnitCost != "" {
		req.UnitCost, err = decimal.NewFromString(body.UnitCost)
		if err != nil || req.UnitCost.IsNegative() {
			writeError(w, r, "invalid unit_cost", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	result, err := h.svc.RegisterTransaction(r.Context(), req)
	if err != nil {
		var insufficient *core.InsufficientStockError
		if errors.As(err, &insufficient) {
			writeError(w, r, insufficient.Error(), "INSUFFICIENT_STOCK", http.StatusConflict)
			return
		}
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}
