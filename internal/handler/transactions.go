package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/leca/finance-conformance/internal/api"
	"github.com/leca/finance-conformance/internal/database"
	"github.com/leca/finance-conformance/internal/model"
	"github.com/shopspring/decimal"
)

// transactionRequest is the JSON body for creating or replacing a transaction.
// Amount accepts a JSON number or a numeric string.
type transactionRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description string           `json:"description"`
	Date        string           `json:"date"`
	Category    string           `json:"category"`
}

// complete reports whether every required field is set. Zero amounts count
// as missing.
func (req *transactionRequest) complete() bool {
	return req.Amount != nil && !req.Amount.IsZero() &&
		req.Description != "" && req.Date != "" && req.Category != ""
}

// ListTransactions handles GET /api/transactions.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.DB.ListTransactions()
	if err != nil {
		log.Printf("ListTransactions: %v", err)
		api.InternalError(w, "Failed to fetch transactions")
		return
	}

	if txs == nil {
		txs = []*model.Transaction{}
	}
	api.WriteJSON(w, http.StatusOK, txs)
}

// CreateTransaction handles POST /api/transactions.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.complete() {
		api.BadRequest(w, "Missing required fields")
		return
	}
	if !representable(req.Amount) {
		api.BadRequest(w, "Invalid amount")
		return
	}

	tx := &model.Transaction{
		ID:          h.newID(),
		Amount:      req.Amount.InexactFloat64(),
		Description: req.Description,
		Date:        req.Date,
		Category:    req.Category,
		CreatedAt:   h.now(),
	}
	if err := h.DB.CreateTransaction(tx); err != nil {
		log.Printf("CreateTransaction: %v", err)
		api.InternalError(w, "Failed to create transaction")
		return
	}
	h.invalidate()

	api.WriteJSON(w, http.StatusCreated, tx)
}

// UpdateTransaction handles PUT /api/transactions/{id}.
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.complete() {
		api.BadRequest(w, "Missing required fields")
		return
	}
	if !representable(req.Amount) {
		api.BadRequest(w, "Invalid amount")
		return
	}

	now := h.now()
	tx := &model.Transaction{
		ID:          chi.URLParam(r, "id"),
		Amount:      req.Amount.InexactFloat64(),
		Description: req.Description,
		Date:        req.Date,
		Category:    req.Category,
		UpdatedAt:   &now,
	}
	if err := h.DB.UpdateTransaction(tx); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			api.NotFound(w, "Transaction not found")
			return
		}
		log.Printf("UpdateTransaction: %v", err)
		api.InternalError(w, "Failed to update transaction")
		return
	}
	h.invalidate()

	api.WriteJSON(w, http.StatusOK, api.Message("Transaction updated successfully"))
}

// DeleteTransaction handles DELETE /api/transactions/{id}.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.DeleteTransaction(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			api.NotFound(w, "Transaction not found")
			return
		}
		log.Printf("DeleteTransaction: %v", err)
		api.InternalError(w, "Failed to delete transaction")
		return
	}
	h.invalidate()

	api.WriteJSON(w, http.StatusOK, api.Message("Transaction deleted successfully"))
}
