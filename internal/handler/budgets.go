package handler

import (
	"log"
	"net/http"

	"github.com/leca/finance-conformance/internal/api"
	"github.com/leca/finance-conformance/internal/model"
	"github.com/shopspring/decimal"
)

// budgetRequest is the JSON body for creating or updating a budget.
type budgetRequest struct {
	Category string           `json:"category"`
	Amount   *decimal.Decimal `json:"amount"`
	Month    string           `json:"month"`
}

func (req *budgetRequest) complete() bool {
	return req.Category != "" && req.Amount != nil && !req.Amount.IsZero() && req.Month != ""
}

// ListBudgets handles GET /api/budgets.
func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.DB.ListBudgets()
	if err != nil {
		log.Printf("ListBudgets: %v", err)
		api.InternalError(w, "Failed to fetch budgets")
		return
	}

	if budgets == nil {
		budgets = []*model.Budget{}
	}
	api.WriteJSON(w, http.StatusOK, budgets)
}

// CreateBudget handles POST /api/budgets. A budget for an existing
// category and month is updated in place and answered with 200.
func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
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

	budget := &model.Budget{
		ID:        h.newID(),
		Category:  req.Category,
		Amount:    req.Amount.InexactFloat64(),
		Month:     req.Month,
		CreatedAt: h.now(),
	}
	created, err := h.DB.UpsertBudget(budget)
	if err != nil {
		log.Printf("CreateBudget: %v", err)
		api.InternalError(w, "Failed to create budget")
		return
	}
	h.invalidate()

	if !created {
		api.WriteJSON(w, http.StatusOK, api.Message("Budget updated successfully"))
		return
	}
	api.WriteJSON(w, http.StatusCreated, budget)
}
