package handler

import (
	"net/http"

	"github.com/leca/finance-conformance/internal/api"
	"github.com/leca/finance-conformance/internal/model"
)

// ListCategories handles GET /api/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, model.Categories)
}
