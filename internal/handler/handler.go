package handler

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/leca/finance-conformance/internal/api"
	"github.com/leca/finance-conformance/internal/database"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	DB database.Database

	// Cache holds computed analytics between writes. Nil disables caching.
	Cache *cache.Cache

	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *Handler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

// invalidate drops cached aggregates after a write.
func (h *Handler) invalidate() {
	if h.Cache != nil {
		h.Cache.Flush()
	}
}

// representable reports whether d fits a float64, so it can be stored and
// echoed back as a JSON number.
func representable(d *decimal.Decimal) bool {
	return !math.IsInf(d.InexactFloat64(), 0)
}

// decodeJSON reads the request body into v and writes a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		api.BadRequest(w, "invalid JSON body")
		return false
	}
	return true
}

// NotFound answers every unknown route and method.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	api.NotFound(w, "Not found")
}
