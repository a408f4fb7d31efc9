package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/leca/finance-conformance/internal/database"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	n := 0
	return &Handler{
		DB:  db,
		Now: func() time.Time { return fixedNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%03d", n)
		},
	}
}

func setupTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)
	r.Route("/api", func(r chi.Router) {
		r.Get("/transactions", h.ListTransactions)
		r.Post("/transactions", h.CreateTransaction)
		r.Put("/transactions/{id}", h.UpdateTransaction)
		r.Delete("/transactions/{id}", h.DeleteTransaction)
		r.Get("/categories", h.ListCategories)
		r.Get("/budgets", h.ListBudgets)
		r.Post("/budgets", h.CreateBudget)
		r.Get("/analytics", h.GetAnalytics)
	})
	return r
}

// serve sends a request with an optional raw JSON body through router.
func serve(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}
