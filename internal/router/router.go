package router

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/leca/finance-conformance/internal/config"
	"github.com/leca/finance-conformance/internal/database"
	"github.com/leca/finance-conformance/internal/handler"
	"github.com/patrickmn/go-cache"
)

// Server holds the twin backend's dependencies and HTTP router.
type Server struct {
	DB     database.Database
	Config *config.Config
	Router chi.Router
}

// New creates a new Server with a fully configured chi router.
// Routes are mounted under cfg.APIPrefix.
func New(db database.Database, cfg *config.Config) *Server {
	s := &Server{DB: db, Config: cfg}

	h := &handler.Handler{
		DB:    db,
		Cache: cache.New(time.Minute, 5*time.Minute),
	}

	r := chi.NewRouter()

	// CORS runs before other middleware so preflight OPTIONS requests are answered.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Unknown paths and unsupported methods both answer 404, like the real backend.
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)

	r.Get("/health", s.Health)

	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	r.Route(prefix, func(r chi.Router) {
		r.Get("/transactions", h.ListTransactions)
		r.Post("/transactions", h.CreateTransaction)
		r.Put("/transactions/{id}", h.UpdateTransaction)
		r.Delete("/transactions/{id}", h.DeleteTransaction)

		r.Get("/categories", h.ListCategories)

		r.Get("/budgets", h.ListBudgets)
		r.Post("/budgets", h.CreateBudget)

		r.Get("/analytics", h.GetAnalytics)
	})

	s.Router = r
	return s
}

// Health returns a simple health-check response.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		log.Printf("Health: failed to encode response: %v", err)
	}
}
