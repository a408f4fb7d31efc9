package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/leca/finance-conformance/internal/config"
	"github.com/leca/finance-conformance/internal/database"
	"github.com/leca/finance-conformance/internal/router"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := router.New(db, cfg)

	slog.Info("starting server", "addr", cfg.ListenAddr, "api_prefix", cfg.APIPrefix)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
