package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/splitit-app/splitit/internal/api"
	"github.com/splitit-app/splitit/internal/auth"
	"github.com/splitit-app/splitit/internal/config"
	"github.com/splitit-app/splitit/internal/service"
	"github.com/splitit-app/splitit/internal/storage"
	"github.com/splitit-app/splitit/internal/storage/postgres"
	"github.com/splitit-app/splitit/internal/storage/sqlite"
	"github.com/splitit-app/splitit/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err, "driver", cfg.DBDriver)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "driver", cfg.DBDriver)

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authn := auth.NewPasswordAuthenticator(store)

	balances := service.NewBalances(store)
	server := api.NewServer(
		authn,
		tokens,
		service.NewLedger(store),
		balances,
		service.NewSummaries(store, balances),
		service.NewOccasions(store),
	)

	slog.Info("server starting", "address", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, server.Router()); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.DBDriver == "postgres" {
		return postgres.New(cfg.DatabaseURL)
	}
	return sqlite.New(cfg.DBPath)
}
