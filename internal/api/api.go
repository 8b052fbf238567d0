// Package api exposes the ledger engine over JSON HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splitit-app/splitit/internal/auth"
	"github.com/splitit-app/splitit/internal/calculator"
	"github.com/splitit-app/splitit/internal/middleware"
	"github.com/splitit-app/splitit/internal/money"
	"github.com/splitit-app/splitit/internal/service"
	"github.com/splitit-app/splitit/internal/storage"
)

// Server wires the services into HTTP handlers.
type Server struct {
	authn     auth.Authenticator
	tokens    *auth.JWTManager
	ledger    *service.Ledger
	balances  *service.Balances
	summaries *service.Summaries
	occasions *service.Occasions
}

// NewServer creates the API server over the given services.
func NewServer(
	authn auth.Authenticator,
	tokens *auth.JWTManager,
	ledger *service.Ledger,
	balances *service.Balances,
	summaries *service.Summaries,
	occasions *service.Occasions,
) *Server {
	return &Server{
		authn:     authn,
		tokens:    tokens,
		ledger:    ledger,
		balances:  balances,
		summaries: summaries,
		occasions: occasions,
	}
}

// Router builds the route tree. Registration, login, health and metrics are
// public; everything else requires a Bearer token.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logging)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/api/register", s.handleRegister)
	r.Post("/api/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.tokens))

		r.Post("/api/occasions", s.handleCreateOccasion)
		r.Get("/api/occasions", s.handleListOccasions)
		r.Get("/api/occasions/{id}", s.handleGetOccasion)
		r.Get("/api/occasions/{id}/summary", s.handleOccasionSummary)

		r.Post("/api/events", s.handleCreateEvent)
		r.Get("/api/events/{id}/expenditures", s.handleEventExpenditures)

		r.Post("/api/expenditures", s.handleCreateExpenditure)
		r.Get("/api/balance", s.handleBalance)
		r.Post("/api/splits/{id}/settle", s.handleSettle)

		r.Post("/api/payments", s.handleRecordPayment)
		r.Get("/api/payments", s.handleListPayments)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		// Do not leak internals.
		writeJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps the service error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrConflict),
		errors.Is(err, auth.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, calculator.ErrNonPositiveAmount),
		errors.Is(err, calculator.ErrNoParticipants),
		errors.Is(err, calculator.ErrSplitMismatch),
		errors.Is(err, calculator.ErrSplitSumMismatch),
		errors.Is(err, calculator.ErrDuplicateParticipant),
		errors.Is(err, calculator.ErrUnknownSplitMode),
		errors.Is(err, money.ErrPrecision),
		errors.Is(err, money.ErrInvalid),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errBadRequest wraps malformed request bodies.
var errBadRequest = errors.New("bad request")

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadRequest
	}
	return nil
}
