package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitit-app/splitit/internal/middleware"
	"github.com/splitit-app/splitit/internal/models"
	"github.com/splitit-app/splitit/internal/money"
	"github.com/splitit-app/splitit/internal/service"
)

type createExpenditureRequest struct {
	EventID       string           `json:"event_id"`
	Amount        money.Money      `json:"amount"`
	Description   string           `json:"description"`
	SplitMode     models.SplitMode `json:"split_mode"`
	Participants  []string         `json:"participants"`
	CustomAmounts []money.Money    `json:"custom_amounts,omitempty"`
}

type expenditureResponse struct {
	Expenditure *models.Expenditure        `json:"expenditure"`
	Splits      []*models.ExpenditureSplit `json:"splits"`
}

func (s *Server) handleCreateExpenditure(w http.ResponseWriter, r *http.Request) {
	var req createExpenditureRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	exp, splits, err := s.ledger.CreateExpenditure(r.Context(), middleware.GetUserID(r.Context()), service.CreateExpenditureInput{
		EventID:       req.EventID,
		Amount:        req.Amount,
		Description:   req.Description,
		SplitMode:     req.SplitMode,
		Participants:  req.Participants,
		CustomAmounts: req.CustomAmounts,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if splits == nil {
		splits = []*models.ExpenditureSplit{}
	}
	writeJSON(w, http.StatusCreated, expenditureResponse{Expenditure: exp, Splits: splits})
}

// handleBalance reports the caller's balance, optionally scoped to one of
// their occasions via ?occasion=<id>.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var scope []string
	if occasionID := r.URL.Query().Get("occasion"); occasionID != "" {
		events, err := s.occasions.OccasionEvents(ctx, occasionID, userID)
		if err != nil {
			writeError(w, err)
			return
		}
		scope = make([]string, len(events))
		for i, event := range events {
			scope[i] = event.ID
		}
	}

	balance, err := s.balances.BalanceFor(ctx, userID, scope)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	payment, err := s.ledger.Settle(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

type recordPaymentRequest struct {
	ToUserID    string      `json:"to_user_id"`
	Amount      money.Money `json:"amount"`
	Description string      `json:"description"`
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	payment, err := s.ledger.RecordPayment(r.Context(), middleware.GetUserID(r.Context()), req.ToUserID, req.Amount, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.ledger.ListPayments(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if payments == nil {
		payments = []*models.Payment{}
	}
	writeJSON(w, http.StatusOK, payments)
}
