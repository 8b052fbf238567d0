package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/splitit-app/splitit/internal/calculator"
	"github.com/splitit-app/splitit/internal/metrics"
	"github.com/splitit-app/splitit/internal/models"
	"github.com/splitit-app/splitit/internal/money"
	"github.com/splitit-app/splitit/internal/storage"
)

// Ledger mutates the expense ledger: it creates expenditures with their
// splits, settles splits, and records manual payments.
type Ledger struct {
	store storage.Store
}

// NewLedger creates a Ledger backed by the given store.
func NewLedger(store storage.Store) *Ledger {
	return &Ledger{store: store}
}

// CreateExpenditureInput carries the caller-supplied fields of a new
// expenditure. CustomAmounts is required iff SplitMode is custom.
type CreateExpenditureInput struct {
	EventID       string
	Amount        money.Money
	Description   string
	SplitMode     models.SplitMode
	Participants  []string
	CustomAmounts []money.Money
}

// CreateExpenditure validates the split, computes per-participant shares and
// persists the expenditure together with its splits as one atomic unit. The
// payer's own share, if the payer is listed as a participant, is created
// already settled. An empty participant list creates the expenditure with no
// splits (the payer's implicit share is simply not tracked).
func (l *Ledger) CreateExpenditure(ctx context.Context, payerID string, in CreateExpenditureInput) (*models.Expenditure, []*models.ExpenditureSplit, error) {
	if _, err := l.store.GetEvent(ctx, in.EventID); err != nil {
		return nil, nil, fmt.Errorf("event %s: %w", in.EventID, err)
	}

	shares, err := calculator.Compute(in.Amount, in.SplitMode, in.Participants, in.CustomAmounts, payerID)
	if err != nil {
		return nil, nil, err
	}

	exp := &models.Expenditure{
		EventID:     in.EventID,
		Amount:      in.Amount,
		Description: in.Description,
		PaidBy:      payerID,
		SplitMode:   in.SplitMode,
	}
	splits := make([]*models.ExpenditureSplit, len(shares))
	for i, share := range shares {
		splits[i] = &models.ExpenditureSplit{
			UserID: share.UserID,
			Amount: share.Amount,
			IsPaid: share.IsPaid,
		}
	}

	if err := l.store.CreateExpenditure(ctx, exp, splits); err != nil {
		return nil, nil, fmt.Errorf("failed to persist expenditure: %w", err)
	}

	metrics.ExpendituresCreated.Inc()
	slog.Info("expenditure created",
		"expenditure_id", exp.ID,
		"event_id", exp.EventID,
		"amount", exp.Amount,
		"paid_by", payerID,
		"split_mode", exp.SplitMode,
		"splits", len(splits),
	)
	return exp, splits, nil
}

// Settle discharges a split: the debtor pays the expenditure's payer the
// split amount. It creates a completed payment linked to the split and flips
// is_paid, atomically.
//
// A split that does not exist and a split that is already settled are both
// reported as storage.ErrNotFound, so callers cannot probe for other users'
// splits. Only the split's debtor may settle it. A concurrent settlement
// race has exactly one winner; losers get storage.ErrConflict.
func (l *Ledger) Settle(ctx context.Context, splitID, actingUser string) (*models.Payment, error) {
	split, err := l.store.GetSplit(ctx, splitID)
	if err != nil {
		return nil, err
	}
	if split.IsPaid {
		return nil, storage.ErrNotFound
	}
	if split.UserID != actingUser {
		return nil, fmt.Errorf("%w: only the debtor can settle their split", ErrForbidden)
	}

	payment := &models.Payment{
		FromUserID:  actingUser,
		ToUserID:    split.PaidBy,
		Amount:      split.Amount,
		Description: fmt.Sprintf("Settlement for expenditure split %s", split.ID),
		Status:      models.PaymentStatusCompleted,
	}

	if err := l.store.SettleSplit(ctx, splitID, payment); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			metrics.SettlementConflicts.Inc()
			slog.Warn("settlement lost race", "split_id", splitID, "user_id", actingUser)
		}
		return nil, err
	}

	metrics.SplitsSettled.Inc()
	slog.Info("split settled",
		"split_id", splitID,
		"payment_id", payment.ID,
		"from", payment.FromUserID,
		"to", payment.ToUserID,
		"amount", payment.Amount,
	)
	return payment, nil
}

// RecordPayment stores a manual payment record with status pending. It does
// not touch any split; settlements go through Settle.
func (l *Ledger) RecordPayment(ctx context.Context, fromUser, toUser string, amount money.Money, description string) (*models.Payment, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment of %s", calculator.ErrNonPositiveAmount, amount)
	}
	if _, err := l.store.GetUserByID(ctx, toUser); err != nil {
		return nil, fmt.Errorf("recipient %s: %w", toUser, err)
	}

	payment := &models.Payment{
		FromUserID:  fromUser,
		ToUserID:    toUser,
		Amount:      amount,
		Description: description,
		Status:      models.PaymentStatusPending,
	}
	if err := l.store.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	metrics.PaymentsCreated.Inc()
	return payment, nil
}

// ListPayments lists payments where the user is sender or receiver.
func (l *Ledger) ListPayments(ctx context.Context, userID string) ([]*models.Payment, error) {
	return l.store.ListPaymentsByUser(ctx, userID)
}
