package models

import "github.com/splitit-app/splitit/internal/money"

// SplitMode selects how an expenditure is divided among participants.
type SplitMode string

const (
	// SplitModeEqual divides the amount evenly; leftover cents go to the
	// earliest participants in list order.
	SplitModeEqual SplitMode = "equal"

	// SplitModeCustom uses caller-supplied per-participant amounts that
	// must sum exactly to the expenditure amount.
	SplitModeCustom SplitMode = "custom"
)

// Expenditure is a single charge paid by one user. Amount and split mode are
// immutable once created; the splits carry the mutable settlement state.
type Expenditure struct {
	// ID is the unique identifier for the expenditure (UUID format).
	ID string `json:"id"`

	// EventID is the event this expenditure belongs to.
	EventID string `json:"event_id"`

	// Amount is the full charge, strictly positive.
	Amount money.Money `json:"amount"`

	// Description says what was paid for.
	Description string `json:"description"`

	// PaidBy is the user ID of the payer.
	PaidBy string `json:"paid_by"`

	// SplitMode is how the amount was divided among participants.
	SplitMode SplitMode `json:"split_mode"`

	// CreatedAt is the Unix timestamp when the expenditure was created.
	CreatedAt int64 `json:"created_at"`
}

// ExpenditureSplit is one participant's owed share of an expenditure.
// At most one split exists per (expenditure, user) pair.
type ExpenditureSplit struct {
	// ID is the unique identifier for the split (UUID format).
	ID string `json:"id"`

	// ExpenditureID is the expenditure this split belongs to.
	ExpenditureID string `json:"expenditure_id"`

	// UserID is the debtor owing this share.
	UserID string `json:"user_id"`

	// Amount is the owed share, strictly positive.
	Amount money.Money `json:"amount"`

	// IsPaid transitions false→true exactly once, when the split is
	// settled. It never reverts.
	IsPaid bool `json:"is_paid"`

	// CreatedAt is the Unix timestamp when the split was created.
	CreatedAt int64 `json:"created_at"`
}

// SplitDetail is a split joined with the context the settlement state
// machine needs: who paid the underlying expenditure and which event it
// belongs to.
type SplitDetail struct {
	ExpenditureSplit

	// PaidBy is the payer of the underlying expenditure, i.e. the
	// creditor a settlement payment goes to.
	PaidBy string `json:"paid_by"`

	// EventID is the event of the underlying expenditure.
	EventID string `json:"event_id"`
}
