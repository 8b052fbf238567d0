package models

import "github.com/splitit-app/splitit/internal/money"

// PaymentStatus is the lifecycle state of a payment record.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Payment records a transfer between two users. Manual records start
// pending; settlement payments are created completed and linked to the split
// they extinguish. At most one payment may reference a given split.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string `json:"id"`

	// FromUserID is the sender (the debtor for settlements).
	FromUserID string `json:"from_user_id"`

	// ToUserID is the receiver (the expenditure payer for settlements).
	ToUserID string `json:"to_user_id"`

	// Amount is the transferred amount, strictly positive.
	Amount money.Money `json:"amount"`

	// Description is an optional note.
	Description string `json:"description,omitempty"`

	// Status is pending for manual records, completed for settlements.
	Status PaymentStatus `json:"status"`

	// ExpenditureSplitID links a settlement payment to the split it
	// settles. Empty for manual payments.
	ExpenditureSplitID string `json:"expenditure_split_id,omitempty"`

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64 `json:"created_at"`
}

// UserBalance is the owed/owes/net triple for one user, either global or
// scoped to a set of events.
type UserBalance struct {
	// UserID is the user the balance belongs to.
	UserID string `json:"user_id"`

	// TotalOwed is what the user still owes others (their unpaid splits
	// on expenditures they did not pay for).
	TotalOwed money.Money `json:"total_owed"`

	// TotalOwes is what others still owe the user (unpaid splits on
	// expenditures the user paid for, excluding the user's own share).
	TotalOwes money.Money `json:"total_owes"`

	// Balance is TotalOwes - TotalOwed; positive means net creditor.
	Balance money.Money `json:"balance"`
}

// OccasionSummary aggregates an occasion's gross spend and per-participant
// balances across its events.
type OccasionSummary struct {
	Occasion *Occasion `json:"occasion"`

	// TotalExpenditures is gross spend: every expenditure amount in
	// scope, settled or not.
	TotalExpenditures money.Money `json:"total_expenditures"`

	// TotalEvents is the number of events under the occasion.
	TotalEvents int `json:"total_events"`

	// UserBalances holds one entry per participant (payers and debtors,
	// deduplicated), sorted by user ID.
	UserBalances []UserBalance `json:"user_balances"`
}
