// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/splitit-app/splitit/internal/models"
	"github.com/splitit-app/splitit/internal/money"
)

var (
	// ErrNotFound is returned when a referenced record does not exist or
	// is outside the caller's visibility. Callers cannot tell the two
	// apart.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a compare-and-set loses a race, e.g.
	// settling a split that was settled concurrently.
	ErrConflict = errors.New("conflicting update")
)

// SplitFilter selects expenditure splits for aggregation. All set fields are
// ANDed together; zero values mean "no constraint". Each field corresponds
// to one named query conjunction, there is no hidden reverse traversal.
type SplitFilter struct {
	// UserID restricts to splits owed by this user.
	UserID string

	// PaidBy restricts to splits of expenditures paid by this user.
	PaidBy string

	// ExcludeUserID drops splits owed by this user.
	ExcludeUserID string

	// ExcludePaidBy drops splits of expenditures paid by this user.
	ExcludePaidBy string

	// EventIDs restricts to splits of expenditures in these events.
	// Nil means all events; an empty non-nil slice matches nothing.
	EventIDs []string

	// IsPaid restricts by settlement state when non-nil.
	IsPaid *bool
}

// Unpaid is a convenience pointer for SplitFilter.IsPaid.
var Unpaid = boolPtr(false)

func boolPtr(b bool) *bool { return &b }

// Store defines the persistence operations the ledger engine needs.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	// CreateUser persists a new user. Fails if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email, ErrNotFound if absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID, ErrNotFound if absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// CreateOccasion persists a new occasion, assigning ID and CreatedAt.
	CreateOccasion(ctx context.Context, occasion *models.Occasion) error

	// GetOccasion retrieves an occasion visible to createdBy.
	// Returns ErrNotFound whether the occasion is missing or owned by
	// someone else.
	GetOccasion(ctx context.Context, id, createdBy string) (*models.Occasion, error)

	// ListOccasions lists occasions created by the user, newest first.
	ListOccasions(ctx context.Context, createdBy string) ([]*models.Occasion, error)

	// CreateEvent persists a new event, assigning ID and CreatedAt.
	CreateEvent(ctx context.Context, event *models.Event) error

	// GetEvent retrieves an event by ID, ErrNotFound if absent.
	GetEvent(ctx context.Context, id string) (*models.Event, error)

	// ListEventsByOccasion lists the occasion's events, newest first.
	ListEventsByOccasion(ctx context.Context, occasionID string) ([]*models.Event, error)

	// CreateExpenditure persists an expenditure together with its splits
	// as one atomic unit: either all rows land or none do.
	CreateExpenditure(ctx context.Context, exp *models.Expenditure, splits []*models.ExpenditureSplit) error

	// ListExpendituresByEvent lists an event's expenditures, newest first.
	ListExpendituresByEvent(ctx context.Context, eventID string) ([]*models.Expenditure, error)

	// GetSplit retrieves a split joined with its expenditure's payer and
	// event. Returns ErrNotFound if absent.
	GetSplit(ctx context.Context, id string) (*models.SplitDetail, error)

	// SumSplits returns the sum of split amounts matching the filter,
	// 0.00 when nothing matches.
	SumSplits(ctx context.Context, f SplitFilter) (money.Money, error)

	// SumSplitsBatch evaluates several filters against a single
	// consistent snapshot, so an aggregate built from multiple sums
	// cannot race against a concurrent settlement.
	SumSplitsBatch(ctx context.Context, filters []SplitFilter) ([]money.Money, error)

	// SumExpenditures returns gross spend over the given events: the sum
	// of expenditure amounts regardless of settlement state.
	SumExpenditures(ctx context.Context, eventIDs []string) (money.Money, error)

	// ListParticipants returns the deduplicated union of expenditure
	// payers and split debtors across the given events, sorted by user ID.
	ListParticipants(ctx context.Context, eventIDs []string) ([]string, error)

	// CreatePayment persists a payment record, assigning ID and CreatedAt.
	CreatePayment(ctx context.Context, payment *models.Payment) error

	// ListPaymentsByUser lists payments where the user is sender or
	// receiver, newest first.
	ListPaymentsByUser(ctx context.Context, userID string) ([]*models.Payment, error)

	// SettleSplit atomically flips the split from unpaid to paid and
	// inserts the settlement payment. The flip is a compare-and-set: if
	// the split is already paid the call fails with ErrConflict and the
	// payment is not created; if the split does not exist it fails with
	// ErrNotFound. Both effects land or neither does.
	SettleSplit(ctx context.Context, splitID string, payment *models.Payment) error

	// Close releases any resources held by the store.
	Close() error
}
