package service

import (
	"context"
	"fmt"

	"github.com/splitit-app/splitit/internal/models"
	"github.com/splitit-app/splitit/internal/storage"
)

// Balances answers balance queries. Reads only; never mutates the ledger.
type Balances struct {
	store storage.Store
}

// NewBalances creates a Balances reader backed by the given store.
func NewBalances(store storage.Store) *Balances {
	return &Balances{store: store}
}

// BalanceFor computes the owed/owes/net triple for a user. When scopeEvents
// is non-nil, only splits of expenditures in those events are counted.
//
// TotalOwed counts the user's unpaid splits on expenditures someone else
// paid: a payer's own share is never a debt, so expenditures the user paid
// are excluded even if such a split were somehow left unpaid. TotalOwes
// counts unpaid splits owed to the user on expenditures they paid, excluding
// the user's own share. Both sums come from one store snapshot, so a
// settlement committing mid-query cannot skew the triple. No splits at all
// yields a zero triple, not an error.
func (b *Balances) BalanceFor(ctx context.Context, userID string, scopeEvents []string) (*models.UserBalance, error) {
	filters := []storage.SplitFilter{
		{
			UserID:        userID,
			ExcludePaidBy: userID,
			IsPaid:        storage.Unpaid,
			EventIDs:      scopeEvents,
		},
		{
			PaidBy:        userID,
			ExcludeUserID: userID,
			IsPaid:        storage.Unpaid,
			EventIDs:      scopeEvents,
		},
	}

	sums, err := b.store.SumSplitsBatch(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate balance for %s: %w", userID, err)
	}

	owed, owes := sums[0], sums[1]
	return &models.UserBalance{
		UserID:    userID,
		TotalOwed: owed,
		TotalOwes: owes,
		Balance:   owes.Sub(owed),
	}, nil
}
