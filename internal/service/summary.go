package service

import (
	"context"
	"fmt"

	"github.com/splitit-app/splitit/internal/models"
	"github.com/splitit-app/splitit/internal/storage"
)

// Summaries builds per-occasion rollups by composing the balance reader over
// every participant of the occasion's events.
type Summaries struct {
	store    storage.Store
	balances *Balances
}

// NewSummaries creates a Summaries reader.
func NewSummaries(store storage.Store, balances *Balances) *Summaries {
	return &Summaries{store: store, balances: balances}
}

// Summarize reports an occasion's gross spend, event count and the scoped
// balance of every participant. Occasions are visible only to their creator;
// a missing occasion and someone else's occasion are both
// storage.ErrNotFound.
//
// TotalExpenditures is gross spend (settled shares included), not
// outstanding debt. Participants are the deduplicated union of payers and
// split debtors, and the balances slice is sorted by user ID so a given
// snapshot always serializes the same way.
func (s *Summaries) Summarize(ctx context.Context, occasionID, actingUser string) (*models.OccasionSummary, error) {
	occasion, err := s.store.GetOccasion(ctx, occasionID, actingUser)
	if err != nil {
		return nil, err
	}

	events, err := s.store.ListEventsByOccasion(ctx, occasionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for occasion %s: %w", occasionID, err)
	}
	eventIDs := make([]string, len(events))
	for i, event := range events {
		eventIDs[i] = event.ID
	}

	total, err := s.store.SumExpenditures(ctx, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenditures: %w", err)
	}

	participants, err := s.store.ListParticipants(ctx, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	balances := make([]models.UserBalance, 0, len(participants))
	for _, userID := range participants {
		balance, err := s.balances.BalanceFor(ctx, userID, eventIDs)
		if err != nil {
			return nil, err
		}
		balances = append(balances, *balance)
	}

	return &models.OccasionSummary{
		Occasion:          occasion,
		TotalExpenditures: total,
		TotalEvents:       len(events),
		UserBalances:      balances,
	}, nil
}
