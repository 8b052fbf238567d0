// Package calculator computes per-participant shares for an expenditure.
// It is pure: no storage, no identity lookup, no side effects.
package calculator

import (
	"errors"
	"fmt"

	"github.com/splitit-app/splitit/internal/models"
	"github.com/splitit-app/splitit/internal/money"
)

var (
	// ErrNonPositiveAmount is returned when the total or any share is not
	// strictly positive.
	ErrNonPositiveAmount = errors.New("amount must be positive")

	// ErrNoParticipants is returned when a custom split names no
	// participants.
	ErrNoParticipants = errors.New("custom split requires participants")

	// ErrSplitMismatch is returned when custom amounts and participants
	// have different lengths.
	ErrSplitMismatch = errors.New("number of custom amounts must match number of participants")

	// ErrSplitSumMismatch is returned when custom amounts do not sum
	// exactly to the expenditure amount.
	ErrSplitSumMismatch = errors.New("sum of custom amounts must equal the total amount")

	// ErrDuplicateParticipant is returned when a user appears more than
	// once in the participant list.
	ErrDuplicateParticipant = errors.New("duplicate participant in split")

	// ErrUnknownSplitMode is returned for split modes other than equal
	// and custom.
	ErrUnknownSplitMode = errors.New("unknown split mode")
)

// Share is one participant's computed portion of an expenditure.
type Share struct {
	UserID string
	Amount money.Money

	// IsPaid is true only for the payer's own share, which is born
	// settled: a payer owes nothing to themselves.
	IsPaid bool
}

// Compute turns a total, a split mode and a participant list into one share
// per participant.
//
// Equal mode divides the total in cents; leftover cents are assigned one
// each to the earliest participants, so the shares always sum exactly to the
// total. An empty participant list is a valid no-op (no shares). Custom mode
// requires customAmounts to zip with participants and to sum exactly to
// total, with no rounding tolerance.
func Compute(total money.Money, mode models.SplitMode, participants []string, customAmounts []money.Money, payer string) ([]Share, error) {
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: total %s", ErrNonPositiveAmount, total)
	}
	if err := checkDuplicates(participants); err != nil {
		return nil, err
	}

	var amounts []money.Money
	switch mode {
	case models.SplitModeEqual:
		if len(participants) == 0 {
			return nil, nil
		}
		shares, err := total.SplitEven(len(participants))
		if err != nil {
			return nil, err
		}
		amounts = shares
	case models.SplitModeCustom:
		if len(participants) == 0 {
			return nil, ErrNoParticipants
		}
		if len(customAmounts) != len(participants) {
			return nil, fmt.Errorf("%w: %d amounts for %d participants",
				ErrSplitMismatch, len(customAmounts), len(participants))
		}
		if sum := money.Sum(customAmounts); !sum.Equal(total) {
			return nil, fmt.Errorf("%w: amounts sum to %s, total is %s",
				ErrSplitSumMismatch, sum, total)
		}
		amounts = customAmounts
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSplitMode, mode)
	}

	shares := make([]Share, len(participants))
	for i, userID := range participants {
		if !amounts[i].IsPositive() {
			return nil, fmt.Errorf("%w: share %s for user %s",
				ErrNonPositiveAmount, amounts[i], userID)
		}
		shares[i] = Share{
			UserID: userID,
			Amount: amounts[i],
			IsPaid: userID == payer,
		}
	}
	return shares, nil
}

func checkDuplicates(participants []string) error {
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if seen[p] {
			return fmt.Errorf("%w: %s", ErrDuplicateParticipant, p)
		}
		seen[p] = true
	}
	return nil
}
