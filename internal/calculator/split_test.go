package calculator

import (
	"errors"
	"testing"

	"github.com/splitit-app/splitit/internal/models"
	"github.com/splitit-app/splitit/internal/money"
)

func amounts(ss ...string) []money.Money {
	ms := make([]money.Money, len(ss))
	for i, s := range ss {
		ms[i] = money.MustParse(s)
	}
	return ms
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name          string
		total         string
		mode          models.SplitMode
		participants  []string
		customAmounts []money.Money
		payer         string
		wantErr       error
		validateFunc  func(t *testing.T, shares []Share)
	}{
		{
			name:         "equal split, evenly divisible",
			total:        "100.00",
			mode:         models.SplitModeEqual,
			participants: []string{"alice", "bob"},
			payer:        "alice",
			validateFunc: func(t *testing.T, shares []Share) {
				for _, s := range shares {
					if s.Amount.String() != "50.00" {
						t.Errorf("%s share = %s, want 50.00", s.UserID, s.Amount)
					}
				}
			},
		},
		{
			name:         "equal split, remainder cents go to earliest participants",
			total:        "100.00",
			mode:         models.SplitModeEqual,
			participants: []string{"alice", "bob", "carol"},
			payer:        "dave",
			validateFunc: func(t *testing.T, shares []Share) {
				want := []string{"33.34", "33.33", "33.33"}
				sum := money.Zero
				for i, s := range shares {
					if s.Amount.String() != want[i] {
						t.Errorf("share[%d] = %s, want %s", i, s.Amount, want[i])
					}
					sum = sum.Add(s.Amount)
				}
				if sum.String() != "100.00" {
					t.Errorf("shares sum to %s, want 100.00", sum)
				}
			},
		},
		{
			name:         "payer share is born settled",
			total:        "60.00",
			mode:         models.SplitModeEqual,
			participants: []string{"alice", "bob", "carol"},
			payer:        "bob",
			validateFunc: func(t *testing.T, shares []Share) {
				for _, s := range shares {
					if got, want := s.IsPaid, s.UserID == "bob"; got != want {
						t.Errorf("%s IsPaid = %v, want %v", s.UserID, got, want)
					}
				}
			},
		},
		{
			name:         "equal split with no participants is a no-op",
			total:        "25.00",
			mode:         models.SplitModeEqual,
			participants: nil,
			payer:        "alice",
			validateFunc: func(t *testing.T, shares []Share) {
				if len(shares) != 0 {
					t.Errorf("expected no shares, got %d", len(shares))
				}
			},
		},
		{
			name:          "custom split with exact sum",
			total:         "100.00",
			mode:          models.SplitModeCustom,
			participants:  []string{"alice", "bob"},
			customAmounts: amounts("70.00", "30.00"),
			payer:         "alice",
			validateFunc: func(t *testing.T, shares []Share) {
				if shares[0].Amount.String() != "70.00" || shares[1].Amount.String() != "30.00" {
					t.Errorf("custom amounts not preserved: %s, %s", shares[0].Amount, shares[1].Amount)
				}
			},
		},
		{
			name:          "custom split sum mismatch",
			total:         "100.00",
			mode:          models.SplitModeCustom,
			participants:  []string{"alice", "bob"},
			customAmounts: amounts("70.00", "30.01"),
			payer:         "alice",
			wantErr:       ErrSplitSumMismatch,
		},
		{
			name:          "custom split length mismatch",
			total:         "100.00",
			mode:          models.SplitModeCustom,
			participants:  []string{"alice", "bob", "carol"},
			customAmounts: amounts("70.00", "30.00"),
			payer:         "alice",
			wantErr:       ErrSplitMismatch,
		},
		{
			name:         "custom split requires participants",
			total:        "100.00",
			mode:         models.SplitModeCustom,
			participants: nil,
			payer:        "alice",
			wantErr:      ErrNoParticipants,
		},
		{
			name:          "custom split with zero share",
			total:         "10.00",
			mode:          models.SplitModeCustom,
			participants:  []string{"alice", "bob"},
			customAmounts: amounts("10.00", "0.00"),
			payer:         "alice",
			wantErr:       ErrNonPositiveAmount,
		},
		{
			name:         "non-positive total",
			total:        "0.00",
			mode:         models.SplitModeEqual,
			participants: []string{"alice"},
			payer:        "alice",
			wantErr:      ErrNonPositiveAmount,
		},
		{
			name:         "equal split rounding to zero share",
			total:        "0.02",
			mode:         models.SplitModeEqual,
			participants: []string{"alice", "bob", "carol"},
			payer:        "alice",
			wantErr:      ErrNonPositiveAmount,
		},
		{
			name:         "duplicate participant",
			total:        "30.00",
			mode:         models.SplitModeEqual,
			participants: []string{"alice", "bob", "alice"},
			payer:        "alice",
			wantErr:      ErrDuplicateParticipant,
		},
		{
			name:         "unknown split mode",
			total:        "30.00",
			mode:         models.SplitMode("percentage"),
			participants: []string{"alice"},
			payer:        "alice",
			wantErr:      ErrUnknownSplitMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Compute(money.MustParse(tt.total), tt.mode, tt.participants, tt.customAmounts, tt.payer)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Compute() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Compute() failed: %v", err)
			}
			if len(shares) != len(tt.participants) {
				t.Fatalf("got %d shares for %d participants", len(shares), len(tt.participants))
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, shares)
			}
		})
	}
}

// Shares must sum to the total for every participant count, not only evenly
// divisible ones.
func TestComputeEqualAlwaysSumsToTotal(t *testing.T) {
	total := money.MustParse("17.53")
	for n := 1; n <= 12; n++ {
		participants := make([]string, n)
		for i := range participants {
			participants[i] = string(rune('a' + i))
		}
		shares, err := Compute(total, models.SplitModeEqual, participants, nil, "nobody")
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		sum := money.Zero
		for _, s := range shares {
			sum = sum.Add(s.Amount)
		}
		if !sum.Equal(total) {
			t.Errorf("n=%d: shares sum to %s, want %s", n, sum, total)
		}
	}
}
