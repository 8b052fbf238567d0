package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/splitit-app/splitit/internal/calculator"
	"github.com/splitit-app/splitit/internal/models"
	"github.com/splitit-app/splitit/internal/money"
	"github.com/splitit-app/splitit/internal/storage"
	"github.com/splitit-app/splitit/internal/storage/sqlite"
)

type testEnv struct {
	store     *sqlite.SQLiteStore
	ledger    *Ledger
	balances  *Balances
	summaries *Summaries
	occasions *Occasions
}

// newTestEnv wires the services over a temp SQLite database and registers
// the given users.
func newTestEnv(t *testing.T, userIDs ...string) *testEnv {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitit-service-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	for _, id := range userIDs {
		user := &models.User{ID: id, Email: id + "@example.com", DisplayName: id, PasswordHash: "x", CreatedAt: 1}
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", id, err)
		}
	}

	balances := NewBalances(store)
	return &testEnv{
		store:     store,
		ledger:    NewLedger(store),
		balances:  balances,
		summaries: NewSummaries(store, balances),
		occasions: NewOccasions(store),
	}
}

// newEvent creates an occasion plus one event owned by the user.
func (env *testEnv) newEvent(t *testing.T, owner string) (occasionID, eventID string) {
	t.Helper()
	ctx := context.Background()

	occasion, err := env.occasions.CreateOccasion(ctx, owner, "Trip", "")
	if err != nil {
		t.Fatalf("CreateOccasion failed: %v", err)
	}
	event, err := env.occasions.CreateEvent(ctx, owner, "Dinner", "", occasion.ID)
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	return occasion.ID, event.ID
}

func TestCreateExpenditure(t *testing.T) {
	ctx := context.Background()

	t.Run("payer share auto-settled, others outstanding", func(t *testing.T) {
		env := newTestEnv(t, "alice", "bob", "carol")
		_, eventID := env.newEvent(t, "alice")

		_, splits, err := env.ledger.CreateExpenditure(ctx, "alice", CreateExpenditureInput{
			EventID:      eventID,
			Amount:       money.MustParse("90.00"),
			Description:  "groceries",
			SplitMode:    models.SplitModeEqual,
			Participants: []string{"alice", "bob", "carol"},
		})
		if err != nil {
			t.Fatalf("CreateExpenditure failed: %v", err)
		}
		if len(splits) != 3 {
			t.Fatalf("got %d splits, want 3", len(splits))
		}
		for _, split := range splits {
			if got, want := split.IsPaid, split.UserID == "alice"; got != want {
				t.Errorf("%s IsPaid = %v, want %v", split.UserID, got, want)
			}
			if !split.Amount.Equal(money.MustParse("30.00")) {
				t.Errorf("%s amount = %s, want 30.00", split.UserID, split.Amount)
			}
		}
	})

	t.Run("no participants creates no splits", func(t *testing.T) {
		env := newTestEnv(t, "alice")
		_, eventID := env.newEvent(t, "alice")

		exp, splits, err := env.ledger.CreateExpenditure(ctx, "alice", CreateExpenditureInput{
			EventID:     eventID,
			Amount:      money.MustParse("12.00"),
			Description: "solo coffee",
			SplitMode:   models.SplitModeEqual,
		})
		if err != nil {
			t.Fatalf("CreateExpenditure failed: %v", err)
		}
		if len(splits) != 0 {
			t.Errorf("got %d splits, want 0", len(splits))
		}
		if exp.ID == "" {
			t.Error("expenditure should still be persisted")
		}
	})

	t.Run("custom split validation errors pass through", func(t *testing.T) {
		env := newTestEnv(t, "alice", "bob")
		_, eventID := env.newEvent(t, "alice")

		_, _, err := env.ledger.CreateExpenditure(ctx, "alice", CreateExpenditureInput{
			EventID:       eventID,
			Amount:        money.MustParse("100.00"),
			Description:   "hotel",
			SplitMode:     models.SplitModeCustom,
			Participants:  []string{"alice", "bob"},
			CustomAmounts: []money.Money{money.MustParse("60.00"), money.MustParse("60.00")},
		})
		if !errors.Is(err, calculator.ErrSplitSumMismatch) {
			t.Errorf("error = %v, want ErrSplitSumMismatch", err)
		}
	})

	t.Run("unknown event is not found", func(t *testing.T) {
		env := newTestEnv(t, "alice")

		_, _, err := env.ledger.CreateExpenditure(ctx, "alice", CreateExpenditureInput{
			EventID:      "missing",
			Amount:       money.MustParse("10.00"),
			Description:  "ghost",
			SplitMode:    models.SplitModeEqual,
			Participants: []string{"alice"},
		})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

// A 100.00 expenditure split 50/50 between payer and one debtor must show up
// symmetrically: the debtor owes 50.00, the payer is owed 50.00.
func TestBalanceSymmetry(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "payer", "debtor")
	_, eventID := env.newEvent(t, "payer")

	_, splits, err := env.ledger.CreateExpenditure(ctx, "payer", CreateExpenditureInput{
		EventID:      eventID,
		Amount:       money.MustParse("100.00"),
		Description:  "dinner",
		SplitMode:    models.SplitModeEqual,
		Participants: []string{"payer", "debtor"},
	})
	if err != nil {
		t.Fatalf("CreateExpenditure failed: %v", err)
	}

	checkBalance := func(t *testing.T, userID, owed, owes, net string) {
		t.Helper()
		balance, err := env.balances.BalanceFor(ctx, userID, nil)
		if err != nil {
			t.Fatalf("BalanceFor(%s) failed: %v", userID, err)
		}
		if balance.TotalOwed.String() != owed {
			t.Errorf("%s TotalOwed = %s, want %s", userID, balance.TotalOwed, owed)
		}
		if balance.TotalOwes.String() != owes {
			t.Errorf("%s TotalOwes = %s, want %s", userID, balance.TotalOwes, owes)
		}
		if balance.Balance.String() != net {
			t.Errorf("%s Balance = %s, want %s", userID, balance.Balance, net)
		}
	}

	checkBalance(t, "debtor", "50.00", "0.00", "-50.00")
	checkBalance(t, "payer", "0.00", "50.00", "50.00")

	t.Run("settlement zeroes the pair", func(t *testing.T) {
		splitID := findSplit(t, splits, "debtor")
		if _, err := env.ledger.Settle(ctx, splitID, "debtor"); err != nil {
			t.Fatalf("Settle failed: %v", err)
		}
		checkBalance(t, "debtor", "0.00", "0.00", "0.00")
		checkBalance(t, "payer", "0.00", "0.00", "0.00")
	})
}

func TestBalanceForUnknownUserIsZero(t *testing.T) {
	env := newTestEnv(t)
	balance, err := env.balances.BalanceFor(context.Background(), "nobody", nil)
	if err != nil {
		t.Fatalf("BalanceFor failed: %v", err)
	}
	if !balance.TotalOwed.IsZero() || !balance.TotalOwes.IsZero() || !balance.Balance.IsZero() {
		t.Errorf("expected zero triple, got %+v", balance)
	}
}

func TestBalanceScope(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "payer", "debtor")
	_, event1 := env.newEvent(t, "payer")
	_, event2 := env.newEvent(t, "payer")

	for _, eventID := range []string{event1, event2} {
		_, _, err := env.ledger.CreateExpenditure(ctx, "payer", CreateExpenditureInput{
			EventID:      eventID,
			Amount:       money.MustParse("40.00"),
			Description:  "round",
			SplitMode:    models.SplitModeEqual,
			Participants: []string{"debtor"},
		})
		if err != nil {
			t.Fatalf("CreateExpenditure failed: %v", err)
		}
	}

	global, err := env.balances.BalanceFor(ctx, "debtor", nil)
	if err != nil {
		t.Fatalf("BalanceFor failed: %v", err)
	}
	if global.TotalOwed.String() != "80.00" {
		t.Errorf("global TotalOwed = %s, want 80.00", global.TotalOwed)
	}

	scoped, err := env.balances.BalanceFor(ctx, "debtor", []string{event1})
	if err != nil {
		t.Fatalf("scoped BalanceFor failed: %v", err)
	}
	if scoped.TotalOwed.String() != "40.00" {
		t.Errorf("scoped TotalOwed = %s, want 40.00", scoped.TotalOwed)
	}
}

// findSplit returns the ID of the split owed by userID.
func findSplit(t *testing.T, splits []*models.ExpenditureSplit, userID string) string {
	t.Helper()
	for _, s := range splits {
		if s.UserID == userID {
			return s.ID
		}
	}
	t.Fatalf("no split found for %s", userID)
	return ""
}

func TestSettle(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*testEnv, string) {
		env := newTestEnv(t, "payer", "debtor", "other")
		_, eventID := env.newEvent(t, "payer")
		_, splits, err := env.ledger.CreateExpenditure(ctx, "payer", CreateExpenditureInput{
			EventID:      eventID,
			Amount:       money.MustParse("50.00"),
			Description:  "taxi",
			SplitMode:    models.SplitModeEqual,
			Participants: []string{"debtor"},
		})
		if err != nil {
			t.Fatalf("CreateExpenditure failed: %v", err)
		}
		return env, findSplit(t, splits, "debtor")
	}

	t.Run("first settle succeeds, repeat is not found", func(t *testing.T) {
		env, splitID := setup(t)

		payment, err := env.ledger.Settle(ctx, splitID, "debtor")
		if err != nil {
			t.Fatalf("Settle failed: %v", err)
		}
		if payment.Status != models.PaymentStatusCompleted {
			t.Errorf("payment status = %s, want completed", payment.Status)
		}
		if !payment.Amount.Equal(money.MustParse("50.00")) {
			t.Errorf("payment amount = %s, want 50.00", payment.Amount)
		}
		if payment.FromUserID != "debtor" || payment.ToUserID != "payer" {
			t.Errorf("payment direction = %s→%s, want debtor→payer", payment.FromUserID, payment.ToUserID)
		}
		if payment.ExpenditureSplitID != splitID {
			t.Errorf("payment split link = %s, want %s", payment.ExpenditureSplitID, splitID)
		}

		// The settled split is indistinguishable from a missing one.
		if _, err := env.ledger.Settle(ctx, splitID, "debtor"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("second Settle error = %v, want ErrNotFound", err)
		}

		payments, err := env.ledger.ListPayments(ctx, "debtor")
		if err != nil {
			t.Fatalf("ListPayments failed: %v", err)
		}
		if len(payments) != 1 {
			t.Errorf("payments = %d, want 1", len(payments))
		}
	})

	t.Run("only the debtor may settle", func(t *testing.T) {
		env, splitID := setup(t)

		for _, user := range []string{"payer", "other"} {
			if _, err := env.ledger.Settle(ctx, splitID, user); !errors.Is(err, ErrForbidden) {
				t.Errorf("Settle as %s error = %v, want ErrForbidden", user, err)
			}
		}

		// Nothing changed: the debtor can still settle.
		if _, err := env.ledger.Settle(ctx, splitID, "debtor"); err != nil {
			t.Errorf("Settle after forbidden attempts failed: %v", err)
		}
	})

	t.Run("unknown split is not found", func(t *testing.T) {
		env, _ := setup(t)
		if _, err := env.ledger.Settle(ctx, "nonexistent", "debtor"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Settle error = %v, want ErrNotFound", err)
		}
	})
}

func TestRecordPayment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "alice", "bob")

	payment, err := env.ledger.RecordPayment(ctx, "alice", "bob", money.MustParse("25.00"), "rent share")
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if payment.Status != models.PaymentStatusPending {
		t.Errorf("status = %s, want pending", payment.Status)
	}
	if payment.ExpenditureSplitID != "" {
		t.Errorf("manual payment should not link a split, got %s", payment.ExpenditureSplitID)
	}

	if _, err := env.ledger.RecordPayment(ctx, "alice", "ghost", money.MustParse("5.00"), ""); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("unknown recipient error = %v, want ErrNotFound", err)
	}
	if _, err := env.ledger.RecordPayment(ctx, "alice", "bob", money.Zero, ""); !errors.Is(err, calculator.ErrNonPositiveAmount) {
		t.Errorf("zero amount error = %v, want ErrNonPositiveAmount", err)
	}
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "payer", "debtor", "stranger")
	occasionID, eventID := env.newEvent(t, "payer")

	_, _, err := env.ledger.CreateExpenditure(ctx, "payer", CreateExpenditureInput{
		EventID:      eventID,
		Amount:       money.MustParse("100.00"),
		Description:  "dinner",
		SplitMode:    models.SplitModeEqual,
		Participants: []string{"payer", "debtor"},
	})
	if err != nil {
		t.Fatalf("CreateExpenditure failed: %v", err)
	}

	summary, err := env.summaries.Summarize(ctx, occasionID, "payer")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if summary.TotalExpenditures.String() != "100.00" {
		t.Errorf("TotalExpenditures = %s, want 100.00", summary.TotalExpenditures)
	}
	if summary.TotalEvents != 1 {
		t.Errorf("TotalEvents = %d, want 1", summary.TotalEvents)
	}
	if len(summary.UserBalances) != 2 {
		t.Fatalf("UserBalances = %d entries, want 2", len(summary.UserBalances))
	}

	// Sorted by user ID: debtor before payer.
	debtor, payer := summary.UserBalances[0], summary.UserBalances[1]
	if debtor.UserID != "debtor" || payer.UserID != "payer" {
		t.Fatalf("participant order = %s, %s; want debtor, payer", debtor.UserID, payer.UserID)
	}
	if debtor.Balance.String() != "-50.00" || debtor.TotalOwed.String() != "50.00" {
		t.Errorf("debtor balance = %+v", debtor)
	}
	if payer.Balance.String() != "50.00" || payer.TotalOwes.String() != "50.00" {
		t.Errorf("payer balance = %+v", payer)
	}

	t.Run("occasion hidden from non-owners", func(t *testing.T) {
		if _, err := env.summaries.Summarize(ctx, occasionID, "stranger"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("stranger Summarize error = %v, want ErrNotFound", err)
		}
	})

	t.Run("empty occasion summarizes to zeros", func(t *testing.T) {
		occasion, err := env.occasions.CreateOccasion(ctx, "payer", "Empty", "")
		if err != nil {
			t.Fatalf("CreateOccasion failed: %v", err)
		}
		summary, err := env.summaries.Summarize(ctx, occasion.ID, "payer")
		if err != nil {
			t.Fatalf("Summarize failed: %v", err)
		}
		if !summary.TotalExpenditures.IsZero() || summary.TotalEvents != 0 || len(summary.UserBalances) != 0 {
			t.Errorf("expected empty summary, got %+v", summary)
		}
	})
}

func TestEventExpendituresOwnership(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, "alice", "bob")
	_, eventID := env.newEvent(t, "alice")

	if _, err := env.occasions.EventExpenditures(ctx, eventID, "alice"); err != nil {
		t.Errorf("owner EventExpenditures failed: %v", err)
	}
	if _, err := env.occasions.EventExpenditures(ctx, eventID, "bob"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("non-owner error = %v, want ErrNotFound", err)
	}
}
