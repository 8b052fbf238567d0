package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/splitit-app/splitit/internal/models"
	"github.com/splitit-app/splitit/internal/money"
	"github.com/splitit-app/splitit/internal/storage"
)

// CreateExpenditure persists an expenditure and its splits in one
// transaction. Either every row lands or none do.
func (s *SQLiteStore) CreateExpenditure(ctx context.Context, exp *models.Expenditure, splits []*models.ExpenditureSplit) error {
	if exp.ID == "" {
		exp.ID = uuid.New().String()
	}
	if exp.CreatedAt == 0 {
		exp.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenditures (id, event_id, amount_cents, description, paid_by, split_mode, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		exp.ID, exp.EventID, exp.Amount.Cents(), exp.Description, exp.PaidBy, exp.SplitMode, exp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expenditure: %w", err)
	}

	for _, split := range splits {
		if split.ID == "" {
			split.ID = uuid.New().String()
		}
		if split.CreatedAt == 0 {
			split.CreatedAt = exp.CreatedAt
		}
		split.ExpenditureID = exp.ID

		_, err = tx.ExecContext(ctx,
			"INSERT INTO expenditure_splits (id, expenditure_id, user_id, amount_cents, is_paid, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			split.ID, split.ExpenditureID, split.UserID, split.Amount.Cents(), split.IsPaid, split.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split for user %s: %w", split.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListExpendituresByEvent lists an event's expenditures, newest first.
func (s *SQLiteStore) ListExpendituresByEvent(ctx context.Context, eventID string) ([]*models.Expenditure, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, event_id, amount_cents, description, paid_by, split_mode, created_at FROM expenditures WHERE event_id = ? ORDER BY created_at DESC, id",
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenditures: %w", err)
	}
	defer rows.Close()

	var exps []*models.Expenditure
	for rows.Next() {
		exp := &models.Expenditure{}
		var cents int64
		if err := rows.Scan(&exp.ID, &exp.EventID, &cents, &exp.Description, &exp.PaidBy, &exp.SplitMode, &exp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expenditure: %w", err)
		}
		exp.Amount = money.FromCents(cents)
		exps = append(exps, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenditures: %w", err)
	}
	return exps, nil
}

// GetSplit retrieves a split joined with the payer and event of its
// expenditure.
func (s *SQLiteStore) GetSplit(ctx context.Context, id string) (*models.SplitDetail, error) {
	detail := &models.SplitDetail{}
	var cents int64
	err := s.db.QueryRowContext(ctx,
		`SELECT s.id, s.expenditure_id, s.user_id, s.amount_cents, s.is_paid, s.created_at, e.paid_by, e.event_id
		 FROM expenditure_splits s
		 JOIN expenditures e ON e.id = s.expenditure_id
		 WHERE s.id = ?`,
		id,
	).Scan(&detail.ID, &detail.ExpenditureID, &detail.UserID, &cents, &detail.IsPaid, &detail.CreatedAt, &detail.PaidBy, &detail.EventID)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}
	detail.Amount = money.FromCents(cents)
	return detail, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// buildSumQuery translates a SplitFilter into a SUM query over split rows.
func buildSumQuery(f storage.SplitFilter) (string, []any) {
	query := `SELECT COALESCE(SUM(s.amount_cents), 0)
		 FROM expenditure_splits s
		 JOIN expenditures e ON e.id = s.expenditure_id`

	var conds []string
	var args []any

	if f.UserID != "" {
		conds = append(conds, "s.user_id = ?")
		args = append(args, f.UserID)
	}
	if f.PaidBy != "" {
		conds = append(conds, "e.paid_by = ?")
		args = append(args, f.PaidBy)
	}
	if f.ExcludeUserID != "" {
		conds = append(conds, "s.user_id != ?")
		args = append(args, f.ExcludeUserID)
	}
	if f.ExcludePaidBy != "" {
		conds = append(conds, "e.paid_by != ?")
		args = append(args, f.ExcludePaidBy)
	}
	if f.EventIDs != nil {
		if len(f.EventIDs) == 0 {
			conds = append(conds, "1 = 0")
		} else {
			placeholders := strings.Repeat("?, ", len(f.EventIDs))
			conds = append(conds, "e.event_id IN ("+placeholders[:len(placeholders)-2]+")")
			for _, id := range f.EventIDs {
				args = append(args, id)
			}
		}
	}
	if f.IsPaid != nil {
		conds = append(conds, "s.is_paid = ?")
		args = append(args, *f.IsPaid)
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	return query, args
}

func sumSplits(ctx context.Context, q querier, f storage.SplitFilter) (money.Money, error) {
	query, args := buildSumQuery(f)
	var cents int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&cents); err != nil {
		return money.Zero, fmt.Errorf("failed to sum splits: %w", err)
	}
	return money.FromCents(cents), nil
}

// SumSplits returns the sum of split amounts matching the filter.
func (s *SQLiteStore) SumSplits(ctx context.Context, f storage.SplitFilter) (money.Money, error) {
	return sumSplits(ctx, s.db, f)
}

// SumSplitsBatch evaluates every filter inside one read transaction so the
// sums come from a single consistent snapshot.
func (s *SQLiteStore) SumSplitsBatch(ctx context.Context, filters []storage.SplitFilter) ([]money.Money, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer tx.Rollback()

	sums := make([]money.Money, len(filters))
	for i, f := range filters {
		sums[i], err = sumSplits(ctx, tx, f)
		if err != nil {
			return nil, err
		}
	}
	return sums, tx.Commit()
}

// SumExpenditures returns gross spend over the given events.
func (s *SQLiteStore) SumExpenditures(ctx context.Context, eventIDs []string) (money.Money, error) {
	if len(eventIDs) == 0 {
		return money.Zero, nil
	}
	placeholders := strings.Repeat("?, ", len(eventIDs))
	query := "SELECT COALESCE(SUM(amount_cents), 0) FROM expenditures WHERE event_id IN (" + placeholders[:len(placeholders)-2] + ")"
	args := make([]any, len(eventIDs))
	for i, id := range eventIDs {
		args[i] = id
	}

	var cents int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&cents); err != nil {
		return money.Zero, fmt.Errorf("failed to sum expenditures: %w", err)
	}
	return money.FromCents(cents), nil
}

// ListParticipants returns the deduplicated union of payers and debtors
// across the given events, sorted by user ID.
func (s *SQLiteStore) ListParticipants(ctx context.Context, eventIDs []string) ([]string, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?, ", len(eventIDs))
	in := "(" + placeholders[:len(placeholders)-2] + ")"
	query := `SELECT paid_by AS user_id FROM expenditures WHERE event_id IN ` + in + `
		 UNION
		 SELECT s.user_id FROM expenditure_splits s
		 JOIN expenditures e ON e.id = s.expenditure_id
		 WHERE e.event_id IN ` + in + `
		 ORDER BY user_id`

	args := make([]any, 0, 2*len(eventIDs))
	for i := 0; i < 2; i++ {
		for _, id := range eventIDs {
			args = append(args, id)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		users = append(users, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return users, nil
}

// CreatePayment persists a payment record.
func (s *SQLiteStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	preparePayment(payment)
	_, err := s.db.ExecContext(ctx, insertPaymentSQL, paymentArgs(payment)...)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// ListPaymentsByUser lists payments where the user is sender or receiver.
func (s *SQLiteStore) ListPaymentsByUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, from_user_id, to_user_id, amount_cents, description, status, expenditure_split_id, created_at
		 FROM payments WHERE from_user_id = ? OR to_user_id = ? ORDER BY created_at DESC, id`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment := &models.Payment{}
		var cents int64
		var description, splitID sql.NullString
		if err := rows.Scan(&payment.ID, &payment.FromUserID, &payment.ToUserID, &cents,
			&description, &payment.Status, &splitID, &payment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payment.Amount = money.FromCents(cents)
		payment.Description = description.String
		payment.ExpenditureSplitID = splitID.String
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}

// SettleSplit flips the split to paid and records the settlement payment in
// one transaction. The UPDATE carries the is_paid = 0 guard, so of two
// concurrent settlements exactly one sees a row change; the other gets
// ErrConflict and writes nothing.
func (s *SQLiteStore) SettleSplit(ctx context.Context, splitID string, payment *models.Payment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE expenditure_splits SET is_paid = 1 WHERE id = ? AND is_paid = 0",
		splitID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark split paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM expenditure_splits WHERE id = ?", splitID).Scan(&exists)
		if err == sql.ErrNoRows {
			return storage.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check split existence: %w", err)
		}
		return storage.ErrConflict
	}

	preparePayment(payment)
	payment.ExpenditureSplitID = splitID
	if _, err := tx.ExecContext(ctx, insertPaymentSQL, paymentArgs(payment)...); err != nil {
		return fmt.Errorf("failed to insert settlement payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settlement: %w", err)
	}
	return nil
}

const insertPaymentSQL = `INSERT INTO payments
	(id, from_user_id, to_user_id, amount_cents, description, status, expenditure_split_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func preparePayment(payment *models.Payment) {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}
}

func paymentArgs(payment *models.Payment) []any {
	var description any
	if payment.Description != "" {
		description = payment.Description
	}
	var splitID any
	if payment.ExpenditureSplitID != "" {
		splitID = payment.ExpenditureSplitID
	}
	return []any{
		payment.ID, payment.FromUserID, payment.ToUserID, payment.Amount.Cents(),
		description, payment.Status, splitID, payment.CreatedAt,
	}
}
