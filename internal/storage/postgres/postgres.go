// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Store interface. Amounts are NUMERIC(12,2) columns; Postgres sums
// NUMERIC exactly, so aggregation never goes through floats.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/splitit-app/splitit/internal/models"
	"github.com/splitit-app/splitit/internal/money"
	"github.com/splitit-app/splitit/internal/storage"
)

// Ensure PostgresStore implements storage.Store
var _ storage.Store = (*PostgresStore)(nil)

// PostgresStore implements storage.Store using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// New connects to Postgres with the given DSN and runs migrations.
func New(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS occasions (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    created_by TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    occasion_id TEXT REFERENCES occasions(id) ON DELETE CASCADE,
    created_by TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS expenditures (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
    description TEXT NOT NULL,
    paid_by TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    split_mode TEXT NOT NULL CHECK (split_mode IN ('equal', 'custom')),
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS expenditure_splits (
    id TEXT PRIMARY KEY,
    expenditure_id TEXT NOT NULL REFERENCES expenditures(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
    is_paid BOOLEAN NOT NULL DEFAULT FALSE,
    created_at BIGINT NOT NULL,
    UNIQUE (expenditure_id, user_id)
);

CREATE TABLE IF NOT EXISTS payments (
    id TEXT PRIMARY KEY,
    from_user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    to_user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
    description TEXT,
    status TEXT NOT NULL CHECK (status IN ('pending', 'completed', 'cancelled')),
    expenditure_split_id TEXT UNIQUE REFERENCES expenditure_splits(id) ON DELETE SET NULL,
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_occasion_id ON events(occasion_id);
CREATE INDEX IF NOT EXISTS idx_expenditures_event_id ON expenditures(event_id);
CREATE INDEX IF NOT EXISTS idx_expenditures_paid_by ON expenditures(paid_by);
CREATE INDEX IF NOT EXISTS idx_splits_expenditure_id ON expenditure_splits(expenditure_id);
CREATE INDEX IF NOT EXISTS idx_splits_user_id ON expenditure_splits(user_id);
`

// CreateUser persists a new user account.
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, display_name, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)",
		user.ID, user.Email, user.DisplayName, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email address.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = $1", email)
}

// GetUserByID retrieves a user by ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id = $1", id)
}

func (s *PostgresStore) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, display_name, password_hash, created_at FROM users WHERE "+where,
		arg,
	).Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// CreateOccasion persists a new occasion.
func (s *PostgresStore) CreateOccasion(ctx context.Context, occasion *models.Occasion) error {
	if occasion.ID == "" {
		occasion.ID = uuid.New().String()
	}
	if occasion.CreatedAt == 0 {
		occasion.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO occasions (id, name, description, created_by, created_at) VALUES ($1, $2, $3, $4, $5)",
		occasion.ID, occasion.Name, occasion.Description, occasion.CreatedBy, occasion.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert occasion: %w", err)
	}
	return nil
}

// GetOccasion retrieves an occasion owned by createdBy.
func (s *PostgresStore) GetOccasion(ctx context.Context, id, createdBy string) (*models.Occasion, error) {
	occasion := &models.Occasion{}
	var description sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_by, created_at FROM occasions WHERE id = $1 AND created_by = $2",
		id, createdBy,
	).Scan(&occasion.ID, &occasion.Name, &description, &occasion.CreatedBy, &occasion.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get occasion: %w", err)
	}
	occasion.Description = description.String
	return occasion, nil
}

// ListOccasions lists occasions created by the user, newest first.
func (s *PostgresStore) ListOccasions(ctx context.Context, createdBy string) ([]*models.Occasion, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description, created_by, created_at FROM occasions WHERE created_by = $1 ORDER BY created_at DESC, id",
		createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list occasions: %w", err)
	}
	defer rows.Close()

	var occasions []*models.Occasion
	for rows.Next() {
		occasion := &models.Occasion{}
		var description sql.NullString
		if err := rows.Scan(&occasion.ID, &occasion.Name, &description, &occasion.CreatedBy, &occasion.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan occasion: %w", err)
		}
		occasion.Description = description.String
		occasions = append(occasions, occasion)
	}
	return occasions, rows.Err()
}

// CreateEvent persists a new event.
func (s *PostgresStore) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt == 0 {
		event.CreatedAt = time.Now().Unix()
	}
	var occasionID any
	if event.OccasionID != "" {
		occasionID = event.OccasionID
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, name, description, occasion_id, created_by, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		event.ID, event.Name, event.Description, occasionID, event.CreatedBy, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// GetEvent retrieves an event by ID.
func (s *PostgresStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	event := &models.Event{}
	var description, occasionID sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, occasion_id, created_by, created_at FROM events WHERE id = $1",
		id,
	).Scan(&event.ID, &event.Name, &description, &occasionID, &event.CreatedBy, &event.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	event.Description = description.String
	event.OccasionID = occasionID.String
	return event, nil
}

// ListEventsByOccasion lists an occasion's events, newest first.
func (s *PostgresStore) ListEventsByOccasion(ctx context.Context, occasionID string) ([]*models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description, occasion_id, created_by, created_at FROM events WHERE occasion_id = $1 ORDER BY created_at DESC, id",
		occasionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		var description, occID sql.NullString
		if err := rows.Scan(&event.ID, &event.Name, &description, &occID, &event.CreatedBy, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.Description = description.String
		event.OccasionID = occID.String
		events = append(events, event)
	}
	return events, rows.Err()
}

// CreateExpenditure persists an expenditure and its splits in one
// transaction.
func (s *PostgresStore) CreateExpenditure(ctx context.Context, exp *models.Expenditure, splits []*models.ExpenditureSplit) error {
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
		"INSERT INTO expenditures (id, event_id, amount, description, paid_by, split_mode, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		exp.ID, exp.EventID, exp.Amount, exp.Description, exp.PaidBy, exp.SplitMode, exp.CreatedAt,
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
			"INSERT INTO expenditure_splits (id, expenditure_id, user_id, amount, is_paid, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
			split.ID, split.ExpenditureID, split.UserID, split.Amount, split.IsPaid, split.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split for user %s: %w", split.UserID, err)
		}
	}

	return tx.Commit()
}

// ListExpendituresByEvent lists an event's expenditures, newest first.
func (s *PostgresStore) ListExpendituresByEvent(ctx context.Context, eventID string) ([]*models.Expenditure, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, event_id, amount, description, paid_by, split_mode, created_at FROM expenditures WHERE event_id = $1 ORDER BY created_at DESC, id",
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenditures: %w", err)
	}
	defer rows.Close()

	var exps []*models.Expenditure
	for rows.Next() {
		exp := &models.Expenditure{}
		if err := rows.Scan(&exp.ID, &exp.EventID, &exp.Amount, &exp.Description, &exp.PaidBy, &exp.SplitMode, &exp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expenditure: %w", err)
		}
		exps = append(exps, exp)
	}
	return exps, rows.Err()
}

// GetSplit retrieves a split joined with its expenditure's payer and event.
func (s *PostgresStore) GetSplit(ctx context.Context, id string) (*models.SplitDetail, error) {
	detail := &models.SplitDetail{}
	err := s.db.QueryRowContext(ctx,
		`SELECT s.id, s.expenditure_id, s.user_id, s.amount, s.is_paid, s.created_at, e.paid_by, e.event_id
		 FROM expenditure_splits s
		 JOIN expenditures e ON e.id = s.expenditure_id
		 WHERE s.id = $1`,
		id,
	).Scan(&detail.ID, &detail.ExpenditureID, &detail.UserID, &detail.Amount, &detail.IsPaid, &detail.CreatedAt, &detail.PaidBy, &detail.EventID)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}
	return detail, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func buildSumQuery(f storage.SplitFilter) (string, []any) {
	query := `SELECT COALESCE(SUM(s.amount), 0)
		 FROM expenditure_splits s
		 JOIN expenditures e ON e.id = s.expenditure_id`

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.UserID != "" {
		conds = append(conds, "s.user_id = "+arg(f.UserID))
	}
	if f.PaidBy != "" {
		conds = append(conds, "e.paid_by = "+arg(f.PaidBy))
	}
	if f.ExcludeUserID != "" {
		conds = append(conds, "s.user_id != "+arg(f.ExcludeUserID))
	}
	if f.ExcludePaidBy != "" {
		conds = append(conds, "e.paid_by != "+arg(f.ExcludePaidBy))
	}
	if f.EventIDs != nil {
		if len(f.EventIDs) == 0 {
			conds = append(conds, "FALSE")
		} else {
			placeholders := make([]string, len(f.EventIDs))
			for i, id := range f.EventIDs {
				placeholders[i] = arg(id)
			}
			conds = append(conds, "e.event_id IN ("+strings.Join(placeholders, ", ")+")")
		}
	}
	if f.IsPaid != nil {
		conds = append(conds, "s.is_paid = "+arg(*f.IsPaid))
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	return query, args
}

func sumSplits(ctx context.Context, q querier, f storage.SplitFilter) (money.Money, error) {
	query, args := buildSumQuery(f)
	var sum money.Money
	if err := q.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return money.Zero, fmt.Errorf("failed to sum splits: %w", err)
	}
	return sum, nil
}

// SumSplits returns the sum of split amounts matching the filter.
func (s *PostgresStore) SumSplits(ctx context.Context, f storage.SplitFilter) (money.Money, error) {
	return sumSplits(ctx, s.db, f)
}

// SumSplitsBatch evaluates every filter inside one repeatable-read
// transaction so the sums come from a single consistent snapshot.
func (s *PostgresStore) SumSplitsBatch(ctx context.Context, filters []storage.SplitFilter) ([]money.Money, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
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
func (s *PostgresStore) SumExpenditures(ctx context.Context, eventIDs []string) (money.Money, error) {
	if len(eventIDs) == 0 {
		return money.Zero, nil
	}
	var sum money.Money
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM expenditures WHERE event_id = ANY($1)",
		pq.Array(eventIDs),
	).Scan(&sum)
	if err != nil {
		return money.Zero, fmt.Errorf("failed to sum expenditures: %w", err)
	}
	return sum, nil
}

// ListParticipants returns the deduplicated union of payers and debtors
// across the given events, sorted by user ID.
func (s *PostgresStore) ListParticipants(ctx context.Context, eventIDs []string) ([]string, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT paid_by AS user_id FROM expenditures WHERE event_id = ANY($1)
		 UNION
		 SELECT s.user_id FROM expenditure_splits s
		 JOIN expenditures e ON e.id = s.expenditure_id
		 WHERE e.event_id = ANY($1)
		 ORDER BY user_id`,
		pq.Array(eventIDs),
	)
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
	return users, rows.Err()
}

// CreatePayment persists a payment record.
func (s *PostgresStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	preparePayment(payment)
	_, err := s.db.ExecContext(ctx, insertPaymentSQL, paymentArgs(payment)...)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// ListPaymentsByUser lists payments where the user is sender or receiver.
func (s *PostgresStore) ListPaymentsByUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, from_user_id, to_user_id, amount, description, status, expenditure_split_id, created_at
		 FROM payments WHERE from_user_id = $1 OR to_user_id = $1 ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment := &models.Payment{}
		var description, splitID sql.NullString
		if err := rows.Scan(&payment.ID, &payment.FromUserID, &payment.ToUserID, &payment.Amount,
			&description, &payment.Status, &splitID, &payment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payment.Description = description.String
		payment.ExpenditureSplitID = splitID.String
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

// SettleSplit flips the split to paid and records the settlement payment in
// one transaction, guarded by a compare-and-set on is_paid.
func (s *PostgresStore) SettleSplit(ctx context.Context, splitID string, payment *models.Payment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE expenditure_splits SET is_paid = TRUE WHERE id = $1 AND is_paid = FALSE",
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
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM expenditure_splits WHERE id = $1", splitID).Scan(&exists)
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

	return tx.Commit()
}

const insertPaymentSQL = `INSERT INTO payments
	(id, from_user_id, to_user_id, amount, description, status, expenditure_split_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

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
		payment.ID, payment.FromUserID, payment.ToUserID, payment.Amount,
		description, payment.Status, splitID, payment.CreatedAt,
	}
}

