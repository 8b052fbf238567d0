package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitit-app/splitit/internal/models"
	"github.com/splitit-app/splitit/internal/storage"
)

// CreateOccasion persists a new occasion.
func (s *SQLiteStore) CreateOccasion(ctx context.Context, occasion *models.Occasion) error {
	if occasion.ID == "" {
		occasion.ID = uuid.New().String()
	}
	if occasion.CreatedAt == 0 {
		occasion.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO occasions (id, name, description, created_by, created_at) VALUES (?, ?, ?, ?, ?)",
		occasion.ID, occasion.Name, occasion.Description, occasion.CreatedBy, occasion.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert occasion: %w", err)
	}
	return nil
}

// GetOccasion retrieves an occasion owned by createdBy. A missing occasion
// and someone else's occasion are both ErrNotFound.
func (s *SQLiteStore) GetOccasion(ctx context.Context, id, createdBy string) (*models.Occasion, error) {
	occasion := &models.Occasion{}
	var description sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_by, created_at FROM occasions WHERE id = ? AND created_by = ?",
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
func (s *SQLiteStore) ListOccasions(ctx context.Context, createdBy string) ([]*models.Occasion, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description, created_by, created_at FROM occasions WHERE created_by = ? ORDER BY created_at DESC, id",
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate occasions: %w", err)
	}
	return occasions, nil
}

// CreateEvent persists a new event.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *models.Event) error {
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
		"INSERT INTO events (id, name, description, occasion_id, created_by, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		event.ID, event.Name, event.Description, occasionID, event.CreatedBy, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// GetEvent retrieves an event by ID.
func (s *SQLiteStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	event := &models.Event{}
	var description, occasionID sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, occasion_id, created_by, created_at FROM events WHERE id = ?",
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
func (s *SQLiteStore) ListEventsByOccasion(ctx context.Context, occasionID string) ([]*models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description, occasion_id, created_by, created_at FROM events WHERE occasion_id = ? ORDER BY created_at DESC, id",
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}
