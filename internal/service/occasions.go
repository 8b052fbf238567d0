package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/splitit-app/splitit/internal/models"
	"github.com/splitit-app/splitit/internal/storage"
)

// ErrNameRequired is returned when an occasion or event has no name.
var ErrNameRequired = errors.New("name is required")

// Occasions manages occasion and event records. The ledger engine treats
// these as plain data the expenditures hang off; only creation and reads are
// exposed.
type Occasions struct {
	store storage.Store
}

// NewOccasions creates an Occasions service backed by the given store.
func NewOccasions(store storage.Store) *Occasions {
	return &Occasions{store: store}
}

// CreateOccasion records a new occasion owned by the acting user.
func (o *Occasions) CreateOccasion(ctx context.Context, actingUser, name, description string) (*models.Occasion, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	occasion := &models.Occasion{
		Name:        name,
		Description: description,
		CreatedBy:   actingUser,
	}
	if err := o.store.CreateOccasion(ctx, occasion); err != nil {
		return nil, fmt.Errorf("failed to create occasion: %w", err)
	}
	return occasion, nil
}

// ListOccasions lists the acting user's occasions.
func (o *Occasions) ListOccasions(ctx context.Context, actingUser string) ([]*models.Occasion, error) {
	return o.store.ListOccasions(ctx, actingUser)
}

// GetOccasion retrieves one of the acting user's occasions.
func (o *Occasions) GetOccasion(ctx context.Context, id, actingUser string) (*models.Occasion, error) {
	return o.store.GetOccasion(ctx, id, actingUser)
}

// CreateEvent records a new event. When occasionID is set, the occasion
// must belong to the acting user.
func (o *Occasions) CreateEvent(ctx context.Context, actingUser, name, description, occasionID string) (*models.Event, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if occasionID != "" {
		if _, err := o.store.GetOccasion(ctx, occasionID, actingUser); err != nil {
			return nil, fmt.Errorf("occasion %s: %w", occasionID, err)
		}
	}
	event := &models.Event{
		Name:        name,
		Description: description,
		OccasionID:  occasionID,
		CreatedBy:   actingUser,
	}
	if err := o.store.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

// OccasionEvents lists the events of one of the acting user's occasions.
func (o *Occasions) OccasionEvents(ctx context.Context, occasionID, actingUser string) ([]*models.Event, error) {
	if _, err := o.store.GetOccasion(ctx, occasionID, actingUser); err != nil {
		return nil, err
	}
	return o.store.ListEventsByOccasion(ctx, occasionID)
}

// EventExpenditures lists the expenditures of an event created by the
// acting user. Someone else's event is reported as not found, the same as a
// missing one.
func (o *Occasions) EventExpenditures(ctx context.Context, eventID, actingUser string) ([]*models.Expenditure, error) {
	event, err := o.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.CreatedBy != actingUser {
		return nil, storage.ErrNotFound
	}
	return o.store.ListExpendituresByEvent(ctx, eventID)
}
