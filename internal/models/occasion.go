package models

// Occasion groups related events, e.g. "Lisbon trip" or "March roadtrip".
type Occasion struct {
	// ID is the unique identifier for the occasion (UUID format).
	ID string `json:"id"`

	// Name is the display name of the occasion.
	Name string `json:"name"`

	// Description is an optional free-form note.
	Description string `json:"description,omitempty"`

	// CreatedBy is the user ID of the occasion's creator. Occasions are
	// visible only to their creator.
	CreatedBy string `json:"created_by"`

	// CreatedAt is the Unix timestamp when the occasion was created.
	CreatedAt int64 `json:"created_at"`
}

// Event groups expenditures within an occasion, e.g. one dinner.
type Event struct {
	// ID is the unique identifier for the event (UUID format).
	ID string `json:"id"`

	// Name is the display name of the event.
	Name string `json:"name"`

	// Description is an optional free-form note.
	Description string `json:"description,omitempty"`

	// OccasionID is the occasion this event belongs to. Empty for
	// standalone events.
	OccasionID string `json:"occasion_id,omitempty"`

	// CreatedBy is the user ID of the event's creator.
	CreatedBy string `json:"created_by"`

	// CreatedAt is the Unix timestamp when the event was created.
	CreatedAt int64 `json:"created_at"`
}
