package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for event operations.
var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidInput   = errors.New("invalid input")
	ErrAlreadyJoined  = errors.New("already joined")
	ErrCreatorMissing = errors.New("event creator missing")
)

// Category is the fixed set of event categories.
type Category string

const (
	CategoryConference Category = "Conference"
	CategoryWorkshop   Category = "Workshop"
	CategoryMeetup     Category = "Meetup"
)

// Valid reports whether c is a member of the category enum.
func (c Category) Valid() bool {
	switch c {
	case CategoryConference, CategoryWorkshop, CategoryMeetup:
		return true
	}
	return false
}

// Event represents a community event.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Category    Category  `json:"category"`
	ImageURL    string    `json:"image_url"`
	CreatedByID string    `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(title, description string, date time.Time, category Category, imageURL, createdByID string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Date:        date,
		Category:    category,
		ImageURL:    imageURL,
		CreatedByID: createdByID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// IsOwnedBy reports whether userID is the event's creator. The creator is
// set once at creation; every mutating operation authorizes against it.
func (e *Event) IsOwnedBy(userID string) bool {
	return userID != "" && e.CreatedByID == userID
}

// UserSummary is the {id, name, email} projection of a referenced user.
// swagger:model UserSummary
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ResolvedEvent is an Event whose creator and attendee references have
// been resolved to user summaries. Attendees preserve join order.
// swagger:model ResolvedEvent
type ResolvedEvent struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Date        time.Time     `json:"date"`
	Category    Category      `json:"category"`
	ImageURL    string        `json:"image_url"`
	CreatedBy   *UserSummary  `json:"created_by"`
	Attendees   []UserSummary `json:"attendees"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// EventUpdate carries a partial update for the repository. Nil fields are
// left unchanged; they are never cleared.
type EventUpdate struct {
	Title       *string
	Description *string
	Date        *time.Time
	Category    *Category
	ImageURL    *string
}

// EventRepository defines the interface for event storage.
//
// Reference resolution is an explicit second read: mutations operate on
// raw rows, then GetResolvedByID replaces creator and attendee ids with
// user summaries before anything is returned or broadcast.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error
	// AddAttendee appends userID to the event's attendee list. Returns
	// ErrAlreadyJoined if the user is already on it.
	AddAttendee(ctx context.Context, eventID, userID string) error
	GetResolvedByID(ctx context.Context, id string) (*ResolvedEvent, error)
	ListResolved(ctx context.Context) ([]*ResolvedEvent, error)
}

// CreateEventInput holds the fields for creating an event.
type CreateEventInput struct {
	Title       string
	Description string
	Date        time.Time
	Category    Category
	Image       *ImagePayload
}

// UpdateEventInput holds a partial set of fields for updating an event.
// Nil fields are left unchanged.
type UpdateEventInput struct {
	Title       *string
	Description *string
	Date        *time.Time
	Category    *Category
	Image       *ImagePayload
}

// EventService defines the business logic for the event lifecycle.
type EventService interface {
	Create(ctx context.Context, input CreateEventInput, creatorID string) (*ResolvedEvent, error)
	List(ctx context.Context) ([]*ResolvedEvent, error)
	Update(ctx context.Context, eventID string, input UpdateEventInput, callerID string) (*ResolvedEvent, error)
	Delete(ctx context.Context, eventID, callerID string) error
	Join(ctx context.Context, eventID, callerID string) (*ResolvedEvent, error)
}
