package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventboard/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	uploader       domain.ImageUploader
	broadcaster    domain.Broadcaster
	contextTimeout time.Duration
}

// NewEventService creates the event service. The broadcaster is an
// explicit dependency so fan-out is testable and never ambient state.
func NewEventService(eventRepo domain.EventRepository,
	uploader domain.ImageUploader,
	broadcaster domain.Broadcaster,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		uploader:       uploader,
		broadcaster:    broadcaster,
		contextTimeout: timeout,
	}
}

func validateCreateInput(input domain.CreateEventInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(input.Description) == "" {
		return fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	}
	if input.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}
	if !input.Category.Valid() {
		return fmt.Errorf("%w: category must be one of Conference, Workshop, Meetup", domain.ErrInvalidInput)
	}
	return nil
}

func (s *eventService) Create(ctx context.Context, input domain.CreateEventInput, creatorID string) (*domain.ResolvedEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if creatorID == "" {
		return nil, fmt.Errorf("%w: creator is required", domain.ErrInvalidInput)
	}
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	imageURL := ""
	if input.Image != nil {
		url, err := s.uploader.Upload(ctx, input.Image)
		if err != nil {
			if errors.Is(err, domain.ErrUploadFailed) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
		}
		imageURL = url
	}

	now := time.Now()
	event := domain.NewEvent(input.Title, input.Description, input.Date, input.Category, imageURL, creatorID, now, now)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	resolved, err := s.eventRepo.GetResolvedByID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve event: %w", err)
	}
	if resolved.CreatedBy == nil {
		// Dangling creator reference. The row stays in place (observed
		// upstream behavior, flagged as a defect there) but the result
		// is neither returned as success nor broadcast.
		return nil, domain.ErrCreatorMissing
	}

	s.broadcaster.Publish(domain.SubjEventCreated, resolved)
	return resolved, nil
}

func (s *eventService) List(ctx context.Context) ([]*domain.ResolvedEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListResolved(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.ResolvedEvent{}
	}
	return events, nil
}

func (s *eventService) Update(ctx context.Context, eventID string, input domain.UpdateEventInput, callerID string) (*domain.ResolvedEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.IsOwnedBy(callerID) {
		return nil, domain.ErrForbidden
	}
	if input.Category != nil && !input.Category.Valid() {
		return nil, fmt.Errorf("%w: category must be one of Conference, Workshop, Meetup", domain.ErrInvalidInput)
	}

	upd := domain.EventUpdate{
		Title:       input.Title,
		Description: input.Description,
		Date:        input.Date,
		Category:    input.Category,
	}
	// Upload before persisting anything so an upload failure leaves the
	// stored record untouched.
	if input.Image != nil {
		url, err := s.uploader.Upload(ctx, input.Image)
		if err != nil {
			if errors.Is(err, domain.ErrUploadFailed) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
		}
		upd.ImageURL = &url
	}

	if _, err := s.eventRepo.Update(ctx, eventID, upd); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	resolved, err := s.eventRepo.GetResolvedByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("resolve event: %w", err)
	}
	if resolved.CreatedBy == nil {
		return nil, domain.ErrCreatorMissing
	}

	s.broadcaster.Publish(domain.SubjEventUpdated, resolved)
	return resolved, nil
}

// DeletedEvent is the payload broadcast for a deletion: the bare id,
// so observers evict their local copy.
type DeletedEvent struct {
	ID string `json:"id"`
}

func (s *eventService) Delete(ctx context.Context, eventID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if !event.IsOwnedBy(callerID) {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}

	s.broadcaster.Publish(domain.SubjEventDeleted, DeletedEvent{ID: eventID})
	return nil
}

func (s *eventService) Join(ctx context.Context, eventID, callerID string) (*domain.ResolvedEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := s.eventRepo.AddAttendee(ctx, eventID, callerID); err != nil {
		if errors.Is(err, domain.ErrAlreadyJoined) {
			return nil, domain.ErrAlreadyJoined
		}
		return nil, fmt.Errorf("add attendee: %w", err)
	}

	resolved, err := s.eventRepo.GetResolvedByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("resolve event: %w", err)
	}

	s.broadcaster.Publish(domain.SubjAttendeeUpdated, resolved)
	return resolved, nil
}
