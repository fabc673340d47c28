package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"eventboard/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date, category, image_url, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, string(e.Category), e.ImageURL, e.CreatedByID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, title, description, date, category, image_url, created_by, created_at, updated_at
		FROM events
		WHERE id = $1
	`
	e := &domain.Event{}
	var imageURL sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Category, &imageURL, &e.CreatedByID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	e.ImageURL = imageURL.String
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if upd.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *upd.Title)
		n++
	}
	if upd.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *upd.Description)
		n++
	}
	if upd.Date != nil {
		setClauses = append(setClauses, fmt.Sprintf("date = $%d", n))
		args = append(args, *upd.Date)
		n++
	}
	if upd.Category != nil {
		setClauses = append(setClauses, fmt.Sprintf("category = $%d", n))
		args = append(args, string(*upd.Category))
		n++
	}
	if upd.ImageURL != nil {
		setClauses = append(setClauses, fmt.Sprintf("image_url = $%d", n))
		args = append(args, *upd.ImageURL)
		n++
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING id, title, description, date, category, image_url, created_by, created_at, updated_at
	`, strings.Join(setClauses, ", "), n)
	e := &domain.Event{}
	var imageURL sql.NullString
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Category, &imageURL, &e.CreatedByID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	e.ImageURL = imageURL.String
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) AddAttendee(ctx context.Context, eventID, userID string) error {
	query := `
		INSERT INTO event_attendees (event_id, user_id, joined_at)
		VALUES ($1, $2, NOW())
	`
	_, err := r.DB.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrAlreadyJoined
		}
		return err
	}
	return nil
}

func (r *eventRepository) GetResolvedByID(ctx context.Context, id string) (*domain.ResolvedEvent, error) {
	query := `
		SELECT e.id, e.title, e.description, e.date, e.category, e.image_url, e.created_at, e.updated_at,
		       u.id, u.name, u.email
		FROM events e
		LEFT JOIN users u ON u.id = e.created_by
		WHERE e.id = $1
	`
	re := &domain.ResolvedEvent{}
	var imageURL sql.NullString
	var creatorID, creatorName, creatorEmail sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&re.ID, &re.Title, &re.Description, &re.Date, &re.Category, &imageURL, &re.CreatedAt, &re.UpdatedAt,
		&creatorID, &creatorName, &creatorEmail,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	re.ImageURL = imageURL.String
	if creatorID.Valid {
		re.CreatedBy = &domain.UserSummary{ID: creatorID.String, Name: creatorName.String, Email: creatorEmail.String}
	}
	attendees, err := r.listAttendees(ctx, []string{re.ID})
	if err != nil {
		return nil, err
	}
	re.Attendees = attendees[re.ID]
	if re.Attendees == nil {
		re.Attendees = []domain.UserSummary{}
	}
	return re, nil
}

func (r *eventRepository) ListResolved(ctx context.Context) ([]*domain.ResolvedEvent, error) {
	query := `
		SELECT e.id, e.title, e.description, e.date, e.category, e.image_url, e.created_at, e.updated_at,
		       u.id, u.name, u.email
		FROM events e
		LEFT JOIN users u ON u.id = e.created_by
		ORDER BY e.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.ResolvedEvent, 0)
	ids := make([]string, 0)
	for rows.Next() {
		re := &domain.ResolvedEvent{}
		var imageURL sql.NullString
		var creatorID, creatorName, creatorEmail sql.NullString
		if err := rows.Scan(
			&re.ID, &re.Title, &re.Description, &re.Date, &re.Category, &imageURL, &re.CreatedAt, &re.UpdatedAt,
			&creatorID, &creatorName, &creatorEmail,
		); err != nil {
			return nil, err
		}
		re.ImageURL = imageURL.String
		if creatorID.Valid {
			re.CreatedBy = &domain.UserSummary{ID: creatorID.String, Name: creatorName.String, Email: creatorEmail.String}
		}
		re.Attendees = []domain.UserSummary{}
		events = append(events, re)
		ids = append(ids, re.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return events, nil
	}
	attendees, err := r.listAttendees(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, re := range events {
		if a, ok := attendees[re.ID]; ok {
			re.Attendees = a
		}
	}
	return events, nil
}

// listAttendees fetches attendee summaries for the given event ids,
// keyed by event id, ordered by join time.
func (r *eventRepository) listAttendees(ctx context.Context, eventIDs []string) (map[string][]domain.UserSummary, error) {
	query := `
		SELECT a.event_id, u.id, u.name, u.email
		FROM event_attendees a
		JOIN users u ON u.id = a.user_id
		WHERE a.event_id = ANY($1)
		ORDER BY a.joined_at
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(eventIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string][]domain.UserSummary)
	for rows.Next() {
		var eventID string
		var s domain.UserSummary
		if err := rows.Scan(&eventID, &s.ID, &s.Name, &s.Email); err != nil {
			return nil, err
		}
		out[eventID] = append(out[eventID], s)
	}
	return out, rows.Err()
}
