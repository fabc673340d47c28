package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"eventboard/internal/domain"
)

func newEventRepoMock(t *testing.T) (domain.EventRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEventRepository(db), mock
}

var eventColumns = []string{"id", "title", "description", "date", "category", "image_url", "created_by", "created_at", "updated_at"}

func TestEventRepository_Create(t *testing.T) {
	repo, mock := newEventRepoMock(t)
	now := time.Now()
	e := domain.NewEvent("Go Meetup", "Monthly gathering", now, domain.CategoryMeetup, "", "u1", now, now)

	mock.ExpectQuery(`INSERT INTO events`).
		WithArgs("Go Meetup", "Monthly gathering", now, "Meetup", "", "u1", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("evt-1"))

	require.NoError(t, repo.Create(context.Background(), e))
	require.Equal(t, "evt-1", e.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_GetByID(t *testing.T) {
	repo, mock := newEventRepoMock(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, title, description, date, category, image_url, created_by, created_at, updated_at`).
		WithArgs("evt-1").
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow("evt-1", "Go Meetup", "Monthly gathering", now, "Meetup", nil, "u1", now, now))

	e, err := repo.GetByID(context.Background(), "evt-1")
	require.NoError(t, err)
	require.Equal(t, "evt-1", e.ID)
	require.Equal(t, domain.CategoryMeetup, e.Category)
	require.Empty(t, e.ImageURL)
	require.Equal(t, "u1", e.CreatedByID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	mock.ExpectQuery(`SELECT id, title, description`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(eventColumns))

	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Update(t *testing.T) {
	repo, mock := newEventRepoMock(t)
	now := time.Now()
	title := "Go Meetup (rescheduled)"
	url := "https://img.example/new.png"

	mock.ExpectQuery(`UPDATE events SET updated_at = NOW\(\), title = \$1, image_url = \$2`).
		WithArgs(title, url, "evt-1").
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow("evt-1", title, "Monthly gathering", now, "Meetup", url, "u1", now, now))

	e, err := repo.Update(context.Background(), "evt-1", domain.EventUpdate{Title: &title, ImageURL: &url})
	require.NoError(t, err)
	require.Equal(t, title, e.Title)
	require.Equal(t, url, e.ImageURL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Update_NoFields(t *testing.T) {
	// An empty update falls back to a plain read.
	repo, mock := newEventRepoMock(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, title, description`).
		WithArgs("evt-1").
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow("evt-1", "Go Meetup", "Monthly gathering", now, "Meetup", nil, "u1", now, now))

	e, err := repo.Update(context.Background(), "evt-1", domain.EventUpdate{})
	require.NoError(t, err)
	require.Equal(t, "Go Meetup", e.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Update_NotFound(t *testing.T) {
	repo, mock := newEventRepoMock(t)
	title := "x"

	mock.ExpectQuery(`UPDATE events SET`).
		WithArgs(title, "missing").
		WillReturnRows(sqlmock.NewRows(eventColumns))

	_, err := repo.Update(context.Background(), "missing", domain.EventUpdate{Title: &title})
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Delete(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
		WithArgs("evt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "evt-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.Delete(context.Background(), "missing"), domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_AddAttendee(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	mock.ExpectExec(`INSERT INTO event_attendees`).
		WithArgs("evt-1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AddAttendee(context.Background(), "evt-1", "u2"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_AddAttendee_Duplicate(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	mock.ExpectExec(`INSERT INTO event_attendees`).
		WithArgs("evt-1", "u2").
		WillReturnError(&pq.Error{Code: "23505"})

	require.ErrorIs(t, repo.AddAttendee(context.Background(), "evt-1", "u2"), domain.ErrAlreadyJoined)
	require.NoError(t, mock.ExpectationsWereMet())
}

var resolvedColumns = []string{"id", "title", "description", "date", "category", "image_url", "created_at", "updated_at", "uid", "uname", "uemail"}

func TestEventRepository_GetResolvedByID(t *testing.T) {
	repo, mock := newEventRepoMock(t)
	now := time.Now()

	mock.ExpectQuery(`FROM events e\s+LEFT JOIN users u`).
		WithArgs("evt-1").
		WillReturnRows(sqlmock.NewRows(resolvedColumns).
			AddRow("evt-1", "Go Meetup", "Monthly gathering", now, "Meetup", nil, now, now, "u1", "Alice", "alice@example.com"))
	mock.ExpectQuery(`FROM event_attendees a`).
		WithArgs(pq.Array([]string{"evt-1"})).
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "id", "name", "email"}).
			AddRow("evt-1", "u2", "Bob", "bob@example.com").
			AddRow("evt-1", "u3", "Cara", "cara@example.com"))

	re, err := repo.GetResolvedByID(context.Background(), "evt-1")
	require.NoError(t, err)
	require.NotNil(t, re.CreatedBy)
	require.Equal(t, "Alice", re.CreatedBy.Name)
	require.Len(t, re.Attendees, 2)
	require.Equal(t, "u2", re.Attendees[0].ID)
	require.Equal(t, "u3", re.Attendees[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_GetResolvedByID_DanglingCreator(t *testing.T) {
	repo, mock := newEventRepoMock(t)
	now := time.Now()

	mock.ExpectQuery(`FROM events e\s+LEFT JOIN users u`).
		WithArgs("evt-1").
		WillReturnRows(sqlmock.NewRows(resolvedColumns).
			AddRow("evt-1", "Go Meetup", "Monthly gathering", now, "Meetup", nil, now, now, nil, nil, nil))
	mock.ExpectQuery(`FROM event_attendees a`).
		WithArgs(pq.Array([]string{"evt-1"})).
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "id", "name", "email"}))

	re, err := repo.GetResolvedByID(context.Background(), "evt-1")
	require.NoError(t, err)
	require.Nil(t, re.CreatedBy)
	require.NotNil(t, re.Attendees)
	require.Empty(t, re.Attendees)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_ListResolved(t *testing.T) {
	repo, mock := newEventRepoMock(t)
	now := time.Now()

	mock.ExpectQuery(`FROM events e\s+LEFT JOIN users u ON u.id = e.created_by\s+ORDER BY e.created_at DESC`).
		WillReturnRows(sqlmock.NewRows(resolvedColumns).
			AddRow("evt-2", "Workshop", "Hands on", now, "Workshop", "https://img.example/w.png", now, now, "u1", "Alice", "alice@example.com").
			AddRow("evt-1", "Go Meetup", "Monthly gathering", now, "Meetup", nil, now, now, "u1", "Alice", "alice@example.com"))
	mock.ExpectQuery(`FROM event_attendees a`).
		WithArgs(pq.Array([]string{"evt-2", "evt-1"})).
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "id", "name", "email"}).
			AddRow("evt-1", "u2", "Bob", "bob@example.com"))

	events, err := repo.ListResolved(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "evt-2", events[0].ID)
	require.Empty(t, events[0].Attendees)
	require.Len(t, events[1].Attendees, 1)
	require.Equal(t, "Bob", events[1].Attendees[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_ListResolved_Empty(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	mock.ExpectQuery(`FROM events e\s+LEFT JOIN users u`).
		WillReturnRows(sqlmock.NewRows(resolvedColumns))

	events, err := repo.ListResolved(context.Background())
	require.NoError(t, err)
	require.NotNil(t, events)
	require.Empty(t, events)
	require.NoError(t, mock.ExpectationsWereMet())
}
