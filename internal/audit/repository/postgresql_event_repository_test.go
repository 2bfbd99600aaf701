package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/elioti/elioti/internal/audit/domain"
)

func newTestEvent() *auditDomain.Event {
	return &auditDomain.Event{
		ID:        uuid.Must(uuid.NewV7()),
		RequestID: "req-123",
		UserID:    "user-1",
		Action:    auditDomain.ActionAuthSuccess,
		Details:   "GET /v1/users/user-1/transactions",
		IP:        "203.0.113.10",
		UserAgent: "curl/8.5.0",
		Signature: "deadbeef",
		CreatedAt: time.Now().UTC(),
	}
}

func TestPostgreSQLEventRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLEventRepository(db)
	event := newTestEvent()

	mock.ExpectExec("INSERT INTO audit_events").
		WithArgs(
			event.ID,
			event.RequestID,
			event.UserID,
			event.Action,
			event.Details,
			event.IP,
			event.UserAgent,
			event.Signature,
			event.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Create(context.Background(), event)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLEventRepository_Create_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLEventRepository(db)
	event := newTestEvent()

	mock.ExpectExec("INSERT INTO audit_events").
		WillReturnError(assert.AnError)

	err = repo.Create(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create audit event")
}

func TestPostgreSQLEventRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLEventRepository(db)
	event := newTestEvent()

	rows := sqlmock.NewRows([]string{
		"id", "request_id", "user_id", "action", "details", "ip", "user_agent", "signature", "created_at",
	}).AddRow(
		event.ID,
		event.RequestID,
		event.UserID,
		event.Action,
		event.Details,
		event.IP,
		event.UserAgent,
		event.Signature,
		event.CreatedAt,
	)

	mock.ExpectQuery("SELECT (.+) FROM audit_events").
		WithArgs(0, 100).
		WillReturnRows(rows)

	events, err := repo.List(context.Background(), 0, 100)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.ID, events[0].ID)
	assert.Equal(t, event.Action, events[0].Action)
	assert.Equal(t, event.Signature, events[0].Signature)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLEventRepository_List_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLEventRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "request_id", "user_id", "action", "details", "ip", "user_agent", "signature", "created_at",
	})

	mock.ExpectQuery("SELECT (.+) FROM audit_events").
		WithArgs(0, 100).
		WillReturnRows(rows)

	events, err := repo.List(context.Background(), 0, 100)
	require.NoError(t, err)
	assert.Empty(t, events)
}
