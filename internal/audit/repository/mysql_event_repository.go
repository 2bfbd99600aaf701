package repository

import (
	"context"
	"database/sql"

	auditDomain "github.com/elioti/elioti/internal/audit/domain"
	"github.com/elioti/elioti/internal/database"
	apperrors "github.com/elioti/elioti/internal/errors"
)

// MySQLEventRepository implements audit event persistence for MySQL.
type MySQLEventRepository struct {
	db *sql.DB
}

// NewMySQLEventRepository creates a new MySQL audit event repository.
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{db: db}
}

// Create inserts a new audit event.
func (r *MySQLEventRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO audit_events (id, request_id, user_id, action, details, ip, user_agent, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	// Convert UUID to bytes for MySQL BINARY(16)
	uuidBytes, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		uuidBytes,
		event.RequestID,
		event.UserID,
		event.Action,
		event.Details,
		event.IP,
		event.UserAgent,
		event.Signature,
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}
	return nil
}

// List retrieves audit events ordered by created_at descending with pagination.
func (r *MySQLEventRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*auditDomain.Event, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, request_id, user_id, action, details, ip, user_agent, signature, created_at
			  FROM audit_events
			  ORDER BY created_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer rows.Close()

	events := []*auditDomain.Event{}
	for rows.Next() {
		var event auditDomain.Event
		var idBytes []byte
		if err := rows.Scan(
			&idBytes,
			&event.RequestID,
			&event.UserID,
			&event.Action,
			&event.Details,
			&event.IP,
			&event.UserAgent,
			&event.Signature,
			&event.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit event")
		}
		if err := event.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}

	return events, nil
}
