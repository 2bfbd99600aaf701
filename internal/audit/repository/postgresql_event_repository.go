// Package repository provides audit event persistence implementations.
package repository

import (
	"context"
	"database/sql"

	auditDomain "github.com/elioti/elioti/internal/audit/domain"
	"github.com/elioti/elioti/internal/database"
	apperrors "github.com/elioti/elioti/internal/errors"
)

// PostgreSQLEventRepository implements audit event persistence for PostgreSQL.
type PostgreSQLEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLEventRepository creates a new PostgreSQL audit event repository.
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{db: db}
}

// Create inserts a new audit event.
func (r *PostgreSQLEventRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO audit_events (id, request_id, user_id, action, details, ip, user_agent, signature, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
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
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}
	return nil
}

// List retrieves audit events ordered by created_at descending with pagination.
func (r *PostgreSQLEventRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*auditDomain.Event, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, request_id, user_id, action, details, ip, user_agent, signature, created_at
			  FROM audit_events
			  ORDER BY created_at DESC
			  OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer rows.Close()

	events := []*auditDomain.Event{}
	for rows.Next() {
		var event auditDomain.Event
		if err := rows.Scan(
			&event.ID,
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
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}

	return events, nil
}
