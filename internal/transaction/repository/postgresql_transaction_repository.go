// Package repository provides data persistence implementations for transaction entities.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/elioti/elioti/internal/database"
	apperrors "github.com/elioti/elioti/internal/errors"
	"github.com/elioti/elioti/internal/transaction/domain"
)

// PostgreSQLTransactionRepository handles transaction persistence for PostgreSQL
type PostgreSQLTransactionRepository struct {
	db *sql.DB
}

// NewPostgreSQLTransactionRepository creates a new PostgreSQLTransactionRepository
func NewPostgreSQLTransactionRepository(db *sql.DB) *PostgreSQLTransactionRepository {
	return &PostgreSQLTransactionRepository{
		db: db,
	}
}

// Create inserts a new transaction
func (r *PostgreSQLTransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO transactions (id, user_id, amount, type, category, description, occurred_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query,
		transaction.ID, transaction.UserID, transaction.Amount, transaction.Type,
		transaction.Category, transaction.Description, transaction.OccurredAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create transaction")
	}
	return nil
}

// GetByID retrieves a transaction by id, scoped to its owner. A transaction
// belonging to another user is reported as not found.
func (r *PostgreSQLTransactionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, amount, type, category, description, occurred_at, created_at, updated_at
			  FROM transactions WHERE id = $1 AND user_id = $2`

	transaction, err := scanTransaction(querier.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get transaction by id")
	}
	return transaction, nil
}

// ListByUser retrieves a user's transactions ordered by occurred_at descending
// with pagination.
func (r *PostgreSQLTransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*domain.Transaction, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, amount, type, category, description, occurred_at, created_at, updated_at
			  FROM transactions
			  WHERE user_id = $1
			  ORDER BY occurred_at DESC
			  OFFSET $2 LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, userID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list transactions")
	}
	defer rows.Close()

	transactions := []*domain.Transaction{}
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan transaction")
		}
		transactions = append(transactions, transaction)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate transactions")
	}

	return transactions, nil
}

// Update modifies an existing transaction, scoped to its owner.
func (r *PostgreSQLTransactionRepository) Update(ctx context.Context, transaction *domain.Transaction) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE transactions
			  SET amount = $1, type = $2, category = $3, description = $4, occurred_at = $5, updated_at = NOW()
			  WHERE id = $6 AND user_id = $7`

	result, err := querier.ExecContext(ctx, query,
		transaction.Amount, transaction.Type, transaction.Category,
		transaction.Description, transaction.OccurredAt,
		transaction.ID, transaction.UserID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update transaction")
	}

	return requireAffected(result, "failed to update transaction")
}

// Delete removes a transaction, scoped to its owner.
func (r *PostgreSQLTransactionRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM transactions WHERE id = $1 AND user_id = $2`

	result, err := querier.ExecContext(ctx, query, id, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete transaction")
	}

	return requireAffected(result, "failed to delete transaction")
}

// rowScanner abstracts sql.Row and sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var transaction domain.Transaction
	err := row.Scan(
		&transaction.ID, &transaction.UserID, &transaction.Amount,
		&transaction.Type, &transaction.Category, &transaction.Description,
		&transaction.OccurredAt, &transaction.CreatedAt, &transaction.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func requireAffected(result sql.Result, wrapMsg string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, wrapMsg)
	}
	if affected == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}
