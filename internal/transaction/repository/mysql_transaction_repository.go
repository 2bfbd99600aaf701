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

// MySQLTransactionRepository handles transaction persistence for MySQL.
// UUIDs are stored as BINARY(16).
type MySQLTransactionRepository struct {
	db *sql.DB
}

// NewMySQLTransactionRepository creates a new MySQLTransactionRepository
func NewMySQLTransactionRepository(db *sql.DB) *MySQLTransactionRepository {
	return &MySQLTransactionRepository{
		db: db,
	}
}

// Create inserts a new transaction
func (r *MySQLTransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := transaction.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal transaction id")
	}
	userIDBytes, err := transaction.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `INSERT INTO transactions (id, user_id, amount, type, category, description, occurred_at, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`

	_, err = querier.ExecContext(ctx, query,
		idBytes, userIDBytes, transaction.Amount, transaction.Type,
		transaction.Category, transaction.Description, transaction.OccurredAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create transaction")
	}
	return nil
}

// GetByID retrieves a transaction by id, scoped to its owner. A transaction
// belonging to another user is reported as not found.
func (r *MySQLTransactionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal transaction id")
	}
	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT id, user_id, amount, type, category, description, occurred_at, created_at, updated_at
			  FROM transactions WHERE id = ? AND user_id = ?`

	transaction, err := scanMySQLTransaction(querier.QueryRowContext(ctx, query, idBytes, userIDBytes))
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
func (r *MySQLTransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*domain.Transaction, error) {
	querier := database.GetTx(ctx, r.db)

	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT id, user_id, amount, type, category, description, occurred_at, created_at, updated_at
			  FROM transactions
			  WHERE user_id = ?
			  ORDER BY occurred_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, userIDBytes, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list transactions")
	}
	defer rows.Close()

	transactions := []*domain.Transaction{}
	for rows.Next() {
		transaction, err := scanMySQLTransaction(rows)
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
func (r *MySQLTransactionRepository) Update(ctx context.Context, transaction *domain.Transaction) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := transaction.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal transaction id")
	}
	userIDBytes, err := transaction.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `UPDATE transactions
			  SET amount = ?, type = ?, category = ?, description = ?, occurred_at = ?, updated_at = NOW()
			  WHERE id = ? AND user_id = ?`

	result, err := querier.ExecContext(ctx, query,
		transaction.Amount, transaction.Type, transaction.Category,
		transaction.Description, transaction.OccurredAt,
		idBytes, userIDBytes,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update transaction")
	}

	return requireAffected(result, "failed to update transaction")
}

// Delete removes a transaction, scoped to its owner.
func (r *MySQLTransactionRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal transaction id")
	}
	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `DELETE FROM transactions WHERE id = ? AND user_id = ?`

	result, err := querier.ExecContext(ctx, query, idBytes, userIDBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete transaction")
	}

	return requireAffected(result, "failed to delete transaction")
}

func scanMySQLTransaction(row rowScanner) (*domain.Transaction, error) {
	var transaction domain.Transaction
	var idBytes, userIDBytes []byte

	err := row.Scan(
		&idBytes, &userIDBytes, &transaction.Amount,
		&transaction.Type, &transaction.Category, &transaction.Description,
		&transaction.OccurredAt, &transaction.CreatedAt, &transaction.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := transaction.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal transaction id")
	}
	if err := transaction.UserID.UnmarshalBinary(userIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	return &transaction, nil
}
