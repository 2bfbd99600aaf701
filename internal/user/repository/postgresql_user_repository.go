// Package repository provides data persistence implementations for user entities.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/elioti/elioti/internal/database"
	apperrors "github.com/elioti/elioti/internal/errors"
	"github.com/elioti/elioti/internal/user/domain"
)

// PostgreSQLUserRepository handles user persistence for PostgreSQL
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// NewPostgreSQLUserRepository creates a new PostgreSQLUserRepository
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{
		db: db,
	}
}

// Create inserts a new user
func (r *PostgreSQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	permissions, err := json.Marshal(user.Permissions)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal permissions")
	}

	query := `INSERT INTO users (id, name, email, password, role, permissions, is_active, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`

	_, err = querier.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.Password, user.Role, permissions, user.IsActive,
	)
	if err != nil {
		// Check for unique constraint violation (duplicate email)
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *PostgreSQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, email, password, role, permissions, is_active, created_at, updated_at
			  FROM users WHERE id = $1`

	return scanUser(querier.QueryRowContext(ctx, query, id), "failed to get user by id")
}

// GetByEmail retrieves a user by email
func (r *PostgreSQLUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, email, password, role, permissions, is_active, created_at, updated_at
			  FROM users WHERE email = $1`

	return scanUser(querier.QueryRowContext(ctx, query, email), "failed to get user by email")
}

// List retrieves users ordered by created_at descending with pagination.
func (r *PostgreSQLUserRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, email, password, role, permissions, is_active, created_at, updated_at
			  FROM users
			  ORDER BY created_at DESC
			  OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list users")
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate users")
	}

	return users, nil
}

// GetRole retrieves the role of an active user. Inactive or unknown users
// return ErrUserNotFound.
func (r *PostgreSQLUserRepository) GetRole(ctx context.Context, id uuid.UUID) (string, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT role FROM users WHERE id = $1 AND is_active = TRUE`

	var role string
	err := querier.QueryRowContext(ctx, query, id).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrUserNotFound
		}
		return "", apperrors.Wrap(err, "failed to get user role")
	}

	return role, nil
}

// GetPermissions retrieves the permission set of an active user. Inactive or
// unknown users return ErrUserNotFound.
func (r *PostgreSQLUserRepository) GetPermissions(ctx context.Context, id uuid.UUID) ([]string, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT permissions FROM users WHERE id = $1 AND is_active = TRUE`

	var raw []byte
	err := querier.QueryRowContext(ctx, query, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user permissions")
	}

	return unmarshalPermissions(raw)
}

// rowScanner abstracts sql.Row and sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, wrapMsg string) (*domain.User, error) {
	user, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, wrapMsg)
	}
	return user, nil
}

func scanUserRow(row rowScanner) (*domain.User, error) {
	var user domain.User
	var permissions []byte

	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.Password,
		&user.Role, &permissions, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	parsed, err := unmarshalPermissions(permissions)
	if err != nil {
		return nil, err
	}
	user.Permissions = parsed

	return &user, nil
}

func unmarshalPermissions(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var permissions []string
	if err := json.Unmarshal(raw, &permissions); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal permissions")
	}
	return permissions, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
