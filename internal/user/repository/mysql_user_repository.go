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

// MySQLUserRepository handles user persistence for MySQL
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQLUserRepository
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{
		db: db,
	}
}

// Create inserts a new user
func (r *MySQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	permissions, err := json.Marshal(user.Permissions)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal permissions")
	}

	// Convert UUID to bytes for MySQL BINARY(16)
	uuidBytes, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `INSERT INTO users (id, name, email, password, role, permissions, is_active, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`

	_, err = querier.ExecContext(ctx, query,
		uuidBytes, user.Name, user.Email, user.Password, user.Role, permissions, user.IsActive,
	)
	if err != nil {
		// Check for unique constraint violation (duplicate email)
		if isMySQLUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *MySQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT id, name, email, password, role, permissions, is_active, created_at, updated_at
			  FROM users WHERE id = ?`

	return scanMySQLUser(querier.QueryRowContext(ctx, query, uuidBytes), "failed to get user by id")
}

// GetByEmail retrieves a user by email
func (r *MySQLUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, email, password, role, permissions, is_active, created_at, updated_at
			  FROM users WHERE email = ?`

	return scanMySQLUser(querier.QueryRowContext(ctx, query, email), "failed to get user by email")
}

// List retrieves users ordered by created_at descending with pagination.
func (r *MySQLUserRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, email, password, role, permissions, is_active, created_at, updated_at
			  FROM users
			  ORDER BY created_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list users")
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user, err := scanMySQLUserRow(rows)
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
func (r *MySQLUserRepository) GetRole(ctx context.Context, id uuid.UUID) (string, error) {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT role FROM users WHERE id = ? AND is_active = TRUE`

	var role string
	err = querier.QueryRowContext(ctx, query, uuidBytes).Scan(&role)
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
func (r *MySQLUserRepository) GetPermissions(ctx context.Context, id uuid.UUID) ([]string, error) {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT permissions FROM users WHERE id = ? AND is_active = TRUE`

	var raw []byte
	err = querier.QueryRowContext(ctx, query, uuidBytes).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user permissions")
	}

	return unmarshalPermissions(raw)
}

func scanMySQLUser(row rowScanner, wrapMsg string) (*domain.User, error) {
	user, err := scanMySQLUserRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, wrapMsg)
	}
	return user, nil
}

func scanMySQLUserRow(row rowScanner) (*domain.User, error) {
	var user domain.User
	var idBytes []byte
	var permissions []byte

	err := row.Scan(
		&idBytes, &user.Name, &user.Email, &user.Password,
		&user.Role, &permissions, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Convert bytes back to UUID
	if err := user.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}

	parsed, err := unmarshalPermissions(permissions)
	if err != nil {
		return nil, err
	}
	user.Permissions = parsed

	return &user, nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062 (23000): Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "error 1062")
}
