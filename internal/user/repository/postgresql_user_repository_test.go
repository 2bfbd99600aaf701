package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elioti/elioti/internal/user/domain"
)

func newTestUser() *domain.User {
	return &domain.User{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        "Alice",
		Email:       "alice@example.com",
		Password:    "hashed-password",
		Role:        domain.RoleUser,
		Permissions: []string{"transactions:write"},
		IsActive:    true,
	}
}

func userColumns() []string {
	return []string{
		"id", "name", "email", "password", "role", "permissions", "is_active", "created_at", "updated_at",
	}
}

func userRow(user *domain.User) []driverValue {
	now := time.Now().UTC()
	return []driverValue{
		user.ID, user.Name, user.Email, user.Password,
		user.Role, []byte(`["transactions:write"]`), user.IsActive,
		now, now,
	}
}

type driverValue = driver.Value

func TestPostgreSQLUserRepository_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewPostgreSQLUserRepository(db)
		user := newTestUser()

		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, user.Name, user.Email, user.Password,
				user.Role, []byte(`["transactions:write"]`), user.IsActive).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err = repo.Create(context.Background(), user)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_DuplicateEmail", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewPostgreSQLUserRepository(db)
		user := newTestUser()

		mock.ExpectExec("INSERT INTO users").
			WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`))

		err = repo.Create(context.Background(), user)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	})
}

func TestPostgreSQLUserRepository_GetByEmail(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewPostgreSQLUserRepository(db)
		user := newTestUser()

		mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
			WithArgs(user.Email).
			WillReturnRows(sqlmock.NewRows(userColumns()).AddRow(userRow(user)...))

		got, err := repo.GetByEmail(context.Background(), user.Email)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, user.Email, got.Email)
		assert.Equal(t, []string{"transactions:write"}, got.Permissions)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewPostgreSQLUserRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
			WithArgs("missing@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns()))

		_, err = repo.GetByEmail(context.Background(), "missing@example.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestPostgreSQLUserRepository_GetRole(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewPostgreSQLUserRepository(db)
		id := uuid.Must(uuid.NewV7())

		mock.ExpectQuery("SELECT role FROM users").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("admin"))

		role, err := repo.GetRole(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "admin", role)
	})

	t.Run("Error_InactiveOrUnknown", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewPostgreSQLUserRepository(db)
		id := uuid.Must(uuid.NewV7())

		mock.ExpectQuery("SELECT role FROM users").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"role"}))

		_, err = repo.GetRole(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestPostgreSQLUserRepository_GetPermissions(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewPostgreSQLUserRepository(db)
		id := uuid.Must(uuid.NewV7())

		mock.ExpectQuery("SELECT permissions FROM users").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"permissions"}).
				AddRow([]byte(`["reports:read","transactions:write"]`)))

		permissions, err := repo.GetPermissions(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, []string{"reports:read", "transactions:write"}, permissions)
	})

	t.Run("Success_NullPermissions", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewPostgreSQLUserRepository(db)
		id := uuid.Must(uuid.NewV7())

		mock.ExpectQuery("SELECT permissions FROM users").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"permissions"}).AddRow(nil))

		permissions, err := repo.GetPermissions(context.Background(), id)
		require.NoError(t, err)
		assert.Empty(t, permissions)
	})
}

func TestPostgreSQLUserRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLUserRepository(db)
	user := newTestUser()

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs(0, 50).
		WillReturnRows(sqlmock.NewRows(userColumns()).AddRow(userRow(user)...))

	users, err := repo.List(context.Background(), 0, 50)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, user.Email, users[0].Email)
}
