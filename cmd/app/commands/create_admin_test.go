package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	userDomain "github.com/elioti/elioti/internal/user/domain"
	userUsecase "github.com/elioti/elioti/internal/user/usecase"
)

type mockUserUseCase struct {
	mock.Mock
}

func (m *mockUserUseCase) RegisterUser(ctx context.Context, input userUsecase.RegisterUserInput) (*userDomain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *mockUserUseCase) CreateAdmin(ctx context.Context, input userUsecase.RegisterUserInput) (*userDomain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *mockUserUseCase) Authenticate(ctx context.Context, email, password string) (*userDomain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *mockUserUseCase) GetUserByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *mockUserUseCase) GetUserByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *mockUserUseCase) ListUsers(ctx context.Context, offset, limit int) ([]*userDomain.User, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*userDomain.User), args.Error(1)
}

func (m *mockUserUseCase) GetRole(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockUserUseCase) GetPermissions(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func TestCreateAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		admin := &userDomain.User{
			ID:    uuid.Must(uuid.NewV7()),
			Name:  "Root",
			Email: "root@example.com",
			Role:  userDomain.RoleAdmin,
		}

		useCase := new(mockUserUseCase)
		useCase.On("CreateAdmin", ctx, userUsecase.RegisterUserInput{
			Name:     "Root",
			Email:    "root@example.com",
			Password: "Sup3r$ecret!",
		}).Return(admin, nil)

		var out bytes.Buffer
		err := createAdmin(ctx, useCase, &out, "Root", "root@example.com", "Sup3r$ecret!")
		require.NoError(t, err)
		require.Contains(t, out.String(), "Admin user created")
		require.Contains(t, out.String(), admin.Email)
		useCase.AssertExpectations(t)
	})

	t.Run("duplicate-email", func(t *testing.T) {
		useCase := new(mockUserUseCase)
		useCase.On("CreateAdmin", ctx, mock.Anything).Return(nil, userDomain.ErrUserAlreadyExists)

		var out bytes.Buffer
		err := createAdmin(ctx, useCase, &out, "Root", "root@example.com", "Sup3r$ecret!")
		require.Error(t, err)
	})
}
