package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/elioti/elioti/internal/transaction/domain"
	"github.com/elioti/elioti/internal/transaction/usecase"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) CreateTransaction(ctx context.Context, userID uuid.UUID, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *mockUseCase) GetTransaction(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *mockUseCase) ListTransactions(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*domain.Transaction, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *mockUseCase) UpdateTransaction(ctx context.Context, userID, id uuid.UUID, input usecase.UpdateTransactionInput) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *mockUseCase) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newRouter(handler *TransactionHandler) *gin.Engine {
	router := gin.New()
	router.POST("/v1/users/:userId/transactions", handler.CreateTransactionHandler)
	router.GET("/v1/users/:userId/transactions", handler.ListTransactionsHandler)
	router.GET("/v1/users/:userId/transactions/:transactionId", handler.GetTransactionHandler)
	router.PUT("/v1/users/:userId/transactions/:transactionId", handler.UpdateTransactionHandler)
	router.DELETE("/v1/users/:userId/transactions/:transactionId", handler.DeleteTransactionHandler)
	router.GET("/v1/categories", handler.CategoriesHandler)
	return router
}

func sampleTransaction(userID uuid.UUID) *domain.Transaction {
	return &domain.Transaction{
		ID:          uuid.Must(uuid.NewV7()),
		UserID:      userID,
		Amount:      99.90,
		Type:        domain.TypeExpense,
		Category:    "Fatura",
		Description: "electricity bill",
		OccurredAt:  time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
		CreatedAt:   time.Now().UTC(),
	}
}

func TestTransactionHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		userID := uuid.Must(uuid.NewV7())
		transaction := sampleTransaction(userID)

		uc := new(mockUseCase)
		uc.On("CreateTransaction", mock.Anything, userID, mock.AnythingOfType("usecase.CreateTransactionInput")).
			Return(transaction, nil)

		router := newRouter(NewTransactionHandler(uc, newLogger()))

		body, err := json.Marshal(map[string]any{
			"amount":      99.90,
			"type":        "expense",
			"category":    "Fatura",
			"description": "electricity bill",
		})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/users/"+userID.String()+"/transactions", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), transaction.ID.String())
		uc.AssertExpectations(t)
	})

	t.Run("Error_MalformedBody", func(t *testing.T) {
		userID := uuid.Must(uuid.NewV7())
		uc := new(mockUseCase)
		router := newRouter(NewTransactionHandler(uc, newLogger()))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/users/"+userID.String()+"/transactions", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		uc.AssertNotCalled(t, "CreateTransaction")
	})

	t.Run("Error_MissingFields", func(t *testing.T) {
		userID := uuid.Must(uuid.NewV7())
		uc := new(mockUseCase)
		router := newRouter(NewTransactionHandler(uc, newLogger()))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/users/"+userID.String()+"/transactions", bytes.NewReader([]byte(`{"amount": 10}`)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		uc.AssertNotCalled(t, "CreateTransaction")
	})

	t.Run("Error_InvalidCategory", func(t *testing.T) {
		userID := uuid.Must(uuid.NewV7())

		uc := new(mockUseCase)
		uc.On("CreateTransaction", mock.Anything, userID, mock.Anything).
			Return(nil, domain.ErrInvalidCategory)

		router := newRouter(NewTransactionHandler(uc, newLogger()))

		body := []byte(`{"amount": 10, "type": "expense", "category": "Lottery"}`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/users/"+userID.String()+"/transactions", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestTransactionHandler_Get(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		userID := uuid.Must(uuid.NewV7())
		transaction := sampleTransaction(userID)

		uc := new(mockUseCase)
		uc.On("GetTransaction", mock.Anything, userID, transaction.ID).Return(transaction, nil)

		router := newRouter(NewTransactionHandler(uc, newLogger()))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/users/"+userID.String()+"/transactions/"+transaction.ID.String(), nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), transaction.Category)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		userID := uuid.Must(uuid.NewV7())
		id := uuid.Must(uuid.NewV7())

		uc := new(mockUseCase)
		uc.On("GetTransaction", mock.Anything, userID, id).Return(nil, domain.ErrTransactionNotFound)

		router := newRouter(NewTransactionHandler(uc, newLogger()))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/users/"+userID.String()+"/transactions/"+id.String(), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_UnparseableID", func(t *testing.T) {
		userID := uuid.Must(uuid.NewV7())
		uc := new(mockUseCase)
		router := newRouter(NewTransactionHandler(uc, newLogger()))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/users/"+userID.String()+"/transactions/not-a-uuid", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		uc.AssertNotCalled(t, "GetTransaction")
	})
}

func TestTransactionHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success_DefaultPagination", func(t *testing.T) {
		userID := uuid.Must(uuid.NewV7())
		transaction := sampleTransaction(userID)

		uc := new(mockUseCase)
		uc.On("ListTransactions", mock.Anything, userID, 0, defaultListLimit).
			Return([]*domain.Transaction{transaction}, nil)

		router := newRouter(NewTransactionHandler(uc, newLogger()))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/users/"+userID.String()+"/transactions", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), transaction.ID.String())
	})

	t.Run("Success_CapsLimit", func(t *testing.T) {
		userID := uuid.Must(uuid.NewV7())

		uc := new(mockUseCase)
		uc.On("ListTransactions", mock.Anything, userID, 0, maxListLimit).
			Return([]*domain.Transaction{}, nil)

		router := newRouter(NewTransactionHandler(uc, newLogger()))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/users/"+userID.String()+"/transactions?limit=9999", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		uc.AssertExpectations(t)
	})
}

func TestTransactionHandler_Update(t *testing.T) {
	gin.SetMode(gin.TestMode)

	userID := uuid.Must(uuid.NewV7())
	transaction := sampleTransaction(userID)

	uc := new(mockUseCase)
	uc.On("UpdateTransaction", mock.Anything, userID, transaction.ID, mock.AnythingOfType("usecase.UpdateTransactionInput")).
		Return(transaction, nil)

	router := newRouter(NewTransactionHandler(uc, newLogger()))

	body := []byte(`{"amount": 50, "type": "expense", "category": "Fatura"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/users/"+userID.String()+"/transactions/"+transaction.ID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	uc.AssertExpectations(t)
}

func TestTransactionHandler_Delete(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		userID := uuid.Must(uuid.NewV7())
		id := uuid.Must(uuid.NewV7())

		uc := new(mockUseCase)
		uc.On("DeleteTransaction", mock.Anything, userID, id).Return(nil)

		router := newRouter(NewTransactionHandler(uc, newLogger()))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/v1/users/"+userID.String()+"/transactions/"+id.String(), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		userID := uuid.Must(uuid.NewV7())
		id := uuid.Must(uuid.NewV7())

		uc := new(mockUseCase)
		uc.On("DeleteTransaction", mock.Anything, userID, id).Return(domain.ErrTransactionNotFound)

		router := newRouter(NewTransactionHandler(uc, newLogger()))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/v1/users/"+userID.String()+"/transactions/"+id.String(), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTransactionHandler_Categories(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := newRouter(NewTransactionHandler(new(mockUseCase), newLogger()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/categories", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ushqim")
	assert.Contains(t, w.Body.String(), "Paga")
}
