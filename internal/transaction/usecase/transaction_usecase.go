// Package usecase implements the transaction business logic.
package usecase

import (
	"context"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/elioti/elioti/internal/database"
	"github.com/elioti/elioti/internal/transaction/domain"
	appValidation "github.com/elioti/elioti/internal/validation"
)

// CreateTransactionInput contains the input data for creating a transaction.
type CreateTransactionInput struct {
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// UpdateTransactionInput contains the input data for updating a transaction.
type UpdateTransactionInput struct {
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// UseCase defines the interface for transaction business logic operations.
// Every operation is scoped to the owning user; a transaction belonging to
// another user behaves exactly like a missing one.
type UseCase interface {
	CreateTransaction(ctx context.Context, userID uuid.UUID, input CreateTransactionInput) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id uuid.UUID, input UpdateTransactionInput) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error
}

// TransactionRepository interface defines transaction repository operations
type TransactionRepository interface {
	Create(ctx context.Context, transaction *domain.Transaction) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*domain.Transaction, error)
	Update(ctx context.Context, transaction *domain.Transaction) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// TransactionUseCase handles transaction-related business logic
type TransactionUseCase struct {
	txManager       database.TxManager
	transactionRepo TransactionRepository
}

// NewTransactionUseCase creates a new TransactionUseCase
func NewTransactionUseCase(
	txManager database.TxManager,
	transactionRepo TransactionRepository,
) UseCase {
	return &TransactionUseCase{
		txManager:       txManager,
		transactionRepo: transactionRepo,
	}
}

func validateTransactionFields(amount float64, transactionType, category, description string) error {
	err := validation.Errors{
		"amount": validation.Validate(amount,
			validation.Required.Error("amount is required"),
			validation.Min(0.01).Error("amount must be a positive number"),
			validation.Max(domain.MaxAmount).Error("amount exceeds the allowed maximum"),
		),
		"type": validation.Validate(transactionType,
			validation.Required.Error("type is required"),
			validation.In(domain.TypeIncome, domain.TypeExpense).
				Error(`type must be "income" or "expense"`),
		),
		"category": validation.Validate(category,
			validation.Required.Error("category is required"),
			appValidation.NotBlank,
		),
		"description": validation.Validate(description,
			validation.Length(0, domain.MaxDescriptionLength).
				Error("description must be at most 200 characters"),
		),
	}.Filter()
	if err != nil {
		return appValidation.WrapValidationError(err)
	}

	// Category whitelist depends on the type, so it is checked after the
	// field-level rules pass.
	if !domain.ValidCategory(transactionType, category) {
		return domain.ErrInvalidCategory
	}
	return nil
}

// CreateTransaction validates the input and persists a new transaction owned
// by userID.
func (uc *TransactionUseCase) CreateTransaction(ctx context.Context, userID uuid.UUID, input CreateTransactionInput) (*domain.Transaction, error) {
	if err := validateTransactionFields(input.Amount, input.Type, input.Category, input.Description); err != nil {
		return nil, err
	}

	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	transaction := &domain.Transaction{
		ID:          uuid.Must(uuid.NewV7()),
		UserID:      userID,
		Amount:      input.Amount,
		Type:        input.Type,
		Category:    strings.TrimSpace(input.Category),
		Description: strings.TrimSpace(input.Description),
		OccurredAt:  occurredAt,
	}

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		return uc.transactionRepo.Create(ctx, transaction)
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// GetTransaction retrieves a single transaction owned by userID.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	return uc.transactionRepo.GetByID(ctx, userID, id)
}

// ListTransactions retrieves the user's transactions with pagination.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*domain.Transaction, error) {
	return uc.transactionRepo.ListByUser(ctx, userID, offset, limit)
}

// UpdateTransaction validates the input and replaces the mutable fields of an
// existing transaction owned by userID.
func (uc *TransactionUseCase) UpdateTransaction(ctx context.Context, userID, id uuid.UUID, input UpdateTransactionInput) (*domain.Transaction, error) {
	if err := validateTransactionFields(input.Amount, input.Type, input.Category, input.Description); err != nil {
		return nil, err
	}

	var transaction *domain.Transaction
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		existing, err := uc.transactionRepo.GetByID(ctx, userID, id)
		if err != nil {
			return err
		}

		existing.Amount = input.Amount
		existing.Type = input.Type
		existing.Category = strings.TrimSpace(input.Category)
		existing.Description = strings.TrimSpace(input.Description)
		if !input.OccurredAt.IsZero() {
			existing.OccurredAt = input.OccurredAt
		}

		if err := uc.transactionRepo.Update(ctx, existing); err != nil {
			return err
		}
		transaction = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// DeleteTransaction removes a transaction owned by userID.
func (uc *TransactionUseCase) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		return uc.transactionRepo.Delete(ctx, userID, id)
	})
}
