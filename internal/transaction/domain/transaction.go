// Package domain defines the core transaction domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/elioti/elioti/internal/errors"
)

// Transaction types.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// MaxAmount is the largest accepted transaction amount.
const MaxAmount = 999999999.99

// MaxDescriptionLength bounds the free-text description.
const MaxDescriptionLength = 200

// Category whitelists per transaction type.
var (
	IncomeCategories = []string{
		"Paga",
		"Freelance",
		"Investime",
		"Dhuratë",
		"Të tjera",
	}
	ExpenseCategories = []string{
		"Ushqim",
		"Transport",
		"Fatura",
		"Argetim",
		"Blerje",
		"Shëndetësi",
		"Edukim",
		"Të tjera",
	}
)

// Transaction represents a single income or expense record of a user.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Amount      float64
	Type        string
	Category    string
	Description string
	OccurredAt  time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Domain-specific errors for transaction operations.
var (
	// ErrTransactionNotFound indicates the requested transaction does not
	// exist or belongs to another user.
	ErrTransactionNotFound = errors.Wrap(errors.ErrNotFound, "transaction not found")

	// ErrInvalidAmount indicates the amount is not a positive number within bounds.
	ErrInvalidAmount = errors.Wrap(errors.ErrInvalidInput, "invalid transaction amount")

	// ErrInvalidType indicates the type is neither income nor expense.
	ErrInvalidType = errors.Wrap(errors.ErrInvalidInput, "invalid transaction type")

	// ErrInvalidCategory indicates the category is not in the whitelist for
	// the transaction type.
	ErrInvalidCategory = errors.Wrap(errors.ErrInvalidInput, "invalid transaction category")
)

// ValidCategory reports whether category is allowed for the given transaction
// type.
func ValidCategory(transactionType, category string) bool {
	var allowed []string
	switch transactionType {
	case TypeIncome:
		allowed = IncomeCategories
	case TypeExpense:
		allowed = ExpenseCategories
	default:
		return false
	}
	for _, c := range allowed {
		if c == category {
			return true
		}
	}
	return false
}

// IsIncome reports whether the transaction is an income record.
func (t *Transaction) IsIncome() bool {
	return t.Type == TypeIncome
}
