package dto

import (
	"time"

	"github.com/elioti/elioti/internal/transaction/domain"
)

// TransactionResponse is the wire representation of a transaction.
type TransactionResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToTransactionResponse maps a domain transaction to its wire representation.
func ToTransactionResponse(transaction *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          transaction.ID.String(),
		UserID:      transaction.UserID.String(),
		Amount:      transaction.Amount,
		Type:        transaction.Type,
		Category:    transaction.Category,
		Description: transaction.Description,
		OccurredAt:  transaction.OccurredAt,
		CreatedAt:   transaction.CreatedAt,
	}
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// ToListTransactionsResponse maps a slice of domain transactions.
func ToListTransactionsResponse(transactions []*domain.Transaction) ListTransactionsResponse {
	responses := make([]TransactionResponse, len(transactions))
	for i, transaction := range transactions {
		responses[i] = ToTransactionResponse(transaction)
	}
	return ListTransactionsResponse{Transactions: responses}
}

// CategoriesResponse lists the accepted categories per transaction type.
type CategoriesResponse struct {
	Income  []string `json:"income"`
	Expense []string `json:"expense"`
}

// NewCategoriesResponse returns the category whitelists.
func NewCategoriesResponse() CategoriesResponse {
	return CategoriesResponse{
		Income:  domain.IncomeCategories,
		Expense: domain.ExpenseCategories,
	}
}
