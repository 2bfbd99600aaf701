// Package dto contains request and response shapes for the transaction HTTP API.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	"github.com/elioti/elioti/internal/transaction/domain"
	appValidation "github.com/elioti/elioti/internal/validation"
)

// TransactionRequest is the payload for creating or replacing a transaction.
// Category whitelist and amount bounds are enforced by the use case; the DTO
// only rejects requests that are structurally incomplete.
type TransactionRequest struct {
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Validate validates the transaction request.
func (r TransactionRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Amount,
			validation.Required.Error("amount is required"),
		),
		validation.Field(&r.Type,
			validation.Required.Error("type is required"),
			validation.In(domain.TypeIncome, domain.TypeExpense).
				Error(`type must be "income" or "expense"`),
		),
		validation.Field(&r.Category,
			validation.Required.Error("category is required"),
			appValidation.NotBlank,
		),
	)
	return appValidation.WrapValidationError(err)
}
