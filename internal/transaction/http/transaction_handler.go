// Package http provides HTTP handlers for transaction operations.
package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"

	"github.com/elioti/elioti/internal/httputil"
	"github.com/elioti/elioti/internal/transaction/domain"
	"github.com/elioti/elioti/internal/transaction/http/dto"
	"github.com/elioti/elioti/internal/transaction/usecase"
)

// Pagination bounds for list endpoints.
const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// TransactionHandler handles transaction-related HTTP requests. All routes are
// mounted behind authentication and ownership middleware, so the :userId path
// parameter is already known to match the authenticated subject.
type TransactionHandler struct {
	transactionUseCase usecase.UseCase
	logger             *slog.Logger
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionUseCase usecase.UseCase, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactionUseCase: transactionUseCase,
		logger:             logger,
	}
}

// CreateTransactionHandler records a new transaction.
// POST /v1/users/:userId/transactions
func (h *TransactionHandler) CreateTransactionHandler(c *gin.Context) {
	userID, ok := h.ownerID(c)
	if !ok {
		return
	}

	var request dto.TransactionRequest
	// ShouldBindBodyWith keeps the body readable for the ownership middleware,
	// which may have parsed it already.
	if err := c.ShouldBindBodyWith(&request, binding.JSON); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := request.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	transaction, err := h.transactionUseCase.CreateTransaction(c.Request.Context(), userID, usecase.CreateTransactionInput{
		Amount:      request.Amount,
		Type:        request.Type,
		Category:    request.Category,
		Description: request.Description,
		OccurredAt:  request.OccurredAt,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.WriteSuccess(c, http.StatusCreated, dto.ToTransactionResponse(transaction))
}

// GetTransactionHandler returns a single transaction.
// GET /v1/users/:userId/transactions/:transactionId
func (h *TransactionHandler) GetTransactionHandler(c *gin.Context) {
	userID, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := h.transactionID(c)
	if !ok {
		return
	}

	transaction, err := h.transactionUseCase.GetTransaction(c.Request.Context(), userID, id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.WriteSuccess(c, http.StatusOK, dto.ToTransactionResponse(transaction))
}

// ListTransactionsHandler returns a page of the user's transactions.
// GET /v1/users/:userId/transactions
func (h *TransactionHandler) ListTransactionsHandler(c *gin.Context) {
	userID, ok := h.ownerID(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)

	transactions, err := h.transactionUseCase.ListTransactions(c.Request.Context(), userID, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.WriteSuccess(c, http.StatusOK, dto.ToListTransactionsResponse(transactions))
}

// UpdateTransactionHandler replaces the mutable fields of a transaction.
// PUT /v1/users/:userId/transactions/:transactionId
func (h *TransactionHandler) UpdateTransactionHandler(c *gin.Context) {
	userID, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := h.transactionID(c)
	if !ok {
		return
	}

	var request dto.TransactionRequest
	if err := c.ShouldBindBodyWith(&request, binding.JSON); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := request.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	transaction, err := h.transactionUseCase.UpdateTransaction(c.Request.Context(), userID, id, usecase.UpdateTransactionInput{
		Amount:      request.Amount,
		Type:        request.Type,
		Category:    request.Category,
		Description: request.Description,
		OccurredAt:  request.OccurredAt,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.WriteSuccess(c, http.StatusOK, dto.ToTransactionResponse(transaction))
}

// DeleteTransactionHandler removes a transaction.
// DELETE /v1/users/:userId/transactions/:transactionId
func (h *TransactionHandler) DeleteTransactionHandler(c *gin.Context) {
	userID, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := h.transactionID(c)
	if !ok {
		return
	}

	if err := h.transactionUseCase.DeleteTransaction(c.Request.Context(), userID, id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// CategoriesHandler returns the category whitelists. Public, no auth.
// GET /v1/categories
func (h *TransactionHandler) CategoriesHandler(c *gin.Context) {
	httputil.WriteSuccess(c, http.StatusOK, dto.NewCategoriesResponse())
}

func (h *TransactionHandler) ownerID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		httputil.HandleErrorGin(c, domain.ErrTransactionNotFound, h.logger)
		return uuid.Nil, false
	}
	return userID, true
}

func (h *TransactionHandler) transactionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("transactionId"))
	if err != nil {
		httputil.HandleErrorGin(c, domain.ErrTransactionNotFound, h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// parsePagination reads offset/limit query parameters with sane bounds.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	return offset, limit
}
