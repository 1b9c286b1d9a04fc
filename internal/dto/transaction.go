package dto

import (
	"time"

	"family-ledger/internal/models"

	"github.com/google/uuid"
)

// TransactionFilters contains filtering options for transaction queries
type TransactionFilters struct {
	StartDate *time.Time `query:"startDate"`
	EndDate   *time.Time `query:"endDate"`
}

// PaginationParams contains pagination parameters
type PaginationParams struct {
	Offset int `query:"offset"`
	Limit  int `query:"limit"`
}

// TransactionResponse represents a ledger transaction in API responses
type TransactionResponse struct {
	ID              uuid.UUID `json:"id"`
	CategoryID      uuid.UUID `json:"categoryId"`
	Amount          string    `json:"amount"`
	TransactionDate string    `json:"transactionDate"`
	Description     string    `json:"description,omitempty"`
	Reference       string    `json:"reference,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// PaginationInfo contains pagination metadata
type PaginationInfo struct {
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
	Total  int64 `json:"total"`
}

// ListTransactionsResponse represents the response for listing transactions
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   PaginationInfo        `json:"pagination"`
}

func NewTransactionResponse(transaction *models.Transaction) TransactionResponse {
	response := TransactionResponse{
		ID:              transaction.ID,
		CategoryID:      transaction.CategoryID,
		Amount:          transaction.Amount.StringFixed(2),
		TransactionDate: transaction.TransactionDate.Format("2006-01-02"),
		CreatedAt:       transaction.CreatedAt,
	}
	if transaction.Description != nil {
		response.Description = *transaction.Description
	}
	if transaction.Reference != nil {
		response.Reference = *transaction.Reference
	}
	return response
}

func NewListTransactionsResponse(transactions []models.Transaction, offset, limit int, total int64) ListTransactionsResponse {
	responses := make([]TransactionResponse, len(transactions))
	for i := range transactions {
		responses[i] = NewTransactionResponse(&transactions[i])
	}
	return ListTransactionsResponse{
		Transactions: responses,
		Pagination: PaginationInfo{
			Offset: offset,
			Limit:  limit,
			Total:  total,
		},
	}
}
