package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"family-ledger/internal/dto"
	apperrors "family-ledger/internal/errors"
	"family-ledger/internal/repositories"
	"family-ledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

// TransactionHandler handles ledger transaction HTTP requests
type TransactionHandler struct {
	transactionService services.TransactionServiceInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService services.TransactionServiceInterface) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// ListTransactions retrieves the family's transactions
// @Summary List transactions
// @Description Retrieve the family's ledger transactions, paginated or filtered by date range
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Number of results per page (max 100)" default(50)
// @Param startDate query string false "Filter from this date (YYYY-MM-DD)"
// @Param endDate query string false "Filter up to this date (YYYY-MM-DD)"
// @Success 200 {object} dto.ListTransactionsResponse "Transactions with pagination metadata"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_004 - Invalid date format or range"
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - Missing or invalid authentication"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	familyID, err := getFamilyIDFromContext(c)
	if err != nil {
		return SendError(c, apperrors.AuthMissingToken)
	}

	filters, err := parseDateFilters(c)
	if err != nil {
		return SendError(c, apperrors.ValidationInvalidDate, apperrors.WithDetails(err.Error()))
	}

	if filters.StartDate != nil && filters.EndDate != nil {
		transactions, err := h.transactionService.ListByDateRange(familyID, *filters.StartDate, *filters.EndDate)
		if err != nil {
			return SendSystemError(c, err)
		}
		return c.JSON(http.StatusOK, dto.NewListTransactionsResponse(transactions, 0, len(transactions), int64(len(transactions))))
	}

	pagination, err := parsePaginationParams(c)
	if err != nil {
		return SendError(c, apperrors.ValidationGeneral, apperrors.WithDetails(err.Error()))
	}

	transactions, total, err := h.transactionService.ListTransactions(familyID, pagination.Offset, pagination.Limit)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewListTransactionsResponse(transactions, pagination.Offset, pagination.Limit, total))
}

// DeleteTransaction removes a transaction from the family ledger
// @Summary Delete transaction
// @Description Delete one of the family's transactions by ID
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Transaction ID (UUID)"
// @Success 204 "Transaction deleted"
// @Failure 400 {object} errors.ErrorResponse "TRANSACTION_002 - Invalid transaction ID"
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - Missing or invalid authentication"
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001 - Transaction not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	familyID, err := getFamilyIDFromContext(c)
	if err != nil {
		return SendError(c, apperrors.AuthMissingToken)
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, apperrors.TransactionInvalidID)
	}

	if err := h.transactionService.DeleteTransaction(familyID, transactionID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTransactionNotFound), errors.Is(err, services.ErrTransactionNotOwned):
			// Foreign transactions surface as not found so family scoping is not probeable
			return SendError(c, apperrors.TransactionNotFound)
		default:
			return SendSystemError(c, err)
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// parseDateFilters parses the optional startDate/endDate query parameters
func parseDateFilters(c echo.Context) (dto.TransactionFilters, error) {
	var filters dto.TransactionFilters

	if startDateStr := c.QueryParam("startDate"); startDateStr != "" {
		startDate, err := time.Parse("2006-01-02", startDateStr)
		if err != nil {
			return filters, fmt.Errorf("invalid startDate format, use YYYY-MM-DD")
		}
		filters.StartDate = &startDate
	}

	if endDateStr := c.QueryParam("endDate"); endDateStr != "" {
		endDate, err := time.Parse("2006-01-02", endDateStr)
		if err != nil {
			return filters, fmt.Errorf("invalid endDate format, use YYYY-MM-DD")
		}
		// Cover the whole closing day
		endOfDay := endDate.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		filters.EndDate = &endOfDay
	}

	if filters.StartDate != nil && filters.EndDate != nil && filters.EndDate.Before(*filters.StartDate) {
		return filters, fmt.Errorf("endDate is before startDate")
	}

	return filters, nil
}

// parsePaginationParams parses pagination parameters from query string
func parsePaginationParams(c echo.Context) (dto.PaginationParams, error) {
	params := dto.PaginationParams{
		Limit: defaultPageLimit,
	}

	params.Offset = getIntParam(c, "offset", 0)
	if params.Offset < 0 {
		params.Offset = 0
	}

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return params, fmt.Errorf("invalid limit parameter")
		}

		if limit < 1 {
			return params, fmt.Errorf("limit must be at least 1")
		}

		if limit > maxPageLimit {
			limit = maxPageLimit
		}

		params.Limit = limit
	}

	return params, nil
}
