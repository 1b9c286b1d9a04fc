package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"family-ledger/internal/dto"
	apperrors "family-ledger/internal/errors"
	"family-ledger/internal/models"
	"family-ledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type stubTransactionService struct {
	transactions []models.Transaction
	total        int64
	err          error
	lastOffset   int
	lastLimit    int
	lastFrom     time.Time
	lastTo       time.Time
}

func (s *stubTransactionService) ListTransactions(familyID uuid.UUID, offset, limit int) ([]models.Transaction, int64, error) {
	s.lastOffset = offset
	s.lastLimit = limit
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.transactions, s.total, nil
}

func (s *stubTransactionService) ListByDateRange(familyID uuid.UUID, from, to time.Time) ([]models.Transaction, error) {
	s.lastFrom = from
	s.lastTo = to
	if s.err != nil {
		return nil, s.err
	}
	return s.transactions, nil
}

func (s *stubTransactionService) DeleteTransaction(familyID, transactionID uuid.UUID) error {
	return s.err
}

type TransactionHandlerTestSuite struct {
	suite.Suite
	echo     *echo.Echo
	service  *stubTransactionService
	handler  *TransactionHandler
	familyID uuid.UUID
}

func TestTransactionHandlerSuite(t *testing.T) {
	suite.Run(t, new(TransactionHandlerTestSuite))
}

func (s *TransactionHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.service = &stubTransactionService{}
	s.handler = NewTransactionHandler(s.service)
	s.familyID = uuid.New()
}

func (s *TransactionHandlerTestSuite) authedContext(target string, rec *httptest.ResponseRecorder) echo.Context {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := s.echo.NewContext(req, rec)
	c.Set("family_id", s.familyID)
	c.Set("user_id", uuid.New())
	return c
}

func (s *TransactionHandlerTestSuite) sampleTransaction(description string) models.Transaction {
	desc := description
	ref := "FT240001"
	return models.Transaction{
		ID:              uuid.New(),
		FamilyID:        s.familyID,
		CategoryID:      uuid.New(),
		Amount:          decimal.RequireFromString("100.50"),
		TransactionDate: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Description:     &desc,
		Reference:       &ref,
		Fingerprint:     "fp",
		CreatedAt:       time.Now().UTC(),
	}
}

func (s *TransactionHandlerTestSuite) TestListTransactions() {
	s.service.transactions = []models.Transaction{s.sampleTransaction("coffee"), s.sampleTransaction("lunch")}
	s.service.total = 2

	rec := httptest.NewRecorder()
	c := s.authedContext("/transactions", rec)

	s.Require().NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusOK, rec.Code)

	var response dto.ListTransactionsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.Len(response.Transactions, 2)
	s.Equal(int64(2), response.Pagination.Total)
	s.Equal("100.50", response.Transactions[0].Amount)
	s.Equal("2025-03-14", response.Transactions[0].TransactionDate)
	s.Equal("FT240001", response.Transactions[0].Reference)
}

func (s *TransactionHandlerTestSuite) TestListTransactionsPaginationParams() {
	rec := httptest.NewRecorder()
	c := s.authedContext("/transactions?offset=20&limit=10", rec)

	s.Require().NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(20, s.service.lastOffset)
	s.Equal(10, s.service.lastLimit)
}

func (s *TransactionHandlerTestSuite) TestListTransactionsLimitClamped() {
	rec := httptest.NewRecorder()
	c := s.authedContext("/transactions?limit=9999", rec)

	s.Require().NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(maxPageLimit, s.service.lastLimit)
}

func (s *TransactionHandlerTestSuite) TestListTransactionsByDateRange() {
	s.service.transactions = []models.Transaction{s.sampleTransaction("inside")}

	rec := httptest.NewRecorder()
	c := s.authedContext("/transactions?startDate=2025-03-01&endDate=2025-03-31", rec)

	s.Require().NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), s.service.lastFrom)
	s.Equal(31, s.service.lastTo.Day(), "end date should cover the whole closing day")
}

func (s *TransactionHandlerTestSuite) TestListTransactionsInvalidDate() {
	rec := httptest.NewRecorder()
	c := s.authedContext("/transactions?startDate=14-03-2025", rec)

	s.Require().NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusBadRequest, rec.Code)

	var response ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.Equal(string(apperrors.ValidationInvalidDate), response.Error.Code)
}

func (s *TransactionHandlerTestSuite) TestListTransactionsInvertedRange() {
	rec := httptest.NewRecorder()
	c := s.authedContext("/transactions?startDate=2025-03-31&endDate=2025-03-01", rec)

	s.Require().NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *TransactionHandlerTestSuite) TestListTransactionsUnauthenticated() {
	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	s.Require().NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *TransactionHandlerTestSuite) TestDeleteTransaction() {
	transactionID := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/transactions/"+transactionID.String(), nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.Set("family_id", s.familyID)
	c.SetParamNames("id")
	c.SetParamValues(transactionID.String())

	s.Require().NoError(s.handler.DeleteTransaction(c))
	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *TransactionHandlerTestSuite) TestDeleteTransactionNotFound() {
	s.service.err = repositories.ErrTransactionNotFound

	transactionID := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/transactions/"+transactionID.String(), nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.Set("family_id", s.familyID)
	c.SetParamNames("id")
	c.SetParamValues(transactionID.String())

	s.Require().NoError(s.handler.DeleteTransaction(c))
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *TransactionHandlerTestSuite) TestDeleteTransactionInvalidID() {
	req := httptest.NewRequest(http.MethodDelete, "/transactions/nope", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.Set("family_id", s.familyID)
	c.SetParamNames("id")
	c.SetParamValues("nope")

	s.Require().NoError(s.handler.DeleteTransaction(c))
	s.Equal(http.StatusBadRequest, rec.Code)
}
