package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"family-ledger/internal/models"
	"family-ledger/internal/repositories"

	"github.com/google/uuid"
)

var ErrTransactionNotOwned = errors.New("transaction does not belong to this family")

// TransactionServiceInterface exposes read and maintenance operations over
// a family's ledger rows.
type TransactionServiceInterface interface {
	ListTransactions(familyID uuid.UUID, offset, limit int) ([]models.Transaction, int64, error)
	ListByDateRange(familyID uuid.UUID, from, to time.Time) ([]models.Transaction, error)
	DeleteTransaction(familyID, transactionID uuid.UUID) error
}

type TransactionService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	auditRepo       repositories.AuditLogRepositoryInterface
	logger          *slog.Logger
}

func NewTransactionService(transactionRepo repositories.TransactionRepositoryInterface, auditRepo repositories.AuditLogRepositoryInterface, logger *slog.Logger) TransactionServiceInterface {
	return &TransactionService{
		transactionRepo: transactionRepo,
		auditRepo:       auditRepo,
		logger:          logger,
	}
}

func (s *TransactionService) ListTransactions(familyID uuid.UUID, offset, limit int) ([]models.Transaction, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.transactionRepo.GetByFamilyID(familyID, offset, limit)
}

func (s *TransactionService) ListByDateRange(familyID uuid.UUID, from, to time.Time) ([]models.Transaction, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("invalid date range: %s is after %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return s.transactionRepo.GetByFamilyAndDateRange(familyID, from, to)
}

func (s *TransactionService) DeleteTransaction(familyID, transactionID uuid.UUID) error {
	transaction, err := s.transactionRepo.GetByID(transactionID)
	if err != nil {
		return err
	}
	if transaction.FamilyID != familyID {
		return ErrTransactionNotOwned
	}

	if err := s.transactionRepo.Delete(transactionID); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	auditLog := &models.AuditLog{
		FamilyID:   familyID,
		Action:     models.AuditActionTransactionDeleted,
		Resource:   "transaction",
		ResourceID: transactionID.String(),
	}
	if err := s.auditRepo.Create(auditLog); err != nil {
		s.logger.Error("failed to write audit log",
			"event", "audit_write_failed",
			"action", models.AuditActionTransactionDeleted,
			"error", err.Error(),
		)
	}
	return nil
}
