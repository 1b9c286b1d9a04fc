package repositories

import (
	"time"

	"family-ledger/internal/models"

	"github.com/google/uuid"
)

// CategoryRepositoryInterface defines the contract for category repository operations
type CategoryRepositoryInterface interface {
	Create(category *models.Category) error
	GetByID(id uuid.UUID) (*models.Category, error)
	GetByFamilyID(familyID uuid.UUID) ([]models.Category, error)
	GetDefaultByFamilyID(familyID uuid.UUID) (*models.Category, error)
	Update(category *models.Category) error
	Delete(id uuid.UUID) error
	ExistsByName(familyID uuid.UUID, name string) (bool, error)
}

// TransactionRepositoryInterface defines the contract for transaction repository operations
type TransactionRepositoryInterface interface {
	Create(transaction *models.Transaction) error
	CreateBatch(transactions []models.Transaction) error
	GetByID(id uuid.UUID) (*models.Transaction, error)
	GetByFamilyID(familyID uuid.UUID, offset, limit int) ([]models.Transaction, int64, error)
	GetByFamilyAndDateRange(familyID uuid.UUID, startDate, endDate time.Time) ([]models.Transaction, error)
	GetByFamilyAndCategory(familyID, categoryID uuid.UUID) ([]models.Transaction, error)
	UpdateCategory(transactionID, categoryID uuid.UUID) error
	Delete(id uuid.UUID) error
}

// AuditLogRepositoryInterface defines the contract for audit log repository operations
type AuditLogRepositoryInterface interface {
	Create(log *models.AuditLog) error
	GetByFamilyID(familyID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error)
	GetByAction(action string, offset, limit int) ([]*models.AuditLog, int64, error)
	DeleteOlderThan(duration time.Duration) (int64, error)
}
