package repositories

import (
	"errors"
	"fmt"
	"time"

	"family-ledger/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrDuplicateFingerprint is returned when an insert collides with the
	// unique (family_id, fingerprint) index. Seen only when two imports of
	// the same statement race past the read-side dedup check.
	ErrDuplicateFingerprint = errors.New("transaction fingerprint already exists")
)

// transactionRepository implements TransactionRepositoryInterface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepositoryInterface {
	return &transactionRepository{
		db: db,
	}
}

// Create creates a new transaction
func (r *transactionRepository) Create(transaction *models.Transaction) error {
	if err := r.db.Create(transaction).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateFingerprint
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// CreateBatch inserts all transactions as a single set-oriented operation.
// The insert is all-or-nothing with respect to the surrounding transaction.
func (r *transactionRepository) CreateBatch(transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	if err := r.db.Create(&transactions).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateFingerprint
		}
		return fmt.Errorf("failed to create batch transactions: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction by ID
func (r *transactionRepository) GetByID(id uuid.UUID) (*models.Transaction, error) {
	transaction := &models.Transaction{ID: id}
	if err := r.db.First(transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return transaction, nil
}

// GetByFamilyID retrieves transactions for a family with pagination
func (r *transactionRepository) GetByFamilyID(familyID uuid.UUID, offset, limit int) ([]models.Transaction, int64, error) {
	var transactions []models.Transaction
	var total int64

	if err := r.db.Model(&models.Transaction{}).
		Where("family_id = ?", familyID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	if err := r.db.Where("family_id = ?", familyID).
		Offset(offset).Limit(limit).
		Order("transaction_date DESC, created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get transactions: %w", err)
	}

	return transactions, total, nil
}

// GetByFamilyAndDateRange retrieves a family's transactions whose date falls
// in the inclusive [startDate, endDate] range. This is the minimal fetch
// window the deduplicator needs; it never scans the whole ledger.
func (r *transactionRepository) GetByFamilyAndDateRange(familyID uuid.UUID, startDate, endDate time.Time) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.db.Where("family_id = ? AND transaction_date BETWEEN ? AND ?", familyID, startDate, endDate).
		Order("transaction_date ASC").
		Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get transactions by date range: %w", err)
	}
	return transactions, nil
}

// GetByFamilyAndCategory retrieves all of a family's transactions assigned to a category
func (r *transactionRepository) GetByFamilyAndCategory(familyID, categoryID uuid.UUID) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.db.Where("family_id = ? AND category_id = ?", familyID, categoryID).
		Order("transaction_date ASC").
		Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get transactions by category: %w", err)
	}
	return transactions, nil
}

// UpdateCategory reassigns a transaction to a different category. The row is
// loaded first so the model's update hook validates a complete transaction.
func (r *transactionRepository) UpdateCategory(transactionID, categoryID uuid.UUID) error {
	transaction := &models.Transaction{ID: transactionID}
	if err := r.db.First(transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransactionNotFound
		}
		return fmt.Errorf("failed to get transaction for category update: %w", err)
	}

	transaction.CategoryID = categoryID
	if err := r.db.Save(transaction).Error; err != nil {
		return fmt.Errorf("failed to update transaction category: %w", err)
	}
	return nil
}

// Delete deletes a transaction by ID
func (r *transactionRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&models.Transaction{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a unique constraint violation
// from either PostgreSQL (production) or the gorm error translator (tests)
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	return false
}
