package models

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// MaxDescriptionLength bounds the persisted transaction description
	MaxDescriptionLength = 1000
)

var (
	ErrInvalidAmount         = errors.New("transaction amount must be positive")
	ErrFingerprintRequired   = errors.New("transaction fingerprint is required")
	ErrFamilyRequired        = errors.New("family ID is required")
	ErrCategoryRequired      = errors.New("category ID is required")
	ErrDescriptionTooLong    = errors.New("transaction description exceeds maximum length")
	ErrTransactionDateZero   = errors.New("transaction date is required")
)

// Transaction represents one ledger row owned by a family. Rows created by
// the statement import pipeline carry a fingerprint that uniquely identifies
// the underlying economic event; the composite unique index on
// (family_id, fingerprint) makes duplicate inserts impossible even under
// concurrent imports of the same statement.
type Transaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	FamilyID        uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_transactions_family_fingerprint" json:"family_id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	TransactionDate time.Time       `gorm:"type:date;not null;index" json:"transaction_date"`
	Description     *string         `gorm:"type:varchar(1000)" json:"description,omitempty"`
	Reference       *string         `gorm:"type:varchar(100);index" json:"reference,omitempty"`
	Fingerprint     string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_transactions_family_fingerprint" json:"fingerprint"`
	CreatedAt       time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`

	// Associations
	Category Category `gorm:"foreignKey:CategoryID" json:"-"`
}

// BeforeCreate hook for Transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	now := time.Now()

	// Set timestamps if not already set (the import service stamps created_at
	// uniformly across a batch)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	return t.Validate()
}

// BeforeUpdate hook for Transaction
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now()
	return t.Validate()
}

// Validate validates the transaction fields
func (t *Transaction) Validate() error {
	if t.FamilyID == uuid.Nil {
		return ErrFamilyRequired
	}

	if t.CategoryID == uuid.Nil {
		return ErrCategoryRequired
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if t.TransactionDate.IsZero() {
		return ErrTransactionDateZero
	}

	if t.Fingerprint == "" {
		return ErrFingerprintRequired
	}

	if t.Description != nil && utf8.RuneCountInString(*t.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}

	return nil
}

func (t *Transaction) TableName() string {
	return "transactions"
}
