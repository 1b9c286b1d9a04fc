package repositories

import (
	"errors"
	"fmt"

	"family-ledger/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	// ErrDefaultCategoryNotFound signals a broken family setup: imports
	// cannot run until the default category is seeded.
	ErrDefaultCategoryNotFound = errors.New("default category not found for family")
)

// categoryRepository implements CategoryRepositoryInterface
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepositoryInterface {
	return &categoryRepository{
		db: db,
	}
}

// Create creates a new category
func (r *categoryRepository) Create(category *models.Category) error {
	if err := r.db.Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetByID retrieves a category by ID
func (r *categoryRepository) GetByID(id uuid.UUID) (*models.Category, error) {
	category := &models.Category{ID: id}
	if err := r.db.First(category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// GetByFamilyID retrieves all categories belonging to a family
func (r *categoryRepository) GetByFamilyID(familyID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Where("family_id = ?", familyID).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to get categories for family: %w", err)
	}
	return categories, nil
}

// GetDefaultByFamilyID retrieves the family's default (uncategorized) category
func (r *categoryRepository) GetDefaultByFamilyID(familyID uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.Where("family_id = ? AND is_default = ?", familyID, true).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDefaultCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get default category: %w", err)
	}
	return &category, nil
}

// Update persists a modified category. Callers pass the loaded model so the
// update hook sees every field when it validates.
func (r *categoryRepository) Update(category *models.Category) error {
	result := r.db.Save(category)
	if result.Error != nil {
		return fmt.Errorf("failed to update category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Delete deletes a category by ID
func (r *categoryRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// ExistsByName checks whether a family already has a category with the given name
func (r *categoryRepository) ExistsByName(familyID uuid.UUID, name string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Category{}).
		Where("family_id = ? AND LOWER(name) = LOWER(?)", familyID, name).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check category name: %w", err)
	}
	return count > 0, nil
}
