package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"family-ledger/internal/models"
	"family-ledger/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrCategoryNameTaken     = errors.New("category name already exists for this family")
	ErrCategoryNotOwned      = errors.New("category does not belong to this family")
	ErrDefaultCategoryLocked = errors.New("the default category cannot be deleted")
	ErrCategoryNameRequired  = errors.New("category name is required")
)

// CategoryService manages a family's category set. The default category is
// protected: it cannot be deleted because every import needs a fallback.
type CategoryService struct {
	categoryRepo repositories.CategoryRepositoryInterface
	auditRepo    repositories.AuditLogRepositoryInterface
	logger       *slog.Logger
}

func NewCategoryService(categoryRepo repositories.CategoryRepositoryInterface, auditRepo repositories.AuditLogRepositoryInterface, logger *slog.Logger) CategoryServiceInterface {
	return &CategoryService{
		categoryRepo: categoryRepo,
		auditRepo:    auditRepo,
		logger:       logger,
	}
}

func (s *CategoryService) CreateCategory(familyID uuid.UUID, name string, tags []string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	exists, err := s.categoryRepo.ExistsByName(familyID, name)
	if err != nil {
		return nil, fmt.Errorf("checking category name: %w", err)
	}
	if exists {
		return nil, ErrCategoryNameTaken
	}

	category := &models.Category{
		FamilyID: familyID,
		Name:     name,
		Tags:     normalizeTags(tags),
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	s.audit(familyID, models.AuditActionCategoryCreated, category)
	return category, nil
}

func (s *CategoryService) GetCategories(familyID uuid.UUID) ([]models.Category, error) {
	categories, err := s.categoryRepo.GetByFamilyID(familyID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) UpdateCategory(familyID, categoryID uuid.UUID, name string, tags []string) (*models.Category, error) {
	category, err := s.ownedCategory(familyID, categoryID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	if !strings.EqualFold(category.Name, name) {
		exists, err := s.categoryRepo.ExistsByName(familyID, name)
		if err != nil {
			return nil, fmt.Errorf("checking category name: %w", err)
		}
		if exists {
			return nil, ErrCategoryNameTaken
		}
	}

	category.Name = name
	category.Tags = normalizeTags(tags)
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, fmt.Errorf("updating category: %w", err)
	}

	s.audit(familyID, models.AuditActionCategoryUpdated, category)
	return category, nil
}

func (s *CategoryService) DeleteCategory(familyID, categoryID uuid.UUID) error {
	category, err := s.ownedCategory(familyID, categoryID)
	if err != nil {
		return err
	}
	if category.IsDefault {
		return ErrDefaultCategoryLocked
	}

	if err := s.categoryRepo.Delete(category.ID); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}

	s.audit(familyID, models.AuditActionCategoryDeleted, category)
	return nil
}

func (s *CategoryService) ownedCategory(familyID, categoryID uuid.UUID) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(categoryID)
	if err != nil {
		return nil, err
	}
	if category.FamilyID != familyID {
		return nil, ErrCategoryNotOwned
	}
	return category, nil
}

func (s *CategoryService) audit(familyID uuid.UUID, action string, category *models.Category) {
	auditLog := &models.AuditLog{
		FamilyID:   familyID,
		Action:     action,
		Resource:   "category",
		ResourceID: category.ID.String(),
	}
	auditLog.SetMetadata("name", category.Name)
	if err := s.auditRepo.Create(auditLog); err != nil {
		s.logger.Error("failed to write audit log",
			"event", "audit_write_failed",
			"action", action,
			"error", err.Error(),
		)
	}
}

func normalizeTags(tags []string) models.StringList {
	seen := make(map[string]struct{}, len(tags))
	normalized := make(models.StringList, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
	}
	return normalized
}
