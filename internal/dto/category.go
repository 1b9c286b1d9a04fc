package dto

import (
	"time"

	"family-ledger/internal/models"

	"github.com/google/uuid"
)

// CreateCategoryRequest is the payload for creating a category
type CreateCategoryRequest struct {
	Name string   `json:"name" validate:"required,category_name"`
	Tags []string `json:"tags" validate:"omitempty,max=50,dive,category_tag"`
}

// UpdateCategoryRequest is the payload for renaming a category or replacing its tags
type UpdateCategoryRequest struct {
	Name string   `json:"name" validate:"required,category_name"`
	Tags []string `json:"tags" validate:"omitempty,max=50,dive,category_tag"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Tags      []string  `json:"tags"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListCategoriesResponse represents the response for listing a family's categories
type ListCategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

func NewCategoryResponse(category *models.Category) CategoryResponse {
	tags := category.Tags
	if tags == nil {
		tags = models.StringList{}
	}
	return CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		Tags:      tags,
		IsDefault: category.IsDefault,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}

func NewListCategoriesResponse(categories []models.Category) ListCategoriesResponse {
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = NewCategoryResponse(&categories[i])
	}
	return ListCategoriesResponse{Categories: responses}
}
