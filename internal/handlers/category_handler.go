package handlers

import (
	"errors"
	"net/http"

	"family-ledger/internal/dto"
	apperrors "family-ledger/internal/errors"
	"family-ledger/internal/repositories"
	"family-ledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CategoryHandler handles category management HTTP requests
type CategoryHandler struct {
	categoryService services.CategoryServiceInterface
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService services.CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategory creates a new category for the family
// @Summary Create category
// @Description Create a category with matching tags for automatic transaction categorization
// @Tags Categories
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateCategoryRequest true "Category name and tags"
// @Success 201 {object} dto.CategoryResponse "Created category"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body"
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - Missing or invalid authentication"
// @Failure 409 {object} errors.ErrorResponse "CATEGORY_003 - Category name already exists"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /categories [post]
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	familyID, err := getFamilyIDFromContext(c)
	if err != nil {
		return SendError(c, apperrors.AuthMissingToken)
	}

	var req dto.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, apperrors.ValidationGeneral, apperrors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return SendError(c, apperrors.ValidationGeneral, apperrors.WithDetails(err.Error()))
	}

	category, err := h.categoryService.CreateCategory(familyID, req.Name, req.Tags)
	if err != nil {
		return h.sendCategoryError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.NewCategoryResponse(category))
}

// ListCategories returns all categories for the family
// @Summary List categories
// @Description Retrieve all categories belonging to the authenticated family
// @Tags Categories
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.ListCategoriesResponse "Family categories"
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - Missing or invalid authentication"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /categories [get]
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	familyID, err := getFamilyIDFromContext(c)
	if err != nil {
		return SendError(c, apperrors.AuthMissingToken)
	}

	categories, err := h.categoryService.GetCategories(familyID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewListCategoriesResponse(categories))
}

// UpdateCategory renames a category or replaces its tags
// @Summary Update category
// @Description Rename a category or replace its matching tags
// @Tags Categories
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Category ID (UUID)"
// @Param request body dto.UpdateCategoryRequest true "New name and tags"
// @Success 200 {object} dto.CategoryResponse "Updated category"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request or CATEGORY_002 - Invalid category ID"
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - Missing or invalid authentication"
// @Failure 404 {object} errors.ErrorResponse "CATEGORY_001 - Category not found"
// @Failure 409 {object} errors.ErrorResponse "CATEGORY_003 - Category name already exists"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	familyID, err := getFamilyIDFromContext(c)
	if err != nil {
		return SendError(c, apperrors.AuthMissingToken)
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, apperrors.CategoryInvalidID)
	}

	var req dto.UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, apperrors.ValidationGeneral, apperrors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return SendError(c, apperrors.ValidationGeneral, apperrors.WithDetails(err.Error()))
	}

	category, err := h.categoryService.UpdateCategory(familyID, categoryID, req.Name, req.Tags)
	if err != nil {
		return h.sendCategoryError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewCategoryResponse(category))
}

// DeleteCategory removes a non-default category
// @Summary Delete category
// @Description Delete a category; the family's default category cannot be deleted
// @Tags Categories
// @Security BearerAuth
// @Produce json
// @Param id path string true "Category ID (UUID)"
// @Success 204 "Category deleted"
// @Failure 400 {object} errors.ErrorResponse "CATEGORY_002 - Invalid category ID or VALIDATION_001 - Default category cannot be deleted"
// @Failure 401 {object} errors.ErrorResponse "AUTH_001 - Missing or invalid authentication"
// @Failure 404 {object} errors.ErrorResponse "CATEGORY_001 - Category not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	familyID, err := getFamilyIDFromContext(c)
	if err != nil {
		return SendError(c, apperrors.AuthMissingToken)
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, apperrors.CategoryInvalidID)
	}

	if err := h.categoryService.DeleteCategory(familyID, categoryID); err != nil {
		return h.sendCategoryError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CategoryHandler) sendCategoryError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repositories.ErrCategoryNotFound), errors.Is(err, services.ErrCategoryNotOwned):
		// Foreign categories surface as not found so family scoping is not probeable
		return SendError(c, apperrors.CategoryNotFound)
	case errors.Is(err, services.ErrCategoryNameTaken):
		return SendError(c, apperrors.CategoryAlreadyExists)
	case errors.Is(err, services.ErrCategoryNameRequired):
		return SendError(c, apperrors.ValidationRequiredField, apperrors.WithDetails("Category name is required"))
	case errors.Is(err, services.ErrDefaultCategoryLocked):
		return SendError(c, apperrors.ValidationGeneral, apperrors.WithDetails("The default category cannot be deleted"))
	default:
		return SendSystemError(c, err)
	}
}
