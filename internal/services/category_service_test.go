package services

import (
	"io"
	"log/slog"
	"testing"

	"family-ledger/internal/database"
	"family-ledger/internal/models"
	"family-ledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type CategoryServiceTestSuite struct {
	suite.Suite
	db       *database.DB
	service  CategoryServiceInterface
	familyID uuid.UUID
}

func TestCategoryServiceSuite(t *testing.T) {
	suite.Run(t, new(CategoryServiceTestSuite))
}

func (s *CategoryServiceTestSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = NewCategoryService(
		repositories.NewCategoryRepository(s.db.DB),
		repositories.NewAuditLogRepository(s.db.DB),
		logger,
	)
	s.familyID = uuid.New()
	database.CreateTestDefaultCategory(s.T(), s.db, s.familyID)
}

func (s *CategoryServiceTestSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *CategoryServiceTestSuite) TestCreateCategory() {
	category, err := s.service.CreateCategory(s.familyID, "Groceries", []string{"Supermarket", " grocery ", "supermarket", ""})

	s.Require().NoError(err)
	s.Equal("Groceries", category.Name)
	s.Equal(models.StringList{"supermarket", "grocery"}, category.Tags, "tags are lowercased, trimmed and deduplicated")
	s.False(category.IsDefault)
}

func (s *CategoryServiceTestSuite) TestCreateCategoryRejectsBlankName() {
	_, err := s.service.CreateCategory(s.familyID, "   ", nil)
	s.ErrorIs(err, ErrCategoryNameRequired)
}

func (s *CategoryServiceTestSuite) TestCreateCategoryRejectsDuplicateName() {
	_, err := s.service.CreateCategory(s.familyID, "Groceries", nil)
	s.Require().NoError(err)

	_, err = s.service.CreateCategory(s.familyID, "Groceries", nil)
	s.ErrorIs(err, ErrCategoryNameTaken)
}

func (s *CategoryServiceTestSuite) TestSameNameAllowedAcrossFamilies() {
	_, err := s.service.CreateCategory(s.familyID, "Groceries", nil)
	s.Require().NoError(err)

	otherFamily := uuid.New()
	database.CreateTestDefaultCategory(s.T(), s.db, otherFamily)
	_, err = s.service.CreateCategory(otherFamily, "Groceries", nil)
	s.NoError(err)
}

func (s *CategoryServiceTestSuite) TestUpdateCategory() {
	category, err := s.service.CreateCategory(s.familyID, "Groceries", []string{"supermarket"})
	s.Require().NoError(err)

	updated, err := s.service.UpdateCategory(s.familyID, category.ID, "Food", []string{"supermarket", "bakery"})
	s.Require().NoError(err)
	s.Equal("Food", updated.Name)
	s.Equal(models.StringList{"supermarket", "bakery"}, updated.Tags)
}

func (s *CategoryServiceTestSuite) TestUpdateForeignCategoryRejected() {
	otherFamily := uuid.New()
	foreign := database.CreateTestCategory(s.T(), s.db, otherFamily, "Theirs", nil)

	_, err := s.service.UpdateCategory(s.familyID, foreign.ID, "Mine now", nil)
	s.ErrorIs(err, ErrCategoryNotOwned)
}

func (s *CategoryServiceTestSuite) TestDeleteCategory() {
	category, err := s.service.CreateCategory(s.familyID, "Groceries", nil)
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteCategory(s.familyID, category.ID))

	categories, err := s.service.GetCategories(s.familyID)
	s.Require().NoError(err)
	s.Len(categories, 1, "only the default category remains")
}

func (s *CategoryServiceTestSuite) TestDefaultCategoryCannotBeDeleted() {
	categories, err := s.service.GetCategories(s.familyID)
	s.Require().NoError(err)
	s.Require().Len(categories, 1)

	err = s.service.DeleteCategory(s.familyID, categories[0].ID)
	s.ErrorIs(err, ErrDefaultCategoryLocked)
}

func (s *CategoryServiceTestSuite) TestDeleteMissingCategory() {
	err := s.service.DeleteCategory(s.familyID, uuid.New())
	s.ErrorIs(err, repositories.ErrCategoryNotFound)
}
