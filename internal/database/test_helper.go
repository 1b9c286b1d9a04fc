package database

import (
	"fmt"
	"testing"

	"family-ledger/internal/config"
	"family-ledger/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), gormConfig)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	testDB := &DB{
		DB: db,
		config: &config.DatabaseConfig{
			MaxConnections: 1,
			MaxIdleConns:   1,
		},
	}

	if err := testDB.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return testDB
}

// CreateTestCategory inserts a category for the given family
func CreateTestCategory(t *testing.T, db *DB, familyID uuid.UUID, name string, tags []string) *models.Category {
	t.Helper()

	category := &models.Category{
		FamilyID: familyID,
		Name:     name,
		Tags:     models.StringList(tags),
	}

	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}

	return category
}

// CreateTestDefaultCategory inserts the family's default (uncategorized) category
func CreateTestDefaultCategory(t *testing.T, db *DB, familyID uuid.UUID) *models.Category {
	t.Helper()

	category := &models.Category{
		FamilyID:  familyID,
		Name:      "Uncategorized",
		IsDefault: true,
	}

	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test default category: %v", err)
	}

	return category
}

func CleanupTestDB(t *testing.T, db *DB) {
	t.Helper()

	tables := []string{
		"transactions",
		"categories",
		"audit_logs",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("failed to cleanup table %s: %v", table, err)
		}
	}

	sqlDB, err := db.DB.DB()
	if err == nil {
		sqlDB.Close()
	}
}
