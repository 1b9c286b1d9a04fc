package services

import (
	"context"

	"family-ledger/internal/models"

	"github.com/google/uuid"
)

// TransformClientInterface converts uploaded statement files into raw
// entries by calling the external transform API.
type TransformClientInterface interface {
	Transform(ctx context.Context, file StatementFile) ([]models.RawStatementEntry, error)
	TransformBatch(ctx context.Context, files []StatementFile) ([]models.RawStatementEntry, error)
}

// ImportServiceInterface runs statement imports and recategorization for a
// family's ledger.
type ImportServiceInterface interface {
	ImportStatement(ctx context.Context, familyID, userID uuid.UUID, files []StatementFile) (*models.ImportSummary, error)
	Recategorize(ctx context.Context, familyID uuid.UUID) (*models.RecategorizeResult, error)
}

// CategoryServiceInterface manages a family's category set.
type CategoryServiceInterface interface {
	CreateCategory(familyID uuid.UUID, name string, tags []string) (*models.Category, error)
	GetCategories(familyID uuid.UUID) ([]models.Category, error)
	UpdateCategory(familyID, categoryID uuid.UUID, name string, tags []string) (*models.Category, error)
	DeleteCategory(familyID, categoryID uuid.UUID) error
}

// CircuitBreakerInterface guards the transform API against sustained
// downstream failure.
type CircuitBreakerInterface interface {
	IsOpen() bool
	RecordSuccess()
	RecordFailure()
	GetState() CircuitBreakerState
	Reset()
	GetFailureCount() int
}

// MetricsRecorderInterface abstracts import metrics so tests can run
// without touching the global prometheus registry.
type MetricsRecorderInterface interface {
	RecordImport(status string, durationSeconds float64)
	RecordImportRows(inserted, skipped, errors int)
	RecordTransformCall(outcome string)
}
