package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"family-ledger/internal/database"
	"family-ledger/internal/models"
	"family-ledger/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDefaultCategoryMissing means a family has no fallback category, which
// makes categorization impossible. This is a data integrity problem, not a
// bad upload, and the import aborts without touching the ledger.
var ErrDefaultCategoryMissing = errors.New("family has no default category")

// ImportService coordinates statement imports: it sends the uploaded file to
// the transform API, normalizes and categorizes the returned entries, drops
// duplicates and persists the remainder in a single database transaction.
type ImportService struct {
	db              *database.DB
	transformClient TransformClientInterface
	metrics         MetricsRecorderInterface
	logger          *slog.Logger
}

func NewImportService(db *database.DB, transformClient TransformClientInterface, metrics MetricsRecorderInterface, logger *slog.Logger) ImportServiceInterface {
	return &ImportService{
		db:              db,
		transformClient: transformClient,
		metrics:         metrics,
		logger:          logger,
	}
}

// ImportStatement runs one end-to-end import for a family. Per-entry
// failures become error rows in the summary and never abort the batch; the
// returned counts always satisfy inserted + skipped + errors == entries.
func (s *ImportService) ImportStatement(ctx context.Context, familyID, userID uuid.UUID, files []StatementFile) (*models.ImportSummary, error) {
	started := time.Now()
	filenames := statementFilenames(files)

	entries, err := s.transformClient.TransformBatch(ctx, files)
	if err != nil {
		s.metrics.RecordTransformCall("failure")
		s.metrics.RecordImport("failed", time.Since(started).Seconds())
		s.recordImportFailure(familyID, userID, filenames, err)
		return nil, err
	}
	s.metrics.RecordTransformCall("success")

	summary, err := s.persistEntries(familyID, userID, entries)
	if err != nil {
		s.metrics.RecordImport("failed", time.Since(started).Seconds())
		s.recordImportFailure(familyID, userID, filenames, err)
		return nil, err
	}

	s.metrics.RecordImport("success", time.Since(started).Seconds())
	s.metrics.RecordImportRows(summary.InsertedCount, summary.SkippedDuplicatesCount, summary.ErrorsCount)
	s.recordImportSuccess(familyID, userID, filenames, summary)

	s.logger.Info("statement import completed",
		"event", "statement_imported",
		"family_id", familyID.String(),
		"filename", filenames,
		"inserted", summary.InsertedCount,
		"skipped_duplicates", summary.SkippedDuplicatesCount,
		"errors", summary.ErrorsCount,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	return summary, nil
}

// persistEntries normalizes, deduplicates and inserts one batch of entries
// inside a single database transaction.
func (s *ImportService) persistEntries(familyID, userID uuid.UUID, entries []models.RawStatementEntry) (*models.ImportSummary, error) {
	summary := &models.ImportSummary{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		categoryRepo := repositories.NewCategoryRepository(tx)
		transactionRepo := repositories.NewTransactionRepository(tx)

		categorizer, err := s.buildCategorizer(categoryRepo, familyID)
		if err != nil {
			return err
		}

		normalizer := NewEntryNormalizer(categorizer)
		candidates := make([]*models.Transaction, 0, len(entries))
		for i, entry := range entries {
			transaction, err := normalizer.Normalize(i, entry, familyID)
			if err != nil {
				var normErr *NormalizationError
				if errors.As(err, &normErr) {
					s.logger.Warn("skipping malformed statement entry",
						"event", "entry_rejected",
						"family_id", familyID.String(),
						"entry_index", normErr.Index,
						"reason", normErr.Reason,
					)
					summary.ErrorsCount++
					continue
				}
				return err
			}
			candidates = append(candidates, transaction)
		}

		deduplicator := NewDeduplicator(transactionRepo)
		inserts, skipped, err := deduplicator.Filter(familyID, candidates)
		if err != nil {
			return err
		}
		summary.SkippedDuplicatesCount = skipped

		if len(inserts) == 0 {
			return nil
		}

		now := time.Now().UTC()
		rows := make([]models.Transaction, len(inserts))
		for i, insert := range inserts {
			insert.ID = uuid.New()
			insert.UserID = userID
			insert.CreatedAt = now
			insert.UpdatedAt = now
			rows[i] = *insert
		}

		// The batch insert runs in a savepoint so a unique-index collision
		// does not poison the surrounding transaction. A collision means a
		// concurrent import persisted one of our fingerprints after the
		// dedup read; fall back to inserting rows one at a time and count
		// the colliding rows as skipped duplicates.
		batchErr := tx.Transaction(func(batchTx *gorm.DB) error {
			return repositories.NewTransactionRepository(batchTx).CreateBatch(rows)
		})
		if batchErr == nil {
			summary.InsertedCount = len(rows)
			return nil
		}
		if !errors.Is(batchErr, repositories.ErrDuplicateFingerprint) {
			return fmt.Errorf("persisting imported transactions: %w", batchErr)
		}

		s.logger.Warn("import lost a fingerprint race, inserting row by row",
			"event", "import_dedup_race",
			"family_id", familyID.String(),
			"rows", len(rows),
		)
		for i := range rows {
			rowErr := tx.Transaction(func(rowTx *gorm.DB) error {
				return repositories.NewTransactionRepository(rowTx).Create(&rows[i])
			})
			switch {
			case rowErr == nil:
				summary.InsertedCount++
			case errors.Is(rowErr, repositories.ErrDuplicateFingerprint):
				summary.SkippedDuplicatesCount++
			default:
				return fmt.Errorf("persisting imported transaction: %w", rowErr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// Recategorize re-runs tag matching over a family's default-categorized
// transactions, picking up categories and tags added since they were
// imported. Transactions already assigned a real category are untouched.
func (s *ImportService) Recategorize(ctx context.Context, familyID uuid.UUID) (*models.RecategorizeResult, error) {
	result := &models.RecategorizeResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		categoryRepo := repositories.NewCategoryRepository(tx)
		transactionRepo := repositories.NewTransactionRepository(tx)

		categorizer, err := s.buildCategorizer(categoryRepo, familyID)
		if err != nil {
			return err
		}

		transactions, err := transactionRepo.GetByFamilyAndCategory(familyID, categorizer.DefaultCategoryID())
		if err != nil {
			return fmt.Errorf("loading uncategorized transactions: %w", err)
		}
		result.Scanned = len(transactions)

		for i := range transactions {
			description := ""
			if transactions[i].Description != nil {
				description = *transactions[i].Description
			}
			resolved := categorizer.Resolve(description)
			if resolved == categorizer.DefaultCategoryID() {
				continue
			}
			if err := transactionRepo.UpdateCategory(transactions[i].ID, resolved); err != nil {
				return fmt.Errorf("recategorizing transaction %s: %w", transactions[i].ID, err)
			}
			result.Updated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Updated > 0 {
		auditLog := &models.AuditLog{
			FamilyID: familyID,
			Action:   models.AuditActionRecategorized,
			Resource: "transaction",
		}
		auditLog.SetMetadata("updated_count", result.Updated)
		auditLog.SetMetadata("scanned_count", result.Scanned)
		s.writeAuditLog(auditLog)
	}

	s.logger.Info("recategorization completed",
		"event", "recategorized",
		"family_id", familyID.String(),
		"scanned", result.Scanned,
		"updated", result.Updated,
	)

	return result, nil
}

func (s *ImportService) buildCategorizer(categoryRepo repositories.CategoryRepositoryInterface, familyID uuid.UUID) (*Categorizer, error) {
	defaultCategory, err := categoryRepo.GetDefaultByFamilyID(familyID)
	if err != nil {
		if errors.Is(err, repositories.ErrDefaultCategoryNotFound) {
			return nil, ErrDefaultCategoryMissing
		}
		return nil, fmt.Errorf("loading default category: %w", err)
	}

	categories, err := categoryRepo.GetByFamilyID(familyID)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}

	return NewCategorizer(categories, defaultCategory.ID), nil
}

func statementFilenames(files []StatementFile) string {
	names := make([]string, len(files))
	for i, file := range files {
		names[i] = file.Name
	}
	return strings.Join(names, ", ")
}

func (s *ImportService) recordImportSuccess(familyID, userID uuid.UUID, filename string, summary *models.ImportSummary) {
	auditLog := &models.AuditLog{
		FamilyID: familyID,
		UserID:   &userID,
		Action:   models.AuditActionStatementImported,
		Resource: "statement",
	}
	auditLog.SetMetadata("filename", filename)
	auditLog.SetMetadata("inserted_count", summary.InsertedCount)
	auditLog.SetMetadata("skipped_duplicates_count", summary.SkippedDuplicatesCount)
	auditLog.SetMetadata("errors_count", summary.ErrorsCount)
	s.writeAuditLog(auditLog)
}

func (s *ImportService) recordImportFailure(familyID, userID uuid.UUID, filename string, cause error) {
	auditLog := &models.AuditLog{
		FamilyID: familyID,
		UserID:   &userID,
		Action:   models.AuditActionImportFailed,
		Resource: "statement",
	}
	auditLog.SetMetadata("filename", filename)
	auditLog.SetMetadata("cause", cause.Error())
	s.writeAuditLog(auditLog)
}

// Audit writes never fail an import; a lost audit row is logged and dropped.
func (s *ImportService) writeAuditLog(auditLog *models.AuditLog) {
	auditRepo := repositories.NewAuditLogRepository(s.db.DB)
	if err := auditRepo.Create(auditLog); err != nil {
		s.logger.Error("failed to write audit log",
			"event", "audit_write_failed",
			"action", auditLog.Action,
			"error", err.Error(),
		)
	}
}
