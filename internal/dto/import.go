package dto

import "family-ledger/internal/models"

// ImportSummaryResponse reports the outcome of one statement import
type ImportSummaryResponse struct {
	InsertedCount          int `json:"inserted_count"`
	SkippedDuplicatesCount int `json:"skipped_duplicates_count"`
	ErrorsCount            int `json:"errors_count"`
}

// RecategorizeResponse reports a recategorization pass
type RecategorizeResponse struct {
	Updated int `json:"updated"`
	Scanned int `json:"scanned"`
}

func NewImportSummaryResponse(summary *models.ImportSummary) ImportSummaryResponse {
	return ImportSummaryResponse{
		InsertedCount:          summary.InsertedCount,
		SkippedDuplicatesCount: summary.SkippedDuplicatesCount,
		ErrorsCount:            summary.ErrorsCount,
	}
}

func NewRecategorizeResponse(result *models.RecategorizeResult) RecategorizeResponse {
	return RecategorizeResponse{
		Updated: result.Updated,
		Scanned: result.Scanned,
	}
}
