package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"family-ledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Date layouts accepted on incoming statement entries, tried in order.
var entryDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizationError describes why a single raw entry could not be turned
// into a transaction. Entries that fail normalization count as error rows
// in the import summary and never abort the batch.
type NormalizationError struct {
	Index  int
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("entry %d: %s", e.Index, e.Reason)
}

// EntryNormalizer converts raw statement entries into transaction rows:
// it parses the entry date, picks the signed money column, composes the
// description and computes the dedup fingerprint.
type EntryNormalizer struct {
	categorizer *Categorizer
}

func NewEntryNormalizer(categorizer *Categorizer) *EntryNormalizer {
	return &EntryNormalizer{categorizer: categorizer}
}

// Normalize maps one raw entry to a transaction scoped to the given family.
// The returned transaction carries its fingerprint and resolved category but
// no user or timestamps; the import service stamps those uniformly.
func (n *EntryNormalizer) Normalize(index int, entry models.RawStatementEntry, familyID uuid.UUID) (*models.Transaction, error) {
	date, err := parseEntryDate(entry.Time)
	if err != nil {
		return nil, &NormalizationError{Index: index, Reason: err.Error()}
	}

	amount, err := resolveAmount(entry.MoneyIn.Decimal, entry.MoneyOut.Decimal)
	if err != nil {
		return nil, &NormalizationError{Index: index, Reason: err.Error()}
	}

	description := composeDescription(entry)

	var reference *string
	if ref := strings.TrimSpace(entry.Ref); ref != "" {
		reference = &ref
	}

	tx := &models.Transaction{
		FamilyID:        familyID,
		CategoryID:      n.categorizer.Resolve(description),
		Amount:          amount,
		TransactionDate: date,
		Reference:       reference,
	}
	if description != "" {
		tx.Description = &description
	}
	tx.Fingerprint = Fingerprint(tx.FamilyID, tx.Reference, tx.TransactionDate, tx.Amount, tx.Description)

	return tx, nil
}

func parseEntryDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing entry date")
	}
	for _, layout := range entryDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			// Transactions carry a calendar date only. Dropping the
			// time-of-day keeps fingerprints stable across statements
			// that encode the same entry with and without a timestamp.
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized entry date %q", raw)
}

// resolveAmount picks the credit column when it carries value, otherwise the
// debit column; both are read as magnitudes. An entry where neither column
// is positive carries no money movement and is rejected.
func resolveAmount(moneyIn, moneyOut decimal.Decimal) (decimal.Decimal, error) {
	amount := moneyIn.Abs()
	if amount.IsZero() {
		amount = moneyOut.Abs()
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, fmt.Errorf("entry has no positive amount")
	}
	return amount, nil
}

// composeDescription joins the entry details, reference and status into the
// persisted description, collapsing whitespace runs and capping the result.
func composeDescription(entry models.RawStatementEntry) string {
	parts := make([]string, 0, 3)
	if details := collapseWhitespace(entry.Details); details != "" {
		parts = append(parts, details)
	}
	if ref := collapseWhitespace(entry.Ref); ref != "" {
		parts = append(parts, "Ref: "+ref)
	}
	if status := collapseWhitespace(entry.Status); status != "" {
		parts = append(parts, "Status: "+status)
	}

	description := strings.Join(parts, " | ")
	if len(description) > models.MaxDescriptionLength {
		runes := []rune(description)
		if len(runes) > models.MaxDescriptionLength {
			runes = runes[:models.MaxDescriptionLength]
		}
		description = string(runes)
	}
	return description
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
