package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"family-ledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// refPattern matches the "Ref: <token>" convention embedded in persisted
// transaction descriptions. Rows written before the reference column existed
// carry their reference only in this form.
var refPattern = regexp.MustCompile(`(?i)Ref:\s*([A-Z0-9]+)`)

// Fingerprint derives the stable dedup key identifying one economic event.
// Two entries with the same fingerprint are the same transaction and at most
// one of them survives an import.
//
// The key is a SHA256 over family, date and amount plus the statement
// reference when one exists; entries without a reference fall back to the
// lower-cased description. Amounts are fixed to 2 decimal places so "100"
// and "100.00" hash identically.
func Fingerprint(familyID uuid.UUID, reference *string, date time.Time, amount decimal.Decimal, description *string) string {
	var discriminator string
	if reference != nil && strings.TrimSpace(*reference) != "" {
		discriminator = "ref:" + strings.TrimSpace(*reference)
	} else {
		desc := ""
		if description != nil {
			desc = strings.ToLower(strings.TrimSpace(*description))
		}
		discriminator = "desc:" + desc
	}

	payload := fmt.Sprintf("%s|%s|%s|%s",
		familyID.String(),
		discriminator,
		date.Format("2006-01-02"),
		amount.StringFixed(2),
	)

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// ExtractReference pulls the statement reference token out of a persisted
// description, or returns "" when none is embedded.
func ExtractReference(description string) string {
	match := refPattern.FindStringSubmatch(description)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

// FingerprintPersisted reconstructs the fingerprint of an already persisted
// transaction the same way the normalizer computes it for incoming entries.
// The stored fingerprint column is authoritative when present; older rows
// are recomputed from the reference column or the "Ref:" description token.
func FingerprintPersisted(t *models.Transaction) string {
	if t.Fingerprint != "" {
		return t.Fingerprint
	}

	reference := t.Reference
	if reference == nil && t.Description != nil {
		if ref := ExtractReference(*t.Description); ref != "" {
			reference = &ref
		}
	}

	return Fingerprint(t.FamilyID, reference, t.TransactionDate, t.Amount, t.Description)
}
