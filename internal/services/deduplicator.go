package services

import (
	"fmt"
	"time"

	"family-ledger/internal/models"
	"family-ledger/internal/repositories"

	"github.com/google/uuid"
)

// Deduplicator filters a normalized batch down to the transactions not
// already present in the ledger. It loads the persisted fingerprints for
// the batch's date span once, then walks the batch in order so the first
// occurrence of an in-batch duplicate wins.
type Deduplicator struct {
	transactionRepo repositories.TransactionRepositoryInterface
}

func NewDeduplicator(transactionRepo repositories.TransactionRepositoryInterface) *Deduplicator {
	return &Deduplicator{transactionRepo: transactionRepo}
}

// Filter partitions candidates into the transactions to insert and a count
// of duplicates skipped. Candidates must all belong to the given family.
func (d *Deduplicator) Filter(familyID uuid.UUID, candidates []*models.Transaction) ([]*models.Transaction, int, error) {
	if len(candidates) == 0 {
		return nil, 0, nil
	}

	from, to := dateSpan(candidates)
	existing, err := d.transactionRepo.GetByFamilyAndDateRange(familyID, from, to)
	if err != nil {
		return nil, 0, fmt.Errorf("loading existing transactions: %w", err)
	}

	seen := make(map[string]struct{}, len(existing)+len(candidates))
	for i := range existing {
		seen[FingerprintPersisted(&existing[i])] = struct{}{}
	}

	inserts := make([]*models.Transaction, 0, len(candidates))
	skipped := 0
	for _, candidate := range candidates {
		if _, dup := seen[candidate.Fingerprint]; dup {
			skipped++
			continue
		}
		seen[candidate.Fingerprint] = struct{}{}
		inserts = append(inserts, candidate)
	}

	return inserts, skipped, nil
}

func dateSpan(candidates []*models.Transaction) (time.Time, time.Time) {
	from, to := candidates[0].TransactionDate, candidates[0].TransactionDate
	for _, c := range candidates[1:] {
		if c.TransactionDate.Before(from) {
			from = c.TransactionDate
		}
		if c.TransactionDate.After(to) {
			to = c.TransactionDate
		}
	}
	return from, to
}
