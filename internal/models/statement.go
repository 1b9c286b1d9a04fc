package models

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// RawStatementEntry is one row as returned by the external statement
// transform service. All fields are untrusted free-form data; the normalizer
// owns turning them into ledger transactions.
type RawStatementEntry struct {
	Ref      string     `json:"ref,omitempty"`
	Time     string     `json:"time,omitempty"`
	Details  string     `json:"details,omitempty"`
	Status   string     `json:"status,omitempty"`
	MoneyIn  FlexAmount `json:"money_in,omitempty"`
	MoneyOut FlexAmount `json:"money_out,omitempty"`
}

// ImportSummary is the accountable result of one statement import. The three
// counts always add up to the number of entries submitted.
type ImportSummary struct {
	InsertedCount          int `json:"inserted_count"`
	SkippedDuplicatesCount int `json:"skipped_duplicates_count"`
	ErrorsCount            int `json:"errors_count"`
}

// RecategorizeResult reports a bulk recategorization pass over transactions
// sitting on the family's default category.
type RecategorizeResult struct {
	Updated int `json:"updated"`
	Scanned int `json:"scanned"`
}

// FlexAmount is a decimal that tolerates the loose money encodings produced
// by statement parsers: JSON numbers, numeric strings with thousands
// separators, empty strings and nulls. Anything unparsable decodes to zero;
// the normalizer then rejects the row on the amount rule rather than failing
// the whole batch on a malformed cell.
type FlexAmount struct {
	decimal.Decimal
}

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexAmount) UnmarshalJSON(data []byte) error {
	f.Decimal = decimal.Zero

	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if s == "" {
			return nil
		}
		if d, err := decimal.NewFromString(s); err == nil {
			f.Decimal = d
		}
		return nil
	}

	if d, err := decimal.NewFromString(raw); err == nil {
		f.Decimal = d
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (f FlexAmount) MarshalJSON() ([]byte, error) {
	return f.Decimal.MarshalJSON()
}
