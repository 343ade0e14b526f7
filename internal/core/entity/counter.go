package entity

import (
	"fmt"
	"time"
)

// CounterKey identifies one document sequence: a (docType, prefix) pair
// scoped to a calendar year.
//
// Scoping to the prefix rather than the type alone means reconfiguring a
// document series to a new prefix starts a fresh sequence, and reusing an
// old prefix later continues where it left off instead of colliding with
// numbers already issued under it.
type CounterKey struct {
	Year    int          `db:"year" json:"year"`
	DocType DocumentType `db:"doc_type" json:"docType"`
	Prefix  string       `db:"prefix" json:"prefix"`
}

// String renders the key for logs and cache maps, e.g. "tax_invoice/T/2026".
func (k CounterKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.DocType, k.Prefix, k.Year)
}

// DocumentCounter holds the last-issued sequence for one key.
// LastSeq is monotonically non-decreasing and always at least the highest
// sequence number present in any issued document for the key.
type DocumentCounter struct {
	Key       CounterKey `json:"key"`
	LastSeq   int64      `db:"last_seq" json:"lastSeq"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}

// FormatDocNo renders a document number: "{prefix}{year}-{seq:04d}".
// Example: prefix "QT", year 2025, seq 1 -> "QT2025-0001".
func FormatDocNo(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s%d-%04d", prefix, year, seq)
}
