package compliance

import (
	"time"

	"github.com/google/uuid"
)

const (
	EvidenceStatusValid      = "valid"
	EvidenceStatusExpired    = "expired"
	EvidenceStatusIncomplete = "incomplete"
)

// Evidence is the engine-side view of one evidence record, validated at the
// aggregation boundary. The engine never mutates evidence.
type Evidence struct {
	ID             uuid.UUID  `json:"id"`
	Kind           string     `json:"kind"`
	Category       string     `json:"category"`
	Title          string     `json:"title,omitempty"`
	ElementNumbers []int      `json:"element_numbers"`
	Date           time.Time  `json:"date"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	Status         string     `json:"status"`
	ReferenceID    string     `json:"reference_id,omitempty"`
}

// CurrentAsOf reports whether the record still counts as valid evidence at
// the evaluation date. Records without an expiry never go stale on their own.
func (e Evidence) CurrentAsOf(asOf time.Time) bool {
	if e.Status != EvidenceStatusValid {
		return false
	}
	if e.ExpiresAt != nil && e.ExpiresAt.Before(asOf) {
		return false
	}
	return true
}

// ExpiringWithin reports whether a currently-valid record lapses inside the
// lead window starting at asOf.
func (e Evidence) ExpiringWithin(asOf time.Time, leadDays int) bool {
	if e.ExpiresAt == nil {
		return false
	}
	cutoff := asOf.AddDate(0, 0, leadDays)
	return !e.ExpiresAt.Before(asOf) && e.ExpiresAt.Before(cutoff)
}
