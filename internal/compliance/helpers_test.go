package compliance

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/safetylink/coraudit-backend/internal/catalog"
	"github.com/safetylink/coraudit-backend/internal/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func testElement(number int, name string, weight float64, reqs ...catalog.Requirement) catalog.Element {
	for i := range reqs {
		reqs[i].ElementNumber = number
	}
	return catalog.Element{Number: number, Name: name, Weight: weight, Requirements: reqs}
}

func testEvidence(category string, elementNumbers []int, date time.Time) Evidence {
	return Evidence{
		ID:             uuid.New(),
		Kind:           "document",
		Category:       category,
		ElementNumbers: elementNumbers,
		Date:           date,
		Status:         EvidenceStatusValid,
	}
}

func expiringEvidence(category string, elementNumbers []int, date, expiresAt time.Time) Evidence {
	ev := testEvidence(category, elementNumbers, date)
	ev.ExpiresAt = &expiresAt
	return ev
}
