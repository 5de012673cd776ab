package compliance

import (
	"testing"
	"time"

	"github.com/safetylink/coraudit-backend/internal/catalog"
)

var gapAsOf = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func detectOne(t *testing.T, el catalog.Element, evidence []Evidence) []Gap {
	t.Helper()
	log := testLogger(t)
	cfg := DefaultConfig()
	agg := NewAggregator(log).Aggregate([]catalog.Element{el}, evidence, gapAsOf)
	scores := NewScorer(cfg, log).ScoreElements([]catalog.Element{el}, agg)
	return NewGapDetector(cfg, log).Detect(scores, gapAsOf)
}

func TestDetectCriticalGapForMissingMandatory(t *testing.T) {
	el := testElement(1, "Policy", 1.1,
		catalog.Requirement{ID: "r1", Category: "policy_document", Description: "Policy", MinCount: 1, Mandatory: true, Severity: catalog.SeverityMajor},
	)
	gaps := detectOne(t, el, nil)
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
	g := gaps[0]
	if g.Severity != catalog.SeverityCritical {
		t.Fatalf("zero evidence on mandatory rule = %s, want critical", g.Severity)
	}
	if g.FoundCount != 0 || g.RequiredCount != 1 {
		t.Fatalf("counts = %d/%d, want 0/1", g.FoundCount, g.RequiredCount)
	}
}

func TestDetectMajorGapForPartialEvidence(t *testing.T) {
	el := testElement(2, "Hazard", 1.2,
		catalog.Requirement{ID: "r1", Category: "hazard_assessment_form", Description: "Assessments", MinCount: 4, Mandatory: true, Severity: catalog.SeverityCritical},
	)
	evidence := []Evidence{
		testEvidence("hazard_assessment_form", []int{2}, gapAsOf.AddDate(0, -1, 0)),
	}
	gaps := detectOne(t, el, evidence)
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
	if gaps[0].Severity != catalog.SeverityMajor {
		t.Fatalf("partially met rule = %s, want major", gaps[0].Severity)
	}
}

func TestDetectMajorGapForMissingNonMandatory(t *testing.T) {
	el := testElement(1, "Policy", 1.0,
		catalog.Requirement{ID: "r1", Category: "policy_document", Description: "Optional doc", MinCount: 1, Mandatory: false, Severity: catalog.SeverityMajor},
	)
	gaps := detectOne(t, el, nil)
	if len(gaps) != 1 || gaps[0].Severity != catalog.SeverityMajor {
		t.Fatalf("missing non-mandatory rule must be major, got %+v", gaps)
	}
}

func TestDetectEffortScalesWithMissingCount(t *testing.T) {
	// training_record base effort is 8h; 3 missing of 4 = 24h.
	el := testElement(8, "Training", 1.2,
		catalog.Requirement{ID: "r1", Category: "training_record", Description: "Training", MinCount: 4, Mandatory: true, Severity: catalog.SeverityCritical},
	)
	evidence := []Evidence{
		testEvidence("training_record", []int{8}, gapAsOf.AddDate(0, -1, 0)),
	}
	gaps := detectOne(t, el, evidence)
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
	if gaps[0].EstimatedEffortHours != 24 {
		t.Fatalf("effort = %v, want 24", gaps[0].EstimatedEffortHours)
	}
}

func TestDetectEffortFloorsAtOneHour(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EffortHours = map[string]float64{"policy_document": 0.25}
	log := testLogger(t)
	el := testElement(1, "Policy", 1.0,
		catalog.Requirement{ID: "r1", Category: "policy_document", Description: "Policy", MinCount: 1, Mandatory: true, Severity: catalog.SeverityCritical},
	)
	agg := NewAggregator(log).Aggregate([]catalog.Element{el}, nil, gapAsOf)
	scores := NewScorer(cfg, log).ScoreElements([]catalog.Element{el}, agg)
	gaps := NewGapDetector(cfg, log).Detect(scores, gapAsOf)
	if len(gaps) != 1 || gaps[0].EstimatedEffortHours != 1 {
		t.Fatalf("effort must floor at 1 hour, got %+v", gaps)
	}
}

func TestDetectNoGapWhenMet(t *testing.T) {
	el := testElement(1, "Policy", 1.0,
		catalog.Requirement{ID: "r1", Category: "policy_document", Description: "Policy", MinCount: 1, Mandatory: true, Severity: catalog.SeverityCritical},
	)
	evidence := []Evidence{
		testEvidence("policy_document", []int{1}, gapAsOf.AddDate(0, -1, 0)),
	}
	if gaps := detectOne(t, el, evidence); len(gaps) != 0 {
		t.Fatalf("met requirement with current evidence must emit no gap, got %d", len(gaps))
	}
}

func TestDetectMinorGapForExpiringEvidence(t *testing.T) {
	el := testElement(8, "Training", 1.2,
		catalog.Requirement{ID: "r1", Category: "worker_certification", Description: "Certs", MinCount: 1, Mandatory: true, Severity: catalog.SeverityMajor},
	)
	// Met in count, but the only record lapses inside the 60-day lead window.
	evidence := []Evidence{
		expiringEvidence("worker_certification", []int{8}, gapAsOf.AddDate(-1, 0, 0), gapAsOf.AddDate(0, 0, 30)),
	}
	gaps := detectOne(t, el, evidence)
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
	if gaps[0].Severity != catalog.SeverityMinor {
		t.Fatalf("expiring-soon gap = %s, want minor", gaps[0].Severity)
	}
}

func TestDetectNoMinorGapWhenCoverageSurvivesExpiry(t *testing.T) {
	el := testElement(8, "Training", 1.2,
		catalog.Requirement{ID: "r1", Category: "worker_certification", Description: "Certs", MinCount: 1, Mandatory: true, Severity: catalog.SeverityMajor},
	)
	// One record expires soon but another with no expiry keeps the count met.
	evidence := []Evidence{
		expiringEvidence("worker_certification", []int{8}, gapAsOf.AddDate(-1, 0, 0), gapAsOf.AddDate(0, 0, 30)),
		testEvidence("worker_certification", []int{8}, gapAsOf.AddDate(0, -1, 0)),
	}
	if gaps := detectOne(t, el, evidence); len(gaps) != 0 {
		t.Fatalf("coverage survives the expiry, want no gap, got %d", len(gaps))
	}
}

func TestDetectSkipsInformationalRules(t *testing.T) {
	el := testElement(10, "Incidents", 1.1,
		catalog.Requirement{ID: "r1", Category: "incident_investigation_form", Description: "Reports", MinCount: 0, Severity: catalog.SeverityMinor},
	)
	if gaps := detectOne(t, el, nil); len(gaps) != 0 {
		t.Fatalf("informational rules never gap, got %d", len(gaps))
	}
}

func TestDetectGapCarriesSuggestions(t *testing.T) {
	el := testElement(3, "SWP", 1.0,
		catalog.Requirement{ID: "r1", Category: "safe_work_practice", Description: "Practices", MinCount: 1, Mandatory: true, Severity: catalog.SeverityCritical},
	)
	gaps := detectOne(t, el, nil)
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
	g := gaps[0]
	if g.SuggestedTitle != "Write safe work practice" || g.SuggestedFolder != "SWP" || g.SuggestedDocumentType != "SWP" {
		t.Fatalf("suggestion = %q/%q/%q", g.SuggestedTitle, g.SuggestedFolder, g.SuggestedDocumentType)
	}
}
