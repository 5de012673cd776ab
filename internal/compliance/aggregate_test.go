package compliance

import (
	"testing"
	"time"

	"github.com/safetylink/coraudit-backend/internal/catalog"
)

var aggAsOf = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func TestAggregateCountsMatchingEvidence(t *testing.T) {
	agg := NewAggregator(testLogger(t))
	elements := []catalog.Element{
		testElement(1, "Policy", 1.1, catalog.Requirement{
			ID: "r-policy", Category: "policy_document", MinCount: 1,
			Mandatory: true, Severity: catalog.SeverityCritical,
		}),
		testElement(2, "Hazard", 1.2, catalog.Requirement{
			ID: "r-hazard", Category: "hazard_assessment_form", MinCount: 4,
			Mandatory: true, Severity: catalog.SeverityCritical,
		}),
	}
	evidence := []Evidence{
		testEvidence("policy_document", []int{1}, aggAsOf.AddDate(0, -1, 0)),
		testEvidence("hazard_assessment_form", []int{2}, aggAsOf.AddDate(0, -1, 0)),
		testEvidence("hazard_assessment_form", []int{2}, aggAsOf.AddDate(0, -2, 0)),
	}

	out := agg.Aggregate(elements, evidence, aggAsOf)
	if got := out["r-policy"].FoundCount; got != 1 {
		t.Fatalf("r-policy found = %d, want 1", got)
	}
	if got := out["r-hazard"].FoundCount; got != 2 {
		t.Fatalf("r-hazard found = %d, want 2", got)
	}
	if got := out["r-hazard"].RequiredCount; got != 4 {
		t.Fatalf("r-hazard required = %d, want 4", got)
	}
}

func TestAggregateMultiElementRecordCountsPerRequirement(t *testing.T) {
	agg := NewAggregator(testLogger(t))
	elements := []catalog.Element{
		testElement(1, "A", 1.0, catalog.Requirement{
			ID: "r-a", Category: "policy_document", MinCount: 1, Severity: catalog.SeverityMajor,
		}),
		testElement(6, "B", 1.0, catalog.Requirement{
			ID: "r-b", Category: "policy_document", MinCount: 1, Severity: catalog.SeverityMajor,
		}),
	}
	evidence := []Evidence{
		testEvidence("policy_document", []int{1, 6}, aggAsOf.AddDate(0, -1, 0)),
	}

	out := agg.Aggregate(elements, evidence, aggAsOf)
	if out["r-a"].FoundCount != 1 || out["r-b"].FoundCount != 1 {
		t.Fatalf("multi-element record must count toward each tagged element: a=%d b=%d",
			out["r-a"].FoundCount, out["r-b"].FoundCount)
	}
}

func TestAggregateSkipsUnusableRecords(t *testing.T) {
	agg := NewAggregator(testLogger(t))
	elements := []catalog.Element{
		testElement(1, "A", 1.0, catalog.Requirement{
			ID: "r-a", Category: "policy_document", MinCount: 1, Severity: catalog.SeverityMajor,
		}),
	}
	evidence := []Evidence{
		{Category: "", ElementNumbers: []int{1}, Date: aggAsOf, Status: EvidenceStatusValid},
		testEvidence("policy_document", []int{99}, aggAsOf.AddDate(0, -1, 0)),
	}

	out := agg.Aggregate(elements, evidence, aggAsOf)
	if got := out["r-a"].FoundCount; got != 0 {
		t.Fatalf("unusable records must not count, found = %d", got)
	}
}

func TestAggregateIgnoresExpiredAndNonValidEvidence(t *testing.T) {
	agg := NewAggregator(testLogger(t))
	elements := []catalog.Element{
		testElement(8, "Training", 1.2, catalog.Requirement{
			ID: "r-train", Category: "training_record", MinCount: 2, Severity: catalog.SeverityCritical,
		}),
	}
	expired := expiringEvidence("training_record", []int{8}, aggAsOf.AddDate(-2, 0, 0), aggAsOf.AddDate(0, 0, -1))
	incomplete := testEvidence("training_record", []int{8}, aggAsOf.AddDate(0, -1, 0))
	incomplete.Status = EvidenceStatusIncomplete
	current := testEvidence("training_record", []int{8}, aggAsOf.AddDate(0, -1, 0))

	out := agg.Aggregate(elements, []Evidence{expired, incomplete, current}, aggAsOf)
	if got := out["r-train"].FoundCount; got != 1 {
		t.Fatalf("only current valid evidence counts, found = %d", got)
	}
}

func TestAggregateNoExpiryNeverGoesStale(t *testing.T) {
	agg := NewAggregator(testLogger(t))
	elements := []catalog.Element{
		testElement(1, "A", 1.0, catalog.Requirement{
			ID: "r-a", Category: "policy_document", MinCount: 1, Severity: catalog.SeverityMajor,
		}),
	}
	old := testEvidence("policy_document", []int{1}, aggAsOf.AddDate(-10, 0, 0))

	out := agg.Aggregate(elements, []Evidence{old}, aggAsOf)
	if got := out["r-a"].FoundCount; got != 1 {
		t.Fatalf("evidence without expiry must stay valid, found = %d", got)
	}
}

func TestAggregateCategoryMustMatch(t *testing.T) {
	agg := NewAggregator(testLogger(t))
	elements := []catalog.Element{
		testElement(1, "A", 1.0, catalog.Requirement{
			ID: "r-a", Category: "policy_document", MinCount: 1, Severity: catalog.SeverityMajor,
		}),
	}
	wrongCategory := testEvidence("training_record", []int{1}, aggAsOf.AddDate(0, -1, 0))
	wrongElement := testEvidence("policy_document", []int{2}, aggAsOf.AddDate(0, -1, 0))

	out := agg.Aggregate(elements, []Evidence{wrongCategory, wrongElement}, aggAsOf)
	if got := out["r-a"].FoundCount; got != 0 {
		t.Fatalf("category and element tag must both match, found = %d", got)
	}
}
