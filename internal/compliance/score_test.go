package compliance

import (
	"strings"
	"testing"
	"time"

	"github.com/safetylink/coraudit-backend/internal/catalog"
)

var scoreAsOf = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func scoreOne(t *testing.T, el catalog.Element, evidence []Evidence) ElementScore {
	t.Helper()
	log := testLogger(t)
	agg := NewAggregator(log).Aggregate([]catalog.Element{el}, evidence, scoreAsOf)
	scores := NewScorer(DefaultConfig(), log).ScoreElements([]catalog.Element{el}, agg)
	if len(scores) != 1 {
		t.Fatalf("expected one score, got %d", len(scores))
	}
	return scores[0]
}

func TestScoreElementsAllMet(t *testing.T) {
	el := testElement(1, "Policy", 1.1,
		catalog.Requirement{ID: "r1", Category: "policy_document", MinCount: 1, Mandatory: true, Severity: catalog.SeverityCritical},
		catalog.Requirement{ID: "r2", Category: "policy_document", MinCount: 1, Severity: catalog.SeverityMajor},
	)
	evidence := []Evidence{
		testEvidence("policy_document", []int{1}, scoreAsOf.AddDate(0, -1, 0)),
		testEvidence("policy_document", []int{1}, scoreAsOf.AddDate(0, -2, 0)),
	}
	sc := scoreOne(t, el, evidence)
	if sc.Percentage != 100 {
		t.Fatalf("percentage = %d, want 100", sc.Percentage)
	}
	if sc.Status != StatusCompliant {
		t.Fatalf("status = %s, want compliant", sc.Status)
	}
	for _, rr := range sc.Requirements {
		if !rr.Met {
			t.Fatalf("requirement %s should be met", rr.Requirement.ID)
		}
	}
}

func TestScoreElementsPartialCredit(t *testing.T) {
	// One critical rule (weight 10) needing 4, 2 found: half credit, 50%.
	el := testElement(2, "Hazard", 1.2,
		catalog.Requirement{ID: "r1", Category: "hazard_assessment_form", MinCount: 4, Mandatory: true, Severity: catalog.SeverityCritical},
	)
	evidence := []Evidence{
		testEvidence("hazard_assessment_form", []int{2}, scoreAsOf.AddDate(0, -1, 0)),
		testEvidence("hazard_assessment_form", []int{2}, scoreAsOf.AddDate(0, -2, 0)),
	}
	sc := scoreOne(t, el, evidence)
	if sc.TotalPoints != 10 {
		t.Fatalf("total points = %v, want 10", sc.TotalPoints)
	}
	if sc.EarnedPoints != 5 {
		t.Fatalf("earned points = %v, want 5", sc.EarnedPoints)
	}
	if sc.Percentage != 50 {
		t.Fatalf("percentage = %d, want 50", sc.Percentage)
	}
	if sc.Status != StatusPartial {
		t.Fatalf("status = %s, want partial", sc.Status)
	}
}

func TestScoreElementsOverCountCapsAtFullCredit(t *testing.T) {
	el := testElement(1, "Policy", 1.0,
		catalog.Requirement{ID: "r1", Category: "policy_document", MinCount: 1, Severity: catalog.SeverityMinor},
	)
	evidence := []Evidence{
		testEvidence("policy_document", []int{1}, scoreAsOf.AddDate(0, -1, 0)),
		testEvidence("policy_document", []int{1}, scoreAsOf.AddDate(0, -2, 0)),
		testEvidence("policy_document", []int{1}, scoreAsOf.AddDate(0, -3, 0)),
	}
	sc := scoreOne(t, el, evidence)
	if sc.Percentage != 100 {
		t.Fatalf("surplus evidence must not exceed 100%%, got %d", sc.Percentage)
	}
}

func TestScoreElementsInformationalRuleAlwaysSatisfied(t *testing.T) {
	el := testElement(10, "Incidents", 1.1,
		catalog.Requirement{ID: "r1", Category: "incident_investigation_form", MinCount: 0, Severity: catalog.SeverityMinor},
	)
	sc := scoreOne(t, el, nil)
	if sc.Percentage != 100 {
		t.Fatalf("informational-only element = %d%%, want 100", sc.Percentage)
	}
	if !sc.Requirements[0].Met {
		t.Fatal("informational rule must count as met")
	}
}

func TestScoreElementsNoRequirementsVacuouslyCompliant(t *testing.T) {
	el := testElement(1, "Empty", 1.0)
	sc := scoreOne(t, el, nil)
	if sc.Percentage != 100 || sc.Status != StatusCompliant {
		t.Fatalf("element with no requirements: %d%% %s, want 100%% compliant", sc.Percentage, sc.Status)
	}
}

func TestStatusThresholds(t *testing.T) {
	s := NewScorer(DefaultConfig(), testLogger(t))
	cases := []struct {
		pct  int
		want ComplianceStatus
	}{
		{100, StatusCompliant},
		{80, StatusCompliant},
		{79, StatusPartial},
		{50, StatusPartial},
		{49, StatusNonCompliant},
		{0, StatusNonCompliant},
	}
	for _, tc := range cases {
		if got := s.statusFor(tc.pct); got != tc.want {
			t.Fatalf("statusFor(%d) = %s, want %s", tc.pct, got, tc.want)
		}
	}
}

func TestRoundHalfUp(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{0.4, 0},
		{0.5, 1},
		{1.49, 1},
		{2.5, 3},
		{87.5, 88},
		{87.49, 87},
	}
	for _, tc := range cases {
		if got := roundHalfUp(tc.in); got != tc.want {
			t.Fatalf("roundHalfUp(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestScoreElementsOrderInvariant(t *testing.T) {
	el := testElement(2, "Hazard", 1.2,
		catalog.Requirement{ID: "r1", Category: "hazard_assessment_form", MinCount: 4, Mandatory: true, Severity: catalog.SeverityCritical},
		catalog.Requirement{ID: "r2", Category: "safety_meeting_record", MinCount: 2, Severity: catalog.SeverityMinor},
	)
	evidence := []Evidence{
		testEvidence("hazard_assessment_form", []int{2}, scoreAsOf.AddDate(0, -1, 0)),
		testEvidence("safety_meeting_record", []int{2}, scoreAsOf.AddDate(0, -2, 0)),
		testEvidence("hazard_assessment_form", []int{2}, scoreAsOf.AddDate(0, -3, 0)),
	}
	reversed := []Evidence{evidence[2], evidence[1], evidence[0]}

	a := scoreOne(t, el, evidence)
	b := scoreOne(t, el, reversed)
	if a.Percentage != b.Percentage || a.EarnedPoints != b.EarnedPoints || a.Status != b.Status {
		t.Fatalf("score depends on evidence order: %+v vs %+v", a, b)
	}
}

func TestScoreElementsIdempotent(t *testing.T) {
	el := testElement(1, "Policy", 1.1,
		catalog.Requirement{ID: "r1", Category: "policy_document", MinCount: 2, Mandatory: true, Severity: catalog.SeverityCritical},
	)
	evidence := []Evidence{testEvidence("policy_document", []int{1}, scoreAsOf.AddDate(0, -1, 0))}
	a := scoreOne(t, el, evidence)
	b := scoreOne(t, el, evidence)
	if a.Percentage != b.Percentage || a.EarnedPoints != b.EarnedPoints {
		t.Fatalf("same inputs must produce same score: %+v vs %+v", a, b)
	}
}

func TestScoreOverallWeightedMean(t *testing.T) {
	s := NewScorer(DefaultConfig(), testLogger(t))
	scores := []ElementScore{
		{ElementNumber: 1, Weight: 1.0, Percentage: 100, Status: StatusCompliant},
		{ElementNumber: 2, Weight: 3.0, Percentage: 50, Status: StatusPartial},
	}
	overall := s.ScoreOverall(scores, nil)
	// (100*1 + 50*3) / 4 = 62.5, rounds to 63.
	if overall.OverallPercentage != 63 {
		t.Fatalf("overall = %d, want 63", overall.OverallPercentage)
	}
	if overall.OverallStatus != StatusPartial {
		t.Fatalf("overall status = %s, want partial", overall.OverallStatus)
	}
}

func TestScoreOverallEmptyCatalog(t *testing.T) {
	s := NewScorer(DefaultConfig(), testLogger(t))
	overall := s.ScoreOverall(nil, nil)
	if overall.OverallPercentage != 0 {
		t.Fatalf("empty catalog overall = %d, want 0", overall.OverallPercentage)
	}
	if overall.OverallStatus != StatusNonCompliant {
		t.Fatalf("empty catalog status = %s, want non_compliant", overall.OverallStatus)
	}
}

func TestScoreOverallBucketsGapsBySeverity(t *testing.T) {
	s := NewScorer(DefaultConfig(), testLogger(t))
	gaps := []Gap{
		{Severity: catalog.SeverityCritical},
		{Severity: catalog.SeverityCritical},
		{Severity: catalog.SeverityMajor},
		{Severity: catalog.SeverityMinor},
	}
	overall := s.ScoreOverall([]ElementScore{{Weight: 1.0, Percentage: 40}}, gaps)
	if len(overall.CriticalGaps) != 2 || len(overall.MajorGaps) != 1 || len(overall.MinorGaps) != 1 {
		t.Fatalf("gap buckets = %d/%d/%d, want 2/1/1",
			len(overall.CriticalGaps), len(overall.MajorGaps), len(overall.MinorGaps))
	}
}

func TestScoreOverallRecommendations(t *testing.T) {
	s := NewScorer(DefaultConfig(), testLogger(t))
	scores := []ElementScore{
		{ElementNumber: 1, ElementName: "A", Weight: 1.0, Percentage: 90, Status: StatusCompliant},
		{ElementNumber: 2, ElementName: "B", Weight: 1.0, Percentage: 10, Status: StatusNonCompliant},
		{ElementNumber: 3, ElementName: "C", Weight: 1.0, Percentage: 60, Status: StatusPartial},
		{ElementNumber: 4, ElementName: "D", Weight: 1.0, Percentage: 20, Status: StatusNonCompliant},
		{ElementNumber: 5, ElementName: "E", Weight: 1.0, Percentage: 30, Status: StatusNonCompliant},
		{ElementNumber: 6, ElementName: "F", Weight: 1.0, Percentage: 40, Status: StatusNonCompliant},
		{ElementNumber: 7, ElementName: "G", Weight: 1.0, Percentage: 55, Status: StatusPartial},
	}
	overall := s.ScoreOverall(scores, nil)
	if len(overall.Recommendations) != 5 {
		t.Fatalf("recommendations = %d, want cap of 5", len(overall.Recommendations))
	}
	if !strings.Contains(overall.Recommendations[0], "Element 2") {
		t.Fatalf("worst element first, got %q", overall.Recommendations[0])
	}
	for _, rec := range overall.Recommendations {
		if strings.Contains(rec, "Element 1") {
			t.Fatal("compliant elements must not be recommended")
		}
	}
}

func TestAttachGaps(t *testing.T) {
	scores := []ElementScore{
		{ElementNumber: 1},
		{ElementNumber: 2},
	}
	gaps := []Gap{
		{RequirementID: "a", ElementNumber: 1},
		{RequirementID: "b", ElementNumber: 1},
		{RequirementID: "c", ElementNumber: 2},
	}
	out := AttachGaps(scores, gaps)
	if len(out[0].Gaps) != 2 || len(out[1].Gaps) != 1 {
		t.Fatalf("attached gaps = %d/%d, want 2/1", len(out[0].Gaps), len(out[1].Gaps))
	}
	if len(scores[0].Gaps) != 0 {
		t.Fatal("AttachGaps must not mutate its input")
	}
}
