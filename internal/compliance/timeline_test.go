package compliance

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/safetylink/coraudit-backend/internal/catalog"
)

var tlNow = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func testProjector(t *testing.T) *Projector {
	t.Helper()
	return NewProjector(DefaultConfig(), testLogger(t))
}

func TestProjectNoGaps(t *testing.T) {
	p := testProjector(t)
	overall := OverallCompliance{
		OverallPercentage: 92,
		OverallStatus:     StatusCompliant,
		CriticalGaps:      []Gap{},
		MajorGaps:         []Gap{},
		MinorGaps:         []Gap{},
	}
	tl := p.Project(overall, nil, tlNow)
	if tl.RemainingEffortHours != 0 {
		t.Fatalf("remaining effort = %v, want 0", tl.RemainingEffortHours)
	}
	if tl.TotalDaysToReady != 0 {
		t.Fatalf("days to ready = %d, want 0", tl.TotalDaysToReady)
	}
	if !tl.ProjectedReadyDate.Equal(tlNow) {
		t.Fatalf("ready date = %v, want now", tl.ProjectedReadyDate)
	}
	for _, m := range tl.Milestones {
		if m.Status != MilestoneCompleted {
			t.Fatalf("milestone %s = %s, want completed when fully compliant", m.Name, m.Status)
		}
	}
}

func TestProjectAccumulatesEffortAndSchedule(t *testing.T) {
	p := testProjector(t)
	overall := OverallCompliance{
		OverallPercentage: 40,
		OverallStatus:     StatusNonCompliant,
		CriticalGaps: []Gap{
			{ID: uuid.New(), RequirementID: "e2-formal", ElementNumber: 2, Severity: catalog.SeverityCritical, EstimatedEffortHours: 12},
		},
		MajorGaps: []Gap{
			{ID: uuid.New(), RequirementID: "e7-records", ElementNumber: 7, Severity: catalog.SeverityMajor, EstimatedEffortHours: 8},
		},
		MinorGaps: []Gap{},
	}
	scores := []ElementScore{
		{ElementNumber: 2, ElementName: "Hazard Assessment", Weight: 1.2, Percentage: 20},
		{ElementNumber: 7, ElementName: "Preventive Maintenance", Weight: 1.0, Percentage: 60},
	}
	tl := p.Project(overall, scores, tlNow)
	if tl.RemainingEffortHours != 20 {
		t.Fatalf("remaining effort = %v, want 20", tl.RemainingEffortHours)
	}
	if len(tl.CriticalPath) != 2 {
		t.Fatalf("critical path entries = %d, want 2", len(tl.CriticalPath))
	}
	// Element 2 carries the critical gap, so it runs first.
	if tl.CriticalPath[0].ElementNumber != 2 {
		t.Fatalf("first critical path element = %d, want 2", tl.CriticalPath[0].ElementNumber)
	}
	if tl.CriticalPath[0].StartOffsetDays != 0 {
		t.Fatalf("first entry start offset = %d, want 0", tl.CriticalPath[0].StartOffsetDays)
	}

	// Days must agree with the shared scheduler.
	wantDays := TotalDaysToReady(tlNow, []float64{12, 8}, DefaultConfig())
	if tl.TotalDaysToReady != wantDays {
		t.Fatalf("days to ready = %d, scheduler says %d", tl.TotalDaysToReady, wantDays)
	}
	if !tl.ProjectedReadyDate.Equal(tlNow.AddDate(0, 0, wantDays)) {
		t.Fatalf("ready date = %v", tl.ProjectedReadyDate)
	}
}

func TestProjectMilestoneFractions(t *testing.T) {
	p := testProjector(t)
	overall := OverallCompliance{
		OverallPercentage: 40,
		OverallStatus:     StatusNonCompliant,
		CriticalGaps: []Gap{
			{ID: uuid.New(), RequirementID: "e2-formal", ElementNumber: 2, Severity: catalog.SeverityCritical, EstimatedEffortHours: 80},
		},
		MajorGaps: []Gap{},
		MinorGaps: []Gap{},
	}
	tl := p.Project(overall, nil, tlNow)
	if len(tl.Milestones) != 4 {
		t.Fatalf("milestones = %d, want 4", len(tl.Milestones))
	}
	wantFractions := []float64{0.30, 0.60, 0.85, 1.00}
	for i, m := range tl.Milestones {
		if m.Fraction != wantFractions[i] {
			t.Fatalf("milestone %d fraction = %v, want %v", i, m.Fraction, wantFractions[i])
		}
		if m.Status != MilestoneUpcoming {
			t.Fatalf("milestone %s = %s, want upcoming", m.Name, m.Status)
		}
		if !m.TargetDate.After(tlNow) {
			t.Fatalf("milestone %s target %v must be in the future", m.Name, m.TargetDate)
		}
	}
	// Final milestone lands on the projected ready date.
	last := tl.Milestones[len(tl.Milestones)-1]
	if !last.TargetDate.Equal(tl.ProjectedReadyDate) {
		t.Fatalf("audit_ready target = %v, ready date = %v", last.TargetDate, tl.ProjectedReadyDate)
	}
}

func TestProjectMilestoneStates(t *testing.T) {
	p := testProjector(t)
	// No critical gaps, one major gap, 87%: first and third milestones done,
	// documentation_complete still open, audit_ready open (partial status).
	overall := OverallCompliance{
		OverallPercentage: 87,
		OverallStatus:     StatusCompliant,
		CriticalGaps:      []Gap{},
		MajorGaps: []Gap{
			{ID: uuid.New(), RequirementID: "e7-records", ElementNumber: 7, Severity: catalog.SeverityMajor, EstimatedEffortHours: 4},
		},
		MinorGaps: []Gap{},
	}
	tl := p.Project(overall, nil, tlNow)
	byName := map[string]Milestone{}
	for _, m := range tl.Milestones {
		byName[m.Name] = m
	}
	if byName["critical_gaps_resolved"].Status != MilestoneCompleted {
		t.Fatal("critical_gaps_resolved should be completed with zero critical gaps")
	}
	if byName["documentation_complete"].Status == MilestoneCompleted {
		t.Fatal("documentation_complete requires zero major gaps")
	}
	if byName["mock_audit"].Status != MilestoneCompleted {
		t.Fatal("mock_audit should be completed at 87% with no critical gaps")
	}
	if byName["audit_ready"].Status != MilestoneCompleted {
		t.Fatal("audit_ready should be completed when status is compliant with no critical gaps")
	}
}

func TestProjectMilestoneAtRisk(t *testing.T) {
	p := testProjector(t)
	// A due-now target (totalDays 0) flips every unfinished milestone.
	overall := OverallCompliance{
		OverallPercentage: 40,
		OverallStatus:     StatusNonCompliant,
		CriticalGaps:      []Gap{},
		MajorGaps: []Gap{
			{ID: uuid.New(), RequirementID: "e7-records", ElementNumber: 7, Severity: catalog.SeverityMajor, EstimatedEffortHours: 2},
		},
		MinorGaps: []Gap{},
	}
	ms := p.milestones(overall, tlNow, 0)
	for _, m := range ms {
		if m.Status == MilestoneCompleted {
			continue
		}
		if m.Status != MilestoneAtRisk {
			t.Fatalf("milestone %s with a due-now target = %s, want at_risk", m.Name, m.Status)
		}
	}
}
