package compliance

import (
	"math"
	"time"

	"github.com/safetylink/coraudit-backend/internal/catalog"
	"github.com/safetylink/coraudit-backend/internal/logger"
)

type MilestoneStatus string

const (
	MilestoneCompleted MilestoneStatus = "completed"
	MilestoneUpcoming  MilestoneStatus = "upcoming"
	MilestoneAtRisk    MilestoneStatus = "at_risk"
)

type Milestone struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Fraction    float64         `json:"fraction"`
	TargetDate  time.Time       `json:"target_date"`
	Status      MilestoneStatus `json:"status"`
}

// CriticalPathEntry is one element's remediation slot in the projected
// schedule, mirroring the action plan's phase ordering and overlap.
type CriticalPathEntry struct {
	ElementNumber   int              `json:"element_number"`
	ElementName     string           `json:"element_name"`
	WorstSeverity   catalog.Severity `json:"worst_severity"`
	GapCount        int              `json:"gap_count"`
	EstimatedHours  float64          `json:"estimated_hours"`
	StartOffsetDays int              `json:"start_offset_days"`
	DurationDays    int              `json:"duration_days"`
}

type Timeline struct {
	GeneratedAt          time.Time           `json:"generated_at"`
	RemainingEffortHours float64             `json:"remaining_effort_hours"`
	TotalDaysToReady     int                 `json:"total_days_to_ready"`
	ProjectedReadyDate   time.Time           `json:"projected_ready_date"`
	CriticalPath         []CriticalPathEntry `json:"critical_path"`
	Milestones           []Milestone         `json:"milestones"`
}

type Projector struct {
	cfg Config
	log *logger.Logger
}

func NewProjector(cfg Config, baseLog *logger.Logger) *Projector {
	return &Projector{cfg: cfg, log: baseLog.With("component", "Projector")}
}

// Project derives the audit-ready date and milestone schedule from the
// current compliance state. It schedules the same element groups the planner
// would, through the same SchedulePhases utility, so plan due dates and
// projected milestones stay consistent.
func (p *Projector) Project(overall OverallCompliance, scores []ElementScore, now time.Time) Timeline {
	if now.IsZero() {
		now = time.Now()
	}
	gaps := make([]Gap, 0, len(overall.CriticalGaps)+len(overall.MajorGaps)+len(overall.MinorGaps))
	gaps = append(gaps, overall.CriticalGaps...)
	gaps = append(gaps, overall.MajorGaps...)
	gaps = append(gaps, overall.MinorGaps...)

	tl := Timeline{GeneratedAt: now}
	for _, g := range gaps {
		tl.RemainingEffortHours += g.EstimatedEffortHours
	}

	groups := groupGapsByElement(gaps, scores)
	phaseGroups := capPhaseGroups(groups, p.cfg.MaxPhases)
	phaseHours := make([]float64, len(phaseGroups))
	for i, pg := range phaseGroups {
		for _, g := range pg {
			phaseHours[i] += g.Hours
		}
	}
	windows := SchedulePhases(now, phaseHours, p.cfg)

	for i, pg := range phaseGroups {
		for _, grp := range pg {
			tl.CriticalPath = append(tl.CriticalPath, CriticalPathEntry{
				ElementNumber:   grp.ElementNumber,
				ElementName:     grp.ElementName,
				WorstSeverity:   grp.WorstSeverity,
				GapCount:        len(grp.Gaps),
				EstimatedHours:  grp.Hours,
				StartOffsetDays: int(math.Ceil(windows[i].Start.Sub(now).Hours() / 24)),
				DurationDays:    windows[i].DurationDays,
			})
		}
	}

	if len(windows) > 0 {
		tl.TotalDaysToReady = int(math.Ceil(windows[len(windows)-1].End.Sub(now).Hours() / 24))
	}
	tl.ProjectedReadyDate = now.AddDate(0, 0, tl.TotalDaysToReady)
	tl.Milestones = p.milestones(overall, now, tl.TotalDaysToReady)
	return tl
}

func (p *Projector) milestones(overall OverallCompliance, now time.Time, totalDays int) []Milestone {
	type spec struct {
		name        string
		description string
		fraction    float64
		done        bool
	}
	noCritical := len(overall.CriticalGaps) == 0
	noMajor := len(overall.MajorGaps) == 0
	specs := []spec{
		{
			name:        "critical_gaps_resolved",
			description: "All critical compliance gaps closed",
			fraction:    0.30,
			done:        noCritical,
		},
		{
			name:        "documentation_complete",
			description: "All required documentation on file",
			fraction:    0.60,
			done:        noCritical && noMajor,
		},
		{
			name:        "mock_audit",
			description: "Internal mock audit passed",
			fraction:    0.85,
			done:        noCritical && overall.OverallPercentage >= 85,
		},
		{
			name:        "audit_ready",
			description: "Audit-ready across all elements",
			fraction:    1.00,
			done:        noCritical && overall.OverallStatus == StatusCompliant,
		},
	}

	out := make([]Milestone, 0, len(specs))
	for _, sp := range specs {
		target := now.AddDate(0, 0, int(math.Ceil(float64(totalDays)*sp.fraction)))
		status := MilestoneUpcoming
		switch {
		case sp.done:
			status = MilestoneCompleted
		case !now.Before(target):
			status = MilestoneAtRisk
		}
		out = append(out, Milestone{
			Name:        sp.name,
			Description: sp.description,
			Fraction:    sp.fraction,
			TargetDate:  target,
			Status:      status,
		})
	}
	return out
}
