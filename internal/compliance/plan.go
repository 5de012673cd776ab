package compliance

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/safetylink/coraudit-backend/internal/catalog"
	"github.com/safetylink/coraudit-backend/internal/logger"
	"github.com/safetylink/coraudit-backend/internal/normalization"
	"github.com/safetylink/coraudit-backend/internal/types"
)

const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

type Planner struct {
	cfg Config
	log *logger.Logger
}

func NewPlanner(cfg Config, baseLog *logger.Logger) *Planner {
	return &Planner{cfg: cfg, log: baseLog.With("component", "Planner")}
}

type PlanRequest struct {
	CompanyID  uuid.UUID
	Goal       string
	TargetDate time.Time
	Now        time.Time
	Gaps       []Gap
	Scores     []ElementScore
	Personnel  []types.Personnel
}

// elementGroup is one element's gap bundle with its plan sort keys.
type elementGroup struct {
	ElementNumber int
	ElementName   string
	Weight        float64
	Percentage    int
	CriticalCount int
	Hours         float64
	WorstSeverity catalog.Severity
	Gaps          []Gap
}

// Generate converts a gap list into a dependency-ordered plan tree: phases by
// element priority, tasks from gaps, subtasks for multi-step remediation.
// An empty gap list yields a trivially complete plan, not an error.
func (p *Planner) Generate(req PlanRequest) (*types.ActionPlan, error) {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if req.TargetDate.Before(today) {
		return nil, fmt.Errorf("target completion date %s is before today", req.TargetDate.Format("2006-01-02"))
	}

	plan := &types.ActionPlan{
		ID:                   uuid.New(),
		CompanyID:            req.CompanyID,
		OverallGoal:          req.Goal,
		TargetCompletionDate: req.TargetDate,
		Status:               types.PlanStatusActive,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if plan.OverallGoal == "" {
		plan.OverallGoal = "Close all outstanding compliance gaps before the COR audit"
	}

	if len(req.Gaps) == 0 {
		plan.ProgressPercentage = 100
		plan.Phases = []types.ActionPlanPhase{}
		return plan, nil
	}

	groups := groupGapsByElement(req.Gaps, req.Scores)
	phaseGroups := capPhaseGroups(groups, p.cfg.MaxPhases)

	phaseHours := make([]float64, len(phaseGroups))
	for i, pg := range phaseGroups {
		for _, g := range pg {
			phaseHours[i] += g.Hours
		}
	}
	windows := SchedulePhases(today, phaseHours, p.cfg)

	assign := newAssigner(req.Personnel)
	for i, pg := range phaseGroups {
		phase := types.ActionPlanPhase{
			ID:            uuid.New(),
			ActionPlanID:  plan.ID,
			PhaseNumber:   i + 1,
			PhaseName:     phaseName(pg),
			ElementNumber: pg[0].ElementNumber,
			StartDate:     windows[i].Start,
			EndDate:       windows[i].End,
			Status:        types.TaskStatusPending,
		}

		var gaps []Gap
		for _, g := range pg {
			gaps = append(gaps, g.Gaps...)
		}
		sortTasksForPhase(gaps)

		var cumHours float64
		for order, gap := range gaps {
			cumHours += gap.EstimatedEffortHours
			dueOffset := phaseDays(cumHours, p.cfg.HoursPerDay)
			due := phase.StartDate.AddDate(0, 0, dueOffset)

			task := types.ActionPlanTask{
				ID:             uuid.New(),
				PhaseID:        phase.ID,
				GapID:          gap.ID,
				RequirementID:  gap.RequirementID,
				ElementNumber:  gap.ElementNumber,
				Title:          taskTitle(gap),
				Priority:       p.priorityFor(gap),
				DueDate:        due,
				EstimatedHours: gap.EstimatedEffortHours,
				Status:         types.TaskStatusPending,
				SortOrder:      order,
			}
			task.AssignedTo, task.AssignedName = assign.pick(gap)
			task.Subtasks = p.buildSubtasks(task.ID, gap, phase.StartDate, due)

			phase.Tasks = append(phase.Tasks, task)
			plan.TotalTasks++
			plan.EstimatedHours += gap.EstimatedEffortHours
		}
		plan.Phases = append(plan.Phases, phase)
	}

	plan.ProgressPercentage = PlanProgress(plan.CompletedTasks, plan.TotalTasks)

	if last := plan.Phases[len(plan.Phases)-1].EndDate; last.After(req.TargetDate) {
		p.log.Warn("Projected plan end date exceeds target completion date",
			"projected_end", last, "target", req.TargetDate)
	}
	return plan, nil
}

// PlanProgress is the single progress formula: completed/total*100, rounded.
// A plan with no tasks is complete by definition.
func PlanProgress(completedTasks, totalTasks int) int {
	if totalTasks <= 0 {
		return 100
	}
	return roundHalfUp(float64(completedTasks) / float64(totalTasks) * 100)
}

// groupGapsByElement bundles gaps per element and orders the bundles:
// critical-gap count descending, element weight descending, element
// percentage ascending. Ties break on element number for determinism.
func groupGapsByElement(gaps []Gap, scores []ElementScore) []elementGroup {
	scoreByElement := make(map[int]ElementScore, len(scores))
	for _, sc := range scores {
		scoreByElement[sc.ElementNumber] = sc
	}

	byElement := make(map[int]*elementGroup)
	var order []int
	for _, g := range gaps {
		grp, ok := byElement[g.ElementNumber]
		if !ok {
			grp = &elementGroup{
				ElementNumber: g.ElementNumber,
				Weight:        1.0,
				Percentage:    0,
				WorstSeverity: catalog.SeverityMinor,
			}
			if sc, found := scoreByElement[g.ElementNumber]; found {
				grp.ElementName = sc.ElementName
				grp.Weight = sc.Weight
				grp.Percentage = sc.Percentage
			} else if el, found := catalog.Get(g.ElementNumber); found {
				grp.ElementName = el.Name
				grp.Weight = el.Weight
			}
			byElement[g.ElementNumber] = grp
			order = append(order, g.ElementNumber)
		}
		grp.Gaps = append(grp.Gaps, g)
		grp.Hours += g.EstimatedEffortHours
		if g.Severity == catalog.SeverityCritical {
			grp.CriticalCount++
		}
		if severityRank(g.Severity) < severityRank(grp.WorstSeverity) {
			grp.WorstSeverity = g.Severity
		}
	}

	groups := make([]elementGroup, 0, len(order))
	for _, n := range order {
		groups = append(groups, *byElement[n])
	}
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.CriticalCount != b.CriticalCount {
			return a.CriticalCount > b.CriticalCount
		}
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		if a.Percentage != b.Percentage {
			return a.Percentage < b.Percentage
		}
		return a.ElementNumber < b.ElementNumber
	})
	return groups
}

// capPhaseGroups limits the plan to maxPhases phases. Elements beyond the cap
// fold into the final phase rather than being dropped.
func capPhaseGroups(groups []elementGroup, maxPhases int) [][]elementGroup {
	if maxPhases < 1 {
		maxPhases = 1
	}
	if len(groups) <= maxPhases {
		out := make([][]elementGroup, len(groups))
		for i, g := range groups {
			out[i] = []elementGroup{g}
		}
		return out
	}
	out := make([][]elementGroup, maxPhases)
	for i := 0; i < maxPhases-1; i++ {
		out[i] = []elementGroup{groups[i]}
	}
	out[maxPhases-1] = groups[maxPhases-1:]
	return out
}

func phaseName(pg []elementGroup) string {
	if len(pg) == 1 {
		return fmt.Sprintf("Element %d: %s", pg[0].ElementNumber, pg[0].ElementName)
	}
	nums := make([]string, 0, len(pg))
	for _, g := range pg {
		nums = append(nums, fmt.Sprintf("%d", g.ElementNumber))
	}
	return fmt.Sprintf("Elements %s: remaining remediation", strings.Join(nums, ", "))
}

func severityRank(s catalog.Severity) int {
	switch s {
	case catalog.SeverityCritical:
		return 0
	case catalog.SeverityMajor:
		return 1
	default:
		return 2
	}
}

func sortTasksForPhase(gaps []Gap) {
	sort.SliceStable(gaps, func(i, j int) bool {
		ri, rj := severityRank(gaps[i].Severity), severityRank(gaps[j].Severity)
		if ri != rj {
			return ri < rj
		}
		if gaps[i].EstimatedEffortHours != gaps[j].EstimatedEffortHours {
			return gaps[i].EstimatedEffortHours > gaps[j].EstimatedEffortHours
		}
		return gaps[i].RequirementID < gaps[j].RequirementID
	})
}

// priorityFor maps gap severity to task priority. Priority is monotonic in
// severity: a critical gap never produces a low-priority task.
func (p *Planner) priorityFor(g Gap) string {
	switch g.Severity {
	case catalog.SeverityCritical:
		return PriorityCritical
	case catalog.SeverityMajor:
		return PriorityHigh
	default:
		if g.EstimatedEffortHours >= 4 {
			return PriorityMedium
		}
		return PriorityLow
	}
}

func taskTitle(g Gap) string {
	if g.SuggestedTitle != "" {
		return g.SuggestedTitle
	}
	return g.ActionRequired
}

func (p *Planner) buildSubtasks(taskID uuid.UUID, gap Gap, start, due time.Time) []types.ActionPlanSubtask {
	req, ok := catalog.RequirementByID(gap.RequirementID)
	if !ok {
		return nil
	}
	steps, ok := subtaskSteps[req.Category]
	if !ok {
		return nil
	}
	if p.cfg.MaxSubtasksPerTask > 0 && len(steps) > p.cfg.MaxSubtasksPerTask {
		steps = steps[:p.cfg.MaxSubtasksPerTask]
	}

	spanDays := int(math.Ceil(due.Sub(start).Hours() / 24))
	if spanDays < 1 {
		spanDays = 1
	}
	subtasks := make([]types.ActionPlanSubtask, 0, len(steps))
	for i, step := range steps {
		offset := int(math.Ceil(float64(spanDays) * float64(i+1) / float64(len(steps))))
		subtasks = append(subtasks, types.ActionPlanSubtask{
			ID:        uuid.New(),
			TaskID:    taskID,
			Title:     step,
			DueDate:   start.AddDate(0, 0, offset),
			SortOrder: i,
		})
	}
	return subtasks
}

// assigner distributes tasks over available personnel: role/position keyword
// match against the gap's category first, round-robin otherwise. With no
// personnel every task stays unassigned.
type assigner struct {
	personnel []types.Personnel
	next      int
}

func newAssigner(personnel []types.Personnel) *assigner {
	return &assigner{personnel: personnel}
}

var categoryRoleKeywords = map[string][]string{
	"training_record":             {"train", "coordinator"},
	"orientation_record":          {"train", "hr"},
	"worker_certification":        {"train", "coordinator"},
	"inspection_report":           {"supervisor", "inspector"},
	"ppe_inspection_form":         {"supervisor", "inspector"},
	"maintenance_record":          {"maintenance", "mechanic"},
	"incident_investigation_form": {"safety", "manager"},
	"emergency_plan_document":     {"safety", "coordinator"},
	"emergency_drill_record":      {"safety", "coordinator"},
	"hazard_assessment_form":      {"safety", "supervisor"},
}

func (a *assigner) pick(gap Gap) (*uuid.UUID, string) {
	if len(a.personnel) == 0 {
		return nil, ""
	}
	req, ok := catalog.RequirementByID(gap.RequirementID)
	if ok {
		if keywords, found := categoryRoleKeywords[req.Category]; found {
			for i := range a.personnel {
				person := a.personnel[i]
				role := normalization.ParseInputString(person.Role)
				position := normalization.ParseInputString(person.Position)
				for _, kw := range keywords {
					if strings.Contains(role, kw) || strings.Contains(position, kw) {
						id := person.ID
						return &id, person.Name
					}
				}
			}
		}
	}
	person := a.personnel[a.next%len(a.personnel)]
	a.next++
	id := person.ID
	return &id, person.Name
}
