// Package compliance implements the audit-readiness engine: evidence
// aggregation, element scoring, gap detection, action-plan generation and
// timeline projection. Every stage is a pure function of its inputs; callers
// own all I/O around it.
package compliance

import (
	"github.com/safetylink/coraudit-backend/internal/catalog"
)

// Config carries the weight, effort and scheduling tables the engine runs
// on. It is passed into each stage explicitly so tests can run alternate
// schemes; nothing in the package reads ambient state.
type Config struct {
	// SeverityWeights convert a requirement's severity-if-missing into
	// scoring points.
	SeverityWeights map[catalog.Severity]float64

	// EffortHours is the base remediation effort per evidence category,
	// multiplied by the number of missing instances.
	EffortHours        map[string]float64
	DefaultEffortHours float64

	// ExpiryLeadTimeDays marks evidence "expiring soon" for minor gaps.
	ExpiryLeadTimeDays int

	// Status thresholds, inclusive-low.
	CompliantThreshold int
	PartialThreshold   int

	// Scheduling assumptions shared by the planner and the projector.
	HoursPerDay  float64
	PhaseOverlap float64
	MaxPhases    int

	MaxSubtasksPerTask int
	MaxRecommendations int
}

func DefaultConfig() Config {
	return Config{
		SeverityWeights: map[catalog.Severity]float64{
			catalog.SeverityCritical: 10,
			catalog.SeverityMajor:    5,
			catalog.SeverityMinor:    2,
		},
		EffortHours: map[string]float64{
			"policy_document":             4,
			"hazard_assessment_form":      3,
			"safe_work_practice":          4,
			"safe_job_procedure":          5,
			"company_rules_document":      4,
			"ppe_inspection_form":         2,
			"maintenance_record":          2,
			"training_record":             8,
			"orientation_record":          4,
			"worker_certification":        8,
			"safety_meeting_record":       2,
			"inspection_report":           6,
			"incident_investigation_form": 4,
			"emergency_plan_document":     6,
			"emergency_drill_record":      4,
			"statistics_report":           3,
			"legislation_review":          3,
			"committee_meeting_record":    2,
		},
		DefaultEffortHours: 4,
		ExpiryLeadTimeDays: 60,
		CompliantThreshold: 80,
		PartialThreshold:   50,
		HoursPerDay:        8,
		PhaseOverlap:       0.30,
		MaxPhases:          8,
		MaxSubtasksPerTask: 5,
		MaxRecommendations: 5,
	}
}

// suggestion is the deterministic remediation metadata derived from an
// evidence category.
type suggestion struct {
	Title        string
	Folder       string
	DocumentType string
}

var categorySuggestions = map[string]suggestion{
	"policy_document":             {"Draft policy document", "Policies", "Policy"},
	"hazard_assessment_form":      {"Complete hazard assessment", "Hazard Assessments", "Hazard Assessment"},
	"safe_work_practice":          {"Write safe work practice", "SWP", "SWP"},
	"safe_job_procedure":          {"Write safe job procedure", "SJP", "SJP"},
	"company_rules_document":      {"Publish company safety rules", "Policies", "Safety Rules"},
	"ppe_inspection_form":         {"Record PPE inspection", "PPE", "Inspection Form"},
	"maintenance_record":          {"File maintenance record", "Maintenance", "Maintenance Record"},
	"training_record":             {"Deliver and record training session", "Training", "Training Record"},
	"orientation_record":          {"Record worker orientation", "Training", "Orientation Record"},
	"worker_certification":        {"Obtain worker certification", "Certifications", "Certification"},
	"safety_meeting_record":       {"Hold and record safety meeting", "Meetings", "Meeting Record"},
	"inspection_report":           {"Complete workplace inspection", "Inspections", "Inspection Report"},
	"incident_investigation_form": {"Complete incident investigation", "Investigations", "Investigation Report"},
	"emergency_plan_document":     {"Draft emergency response plan", "Emergency", "Emergency Plan"},
	"emergency_drill_record":      {"Run and record emergency drill", "Emergency", "Drill Record"},
	"statistics_report":           {"Compile safety statistics report", "Statistics", "Statistics Report"},
	"legislation_review":          {"Review applicable legislation", "Legislation", "Legislation Review"},
	"committee_meeting_record":    {"Hold and record committee meeting", "Committee", "Meeting Minutes"},
}

func suggestionFor(category string) suggestion {
	if s, ok := categorySuggestions[category]; ok {
		return s
	}
	return suggestion{"Provide required evidence", "General", "Document"}
}

// subtaskSteps lists the multi-step remediation templates. Categories absent
// here generate a single task with no subtasks.
var subtaskSteps = map[string][]string{
	"policy_document": {
		"Draft document content",
		"Review with management",
		"Obtain sign-off",
		"Distribute to workers",
	},
	"safe_job_procedure": {
		"Identify critical task steps",
		"Draft procedure",
		"Field-validate with workers",
		"Approve and publish",
	},
	"safe_work_practice": {
		"Identify hazard scope",
		"Draft practice",
		"Approve and publish",
	},
	"emergency_plan_document": {
		"Identify site-specific scenarios",
		"Draft response plan",
		"Assign emergency roles",
		"Review with committee",
		"Post and communicate plan",
	},
	"training_record": {
		"Schedule training session",
		"Deliver training",
		"Collect attendance records",
	},
	"company_rules_document": {
		"Draft safety rules",
		"Review with committee",
		"Collect worker acknowledgements",
	},
}

func (c Config) severityWeight(s catalog.Severity) float64 {
	if w, ok := c.SeverityWeights[s]; ok {
		return w
	}
	return c.SeverityWeights[catalog.SeverityMinor]
}

func (c Config) effortFor(category string) float64 {
	if h, ok := c.EffortHours[category]; ok {
		return h
	}
	return c.DefaultEffortHours
}
