package compliance

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/safetylink/coraudit-backend/internal/catalog"
	"github.com/safetylink/coraudit-backend/internal/logger"
)

// Gap is a single unmet or under-met requirement with its remediation cost.
type Gap struct {
	ID                    uuid.UUID        `json:"id"`
	RequirementID         string           `json:"requirement_id"`
	ElementNumber         int              `json:"element_number"`
	Severity              catalog.Severity `json:"severity"`
	Description           string           `json:"description"`
	ActionRequired        string           `json:"action_required"`
	EstimatedEffortHours  float64          `json:"estimated_effort_hours"`
	FoundCount            int              `json:"found_count"`
	RequiredCount         int              `json:"required_count"`
	SuggestedTitle        string           `json:"suggested_title"`
	SuggestedFolder       string           `json:"suggested_folder"`
	SuggestedDocumentType string           `json:"suggested_document_type"`
}

type GapDetector struct {
	cfg Config
	log *logger.Logger
}

func NewGapDetector(cfg Config, baseLog *logger.Logger) *GapDetector {
	return &GapDetector{cfg: cfg, log: baseLog.With("component", "GapDetector")}
}

// Detect emits one gap per unmet requirement. Severity: a mandatory rule with
// zero evidence is critical; a partially met rule is major; a rule met in
// count whose evidence lapses inside the expiry lead window is minor. A met
// requirement with current evidence never emits a gap.
func (d *GapDetector) Detect(scores []ElementScore, asOf time.Time) []Gap {
	var gaps []Gap
	for _, sc := range scores {
		for _, rr := range sc.Requirements {
			req := rr.Requirement
			if req.MinCount <= 0 {
				continue
			}
			if rr.FoundCount < req.MinCount {
				gaps = append(gaps, d.shortfallGap(sc.ElementNumber, req, rr.FoundCount))
				continue
			}
			if d.staleEvidence(rr, asOf) {
				gaps = append(gaps, d.staleGap(sc.ElementNumber, req, rr.FoundCount))
			}
		}
	}
	return gaps
}

func (d *GapDetector) shortfallGap(elementNumber int, req catalog.Requirement, found int) Gap {
	severity := catalog.SeverityMajor
	if found == 0 && req.Mandatory {
		severity = catalog.SeverityCritical
	}
	missing := req.MinCount - found
	effort := d.cfg.effortFor(req.Category) * float64(missing)
	if effort < 1 {
		effort = 1
	}
	sug := suggestionFor(req.Category)
	return Gap{
		ID:            uuid.New(),
		RequirementID: req.ID,
		ElementNumber: elementNumber,
		Severity:      severity,
		Description: fmt.Sprintf("%s: %d of %d required records on file",
			req.Description, found, req.MinCount),
		ActionRequired: fmt.Sprintf("Provide %d more %s record(s)",
			missing, req.Category),
		EstimatedEffortHours:  effort,
		FoundCount:            found,
		RequiredCount:         req.MinCount,
		SuggestedTitle:        sug.Title,
		SuggestedFolder:       sug.Folder,
		SuggestedDocumentType: sug.DocumentType,
	}
}

func (d *GapDetector) staleGap(elementNumber int, req catalog.Requirement, found int) Gap {
	effort := d.cfg.effortFor(req.Category)
	if effort < 1 {
		effort = 1
	}
	sug := suggestionFor(req.Category)
	return Gap{
		ID:            uuid.New(),
		RequirementID: req.ID,
		ElementNumber: elementNumber,
		Severity:      catalog.SeverityMinor,
		Description: fmt.Sprintf("%s: requirement met but evidence expires within %d days",
			req.Description, d.cfg.ExpiryLeadTimeDays),
		ActionRequired:        fmt.Sprintf("Renew expiring %s record(s)", req.Category),
		EstimatedEffortHours:  effort,
		FoundCount:            found,
		RequiredCount:         req.MinCount,
		SuggestedTitle:        sug.Title,
		SuggestedFolder:       sug.Folder,
		SuggestedDocumentType: sug.DocumentType,
	}
}

// staleEvidence reports whether meeting the count depends on at least one
// record that lapses inside the lead window.
func (d *GapDetector) staleEvidence(rr RequirementResult, asOf time.Time) bool {
	if d.cfg.ExpiryLeadTimeDays <= 0 {
		return false
	}
	stillCurrent := 0
	expiring := false
	for _, ev := range rr.Matched {
		if ev.ExpiringWithin(asOf, d.cfg.ExpiryLeadTimeDays) {
			expiring = true
			continue
		}
		stillCurrent++
	}
	return expiring && stillCurrent < rr.Requirement.MinCount
}
