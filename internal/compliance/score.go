package compliance

import (
	"fmt"
	"math"
	"sort"

	"github.com/safetylink/coraudit-backend/internal/catalog"
	"github.com/safetylink/coraudit-backend/internal/logger"
)

type ComplianceStatus string

const (
	StatusCompliant    ComplianceStatus = "compliant"
	StatusPartial      ComplianceStatus = "partial"
	StatusNonCompliant ComplianceStatus = "non_compliant"
)

// RequirementResult is one requirement's counted outcome inside an element
// score. Gap detection consumes these.
type RequirementResult struct {
	Requirement catalog.Requirement `json:"requirement"`
	FoundCount  int                 `json:"found_count"`
	Matched     []Evidence          `json:"matched"`
	Met         bool                `json:"met"`
}

type ElementScore struct {
	ElementNumber int                 `json:"element_number"`
	ElementName   string              `json:"element_name"`
	Weight        float64             `json:"weight"`
	TotalPoints   float64             `json:"total_points"`
	EarnedPoints  float64             `json:"earned_points"`
	Percentage    int                 `json:"percentage"`
	Status        ComplianceStatus    `json:"status"`
	Requirements  []RequirementResult `json:"requirements"`
	Gaps          []Gap               `json:"gaps"`
	Evidence      []Evidence          `json:"evidence"`
}

type OverallCompliance struct {
	TotalDocuments    int              `json:"total_documents"`
	MatchedDocuments  int              `json:"matched_documents"`
	OverallPercentage int              `json:"overall_percentage"`
	OverallStatus     ComplianceStatus `json:"overall_status"`
	CriticalGaps      []Gap            `json:"critical_gaps"`
	MajorGaps         []Gap            `json:"major_gaps"`
	MinorGaps         []Gap            `json:"minor_gaps"`
	Recommendations   []string         `json:"recommendations"`
}

type Scorer struct {
	cfg Config
	log *logger.Logger
}

func NewScorer(cfg Config, baseLog *logger.Logger) *Scorer {
	return &Scorer{cfg: cfg, log: baseLog.With("component", "Scorer")}
}

// roundHalfUp is the one canonical rounding used at output boundaries.
// Intermediate point math stays in float64.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// ScoreElements converts aggregated evidence counts into a percentage score
// and status per element. Partially-met requirements earn partial credit:
// a rule needing 4 with 2 found earns half its weight.
func (s *Scorer) ScoreElements(elements []catalog.Element, agg map[string]Aggregation) []ElementScore {
	scores := make([]ElementScore, 0, len(elements))
	for _, el := range elements {
		score := ElementScore{
			ElementNumber: el.Number,
			ElementName:   el.Name,
			Weight:        el.Weight,
		}
		for _, req := range el.Requirements {
			a, ok := agg[req.ID]
			if !ok {
				a = Aggregation{RequirementID: req.ID, ElementNumber: el.Number, RequiredCount: req.MinCount}
			}
			weight := s.cfg.severityWeight(req.Severity)
			score.TotalPoints += weight

			var earned float64
			met := false
			if req.MinCount <= 0 {
				// Informational rule: always satisfied, full points.
				earned = weight
				met = true
			} else {
				ratio := float64(a.FoundCount) / float64(req.MinCount)
				if ratio > 1 {
					ratio = 1
				}
				earned = weight * ratio
				met = a.FoundCount >= req.MinCount
			}
			score.EarnedPoints += earned
			score.Requirements = append(score.Requirements, RequirementResult{
				Requirement: req,
				FoundCount:  a.FoundCount,
				Matched:     a.Matched,
				Met:         met,
			})
			score.Evidence = append(score.Evidence, a.Matched...)
		}

		if score.TotalPoints <= 0 {
			// An element with no requirements is vacuously compliant.
			score.Percentage = 100
		} else {
			score.Percentage = roundHalfUp(score.EarnedPoints / score.TotalPoints * 100)
		}
		score.Status = s.statusFor(score.Percentage)
		scores = append(scores, score)
	}
	return scores
}

func (s *Scorer) statusFor(percentage int) ComplianceStatus {
	switch {
	case percentage >= s.cfg.CompliantThreshold:
		return StatusCompliant
	case percentage >= s.cfg.PartialThreshold:
		return StatusPartial
	default:
		return StatusNonCompliant
	}
}

// ScoreOverall aggregates element scores into the company-level view. The
// overall percentage is the weighted arithmetic mean of element percentages,
// weights from the catalog, rounded once at the end.
func (s *Scorer) ScoreOverall(scores []ElementScore, gaps []Gap) OverallCompliance {
	overall := OverallCompliance{
		CriticalGaps: []Gap{},
		MajorGaps:    []Gap{},
		MinorGaps:    []Gap{},
	}

	var weightedSum, weightTotal float64
	for _, sc := range scores {
		w := sc.Weight
		if w <= 0 {
			w = 1.0
		}
		weightedSum += float64(sc.Percentage) * w
		weightTotal += w
		for _, rr := range sc.Requirements {
			if rr.Requirement.MinCount <= 0 {
				continue
			}
			overall.TotalDocuments += rr.Requirement.MinCount
			matched := rr.FoundCount
			if matched > rr.Requirement.MinCount {
				matched = rr.Requirement.MinCount
			}
			overall.MatchedDocuments += matched
		}
	}
	if weightTotal > 0 {
		overall.OverallPercentage = roundHalfUp(weightedSum / weightTotal)
	} else {
		// No catalog at all: pessimistic default rather than an error.
		s.log.Warn("Scoring with an empty element catalog; defaulting to non-compliant")
		overall.OverallPercentage = 0
	}
	overall.OverallStatus = s.statusFor(overall.OverallPercentage)

	for _, g := range gaps {
		switch g.Severity {
		case catalog.SeverityCritical:
			overall.CriticalGaps = append(overall.CriticalGaps, g)
		case catalog.SeverityMajor:
			overall.MajorGaps = append(overall.MajorGaps, g)
		default:
			overall.MinorGaps = append(overall.MinorGaps, g)
		}
	}

	overall.Recommendations = s.recommendations(scores)
	return overall
}

func (s *Scorer) recommendations(scores []ElementScore) []string {
	ranked := make([]ElementScore, 0, len(scores))
	for _, sc := range scores {
		if sc.Status != StatusCompliant {
			ranked = append(ranked, sc)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Percentage != ranked[j].Percentage {
			return ranked[i].Percentage < ranked[j].Percentage
		}
		return ranked[i].ElementNumber < ranked[j].ElementNumber
	})
	if len(ranked) > s.cfg.MaxRecommendations {
		ranked = ranked[:s.cfg.MaxRecommendations]
	}
	recs := make([]string, 0, len(ranked))
	for _, sc := range ranked {
		recs = append(recs, fmt.Sprintf("Address gaps in Element %d (%s), currently at %d%%.",
			sc.ElementNumber, sc.ElementName, sc.Percentage))
	}
	return recs
}

// AttachGaps returns a copy of the scores with each element's gaps filled in.
func AttachGaps(scores []ElementScore, gaps []Gap) []ElementScore {
	byElement := make(map[int][]Gap)
	for _, g := range gaps {
		byElement[g.ElementNumber] = append(byElement[g.ElementNumber], g)
	}
	out := make([]ElementScore, len(scores))
	copy(out, scores)
	for i := range out {
		out[i].Gaps = byElement[out[i].ElementNumber]
	}
	return out
}
