package compliance

import (
	"time"

	"github.com/safetylink/coraudit-backend/internal/catalog"
	"github.com/safetylink/coraudit-backend/internal/logger"
)

// Aggregation is the per-requirement evidence count produced by Aggregate.
type Aggregation struct {
	RequirementID string     `json:"requirement_id"`
	ElementNumber int        `json:"element_number"`
	RequiredCount int        `json:"required_count"`
	FoundCount    int        `json:"found_count"`
	Matched       []Evidence `json:"matched"`
}

type Aggregator struct {
	log *logger.Logger
}

func NewAggregator(baseLog *logger.Logger) *Aggregator {
	return &Aggregator{log: baseLog.With("component", "Aggregator")}
}

// Aggregate groups and counts evidence per element per requirement. A record
// matches a requirement when its category equals the requirement's category,
// it is tagged with the requirement's element number, and it is still valid
// as of the evaluation date. Counting is per requirement, not per element: a
// record tagged with several elements counts independently toward each.
//
// Records referencing only unknown element numbers are skipped and logged,
// never fatal; partial data still produces a best-effort score.
func (a *Aggregator) Aggregate(elements []catalog.Element, evidence []Evidence, asOf time.Time) map[string]Aggregation {
	usable := make([]Evidence, 0, len(evidence))
	for _, ev := range evidence {
		if ev.Category == "" {
			a.log.Warn("Skipping evidence record with empty category", "reference_id", ev.ReferenceID)
			continue
		}
		known := 0
		for _, n := range ev.ElementNumbers {
			if catalog.ValidElementNumber(n) {
				known++
			}
		}
		if known == 0 {
			a.log.Warn("Skipping evidence record with no known element numbers",
				"reference_id", ev.ReferenceID, "element_numbers", ev.ElementNumbers)
			continue
		}
		if known < len(ev.ElementNumbers) {
			a.log.Debug("Evidence record references unknown element numbers; ignoring those tags",
				"reference_id", ev.ReferenceID, "element_numbers", ev.ElementNumbers)
		}
		usable = append(usable, ev)
	}

	out := make(map[string]Aggregation)
	for _, el := range elements {
		for _, req := range el.Requirements {
			agg := Aggregation{
				RequirementID: req.ID,
				ElementNumber: el.Number,
				RequiredCount: req.MinCount,
			}
			for _, ev := range usable {
				if !matches(req, ev, asOf) {
					continue
				}
				agg.FoundCount++
				agg.Matched = append(agg.Matched, ev)
			}
			out[req.ID] = agg
		}
	}
	return out
}

func matches(req catalog.Requirement, ev Evidence, asOf time.Time) bool {
	if ev.Category != req.Category {
		return false
	}
	tagged := false
	for _, n := range ev.ElementNumbers {
		if n == req.ElementNumber {
			tagged = true
			break
		}
	}
	if !tagged {
		return false
	}
	return ev.CurrentAsOf(asOf)
}
