package compliance

import (
	"math"
	"time"
)

// PhaseWindow is one scheduled phase's date range.
type PhaseWindow struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	DurationDays int       `json:"duration_days"`
}

// phaseDays converts phase effort to workdays: ceil(hours / workday), never
// less than one day.
func phaseDays(hours, hoursPerDay float64) int {
	if hoursPerDay <= 0 {
		hoursPerDay = 8
	}
	days := int(math.Ceil(hours / hoursPerDay))
	if days < 1 {
		days = 1
	}
	return days
}

// SchedulePhases lays phases out from a start date with partial overlap:
// phase N+1 starts once ceil(duration_N * (1 - overlap)) days of phase N have
// elapsed. Remediation work across elements is mostly independent, so strict
// serial sequencing would overstate the calendar cost.
//
// This is the single scheduling utility shared by the action-plan generator
// and the timeline projector; their projected dates must never diverge.
func SchedulePhases(start time.Time, phaseHours []float64, cfg Config) []PhaseWindow {
	windows := make([]PhaseWindow, 0, len(phaseHours))
	cursor := start
	for _, hours := range phaseHours {
		days := phaseDays(hours, cfg.HoursPerDay)
		w := PhaseWindow{
			Start:        cursor,
			End:          cursor.AddDate(0, 0, days),
			DurationDays: days,
		}
		windows = append(windows, w)

		advance := int(math.Ceil(float64(days) * (1 - cfg.PhaseOverlap)))
		if advance < 1 {
			advance = 1
		}
		cursor = cursor.AddDate(0, 0, advance)
	}
	return windows
}

// TotalDaysToReady is the calendar span of the full schedule: days from start
// until the end of the last phase.
func TotalDaysToReady(start time.Time, phaseHours []float64, cfg Config) int {
	windows := SchedulePhases(start, phaseHours, cfg)
	if len(windows) == 0 {
		return 0
	}
	last := windows[len(windows)-1].End
	return int(math.Ceil(last.Sub(start).Hours() / 24))
}
