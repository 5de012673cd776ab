package compliance

import (
	"testing"
	"time"
)

var schedStart = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func TestPhaseDays(t *testing.T) {
	cases := []struct {
		hours float64
		want  int
	}{
		{0, 1},
		{1, 1},
		{8, 1},
		{9, 2},
		{16, 2},
		{17, 3},
		{80, 10},
	}
	for _, tc := range cases {
		if got := phaseDays(tc.hours, 8); got != tc.want {
			t.Fatalf("phaseDays(%v, 8) = %d, want %d", tc.hours, got, tc.want)
		}
	}
}

func TestSchedulePhasesOverlap(t *testing.T) {
	cfg := DefaultConfig()
	// 80h -> 10 days; 16h -> 2 days; 8h -> 1 day.
	windows := SchedulePhases(schedStart, []float64{80, 16, 8}, cfg)
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}
	if !windows[0].Start.Equal(schedStart) {
		t.Fatalf("first phase starts at %v, want %v", windows[0].Start, schedStart)
	}
	if windows[0].DurationDays != 10 {
		t.Fatalf("first phase duration = %d, want 10", windows[0].DurationDays)
	}
	// Next phase starts after ceil(10 * 0.7) = 7 days.
	wantSecond := schedStart.AddDate(0, 0, 7)
	if !windows[1].Start.Equal(wantSecond) {
		t.Fatalf("second phase starts at %v, want %v", windows[1].Start, wantSecond)
	}
	// Then after another ceil(2 * 0.7) = 2 days.
	wantThird := wantSecond.AddDate(0, 0, 2)
	if !windows[2].Start.Equal(wantThird) {
		t.Fatalf("third phase starts at %v, want %v", windows[2].Start, wantThird)
	}
	for i, w := range windows {
		if !w.End.Equal(w.Start.AddDate(0, 0, w.DurationDays)) {
			t.Fatalf("window %d end inconsistent with duration", i)
		}
	}
}

func TestSchedulePhasesAdvanceAtLeastOneDay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PhaseOverlap = 0.99
	windows := SchedulePhases(schedStart, []float64{1, 1}, cfg)
	if !windows[1].Start.After(windows[0].Start) {
		t.Fatal("phase starts must strictly advance")
	}
}

func TestSchedulePhasesEmpty(t *testing.T) {
	if windows := SchedulePhases(schedStart, nil, DefaultConfig()); len(windows) != 0 {
		t.Fatalf("no phases in, no windows out, got %d", len(windows))
	}
}

func TestTotalDaysToReady(t *testing.T) {
	cfg := DefaultConfig()
	// Single 10-day phase: span is exactly 10 days.
	if got := TotalDaysToReady(schedStart, []float64{80}, cfg); got != 10 {
		t.Fatalf("TotalDaysToReady = %d, want 10", got)
	}
	if got := TotalDaysToReady(schedStart, nil, cfg); got != 0 {
		t.Fatalf("TotalDaysToReady with no phases = %d, want 0", got)
	}
	// Two 10-day phases overlapped by 30%: 7 + 10 = 17 days.
	if got := TotalDaysToReady(schedStart, []float64{80, 80}, cfg); got != 17 {
		t.Fatalf("TotalDaysToReady = %d, want 17", got)
	}
}
