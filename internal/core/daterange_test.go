package core

import (
	"testing"
	"time"
)

func TestResolvePresets(t *testing.T) {
	// Wednesday, March 12 2025.
	now := time.Date(2025, 3, 12, 15, 45, 0, 0, time.UTC)

	tests := []struct {
		preset    RangePreset
		wantStart time.Time
		wantUnit  Unit
	}{
		{RangeToday, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), UnitHour},
		{RangeYesterday, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), UnitHour},
		{RangeLast7Days, time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC), UnitDay},
		{RangeLast30Days, time.Date(2025, 2, 11, 0, 0, 0, 0, time.UTC), UnitDay},
		{RangeThisWeek, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), UnitDay},
		{RangeThisMonth, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), UnitDay},
		{RangeThisYear, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), UnitMonth},
		{RangeLastMonth, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), UnitDay},
		{RangeLastYear, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), UnitMonth},
	}
	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			rr := PresetRange(tt.preset).Resolve(now)
			if !rr.Start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", rr.Start, tt.wantStart)
			}
			if rr.Unit != tt.wantUnit {
				t.Errorf("unit = %v, want %v", rr.Unit, tt.wantUnit)
			}
			if rr.End.Before(rr.Start) {
				t.Errorf("end %v before start %v", rr.End, rr.Start)
			}
		})
	}
}

func TestThisWeekStartsMonday(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"wednesday", time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC), time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"monday", time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"sunday", time.Date(2025, 3, 16, 10, 0, 0, 0, time.UTC), time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := PresetRange(RangeThisWeek).Resolve(tt.now)
			if !rr.Start.Equal(tt.want) {
				t.Errorf("start = %v, want %v", rr.Start, tt.want)
			}
		})
	}
}

func TestPreviousPeriodSymmetry(t *testing.T) {
	now := time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)
	rr := PresetRange(RangeLast7Days).Resolve(now)
	prev := rr.Previous()

	if prev.Duration() != rr.Duration() {
		t.Errorf("previous duration = %v, want %v", prev.Duration(), rr.Duration())
	}
	gap := rr.Start.Sub(prev.End)
	if gap != 24*time.Hour {
		t.Errorf("gap between periods = %v, want exactly one day bucket", gap)
	}
	if prev.Unit != rr.Unit {
		t.Errorf("previous unit = %v, want %v", prev.Unit, rr.Unit)
	}
}

func TestPreviousPeriodHourUnit(t *testing.T) {
	now := time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)
	rr := PresetRange(RangeToday).Resolve(now)
	prev := rr.Previous()

	wantEnd := rr.Start.Add(-time.Hour)
	if !prev.End.Equal(wantEnd) {
		t.Errorf("previous end = %v, want %v", prev.End, wantEnd)
	}
	if prev.Duration() != rr.Duration() {
		t.Errorf("previous duration = %v, want %v", prev.Duration(), rr.Duration())
	}
}

func TestCustomRangePreservesDuration(t *testing.T) {
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC)
	rr := CustomRange(start, end).Resolve(time.Now())

	prev := rr.Previous()
	if prev.Duration() != rr.Duration() {
		t.Errorf("previous duration = %v, want %v", prev.Duration(), rr.Duration())
	}
}

func TestParsePreset(t *testing.T) {
	for _, p := range ValidPresets {
		got, err := ParsePreset(string(p))
		if err != nil {
			t.Errorf("ParsePreset(%q) error: %v", p, err)
		}
		if got != p {
			t.Errorf("ParsePreset(%q) = %q", p, got)
		}
	}
	if _, err := ParsePreset("fortnight"); err == nil {
		t.Error("ParsePreset(fortnight) expected error")
	}
}

func TestRangeID(t *testing.T) {
	if got := PresetRange(RangeLast7Days).ID(); got != "last7days" {
		t.Errorf("ID = %q, want last7days", got)
	}
	start := time.Unix(1700000000, 0)
	end := time.Unix(1700100000, 0)
	if got := CustomRange(start, end).ID(); got != "custom:1700000000-1700100000" {
		t.Errorf("custom ID = %q", got)
	}
}
