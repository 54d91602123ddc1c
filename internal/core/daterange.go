package core

import (
	"fmt"
	"time"
)

// Unit is the bucket granularity a resolved range charts at.
type Unit string

const (
	UnitHour  Unit = "hour"
	UnitDay   Unit = "day"
	UnitMonth Unit = "month"
)

// RangePreset is a named, calendar-aware date range.
type RangePreset string

const (
	RangeToday      RangePreset = "today"
	RangeYesterday  RangePreset = "yesterday"
	RangeLast7Days  RangePreset = "last7days"
	RangeLast30Days RangePreset = "last30days"
	RangeThisWeek   RangePreset = "thisweek"
	RangeThisMonth  RangePreset = "thismonth"
	RangeThisYear   RangePreset = "thisyear"
	RangeLastMonth  RangePreset = "lastmonth"
	RangeLastYear   RangePreset = "lastyear"
	RangeCustom     RangePreset = "custom"
)

var ValidPresets = []RangePreset{
	RangeToday,
	RangeYesterday,
	RangeLast7Days,
	RangeLast30Days,
	RangeThisWeek,
	RangeThisMonth,
	RangeThisYear,
	RangeLastMonth,
	RangeLastYear,
}

func ParsePreset(s string) (RangePreset, error) {
	for _, p := range ValidPresets {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown date range preset %q", s)
}

func (p RangePreset) Label() string {
	switch p {
	case RangeToday:
		return "Today"
	case RangeYesterday:
		return "Yesterday"
	case RangeLast7Days:
		return "Last 7 Days"
	case RangeLast30Days:
		return "Last 30 Days"
	case RangeThisWeek:
		return "This Week"
	case RangeThisMonth:
		return "This Month"
	case RangeThisYear:
		return "This Year"
	case RangeLastMonth:
		return "Last Month"
	case RangeLastYear:
		return "Last Year"
	default:
		return "Custom"
	}
}

// DateRange is either a named preset or an explicit custom window.
// Start/End are only meaningful when Preset == RangeCustom.
type DateRange struct {
	Preset RangePreset `json:"preset"`
	Start  time.Time   `json:"start,omitempty"`
	End    time.Time   `json:"end,omitempty"`
}

func PresetRange(p RangePreset) DateRange {
	return DateRange{Preset: p}
}

func CustomRange(start, end time.Time) DateRange {
	return DateRange{Preset: RangeCustom, Start: start, End: end}
}

// ID is the stable cache key fragment for this range.
func (r DateRange) ID() string {
	if r.Preset != RangeCustom {
		return string(r.Preset)
	}
	return fmt.Sprintf("custom:%d-%d", r.Start.Unix(), r.End.Unix())
}

// ResolvedRange is a concrete window plus its chart granularity.
type ResolvedRange struct {
	Start time.Time
	End   time.Time
	Unit  Unit
}

func (rr ResolvedRange) Duration() time.Duration {
	return rr.End.Sub(rr.Start)
}

// Resolve maps the range onto concrete instants relative to now.
// "This week" starts on Monday in the local calendar.
func (r DateRange) Resolve(now time.Time) ResolvedRange {
	switch r.Preset {
	case RangeToday:
		return ResolvedRange{Start: startOfDay(now), End: now, Unit: UnitHour}
	case RangeYesterday:
		y := now.AddDate(0, 0, -1)
		return ResolvedRange{Start: startOfDay(y), End: endOfDay(y), Unit: UnitHour}
	case RangeLast7Days:
		return ResolvedRange{Start: startOfDay(now.AddDate(0, 0, -6)), End: now, Unit: UnitDay}
	case RangeLast30Days:
		return ResolvedRange{Start: startOfDay(now.AddDate(0, 0, -29)), End: now, Unit: UnitDay}
	case RangeThisWeek:
		return ResolvedRange{Start: startOfWeek(now), End: now, Unit: UnitDay}
	case RangeThisMonth:
		return ResolvedRange{Start: startOfMonth(now), End: now, Unit: UnitDay}
	case RangeThisYear:
		return ResolvedRange{Start: startOfYear(now), End: now, Unit: UnitMonth}
	case RangeLastMonth:
		first := startOfMonth(now)
		return ResolvedRange{Start: first.AddDate(0, -1, 0), End: first.Add(-time.Second), Unit: UnitDay}
	case RangeLastYear:
		first := startOfYear(now)
		return ResolvedRange{Start: first.AddDate(-1, 0, 0), End: first.Add(-time.Second), Unit: UnitMonth}
	default:
		unit := UnitDay
		if r.End.Sub(r.Start) <= 24*time.Hour {
			unit = UnitHour
		} else if r.End.Sub(r.Start) > 365*24*time.Hour {
			unit = UnitMonth
		}
		return ResolvedRange{Start: r.Start, End: r.End, Unit: unit}
	}
}

// Previous computes the comparison window: a period of identical duration
// ending exactly one unit before the current window's start. Every preset
// uses this same rule, including the calendar presets.
func (rr ResolvedRange) Previous() ResolvedRange {
	var step time.Duration
	switch rr.Unit {
	case UnitHour:
		step = time.Hour
	case UnitMonth:
		// Calendar months vary; the generic rule still steps back by the
		// literal window duration.
		step = 24 * time.Hour
	default:
		step = 24 * time.Hour
	}
	end := rr.Start.Add(-step)
	start := end.Add(-rr.Duration())
	return ResolvedRange{Start: start, End: end, Unit: rr.Unit}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

func startOfWeek(t time.Time) time.Time {
	d := startOfDay(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return d.AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}
