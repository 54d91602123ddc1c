package core

import "time"

// FillGaps completes a raw series against its resolved range so every
// expected bucket appears exactly once, in chronological order, with value
// 0 where the backend returned nothing. The output length is a function of
// the range alone. If enumeration yields no buckets the raw input is
// returned unchanged so callers never lose data to a degenerate range.
func FillGaps(points []ChartPoint, rr ResolvedRange, now time.Time) []ChartPoint {
	var filled []ChartPoint
	switch rr.Unit {
	case UnitHour:
		filled = fillHours(points, rr, now)
	case UnitMonth:
		filled = fillMonths(points, rr)
	default:
		filled = fillDays(points, rr)
	}
	if len(filled) == 0 {
		return points
	}
	return filled
}

func fillHours(points []ChartPoint, rr ResolvedRange, now time.Time) []ChartPoint {
	day := startOfDay(rr.Start)
	lastHour := 23
	if sameDay(rr.Start, now) {
		lastHour = now.Hour()
	}

	out := make([]ChartPoint, 0, lastHour+1)
	for h := 0; h <= lastHour; h++ {
		bucket := day.Add(time.Duration(h) * time.Hour)
		value := 0
		for _, p := range points {
			if sameDay(p.Time, day) && p.Time.Hour() == h {
				value = p.Value
				break
			}
		}
		out = append(out, ChartPoint{Time: bucket, Value: value})
	}
	return out
}

func fillDays(points []ChartPoint, rr ResolvedRange) []ChartPoint {
	first := startOfDay(rr.Start)
	last := startOfDay(rr.End)

	var out []ChartPoint
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		value := 0
		for _, p := range points {
			if sameDay(p.Time, d) {
				value = p.Value
				break
			}
		}
		out = append(out, ChartPoint{Time: d, Value: value})
	}
	return out
}

func fillMonths(points []ChartPoint, rr ResolvedRange) []ChartPoint {
	year := rr.Start.Year()

	out := make([]ChartPoint, 0, 12)
	for m := time.January; m <= time.December; m++ {
		bucket := time.Date(year, m, 1, 0, 0, 0, 0, rr.Start.Location())
		value := 0
		for _, p := range points {
			if p.Time.Month() == m {
				value = p.Value
				break
			}
		}
		out = append(out, ChartPoint{Time: bucket, Value: value})
	}
	return out
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
