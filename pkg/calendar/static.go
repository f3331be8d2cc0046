package calendar

import "time"

// WeekdaySource approximates the trading calendar as Monday through Friday
// with no holidays. It backs offline runs and tests.
type WeekdaySource struct{}

// TradingDays returns the weekdays in [start, end].
func (WeekdaySource) TradingDays(start, end time.Time) ([]time.Time, error) {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, d)
		}
	}
	return days, nil
}

// StaticSource serves a fixed, ordered session list. Useful for tests that
// need holidays or gaps.
type StaticSource struct {
	Days []time.Time
}

// TradingDays returns the configured sessions falling inside [start, end].
func (s StaticSource) TradingDays(start, end time.Time) ([]time.Time, error) {
	var days []time.Time
	for _, d := range s.Days {
		if !d.Before(start) && !d.After(end) {
			days = append(days, d)
		}
	}
	return days, nil
}
