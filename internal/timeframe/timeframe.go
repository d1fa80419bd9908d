// Package timeframe provides the half-open time interval used by record-set
// window queries.
package timeframe

import "time"

// Timeframe is a half-open interval [Start, End).
type Timeframe struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// New returns the interval [start, end).
func New(start, end time.Time) Timeframe {
	return Timeframe{Start: start, End: end}
}

// LastYear returns the rolling one-calendar-year window ending at now.
func LastYear(now time.Time) Timeframe {
	return Timeframe{Start: now.AddDate(-1, 0, 0), End: now}
}

// LastDays returns the rolling n-day window ending at now.
func LastDays(now time.Time, n int) Timeframe {
	return Timeframe{Start: now.AddDate(0, 0, -n), End: now}
}

// NextHours returns the forward-looking window [now, now+h).
func NextHours(now time.Time, h int) Timeframe {
	return Timeframe{Start: now, End: now.Add(time.Duration(h) * time.Hour)}
}

// Contains reports whether t falls inside the interval.
func (tf Timeframe) Contains(t time.Time) bool {
	return !t.Before(tf.Start) && t.Before(tf.End)
}

// Days returns the interval length in whole days.
func (tf Timeframe) Days() int {
	return int(tf.End.Sub(tf.Start).Hours() / 24)
}
