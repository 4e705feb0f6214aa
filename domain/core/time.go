package core

import (
	"time"
)

// WeekStart returns the Monday (00:00:00 UTC, date only) on or before t.
// The instant is normalized to UTC before the date is taken, so the same
// moment always lands in the same bucket regardless of source offset.
// A timestamp already on a Monday buckets to itself.
func WeekStart(t time.Time) time.Time {
	u := t.UTC()
	d := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return d.AddDate(0, 0, -offset)
}

// RunAt is the injected run instant. Lead age for unresolved leads is
// measured against it instead of the wall clock, which keeps the pipeline
// deterministic and replayable.
type RunAt time.Time

// NewRunAt creates a run instant normalized to UTC.
func NewRunAt(t time.Time) RunAt {
	return RunAt(t.UTC())
}

// Time returns the underlying time.Time.
func (r RunAt) Time() time.Time {
	return time.Time(r)
}

// Date strips the run instant to 00:00:00 UTC of its day.
func (r RunAt) Date() time.Time {
	t := time.Time(r).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// String returns the RFC3339 representation.
func (r RunAt) String() string {
	return time.Time(r).Format(time.RFC3339)
}
