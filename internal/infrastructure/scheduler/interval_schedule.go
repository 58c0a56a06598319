package scheduler

import (
	"fmt"
	"time"
)

// minInterval is the floor for interval schedules. A zero or negative
// interval would make a job due on every tick.
const minInterval = time.Second

// IntervalSchedule runs a job at a fixed interval, counted from the start of
// the previous run.
type IntervalSchedule struct {
	Interval time.Duration
}

// NewIntervalSchedule creates an interval schedule. Intervals below one
// second are raised to one second.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	if interval < minInterval {
		interval = minInterval
	}
	return &IntervalSchedule{Interval: interval}
}

// Next returns the next run time after t.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	interval := s.Interval
	if interval < minInterval {
		interval = minInterval
	}
	return t.Add(interval)
}

// String describes the schedule for logs and job listings.
func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval.String())
}
