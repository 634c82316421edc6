package schedule

import (
	"time"
)

// Schedule is the state of the weekly window at one instant. All times are UTC.
type Schedule struct {
	At                 time.Time `json:"at"`
	IsActive           bool      `json:"isActive"`
	CurrentWindowStart time.Time `json:"currentWindowStart"`
	CurrentWindowEnd   time.Time `json:"currentWindowEnd"`
	NextArrival        time.Time `json:"nextArrival"`
	NextDeparture      time.Time `json:"nextDeparture"`
	NextReset          time.Time `json:"nextReset"`
}

// CycleKey names the weekly cycle the instant belongs to, by its arrival date.
func (s Schedule) CycleKey() string {
	return s.CurrentWindowStart.Format("2006-01-02")
}

// Calculator evaluates a fixed Config. It is immutable and safe for concurrent use.
type Calculator struct {
	cfg  Config
	span int
}

// New validates cfg and returns a calculator for it.
func New(cfg Config) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{cfg: cfg, span: cfg.SpanDays()}, nil
}

// MustNew is New for package-level defaults; it panics on a bad config.
func MustNew(cfg Config) *Calculator {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Calculator) Config() Config { return c.cfg }
func (c *Calculator) SpanDays() int  { return c.span }

// Evaluate computes the schedule at now. The active window is [arrival, departure).
func (c *Calculator) Evaluate(now time.Time) Schedule {
	now = now.UTC()
	arr, dep := c.cfg.Arrival, c.cfg.Departure

	lastArrival := previousOccurrence(now, arr)
	activeDeparture := addDaysAt(lastArrival, c.span, dep.Hour)
	active := !now.Before(lastArrival) && now.Before(activeDeparture)

	var nextArrival, nextDeparture time.Time
	if active {
		nextDeparture = activeDeparture
		nextArrival = nextOccurrence(activeDeparture, arr)
	} else {
		nextArrival = nextOccurrence(now, arr)
		nextDeparture = addDaysAt(nextArrival, c.span, dep.Hour)
	}

	return Schedule{
		At:                 now,
		IsActive:           active,
		CurrentWindowStart: lastArrival,
		CurrentWindowEnd:   activeDeparture,
		NextArrival:        nextArrival,
		NextDeparture:      nextDeparture,
		NextReset:          nextOccurrence(now, c.cfg.Reset),
	}
}

// nextOccurrence returns the first b strictly after t.
func nextOccurrence(t time.Time, b Boundary) time.Time {
	delta := (int(b.Day) - int(t.Weekday()) + 7) % 7
	y, m, d := t.Date()
	cand := time.Date(y, m, d+delta, b.Hour, 0, 0, 0, time.UTC)
	if !cand.After(t) {
		cand = cand.AddDate(0, 0, 7)
	}
	return cand
}

// previousOccurrence returns the last b at or before t.
func previousOccurrence(t time.Time, b Boundary) time.Time {
	delta := (int(t.Weekday()) - int(b.Day) + 7) % 7
	y, m, d := t.Date()
	cand := time.Date(y, m, d-delta, b.Hour, 0, 0, 0, time.UTC)
	if cand.After(t) {
		cand = cand.AddDate(0, 0, -7)
	}
	return cand
}

func addDaysAt(t time.Time, days, hour int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+days, hour, 0, 0, 0, time.UTC)
}
