// Package live reports whether a recurring stream is on air. Unlike the vendor
// schedule its windows are defined in a local time zone.
package live

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"
)

var ErrInvalidWindow = errors.New("invalid live window")

// Window is a daily [StartHour, EndHour) slot on each of Days, in local time.
type Window struct {
	Days      []time.Weekday
	StartHour int
	EndHour   int
}

// Schedule is a set of weekly windows in one location.
type Schedule struct {
	loc     *time.Location
	windows []Window
}

// DefaultLocation is where the default windows are defined.
const DefaultLocation = "America/New_York"

// DefaultWindows are weekday mornings plus a long Friday.
func DefaultWindows() []Window {
	return []Window{
		{Days: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday}, StartHour: 7, EndHour: 10},
		{Days: []time.Weekday{time.Friday}, StartHour: 7, EndHour: 18},
	}
}

// New loads location and validates windows.
func New(location string, windows []Window) (*Schedule, error) {
	if location == "" {
		location = DefaultLocation
	}
	loc, err := time.LoadLocation(location)
	if err != nil {
		return nil, fmt.Errorf("live location %q: %w", location, err)
	}
	for i, w := range windows {
		if w.StartHour < 0 || w.StartHour > 23 || w.EndHour < 1 || w.EndHour > 24 || w.EndHour <= w.StartHour {
			return nil, fmt.Errorf("window %d hours %d-%d: %w", i, w.StartHour, w.EndHour, ErrInvalidWindow)
		}
		if len(w.Days) == 0 {
			return nil, fmt.Errorf("window %d has no days: %w", i, ErrInvalidWindow)
		}
		for _, d := range w.Days {
			if d < time.Sunday || d > time.Saturday {
				return nil, fmt.Errorf("window %d day %d: %w", i, int(d), ErrInvalidWindow)
			}
		}
	}
	return &Schedule{loc: loc, windows: windows}, nil
}

func (s *Schedule) Location() *time.Location { return s.loc }

// IsLive reports whether now falls inside any window.
func (s *Schedule) IsLive(now time.Time) bool {
	local := now.In(s.loc)
	h := local.Hour()
	for _, w := range s.windows {
		if !hasDay(w.Days, local.Weekday()) {
			continue
		}
		if h >= w.StartHour && h < w.EndHour {
			return true
		}
	}
	return false
}

// NextStart returns the first window start strictly after now, or false if
// no window exists.
func (s *Schedule) NextStart(now time.Time) (time.Time, bool) {
	local := now.In(s.loc)
	y, m, d := local.Date()
	var best time.Time
	for i := 0; i <= 8; i++ {
		day := time.Date(y, m, d+i, 0, 0, 0, 0, s.loc)
		for _, w := range s.windows {
			if !hasDay(w.Days, day.Weekday()) {
				continue
			}
			start := time.Date(day.Year(), day.Month(), day.Day(), w.StartHour, 0, 0, 0, s.loc)
			if !start.After(now) {
				continue
			}
			if best.IsZero() || start.Before(best) {
				best = start
			}
		}
		if !best.IsZero() {
			return best, true
		}
	}
	return time.Time{}, false
}

func hasDay(days []time.Weekday, d time.Weekday) bool {
	for _, x := range days {
		if x == d {
			return true
		}
	}
	return false
}
