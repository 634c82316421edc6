package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidDay    = errors.New("day of week out of range 0-6")
	ErrInvalidHour   = errors.New("hour out of range 0-23")
	ErrWindowTooLong = errors.New("active window must be shorter than 7 days")
)

// Boundary is a weekly instant: a UTC weekday at a whole UTC hour.
type Boundary struct {
	Day  time.Weekday
	Hour int
}

func (b Boundary) String() string {
	return fmt.Sprintf("%s %02d:00 UTC", b.Day, b.Hour)
}

func (b Boundary) validate(name string) error {
	if b.Day < time.Sunday || b.Day > time.Saturday {
		return fmt.Errorf("%s: %w (got %d)", name, ErrInvalidDay, int(b.Day))
	}
	if b.Hour < 0 || b.Hour > 23 {
		return fmt.Errorf("%s: %w (got %d)", name, ErrInvalidHour, b.Hour)
	}
	return nil
}

// Config holds the three weekly boundaries the calculator works from.
type Config struct {
	Arrival   Boundary
	Departure Boundary
	Reset     Boundary
}

// DefaultConfig is Friday 17:00 arrival, Tuesday 17:00 departure and reset.
func DefaultConfig() Config {
	return Config{
		Arrival:   Boundary{Day: time.Friday, Hour: 17},
		Departure: Boundary{Day: time.Tuesday, Hour: 17},
		Reset:     Boundary{Day: time.Tuesday, Hour: 17},
	}
}

// Validate checks day and hour ranges and that the active window stays under
// a week. Arrival and departure on the same weekday are accepted only when the
// departure hour is earlier; an equal hour would mean a full 7 day window and
// returns ErrWindowTooLong.
func (c Config) Validate() error {
	if err := c.Arrival.validate("arrival"); err != nil {
		return err
	}
	if err := c.Departure.validate("departure"); err != nil {
		return err
	}
	if err := c.Reset.validate("reset"); err != nil {
		return err
	}
	// same weekday wraps to a 7 day span, so the departure hour has to come first
	if c.Arrival.Day == c.Departure.Day && c.Departure.Hour >= c.Arrival.Hour {
		return fmt.Errorf("arrival %s, departure %s: %w", c.Arrival, c.Departure, ErrWindowTooLong)
	}
	return nil
}

// SpanDays is the day count from arrival to departure; equal weekdays give 7.
func (c Config) SpanDays() int {
	span := (int(c.Departure.Day) - int(c.Arrival.Day) + 7) % 7
	if span == 0 {
		return 7
	}
	return span
}

// ParseDay accepts an English weekday name or a digit 0-6 (0 is Sunday).
func ParseDay(s string) (time.Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return time.Sunday, fmt.Errorf("empty day: %w", ErrInvalidDay)
	}
	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 || n > 6 {
			return time.Sunday, fmt.Errorf("day %d: %w", n, ErrInvalidDay)
		}
		return time.Weekday(n), nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if v == name || v == name[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("day %q: %w", s, ErrInvalidDay)
}
