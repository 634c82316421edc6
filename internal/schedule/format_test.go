package schedule

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{93784000 * time.Millisecond, "1d 02:03:04"},
		{-5, Placeholder},
		{0, "00:00:00"},
		{999 * time.Millisecond, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{23*time.Hour + 59*time.Minute + 59*time.Second, "23:59:59"},
		{24 * time.Hour, "1d 00:00:00"},
		{4*24*time.Hour + 30*time.Minute, "4d 00:30:00"},
		{12 * 24 * time.Hour, "12d 00:00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in), "duration %s", tt.in)
	}
}

func TestFormatMillis(t *testing.T) {
	assert.Equal(t, "1d 02:03:04", FormatMillis(93784000))
	assert.Equal(t, "00:00:01", FormatMillis(1999.9))
	assert.Equal(t, Placeholder, FormatMillis(-5))
	assert.Equal(t, Placeholder, FormatMillis(math.NaN()))
	assert.Equal(t, Placeholder, FormatMillis(math.Inf(1)))
	assert.Equal(t, Placeholder, FormatMillis(math.Inf(-1)))
	assert.Equal(t, Placeholder, FormatMillis(1e300))
}

func TestCountdowns(t *testing.T) {
	c := defaultCalc(t)

	live := c.Countdowns(utc("2024-01-09T15:00:00Z"))
	assert.Equal(t, Countdown{
		Active:      true,
		ArriveLabel: "Next Arrival",
		ArriveValue: "Live now",
		LeaveLabel:  "Leaves Tuesday",
		LeaveValue:  "02:00:00",
		ResetValue:  "02:00:00",
	}, live)

	away := c.Countdowns(utc("2024-01-10T17:00:00Z"))
	assert.Equal(t, Countdown{
		Active:      false,
		ArriveLabel: "Arrives Friday",
		ArriveValue: "2d 00:00:00",
		LeaveLabel:  "Next Departure",
		LeaveValue:  "6d 00:00:00",
		ResetValue:  "6d 00:00:00",
	}, away)
}
