package schedule

import (
	"fmt"
	"math"
	"time"
)

// Placeholder is shown for durations that cannot be rendered.
const Placeholder = "--:--:--"

// FormatDuration renders d as "HH:MM:SS", prefixed with "Nd " once it spans a day.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return Placeholder
	}
	total := int64(d / time.Second)
	seconds := total % 60
	minutes := (total / 60) % 60
	hours := (total / 3600) % 24
	days := total / 86400

	clock := fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	if days > 0 {
		return fmt.Sprintf("%dd %s", days, clock)
	}
	return clock
}

// FormatMillis is FormatDuration over a float millisecond count, as widgets pass it.
func FormatMillis(ms float64) string {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || ms < 0 {
		return Placeholder
	}
	if ms >= float64(math.MaxInt64/int64(time.Millisecond)) {
		return Placeholder
	}
	return FormatDuration(time.Duration(math.Floor(ms)) * time.Millisecond)
}
