package schedule

import "time"

// Countdown is the label/value text a display shows for one tick.
type Countdown struct {
	Active      bool   `json:"active"`
	ArriveLabel string `json:"arriveLabel"`
	ArriveValue string `json:"arriveValue"`
	LeaveLabel  string `json:"leaveLabel"`
	LeaveValue  string `json:"leaveValue"`
	ResetValue  string `json:"resetValue"`
}

// Countdowns evaluates now and derives the display text from it.
func (c *Calculator) Countdowns(now time.Time) Countdown {
	return c.CountdownFor(c.Evaluate(now))
}

// CountdownFor renders an already evaluated schedule relative to s.At.
func (c *Calculator) CountdownFor(s Schedule) Countdown {
	out := Countdown{
		Active:     s.IsActive,
		LeaveValue: FormatDuration(s.NextDeparture.Sub(s.At)),
		ResetValue: FormatDuration(s.NextReset.Sub(s.At)),
	}
	if s.IsActive {
		out.ArriveLabel = "Next Arrival"
		out.ArriveValue = "Live now"
		out.LeaveLabel = "Leaves " + c.cfg.Departure.Day.String()
	} else {
		out.ArriveLabel = "Arrives " + c.cfg.Arrival.Day.String()
		out.ArriveValue = FormatDuration(s.NextArrival.Sub(s.At))
		out.LeaveLabel = "Next Departure"
	}
	return out
}
