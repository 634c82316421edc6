package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"whereisxur/internal/schedule"
	"whereisxur/internal/status"
)

func TestScheduleTable(t *testing.T) {
	calc := schedule.MustNew(schedule.DefaultConfig())
	s := calc.Evaluate(time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC))

	var buf bytes.Buffer
	Schedule(&buf, s)
	out := buf.String()

	assert.Contains(t, out, "Xûr is here (cycle 2024-01-05)")
	assert.Contains(t, out, "Next departure")
	assert.Contains(t, out, "Tue 2024-01-09 17:00 UTC")
	assert.Contains(t, out, "3d 05:00:00")
	assert.Contains(t, out, "from now")
	assert.Contains(t, out, "ago")
}

func TestCountdownTable(t *testing.T) {
	calc := schedule.MustNew(schedule.DefaultConfig())
	c := calc.Countdowns(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	var buf bytes.Buffer
	Countdown(&buf, c)
	out := buf.String()

	assert.Contains(t, out, "Arrives Friday")
	assert.Contains(t, out, "2d 17:00:00")
	assert.Contains(t, out, "Weekly Reset")
}

func TestStatusLine(t *testing.T) {
	var buf bytes.Buffer
	Status(&buf, status.Status{Message: "Xûr is here! Inventory below.", Source: status.SourceVendor})
	assert.Equal(t, "Xûr is here! Inventory below. [vendor]\n", buf.String())
}

func TestTransitionLine(t *testing.T) {
	var buf bytes.Buffer
	Transition(&buf, "arrival", time.Date(2024, 1, 5, 17, 0, 0, 0, time.UTC), "2024-01-05")
	assert.Equal(t, "Fri 2024-01-05 17:00 UTC  arrival   cycle 2024-01-05\n", buf.String())
}
