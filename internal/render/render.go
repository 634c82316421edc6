// Package render writes schedule state as plain-text tables for the CLI.
package render

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"whereisxur/internal/schedule"
	"whereisxur/internal/status"
)

const stamp = "Mon 2006-01-02 15:04 MST"

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

// Schedule prints each boundary with its UTC time, countdown and a relative hint.
func Schedule(w io.Writer, s schedule.Schedule) {
	state := "departed"
	if s.IsActive {
		state = "here"
	}
	fmt.Fprintf(w, "At %s Xûr is %s (cycle %s)\n\n", s.At.Format(stamp), state, s.CycleKey())

	table := newTable(w, "Event", "When", "In", "")
	for _, row := range []struct {
		name string
		at   time.Time
	}{
		{"Window start", s.CurrentWindowStart},
		{"Window end", s.CurrentWindowEnd},
		{"Next arrival", s.NextArrival},
		{"Next departure", s.NextDeparture},
		{"Next reset", s.NextReset},
	} {
		table.Append([]string{
			row.name,
			row.at.Format(stamp),
			schedule.FormatDuration(row.at.Sub(s.At)),
			humanize.RelTime(row.at, s.At, "ago", "from now"),
		})
	}
	table.Render()
}

// Countdown prints the display labels the way the live page shows them.
func Countdown(w io.Writer, c schedule.Countdown) {
	table := newTable(w, "Label", "Value")
	table.Append([]string{c.ArriveLabel, c.ArriveValue})
	table.Append([]string{c.LeaveLabel, c.LeaveValue})
	table.Append([]string{"Weekly Reset", c.ResetValue})
	table.Render()
}

// Status prints the resolved presence with its source.
func Status(w io.Writer, st status.Status) {
	fmt.Fprintf(w, "%s [%s]\n", st.Message, st.Source)
}

// Transition prints one boundary crossing for the watch loop.
func Transition(w io.Writer, kind string, at time.Time, cycle string) {
	fmt.Fprintf(w, "%s  %-9s cycle %s\n", at.Format(stamp), kind, cycle)
}
