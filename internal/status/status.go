// Package status picks the presence line shown above the inventory. A reading
// from the vendor API wins over the calendar when the caller has one.
package status

import (
	"fmt"
	"strings"

	"whereisxur/internal/schedule"
)

// Observation is what the caller last learned from the vendor itself.
type Observation int

const (
	Unknown Observation = iota
	Present
	Absent
)

// ParseObservation maps "present"/"absent" (or true/false); empty is Unknown.
func ParseObservation(s string) (Observation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unknown":
		return Unknown, nil
	case "present", "true", "here":
		return Present, nil
	case "absent", "false", "away":
		return Absent, nil
	}
	return Unknown, fmt.Errorf("unknown vendor observation %q", s)
}

func (o Observation) String() string {
	switch o {
	case Present:
		return "present"
	case Absent:
		return "absent"
	}
	return "unknown"
}

const (
	SourceVendor   = "vendor"
	SourceSchedule = "schedule"
)

type Status struct {
	Present bool   `json:"present"`
	Source  string `json:"source"`
	Message string `json:"message"`
	Class   string `json:"class"`
}

// Resolve combines the schedule view with an optional vendor observation.
func Resolve(cfg schedule.Config, s schedule.Schedule, obs Observation) Status {
	present, source := s.IsActive, SourceSchedule
	if obs != Unknown {
		present, source = obs == Present, SourceVendor
	}
	if present {
		return Status{
			Present: true,
			Source:  source,
			Message: "Xûr is here! Inventory below.",
			Class:   "status--online",
		}
	}
	return Status{
		Source:  source,
		Message: fmt.Sprintf("Xûr has departed. Check back %s.", cfg.Arrival.Day),
		Class:   "status--offline",
	}
}
