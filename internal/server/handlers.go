package server

import (
	"errors"
	"net/http"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"

	"whereisxur/internal/jobs"
	"whereisxur/internal/logging"
	"whereisxur/internal/metrics"
	"whereisxur/internal/schedule"
	"whereisxur/internal/status"
	"whereisxur/internal/store/sqlitestore"
)

type scheduleResponse struct {
	schedule.Schedule
	SpanDays int `json:"spanDays"`
}

type countdownResponse struct {
	schedule.Countdown
	Status status.Status `json:"status"`
	Cycle  string        `json:"cycle"`
	Excuse string        `json:"excuse,omitempty"`
}

type liveResponse struct {
	Live      bool       `json:"live"`
	NextStart *time.Time `json:"nextStart,omitempty"`
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if v := r.URL.Query().Get("at"); v != "" {
		at, err := time.Parse(time.RFC3339, v)
		if err != nil {
			badRequest(w, "at must be an RFC3339 timestamp")
			return
		}
		success(w, s.scheduleAt(at))
		return
	}

	// callers within one TTL-aligned slot share the body evaluated first in it
	now := s.now().UTC().Truncate(time.Second)
	key := now.Truncate(s.cacheTTL).Unix()
	if body, ok := s.bodies.Get(key); ok {
		metrics.IncCache(true)
		writeBody(w, http.StatusOK, body)
		return
	}
	metrics.IncCache(false)
	resp := s.scheduleAt(now)
	metrics.ObserveSchedule(resp.Schedule)
	body, err := encode(Response{Success: true, Data: resp})
	if err != nil {
		fail(w, http.StatusInternalServerError, "ENCODING_ERROR", "Failed to encode response")
		return
	}
	s.bodies.Set(key, body)
	writeBody(w, http.StatusOK, body)
}

// scheduleAt leaves the live gauges alone since at may be any instant.
func (s *Server) scheduleAt(at time.Time) scheduleResponse {
	sched := s.deps.Calc.Evaluate(at)
	return scheduleResponse{Schedule: sched, SpanDays: s.deps.Calc.SpanDays()}
}

func (s *Server) handleCountdown(w http.ResponseWriter, r *http.Request) {
	sched := s.deps.Calc.Evaluate(s.now())
	out := countdownResponse{
		Countdown: s.deps.Calc.CountdownFor(sched),
		Status:    status.Resolve(s.deps.Calc.Config(), sched, status.Unknown),
		Cycle:     sched.CycleKey(),
	}
	if !sched.IsActive && s.deps.Excuses != nil {
		e, err := s.deps.Excuses.Current(r.Context(), sched.CycleKey())
		if err != nil {
			logging.Warn("excuse_error", map[string]any{"error": err.Error(), "cycle": sched.CycleKey()})
		} else {
			out.Excuse = e
		}
	}
	success(w, out)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	obs, err := status.ParseObservation(r.URL.Query().Get("vendor"))
	if err != nil {
		badRequest(w, "vendor must be present or absent")
		return
	}
	sched := s.deps.Calc.Evaluate(s.now())
	success(w, status.Resolve(s.deps.Calc.Config(), sched, obs))
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	if s.deps.Live == nil {
		fail(w, http.StatusNotFound, "NOT_CONFIGURED", "No live schedule configured")
		return
	}
	now := s.now()
	out := liveResponse{Live: s.deps.Live.IsLive(now)}
	if next, ok := s.deps.Live.NextStart(now); ok {
		out.NextStart = &next
	}
	success(w, out)
}

type transitionView struct {
	At    time.Time `json:"at"`
	Kind  string    `json:"kind"`
	Cycle string    `json:"cycle"`
}

type transitionsResponse struct {
	Since       time.Time        `json:"since"`
	Transitions []transitionView `json:"transitions"`
	Last        *transitionView  `json:"last,omitempty"`
}

func viewOf(t sqlitestore.Transition) transitionView {
	return transitionView{At: t.TS, Kind: t.Kind, Cycle: t.Cycle}
}

// handleTransitions lists recorded crossings, default the last 7 days.
func (s *Server) handleTransitions(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		fail(w, http.StatusNotFound, "NOT_CONFIGURED", "No transition history configured")
		return
	}
	window := 7 * 24 * time.Hour
	if v := r.URL.Query().Get("since"); v != "" {
		d, err := str2duration.ParseDuration(v)
		if err != nil || d <= 0 {
			badRequest(w, "since must be a positive duration such as 7d or 36h")
			return
		}
		window = d
	}
	kind := r.URL.Query().Get("kind")
	switch kind {
	case "", jobs.KindArrival, jobs.KindDeparture, jobs.KindReset:
	default:
		badRequest(w, "kind must be arrival, departure or reset")
		return
	}

	now := s.now().UTC()
	out := transitionsResponse{Since: now.Add(-window), Transitions: []transitionView{}}
	// end is exclusive and stored stamps are whole seconds
	rows, err := s.deps.History.LoadTransitionsRange(r.Context(), out.Since, now.Add(time.Second), kind)
	if err != nil {
		logging.Error("transitions_error", map[string]any{"error": err.Error()})
		fail(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to read transitions")
		return
	}
	for _, t := range rows {
		out.Transitions = append(out.Transitions, viewOf(t))
	}
	last, err := s.deps.History.LastTransition(r.Context())
	switch {
	case err == nil:
		v := viewOf(last)
		out.Last = &v
	case !errors.Is(err, sqlitestore.ErrNotFound):
		logging.Error("transitions_error", map[string]any{"error": err.Error()})
		fail(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to read transitions")
		return
	}
	success(w, out)
}
