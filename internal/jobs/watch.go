package jobs

import (
	"context"
	"sort"
	"time"

	"whereisxur/internal/logging"
	"whereisxur/internal/metrics"
	"whereisxur/internal/schedule"
)

const (
	KindArrival   = "arrival"
	KindDeparture = "departure"
	KindReset     = "reset"
)

// TransitionStore persists boundary crossings; *sqlitestore.DB satisfies it.
type TransitionStore interface {
	PutTransition(ctx context.Context, ts time.Time, kind, cycle string, payload any) error
}

// Transition is one boundary crossed between two ticks.
type Transition struct {
	Kind  string
	At    time.Time
	Cycle string
}

// Watcher re-evaluates the calculator and reports boundary crossings.
// It keeps the previous evaluation and is meant for a single goroutine.
type Watcher struct {
	calc   *schedule.Calculator
	store  TransitionStore
	now    func() time.Time
	prev   *schedule.Schedule
	onTick func(schedule.Schedule, []Transition)
}

// NewWatcher builds a watcher; store may be nil to skip persistence.
func NewWatcher(calc *schedule.Calculator, store TransitionStore) *Watcher {
	return &Watcher{calc: calc, store: store, now: time.Now}
}

func (w *Watcher) WithClock(now func() time.Time) *Watcher {
	w.now = now
	return w
}

// OnTick registers a callback run after every evaluation.
func (w *Watcher) OnTick(f func(schedule.Schedule, []Transition)) *Watcher {
	w.onTick = f
	return w
}

// RunOnce evaluates now, records transitions since the last tick, and returns them.
func (w *Watcher) RunOnce(ctx context.Context) ([]Transition, error) {
	start := time.Now()
	defer metrics.ObserveWatchDuration(start)

	s := w.calc.Evaluate(w.now())
	metrics.ObserveSchedule(s)

	var crossed []Transition
	if w.prev == nil {
		logging.Info("watch_start", map[string]any{"active": s.IsActive, "cycle": s.CycleKey(), "next_arrival": s.NextArrival, "next_departure": s.NextDeparture})
	} else {
		crossed = diff(*w.prev, s)
	}
	w.prev = &s

	var firstErr error
	for _, t := range crossed {
		metrics.IncTransition(t.Kind)
		logging.Info("watch_transition", map[string]any{"kind": t.Kind, "at": t.At, "cycle": t.Cycle})
		if w.store == nil {
			continue
		}
		payload := map[string]any{"next_arrival": s.NextArrival, "next_departure": s.NextDeparture, "next_reset": s.NextReset}
		if err := w.store.PutTransition(ctx, t.At, t.Kind, t.Cycle, payload); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if w.onTick != nil {
		w.onTick(s, crossed)
	}
	return crossed, firstErr
}

// RunLoop runs RunOnce on a ticker until ctx is cancelled.
func (w *Watcher) RunLoop(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	// run immediately
	if _, err := w.RunOnce(ctx); err != nil {
		logging.Error("watch_once_error", map[string]any{"error": err.Error()})
	}
	for {
		select {
		case <-ctx.Done():
			logging.Info("watch_loop_stop", nil)
			return ctx.Err()
		case <-t.C:
			if _, err := w.RunOnce(ctx); err != nil {
				logging.Error("watch_once_error", map[string]any{"error": err.Error()})
			}
		}
	}
}

// diff lists the crossings between two evaluations in time order. A gap of
// more than one cycle only reports the edges of the windows it can see.
func diff(prev, cur schedule.Schedule) []Transition {
	var out []Transition
	cycleChanged := cur.CycleKey() != prev.CycleKey()
	if prev.IsActive && (cycleChanged || !cur.IsActive) {
		out = append(out, Transition{Kind: KindDeparture, At: prev.CurrentWindowEnd, Cycle: prev.CycleKey()})
	}
	if cycleChanged {
		out = append(out, Transition{Kind: KindArrival, At: cur.CurrentWindowStart, Cycle: cur.CycleKey()})
		if !cur.IsActive {
			out = append(out, Transition{Kind: KindDeparture, At: cur.CurrentWindowEnd, Cycle: cur.CycleKey()})
		}
	}
	if cur.NextReset.After(prev.NextReset) {
		out = append(out, Transition{Kind: KindReset, At: prev.NextReset, Cycle: cur.CycleKey()})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}
