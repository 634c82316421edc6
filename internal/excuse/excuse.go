package excuse

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"whereisxur/internal/store/sqlitestore"
)

var ErrNoExcuses = errors.New("no excuses configured")

const (
	cycleCursorKey   = "excuse:cycle"
	currentCursorKey = "excuse:current"
)

// Store is the persistence the picker needs; *sqlitestore.DB satisfies it.
type Store interface {
	LoadCursor(ctx context.Context, key string) (string, error)
	SaveCursor(ctx context.Context, key, value string) error
	UsedExcuses(ctx context.Context) (map[string]bool, error)
	MarkExcuseUsed(ctx context.Context, excuse, cycle string, at time.Time) error
	ResetExcuses(ctx context.Context) error
}

// Picker hands out one excuse per cycle without repeats until the list runs out.
type Picker struct {
	mu      sync.Mutex
	store   Store
	excuses []string
	pick    func(n int) int
	now     func() time.Time
}

func NewPicker(store Store, excuses []string) *Picker {
	return &Picker{
		store:   store,
		excuses: append([]string(nil), excuses...),
		pick:    rand.Intn,
		now:     time.Now,
	}
}

// WithPick replaces the random index source, for tests.
func (p *Picker) WithPick(pick func(n int) int) *Picker {
	p.pick = pick
	return p
}

// Current returns the excuse for cycle, assigning a fresh one on a new cycle.
func (p *Picker) Current(ctx context.Context, cycle string) (string, error) {
	if len(p.excuses) == 0 {
		return "", ErrNoExcuses
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	lastCycle, err := p.cursor(ctx, cycleCursorKey)
	if err != nil {
		return "", err
	}
	current, err := p.cursor(ctx, currentCursorKey)
	if err != nil {
		return "", err
	}
	if lastCycle == cycle && current != "" && p.known(current) {
		return current, nil
	}

	used, err := p.store.UsedExcuses(ctx)
	if err != nil {
		return "", err
	}
	available := make([]string, 0, len(p.excuses))
	for _, e := range p.excuses {
		if !used[e] {
			available = append(available, e)
		}
	}
	if len(available) == 0 {
		if err := p.store.ResetExcuses(ctx); err != nil {
			return "", err
		}
		available = p.excuses
	}

	choice := available[p.pick(len(available))]
	if err := p.store.MarkExcuseUsed(ctx, choice, cycle, p.now()); err != nil {
		return "", err
	}
	if err := p.store.SaveCursor(ctx, currentCursorKey, choice); err != nil {
		return "", err
	}
	if err := p.store.SaveCursor(ctx, cycleCursorKey, cycle); err != nil {
		return "", err
	}
	return choice, nil
}

func (p *Picker) cursor(ctx context.Context, key string) (string, error) {
	v, err := p.store.LoadCursor(ctx, key)
	if errors.Is(err, sqlitestore.ErrNotFound) {
		return "", nil
	}
	return v, err
}

func (p *Picker) known(e string) bool {
	for _, x := range p.excuses {
		if x == e {
			return true
		}
	}
	return false
}
