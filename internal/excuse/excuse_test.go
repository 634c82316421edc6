package excuse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whereisxur/internal/store/sqlitestore"
)

func openDB(t *testing.T) *sqlitestore.DB {
	t.Helper()
	db, err := sqlitestore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func first(int) int { return 0 }

func TestCurrentIsStableWithinCycle(t *testing.T) {
	db := openDB(t)
	p := NewPicker(db, []string{"a", "b", "c"}).WithPick(first)
	ctx := context.Background()

	e1, err := p.Current(ctx, "2024-01-05")
	require.NoError(t, err)
	e2, err := p.Current(ctx, "2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, "a", e1)
	assert.Equal(t, e1, e2)
}

func TestCurrentRotatesWithoutRepeatsThenResets(t *testing.T) {
	db := openDB(t)
	p := NewPicker(db, []string{"a", "b", "c"}).WithPick(first)
	ctx := context.Background()

	var got []string
	for _, cycle := range []string{"2024-01-05", "2024-01-12", "2024-01-19", "2024-01-26"} {
		e, err := p.Current(ctx, cycle)
		require.NoError(t, err)
		got = append(got, e)
	}
	assert.Equal(t, []string{"a", "b", "c", "a"}, got)

	used, err := db.UsedExcuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a": true}, used, "exhaustion clears the used set")
}

func TestCurrentSurvivesNewPicker(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	e1, err := NewPicker(db, []string{"x", "y"}).WithPick(func(n int) int { return n - 1 }).Current(ctx, "2024-02-02")
	require.NoError(t, err)
	e2, err := NewPicker(db, []string{"x", "y"}).WithPick(first).Current(ctx, "2024-02-02")
	require.NoError(t, err)
	assert.Equal(t, "y", e1)
	assert.Equal(t, e1, e2, "state lives in the store")
}

func TestCurrentDropsRemovedExcuse(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	_, err := NewPicker(db, []string{"old"}).Current(ctx, "2024-02-02")
	require.NoError(t, err)

	e, err := NewPicker(db, []string{"new"}).Current(ctx, "2024-02-02")
	require.NoError(t, err)
	assert.Equal(t, "new", e)
}

func TestCurrentNoExcuses(t *testing.T) {
	_, err := NewPicker(openDB(t), nil).Current(context.Background(), "2024-01-05")
	assert.ErrorIs(t, err, ErrNoExcuses)
}
