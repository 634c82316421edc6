package sqlitestore

import (
	"context"
	"testing"
	"time"
)

func TestCursors(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil { t.Fatal(err) }
	defer db.Close()
	ctx := context.Background()

	if _, err := db.LoadCursor(ctx, "excuse:cycle"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := db.SaveCursor(ctx, "excuse:cycle", "2024-01-05"); err != nil { t.Fatal(err) }
	if err := db.SaveCursor(ctx, "excuse:cycle", "2024-01-12"); err != nil { t.Fatal(err) }
	v, err := db.LoadCursor(ctx, "excuse:cycle")
	if err != nil || v != "2024-01-12" { t.Fatalf("cursor mismatch: %v %s", err, v) }
}

func TestUsedExcuses(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil { t.Fatal(err) }
	defer db.Close()
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	_ = db.MarkExcuseUsed(ctx, "a", "2024-01-05", now)
	_ = db.MarkExcuseUsed(ctx, "b", "2024-01-12", now)
	_ = db.MarkExcuseUsed(ctx, "a", "2024-01-19", now)
	used, err := db.UsedExcuses(ctx)
	if err != nil { t.Fatal(err) }
	if len(used) != 2 || !used["a"] || !used["b"] { t.Fatalf("unexpected used set %v", used) }

	if err := db.ResetExcuses(ctx); err != nil { t.Fatal(err) }
	used, _ = db.UsedExcuses(ctx)
	if len(used) != 0 { t.Fatalf("expected empty set, got %v", used) }
}

func TestTransitions(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil { t.Fatal(err) }
	defer db.Close()
	ctx := context.Background()
	arrive := time.Date(2024, 1, 5, 17, 0, 0, 0, time.UTC)
	depart := time.Date(2024, 1, 9, 17, 0, 0, 0, time.UTC)

	if _, err := db.LastTransition(ctx); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := db.PutTransition(ctx, arrive, "arrival", "2024-01-05", map[string]any{"next": "x"}); err != nil { t.Fatal(err) }
	if err := db.PutTransition(ctx, depart, "departure", "2024-01-05", nil); err != nil { t.Fatal(err) }
	if err := db.PutTransition(ctx, depart, "reset", "2024-01-05", nil); err != nil { t.Fatal(err) }

	all, err := db.LoadTransitionsRange(ctx, arrive, depart.Add(time.Second), "")
	if err != nil { t.Fatal(err) }
	if len(all) != 3 { t.Fatalf("expected 3 transitions, got %d", len(all)) }
	if all[0].Kind != "arrival" || all[0].Payload != `{"next":"x"}` || !all[0].TS.Equal(arrive) {
		t.Fatalf("unexpected first transition %+v", all[0])
	}
	deps, _ := db.LoadTransitionsRange(ctx, arrive, depart.Add(time.Second), "departure")
	if len(deps) != 1 || deps[0].Payload != "" { t.Fatalf("unexpected departures %+v", deps) }

	last, err := db.LastTransition(ctx)
	if err != nil || last.Kind != "reset" { t.Fatalf("unexpected last %+v %v", last, err) }
}
