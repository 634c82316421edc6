package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

// DB wraps the SQLite file holding cycle state: cursors, used excuses and
// observed transitions.
type DB struct{ sql *sql.DB }

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one connection keeps ":memory:" a single database and serialises writers
	d.SetMaxOpenConns(1)
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = d.Close()
		return nil, err
	}
	db := &DB{sql: d}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS cursors (
	  key TEXT PRIMARY KEY,
	  value TEXT NOT NULL,
	  updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS used_excuses (
	  excuse TEXT PRIMARY KEY,
	  cycle TEXT NOT NULL,
	  used_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS transitions (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  ts INTEGER NOT NULL,
	  kind TEXT NOT NULL,
	  cycle TEXT NOT NULL,
	  payload TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_transitions_ts ON transitions(ts);
	`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SaveCursor upserts a named value.
func (d *DB) SaveCursor(ctx context.Context, key, value string) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO cursors(key, value, updated_at) VALUES(?,?,?)
	ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, time.Now().UTC().Unix())
	return err
}

// LoadCursor returns ErrNotFound for a key never saved.
func (d *DB) LoadCursor(ctx context.Context, key string) (string, error) {
	var v string
	err := d.sql.QueryRowContext(ctx, `SELECT value FROM cursors WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, err
}

// MarkExcuseUsed records that excuse was handed out for cycle.
func (d *DB) MarkExcuseUsed(ctx context.Context, excuse, cycle string, at time.Time) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO used_excuses(excuse, cycle, used_at) VALUES(?,?,?)
	ON CONFLICT(excuse) DO UPDATE SET cycle=excluded.cycle, used_at=excluded.used_at`,
		excuse, cycle, at.UTC().Unix())
	return err
}

// UsedExcuses returns the set of excuses used since the last reset.
func (d *DB) UsedExcuses(ctx context.Context) (map[string]bool, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT excuse FROM used_excuses`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		out[e] = true
	}
	return out, rows.Err()
}

func (d *DB) ResetExcuses(ctx context.Context) error {
	_, err := d.sql.ExecContext(ctx, `DELETE FROM used_excuses`)
	return err
}

// Transition is a stored schedule boundary crossing.
type Transition struct {
	TS      time.Time
	Kind    string
	Cycle   string
	Payload string
}

// PutTransition stores a crossing with an optional JSON payload.
func (d *DB) PutTransition(ctx context.Context, ts time.Time, kind, cycle string, payload any) error {
	var p *string
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		s := string(b)
		p = &s
	}
	_, err := d.sql.ExecContext(ctx, `INSERT INTO transitions(ts, kind, cycle, payload) VALUES(?,?,?,?)`,
		ts.UTC().Unix(), kind, cycle, p)
	return err
}

// LoadTransitionsRange returns transitions in [start, end), optionally of one kind.
func (d *DB) LoadTransitionsRange(ctx context.Context, start, end time.Time, kind string) ([]Transition, error) {
	var rows *sql.Rows
	var err error
	if kind == "" {
		rows, err = d.sql.QueryContext(ctx, `SELECT ts, kind, cycle, COALESCE(payload, '') FROM transitions WHERE ts>=? AND ts<? ORDER BY ts, id`, start.Unix(), end.Unix())
	} else {
		rows, err = d.sql.QueryContext(ctx, `SELECT ts, kind, cycle, COALESCE(payload, '') FROM transitions WHERE ts>=? AND ts<? AND kind=? ORDER BY ts, id`, start.Unix(), end.Unix(), kind)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Transition
	for rows.Next() {
		var ts int64
		var t Transition
		if err := rows.Scan(&ts, &t.Kind, &t.Cycle, &t.Payload); err != nil {
			return nil, err
		}
		t.TS = time.Unix(ts, 0).UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

// LastTransition returns the most recent crossing, or ErrNotFound.
func (d *DB) LastTransition(ctx context.Context) (Transition, error) {
	var t Transition
	var ts int64
	err := d.sql.QueryRowContext(ctx, `SELECT ts, kind, cycle, COALESCE(payload, '') FROM transitions ORDER BY ts DESC, id DESC LIMIT 1`).
		Scan(&ts, &t.Kind, &t.Cycle, &t.Payload)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}
	t.TS = time.Unix(ts, 0).UTC()
	return t, nil
}
