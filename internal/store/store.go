// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/keyscope/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for keystroke event data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS keystroke_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			key_code INTEGER NOT NULL,
			event_type TEXT NOT NULL,
			modifiers TEXT,
			application TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_timestamp ON keystroke_events(timestamp);`,
		`CREATE INDEX IF NOT EXISTS idx_events_key_code ON keystroke_events(key_code);`,
		`CREATE INDEX IF NOT EXISTS idx_events_application ON keystroke_events(application);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertEvents stores a batch of events in one transaction.
func (s *Store) InsertEvents(ctx context.Context, events []model.KeystrokeEvent) (err error) {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO keystroke_events (timestamp, key_code, event_type, modifiers, application)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()

	for _, event := range events {
		var modifiers []byte
		if modifiers, err = json.Marshal(event.Modifiers); err != nil {
			return err
		}
		if _, err = stmt.ExecContext(ctx,
			event.Timestamp,
			event.KeyCode,
			event.Kind.String(),
			string(modifiers),
			event.Application,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListEvents returns all events ordered by timestamp ascending.
func (s *Store) ListEvents(ctx context.Context) ([]model.KeystrokeEvent, error) {
	return s.queryEvents(ctx,
		`SELECT timestamp, key_code, event_type, modifiers, application
		 FROM keystroke_events
		 ORDER BY timestamp ASC`)
}

// ListEventsInRange returns events with start <= timestamp <= end, ordered by
// timestamp ascending.
func (s *Store) ListEventsInRange(ctx context.Context, start, end int64) ([]model.KeystrokeEvent, error) {
	return s.queryEvents(ctx,
		`SELECT timestamp, key_code, event_type, modifiers, application
		 FROM keystroke_events
		 WHERE timestamp >= ? AND timestamp <= ?
		 ORDER BY timestamp ASC`, start, end)
}

// ListEventsSince returns events from the last N days.
func (s *Store) ListEventsSince(ctx context.Context, days int) ([]model.KeystrokeEvent, error) {
	now := time.Now().UnixMilli()
	start := now - int64(days)*24*60*60*1000
	return s.ListEventsInRange(ctx, start, now)
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]model.KeystrokeEvent, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var events []model.KeystrokeEvent
	for rows.Next() {
		var event model.KeystrokeEvent
		var kind string
		var modifiers sql.NullString
		if err := rows.Scan(&event.Timestamp, &event.KeyCode, &kind, &modifiers, &event.Application); err != nil {
			return nil, err
		}
		parsed, err := model.ParseEventKind(kind)
		if err != nil {
			return nil, err
		}
		event.Kind = parsed
		if modifiers.Valid && modifiers.String != "" {
			if err := json.Unmarshal([]byte(modifiers.String), &event.Modifiers); err != nil {
				return nil, err
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// TotalCount returns the number of stored events.
func (s *Store) TotalCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM keystroke_events`).Scan(&count)
	return count, err
}

// PressCount returns the number of stored press events.
func (s *Store) PressCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM keystroke_events WHERE event_type = 'press'`).Scan(&count)
	return count, err
}

// DateRange returns the minimum and maximum stored timestamps. ok is false
// when the store is empty.
func (s *Store) DateRange(ctx context.Context) (start, end int64, ok bool, err error) {
	var minTS, maxTS sql.NullInt64
	err = s.db.QueryRowContext(ctx,
		`SELECT MIN(timestamp), MAX(timestamp) FROM keystroke_events`).Scan(&minTS, &maxTS)
	if err != nil {
		return 0, 0, false, err
	}
	if !minTS.Valid || !maxTS.Valid {
		return 0, 0, false, nil
	}
	return minTS.Int64, maxTS.Int64, true, nil
}

// AppCount pairs an application identifier with its press count.
type AppCount struct {
	Application string
	Count       int64
}

// TopApplications returns applications ranked by press count descending.
func (s *Store) TopApplications(ctx context.Context, limit int) ([]AppCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT application, COUNT(*) AS count
		 FROM keystroke_events
		 WHERE event_type = 'press'
		 GROUP BY application
		 ORDER BY count DESC, application ASC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []AppCount
	for rows.Next() {
		var app AppCount
		if err := rows.Scan(&app.Application, &app.Count); err != nil {
			return nil, err
		}
		result = append(result, app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteBefore removes events older than the given timestamp and returns the
// number of rows deleted.
func (s *Store) DeleteBefore(ctx context.Context, beforeTimestamp int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM keystroke_events WHERE timestamp < ?`, beforeTimestamp)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
