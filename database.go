package main

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection used for match-event recording. Gameplay
// never reads it back; it exists purely for after-the-fact analysis.
type DB struct {
	conn *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS match_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	type       TEXT NOT NULL,
	entity_id  TEXT NOT NULL DEFAULT '',
	wave       INTEGER NOT NULL DEFAULT 0,
	payload    BLOB,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_match_events_type ON match_events(type);
`

// OpenDB opens (or creates) the event database.
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// SQLite handles one writer at a time; the recorder is the only writer.
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// InsertEvents writes a batch of events in one transaction.
func (db *DB) InsertEvents(events []MatchEvent) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(
		`INSERT INTO match_events (type, entity_id, wave, payload, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, ev := range events {
		if _, err := stmt.Exec(ev.Type, ev.EntityID, ev.Wave, ev.Payload, ev.At); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// CountEvents returns how many events of the given type were recorded.
func (db *DB) CountEvents(evtType string) (int, error) {
	var n int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM match_events WHERE type = ?`, evtType).Scan(&n)
	return n, err
}

// EventsSince returns events recorded at or after the given time, oldest first.
func (db *DB) EventsSince(t time.Time) ([]MatchEvent, error) {
	rows, err := db.conn.Query(
		`SELECT type, entity_id, wave, payload, created_at
		 FROM match_events WHERE created_at >= ? ORDER BY id`, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MatchEvent
	for rows.Next() {
		var ev MatchEvent
		if err := rows.Scan(&ev.Type, &ev.EntityID, &ev.Wave, &ev.Payload, &ev.At); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
