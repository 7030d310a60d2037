// Package record persists a passive copy of every outbound replication
// frame to SQLite for later offline inspection, entirely independent of
// the synchronization contract itself.
package record

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed migrations/0001_frames.sql
var schemaSQL string

// Kind labels what a recorded frame was: a full snapshot, a delta
// snapshot, an input frame, an event batch, or a custom-property batch.
type Kind string

const (
	KindFullSnapshot  Kind = "full_snapshot"
	KindDeltaSnapshot Kind = "delta_snapshot"
	KindInput         Kind = "input"
	KindEventBatch    Kind = "event_batch"
	KindCustomPropBatch Kind = "custom_prop_batch"
)

// Recorder is a passive SQLite sink for outbound wire frames.
type Recorder struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at dsn in WAL mode
// and applies the frame-table migration.
func Open(dsn string) (*Recorder, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("record: open: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("record: set wal mode: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("record: migrate: %w", err)
	}
	return &Recorder{db: db}, nil
}

// Record inserts one frame row. It never returns an error from a full
// disk or closed database into the hot replication path's caller without
// the caller explicitly choosing to check it — a recorder write failing is
// never allowed to affect what gets sent to a peer.
func (r *Recorder) Record(tickSignature uint32, peerID string, kind Kind, payload []byte, recordedAtUnix int64) error {
	_, err := r.db.Exec(
		`INSERT INTO frames (tick_signature, peer_id, kind, payload, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		tickSignature, peerID, string(kind), payload, recordedAtUnix,
	)
	return err
}

// Frame is one row read back from the recording.
type Frame struct {
	ID            int64
	TickSignature uint32
	PeerID        string
	Kind          Kind
	Payload       []byte
	RecordedAt    int64
}

// ForPeer returns every recorded frame for peerID, oldest first.
func (r *Recorder) ForPeer(peerID string) ([]Frame, error) {
	rows, err := r.db.Query(
		`SELECT id, tick_signature, peer_id, kind, payload, recorded_at FROM frames WHERE peer_id = ? ORDER BY id ASC`,
		peerID,
	)
	if err != nil {
		return nil, fmt.Errorf("record: query: %w", err)
	}
	defer rows.Close()

	var out []Frame
	for rows.Next() {
		var f Frame
		var kind string
		if err := rows.Scan(&f.ID, &f.TickSignature, &f.PeerID, &kind, &f.Payload, &f.RecordedAt); err != nil {
			return nil, fmt.Errorf("record: scan: %w", err)
		}
		f.Kind = Kind(kind)
		out = append(out, f)
	}
	return out, rows.Err()
}

// Close closes the underlying database handle.
func (r *Recorder) Close() error {
	return r.db.Close()
}
