// Package persistence keeps an in-memory SQLite journal of a receiver session:
// the signals it was sent, the phase changes they caused, and sampled frames.
// The journal lives for the process only.
package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/fieldwave/internal/field"
	"github.com/talgya/fieldwave/internal/receiver"
)

// DB wraps the journal connection.
type DB struct {
	conn *sqlx.DB
}

// FrameRow is one sampled frame.
type FrameRow struct {
	Frame      uint64  `db:"frame" json:"frame"`
	Phase      string  `db:"phase" json:"phase"`
	Band       string  `db:"band" json:"band"`
	Energy     float64 `db:"energy" json:"energy"`
	Plasticity float64 `db:"plasticity" json:"plasticity"`
	Entropy    float64 `db:"entropy" json:"entropy"`
	Value      float64 `db:"value" json:"value"`
}

// Summary aggregates one session.
type Summary struct {
	Session     string         `json:"session"`
	Name        string         `json:"name"`
	Frames      int64          `json:"frames"`
	Signals     map[string]int `json:"signals"`
	Transitions int64          `json:"transitions"`
	MeanEntropy float64        `json:"mean_entropy"`
	MeanEnergy  float64        `json:"mean_energy"`
}

// Open creates an empty in-memory journal.
func Open() (*DB, error) {
	conn, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Each connection to :memory: is its own database; keep exactly one.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection and discards the journal.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		seed INTEGER NOT NULL,
		started_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS signals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		frame INTEGER NOT NULL,
		type TEXT NOT NULL,
		phase_before TEXT NOT NULL,
		phase_after TEXT NOT NULL,
		energy REAL NOT NULL,
		plasticity REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS frames (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		frame INTEGER NOT NULL,
		phase TEXT NOT NULL,
		band TEXT NOT NULL,
		energy REAL NOT NULL,
		plasticity REAL NOT NULL,
		entropy REAL NOT NULL,
		value REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_signals_session ON signals(session_id);
	CREATE INDEX IF NOT EXISTS idx_frames_session ON frames(session_id, frame);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// StartSession registers a new session and returns its ID.
func (db *DB) StartSession(name string, seed int64) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		"INSERT INTO sessions (id, name, seed, started_at) VALUES (?, ?, ?, ?)",
		id, name, seed, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	slog.Debug("journal session started", "session", id, "name", name)
	return id, nil
}

// RecordSignal stores a signal with the phase on either side of it and the
// persona after it.
func (db *DB) RecordSignal(session string, frame uint64, sig field.Signal, before, after field.FieldState) error {
	_, err := db.conn.Exec(`INSERT INTO signals
		(session_id, frame, type, phase_before, phase_after, energy, plasticity)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session, frame, string(sig.Type),
		string(before.Persona.Phase), string(after.Persona.Phase),
		after.Persona.Energy, after.Persona.Plasticity,
	)
	if err != nil {
		return fmt.Errorf("insert signal at frame %d: %w", frame, err)
	}
	return nil
}

// NewFrameRow flattens a receiver snapshot for the journal.
func NewFrameRow(frame uint64, snap receiver.Snapshot) FrameRow {
	row := FrameRow{
		Frame:      frame,
		Phase:      string(snap.Field.Persona.Phase),
		Band:       string(snap.Mode.Band),
		Energy:     snap.Field.Persona.Energy,
		Plasticity: snap.Field.Persona.Plasticity,
	}
	if e := snap.Field.Meta.LastEntropy; e != nil {
		row.Entropy = *e
	}
	if snap.Wave != nil {
		row.Value = snap.Wave.Value
	}
	return row
}

// RecordFrame stores one sampled frame.
func (db *DB) RecordFrame(session string, row FrameRow) error {
	_, err := db.conn.Exec(`INSERT INTO frames
		(session_id, frame, phase, band, energy, plasticity, entropy, value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session, row.Frame, row.Phase, row.Band,
		row.Energy, row.Plasticity, row.Entropy, row.Value,
	)
	if err != nil {
		return fmt.Errorf("insert frame %d: %w", row.Frame, err)
	}
	return nil
}

// RecentFrames returns the most recent N sampled frames, newest first.
func (db *DB) RecentFrames(session string, limit int) ([]FrameRow, error) {
	var rows []FrameRow
	err := db.conn.Select(&rows,
		`SELECT frame, phase, band, energy, plasticity, entropy, value
		FROM frames WHERE session_id = ? ORDER BY frame DESC LIMIT ?`,
		session, limit,
	)
	return rows, err
}

// Summary aggregates the journal for one session.
func (db *DB) Summary(session string) (Summary, error) {
	sum := Summary{Session: session, Signals: make(map[string]int)}

	if err := db.conn.Get(&sum.Name, "SELECT name FROM sessions WHERE id = ?", session); err != nil {
		return sum, fmt.Errorf("load session %s: %w", session, err)
	}

	var agg struct {
		Frames      int64   `db:"frames"`
		MeanEntropy float64 `db:"mean_entropy"`
		MeanEnergy  float64 `db:"mean_energy"`
	}
	err := db.conn.Get(&agg, `SELECT COUNT(*) AS frames,
		COALESCE(AVG(entropy), 0) AS mean_entropy,
		COALESCE(AVG(energy), 0) AS mean_energy
		FROM frames WHERE session_id = ?`, session)
	if err != nil {
		return sum, fmt.Errorf("aggregate frames: %w", err)
	}
	sum.Frames = agg.Frames
	sum.MeanEntropy = agg.MeanEntropy
	sum.MeanEnergy = agg.MeanEnergy

	var counts []struct {
		Type  string `db:"type"`
		Count int    `db:"n"`
	}
	if err := db.conn.Select(&counts,
		"SELECT type, COUNT(*) AS n FROM signals WHERE session_id = ? GROUP BY type", session); err != nil {
		return sum, fmt.Errorf("count signals: %w", err)
	}
	for _, c := range counts {
		sum.Signals[c.Type] = c.Count
	}

	if err := db.conn.Get(&sum.Transitions,
		"SELECT COUNT(*) FROM signals WHERE session_id = ? AND phase_before != phase_after", session); err != nil {
		return sum, fmt.Errorf("count transitions: %w", err)
	}

	return sum, nil
}
