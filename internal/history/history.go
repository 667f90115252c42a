// Package history keeps a local SQLite record of CLI analyses and the follow-up
// conversation about each of them.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jonathan/career-assistant/internal/types"
)

// ErrNoAnalyses is returned by Latest when nothing has been recorded yet.
var ErrNoAnalyses = errors.New("no analyses recorded")

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	input      TEXT NOT NULL,
	skills     TEXT NOT NULL,
	top_title  TEXT NOT NULL DEFAULT '',
	bundle     TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS chat_turns (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	analysis_id INTEGER NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
	role        TEXT NOT NULL,
	content     TEXT NOT NULL,
	at          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_turns_analysis ON chat_turns(analysis_id);
`

// Entry is a listing row for a recorded analysis.
type Entry struct {
	ID        int64     `json:"id"`
	Input     string    `json:"input"`
	TopTitle  string    `json:"top_title"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a SQLite-backed history of analyses.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path and ensures its tables exist.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history tables: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveAnalysis records a completed bundle and returns its history ID.
func (s *Store) SaveAnalysis(ctx context.Context, bundle *types.AnalysisBundle) (int64, error) {
	data, err := json.Marshal(bundle)
	if err != nil {
		return 0, fmt.Errorf("encoding bundle: %w", err)
	}
	created := bundle.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO analyses (input, skills, top_title, bundle, created_at) VALUES (?, ?, ?, ?, ?)",
		bundle.Input, bundle.Skills, bundle.SkillPlanTarget, string(data), created.Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("saving analysis: %w", err)
	}
	return res.LastInsertId()
}

// Analysis loads a recorded bundle by ID.
func (s *Store) Analysis(ctx context.Context, id int64) (*types.AnalysisBundle, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT bundle FROM analyses WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading analysis %d: %w", id, err)
	}
	return decodeBundle(data)
}

// Latest returns the most recently recorded analysis and its ID.
func (s *Store) Latest(ctx context.Context) (int64, *types.AnalysisBundle, error) {
	var (
		id   int64
		data string
	)
	err := s.db.QueryRowContext(ctx, "SELECT id, bundle FROM analyses ORDER BY id DESC LIMIT 1").Scan(&id, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil, ErrNoAnalyses
	}
	if err != nil {
		return 0, nil, fmt.Errorf("loading latest analysis: %w", err)
	}
	bundle, err := decodeBundle(data)
	return id, bundle, err
}

// List returns up to limit entries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, input, top_title, created_at FROM analyses ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			created string
		)
		if err := rows.Scan(&e.ID, &e.Input, &e.TopTitle, &created); err != nil {
			return nil, fmt.Errorf("scanning analysis: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AppendTurns records chat turns for an analysis in one transaction.
func (s *Store) AppendTurns(ctx context.Context, analysisID int64, turns ...types.ChatTurn) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range turns {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO chat_turns (analysis_id, role, content, at) VALUES (?, ?, ?, ?)",
			analysisID, t.Role, t.Content, t.At.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("saving chat turn: %w", err)
		}
	}
	return tx.Commit()
}

// Transcript returns the recorded conversation for an analysis, oldest first.
func (s *Store) Transcript(ctx context.Context, analysisID int64) (types.Transcript, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT role, content, at FROM chat_turns WHERE analysis_id = ? ORDER BY id", analysisID)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("loading transcript: %w", err)
	}
	defer rows.Close()

	var turns []types.ChatTurn
	for rows.Next() {
		var (
			t  types.ChatTurn
			at string
		)
		if err := rows.Scan(&t.Role, &t.Content, &at); err != nil {
			return types.Transcript{}, fmt.Errorf("scanning chat turn: %w", err)
		}
		t.At, _ = time.Parse(time.RFC3339Nano, at)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return types.Transcript{}, err
	}
	return types.NewTranscript(turns), nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func decodeBundle(data string) (*types.AnalysisBundle, error) {
	var b types.AnalysisBundle
	if err := json.Unmarshal([]byte(data), &b); err != nil {
		return nil, fmt.Errorf("decoding bundle: %w", err)
	}
	return &b, nil
}
