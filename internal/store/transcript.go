// Package store persists chat history and trial transcripts in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"tribunal/internal/logging"
)

// TranscriptStore holds the durable record of everything the user saw:
// assistant chat messages and the transcript of every trial run.
type TranscriptStore struct {
	db   *sql.DB
	path string
}

// ChatEntry is one persisted chat message.
type ChatEntry struct {
	ID        int64
	Role      string
	Content   string
	CreatedAt time.Time
}

// TrialEntry is one persisted transcript event of a trial run.
type TrialEntry struct {
	ID        int64
	CaseID    string
	Kind      string
	Turn      int
	Role      string
	Phase     string
	Text      string
	CreatedAt time.Time
}

// Open initializes the SQLite database at the given path.
func Open(path string) (*TranscriptStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal_mode: %w", err)
	}

	s := &TranscriptStore{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.Store("transcript store opened: %s", path)
	return s, nil
}

func (s *TranscriptStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chat_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS trial_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		case_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		turn INTEGER NOT NULL,
		role TEXT,
		phase TEXT,
		text TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_trial_events_case ON trial_events(case_id, id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *TranscriptStore) Close() error {
	return s.db.Close()
}

// AppendChat records one chat message.
func (s *TranscriptStore) AppendChat(ctx context.Context, role, content string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO chat_messages (role, content) VALUES (?, ?)", role, content)
	if err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}
	return nil
}

// RecentChat returns up to limit chat messages, oldest first.
func (s *TranscriptStore) RecentChat(ctx context.Context, limit int) ([]ChatEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, created_at FROM (
			SELECT id, role, content, created_at FROM chat_messages ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	var entries []ChatEntry
	for rows.Next() {
		var e ChatEntry
		if err := rows.Scan(&e.ID, &e.Role, &e.Content, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AppendTrialEvent records one transcript event for a case.
func (s *TranscriptStore) AppendTrialEvent(ctx context.Context, caseID, kind string, turn int, role, phase, text string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO trial_events (case_id, kind, turn, role, phase, text) VALUES (?, ?, ?, ?, ?, ?)",
		caseID, kind, turn, role, phase, text)
	if err != nil {
		return fmt.Errorf("failed to append trial event: %w", err)
	}
	return nil
}

// TrialTranscript returns all transcript events for a case in emission
// order.
func (s *TranscriptStore) TrialTranscript(ctx context.Context, caseID string) ([]TrialEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, case_id, kind, turn, role, phase, text, created_at
		FROM trial_events WHERE case_id = ? ORDER BY id ASC`, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trial events: %w", err)
	}
	defer rows.Close()

	var entries []TrialEntry
	for rows.Next() {
		var e TrialEntry
		if err := rows.Scan(&e.ID, &e.CaseID, &e.Kind, &e.Turn, &e.Role, &e.Phase, &e.Text, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trial event: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
