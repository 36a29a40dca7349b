// Package feedback persists caller verdicts on past classifications.
// Verdicts drive the engine's accuracy counter and each caller's
// feedback history.
package feedback

import (
	"database/sql"
	"fmt"
	"time"
)

// #region types

// Verdict is one caller's judgement of a logged classification.
type Verdict struct {
	ID        int
	EventID   string
	Caller    string
	Class     int
	Correct   bool
	Note      string
	CreatedAt time.Time
}

// Summary aggregates verdicts into an accuracy figure.
type Summary struct {
	Total   int
	Correct int
}

// #endregion types

// #region store

// Store manages persistent classification verdicts in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates the feedback table if needed and returns a store.
func NewStore(db *sql.DB) (*Store, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS feedback_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id TEXT NOT NULL,
		caller TEXT NOT NULL,
		class INTEGER NOT NULL,
		correct INTEGER NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	)`)
	if err != nil {
		return nil, fmt.Errorf("create feedback table: %w", err)
	}
	return &Store{db: db}, nil
}

// Add stores a verdict. A second verdict for the same event is skipped
// so repeated feedback cannot inflate accuracy.
func (s *Store) Add(eventID, caller string, class int, correct bool, note string) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM feedback_log WHERE event_id = ?", eventID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check duplicate verdict: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	correctInt := 0
	if correct {
		correctInt = 1
	}
	_, err = s.db.Exec(
		"INSERT INTO feedback_log (event_id, caller, class, correct, note, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		eventID, caller, class, correctInt, note, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert verdict: %w", err)
	}
	return true, nil
}

// List returns all stored verdicts in insertion order.
func (s *Store) List() ([]Verdict, error) {
	rows, err := s.db.Query("SELECT id, event_id, caller, class, correct, note, created_at FROM feedback_log ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list verdicts: %w", err)
	}
	defer rows.Close()

	var verdicts []Verdict
	for rows.Next() {
		var v Verdict
		var correct int
		var ts string
		if err := rows.Scan(&v.ID, &v.EventID, &v.Caller, &v.Class, &correct, &v.Note, &ts); err != nil {
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		v.Correct = correct != 0
		v.CreatedAt, _ = time.Parse(time.RFC3339, ts)
		verdicts = append(verdicts, v)
	}
	return verdicts, rows.Err()
}

// Accuracy aggregates all verdicts.
func (s *Store) Accuracy() (Summary, error) {
	var sum Summary
	err := s.db.QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(correct), 0) FROM feedback_log",
	).Scan(&sum.Total, &sum.Correct)
	if err != nil {
		return Summary{}, fmt.Errorf("aggregate verdicts: %w", err)
	}
	return sum, nil
}

// #endregion store
