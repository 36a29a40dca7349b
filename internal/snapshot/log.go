package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/sentiment-engine/internal/vocab"
)

// #region log-types

// LogEntry is one row of the append-only classification log. It keeps
// enough of the call (caller, tokens, timestamp) to re-run it later.
type LogEntry struct {
	EventID    string
	Caller     string
	Tokens     []int
	Class      vocab.Class
	Confidence int64
	Domain     int
	Input      string
	CalledAt   int64
	CreatedAt  time.Time
}

// #endregion log-types

// #region log-append

// LogClassification appends one classification call to the log.
// The entry's EventID is assigned if empty.
func (s *Store) LogClassification(entry LogEntry) (string, error) {
	if entry.EventID == "" {
		entry.EventID = uuid.New().String()
	}
	tokensJSON, err := json.Marshal(entry.Tokens)
	if err != nil {
		return "", fmt.Errorf("marshal tokens: %w", err)
	}
	created := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.Exec(
		`INSERT INTO classification_log
		 (event_id, caller, class, confidence, domain, input, tokens_json, called_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.EventID, entry.Caller, int(entry.Class), entry.Confidence, entry.Domain,
		entry.Input, string(tokensJSON), entry.CalledAt, created,
	); err != nil {
		return "", fmt.Errorf("insert log entry: %w", err)
	}
	return entry.EventID, nil
}

// #endregion log-append

// #region log-read

// Classifications returns log entries in insertion order. A zero limit
// returns everything.
func (s *Store) Classifications(limit int) ([]LogEntry, error) {
	q := `SELECT event_id, caller, class, confidence, domain, input, tokens_json, called_at, created_at
	      FROM classification_log ORDER BY id ASC`
	args := []interface{}{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query log: %w", err)
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		var class int
		var tokensJSON, createdStr string
		if err := rows.Scan(&e.EventID, &e.Caller, &class, &e.Confidence, &e.Domain,
			&e.Input, &tokensJSON, &e.CalledAt, &createdStr); err != nil {
			return nil, fmt.Errorf("scan log row: %w", err)
		}
		e.Class = vocab.Class(class)
		if err := json.Unmarshal([]byte(tokensJSON), &e.Tokens); err != nil {
			return nil, fmt.Errorf("unmarshal tokens: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClassificationByEvent returns one log entry by its event id.
func (s *Store) ClassificationByEvent(eventID string) (LogEntry, error) {
	var e LogEntry
	var class int
	var tokensJSON, createdStr string
	err := s.db.QueryRow(
		`SELECT event_id, caller, class, confidence, domain, input, tokens_json, called_at, created_at
		 FROM classification_log WHERE event_id = ?`, eventID,
	).Scan(&e.EventID, &e.Caller, &class, &e.Confidence, &e.Domain,
		&e.Input, &tokensJSON, &e.CalledAt, &createdStr)
	if err != nil {
		return LogEntry{}, fmt.Errorf("get log entry %s: %w", eventID, err)
	}
	e.Class = vocab.Class(class)
	if err := json.Unmarshal([]byte(tokensJSON), &e.Tokens); err != nil {
		return LogEntry{}, fmt.Errorf("unmarshal tokens: %w", err)
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return e, nil
}

// #endregion log-read
