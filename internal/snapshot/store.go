// Package snapshot is the durable-state collaborator: it persists the
// engine's full data model as versioned SQLite snapshots and keeps an
// append-only log of classification calls for offline replay.
package snapshot

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/sentiment-engine/internal/cooccur"
	"github.com/danielpatrickdp/sentiment-engine/internal/domain"
	"github.com/danielpatrickdp/sentiment-engine/internal/engine"
	"github.com/danielpatrickdp/sentiment-engine/internal/profile"
	"github.com/danielpatrickdp/sentiment-engine/internal/vocab"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	version_id  TEXT PRIMARY KEY,
	parent_id   TEXT,
	created_at  TEXT NOT NULL,
	vocab_size  INTEGER NOT NULL,
	suspended   INTEGER NOT NULL DEFAULT 0,
	stats_json  TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES snapshots(version_id)
);

CREATE TABLE IF NOT EXISTS snapshot_tokens (
	version_id        TEXT NOT NULL,
	token_id          INTEGER NOT NULL,
	word              TEXT NOT NULL,
	sentiment         INTEGER NOT NULL,
	flags             INTEGER NOT NULL,
	category          INTEGER NOT NULL,
	secondary         INTEGER NOT NULL,
	weight            INTEGER NOT NULL,
	domain_tag        INTEGER NOT NULL,
	domain_strength   INTEGER NOT NULL,
	context_influence INTEGER NOT NULL,
	usage_count       INTEGER NOT NULL,
	cooccur_total     INTEGER NOT NULL,
	semantic          BLOB NOT NULL,
	context           BLOB NOT NULL,
	PRIMARY KEY (version_id, token_id)
);

CREATE TABLE IF NOT EXISTS snapshot_class_vectors (
	version_id TEXT NOT NULL,
	class_id   INTEGER NOT NULL,
	semantic   BLOB NOT NULL,
	context    BLOB NOT NULL,
	PRIMARY KEY (version_id, class_id)
);

CREATE TABLE IF NOT EXISTS snapshot_cooccurrence (
	version_id TEXT NOT NULL,
	a          INTEGER NOT NULL,
	b          INTEGER NOT NULL,
	count      INTEGER NOT NULL,
	PRIMARY KEY (version_id, a, b)
);

CREATE TABLE IF NOT EXISTS snapshot_profiles (
	version_id       TEXT NOT NULL,
	caller           TEXT NOT NULL,
	last_interaction INTEGER NOT NULL,
	last_token       INTEGER NOT NULL,
	topics_json      TEXT NOT NULL,
	history          BLOB NOT NULL,
	interactions     INTEGER NOT NULL,
	sentiment_bias   INTEGER NOT NULL,
	primary_domain   INTEGER NOT NULL,
	feedback_json    TEXT,
	PRIMARY KEY (version_id, caller)
);

CREATE TABLE IF NOT EXISTS snapshot_domains (
	version_id TEXT NOT NULL,
	domain_id  INTEGER NOT NULL,
	bias_json  TEXT NOT NULL,
	intensity  INTEGER NOT NULL,
	PRIMARY KEY (version_id, domain_id)
);

CREATE TABLE IF NOT EXISTS active_snapshot (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	version_id TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES snapshots(version_id)
);

CREATE TABLE IF NOT EXISTS classification_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id    TEXT NOT NULL,
	caller      TEXT NOT NULL,
	class       INTEGER NOT NULL,
	confidence  INTEGER NOT NULL,
	domain      INTEGER NOT NULL,
	input       TEXT NOT NULL,
	tokens_json TEXT NOT NULL,
	called_at   INTEGER NOT NULL,
	created_at  TEXT NOT NULL
);
`

// #endregion schema

// #region store

// Store manages versioned engine snapshots in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens the database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle for inspection tooling.
func (s *Store) DB() *sql.DB { return s.db }

// #endregion store

// #region save

// Save writes one snapshot of the full data model and moves the active
// pointer to it, all in one transaction. Returns the new version id.
func (s *Store) Save(st engine.State, parentID string) (string, error) {
	versionID := uuid.New().String()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	statsJSON, err := json.Marshal(st.Stats)
	if err != nil {
		return "", fmt.Errorf("marshal stats: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var parentPtr interface{}
	if parentID != "" {
		parentPtr = parentID
	}
	suspended := 0
	if st.Suspended {
		suspended = 1
	}

	if _, err := tx.Exec(
		`INSERT INTO snapshots (version_id, parent_id, created_at, vocab_size, suspended, stats_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		versionID, parentPtr, now, st.Vocab.Size, suspended, string(statsJSON),
	); err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}

	for id := 0; id < st.Vocab.Size; id++ {
		md := st.Vocab.Meta[id]
		sem := st.Vocab.Sem[id]
		ctx := st.Vocab.Ctx[id]
		if _, err := tx.Exec(
			`INSERT INTO snapshot_tokens
			 (version_id, token_id, word, sentiment, flags, category, secondary, weight,
			  domain_tag, domain_strength, context_influence, usage_count, cooccur_total, semantic, context)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			versionID, id, md.Word, md.Sentiment, int(md.Flags), md.Category, md.Secondary,
			md.Weight, md.DomainTag, md.DomainStrength, md.ContextInfluence,
			md.UsageCount, md.CooccurTotal, encodeVector(sem[:]), encodeVector(ctx[:]),
		); err != nil {
			return "", fmt.Errorf("insert token %d: %w", id, err)
		}
	}

	for c := 0; c < vocab.NumClasses; c++ {
		sem := st.Vocab.ClassSem[c]
		ctx := st.Vocab.ClassCtx[c]
		if _, err := tx.Exec(
			`INSERT INTO snapshot_class_vectors (version_id, class_id, semantic, context)
			 VALUES (?, ?, ?, ?)`,
			versionID, c, encodeVector(sem[:]), encodeVector(ctx[:]),
		); err != nil {
			return "", fmt.Errorf("insert class vector %d: %w", c, err)
		}
	}

	for _, cell := range st.Cooccur {
		if _, err := tx.Exec(
			`INSERT INTO snapshot_cooccurrence (version_id, a, b, count) VALUES (?, ?, ?, ?)`,
			versionID, cell.A, cell.B, cell.Count,
		); err != nil {
			return "", fmt.Errorf("insert cooccurrence (%d,%d): %w", cell.A, cell.B, err)
		}
	}

	for caller, u := range st.Profiles {
		topicsJSON, err := json.Marshal(u.Topics)
		if err != nil {
			return "", fmt.Errorf("marshal topics for %s: %w", caller, err)
		}
		var feedbackPtr interface{}
		if len(u.Feedback) > 0 {
			fb, err := json.Marshal(u.Feedback)
			if err != nil {
				return "", fmt.Errorf("marshal feedback for %s: %w", caller, err)
			}
			feedbackPtr = string(fb)
		}
		if _, err := tx.Exec(
			`INSERT INTO snapshot_profiles
			 (version_id, caller, last_interaction, last_token, topics_json, history,
			  interactions, sentiment_bias, primary_domain, feedback_json)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			versionID, caller, u.LastInteraction, u.LastToken, string(topicsJSON),
			u.History[:], u.Interactions, u.SentimentBias, u.PrimaryDomain, feedbackPtr,
		); err != nil {
			return "", fmt.Errorf("insert profile %s: %w", caller, err)
		}
	}

	for d := 0; d < domain.NumDomains; d++ {
		mod := st.Modifiers[d]
		biasJSON, err := json.Marshal(mod.Bias)
		if err != nil {
			return "", fmt.Errorf("marshal bias for domain %d: %w", d, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO snapshot_domains (version_id, domain_id, bias_json, intensity)
			 VALUES (?, ?, ?, ?)`,
			versionID, d, string(biasJSON), mod.Intensity,
		); err != nil {
			return "", fmt.Errorf("insert domain %d: %w", d, err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO active_snapshot (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
		versionID,
	); err != nil {
		return "", fmt.Errorf("set active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return versionID, nil
}

// #endregion save

// #region load

// LoadCurrent reads the active snapshot. Returns the state and its
// version id.
func (s *Store) LoadCurrent() (engine.State, string, error) {
	var versionID string
	err := s.db.QueryRow(`SELECT version_id FROM active_snapshot WHERE id = 1`).Scan(&versionID)
	if err != nil {
		return engine.State{}, "", fmt.Errorf("get active: %w", err)
	}
	st, err := s.LoadVersion(versionID)
	return st, versionID, err
}

// LoadVersion reads one snapshot by id.
func (s *Store) LoadVersion(versionID string) (engine.State, error) {
	var st engine.State

	var statsJSON string
	var suspended int
	err := s.db.QueryRow(
		`SELECT vocab_size, suspended, stats_json FROM snapshots WHERE version_id = ?`,
		versionID,
	).Scan(&st.Vocab.Size, &suspended, &statsJSON)
	if err != nil {
		return engine.State{}, fmt.Errorf("get snapshot %s: %w", versionID, err)
	}
	st.Suspended = suspended != 0
	if err := json.Unmarshal([]byte(statsJSON), &st.Stats); err != nil {
		return engine.State{}, fmt.Errorf("unmarshal stats: %w", err)
	}

	st.Vocab.Meta = make([]vocab.Metadata, st.Vocab.Size)
	st.Vocab.Sem = make([]vocab.SemVector, st.Vocab.Size)
	st.Vocab.Ctx = make([]vocab.CtxVector, st.Vocab.Size)

	rows, err := s.db.Query(
		`SELECT token_id, word, sentiment, flags, category, secondary, weight,
		        domain_tag, domain_strength, context_influence, usage_count, cooccur_total, semantic, context
		 FROM snapshot_tokens WHERE version_id = ?`, versionID,
	)
	if err != nil {
		return engine.State{}, fmt.Errorf("query tokens: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int
		var md vocab.Metadata
		var flags int
		var semBlob, ctxBlob []byte
		if err := rows.Scan(&id, &md.Word, &md.Sentiment, &flags, &md.Category, &md.Secondary,
			&md.Weight, &md.DomainTag, &md.DomainStrength, &md.ContextInfluence,
			&md.UsageCount, &md.CooccurTotal, &semBlob, &ctxBlob); err != nil {
			return engine.State{}, fmt.Errorf("scan token: %w", err)
		}
		if id < 0 || id >= st.Vocab.Size {
			return engine.State{}, fmt.Errorf("token id %d outside snapshot size %d", id, st.Vocab.Size)
		}
		md.Flags = vocab.Flags(flags)
		st.Vocab.Meta[id] = md
		decodeVector(semBlob, st.Vocab.Sem[id][:])
		decodeVector(ctxBlob, st.Vocab.Ctx[id][:])
	}
	if err := rows.Err(); err != nil {
		return engine.State{}, fmt.Errorf("iterate tokens: %w", err)
	}

	if err := s.loadClassVectors(versionID, &st); err != nil {
		return engine.State{}, err
	}
	if err := s.loadCooccurrence(versionID, &st); err != nil {
		return engine.State{}, err
	}
	if err := s.loadProfiles(versionID, &st); err != nil {
		return engine.State{}, err
	}
	if err := s.loadDomains(versionID, &st); err != nil {
		return engine.State{}, err
	}
	return st, nil
}

func (s *Store) loadClassVectors(versionID string, st *engine.State) error {
	rows, err := s.db.Query(
		`SELECT class_id, semantic, context FROM snapshot_class_vectors WHERE version_id = ?`,
		versionID,
	)
	if err != nil {
		return fmt.Errorf("query class vectors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c int
		var semBlob, ctxBlob []byte
		if err := rows.Scan(&c, &semBlob, &ctxBlob); err != nil {
			return fmt.Errorf("scan class vector: %w", err)
		}
		if c < 0 || c >= vocab.NumClasses {
			return fmt.Errorf("class id %d outside [0, %d)", c, vocab.NumClasses)
		}
		decodeVector(semBlob, st.Vocab.ClassSem[c][:])
		decodeVector(ctxBlob, st.Vocab.ClassCtx[c][:])
	}
	return rows.Err()
}

func (s *Store) loadCooccurrence(versionID string, st *engine.State) error {
	rows, err := s.db.Query(
		`SELECT a, b, count FROM snapshot_cooccurrence WHERE version_id = ?`, versionID,
	)
	if err != nil {
		return fmt.Errorf("query cooccurrence: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cell cooccur.Cell
		if err := rows.Scan(&cell.A, &cell.B, &cell.Count); err != nil {
			return fmt.Errorf("scan cooccurrence: %w", err)
		}
		st.Cooccur = append(st.Cooccur, cell)
	}
	return rows.Err()
}

func (s *Store) loadProfiles(versionID string, st *engine.State) error {
	rows, err := s.db.Query(
		`SELECT caller, last_interaction, last_token, topics_json, history,
		        interactions, sentiment_bias, primary_domain, feedback_json
		 FROM snapshot_profiles WHERE version_id = ?`, versionID,
	)
	if err != nil {
		return fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	st.Profiles = make(map[string]profile.UserContext)
	for rows.Next() {
		var caller, topicsJSON string
		var historyBlob []byte
		var feedbackJSON sql.NullString
		var u profile.UserContext
		if err := rows.Scan(&caller, &u.LastInteraction, &u.LastToken, &topicsJSON,
			&historyBlob, &u.Interactions, &u.SentimentBias, &u.PrimaryDomain, &feedbackJSON); err != nil {
			return fmt.Errorf("scan profile: %w", err)
		}
		if err := json.Unmarshal([]byte(topicsJSON), &u.Topics); err != nil {
			return fmt.Errorf("unmarshal topics for %s: %w", caller, err)
		}
		copy(u.History[:], historyBlob)
		if feedbackJSON.Valid {
			if err := json.Unmarshal([]byte(feedbackJSON.String), &u.Feedback); err != nil {
				return fmt.Errorf("unmarshal feedback for %s: %w", caller, err)
			}
		}
		st.Profiles[caller] = u
	}
	return rows.Err()
}

func (s *Store) loadDomains(versionID string, st *engine.State) error {
	rows, err := s.db.Query(
		`SELECT domain_id, bias_json, intensity FROM snapshot_domains WHERE version_id = ?`,
		versionID,
	)
	if err != nil {
		return fmt.Errorf("query domains: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d int
		var biasJSON string
		var mod domain.Modifier
		if err := rows.Scan(&d, &biasJSON, &mod.Intensity); err != nil {
			return fmt.Errorf("scan domain: %w", err)
		}
		if d < 0 || d >= domain.NumDomains {
			return fmt.Errorf("domain id %d outside [0, %d)", d, domain.NumDomains)
		}
		if err := json.Unmarshal([]byte(biasJSON), &mod.Bias); err != nil {
			return fmt.Errorf("unmarshal bias for domain %d: %w", d, err)
		}
		st.Modifiers[d] = mod
	}
	return rows.Err()
}

// #endregion load

// #region versions

// Info summarizes one stored snapshot.
type Info struct {
	VersionID string
	ParentID  string
	CreatedAt time.Time
	VocabSize int
}

// ListVersions returns the most recent snapshots, newest first.
func (s *Store) ListVersions(limit int) ([]Info, error) {
	rows, err := s.db.Query(
		`SELECT version_id, parent_id, created_at, vocab_size
		 FROM snapshots ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var info Info
		var parent sql.NullString
		var createdStr string
		if err := rows.Scan(&info.VersionID, &parent, &createdStr, &info.VocabSize); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		if parent.Valid {
			info.ParentID = parent.String
		}
		info.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// #endregion versions

// #region vector-encoding

func encodeVector(v []int32) []byte {
	buf := make([]byte, len(v)*4)
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(x))
	}
	return buf
}

func decodeVector(b []byte, out []int32) {
	for i := range out {
		if i*4+4 <= len(b) {
			out[i] = int32(binary.LittleEndian.Uint32(b[i*4:]))
		}
	}
}

// #endregion vector-encoding
