package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/shabda/internal/vocab"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	username   TEXT PRIMARY KEY,
	id         TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
	username       TEXT NOT NULL,
	position       INTEGER NOT NULL,
	english        TEXT NOT NULL,
	odia           TEXT NOT NULL,
	romanized_odia TEXT NOT NULL,
	PRIMARY KEY (username, position)
);
CREATE TABLE IF NOT EXISTS audio_urls (
	username TEXT NOT NULL,
	text     TEXT NOT NULL,
	url      TEXT NOT NULL,
	PRIMARY KEY (username, text)
);
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	session_id TEXT NOT NULL,
	username   TEXT NOT NULL,
	entries    INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL,
	data       TEXT NOT NULL
);`

// SQLStore keeps sessions and snapshots in a SQLite database
type SQLStore struct {
	db   *sql.DB
	path string
}

// OpenSQLStore opens or creates the database at path
func OpenSQLStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	store, err := NewSQLStore(db, path)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore creates the schema on db
func NewSQLStore(db *sql.DB, path string) (*SQLStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create session schema: %w", err)
	}
	return &SQLStore{db: db, path: path}, nil
}

// Backend returns "sqlite"
func (s *SQLStore) Backend() string {
	return "sqlite"
}

// Location returns the database path
func (s *SQLStore) Location(user string) string {
	return s.path
}

// Load reads the session of user with its entries and audio URLs
func (s *SQLStore) Load(ctx context.Context, user string) (*Session, error) {
	sess := &Session{User: user}

	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at FROM sessions WHERE username = ?`, user,
	).Scan(&sess.ID, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT english, odia, romanized_odia FROM entries WHERE username = ? ORDER BY position`, user)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e vocab.Entry
		if err := rows.Scan(&e.English, &e.Odia, &e.RomanizedOdia); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		sess.Entries = append(sess.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	urls, err := s.db.QueryContext(ctx, `SELECT text, url FROM audio_urls WHERE username = ?`, user)
	if err != nil {
		return nil, fmt.Errorf("failed to load audio urls: %w", err)
	}
	defer urls.Close()

	for urls.Next() {
		var text, url string
		if err := urls.Scan(&text, &url); err != nil {
			return nil, fmt.Errorf("failed to scan audio url: %w", err)
		}
		if sess.AudioURLs == nil {
			sess.AudioURLs = make(map[string]string)
		}
		sess.AudioURLs[text] = url
	}
	if err := urls.Err(); err != nil {
		return nil, fmt.Errorf("failed to load audio urls: %w", err)
	}

	return sess, nil
}

// Save replaces the stored session of sess.User in one transaction
func (s *SQLStore) Save(ctx context.Context, sess *Session) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (username, id, created_at, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(username) DO UPDATE SET id = excluded.id, created_at = excluded.created_at, updated_at = excluded.updated_at`,
			sess.User, sess.ID, sess.CreatedAt, sess.UpdatedAt); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE username = ?`, sess.User); err != nil {
			return fmt.Errorf("failed to replace entries: %w", err)
		}
		for i, e := range sess.Entries {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO entries (username, position, english, odia, romanized_odia) VALUES (?, ?, ?, ?, ?)`,
				sess.User, i, e.English, e.Odia, e.RomanizedOdia); err != nil {
				return fmt.Errorf("failed to save entry: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM audio_urls WHERE username = ?`, sess.User); err != nil {
			return fmt.Errorf("failed to replace audio urls: %w", err)
		}
		for _, text := range sortedKeys(sess.AudioURLs) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO audio_urls (username, text, url) VALUES (?, ?, ?)`,
				sess.User, text, sess.AudioURLs[text]); err != nil {
				return fmt.Errorf("failed to save audio url: %w", err)
			}
		}
		return nil
	})
}

// Delete removes the active session of user
func (s *SQLStore) Delete(ctx context.Context, user string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"entries", "audio_urls", "sessions"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE username = ?`, user); err != nil {
				return fmt.Errorf("failed to delete from %s: %w", table, err)
			}
		}
		return nil
	})
}

// SaveSnapshot stores the session as a JSON document
func (s *SQLStore) SaveSnapshot(ctx context.Context, sess *Session) (*SnapshotInfo, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}

	id := uuid.NewString()
	now := time.Now()
	info := &SnapshotInfo{
		Name:      fmt.Sprintf("session_%s-%s", sess.User, now.Format("20060102-150405")),
		SessionID: sess.ID,
		User:      sess.User,
		Entries:   len(sess.Entries),
		CreatedAt: now,
		Location:  s.path + "#" + id,
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, name, session_id, username, entries, created_at, data) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, info.Name, info.SessionID, info.User, info.Entries, info.CreatedAt, string(data)); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	return info, nil
}

// ListSnapshots returns every snapshot, newest first
func (s *SQLStore) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, session_id, username, entries, created_at FROM snapshots ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		var (
			id   string
			info SnapshotInfo
		)
		if err := rows.Scan(&id, &info.Name, &info.SessionID, &info.User, &info.Entries, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		info.Location = s.path + "#" + id
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Reset drops every active session
func (s *SQLStore) Reset(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"entries", "audio_urls", "sessions"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("failed to reset %s: %w", table, err)
			}
		}
		return nil
	})
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
