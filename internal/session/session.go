package session

import (
	"context"
	"errors"
	"time"

	"codeberg.org/snonux/shabda/internal/vocab"
)

// DefaultUser owns requests that carry no user name
const DefaultUser = "default"

// ErrNotFound means there is no active session for the user
var ErrNotFound = errors.New("session not found")

// Session is the accumulated state of one user
type Session struct {
	ID        string            `json:"id"`
	User      string            `json:"user"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Entries   []vocab.Entry     `json:"translations"`
	AudioURLs map[string]string `json:"audio_urls,omitempty"`
}

// SnapshotInfo describes a saved, permanent copy of a session
type SnapshotInfo struct {
	Name      string    `json:"name"`
	SessionID string    `json:"session_id"`
	User      string    `json:"user"`
	Entries   int       `json:"entries"`
	CreatedAt time.Time `json:"created_at"`
	Location  string    `json:"location"`
}

// StorageInfo tells the caller where a session was written
type StorageInfo struct {
	Backend  string `json:"backend"`
	Location string `json:"location"`
	Entries  int    `json:"entries"`
}

// Store persists sessions, one active session per user
type Store interface {
	// Load returns ErrNotFound when the user has no session
	Load(ctx context.Context, user string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, user string) error

	SaveSnapshot(ctx context.Context, s *Session) (*SnapshotInfo, error)
	ListSnapshots(ctx context.Context) ([]SnapshotInfo, error)

	// Reset drops every active session; snapshots are kept
	Reset(ctx context.Context) error

	Backend() string
	Location(user string) string
	Close() error
}

// NormalizeUser maps an empty user name onto DefaultUser
func NormalizeUser(user string) string {
	if user == "" {
		return DefaultUser
	}
	return user
}
