package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"codeberg.org/snonux/shabda/internal/vocab"
)

// Manager serializes every read-modify-write of sessions
type Manager struct {
	mu     sync.Mutex
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewManager creates a manager on top of store
func NewManager(store Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:  store,
		logger: logger.Named("session"),
		now:    time.Now,
	}
}

// Store returns the backing store
func (m *Manager) Store() Store {
	return m.store
}

// Create starts a new, empty session for user, replacing any active one
func (m *Manager) Create(ctx context.Context, user string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.newSession(NormalizeUser(user))
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	m.logger.Info("session created", zap.String("user", s.User), zap.String("id", s.ID))
	return s, nil
}

// Get returns the active session of user or ErrNotFound
func (m *Manager) Get(ctx context.Context, user string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.store.Load(ctx, NormalizeUser(user))
}

// Append adds entries to the user's session, creating it when needed
func (m *Manager) Append(ctx context.Context, user string, entries []vocab.Entry) (*StorageInfo, error) {
	return m.update(ctx, user, func(s *Session) {
		s.Entries = append(s.Entries, entries...)
	})
}

// Replace swaps the user's entries for entries
func (m *Manager) Replace(ctx context.Context, user string, entries []vocab.Entry) (*StorageInfo, error) {
	return m.update(ctx, user, func(s *Session) {
		s.Entries = append([]vocab.Entry(nil), entries...)
	})
}

// Clear ends the user's active session
func (m *Manager) Clear(ctx context.Context, user string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user = NormalizeUser(user)
	if err := m.store.Delete(ctx, user); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	m.logger.Info("session cleared", zap.String("user", user))
	return nil
}

// Existing returns the source field values of the user's entries for kind,
// English for English-first kinds and Odia for Odia phrases
func (m *Manager) Existing(ctx context.Context, user string, kind vocab.Kind) ([]string, error) {
	s, err := m.Get(ctx, user)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return vocab.Values(s.Entries, kind.SourceField()), nil
}

// Snapshot saves a permanent copy of the user's session
func (m *Manager) Snapshot(ctx context.Context, user string) (*SnapshotInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.store.Load(ctx, NormalizeUser(user))
	if err != nil {
		return nil, err
	}
	if len(s.Entries) == 0 {
		return nil, ErrNotFound
	}

	info, err := m.store.SaveSnapshot(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	m.logger.Info("session saved",
		zap.String("user", s.User),
		zap.String("name", info.Name),
		zap.Int("entries", info.Entries))
	return info, nil
}

// Snapshots lists every saved snapshot, newest first
func (m *Manager) Snapshots(ctx context.Context) ([]SnapshotInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.store.ListSnapshots(ctx)
}

// AudioURL returns the cached audio URL for text in the user's session
func (m *Manager) AudioURL(ctx context.Context, user, text string) (string, bool) {
	s, err := m.Get(ctx, user)
	if err != nil {
		return "", false
	}
	url, ok := s.AudioURLs[text]
	return url, ok
}

// SetAudioURL remembers the audio URL for text
func (m *Manager) SetAudioURL(ctx context.Context, user, text, url string) error {
	_, err := m.update(ctx, user, func(s *Session) {
		if s.AudioURLs == nil {
			s.AudioURLs = make(map[string]string)
		}
		s.AudioURLs[text] = url
	})
	return err
}

// Reset drops every active session
func (m *Manager) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset sessions: %w", err)
	}

	m.logger.Info("active sessions reset", zap.String("backend", m.store.Backend()))
	return nil
}

func (m *Manager) newSession(user string) *Session {
	now := m.now()
	return &Session{
		ID:        uuid.NewString(),
		User:      user,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (m *Manager) update(ctx context.Context, user string, fn func(s *Session)) (*StorageInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user = NormalizeUser(user)
	s, err := m.store.Load(ctx, user)
	if errors.Is(err, ErrNotFound) {
		s = m.newSession(user)
	} else if err != nil {
		return nil, err
	}

	fn(s)
	s.UpdatedAt = m.now()

	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return &StorageInfo{
		Backend:  m.store.Backend(),
		Location: m.store.Location(user),
		Entries:  len(s.Entries),
	}, nil
}
