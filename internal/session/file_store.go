package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"codeberg.org/snonux/shabda/internal"
	"codeberg.org/snonux/shabda/internal/archive"
)

// FileStore keeps active sessions in <dir>/sessions/<user>-<hash>.json and
// snapshots in <dir>/saved
type FileStore struct {
	dir string
}

// NewFileStore creates the store directories under dir
func NewFileStore(dir string) (*FileStore, error) {
	fs := &FileStore{dir: dir}
	for _, d := range []string{fs.sessionsDir(), fs.savedDir()} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("failed to create session directory: %w", err)
		}
	}
	return fs, nil
}

func (fs *FileStore) sessionsDir() string { return filepath.Join(fs.dir, "sessions") }
func (fs *FileStore) savedDir() string    { return filepath.Join(fs.dir, "saved") }

// Backend returns "file"
func (fs *FileStore) Backend() string {
	return "file"
}

// Location returns the session file of user. The hash keeps users apart
// whose names sanitize to the same file name.
func (fs *FileStore) Location(user string) string {
	return filepath.Join(fs.sessionsDir(), fileName(user)+".json")
}

func fileName(user string) string {
	return internal.SanitizeFilename(user) + "-" + internal.ContentHash(user)[:12]
}

// Load reads the session file of user
func (fs *FileStore) Load(ctx context.Context, user string) (*Session, error) {
	s, err := readSession(fs.Location(user))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.User != user {
		return nil, ErrNotFound
	}
	return s, nil
}

// Save writes the session atomically
func (fs *FileStore) Save(ctx context.Context, s *Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	path := fs.Location(s.User)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Delete removes the session file of user
func (fs *FileStore) Delete(ctx context.Context, user string) error {
	if err := os.Remove(fs.Location(user)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// SaveSnapshot copies the session file into the saved directory
func (fs *FileStore) SaveSnapshot(ctx context.Context, s *Session) (*SnapshotInfo, error) {
	if err := fs.Save(ctx, s); err != nil {
		return nil, err
	}

	prefix := "session_" + fileName(s.User)
	path, err := archive.Snapshot(fs.Location(s.User), fs.savedDir(), prefix)
	if err != nil {
		return nil, err
	}

	return &SnapshotInfo{
		Name:      strings.TrimSuffix(filepath.Base(path), ".json"),
		SessionID: s.ID,
		User:      s.User,
		Entries:   len(s.Entries),
		CreatedAt: time.Now(),
		Location:  path,
	}, nil
}

// ListSnapshots reads every snapshot in the saved directory
func (fs *FileStore) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	files, err := os.ReadDir(fs.savedDir())
	if err != nil {
		return nil, fmt.Errorf("failed to read saved sessions: %w", err)
	}

	var infos []SnapshotInfo
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
			continue
		}

		path := filepath.Join(fs.savedDir(), f.Name())
		s, err := readSession(path)
		if err != nil {
			// skip files that are not sessions
			continue
		}

		created := s.UpdatedAt
		if fi, err := f.Info(); err == nil {
			created = fi.ModTime()
		}

		infos = append(infos, SnapshotInfo{
			Name:      strings.TrimSuffix(f.Name(), ".json"),
			SessionID: s.ID,
			User:      s.User,
			Entries:   len(s.Entries),
			CreatedAt: created,
			Location:  path,
		})
	}

	sortSnapshots(infos)
	return infos, nil
}

// Reset removes every active session file
func (fs *FileStore) Reset(ctx context.Context) error {
	files, err := os.ReadDir(fs.sessionsDir())
	if err != nil {
		return fmt.Errorf("failed to read sessions: %w", err)
	}

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(fs.sessionsDir(), f.Name())); err != nil {
			return fmt.Errorf("failed to remove session file: %w", err)
		}
	}
	return nil
}

// Close is a no-op
func (fs *FileStore) Close() error {
	return nil
}

func readSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", path, err)
	}
	return &s, nil
}

func sortSnapshots(infos []SnapshotInfo) {
	sort.SliceStable(infos, func(i, j int) bool {
		if !infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].CreatedAt.After(infos[j].CreatedAt)
		}
		return infos[i].Name > infos[j].Name
	})
}
