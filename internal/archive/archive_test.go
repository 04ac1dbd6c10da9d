package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMove(t *testing.T) {
	tmpDir := t.TempDir()

	dataDir := filepath.Join(tmpDir, "data")
	if err := os.MkdirAll(filepath.Join(dataDir, "sessions"), 0755); err != nil {
		t.Fatalf("Failed to create data directory: %v", err)
	}
	sessionFile := filepath.Join(dataDir, "sessions", "default.json")
	if err := os.WriteFile(sessionFile, []byte(`{"id":"x"}`), 0644); err != nil {
		t.Fatalf("Failed to create session file: %v", err)
	}

	archivedPath, err := Move(dataDir, "data")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	if _, err := os.Stat(dataDir); !os.IsNotExist(err) {
		t.Error("Data directory still exists after archiving")
	}

	if filepath.Dir(archivedPath) != filepath.Join(tmpDir, "archive") {
		t.Errorf("Unexpected archive location: %s", archivedPath)
	}

	if !strings.HasPrefix(filepath.Base(archivedPath), "data-") {
		t.Errorf("Archived directory name doesn't start with 'data-': %s", archivedPath)
	}

	if _, err := os.Stat(filepath.Join(archivedPath, "sessions", "default.json")); os.IsNotExist(err) {
		t.Error("Session file not found in archive")
	}
}

func TestMove_NonExistentDirectory(t *testing.T) {
	_, err := Move(filepath.Join(t.TempDir(), "nonexistent"), "data")
	if err == nil {
		t.Fatal("Expected error for non-existent directory")
	}

	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected 'does not exist' error, got: %v", err)
	}
}

func TestSnapshot_UniqueNames(t *testing.T) {
	tmpDir := t.TempDir()

	src := filepath.Join(tmpDir, "default.json")
	if err := os.WriteFile(src, []byte(`{"translations":[]}`), 0644); err != nil {
		t.Fatalf("Failed to create source file: %v", err)
	}

	savedDir := filepath.Join(tmpDir, "saved")
	first, err := Snapshot(src, savedDir, "session_default")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	second, err := Snapshot(src, savedDir, "session_default")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	if first == second {
		t.Error("Snapshot names are not unique")
	}

	if filepath.Ext(first) != ".json" {
		t.Errorf("Snapshot lost its extension: %s", first)
	}

	content, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("Failed to read snapshot: %v", err)
	}
	if string(content) != `{"translations":[]}` {
		t.Errorf("Snapshot content mismatch: %q", content)
	}

	entries, err := os.ReadDir(savedDir)
	if err != nil {
		t.Fatalf("Failed to read saved directory: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(entries))
	}
}

func TestSnapshot_MissingSource(t *testing.T) {
	if _, err := Snapshot(filepath.Join(t.TempDir(), "missing.json"), t.TempDir(), "x"); err == nil {
		t.Error("Expected error for missing source")
	}
}
