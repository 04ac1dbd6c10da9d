package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const timestampFormat = "20060102-150405"

// Move moves dir to <parent>/archive/<prefix>-<timestamp> and returns the
// new path
func Move(dir, prefix string) (string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return "", fmt.Errorf("directory does not exist: %s", dir)
	}

	archiveDir := filepath.Join(filepath.Dir(dir), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	archivePath := uniquePath(archiveDir, prefix, "")
	if err := os.Rename(dir, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive directory: %w", err)
	}

	return archivePath, nil
}

// Snapshot copies the file src into dir as <prefix>-<timestamp><ext> and
// returns the path of the copy
func Snapshot(src, dir, prefix string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open snapshot source: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	dst := uniquePath(dir, prefix, filepath.Ext(src))
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	return dst, nil
}

// uniquePath returns dir/<prefix>-<timestamp><ext>, adding a counter when
// that name is taken
func uniquePath(dir, prefix, ext string) string {
	base := fmt.Sprintf("%s-%s", prefix, time.Now().Format(timestampFormat))

	path := filepath.Join(dir, base+ext)
	for i := 2; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, i, ext))
	}
}
