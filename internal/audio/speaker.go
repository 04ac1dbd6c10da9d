package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"codeberg.org/snonux/shabda/internal"
	"codeberg.org/snonux/shabda/internal/validate"
)

// URLPrefix is where synthesized files are served
const URLPrefix = "/audio/"

// ErrBadFileName is returned for names that were not produced by a Speaker
var ErrBadFileName = errors.New("bad audio file name")

var fileNamePattern = regexp.MustCompile(`^[0-9a-f]{32}\.(mp3|wav|opus|aac|flac)$`)

// Speech is the outcome of Speak
type Speech struct {
	URL    string
	Path   string
	Cached bool
}

// Speaker stores one file per distinct text in dir. Concurrent requests
// for the same text share a single synthesis.
type Speaker struct {
	provider Provider
	dir      string
	format   string
	group    singleflight.Group
	logger   *zap.Logger
}

// NewSpeaker creates a speaker writing into dir
func NewSpeaker(provider Provider, dir, format string, logger *zap.Logger) (*Speaker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}
	return &Speaker{
		provider: provider,
		dir:      dir,
		format:   formatName(format),
		logger:   logger.Named("speaker"),
	}, nil
}

// Enabled reports whether the provider can synthesize speech
func (s *Speaker) Enabled() bool {
	return s.provider.IsAvailable() == nil
}

// FileName returns the file name used for text
func (s *Speaker) FileName(text string) string {
	return internal.ContentHash(validate.Normalize(text)) + "." + s.format
}

// Speak returns the audio of text, synthesizing it on first use
func (s *Speaker) Speak(ctx context.Context, text string) (*Speech, error) {
	if _, ok := s.provider.(DisabledProvider); ok {
		return nil, ErrSpeechDisabled
	}

	text = validate.Normalize(text)
	if err := ValidateOdiaText(text); err != nil {
		return nil, err
	}

	name := s.FileName(text)
	speech := &Speech{URL: URLPrefix + name, Path: filepath.Join(s.dir, name)}

	if _, err := os.Stat(speech.Path); err == nil {
		speech.Cached = true
		return speech, nil
	}

	_, err, shared := s.group.Do(name, func() (interface{}, error) {
		return nil, s.synthesize(ctx, text, speech.Path)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("speech ready", zap.String("file", name), zap.Bool("shared", shared))
	return speech, nil
}

// synthesize writes into a temporary file first so readers never see a
// partial file
func (s *Speaker) synthesize(ctx context.Context, text, path string) error {
	tmp := strings.TrimSuffix(path, filepath.Ext(path)) + ".tmp" + filepath.Ext(path)
	if err := s.provider.GenerateAudio(ctx, text, tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to synthesize speech: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to store speech: %w", err)
	}
	return nil
}

// Path resolves a served file name to its location on disk
func (s *Speaker) Path(name string) (string, error) {
	if !fileNamePattern.MatchString(name) {
		return "", ErrBadFileName
	}
	return filepath.Join(s.dir, name), nil
}
