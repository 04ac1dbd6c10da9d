package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/stretchr/testify/mock"

	"codeberg.org/snonux/shabda/internal/prompt"
)

// MockCompleter is a testify mock of a completion client
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, model string, msgs []prompt.Message) (string, error) {
	args := m.Called(ctx, model, msgs)
	return args.String(0), args.Error(1)
}

func (m *MockCompleter) Name() string {
	return "mock"
}

// Reply is one scripted completion result
type Reply struct {
	Text string
	Err  error
}

// ScriptedCompleter answers calls in order with its replies and records
// the messages it received
type ScriptedCompleter struct {
	mu      sync.Mutex
	Replies []Reply
	Calls   [][]prompt.Message
	Models  []string
}

// NewScriptedCompleter returns a completer answering with texts in order
func NewScriptedCompleter(texts ...string) *ScriptedCompleter {
	s := &ScriptedCompleter{}
	for _, text := range texts {
		s.Replies = append(s.Replies, Reply{Text: text})
	}
	return s
}

func (s *ScriptedCompleter) Complete(ctx context.Context, model string, msgs []prompt.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Calls = append(s.Calls, msgs)
	s.Models = append(s.Models, model)

	i := len(s.Calls) - 1
	if i >= len(s.Replies) {
		return "", fmt.Errorf("unexpected completion call %d", i+1)
	}
	return s.Replies[i].Text, s.Replies[i].Err
}

func (s *ScriptedCompleter) Name() string {
	return "scripted"
}

// CallCount returns the number of calls received
func (s *ScriptedCompleter) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}

// MockAudioProvider writes fake audio files and counts calls
type MockAudioProvider struct {
	mu          sync.Mutex
	Err         error
	Unavailable error
	Texts       []string
}

func (m *MockAudioProvider) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	m.mu.Lock()
	m.Texts = append(m.Texts, text)
	m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	return os.WriteFile(outputFile, []byte{0xFF, 0xFB, 0x90, 0x00}, 0644)
}

func (m *MockAudioProvider) Name() string {
	return "mock"
}

func (m *MockAudioProvider) IsAvailable() error {
	return m.Unavailable
}

// Calls returns the number of synthesized texts
func (m *MockAudioProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Texts)
}
