package audio

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/shabda/internal/testutil"
)

func TestSpeakerSpeak(t *testing.T) {
	provider := &testutil.MockAudioProvider{}
	speaker, err := NewSpeaker(provider, t.TempDir(), "mp3", testutil.NewTestLogger())
	require.NoError(t, err)

	ctx := context.Background()
	first, err := speaker.Speak(ctx, " ପାଣି ")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, URLPrefix+speaker.FileName("ପାଣି"), first.URL)
	testutil.AssertFileExists(t, first.Path)

	second, err := speaker.Speak(ctx, "ପାଣି")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.URL, second.URL)
	assert.Equal(t, 1, provider.Calls())
}

func TestSpeakerSharesConcurrentSynthesis(t *testing.T) {
	provider := &testutil.MockAudioProvider{}
	speaker, err := NewSpeaker(provider, t.TempDir(), "mp3", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := speaker.Speak(context.Background(), "ଧନ୍ୟବାଦ")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// late callers may find the file already written; none synthesize twice
	assert.LessOrEqual(t, provider.Calls(), 10)
	assert.GreaterOrEqual(t, provider.Calls(), 1)
}

func TestSpeakerRejectsInvalidText(t *testing.T) {
	provider := &testutil.MockAudioProvider{}
	speaker, err := NewSpeaker(provider, t.TempDir(), "mp3", nil)
	require.NoError(t, err)

	_, err = speaker.Speak(context.Background(), "hello")
	assert.True(t, errors.Is(err, ErrInvalidText))
	assert.Zero(t, provider.Calls())
}

func TestSpeakerProviderFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	provider := &testutil.MockAudioProvider{Err: errors.New("quota exceeded")}
	speaker, err := NewSpeaker(provider, dir, "mp3", nil)
	require.NoError(t, err)

	_, err = speaker.Speak(context.Background(), "ପାଣି")
	require.Error(t, err)

	matches, _ := filepath.Glob(filepath.Join(dir, "*"))
	assert.Empty(t, matches)
}

func TestSpeakerDisabled(t *testing.T) {
	speaker, err := NewSpeaker(DisabledProvider{}, t.TempDir(), "mp3", nil)
	require.NoError(t, err)

	assert.False(t, speaker.Enabled())
	_, err = speaker.Speak(context.Background(), "ପାଣି")
	assert.True(t, errors.Is(err, ErrSpeechDisabled))
}

func TestSpeakerPath(t *testing.T) {
	dir := t.TempDir()
	speaker, err := NewSpeaker(&testutil.MockAudioProvider{}, dir, "mp3", nil)
	require.NoError(t, err)

	name := speaker.FileName("ପାଣି")
	path, err := speaker.Path(name)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, name), path)

	for _, bad := range []string{"../secret.mp3", "x.mp3", name + ".exe", ""} {
		_, err := speaker.Path(bad)
		assert.True(t, errors.Is(err, ErrBadFileName), bad)
	}
}
