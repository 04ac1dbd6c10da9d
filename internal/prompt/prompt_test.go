package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReturnsSystemThenUser(t *testing.T) {
	for task := range templates {
		t.Run(task.String(), func(t *testing.T) {
			msgs, err := Build(task, Request{Items: []string{"ନମସ୍କାର"}})
			require.NoError(t, err)
			require.Len(t, msgs, 2)
			assert.Equal(t, RoleSystem, msgs[0].Role)
			assert.Equal(t, RoleUser, msgs[1].Role)
			assert.NotEmpty(t, msgs[0].Content)
			assert.NotEmpty(t, msgs[1].Content)
		})
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	req := Request{Existing: []string{"water", "book"}, Count: 7}
	first, err := Build(TaskWordGeneration, req)
	require.NoError(t, err)
	second, err := Build(TaskWordGeneration, req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildEmbedsCountAndExisting(t *testing.T) {
	msgs, err := Build(TaskWordGeneration, Request{Existing: []string{"water", " ", "book"}, Count: 7})
	require.NoError(t, err)

	user := msgs[1].Content
	assert.Contains(t, user, "7 simple")
	assert.Contains(t, user, "water, book")
}

func TestBuildDefaultCounts(t *testing.T) {
	tests := []struct {
		task Task
		want string
	}{
		{TaskWordGeneration, "5 simple"},
		{TaskPhraseGeneration, "10 short"},
		{TaskOdiaPhraseGeneration, "10 short"},
	}

	for _, tt := range tests {
		t.Run(tt.task.String(), func(t *testing.T) {
			msgs, err := Build(tt.task, Request{})
			require.NoError(t, err)
			assert.Contains(t, msgs[1].Content, tt.want)
		})
	}
}

func TestBuildWithoutExistingOmitsExclusion(t *testing.T) {
	msgs, err := Build(TaskOdiaPhraseGeneration, Request{})
	require.NoError(t, err)
	assert.NotContains(t, msgs[1].Content, "already known")
}

func TestBuildCapsExisting(t *testing.T) {
	var existing []string
	for i := 0; i < 10; i++ {
		existing = append(existing, fmt.Sprintf("w%d", i))
	}

	msgs, err := Build(TaskWordGeneration, Request{Existing: existing, MaxExisting: 3})
	require.NoError(t, err)

	user := msgs[1].Content
	assert.Contains(t, user, "w7, w8, w9")
	assert.NotContains(t, user, "w6")
}

func TestBuildItemTasksNeedItems(t *testing.T) {
	for _, task := range []Task{TaskOdiaTranslation, TaskPhraseTranslation, TaskEnglishTranslation, TaskRomanization, TaskPronunciation} {
		t.Run(task.String(), func(t *testing.T) {
			_, err := Build(task, Request{Items: []string{"  "}})
			assert.Error(t, err)
		})
	}
}

func TestBuildKeepsItemOrder(t *testing.T) {
	msgs, err := Build(TaskRomanization, Request{Items: []string{"ଧନ୍ୟବାଦ", "ନମସ୍କାର"}})
	require.NoError(t, err)

	user := msgs[1].Content
	first := strings.Index(user, "1. ଧନ୍ୟବାଦ")
	second := strings.Index(user, "2. ନମସ୍କାର")
	assert.True(t, first >= 0 && second > first, "items out of order: %q", user)
}

func TestBuildUnknownTask(t *testing.T) {
	_, err := Build(Task(99), Request{})
	assert.Error(t, err)
	assert.Equal(t, "task(99)", Task(99).String())
}
