package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-assistant/internal/history"
	"github.com/jonathan/career-assistant/internal/llm/llmtest"
	"github.com/jonathan/career-assistant/internal/types"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func TestChat_LatestHistoryAnalysis(t *testing.T) {
	useFakeBackends(t, nil)
	histPath := filepath.Join(t.TempDir(), "history.db")

	_, err := runCLI(t, "analyze", "--input", testInput, "--history", histPath)
	require.NoError(t, err)

	out, err := runCLI(t, "chat", "-q", "What should I learn first?", "--history", histPath)
	require.NoError(t, err)
	assert.Contains(t, out, llmtest.FollowUpText)

	_, err = runCLI(t, "chat", "-q", "And after that?", "--history", histPath)
	require.NoError(t, err)

	store, err := history.Open(histPath)
	require.NoError(t, err)
	defer store.Close()
	transcript, err := store.Transcript(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 4, transcript.Len())

	turns := transcript.Turns()
	assert.Equal(t, types.RoleUser, turns[0].Role)
	assert.Equal(t, "What should I learn first?", turns[0].Content)
	assert.Equal(t, types.RoleAssistant, turns[1].Role)
	assert.Equal(t, "And after that?", turns[2].Content)
}

func TestChat_FromBundleFile(t *testing.T) {
	backends, _, _, chatClient := llmtest.HappyBackends()
	useFakeBackends(t, backends)
	dir := t.TempDir()
	bundlePath := filepath.Join(dir, "bundle.json")

	_, err := runCLI(t, "analyze", "--input", testInput, "--no-history", "--out", bundlePath)
	require.NoError(t, err)

	out, err := runCLI(t, "chat", "--question", "Which role fits best?", "--bundle", bundlePath, "--history", filepath.Join(dir, "unused.db"))
	require.NoError(t, err)
	assert.Contains(t, out, llmtest.FollowUpText)

	prompts := chatClient.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Which role fits best?")
	assert.Contains(t, prompts[0], "Machine Learning Engineer")

	_, err = os.Stat(filepath.Join(dir, "unused.db"))
	assert.True(t, os.IsNotExist(err), "bundle mode must not touch the history")
}

func TestChat_EmptyHistory(t *testing.T) {
	useFakeBackends(t, nil)

	_, err := runCLI(t, "chat", "-q", "Hello?", "--history", filepath.Join(t.TempDir(), "history.db"))
	assert.ErrorIs(t, err, history.ErrNoAnalyses)
}

func TestChat_RequiresQuestion(t *testing.T) {
	useFakeBackends(t, nil)

	_, err := runCLI(t, "chat", "--history", filepath.Join(t.TempDir(), "history.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question")
}

func TestChat_RejectsInvalidBundleFile(t *testing.T) {
	backends, _, _, chatClient := llmtest.HappyBackends()
	useFakeBackends(t, backends)
	path := filepath.Join(t.TempDir(), "bundle.json")
	require.NoError(t, writeFile(path, `{"input": "only input"}`))

	_, err := runCLI(t, "chat", "-q", "Hi?", "--bundle", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid bundle file")
	assert.Empty(t, chatClient.Prompts())
}
