package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *TranscriptStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tribunal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestChatRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendChat(ctx, "user", "Show my cases"))
	require.NoError(t, s.AppendChat(ctx, "assistant", "No cases found."))

	entries, err := s.RecentChat(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "user", entries[0].Role)
	assert.Equal(t, "Show my cases", entries[0].Content)
	assert.Equal(t, "assistant", entries[1].Role)
}

func TestRecentChatHonorsLimitKeepingNewest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, msg := range []string{"one", "two", "three", "four"} {
		require.NoError(t, s.AppendChat(ctx, "user", msg))
	}

	entries, err := s.RecentChat(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "three", entries[0].Content)
	assert.Equal(t, "four", entries[1].Content)
}

func TestTrialTranscriptOrderedByEmission(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendTrialEvent(ctx, "12", "turn", 0, "judge", "Opening Argument", "Court is in session."))
	require.NoError(t, s.AppendTrialEvent(ctx, "12", "turn", 1, "prosecution", "Opening Argument", "The evidence will show."))
	require.NoError(t, s.AppendTrialEvent(ctx, "12", "verdict", -1, "judge", "", "Verdict: GUILTY"))
	require.NoError(t, s.AppendTrialEvent(ctx, "13", "turn", 0, "judge", "Opening Argument", "Another matter."))

	entries, err := s.TrialTranscript(ctx, "12")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 0, entries[0].Turn)
	assert.Equal(t, 1, entries[1].Turn)
	assert.Equal(t, "verdict", entries[2].Kind)

	other, err := s.TrialTranscript(ctx, "13")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestTrialTranscriptEmptyCase(t *testing.T) {
	s := openTestStore(t)
	entries, err := s.TrialTranscript(context.Background(), "404")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
