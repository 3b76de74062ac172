package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/svelte-expert/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/svelte-expert/internal/domain"
)

func TestStateStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "chat.db")

	s, err := sqlite.NewStateStore(path)
	require.NoError(t, err)

	empty, err := s.LoadEntries(ctx, "chatMessages")
	require.NoError(t, err)
	assert.Empty(t, empty)

	at := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)
	entries := []domain.ChatEntry{
		{ID: "1", Sender: domain.SenderUser, Text: "<b>hi</b>", CreatedAt: at},
		{ID: "2", Sender: domain.SenderAssistant, Text: "hello", CreatedAt: at.Add(time.Second)},
	}
	require.NoError(t, s.SaveEntries(ctx, "chatMessages", entries))
	require.NoError(t, s.Close())

	// Reopen to prove persistence.
	s, err = sqlite.NewStateStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	got, err := s.LoadEntries(ctx, "chatMessages")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, entries[0].Text, got[0].Text)
	assert.Equal(t, domain.SenderAssistant, got[1].Sender)
	assert.True(t, got[1].CreatedAt.Equal(entries[1].CreatedAt))
}

func TestStateStoreOverwrites(t *testing.T) {
	ctx := context.Background()
	s, err := sqlite.NewStateStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.SaveEntries(ctx, "k", []domain.ChatEntry{{ID: "a", Text: "1"}, {ID: "b", Text: "2"}}))
	require.NoError(t, s.SaveEntries(ctx, "k", []domain.ChatEntry{{ID: "c", Text: "3"}}))
	require.NoError(t, s.SaveEntries(ctx, "other", []domain.ChatEntry{{ID: "d", Text: "4"}}))

	got, err := s.LoadEntries(ctx, "k")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].Text)
}
