package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/svelte-expert/internal/adapters/storage/memory"
	"github.com/PabloGalante/svelte-expert/internal/domain"
)

func TestStateStoreMissingKeyIsEmpty(t *testing.T) {
	got, err := memory.NewStateStore().LoadEntries(context.Background(), "chatMessages")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStateStoreReplacesLog(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStateStore()

	first := []domain.ChatEntry{{Sender: domain.SenderUser, Text: "a"}}
	require.NoError(t, s.SaveEntries(ctx, "k", first))
	first[0].Text = "mutated"

	require.NoError(t, s.SaveEntries(ctx, "other", []domain.ChatEntry{{Text: "x"}}))

	got, err := s.LoadEntries(ctx, "k")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Text, "store keeps its own copy")

	require.NoError(t, s.SaveEntries(ctx, "k", nil))
	got, err = s.LoadEntries(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, got)
}
