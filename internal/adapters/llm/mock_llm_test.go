package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/svelte-expert/internal/adapters/llm"
	"github.com/PabloGalante/svelte-expert/internal/domain"
)

func collect(t *testing.T, m domain.LanguageModel, ctx context.Context) ([]string, error) {
	t.Helper()
	seq, err := m.Stream(ctx, []domain.ModelMessage{{Role: domain.RoleUser, Content: "hi"}})
	require.NoError(t, err)

	var out []string
	for f, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, f)
	}
	return out, nil
}

func TestMockLLMScriptedFragments(t *testing.T) {
	m := llm.NewMockLLM("a", "b", "c")
	got, err := collect(t, m, context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	require.Len(t, m.Calls(), 1)
	assert.Equal(t, "hi", m.Calls()[0][0].Content)
}

func TestMockLLMEchoesByDefault(t *testing.T) {
	got, err := collect(t, llm.NewMockLLM(), context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Contains(t, got[1], `"hi"`)
}

func TestMockLLMStreamError(t *testing.T) {
	boom := errors.New("boom")
	got, err := collect(t, llm.NewMockLLM("a").FailAfter(boom), context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a"}, got)
}

func TestMockLLMDispatchError(t *testing.T) {
	boom := errors.New("quota")
	_, err := llm.NewMockLLM().FailDispatch(boom).Stream(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
}

func TestMockLLMStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := collect(t, llm.NewMockLLM("a", "b"), ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, got)
}
