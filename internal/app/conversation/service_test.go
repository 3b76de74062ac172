package conversation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/PabloGalante/svelte-expert/internal/adapters/llm"
	"github.com/PabloGalante/svelte-expert/internal/adapters/storage/memory"
	"github.com/PabloGalante/svelte-expert/internal/app/chatcontext"
	"github.com/PabloGalante/svelte-expert/internal/app/conversation"
	"github.com/PabloGalante/svelte-expert/internal/app/panel"
	"github.com/PabloGalante/svelte-expert/internal/app/participant"
	"github.com/PabloGalante/svelte-expert/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type noFiles struct{}

func (noFiles) Resolve(context.Context, string) (domain.ResolvedFile, error) {
	return domain.ResolvedFile{}, domain.ErrFileNotFound
}

type discard struct{}

func (discard) Progress(string)         {}
func (discard) Markdown(string)         {}
func (discard) Metadata(map[string]any) {}

func newService(model domain.LanguageModel, mode panel.Mode) (*conversation.Service, *memory.StateStore) {
	store := memory.NewStateStore()
	orch := participant.NewOrchestrator(chatcontext.NewBuilder(noFiles{}), model)
	return conversation.NewService(orch, store, conversation.PanelSettings{
		Mode:       mode,
		ReplyDelay: time.Hour,
		StateKey:   "chatMessages",
	}), store
}

func TestOpenAndAskGrowsHistory(t *testing.T) {
	ctx := context.Background()
	model := llm.NewMockLLM("Use ", "$state.")
	svc, _ := newService(model, panel.ModeDemo)

	sess, err := svc.Open(ctx)
	require.NoError(t, err)
	defer sess.Close()

	if sess.ID == "" {
		t.Fatalf("expected session id, got empty")
	}
	got, ok := svc.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)

	res, err := svc.Ask(ctx, sess, domain.ChatRequest{Prompt: "how do I declare state?"}, discard{})
	require.NoError(t, err)
	assert.Equal(t, participant.StateCompleted, res.State)
	assert.True(t, res.Footer, "first turn gets the footer")

	history := sess.History()
	require.Len(t, history, 2)
	assert.Equal(t, domain.UserTurn{Prompt: "how do I declare state?"}, history[0])
	reply, ok := history[1].(domain.AssistantTurn)
	require.True(t, ok)
	assert.Equal(t, res.Text, reply.MarkdownText())

	res, err = svc.Ask(ctx, sess, domain.ChatRequest{Prompt: "and derived?"}, discard{})
	require.NoError(t, err)
	assert.False(t, res.Footer)
	assert.Len(t, sess.History(), 4)

	calls := model.Calls()
	require.Len(t, calls, 2)
	assert.Len(t, calls[1], 4, "base, replayed user, replayed assistant, new prompt")
}

func TestFailedAskIsRecorded(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(llm.NewMockLLM().FailDispatch(assert.AnError), panel.ModeDemo)

	sess, err := svc.Open(ctx)
	require.NoError(t, err)
	defer sess.Close()

	res, err := svc.Ask(ctx, sess, domain.ChatRequest{Prompt: "q"}, discard{})
	require.NoError(t, err)
	assert.Equal(t, participant.StateFailed, res.State)
	assert.Len(t, sess.History(), 2)
}

func TestCloseStopsSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(llm.NewMockLLM(), panel.ModeDemo)

	sess, err := svc.Open(ctx)
	require.NoError(t, err)
	require.NoError(t, sess.Panel().SendMessage(ctx, "pending reply"))

	sess.Close()
	sess.Close()

	_, ok := svc.Get(sess.ID)
	assert.False(t, ok)

	_, err = svc.Ask(ctx, sess, domain.ChatRequest{Prompt: "q"}, discard{})
	assert.ErrorIs(t, err, conversation.ErrSessionClosed)
	assert.Len(t, sess.Panel().Messages(), 1, "scheduled reply never fires after close")
}

func TestIntegratedPanelUsesParticipant(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(llm.NewMockLLM("Runes ", "replace $:."), panel.ModeIntegrated)

	sess, err := svc.Open(ctx)
	require.NoError(t, err)
	defer sess.Close()

	require.NoError(t, sess.Panel().SendMessage(ctx, "what replaced $:?"))

	msgs := sess.Panel().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.SenderAssistant, msgs[1].Sender)
	assert.Contains(t, msgs[1].Text, "Runes replace $:.")
	assert.Len(t, sess.History(), 2)

	saved, err := store.LoadEntries(ctx, "chatMessages")
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestOpenRestoresPanelLog(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(llm.NewMockLLM(), panel.ModeDemo)
	require.NoError(t, store.SaveEntries(ctx, "chatMessages", []domain.ChatEntry{{Sender: domain.SenderUser, Text: "old"}}))

	sess, err := svc.Open(ctx)
	require.NoError(t, err)
	defer svc.CloseAll()

	assert.Len(t, sess.Panel().Messages(), 1)
}
