package hostrpc_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/svelte-expert/internal/adapters/hostrpc"
	"github.com/PabloGalante/svelte-expert/internal/adapters/llm"
	"github.com/PabloGalante/svelte-expert/internal/adapters/storage/memory"
	"github.com/PabloGalante/svelte-expert/internal/adapters/workspace"
	"github.com/PabloGalante/svelte-expert/internal/app/analysis"
	"github.com/PabloGalante/svelte-expert/internal/app/chatcontext"
	"github.com/PabloGalante/svelte-expert/internal/app/conversation"
	"github.com/PabloGalante/svelte-expert/internal/app/panel"
	"github.com/PabloGalante/svelte-expert/internal/app/participant"
	"github.com/PabloGalante/svelte-expert/internal/domain"
)

// blockingModel streams nothing until its context ends.
type blockingModel struct{ started chan struct{} }

func (m blockingModel) Stream(ctx context.Context, _ []domain.ModelMessage) (iter.Seq2[string, error], error) {
	return func(yield func(string, error) bool) {
		close(m.started)
		<-ctx.Done()
		yield("", ctx.Err())
	}, nil
}

type line map[string]any

func run(t *testing.T, model domain.LanguageModel, root string, input ...string) []line {
	t.Helper()

	files := workspace.NewResolver(root, nil)
	orch := participant.NewOrchestrator(chatcontext.NewBuilder(files), model)

	var out bytes.Buffer
	srv := hostrpc.NewServer(orch, analysis.NewService(files, nil), &out)

	conv := conversation.NewService(orch, memory.NewStateStore(), conversation.PanelSettings{
		Mode:    panel.ModeIntegrated,
		Factory: func() panel.Surface { return srv.Surface() },
	})
	sess, err := conv.Open(context.Background())
	require.NoError(t, err)
	defer sess.Close()
	srv.Attach(sess)

	require.NoError(t, srv.Serve(context.Background(), strings.NewReader(strings.Join(input, "\n")+"\n")))
	return parse(t, out.Bytes())
}

func parse(t *testing.T, b []byte) []line {
	t.Helper()
	var out []line
	sc := bufio.NewScanner(bytes.NewReader(b))
	sc.Buffer(nil, 1<<20)
	for sc.Scan() {
		var l line
		require.NoError(t, json.Unmarshal(sc.Bytes(), &l), sc.Text())
		out = append(out, l)
	}
	return out
}

func forRequest(lines []line, id string) []line {
	var out []line
	for _, l := range lines {
		if l["request_id"] == id {
			out = append(out, l)
		}
	}
	return out
}

func types(lines []line) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l["type"].(string))
	}
	return out
}

func TestPing(t *testing.T) {
	lines := run(t, llm.NewMockLLM(), t.TempDir(), `{"action":"ping","request_id":7}`)
	require.Len(t, lines, 1)
	assert.Equal(t, "ok", lines[0]["type"])
	assert.Equal(t, "7", lines[0]["request_id"])
}

func TestInvalidAndUnknown(t *testing.T) {
	lines := run(t, llm.NewMockLLM(), t.TempDir(), `not json`, `{"action":"dance","request_id":"x"}`)
	require.Len(t, lines, 2)
	assert.Equal(t, "error", lines[0]["type"])
	assert.Equal(t, "error", lines[1]["type"])
	assert.Contains(t, lines[1]["message"], "dance")
}

func TestChatStreamsInOrder(t *testing.T) {
	lines := run(t, llm.NewMockLLM("one ", "two"), t.TempDir(),
		`{"action":"chat","request_id":"c1","prompt":"hello"}`)

	got := forRequest(lines, "c1")
	assert.Equal(t, []string{"progress", "markdown", "markdown", "markdown", "metadata", "done"}, types(got))
	assert.Equal(t, participant.ProgressText, got[0]["text"])
	assert.Equal(t, "one ", got[1]["text"])
	assert.Equal(t, "two", got[2]["text"])
	assert.Contains(t, got[3]["text"], "**Resources**")
	assert.Equal(t, "completed", got[5]["state"])
}

func TestChatReplaysHistoryAndSelection(t *testing.T) {
	model := llm.NewMockLLM("ok")
	run(t, model, t.TempDir(), `{"action":"chat","request_id":"c1","prompt":"explain #selection:",`+
		`"history":[{"role":"user","prompt":"hi"},{"role":"assistant","parts":[{"kind":"markdown","text":"hello"},{"kind":"anchor","value":"x"}]}],`+
		`"selection":{"text":"let x = $state(1);","file_name":"A.svelte"}}`)

	calls := model.Calls()
	require.Len(t, calls, 1)
	msgs := calls[0]
	require.Len(t, msgs, 4)
	assert.Equal(t, domain.ModelMessage{Role: domain.RoleAssistant, Content: "hello"}, msgs[2])
	assert.Contains(t, msgs[3].Content, "```svelte\nlet x = $state(1);\n```")
}

func TestChatRejectsConcurrentAndCancels(t *testing.T) {
	started := make(chan struct{})
	model := blockingModel{started: started}

	pr, pw := io.Pipe()
	files := workspace.NewResolver(t.TempDir(), nil)
	orch := participant.NewOrchestrator(chatcontext.NewBuilder(files), model)
	var out safeBuffer
	srv := hostrpc.NewServer(orch, analysis.NewService(files, nil), &out)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background(), pr) }()

	_, _ = pw.Write([]byte(`{"action":"chat","request_id":"a","prompt":"slow"}` + "\n"))
	<-started
	_, _ = pw.Write([]byte(`{"action":"chat","request_id":"b","prompt":"second"}` + "\n"))
	_, _ = pw.Write([]byte(`{"action":"cancel","request_id":"c","target_id":"a"}` + "\n"))
	pw.Close()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return")
	}

	lines := parse(t, out.Bytes())

	b := forRequest(lines, "b")
	require.Len(t, b, 1)
	assert.Equal(t, "error", b[0]["type"])
	assert.Equal(t, hostrpc.ErrBusy.Error(), b[0]["message"])

	c := forRequest(lines, "c")
	require.Len(t, c, 1)
	assert.Equal(t, true, c[0]["canceled"])

	a := forRequest(lines, "a")
	require.NotEmpty(t, a)
	last := a[len(a)-1]
	assert.Equal(t, "done", last["type"])
	assert.Equal(t, "failed", last["state"])
	assert.Equal(t, true, last["canceled"])
}

func TestCancelWithoutActiveChat(t *testing.T) {
	lines := run(t, llm.NewMockLLM(), t.TempDir(), `{"action":"cancel","request_id":"c","target_id":"zzz"}`)
	require.Len(t, lines, 1)
	assert.Equal(t, false, lines[0]["canceled"])
}

func TestAnalyzeActions(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "B.svelte"), []byte("<script>\n  export let size;\n</script>"), 0o644))

	lines := run(t, llm.NewMockLLM(), root,
		`{"action":"analyze_component","request_id":"1","path":"B.svelte"}`,
		`{"action":"analyze_component","request_id":"2","path":"main.ts"}`,
		`{"action":"analyze_project","request_id":"3"}`,
		`{"action":"route_template","request_id":"4","path":"/items/[id]"}`,
		`{"action":"analyze_component","request_id":"5","path":"Gone.svelte"}`,
	)

	r1 := forRequest(lines, "1")[0]
	assert.Equal(t, "report", r1["type"])
	assert.Contains(t, r1["markdown"], "`size`")

	assert.Equal(t, "info", forRequest(lines, "2")[0]["type"])
	assert.Equal(t, "info", forRequest(lines, "3")[0]["type"])

	r4 := forRequest(lines, "4")[0]
	files := r4["files"].(map[string]any)
	assert.Contains(t, files["+page.server.ts"], "id")

	r5 := forRequest(lines, "5")[0]
	assert.Equal(t, "error", r5["type"])
	assert.Equal(t, "File not found", r5["message"])
}

func TestOpenChatAndAsk(t *testing.T) {
	lines := run(t, llm.NewMockLLM("answer"), t.TempDir(),
		`{"action":"open_chat","request_id":"o"}`,
		`{"action":"ask","request_id":"q","text":"what is <slot>?"}`,
		`{"action":"close_chat","request_id":"x"}`,
	)

	assert.Equal(t, "ok", forRequest(lines, "o")[0]["type"])
	q := forRequest(lines, "q")
	require.Len(t, q, 1)
	assert.Equal(t, "ok", q[0]["type"])
	assert.EqualValues(t, 2, q[0]["messages"])

	var panels []string
	for _, l := range lines {
		if l["type"] == "panel" {
			panels = append(panels, l["html"].(string))
		}
	}
	require.Len(t, panels, 3, "open, user message, reply")
	assert.Contains(t, panels[1], "what is &lt;slot&gt;?")
	assert.Contains(t, panels[2], "answer")
}
