package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/svelte-expert/internal/config"
	"github.com/PabloGalante/svelte-expert/internal/domain"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestRouteCommand(t *testing.T) {
	out := execute(t, "route", "/blog/[slug]")
	assert.Contains(t, out, "// +page.server.ts\n")
	assert.Contains(t, out, "// +page.svelte\n")
	assert.Contains(t, out, "const { slug } = params;")
}

func TestConfigShowMasksKey(t *testing.T) {
	t.Setenv("SVELTE_EXPERT_LLM_API_KEY", "secret")
	out := execute(t, "config", "show")

	var c config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &c))
	assert.Equal(t, "********", c.LLM.APIKey)
	assert.Equal(t, "memory", c.Storage.Backend)
	assert.NotContains(t, out, "secret")
}

func TestAnalyzeComponentCommand(t *testing.T) {
	ws := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(ws, "Card.svelte"),
		[]byte("<script>\n  export let title;\n</script>\n<h1>{title}</h1>"), 0o644))

	out := execute(t, "--workspace", ws, "analyze", "component", "--raw", "Card.svelte")
	assert.Contains(t, out, "- `title`")

	out = execute(t, "--workspace", ws, "analyze", "component", "--raw", "main.ts")
	assert.Contains(t, out, "please open a Svelte (.svelte) file to analyze")
}

func TestAnalyzeProjectNotice(t *testing.T) {
	out := execute(t, "--workspace", t.TempDir(), "analyze", "project")
	assert.Contains(t, out, "no SvelteKit project detected")
}

func TestAskWithMockModel(t *testing.T) {
	out := execute(t, "--workspace", t.TempDir(), "ask", "--raw", "what", "is", "a", "store?")
	assert.Contains(t, out, "**Resources**")
}

func TestNewStateStore(t *testing.T) {
	ctx := context.Background()

	s, closeFn, err := newStateStore(ctx, config.StorageConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.Nil(t, closeFn)
	assert.NotNil(t, s)

	s, closeFn, err = newStateStore(ctx, config.StorageConfig{Backend: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	defer closeFn()

	entries := []domain.ChatEntry{{ID: "1", Sender: domain.SenderUser, Text: "hi"}}
	require.NoError(t, s.SaveEntries(ctx, "k", entries))
	got, err := s.LoadEntries(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "hi", got[0].Text)
}

func TestAskThroughPanel(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cfg.yaml")
	db := filepath.Join(dir, "chat.db")
	require.NoError(t, os.WriteFile(cfgPath, []byte("storage:\n  backend: sqlite\n  sqlite_path: "+db+"\n"), 0o644))

	out := execute(t, "--config", cfgPath, "--workspace", dir, "ask", "--panel", "--raw", "hello")
	assert.Contains(t, out, `you asked`)

	store, closeFn, err := newStateStore(context.Background(), config.StorageConfig{Backend: "sqlite", SQLitePath: db})
	require.NoError(t, err)
	defer closeFn()
	entries, err := store.LoadEntries(context.Background(), "chatMessages")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "hello", entries[0].Text)
	assert.Equal(t, domain.SenderAssistant, entries[1].Sender)
}

func TestVersionCommand(t *testing.T) {
	assert.Equal(t, "svelte-expert dev\n", execute(t, "version"))
}
