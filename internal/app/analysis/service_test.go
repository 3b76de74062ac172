package analysis_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/svelte-expert/internal/adapters/workspace"
	"github.com/PabloGalante/svelte-expert/internal/analyzer"
	"github.com/PabloGalante/svelte-expert/internal/app/analysis"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func newService(root string) *analysis.Service {
	return analysis.NewService(workspace.NewResolver(root, nil), analyzer.ASTViteAnalyzer{})
}

func TestAnalyzeComponent(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/lib/Button.svelte": "<script>\n  import { createEventDispatcher } from 'svelte';\n  const dispatch = createEventDispatcher();\n  export let label = 'ok';\n</script>\n<button on:click={() => dispatch('press')}>{label}</button>\n",
	})

	report, err := newService(root).AnalyzeComponent(context.Background(), "src/lib/Button.svelte")
	require.NoError(t, err)
	assert.Contains(t, report, "# Svelte Component Analysis")
	assert.Contains(t, report, "## Props")
	assert.Contains(t, report, "`label`")
	assert.Contains(t, report, "## Events")
	assert.Contains(t, report, "`press`")
	assert.NotContains(t, report, "## Stores")
}

func TestAnalyzeComponentAbsolutePath(t *testing.T) {
	root := writeTree(t, map[string]string{"A.svelte": "<h1>hi</h1>"})

	_, err := newService(root).AnalyzeComponent(context.Background(), filepath.Join(root, "A.svelte"))
	require.NoError(t, err)
}

func TestAnalyzeComponentRejectsOtherFiles(t *testing.T) {
	_, err := newService(t.TempDir()).AnalyzeComponent(context.Background(), "src/app.ts")
	assert.ErrorIs(t, err, analysis.ErrNotSvelteFile)
	assert.True(t, analysis.IsNotice(err))
}

func TestAnalyzeComponentMissingFile(t *testing.T) {
	_, err := newService(t.TempDir()).AnalyzeComponent(context.Background(), "Nope.svelte")
	require.Error(t, err)
	assert.ErrorIs(t, err, workspace.ErrNotFound)
	assert.False(t, analysis.IsNotice(err))
}

func TestAnalyzeProject(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/routes/+page.svelte":             "<h1>home</h1>",
		"src/routes/blog/[slug]/+page.svelte": "<h1>post</h1>",
		"vite.config.ts":                      "import { defineConfig } from 'vite';\nexport default defineConfig({ plugins: [] });\n",
		"node_modules/x/src/routes/[y]/a.js":  "",
	})

	report, err := newService(root).AnalyzeProject(context.Background())
	require.NoError(t, err)
	assert.Contains(t, report, "# SvelteKit Project Analysis")
	assert.Contains(t, report, "Routing type: **parameterized**")
	assert.Contains(t, report, "`slug`")
	assert.NotContains(t, report, "`y`")
	assert.Contains(t, report, "## Vite Configuration")
	assert.Contains(t, report, "### SvelteKit Configuration")
}

func TestAnalyzeProjectRoutesOnly(t *testing.T) {
	root := writeTree(t, map[string]string{"src/pages/index.svelte": ""})

	report, err := newService(root).AnalyzeProject(context.Background())
	require.NoError(t, err)
	assert.Contains(t, report, "Routing type: **pages**")
	assert.NotContains(t, report, "## Vite Configuration")
}

func TestAnalyzeProjectNothingFound(t *testing.T) {
	root := writeTree(t, map[string]string{"README.md": "# hi"})

	_, err := newService(root).AnalyzeProject(context.Background())
	assert.ErrorIs(t, err, analysis.ErrNoProject)
	assert.True(t, analysis.IsNotice(err))
}

func TestRouteTemplate(t *testing.T) {
	tpl := newService(t.TempDir()).RouteTemplate("/users/[id]")
	assert.Contains(t, tpl.Page, "id")
	assert.Contains(t, tpl.Server, "load")
	assert.Len(t, tpl.Files(), 2)

	assert.Contains(t, newService(t.TempDir()).RouteTemplate("").Page, "SvelteKit Route")
}
