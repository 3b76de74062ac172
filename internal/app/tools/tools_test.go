package tools_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/svelte-expert/internal/analyzer"
	"github.com/PabloGalante/svelte-expert/internal/app/tools"
)

type fakeFiles struct {
	files map[string]string
}

func (f fakeFiles) FindFiles(_ context.Context, patterns ...string) ([]string, error) {
	var out []string
	for _, p := range patterns {
		if _, ok := f.files[p]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakeFiles) ReadFile(rel string) (string, error) {
	return f.files[rel], nil
}

func newRegistry(files map[string]string) *tools.Registry {
	return tools.NewRegistry(
		tools.ComponentAnalysisTool{},
		tools.UpgradeGuidanceTool{},
		tools.RouteTemplateTool{},
		tools.NewViteConfigTool(fakeFiles{files: files}, nil),
	)
}

func TestRegistryNames(t *testing.T) {
	r := newRegistry(nil)
	assert.Equal(t, []string{"component_analysis", "route_template", "upgrade_guidance", "vite_config"}, r.Names())

	_, err := r.Call(context.Background(), "nope", tools.ToolContext{}, nil)
	assert.ErrorContains(t, err, `unknown tool "nope"`)
}

func TestComponentAnalysisTool(t *testing.T) {
	r := newRegistry(nil)
	out, err := r.Call(context.Background(), tools.ComponentAnalysisName, tools.ToolContext{SessionID: "s1"}, map[string]any{
		"content":   "<script>export let name;</script>",
		"file_name": "Hello.svelte",
	})
	require.NoError(t, err)

	assert.Equal(t, "4", out["version"])
	assert.Contains(t, tools.Summary(out), "## Props\n\n- `name`")
	f, ok := out["findings"].(analyzer.Findings)
	require.True(t, ok)
	assert.Equal(t, []string{"name"}, f.Items("props"))

	_, err = r.Call(context.Background(), tools.ComponentAnalysisName, tools.ToolContext{}, map[string]any{})
	assert.Error(t, err)
}

func TestUpgradeGuidanceTool(t *testing.T) {
	out, err := tools.UpgradeGuidanceTool{}.Call(context.Background(), tools.ToolContext{}, map[string]any{
		"content": "$: doubled = count * 2",
	})
	require.NoError(t, err)
	assert.Equal(t, "4", out["version"])
	assert.Contains(t, tools.Summary(out), "Detected Svelte version: 4")
	assert.Contains(t, tools.Summary(out), "$derived")
}

func TestRouteTemplateTool(t *testing.T) {
	out, err := tools.RouteTemplateTool{}.Call(context.Background(), tools.ToolContext{}, map[string]any{"route_path": "/p/[id]"})
	require.NoError(t, err)
	assert.Contains(t, out["page"], "$page.params")
	assert.Contains(t, tools.Summary(out), "```svelte")

	out, err = tools.RouteTemplateTool{}.Call(context.Background(), tools.ToolContext{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/", out["route_path"])
}

func TestViteConfigTool(t *testing.T) {
	out, err := newRegistry(nil).Call(context.Background(), tools.ViteConfigName, tools.ToolContext{}, nil)
	require.NoError(t, err)
	assert.Equal(t, false, out["found"])

	out, err = newRegistry(map[string]string{"vite.config.ts": "export default {}"}).
		Call(context.Background(), tools.ViteConfigName, tools.ToolContext{}, nil)
	require.NoError(t, err)
	assert.Equal(t, true, out["found"])
	assert.Equal(t, "vite.config.ts", out["file"])
	assert.Contains(t, tools.Summary(out), "### Performance Optimization")
}
