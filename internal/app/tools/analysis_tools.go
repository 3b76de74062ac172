package tools

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/PabloGalante/svelte-expert/internal/analyzer"
	"github.com/PabloGalante/svelte-expert/internal/observability"
)

const (
	ComponentAnalysisName = "component_analysis"
	UpgradeGuidanceName   = "upgrade_guidance"
	RouteTemplateName     = "route_template"
	ViteConfigName        = "vite_config"
)

// ComponentAnalysisTool analyzes the source of a Svelte component.
//
// Input: {"content": "...", "file_name": "Button.svelte"}
type ComponentAnalysisTool struct{}

func (ComponentAnalysisTool) Name() string { return ComponentAnalysisName }

func (ComponentAnalysisTool) Call(ctx context.Context, tctx ToolContext, input map[string]any) (map[string]any, error) {
	content := getString(input, "content")
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%s: missing content", ComponentAnalysisName)
	}

	a := analyzer.AnalyzeComponent(content)
	observability.LoggerFromContext(ctx).Debug("component analyzed",
		"session_id", tctx.SessionID,
		"file", getString(input, "file_name"),
		"version", a.SvelteVersion,
		"props", len(a.Props))

	return map[string]any{
		"version":  a.SvelteVersion,
		"findings": a.Findings(),
		"summary":  analyzer.ComponentReport(a),
	}, nil
}

// UpgradeGuidanceTool reports the detected Svelte version and migration hints.
//
// Input: {"content": "..."}
type UpgradeGuidanceTool struct{}

func (UpgradeGuidanceTool) Name() string { return UpgradeGuidanceName }

func (UpgradeGuidanceTool) Call(_ context.Context, _ ToolContext, input map[string]any) (map[string]any, error) {
	content := getString(input, "content")
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%s: missing content", UpgradeGuidanceName)
	}

	v := analyzer.DetectVersion(content)
	guidance := analyzer.UpgradeGuidance(content)

	var b strings.Builder
	fmt.Fprintf(&b, "Detected Svelte version: %s\n", v.Version)
	for _, n := range v.Notes {
		fmt.Fprintf(&b, "- %s\n", n)
	}
	if len(guidance) > 0 {
		b.WriteString("\nUpgrade guidance:\n")
		for _, g := range guidance {
			fmt.Fprintf(&b, "- %s\n", g)
		}
	}

	return map[string]any{
		"version":  v.Version,
		"notes":    v.Notes,
		"guidance": guidance,
		"summary":  b.String(),
	}, nil
}

// RouteTemplateTool scaffolds a SvelteKit route.
//
// Input: {"route_path": "/users/[id]"}
type RouteTemplateTool struct{}

func (RouteTemplateTool) Name() string { return RouteTemplateName }

func (RouteTemplateTool) Call(_ context.Context, _ ToolContext, input map[string]any) (map[string]any, error) {
	routePath := getString(input, "route_path")
	if routePath == "" {
		routePath = "/"
	}

	tpl := analyzer.GenerateRouteTemplate(routePath)
	summary := fmt.Sprintf("Route %s\n\n+page.svelte:\n```svelte\n%s\n```\n\n+page.server.ts:\n```ts\n%s\n```\n",
		routePath, tpl.Page, tpl.Server)

	return map[string]any{
		"route_path": routePath,
		"page":       tpl.Page,
		"server":     tpl.Server,
		"summary":    summary,
	}, nil
}

// FileFinder locates and reads workspace files.
type FileFinder interface {
	FindFiles(ctx context.Context, patterns ...string) ([]string, error)
	ReadFile(rel string) (string, error)
}

// ViteConfigTool analyzes the workspace's vite.config file.
//
// Input: {}. Output "found" is false when the workspace has no config.
type ViteConfigTool struct {
	files    FileFinder
	analyzer analyzer.ViteAnalyzer
}

func NewViteConfigTool(files FileFinder, a analyzer.ViteAnalyzer) *ViteConfigTool {
	if a == nil {
		a = analyzer.RegexViteAnalyzer{}
	}
	return &ViteConfigTool{files: files, analyzer: a}
}

func (t *ViteConfigTool) Name() string { return ViteConfigName }

func (t *ViteConfigTool) Call(ctx context.Context, _ ToolContext, _ map[string]any) (map[string]any, error) {
	rel, content, ok, err := FindViteConfig(ctx, t.files)
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[string]any{"found": false}, nil
	}

	s, err := t.analyzer.AnalyzeVite(ctx, path.Base(rel), content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ViteConfigName, err)
	}

	return map[string]any{
		"found":       true,
		"file":        rel,
		"suggestions": s,
		"summary":     analyzer.ProjectReport(nil, &s),
	}, nil
}

// FindViteConfig reads the first vite.config.{js,ts} at the workspace root.
func FindViteConfig(ctx context.Context, files FileFinder) (rel, content string, ok bool, err error) {
	matches, err := files.FindFiles(ctx, "vite.config.js", "vite.config.ts")
	if err != nil {
		return "", "", false, err
	}
	if len(matches) == 0 {
		return "", "", false, nil
	}
	content, err = files.ReadFile(matches[0])
	if err != nil {
		return "", "", false, err
	}
	return matches[0], content, true, nil
}
