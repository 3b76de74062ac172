package chatcontext

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/svelte-expert/internal/app/reference"
	"github.com/PabloGalante/svelte-expert/internal/app/tools"
	"github.com/PabloGalante/svelte-expert/internal/domain"
)

const (
	CommandHelp    = "help"
	CommandAnalyze = "analyze"
	CommandUpgrade = "upgrade"
	CommandRoute   = "route"
	CommandVite    = "vite"
)

// Commands lists the slash commands the participant understands.
var Commands = []string{CommandHelp, CommandAnalyze, CommandUpgrade, CommandRoute, CommandVite}

// command wraps the prompt for a recognized command. handled is false when
// the request carries no command the builder knows.
func (b *Builder) command(ctx context.Context, in Input, refs reference.Bundle, editor domain.Editor) (string, bool, error) {
	prompt := in.Request.Prompt
	tctx := tools.ToolContext{SessionID: string(in.SessionID)}

	switch in.Request.Command {
	case CommandHelp:
		return wrap(helpInstructions, "", prompt), true, nil

	case CommandAnalyze, CommandUpgrade:
		src, label, ok, err := b.subject(ctx, refs, editor)
		if err != nil {
			return "", true, err
		}
		if !ok {
			return fmt.Sprintf("The user ran /%s but there is no code to look at: no #file: reference "+
				"could be resolved and nothing is selected in the editor.\n"+
				"Tell the user to select a component or reference it with #file:<name> and try again.\n\n"+
				"Original request: %s", in.Request.Command, prompt), true, nil
		}
		if b.tools == nil {
			return "", true, fmt.Errorf("/%s: no analysis tools configured", in.Request.Command)
		}

		name, tmpl := tools.ComponentAnalysisName, analyzeInstructions
		if in.Request.Command == CommandUpgrade {
			name, tmpl = tools.UpgradeGuidanceName, upgradeInstructions
		}
		out, err := b.tools.Call(ctx, name, tctx, map[string]any{"content": src.Content, "file_name": src.Path})
		if err != nil {
			return "", true, err
		}

		block := fmt.Sprintf("%s\n\nCode (%s):\n```%s\n%s\n```", tools.Summary(out), label, FenceLabel(src.Path), src.Content)
		return wrap(tmpl, block, prompt), true, nil

	case CommandRoute:
		if b.tools == nil {
			return "", true, fmt.Errorf("/%s: no analysis tools configured", CommandRoute)
		}
		out, err := b.tools.Call(ctx, tools.RouteTemplateName, tctx, map[string]any{"route_path": RoutePath(prompt)})
		if err != nil {
			return "", true, err
		}
		return wrap(routeInstructions, tools.Summary(out), prompt), true, nil

	case CommandVite:
		if b.tools == nil {
			return "", true, fmt.Errorf("/%s: no analysis tools configured", CommandVite)
		}
		out, err := b.tools.Call(ctx, tools.ViteConfigName, tctx, nil)
		if err != nil {
			return "", true, err
		}
		if found, _ := out["found"].(bool); !found {
			return "The user ran /vite but the workspace has no vite.config.js or vite.config.ts file.\n" +
				"Tell the user no Vite configuration was found and show a minimal SvelteKit vite.config.ts.\n\n" +
				"Original request: " + prompt, true, nil
		}
		return wrap(viteInstructions, tools.Summary(out), prompt), true, nil
	}

	return "", false, nil
}

// subject picks the code a command works on: the first resolvable #file:
// reference, otherwise the active selection.
func (b *Builder) subject(ctx context.Context, refs reference.Bundle, editor domain.Editor) (domain.ResolvedFile, string, bool, error) {
	if names := refs.DistinctFiles(); len(names) > 0 {
		found, _, err := b.resolveAll(ctx, names)
		if err != nil {
			return domain.ResolvedFile{}, "", false, err
		}
		if len(found) > 0 {
			return found[0], "file " + found[0].Path, true, nil
		}
	}

	if editor == nil {
		return domain.ResolvedFile{}, "", false, nil
	}
	sel, ok := editor.ActiveSelection(ctx)
	if !ok || strings.TrimSpace(sel.Text) == "" {
		return domain.ResolvedFile{}, "", false, nil
	}
	return domain.ResolvedFile{Content: sel.Text, Path: sel.FileName}, "selection in " + sel.FileName, true, nil
}

// RoutePath returns the first prompt token starting with "/", or "/".
func RoutePath(prompt string) string {
	for _, f := range strings.Fields(prompt) {
		if strings.HasPrefix(f, "/") {
			return f
		}
	}
	return "/"
}

func wrap(instructions, block, prompt string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(instructions))
	if block != "" {
		sb.WriteString("\n\n")
		sb.WriteString(strings.TrimSpace(block))
	}
	sb.WriteString("\n\nUser message: ")
	sb.WriteString(prompt)
	return sb.String()
}
