// Package chatcontext assembles the messages sent to the language model for
// one participant request.
package chatcontext

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/PabloGalante/svelte-expert/internal/app/reference"
	"github.com/PabloGalante/svelte-expert/internal/app/tools"
	"github.com/PabloGalante/svelte-expert/internal/domain"
	"github.com/PabloGalante/svelte-expert/internal/observability"
)

// ToolCaller runs analysis tools by name.
type ToolCaller interface {
	Call(ctx context.Context, name string, tctx tools.ToolContext, input map[string]any) (map[string]any, error)
}

// Input is everything known about one request.
type Input struct {
	SessionID domain.SessionID
	History   []domain.Turn
	Request   domain.ChatRequest
	// Editor overrides the builder's editor for this request.
	Editor domain.Editor
}

// Builder turns history and a request into model messages.
type Builder struct {
	base      string
	extractor reference.Extractor
	files     domain.FileResolver
	editor    domain.Editor
	tools     ToolCaller
}

type Option func(*Builder)

func WithBaseInstruction(s string) Option        { return func(b *Builder) { b.base = s } }
func WithExtractor(e reference.Extractor) Option { return func(b *Builder) { b.extractor = e } }
func WithEditor(e domain.Editor) Option          { return func(b *Builder) { b.editor = e } }
func WithTools(t ToolCaller) Option              { return func(b *Builder) { b.tools = t } }

func NewBuilder(files domain.FileResolver, opts ...Option) *Builder {
	b := &Builder{
		base:      BaseInstruction,
		extractor: reference.RegexExtractor{},
		files:     files,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Build returns the base instruction, the replayed history and the new user
// message. Unresolvable references become explanatory messages; only
// upstream failures are returned as errors.
func (b *Builder) Build(ctx context.Context, in Input) ([]domain.ModelMessage, error) {
	msgs := make([]domain.ModelMessage, 0, len(in.History)+2)
	msgs = append(msgs, domain.ModelMessage{Role: domain.RoleUser, Content: b.base})
	msgs = append(msgs, replay(in.History)...)

	editor := in.Editor
	if editor == nil {
		editor = b.editor
	}

	refs := b.extractor.Extract(in.Request.Prompt)

	content, handled, err := b.command(ctx, in, refs, editor)
	if err != nil {
		return nil, err
	}
	if !handled {
		content, err = b.references(ctx, in.Request.Prompt, refs, editor)
		if err != nil {
			return nil, err
		}
	}

	observability.LoggerFromContext(ctx).Debug("context built",
		"command", in.Request.Command,
		"history_turns", len(in.History),
		"file_refs", len(refs.Files),
		"selection_ref", refs.HasSelection,
		"line_refs", len(refs.Lines))

	return append(msgs, domain.ModelMessage{Role: domain.RoleUser, Content: content}), nil
}

// replay maps prior turns to messages. Only markdown parts of assistant
// turns are kept.
func replay(history []domain.Turn) []domain.ModelMessage {
	out := make([]domain.ModelMessage, 0, len(history))
	for _, t := range history {
		switch turn := t.(type) {
		case domain.UserTurn:
			out = append(out, domain.ModelMessage{Role: domain.RoleUser, Content: turn.Prompt})
		case domain.AssistantTurn:
			out = append(out, domain.ModelMessage{Role: domain.RoleAssistant, Content: turn.MarkdownText()})
		}
	}
	return out
}

// references handles #file: and #selection: markers. Files win over a selection.
func (b *Builder) references(ctx context.Context, prompt string, refs reference.Bundle, editor domain.Editor) (string, error) {
	switch {
	case len(refs.Files) > 0:
		return b.fileContext(ctx, prompt, refs.DistinctFiles())
	case refs.HasSelection:
		return selectionContext(ctx, prompt, editor), nil
	default:
		return prompt, nil
	}
}

func (b *Builder) resolveAll(ctx context.Context, names []string) ([]domain.ResolvedFile, []string, error) {
	var found []domain.ResolvedFile
	var missing []string
	for _, name := range names {
		if b.files == nil {
			missing = append(missing, name)
			continue
		}
		f, err := b.files.Resolve(ctx, name)
		switch {
		case errors.Is(err, domain.ErrFileNotFound):
			missing = append(missing, name)
		case err != nil:
			return nil, nil, fmt.Errorf("resolving %s: %w", name, err)
		default:
			found = append(found, f)
		}
	}
	return found, missing, nil
}

func (b *Builder) fileContext(ctx context.Context, prompt string, names []string) (string, error) {
	found, missing, err := b.resolveAll(ctx, names)
	if err != nil {
		return "", err
	}

	if len(found) == 0 {
		return fmt.Sprintf(
			"The user referenced the file(s) %s, but none of them could be found in the workspace.\n"+
				"Apologize to the user, explain that the file(s) could not be located, "+
				"and ask them to try again with the correct file name.\n\n"+
				"Original request: %s",
			strings.Join(names, ", "), prompt), nil
	}

	var sb strings.Builder
	sb.WriteString("Here is the content of the files I referenced:\n\n")
	for _, f := range found {
		fmt.Fprintf(&sb, "File: %s\n```%s\n%s\n```\n\n", f.Path, FenceLabel(f.Path), f.Content)
	}
	if len(missing) > 0 {
		fmt.Fprintf(&sb, "These referenced files could not be found: %s\n\n", strings.Join(missing, ", "))
	}
	fmt.Fprintf(&sb, "My question: %s\n\n", prompt)
	sb.WriteString("Focus your answer on the code in these files.")
	return sb.String(), nil
}

func selectionContext(ctx context.Context, prompt string, editor domain.Editor) string {
	var sel domain.Selection
	ok := false
	if editor != nil {
		sel, ok = editor.ActiveSelection(ctx)
	}
	if !ok || sel.Text == "" {
		return "The user referenced their current selection, but there is no active text selection in the editor.\n" +
			"Explain that no code is selected and ask the user to select the code first, then ask again.\n\n" +
			"Original request: " + prompt
	}

	return fmt.Sprintf("Here is the code I have selected in %s:\n\n```%s\n%s\n```\n\n%s",
		sel.FileName, FenceLabel(sel.FileName), sel.Text, prompt)
}

// FenceLabel is the extension of a file name without the dot, or "".
func FenceLabel(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[i+1:]
	}
	return ""
}
