package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/PabloGalante/svelte-expert/internal/observability"
)

// printMarkdown renders markdown for the terminal. raw skips rendering.
func printMarkdown(w io.Writer, md string, raw bool) {
	if !raw {
		out, err := renderMarkdown(md)
		if err == nil {
			fmt.Fprint(w, out)
			return
		}
		observability.Logger().Debug("markdown rendering failed, printing raw", "error", err)
	}
	fmt.Fprint(w, md)
	if !strings.HasSuffix(md, "\n") {
		fmt.Fprintln(w)
	}
}

func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// terminalStream collects a reply for rendering once it completes.
type terminalStream struct {
	sb      strings.Builder
	verbose bool
}

func (t *terminalStream) Progress(text string) {
	if t.verbose {
		fmt.Fprintln(os.Stderr, text)
	}
}

func (t *terminalStream) Markdown(fragment string) { t.sb.WriteString(fragment) }

func (t *terminalStream) Metadata(map[string]any) {}
