package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/svelte-expert/internal/adapters/workspace"
	"github.com/PabloGalante/svelte-expert/internal/app/participant"
	"github.com/PabloGalante/svelte-expert/internal/config"
	"github.com/PabloGalante/svelte-expert/internal/domain"
)

func newAskCmd(conf func() *config.Config) *cobra.Command {
	var (
		command   string
		selection string
		selFile   string
		toPanel   bool
		raw       bool
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the Svelte expert one question",
		Example: `  svelte-expert ask "why is #file:Counter.svelte not reactive?"
  svelte-expert ask --command analyze "#file:src/lib/Card.svelte"
  svelte-expert ask --panel "how do I share state between routes?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := conf()
			question := strings.Join(args, " ")

			if toPanel {
				// The panel log only records model replies in integrated mode.
				cfg.Panel.Mode = config.PanelIntegrated
			}

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if toPanel {
				conv := a.conversations(nil)
				defer conv.CloseAll()

				sess, err := conv.Open(ctx)
				if err != nil {
					return err
				}
				if err := sess.Panel().SendMessage(ctx, question); err != nil {
					return err
				}
				msgs := sess.Panel().Messages()
				last := msgs[len(msgs)-1]
				if last.Sender != domain.SenderAssistant {
					return errors.New("panel recorded no reply")
				}
				printMarkdown(cmd.OutOrStdout(), last.Text, raw)
				return nil
			}

			stream := &terminalStream{verbose: !raw}
			res := a.handler.Handle(ctx, participant.HandleInput{
				Request: domain.ChatRequest{Prompt: question, Command: command},
				Editor:  workspace.StaticEditor{Selection: domain.Selection{Text: selection, FileName: selFile}},
			}, stream)

			printMarkdown(cmd.OutOrStdout(), stream.sb.String(), raw)
			return res.Err
		},
	}
	cmd.Flags().StringVar(&command, "command", "", "slash command: help, analyze, upgrade, route or vite")
	cmd.Flags().StringVar(&selection, "selection", "", "text to use as the editor selection")
	cmd.Flags().StringVar(&selFile, "selection-file", "selection.svelte", "file name of the selection")
	cmd.Flags().BoolVar(&toPanel, "panel", false, "post the question to the persisted chat panel log")
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without terminal rendering")
	return cmd
}
