package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/svelte-expert/internal/adapters/hostrpc"
	"github.com/PabloGalante/svelte-expert/internal/app/panel"
	"github.com/PabloGalante/svelte-expert/internal/config"
)

func newHostCmd(conf func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "host",
		Short: "Speak the editor host protocol on stdin and stdout",
		Long: `Reads one JSON request per line from stdin and writes one JSON
response per line to stdout. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, conf())
			if err != nil {
				return err
			}
			defer a.Close()

			srv := hostrpc.NewServer(a.handler, a.analysis, os.Stdout)
			conv := a.conversations(func() panel.Surface { return srv.Surface() })
			defer conv.CloseAll()

			sess, err := conv.Open(ctx)
			if err != nil {
				return err
			}
			srv.Attach(sess)

			return srv.Serve(ctx, os.Stdin)
		},
	}
}
