package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/PabloGalante/svelte-expert/internal/adapters/http"
	"github.com/PabloGalante/svelte-expert/internal/app/panel"
	"github.com/PabloGalante/svelte-expert/internal/config"
	"github.com/PabloGalante/svelte-expert/internal/observability"
)

func newServeCmd(conf func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"open-chat"},
		Short:   "Serve the chat panel and reports over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := conf()
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().String("addr", "", "listen address, overrides server.addr")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := observability.Logger()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	hub := httpadapter.NewHub()
	defer hub.Close()

	conv := a.conversations(func() panel.Surface { return hub })
	defer conv.CloseAll()

	sess, err := conv.Open(ctx)
	if err != nil {
		return err
	}
	sess.Panel().Show()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpadapter.NewServer(sess.Panel(), hub, a.analysis),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("svelte expert listening", "addr", cfg.Server.Addr, "session_id", sess.ID)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
