package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/svelte-expert/internal/config"
	"github.com/PabloGalante/svelte-expert/internal/observability"
)

// set at build time
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		cfg     *config.Config
	)

	root := &cobra.Command{
		Use:          "svelte-expert",
		Short:        "Svelte and SvelteKit expert assistant for your editor",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if dir, _ := cmd.Flags().GetString("workspace"); dir != "" {
				c.Workspace.Root = dir
			}
			observability.Configure(c.Log.Level, c.Log.Format, os.Stderr)
			cfg = c
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ./svelte-expert.yaml)")
	root.PersistentFlags().String("workspace", "", "workspace root, overrides workspace.root")

	conf := func() *config.Config { return cfg }
	root.AddCommand(
		newServeCmd(conf),
		newHostCmd(conf),
		newAskCmd(conf),
		newAnalyzeCmd(conf),
		newRouteCmd(conf),
		newConfigCmd(conf),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), "svelte-expert", version)
			},
		},
	)
	return root
}
