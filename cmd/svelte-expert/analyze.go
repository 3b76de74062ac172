package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/svelte-expert/internal/analyzer"
	"github.com/PabloGalante/svelte-expert/internal/app/analysis"
	"github.com/PabloGalante/svelte-expert/internal/config"
)

func newAnalyzeCmd(conf func() *config.Config) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a component or the whole project",
	}
	cmd.PersistentFlags().BoolVar(&raw, "raw", false, "print markdown without terminal rendering")

	cmd.AddCommand(&cobra.Command{
		Use:   "component <file.svelte>",
		Short: "Report props, events, stores and lifecycle use of a component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), conf())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.analysis.AnalyzeComponent(cmd.Context(), args[0])
			return printReport(cmd, report, err, raw)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "project",
		Short: "Report routing structure and Vite config suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), conf())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.analysis.AnalyzeProject(cmd.Context())
			return printReport(cmd, report, err, raw)
		},
	})
	return cmd
}

// printReport prints notices as plain messages, not failures.
func printReport(cmd *cobra.Command, report string, err error, raw bool) error {
	if err != nil {
		if analysis.IsNotice(err) {
			fmt.Fprintln(cmd.OutOrStdout(), err.Error())
			return nil
		}
		return err
	}
	printMarkdown(cmd.OutOrStdout(), report, raw)
	return nil
}

func newRouteCmd(conf func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "route <path>",
		Short: "Print a SvelteKit route template for a path such as /users/[id]",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := analyzer.GenerateRouteTemplate(args[0]).Files()

			names := make([]string, 0, len(files))
			for name := range files {
				names = append(names, name)
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintf(out, "// %s\n%s\n\n", name, files[name])
			}
			return nil
		},
	}
}
