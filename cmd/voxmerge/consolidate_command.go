package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"voxmerge/internal/preflight"
)

func newConsolidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "consolidate",
		Short: "Rebuild rollup files from merged transcripts on disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			runner, store, err := ctx.openRunner(logger)
			if err != nil {
				return err
			}
			defer store.Close()

			rollups, err := runner.ConsolidateExisting(time.Now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, path := range rollups {
				fmt.Fprintf(out, "wrote %s\n", path)
			}
			return nil
		},
	}
}

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check the filesystem prerequisites of a run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.Run(cfg)
			fmt.Fprintln(cmd.OutOrStdout(), renderPreflight(results))
			if !preflight.AllPassed(results) {
				return fmt.Errorf("preflight checks failed")
			}
			return nil
		},
	}
}

func renderPreflight(results []preflight.Result) string {
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		status := "ok"
		if !result.Passed {
			status = "FAIL"
		}
		rows = append(rows, []string{result.Name, status, result.Detail})
	}
	return renderColumns(
		[]column{{title: "Check"}, {title: "Status"}, {title: "Detail"}},
		rows,
	)
}
