package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"voxmerge/internal/pipeline"
	"voxmerge/internal/preflight"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Merge every contact's transcript and generate rollups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if !skipPreflight {
				results := preflight.Run(cfg)
				if !preflight.AllPassed(results) {
					fmt.Fprintln(cmd.OutOrStdout(), renderPreflight(results))
					return fmt.Errorf("preflight checks failed")
				}
			}

			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			runner, store, err := ctx.openRunner(logger)
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderRunResult(result))
			if result.Failed > 0 {
				return fmt.Errorf("%d of %d contacts failed; see `voxmerge status`", result.Failed, len(result.Contacts))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip filesystem checks before the run")
	return cmd
}

func newMergeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <contact>",
		Short: "Merge a single contact's transcript",
		Args:  cobra.ExactArgs(1),
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

			result, err := runner.MergeOne(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderRunResult(result))
			return nil
		},
	}
}

func renderRunResult(result *pipeline.Result) string {
	rows := make([][]string, 0, len(result.Contacts)+1)
	for _, contactResult := range result.Contacts {
		status := "merged"
		if contactResult.Err != nil {
			status = "failed"
		}
		rows = append(rows, []string{
			contactResult.Contact,
			status,
			strconv.Itoa(contactResult.Stats.References),
			strconv.Itoa(contactResult.Stats.Resolved),
			strconv.Itoa(contactResult.Stats.Unresolved),
		})
	}
	rows = append(rows, []string{
		"total",
		"",
		strconv.Itoa(result.Stats.References),
		strconv.Itoa(result.Stats.Resolved),
		strconv.Itoa(result.Stats.Unresolved),
	})
	cols := append(
		[]column{{title: "Contact"}, {title: "Status"}},
		countColumns("References", "Resolved", "Unresolved")...,
	)
	return renderColumns(cols, rows)
}
