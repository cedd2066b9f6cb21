package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"voxmerge/internal/runlog"
)

const (
	ansiBlue  = "\x1b[34m"
	ansiReset = "\x1b[0m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the outcome of the latest merge run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			cmdCtx := cmd.Context()
			target := strings.TrimSpace(runID)
			if target == "" {
				latest, err := store.LatestRunID(cmdCtx)
				if err != nil {
					return err
				}
				if latest == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet. Start one with `voxmerge run`.")
					return nil
				}
				target = latest
			}

			records, err := store.ListRun(cmdCtx, target)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("no run found with id %s", target)
			}
			summary, err := store.Summarize(cmdCtx, target)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, line := range renderHeading("Run "+target, shouldColorize(out)) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderRunRecords(records))
			fmt.Fprintf(out, "%d contacts, %d merged, %d failed, %d/%d references resolved\n",
				summary.Contacts, summary.Merged, summary.Failed, summary.Resolved, summary.References)
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run identifier to inspect (default: latest)")
	return cmd
}

func renderRunRecords(records []*runlog.Record) string {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			record.Contact,
			string(record.Status),
			strconv.Itoa(record.References),
			strconv.Itoa(record.Resolved),
			strconv.Itoa(record.Unresolved),
			record.ErrorMessage,
		})
	}
	cols := append(
		[]column{{title: "Contact"}, {title: "Status"}},
		countColumns("References", "Resolved", "Unresolved")...,
	)
	cols = append(cols, column{title: "Error"})
	return renderColumns(cols, rows)
}

func renderHeading(line string, colorize bool) []string {
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
