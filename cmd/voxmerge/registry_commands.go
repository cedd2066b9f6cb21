package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"voxmerge/internal/logging"
	"voxmerge/internal/registry"
)

func newRegistryCommand(ctx *commandContext) *cobra.Command {
	registryCmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the transcription registry",
	}

	registryCmd.AddCommand(newRegistryShowCommand(ctx))
	registryCmd.AddCommand(newRegistryStatsCommand(ctx))

	return registryCmd
}

func newRegistryShowCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "List registry records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := ctx.openRegistry()
			if err != nil {
				return err
			}

			records := reg.Records()
			sort.Slice(records, func(i, j int) bool {
				if records[i].CreatedAt.Equal(records[j].CreatedAt) {
					return records[i].Fingerprint < records[j].Fingerprint
				}
				return records[i].CreatedAt.After(records[j].CreatedAt)
			})
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					shortFingerprint(record.Fingerprint.String()),
					strconv.Itoa(record.Length),
					record.CreatedAt.UTC().Format(time.RFC3339),
					previewText(record.Text),
				})
			}
			cols := []column{
				{title: "Fingerprint"},
				{title: "Length", right: true},
				{title: "Created"},
				{title: "Text"},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderColumns(cols, rows))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum records to display (0 for all)")
	return cmd
}

func newRegistryStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize registry contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			reg, err := ctx.openRegistry()
			if err != nil {
				return err
			}

			empty := 0
			totalLength := 0
			for _, record := range reg.Records() {
				if record.Empty() {
					empty++
				}
				totalLength += record.Length
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Registry: %s\n", cfg.Paths.RegistryPath)
			fmt.Fprintf(out, "Records: %d\n", reg.Len())
			fmt.Fprintf(out, "Empty transcriptions: %d\n", empty)
			fmt.Fprintf(out, "Total characters: %d\n", totalLength)
			return nil
		},
	}
}

func (c *commandContext) openRegistry() (*registry.Registry, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return registry.New(cfg.Paths.RegistryPath, logging.NewNop()), nil
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

func previewText(text string) string {
	runes := []rune(text)
	if len(runes) > 48 {
		return string(runes[:45]) + "..."
	}
	return text
}
