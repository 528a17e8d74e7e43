package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mapitman/ripsharp/internal/disc"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var device string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List the titles on the inserted disc",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if device == "" {
				device = cfg.MakeMKV.OpticalDrive
			}

			scanner := disc.NewScanner(cfg.MakeMKV.Binary, cfg.MakeMKV.InfoTimeout)
			result, err := scanner.Scan(cmd.Context(), device)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(result)
			}

			fmt.Fprintf(out, "Disc: %s (%d titles)\n", result.DiscName, len(result.Titles))
			rows := make([][]string, 0, len(result.Titles))
			for _, title := range result.Titles {
				rows = append(rows, []string{
					strconv.Itoa(title.ID),
					title.Name,
					formatDuration(title.Duration),
					strconv.Itoa(title.Chapters),
					formatBytes(title.SizeBytes),
					strconv.Itoa(len(title.Tracks)),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Name", "Duration", "Chapters", "Size", "Streams"},
				rows, 1, 3, 4, 5, 6))
			return nil
		},
	}

	cmd.Flags().StringVarP(&device, "device", "d", "", "Optical drive specifier (defaults to the configured drive)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the scan result as JSON")
	return cmd
}

func formatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	value := float64(n)
	suffixes := []string{"KiB", "MiB", "GiB", "TiB"}
	idx := -1
	for value >= unit && idx < len(suffixes)-1 {
		value /= unit
		idx++
	}
	return fmt.Sprintf("%.1f %s", value, suffixes[idx])
}
