package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mapitman/ripsharp/internal/queue"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Show recorded title jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := queue.Open(cfg.Paths.LogDir)
			if err != nil {
				return err
			}
			defer store.Close()

			var statuses []queue.Status
			if statusFilter != "" {
				statuses = append(statuses, queue.Status(statusFilter))
			}
			items, err := store.List(cmd.Context(), statuses...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No jobs recorded.")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				detail := item.FinalFile
				if detail == "" {
					detail = item.ErrorMessage
				}
				rows = append(rows, []string{
					strconv.FormatInt(item.ID, 10),
					item.DiscTitle,
					strconv.Itoa(item.TitleID),
					string(item.Status),
					strconv.Itoa(item.ProgressPercent) + "%",
					item.UpdatedAt.Local().Format("2006-01-02 15:04"),
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Disc", "Title", "Status", "Progress", "Updated", "Result"},
				rows, 1, 3, 5))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Only show jobs with this status")
	return cmd
}
