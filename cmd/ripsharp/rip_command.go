package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mapitman/ripsharp/internal/logging"
	"github.com/mapitman/ripsharp/internal/queue"
	"github.com/mapitman/ripsharp/internal/ripping"
	"github.com/mapitman/ripsharp/internal/workflow"
)

func newRipCommand(ctx *commandContext) *cobra.Command {
	var (
		device   string
		tvSeries bool
		season   int
		episode  int
		year     int
	)

	cmd := &cobra.Command{
		Use:   "rip",
		Short: "Rip the inserted disc into the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewForDir(cfg.Paths.LogDir, cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return err
			}
			logger.Info("configuration resolved", logging.String("config", ctx.configPath()))
			store, err := queue.Open(cfg.Paths.LogDir)
			if err != nil {
				return err
			}
			defer store.Close()

			runner, err := workflow.NewRunner(cfg, logger, store)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			progress, finish := newRipProgress()
			result, err := runner.Run(runCtx, workflow.Options{
				Device:   device,
				TVSeries: tvSeries,
				Season:   season,
				Episode:  episode,
				Year:     year,
				Progress: progress,
			})
			finish()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Disc: %s\n", result.DiscName)
			rows := make([][]string, 0, len(result.Titles))
			for _, title := range result.Titles {
				outcome := title.FinalFile
				if title.Err != nil {
					outcome = "failed: " + title.Err.Error()
				}
				rows = append(rows, []string{strconv.Itoa(title.TitleID), outcome})
			}
			fmt.Fprintln(out, renderTable([]string{"Title", "Result"}, rows, 1))

			if failed := result.Failed(); failed == len(result.Titles) {
				return fmt.Errorf("all %d titles failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&device, "device", "d", "", "Optical drive specifier (defaults to the configured drive)")
	cmd.Flags().BoolVar(&tvSeries, "tv", false, "Treat the disc as TV episodes instead of a movie")
	cmd.Flags().IntVar(&season, "season", 1, "Season number for TV naming")
	cmd.Flags().IntVar(&episode, "episode", 1, "First episode number for TV naming")
	cmd.Flags().IntVar(&year, "year", 0, "Release year for movie naming")
	return cmd
}

// newRipProgress returns a progress callback backed by a terminal progress
// bar, or a no-op pair when stderr is not a TTY (structured logs still carry
// the percentages there).
func newRipProgress() (ripping.ProgressFunc, func()) {
	fd := os.Stderr.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return nil, func() {}
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("ripping"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowCount(),
	)
	progress := func(percent int, message string) {
		if message != "" {
			bar.Describe(message)
		}
		_ = bar.Set(percent)
	}
	finish := func() {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	return progress, finish
}
