package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hubenschmidt/brainwave-radio/internal/source"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Record samples from the sensor hub into a CSV file",
	Long: `Connects to the sensor hub, appends every decoded sample to a recording
and saves it as data_dir/eeg_data_YYYYMMDD_HHMMSS.csv. The file is saved
every --autosave samples, after each dropped connection and at the end.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		every, _ := cmd.Flags().GetInt("autosave")

		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		rec := source.NewRecording(filepath.Join(cfg.DataDir, source.RecordingName(time.Now())), every)

		hub := cfg.hubSource(func(err error) {
			if saveErr := rec.Save(); saveErr != nil {
				slog.Warn("save after disconnect", "error", saveErr)
			}
		})
		defer hub.Close()

		ctx, cancel := signalContext()
		defer cancel()

		slog.Info("collecting", "hub", cfg.Hub.URL, "count", count, "path", rec.Path())
		err := source.Collect(ctx, hub, rec, count)
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %d samples to %s\n", rec.Len(), rec.Path())
		if ctx.Err() != nil {
			return nil
		}
		return err
	},
}

func init() {
	collectCmd.Flags().IntP("count", "n", 0, "number of samples to collect (0 collects until the hub closes)")
	collectCmd.Flags().Int("autosave", source.DefaultAutosaveEvery, "save the recording every N samples")
	rootCmd.AddCommand(collectCmd)
}
