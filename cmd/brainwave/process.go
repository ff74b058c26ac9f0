package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hubenschmidt/brainwave-radio/internal/radio"
	"github.com/hubenschmidt/brainwave-radio/internal/source"
)

var processCmd = &cobra.Command{
	Use:   "process <recording.csv>",
	Short: "Generate a track for every session in a CSV recording",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := source.OpenCSV(args[0])
		if err != nil {
			return err
		}
		defer src.Close()

		return runSessionRadio(cmd, src, "csv:"+args[0])
	},
}

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Generate a track for every session of the live sensor hub feed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		hub := cfg.hubSource(nil)
		defer hub.Close()

		return runSessionRadio(cmd, hub, "hub:"+cfg.Hub.URL)
	},
}

func runSessionRadio(cmd *cobra.Command, src source.Source, name string) error {
	gen, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}
	rec := newRecorder(st, name)
	defer rec.Close()

	ctx, cancel := signalContext()
	defer cancel()

	out := cmd.OutOrStdout()
	slog.Info("session radio starting", "source", name, "engine", cfg.Music.Engine, "output_dir", cfg.OutputDir)
	sessions, err := radio.RunSessions(ctx, src, cfg.radioConfig(gen, rec, cfg.desireFunc()), printEvents(out))
	fmt.Fprintf(out, "Processed %d sessions\n", len(sessions))
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func init() {
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(streamCmd)
}
