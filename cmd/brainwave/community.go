package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
	"github.com/hubenschmidt/brainwave-radio/internal/radio"
	"github.com/hubenschmidt/brainwave-radio/internal/source"
)

var communityCmd = &cobra.Command{
	Use:   "community [recording.csv]",
	Short: "Generate one track from the consensus emotion of a group",
	Long: `Collects sessions from a CSV recording, or from the live sensor hub when
no file is given, until the stream ends or --target sessions have been
finalized. The most frequent emotion across all sessions becomes the prompt of
a single community track.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetInt("target")

		var src source.Source
		name := "hub:" + cfg.Hub.URL
		if len(args) == 1 {
			csv, err := source.OpenCSV(args[0])
			if err != nil {
				return err
			}
			defer csv.Close()
			src, name = csv, "csv:"+args[0]
		} else {
			hub := cfg.hubSource(nil)
			defer hub.Close()
			src = hub
		}

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

		slog.Info("community sound starting", "source", name, "target", target)
		res, err := radio.RunCommunity(ctx, src, cfg.radioConfig(gen, rec, nil), target, printEvents(cmd.OutOrStdout()))
		return reportCommunity(cmd.OutOrStdout(), res, err)
	},
}

// reportCommunity prints the community result. A stream without sessions is
// reported, not failed.
func reportCommunity(out io.Writer, res *radio.CommunityResult, err error) error {
	if isNoSessions(err) {
		fmt.Fprintln(out, "No sessions found in the stream.")
		return nil
	}
	if err != nil {
		return err
	}
	printCommunity(out, res)
	return nil
}

func printCommunity(out io.Writer, res *radio.CommunityResult) {
	fmt.Fprintf(out, "Total people: %d\n", res.People)
	fmt.Fprintf(out, "Consensus emotion: %s\n", res.Consensus)
	fmt.Fprintf(out, "Distribution: %s\n", res.Distribution)
	if res.Track != "" {
		fmt.Fprintf(out, "Community track: %s\n", res.Track)
	}
}

// isNoSessions reports whether err means the stream held no sessions.
func isNoSessions(err error) bool {
	return errors.Is(err, eeg.ErrEmptyInput)
}

func init() {
	communityCmd.Flags().Int("target", 0, "stop after this many sessions (0 reads the whole stream)")
	rootCmd.AddCommand(communityCmd)
}
