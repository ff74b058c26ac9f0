package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
	"github.com/hubenschmidt/brainwave-radio/internal/music"
	"github.com/hubenschmidt/brainwave-radio/internal/radio"
	"github.com/hubenschmidt/brainwave-radio/internal/store"
)

// newGenerator registers the tone backend and, when a sidecar URL is set, the
// MusicGen backend. The configured engine is the fallback.
func newGenerator(c config) (*music.GeneratorRouter, error) {
	backends := map[string]music.Generator{
		"tone": music.NewToneGenerator(),
	}
	if c.Music.URL != "" {
		client := music.NewPooledHTTPClient(c.Music.PoolSize, c.Music.Timeout)
		backends["musicgen"] = music.NewMusicGenGenerator(c.Music.URL, client)
	}
	gen := music.NewGeneratorRouter(backends, c.Music.Engine)
	if !gen.Has(c.Music.Engine) {
		return nil, fmt.Errorf("%w: %q (available: %v)", music.ErrUnknownEngine, c.Music.Engine, gen.Engines())
	}
	return gen, nil
}

// openStore returns nil when no database is configured.
func openStore(c config) (*store.Store, error) {
	if c.DatabaseURL == "" {
		return nil, nil
	}
	st, err := store.Open(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	slog.Info("persistence enabled")
	return st, nil
}

// newRecorder returns a nil (disabled) recorder when st is nil.
func newRecorder(st *store.Store, source string) *store.Recorder {
	if st == nil {
		return nil
	}
	return store.NewRecorder(st, source)
}

func (c config) radioConfig(gen *music.GeneratorRouter, rec *store.Recorder, desire radio.DesireFunc) radio.Config {
	return radio.Config{
		Generator:         gen,
		Engine:            c.Music.Engine,
		Namer:             music.NewNamer(c.OutputDir),
		Recorder:          rec,
		Segmenter:         c.segmenter(),
		Desire:            desire,
		SessionDuration:   c.Music.SessionDuration,
		CommunityDuration: c.Music.CommunityDuration,
	}
}

// desireFunc answers with the configured emotion, or asks on stdin.
func (c config) desireFunc() radio.DesireFunc {
	if c.DesiredEmotion != "" {
		return fixedDesire(c.DesiredEmotion)
	}
	return promptDesire(os.Stdin, os.Stdout)
}

func fixedDesire(emotion string) radio.DesireFunc {
	return func(context.Context, eeg.Session) (string, error) { return emotion, nil }
}

// promptDesire asks for the desired emotion on out and reads one line from in.
// A closed input answers blank.
func promptDesire(in io.Reader, out io.Writer) radio.DesireFunc {
	lines := bufio.NewScanner(in)
	return func(ctx context.Context, sess eeg.Session) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprintf(out, "Session %d detected emotions: %s\n", sess.Index, joinEmotions(sess.Emotions))
		fmt.Fprintf(out, "What emotion would you like to feel? (%s): ", joinEmotions(eeg.Emotions))
		if !lines.Scan() {
			fmt.Fprintln(out)
			return "", lines.Err()
		}
		return lines.Text(), nil
	}
}

func joinEmotions(es []eeg.Emotion) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = string(e)
	}
	return strings.Join(parts, ", ")
}

// printEvents writes a human-readable line per lifecycle event. Samples are
// logged at debug level.
func printEvents(out io.Writer) radio.EventCallback {
	return func(ev radio.Event) {
		switch ev.Type {
		case radio.EventSample:
			slog.Debug("sample", "active", ev.Active, "valence", ev.Valence, "arousal", ev.Arousal, "emotion", ev.Emotion)
		case radio.EventSessionStarted:
			fmt.Fprintf(out, "Session %d started\n", ev.Session)
		case radio.EventSessionEnded:
			suffix := ""
			if ev.Incomplete {
				suffix = " (incomplete)"
			}
			fmt.Fprintf(out, "Session %d ended after %d samples%s: %s\n", ev.Session, ev.Samples, suffix, joinEmotions(ev.Emotions))
		case radio.EventTrackReady:
			fmt.Fprintf(out, "Saved %s (%.0f ms)\n", ev.Track, ev.LatencyMs)
		case radio.EventCommunity:
			fmt.Fprintf(out, "Community of %d people feels %s\n", ev.People, ev.Consensus)
		case radio.EventError:
			fmt.Fprintf(out, "Error: %s\n", ev.Error)
		}
	}
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
