// Command tone-server stands in for the MusicGen sidecar during development:
// it serves the same /health and /generate endpoints from the local tone
// synthesizer.
package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/hubenschmidt/brainwave-radio/internal/music"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	addr := os.Getenv("TONE_SERVER_ADDR")
	if addr == "" {
		addr = ":5200"
	}

	slog.Info("tone-server listening", "addr", addr)
	if err := http.ListenAndServe(addr, music.NewSidecarHandler(music.NewToneGenerator())); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
