package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hubenschmidt/brainwave-radio/internal/music"
	"github.com/hubenschmidt/brainwave-radio/internal/ws"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ingest server that accepts sample streams over websocket",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, err := newGenerator(cfg)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}

		hcfg := ws.HandlerConfig{
			Generator:       gen,
			Engine:          cfg.Music.Engine,
			Namer:           music.NewNamer(cfg.OutputDir),
			Segmenter:       cfg.segmenter(),
			SessionDuration: cfg.Music.SessionDuration,
			DesiredEmotion:  cfg.DesiredEmotion,
			MaxConcurrent:   cfg.Server.MaxStreams,
		}
		d := deps{gen: gen}
		if st != nil {
			defer st.Close()
			hcfg.Store = st
			d.store = st
		}
		d.wsHandler = ws.NewHandler(hcfg)

		mux := http.NewServeMux()
		registerRoutes(mux, d)
		srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

		ctx, cancel := signalContext()
		defer cancel()
		go func() {
			<-ctx.Done()
			slog.Info("shutting down")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()
			srv.Shutdown(shutdownCtx)
		}()

		slog.Info("ingest server starting", "addr", cfg.Server.Addr, "max_streams", cfg.Server.MaxStreams, "engines", gen.Engines())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		slog.Info("ingest server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address")
	serveCmd.Flags().Int("max-streams", 0, "maximum concurrent streams")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("server.max_streams", serveCmd.Flags().Lookup("max-streams"))
	rootCmd.AddCommand(serveCmd)
}
