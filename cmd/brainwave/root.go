package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configFile string
	cfg        config
)

var rootCmd = &cobra.Command{
	Use:   "brainwave",
	Short: "EEG emotion radio",
	Long: `Reads band-power samples from a headband recording or the live sensor
hub, classifies each sample into one of nine emotions, splits the stream into
listening sessions and generates a music track per session or one community
track for a whole group.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		cfg = loaded
		setupLogger(cfg.LogLevel)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default is ./brainwave.yaml)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("hub-url", "", "sensor hub websocket URL")
	pf.String("engine", "", "music engine (musicgen, tone)")
	pf.String("music-url", "", "MusicGen sidecar URL")
	pf.String("output-dir", "", "directory for generated tracks")
	pf.String("data-dir", "", "directory for CSV recordings")
	pf.String("database-url", "", "PostgreSQL DSN; empty disables persistence")
	pf.String("desired-emotion", "", "answer every desired-emotion prompt with this emotion")

	bindFlag("log_level", "log-level")
	bindFlag("hub.url", "hub-url")
	bindFlag("music.engine", "engine")
	bindFlag("music.url", "music-url")
	bindFlag("output_dir", "output-dir")
	bindFlag("data_dir", "data-dir")
	bindFlag("database_url", "database-url")
	bindFlag("desired_emotion", "desired-emotion")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

// initConfig reads the config file and BRAINWAVE_* environment variables.
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home + "/.config/brainwave")
		}
		viper.SetConfigName("brainwave")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("BRAINWAVE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	err := viper.ReadInConfig()
	if err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		return
	}
	var notFound viper.ConfigFileNotFoundError
	if configFile != "" || !errors.As(err, &notFound) {
		fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
		os.Exit(1)
	}
}

func setupLogger(level string) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(level)})))
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
