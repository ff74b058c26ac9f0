package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
	"github.com/hubenschmidt/brainwave-radio/internal/source"
)

type config struct {
	LogLevel       string          `mapstructure:"log_level"`
	Hub            hubConfig       `mapstructure:"hub"`
	Segmenter      segmenterConfig `mapstructure:"segmenter"`
	Music          musicConfig     `mapstructure:"music"`
	OutputDir      string          `mapstructure:"output_dir"`
	DataDir        string          `mapstructure:"data_dir"`
	DatabaseURL    string          `mapstructure:"database_url"`
	Server         serverConfig    `mapstructure:"server"`
	DesiredEmotion string          `mapstructure:"desired_emotion"`
}

type hubConfig struct {
	URL                string        `mapstructure:"url"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
	OpenTimeout        time.Duration `mapstructure:"open_timeout"`
	MaxRetries         int           `mapstructure:"max_retries"`
	RetryWait          time.Duration `mapstructure:"retry_wait"`
}

type segmenterConfig struct {
	LegacyFirstSample bool `mapstructure:"legacy_first_sample"`
}

type musicConfig struct {
	Engine            string        `mapstructure:"engine"`
	URL               string        `mapstructure:"url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	PoolSize          int           `mapstructure:"pool_size"`
	SessionDuration   time.Duration `mapstructure:"session_duration"`
	CommunityDuration time.Duration `mapstructure:"community_duration"`
}

type serverConfig struct {
	Addr       string `mapstructure:"addr"`
	MaxStreams int    `mapstructure:"max_streams"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	hub := source.DefaultHubConfig("wss://localhost")
	v.SetDefault("hub.url", hub.URL)
	v.SetDefault("hub.insecure_skip_verify", hub.InsecureSkipVerify)
	v.SetDefault("hub.open_timeout", hub.OpenTimeout)
	v.SetDefault("hub.max_retries", hub.MaxRetries)
	v.SetDefault("hub.retry_wait", hub.RetryWait)

	v.SetDefault("segmenter.legacy_first_sample", false)

	v.SetDefault("music.engine", "musicgen")
	v.SetDefault("music.url", "http://localhost:5200")
	v.SetDefault("music.timeout", 10*time.Minute)
	v.SetDefault("music.pool_size", 4)
	v.SetDefault("music.session_duration", 20*time.Second)
	v.SetDefault("music.community_duration", 30*time.Second)

	v.SetDefault("output_dir", "radios")
	v.SetDefault("data_dir", "data")
	v.SetDefault("database_url", "")

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.max_streams", 16)

	v.SetDefault("desired_emotion", "")
}

func loadConfig(v *viper.Viper) (config, error) {
	var c config
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	if c.Music.SessionDuration <= 0 || c.Music.CommunityDuration <= 0 {
		return c, errors.New("music durations must be positive")
	}
	if c.DesiredEmotion != "" && !eeg.NormalizeEmotion(c.DesiredEmotion).Known() {
		return c, fmt.Errorf("desired_emotion %q is not one of %v", c.DesiredEmotion, eeg.Emotions)
	}
	return c, nil
}

func (c config) hubSource(onDisconnect func(error)) *source.HubSource {
	return source.NewHubSource(source.HubConfig{
		URL:                c.Hub.URL,
		InsecureSkipVerify: c.Hub.InsecureSkipVerify,
		OpenTimeout:        c.Hub.OpenTimeout,
		MaxRetries:         c.Hub.MaxRetries,
		RetryWait:          c.Hub.RetryWait,
		OnDisconnect:       onDisconnect,
	})
}

func (c config) segmenter() eeg.SegmenterConfig {
	seg := eeg.DefaultSegmenterConfig()
	seg.LegacyFirstSample = c.Segmenter.LegacyFirstSample
	return seg
}
