package radio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
	"github.com/hubenschmidt/brainwave-radio/internal/metrics"
	"github.com/hubenschmidt/brainwave-radio/internal/music"
	"github.com/hubenschmidt/brainwave-radio/internal/source"
)

// ErrNoSessions is returned by the community flow when the stream produced no
// sessions. It wraps eeg.ErrEmptyInput.
var ErrNoSessions = fmt.Errorf("no sessions found: %w", eeg.ErrEmptyInput)

// RunSessions consumes src until it ends, generating a track for every
// session. It returns the finalized sessions.
func RunSessions(ctx context.Context, src source.Source, cfg Config, onEvent EventCallback) ([]eeg.Session, error) {
	p := New(cfg)
	if err := consume(ctx, src, p, 0, onEvent); err != nil {
		return p.Sessions(), err
	}
	return p.Sessions(), nil
}

// CommunityResult is the consensus of a group of sessions.
type CommunityResult struct {
	People       int
	Distribution *eeg.Distribution
	Consensus    eeg.Emotion
	Track        string
}

// RunCommunity collects sessions from src until it ends or target sessions
// have been finalized (target <= 0 means no limit), then generates one track
// from the consensus label.
func RunCommunity(ctx context.Context, src source.Source, cfg Config, target int, onEvent EventCallback) (*CommunityResult, error) {
	p := newCollector(cfg)
	if err := consume(ctx, src, p, target, onEvent); err != nil {
		return nil, err
	}
	return Community(ctx, cfg, p.Sessions(), onEvent)
}

// Community aggregates sessions and generates the community track from the
// consensus label alone.
func Community(ctx context.Context, cfg Config, sessions []eeg.Session, onEvent EventCallback) (*CommunityResult, error) {
	dist, consensus, err := eeg.Aggregate(sessions)
	if errors.Is(err, eeg.ErrEmptyInput) {
		return nil, ErrNoSessions
	}
	if err != nil {
		return nil, err
	}

	res := &CommunityResult{People: len(sessions), Distribution: dist, Consensus: consensus}
	slog.Info("community emotional state",
		"people", res.People,
		"consensus", consensus,
		"distribution", dist.String(),
	)

	if cfg.Generator != nil && cfg.Namer != nil {
		path := cfg.Namer.CommunityPath()
		req := music.NewRequest([]eeg.Emotion{consensus}, "", cfg.communityDuration())
		gen, err := cfg.Generator.GenerateFile(ctx, cfg.Engine, req, path)
		if err != nil {
			return nil, fmt.Errorf("community track: %w", err)
		}
		res.Track = path
		metrics.TracksGenerated.WithLabelValues("community").Inc()
		slog.Info("saved community track", "path", path, "latency_ms", gen.LatencyMs)
	}

	cfg.Recorder.RecordCommunity(res.People, dist, consensus, res.Track)
	onEvent(Event{
		Type:         EventCommunity,
		People:       res.People,
		Consensus:    consensus,
		Distribution: dist.Entries(),
		Track:        res.Track,
	})
	return res, nil
}

// consume drives src through p until EOF, or until target sessions exist when
// target > 0. An open session is finalized at EOF.
func consume(ctx context.Context, src source.Source, p *Pipeline, target int, onEvent EventCallback) error {
	for target <= 0 || len(p.Sessions()) < target {
		s, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return p.Finish(ctx, onEvent)
		}
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
		if err := p.Process(ctx, s, onEvent); err != nil {
			return err
		}
	}
	slog.Info("collected target sessions", "target", target)
	return nil
}
