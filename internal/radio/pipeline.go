// Package radio turns EEG sample streams into per-session tracks and a
// community consensus track.
package radio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
	"github.com/hubenschmidt/brainwave-radio/internal/metrics"
	"github.com/hubenschmidt/brainwave-radio/internal/music"
	"github.com/hubenschmidt/brainwave-radio/internal/store"
)

const (
	DefaultSessionDuration   = 20 * time.Second
	DefaultCommunityDuration = 30 * time.Second
)

// DesireFunc asks the listener of a finished session which emotion they want
// to feel. The answer is normalized before use; a blank answer means none.
type DesireFunc func(ctx context.Context, sess eeg.Session) (string, error)

// Config holds pipeline configuration. A nil Generator disables track
// generation and a nil Recorder disables persistence.
type Config struct {
	Generator         *music.GeneratorRouter
	Engine            string
	Namer             *music.Namer
	Recorder          *store.Recorder
	Segmenter         eeg.SegmenterConfig
	Desire            DesireFunc
	SessionDuration   time.Duration
	CommunityDuration time.Duration
}

func (c Config) sessionDuration() time.Duration {
	if c.SessionDuration > 0 {
		return c.SessionDuration
	}
	return DefaultSessionDuration
}

func (c Config) communityDuration() time.Duration {
	if c.CommunityDuration > 0 {
		return c.CommunityDuration
	}
	return DefaultCommunityDuration
}

// Event types.
const (
	EventSample         = "sample"
	EventSessionStarted = "session_started"
	EventSessionEnded   = "session_ended"
	EventTrackReady     = "track_ready"
	EventCommunity      = "community"
	EventError          = "error"
)

// Event represents a pipeline output sent back to the client.
type Event struct {
	Type         string           `json:"type"`
	Session      int              `json:"session,omitempty"`
	Active       bool             `json:"active"`
	Valence      float64          `json:"valence"`
	Arousal      float64          `json:"arousal"`
	Emotion      eeg.Emotion      `json:"emotion,omitempty"`
	Emotions     []eeg.Emotion    `json:"emotions,omitempty"`
	Samples      int              `json:"samples,omitempty"`
	Incomplete   bool             `json:"incomplete,omitempty"`
	Desired      eeg.Emotion      `json:"desired,omitempty"`
	Track        string           `json:"track,omitempty"`
	LatencyMs    float64          `json:"latency_ms,omitempty"`
	People       int              `json:"people,omitempty"`
	Consensus    eeg.Emotion      `json:"consensus,omitempty"`
	Distribution []eeg.LabelCount `json:"distribution,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// EventCallback is invoked for each pipeline event.
type EventCallback func(Event)

// Pipeline processes a single sample stream: it classifies each sample,
// segments the stream into sessions and hands every finalized session to the
// session handler. It is not safe for concurrent use.
type Pipeline struct {
	cfg      Config
	seg      *eeg.Segmenter
	sessions []eeg.Session
	onClose  func(ctx context.Context, sess eeg.Session, onEvent EventCallback) error
}

// New creates a session-radio pipeline: every finalized session gets its own
// track.
func New(cfg Config) *Pipeline {
	p := &Pipeline{cfg: cfg, seg: eeg.NewSegmenter(cfg.Segmenter)}
	p.onClose = p.sessionRadio
	return p
}

// newCollector creates a pipeline that only gathers and records sessions.
func newCollector(cfg Config) *Pipeline {
	p := &Pipeline{cfg: cfg, seg: eeg.NewSegmenter(cfg.Segmenter)}
	p.onClose = func(_ context.Context, sess eeg.Session, _ EventCallback) error {
		cfg.Recorder.RecordSession(sess, "", "")
		return nil
	}
	return p
}

// Sessions returns the sessions finalized so far.
func (p *Pipeline) Sessions() []eeg.Session { return p.sessions }

// Process feeds one sample through classification and segmentation.
func (p *Pipeline) Process(ctx context.Context, s eeg.Sample, onEvent EventCallback) error {
	r := eeg.Read(s)
	observe(r)

	edge, sess := p.seg.Observe(s, r.Emotion)
	if sess != nil {
		if err := p.close(ctx, *sess, onEvent); err != nil {
			return err
		}
	}
	if edge == eeg.EdgeStart {
		slog.Info("session started", "session", p.seg.Index())
		onEvent(Event{Type: EventSessionStarted, Session: p.seg.Index()})
	}

	ev := Event{Type: EventSample, Active: r.Active, Valence: r.Valence, Arousal: r.Arousal}
	if r.Active {
		ev.Emotion = r.Emotion
		ev.Session = p.seg.Index()
	}
	onEvent(ev)
	return nil
}

// Finish finalizes a session left open at end of stream.
func (p *Pipeline) Finish(ctx context.Context, onEvent EventCallback) error {
	sess := p.seg.Finish()
	if sess == nil {
		return nil
	}
	slog.Info("stream ended with open session", "session", sess.Index)
	return p.close(ctx, *sess, onEvent)
}

func (p *Pipeline) close(ctx context.Context, sess eeg.Session, onEvent EventCallback) error {
	kind := "complete"
	if sess.Incomplete {
		kind = "incomplete"
	}
	metrics.SessionsFinalized.WithLabelValues(kind).Inc()
	metrics.SessionSamples.Observe(float64(sess.Samples))

	p.sessions = append(p.sessions, sess)
	slog.Info("session finalized",
		"session", sess.Index,
		"samples", sess.Samples,
		"emotions", sess.Emotions,
		"incomplete", sess.Incomplete,
	)
	onEvent(Event{
		Type:       EventSessionEnded,
		Session:    sess.Index,
		Emotions:   sess.Emotions,
		Samples:    sess.Samples,
		Incomplete: sess.Incomplete,
	})

	if p.onClose == nil {
		return nil
	}
	return p.onClose(ctx, sess, onEvent)
}

// sessionRadio asks for the desired emotion, generates the session's track
// and records the session. Generation failures are reported and the stream
// continues; a failing DesireFunc stops it.
func (p *Pipeline) sessionRadio(ctx context.Context, sess eeg.Session, onEvent EventCallback) error {
	desired, err := p.desire(ctx, sess)
	if err != nil {
		return fmt.Errorf("desired emotion for session %d: %w", sess.Index, err)
	}

	labels := append([]eeg.Emotion(nil), sess.Emotions...)
	if desired != "" {
		labels = append(labels, desired)
	}

	track := ""
	if p.cfg.Generator != nil && p.cfg.Namer != nil {
		path := p.cfg.Namer.SessionPath(sess.Index, sess.Emotions, desired)
		req := music.NewRequest(sess.Emotions, desired, p.cfg.sessionDuration())
		slog.Info("generating session track", "session", sess.Index, "labels", labels, "path", path)

		res, genErr := p.cfg.Generator.GenerateFile(ctx, p.cfg.Engine, req, path)
		if genErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("session track failed", "session", sess.Index, "error", genErr)
			onEvent(Event{Type: EventError, Session: sess.Index, Error: genErr.Error()})
		}
		if genErr == nil {
			track = path
			metrics.TracksGenerated.WithLabelValues("session").Inc()
			slog.Info("saved session track", "session", sess.Index, "path", path, "latency_ms", res.LatencyMs)
			onEvent(Event{
				Type:      EventTrackReady,
				Session:   sess.Index,
				Emotions:  labels,
				Desired:   desired,
				Track:     path,
				LatencyMs: res.LatencyMs,
			})
		}
	}

	p.cfg.Recorder.RecordSession(sess, desired, track)
	return nil
}

func (p *Pipeline) desire(ctx context.Context, sess eeg.Session) (eeg.Emotion, error) {
	if p.cfg.Desire == nil {
		return "", nil
	}
	answer, err := p.cfg.Desire(ctx, sess)
	if err != nil {
		return "", err
	}
	return eeg.NormalizeEmotion(answer), nil
}

func observe(r eeg.Reading) {
	if !r.Active {
		metrics.SamplesProcessed.WithLabelValues("off").Inc()
		return
	}
	metrics.SamplesProcessed.WithLabelValues("on").Inc()
	metrics.EmotionsClassified.WithLabelValues(string(r.Emotion)).Inc()
}
