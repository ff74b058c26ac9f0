package music

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
	"github.com/hubenschmidt/brainwave-radio/internal/metrics"
)

// ErrUnknownEngine is returned when no backend is registered for an engine name.
var ErrUnknownEngine = errors.New("unknown music engine")

// Request describes a track to generate.
type Request struct {
	Prompt   string
	Duration time.Duration
	// Labels and Desired are what the prompt was built from. Local backends
	// that cannot interpret free text use them instead.
	Labels  []eeg.Emotion
	Desired eeg.Emotion
}

// NewRequest builds a request whose prompt covers the detected labels and the
// desired emotion, which may be blank.
func NewRequest(labels []eeg.Emotion, desired eeg.Emotion, d time.Duration) Request {
	return Request{Prompt: BuildPrompt(labels, desired), Duration: d, Labels: labels, Desired: desired}
}

// sections returns the labels a track moves through, ending on the desired
// emotion when there is one.
func (r Request) sections() []eeg.Emotion {
	out := append([]eeg.Emotion(nil), r.Labels...)
	if r.Desired != "" {
		out = append(out, r.Desired)
	}
	return out
}

// Generator renders a track as WAV into dst.
type Generator interface {
	Generate(ctx context.Context, req Request, dst io.Writer) error
}

// Result holds generation timing.
type Result struct {
	Engine    string  `json:"engine"`
	Bytes     int64   `json:"bytes"`
	LatencyMs float64 `json:"latency_ms"`
}

// GeneratorRouter dispatches to the correct backend based on engine name and
// records latency metrics.
type GeneratorRouter struct {
	*Router[Generator]
}

func NewGeneratorRouter(backends map[string]Generator, fallback string) *GeneratorRouter {
	return &GeneratorRouter{Router: NewRouter(backends, fallback)}
}

// Generate routes to the backend for engine and writes the track into dst.
func (r *GeneratorRouter) Generate(ctx context.Context, engine string, req Request, dst io.Writer) (*Result, error) {
	start := time.Now()

	backend, err := r.Route(engine)
	if err != nil {
		return nil, err
	}

	cw := &countingWriter{w: dst}
	if err := backend.Generate(ctx, req, cw); err != nil {
		metrics.Errors.WithLabelValues("music", "generate").Inc()
		return nil, fmt.Errorf("generate with %s: %w", engine, err)
	}

	latency := time.Since(start)
	metrics.GenerationDuration.WithLabelValues(engine).Observe(latency.Seconds())

	return &Result{
		Engine:    engine,
		Bytes:     cw.n,
		LatencyMs: float64(latency.Milliseconds()),
	}, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
