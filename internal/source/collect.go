package source

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
)

// DefaultAutosaveEvery is how many samples are collected between saves.
const DefaultAutosaveEvery = 10

// Recording accumulates collected samples and saves them to a CSV file every
// few samples.
type Recording struct {
	path    string
	every   int
	samples []eeg.Sample
}

func NewRecording(path string, every int) *Recording {
	if every <= 0 {
		every = DefaultAutosaveEvery
	}
	return &Recording{path: path, every: every}
}

func (r *Recording) Path() string { return r.path }

func (r *Recording) Len() int { return len(r.samples) }

func (r *Recording) Samples() []eeg.Sample { return r.samples }

// Append adds a sample and autosaves on every full batch.
func (r *Recording) Append(s eeg.Sample) error {
	r.samples = append(r.samples, s)
	if len(r.samples)%r.every != 0 {
		return nil
	}
	if err := r.Save(); err != nil {
		return err
	}
	slog.Info("auto-saved recording", "samples", len(r.samples), "path", r.path)
	return nil
}

// Save writes everything collected so far. An empty recording is not written.
func (r *Recording) Save() error {
	if len(r.samples) == 0 {
		return nil
	}
	return SaveCSV(r.path, r.samples)
}

// Collect reads up to n samples from src into rec and saves the result; n <= 0
// reads until the stream ends. A stream that ends early is not an error; a
// source failure is returned after the partial recording has been saved.
func Collect(ctx context.Context, src Source, rec *Recording, n int) error {
	var srcErr error
	for n <= 0 || rec.Len() < n {
		s, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			srcErr = err
			break
		}
		if err := rec.Append(s); err != nil {
			return err
		}
		slog.Debug("collected sample",
			"count", rec.Len(),
			"target", n,
			"left_p_bad", s.Float(eeg.FieldLeftPBad, 1),
			"right_p_bad", s.Float(eeg.FieldRightPBad, 1),
		)
	}

	if err := rec.Save(); err != nil {
		return err
	}
	return srcErr
}
