// Package source delivers ordered EEG sample streams from recordings, the live
// sensor hub, or memory.
package source

import (
	"context"
	"errors"
	"io"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
)

// Source yields samples in stream order. Next returns io.EOF once the stream
// has ended.
type Source interface {
	Next(ctx context.Context) (eeg.Sample, error)
}

// SliceSource replays samples held in memory.
type SliceSource struct {
	samples []eeg.Sample
	pos     int
}

func NewSliceSource(samples ...eeg.Sample) *SliceSource {
	return &SliceSource{samples: samples}
}

func (s *SliceSource) Next(ctx context.Context) (eeg.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.samples) {
		return nil, io.EOF
	}
	sample := s.samples[s.pos]
	s.pos++
	return sample, nil
}

// ReadAll drains src. Samples read before an error are returned with it.
func ReadAll(ctx context.Context, src Source) ([]eeg.Sample, error) {
	var out []eeg.Sample
	for {
		s, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
}
