package music

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
)

// ToneSampleRate matches the MusicGen audio encoder.
const ToneSampleRate = 32000

type toneStyle struct {
	bpm   float64
	root  float64 // Hz
	minor bool
}

// High arousal plays fast, negative valence plays in minor.
var toneStyles = map[eeg.Emotion]toneStyle{
	eeg.Excited:  {bpm: 168, root: 440.00},
	eeg.Tense:    {bpm: 140, root: 311.13, minor: true},
	eeg.Angry:    {bpm: 176, root: 220.00, minor: true},
	eeg.Happy:    {bpm: 128, root: 392.00},
	eeg.Bored:    {bpm: 92, root: 293.66},
	eeg.Stressed: {bpm: 132, root: 246.94, minor: true},
	eeg.Relaxed:  {bpm: 72, root: 329.63},
	eeg.Calm:     {bpm: 60, root: 261.63},
	eeg.Sad:      {bpm: 64, root: 196.00, minor: true},
}

var (
	majorSteps = []int{0, 4, 7, 12, 7, 4}
	minorSteps = []int{0, 3, 7, 12, 7, 3}
)

type toneGenerator struct {
	sampleRate int
}

// NewToneGenerator returns a backend that synthesizes arpeggios locally, one
// section per label.
func NewToneGenerator() Generator {
	return &toneGenerator{sampleRate: ToneSampleRate}
}

func (g *toneGenerator) Generate(ctx context.Context, req Request, dst io.Writer) error {
	if req.Duration <= 0 {
		return errors.New("tone duration must be positive")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	labels := req.sections()
	if len(labels) == 0 {
		labels = []eeg.Emotion{eeg.Calm}
	}

	total := int(req.Duration.Seconds() * float64(g.sampleRate))
	data := make([]int, total)
	section := total / len(labels)
	for i, label := range labels {
		start := i * section
		end := start + section
		if i == len(labels)-1 {
			end = total
		}
		g.render(data[start:end], styleFor(label))
	}

	buf := &memFile{}
	enc := wav.NewEncoder(buf, g.sampleRate, 16, 1, 1)
	err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: g.sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	})
	if err != nil {
		return fmt.Errorf("encode tone: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize tone: %w", err)
	}

	_, err = dst.Write(buf.buf)
	return err
}

func styleFor(e eeg.Emotion) toneStyle {
	if s, ok := toneStyles[e]; ok {
		return s
	}
	return toneStyles[eeg.Calm]
}

func (g *toneGenerator) render(out []int, s toneStyle) {
	steps := majorSteps
	if s.minor {
		steps = minorSteps
	}
	noteLen := int(60 / s.bpm * float64(g.sampleRate))
	if noteLen <= 0 {
		noteLen = 1
	}
	attack := noteLen / 20
	release := noteLen / 4

	for i := range out {
		note := i / noteLen
		pos := i % noteLen
		freq := s.root * math.Pow(2, float64(steps[note%len(steps)])/12)

		env := 1.0
		switch {
		case attack > 0 && pos < attack:
			env = float64(pos) / float64(attack)
		case pos > noteLen-release:
			env = float64(noteLen-pos) / float64(release)
		}

		t := float64(i) / float64(g.sampleRate)
		v := 0.6*math.Sin(2*math.Pi*freq*t) + 0.15*math.Sin(4*math.Pi*freq*t)
		out[i] = int(v * env * 0.8 * math.MaxInt16)
	}
}

// memFile is an in-memory io.WriteSeeker for the WAV encoder, which rewrites
// its header on Close.
type memFile struct {
	buf []byte
	pos int
}

func (m *memFile) Write(p []byte) (int, error) {
	if end := m.pos + len(p); end > len(m.buf) {
		m.buf = append(m.buf, make([]byte, end-len(m.buf))...)
	}
	n := copy(m.buf[m.pos:], p)
	m.pos += n
	return n, nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(m.pos) + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("negative position")
	}
	m.pos = int(abs)
	return abs, nil
}
