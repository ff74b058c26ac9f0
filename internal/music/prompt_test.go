package music

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
)

func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		name     string
		detected []eeg.Emotion
		desired  eeg.Emotion
		want     string
	}{
		{
			name: "no labels",
			want: "A high quality music track. ",
		},
		{
			name:     "single detected label",
			detected: []eeg.Emotion{eeg.Calm},
			want:     "A high quality music track. " + descriptors[eeg.Calm],
		},
		{
			name:     "detected labels and desired",
			detected: []eeg.Emotion{eeg.Happy, eeg.Sad},
			desired:  eeg.Relaxed,
			want: "A high quality music track. " + descriptors[eeg.Happy] + ", " +
				descriptors[eeg.Sad] + ", want to feel " + descriptors[eeg.Relaxed],
		},
		{
			name:     "blank desired keeps every label detected",
			detected: []eeg.Emotion{eeg.Happy, eeg.Sad},
			want:     "A high quality music track. " + descriptors[eeg.Happy] + ", " + descriptors[eeg.Sad],
		},
		{
			name:     "unknown desired label",
			detected: []eeg.Emotion{eeg.Bored},
			desired:  "Nostalgic",
			want:     "A high quality music track. " + descriptors[eeg.Bored] + ", want to feel Nostalgic mood",
		},
		{
			name:     "unknown detected label",
			detected: []eeg.Emotion{"Dreamy"},
			want:     "A high quality music track. Dreamy mood",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildPrompt(tt.detected, tt.desired))
		})
	}
}

func TestDescriptorsCoverAllLabels(t *testing.T) {
	for _, e := range eeg.Emotions {
		assert.NotContains(t, Describe(e), "mood", e)
	}
	assert.Len(t, descriptors, len(eeg.Emotions))
}

func TestTokens(t *testing.T) {
	assert.Equal(t, 1000, Tokens(20*time.Second))
	assert.Equal(t, 1500, Tokens(30*time.Second))
	assert.Equal(t, 25, Tokens(500*time.Millisecond))
}

func TestNewRequest(t *testing.T) {
	req := NewRequest([]eeg.Emotion{eeg.Angry}, eeg.Calm, 20*time.Second)
	assert.Equal(t, BuildPrompt([]eeg.Emotion{eeg.Angry}, eeg.Calm), req.Prompt)
	assert.Equal(t, 20*time.Second, req.Duration)
	assert.Equal(t, []eeg.Emotion{eeg.Angry}, req.Labels)
	assert.Equal(t, eeg.Calm, req.Desired)
	assert.Equal(t, []eeg.Emotion{eeg.Angry, eeg.Calm}, req.sections())

	req = NewRequest([]eeg.Emotion{eeg.Angry, eeg.Sad}, "", time.Second)
	assert.NotContains(t, req.Prompt, "want to feel")
	assert.Equal(t, []eeg.Emotion{eeg.Angry, eeg.Sad}, req.sections())
}
