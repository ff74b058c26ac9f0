package music

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
)

func TestNamerSessionPath(t *testing.T) {
	n := NewNamer("radios")
	labels := []eeg.Emotion{eeg.Happy, eeg.Sad}

	assert.Equal(t, filepath.Join("radios", "session1_happy_sad_calm.wav"), n.SessionPath(1, labels, eeg.Calm))
	assert.Equal(t, filepath.Join("radios", "session1_happy_sad_calm_1.wav"), n.SessionPath(1, labels, eeg.Calm))
	assert.Equal(t, filepath.Join("radios", "session1_happy_sad_calm_2.wav"), n.SessionPath(1, labels, eeg.Calm))
	assert.Equal(t, filepath.Join("radios", "session2_happy_sad_calm.wav"), n.SessionPath(2, labels, eeg.Calm))
}

func TestNamerSanitizes(t *testing.T) {
	n := NewNamer("out")

	assert.Equal(t, filepath.Join("out", "session3_tense_very-calm.wav"), n.SessionPath(3, []eeg.Emotion{eeg.Tense}, "Very calm"))
	assert.Equal(t, filepath.Join("out", "session4_bored_---etc.wav"), n.SessionPath(4, []eeg.Emotion{eeg.Bored}, "../etc"))
	assert.Equal(t, filepath.Join("out", "session5_sad.wav"), n.SessionPath(5, []eeg.Emotion{eeg.Sad}, ""))
}

func TestNamerConcurrent(t *testing.T) {
	n := NewNamer("radios")
	paths := make(chan string, 50)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			paths <- n.SessionPath(1, []eeg.Emotion{eeg.Calm}, eeg.Happy)
		}()
	}
	wg.Wait()
	close(paths)

	seen := map[string]bool{}
	for p := range paths {
		assert.False(t, seen[p], "duplicate path %s", p)
		seen[p] = true
	}
	assert.Len(t, seen, 50)
}

func TestCommunityPath(t *testing.T) {
	assert.Equal(t, filepath.Join("radios", "community_sound.wav"), NewNamer("radios").CommunityPath())
}
