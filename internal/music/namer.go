package music

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
)

// CommunityFile is the file name of the consensus track.
const CommunityFile = "community_sound.wav"

// Namer assigns output paths to session tracks. Repeated base names within one
// run get a numeric suffix.
type Namer struct {
	dir    string
	mu     sync.Mutex
	counts map[string]int
}

func NewNamer(dir string) *Namer {
	return &Namer{dir: dir, counts: make(map[string]int)}
}

// SessionPath returns dir/session{N}_{labels}_{desired}.wav, or
// ..._{desired}_{k}.wav for the k-th repeat of the same base name.
func (n *Namer) SessionPath(index int, labels []eeg.Emotion, desired eeg.Emotion) string {
	parts := []string{fmt.Sprintf("session%d", index)}
	for _, e := range labels {
		parts = append(parts, slug(string(e)))
	}
	if desired != "" {
		parts = append(parts, slug(string(desired)))
	}
	base := strings.Join(parts, "_")

	n.mu.Lock()
	k, seen := n.counts[base]
	if seen {
		k++
	}
	n.counts[base] = k
	n.mu.Unlock()

	if seen {
		base = fmt.Sprintf("%s_%d", base, k)
	}
	return filepath.Join(n.dir, base+".wav")
}

// CommunityPath returns dir/community_sound.wav.
func (n *Namer) CommunityPath() string {
	return filepath.Join(n.dir, CommunityFile)
}

// slug lower-cases s and replaces anything that is not a letter or digit.
func slug(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return '-'
	}, s)
}
