package music

import (
	"strings"
	"time"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
)

// FrameRate is the MusicGen token rate in frames per second.
const FrameRate = 50

const promptPrefix = "A high quality music track. "

var descriptors = map[eeg.Emotion]string{
	eeg.Excited:  "Vibrant, ecstatic, major scale, very fast tempo, dynamic rhythm, bright synth lead, EDM/Pop style, high energy",
	eeg.Tense:    "Anxious, suspenseful, moderate-to-fast tempo, dissonant chords, rising pitch, aggressive percussion, cinematic/electronic, unsettling",
	eeg.Angry:    "Aggressive, volatile, very fast tempo, highly dissonant, heavy distortion, intense rhythm section, Heavy Metal/Punk style, loud",
	eeg.Happy:    "Upbeat, cheerful, major scale, fast tempo, pop style, clear melody, bright brass/strings",
	eeg.Bored:    "Dull, monotonous, moderate-to-slow tempo, repetitive motif, simple texture, neutral key, lo-fi or elevator music",
	eeg.Stressed: "Intense, chaotic, fast tempo, minor key, complex rhythm, electronic textures, high energy, dark atmosphere",
	eeg.Relaxed:  "Serene, peaceful, slow tempo, gentle major/modal scale, soft textures, acoustic guitar, nature sounds, ambient, tranquil",
	eeg.Calm:     "Tranquil, centered, very slow tempo, smooth textures, simple harmonies, meditation or ambient style, soft piano",
	eeg.Sad:      "Melancholic, sorrowful, slow tempo, minor scale, sparse arrangement, emotional piano/strings, ballad style",
}

// Describe returns the style descriptor for a label, or "<label> mood" for
// labels outside the nine.
func Describe(e eeg.Emotion) string {
	if d, ok := descriptors[e]; ok {
		return d
	}
	return string(e) + " mood"
}

// BuildPrompt renders a text-to-music prompt from the detected labels and the
// emotion the listener wants to feel. A blank desired emotion adds no
// "want to feel" part.
func BuildPrompt(detected []eeg.Emotion, desired eeg.Emotion) string {
	parts := make([]string, 0, len(detected)+1)
	for _, e := range detected {
		parts = append(parts, Describe(e))
	}
	if desired != "" {
		parts = append(parts, "want to feel "+Describe(desired))
	}
	return promptPrefix + strings.Join(parts, ", ")
}

// Tokens converts a track length to MusicGen max_new_tokens.
func Tokens(d time.Duration) int {
	return int(d.Seconds() * FrameRate)
}

func tokenDuration(tokens int) time.Duration {
	return time.Duration(tokens) * time.Second / FrameRate
}
