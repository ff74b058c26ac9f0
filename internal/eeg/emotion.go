package eeg

import "strings"

// Emotion is a categorical affect label. The nine constants below are the
// classifier's closed output set; other values only appear as user-supplied
// desired emotions.
type Emotion string

const (
	Excited  Emotion = "Excited"
	Tense    Emotion = "Tense"
	Angry    Emotion = "Angry"
	Happy    Emotion = "Happy"
	Bored    Emotion = "Bored"
	Stressed Emotion = "Stressed"
	Relaxed  Emotion = "Relaxed"
	Calm     Emotion = "Calm"
	Sad      Emotion = "Sad"
)

// Emotions lists the classifier labels, high arousal first.
var Emotions = []Emotion{Excited, Tense, Angry, Happy, Bored, Stressed, Relaxed, Calm, Sad}

// Classifier thresholds. Lower bounds are inclusive except the negative
// valence bound, which is exclusive.
const (
	ArousalModerate = 0.5
	ArousalHigh     = 1.0
	ValencePositive = 0.5
	ValenceNegative = -0.5
)

// emotionGrid is indexed by [arousal tier][valence tier].
var emotionGrid = [3][3]Emotion{
	tierHigh:     {Excited, Tense, Angry},
	tierModerate: {Happy, Bored, Stressed},
	tierLow:      {Relaxed, Calm, Sad},
}

const (
	tierHigh = iota
	tierModerate
	tierLow
)

const (
	valencePositive = iota
	valenceNeutral
	valenceNegative
)

// Classify maps a valence/arousal pair to one of the nine labels.
//
//	               positive  neutral  negative
//	high     (≥1.0) Excited   Tense    Angry
//	moderate (≥0.5) Happy     Bored    Stressed
//	low             Relaxed   Calm     Sad
//
// Valence is positive at ≥0.5 and negative below -0.5; -0.5 itself is neutral.
// NaN fails every comparison and lands in the low/neutral cells.
func Classify(valence, arousal float64) Emotion {
	return emotionGrid[arousalTier(arousal)][valenceTier(valence)]
}

// ClassifyAffect is Classify for an Affect point.
func ClassifyAffect(a Affect) Emotion {
	return Classify(a.Valence, a.Arousal)
}

func arousalTier(a float64) int {
	switch {
	case a >= ArousalHigh:
		return tierHigh
	case a >= ArousalModerate:
		return tierModerate
	default:
		return tierLow
	}
}

func valenceTier(v float64) int {
	switch {
	case v >= ValencePositive:
		return valencePositive
	case v < ValenceNegative:
		return valenceNegative
	default:
		return valenceNeutral
	}
}

// Known reports whether e is one of the classifier labels.
func (e Emotion) Known() bool {
	for _, k := range Emotions {
		if e == k {
			return true
		}
	}
	return false
}

// NormalizeEmotion trims free text and capitalizes it the way labels are
// spelled: first letter upper case, the rest lower case.
func NormalizeEmotion(s string) Emotion {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r := []rune(strings.ToLower(s))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return Emotion(r)
}
