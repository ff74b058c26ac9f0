package eeg

// Affect is a point in valence/arousal space.
type Affect struct {
	Valence float64
	Arousal float64
}

// Extract computes valence and arousal from a sample's alpha and beta band
// powers. Valence is the right-minus-left normalized alpha asymmetry; arousal
// is the beta/alpha ratio averaged over both channels. Missing fields count as
// zero and zero denominators collapse to zero, so Extract never fails.
func Extract(s Sample) Affect {
	lAlpha := s.Float(FieldLeftAlpha, 0)
	rAlpha := s.Float(FieldRightAlpha, 0)
	lBeta := s.Float(FieldLeftBeta, 0)
	rBeta := s.Float(FieldRightBeta, 0)

	var valence float64
	if sum := lAlpha + rAlpha; sum != 0 {
		valence = (rAlpha - lAlpha) / sum
	}

	avgAlpha := (lAlpha + rAlpha) / 2
	avgBeta := (lBeta + rBeta) / 2

	var arousal float64
	if avgAlpha != 0 {
		arousal = avgBeta / avgAlpha
	}

	return Affect{Valence: valence, Arousal: arousal}
}

// Reading is a sample reduced to what the pipeline acts on.
type Reading struct {
	Affect
	Emotion Emotion
	Active  bool
}

// Read extracts, classifies and checks contact for one sample.
func Read(s Sample) Reading {
	a := Extract(s)
	return Reading{Affect: a, Emotion: ClassifyAffect(a), Active: Active(s)}
}
