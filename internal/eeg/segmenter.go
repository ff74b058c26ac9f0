package eeg

// ContactThreshold is the p_bad level below which a channel counts as having
// good sensor contact.
const ContactThreshold = 0.5

// SegmenterConfig controls session segmentation.
type SegmenterConfig struct {
	// LegacyFirstSample reproduces the numbering of legacy recordings: a
	// stream that starts active does not open a numbered session until the
	// first real off→on edge, and an open session at end of stream is only
	// finalized after such an edge was seen.
	LegacyFirstSample bool
}

// DefaultSegmenterConfig returns the default segmentation behaviour, where the
// first active sample of a stream opens session 1.
func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{}
}

// Session is one contiguous interval of good sensor contact.
type Session struct {
	Index      int       // 1-based ordinal of activation (0 only in legacy mode)
	Emotions   []Emotion // distinct labels in order of first occurrence
	Samples    int       // number of active samples observed
	Incomplete bool      // finalized at end of stream rather than on contact loss
}

// Edge describes the activity transition caused by a sample.
type Edge uint8

const (
	EdgeNone  Edge = iota
	EdgeStart      // inactive→active: a new session was opened
	EdgeEnd        // active→inactive: the open session was closed
)

func (e Edge) String() string {
	switch e {
	case EdgeStart:
		return "start"
	case EdgeEnd:
		return "end"
	default:
		return "none"
	}
}

// Active reports whether a sample indicates sensor contact on either side.
// Missing quality fields count as poor contact.
func Active(s Sample) bool {
	return s.Float(FieldLeftPBad, 1) < ContactThreshold ||
		s.Float(FieldRightPBad, 1) < ContactThreshold
}

// Segmenter splits one ordered sample stream into sessions. It is not safe for
// concurrent use; independent streams each get their own Segmenter.
type Segmenter struct {
	cfg      SegmenterConfig
	seen     bool // a sample has been observed
	active   bool // activity of the previous sample
	started  bool // at least one real off→on edge (legacy mode bookkeeping)
	index    int
	emotions []Emotion
}

// NewSegmenter creates a Segmenter with the given config.
func NewSegmenter(cfg SegmenterConfig) *Segmenter {
	return &Segmenter{cfg: cfg}
}

// Observe feeds one sample and its classified label into the segmenter. It
// returns the edge the sample produced and, on an end edge with buffered
// labels, the finalized session.
func (g *Segmenter) Observe(s Sample, label Emotion) (Edge, *Session) {
	active := Active(s)
	first := !g.seen

	edge := EdgeNone
	var closed *Session

	switch {
	case active && (first || !g.active):
		edge = g.handleStart(first)
	case !active && g.active:
		edge = EdgeEnd
		closed = g.finalize(false)
	}

	if active {
		g.emotions = append(g.emotions, label)
	}

	g.seen = true
	g.active = active
	return edge, closed
}

func (g *Segmenter) handleStart(first bool) Edge {
	if first && g.cfg.LegacyFirstSample {
		return EdgeNone
	}
	g.index++
	g.started = true
	g.emotions = g.emotions[:0]
	return EdgeStart
}

// Finish finalizes the open session at end of stream. It returns nil when no
// session is open or the open session has no samples.
func (g *Segmenter) Finish() *Session {
	if !g.active {
		return nil
	}
	if g.cfg.LegacyFirstSample && !g.started {
		return nil
	}
	return g.finalize(true)
}

func (g *Segmenter) finalize(incomplete bool) *Session {
	if len(g.emotions) == 0 {
		return nil
	}
	sess := &Session{
		Index:      g.index,
		Emotions:   Distinct(g.emotions),
		Samples:    len(g.emotions),
		Incomplete: incomplete,
	}
	g.emotions = nil
	return sess
}

// Index returns the ordinal of the most recently opened session.
func (g *Segmenter) Index() int { return g.index }

// Open reports whether the last observed sample was active.
func (g *Segmenter) Open() bool { return g.active }

// Buffered returns how many labels the open session has collected.
func (g *Segmenter) Buffered() int { return len(g.emotions) }

// Distinct returns the unique labels in order of first occurrence.
func Distinct(labels []Emotion) []Emotion {
	seen := make(map[Emotion]bool, len(labels))
	out := make([]Emotion, 0, len(labels))
	for _, l := range labels {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
