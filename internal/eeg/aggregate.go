package eeg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput is returned when aggregating zero sessions.
var ErrEmptyInput = errors.New("no sessions to aggregate")

// LabelCount is one entry of a Distribution.
type LabelCount struct {
	Emotion Emotion `json:"emotion"`
	Count   int     `json:"count"`
}

// Distribution counts, per label, the sessions in which the label appeared.
// Entries keep the order in which labels were first added.
type Distribution struct {
	order  []Emotion
	counts map[Emotion]int
}

// NewDistribution returns an empty Distribution.
func NewDistribution() *Distribution {
	return &Distribution{counts: make(map[Emotion]int)}
}

// Add records one session's distinct labels. Duplicate labels within the
// slice are counted once.
func (d *Distribution) Add(labels []Emotion) {
	for _, l := range Distinct(labels) {
		if _, ok := d.counts[l]; !ok {
			d.order = append(d.order, l)
		}
		d.counts[l]++
	}
}

// Count returns the number of sessions that contained e.
func (d *Distribution) Count(e Emotion) int { return d.counts[e] }

// Len returns the number of distinct labels.
func (d *Distribution) Len() int { return len(d.order) }

// Entries returns the counts in insertion order.
func (d *Distribution) Entries() []LabelCount {
	out := make([]LabelCount, len(d.order))
	for i, l := range d.order {
		out[i] = LabelCount{Emotion: l, Count: d.counts[l]}
	}
	return out
}

// Mode returns the most frequent label; ties go to the label added first.
// It returns false for an empty distribution.
func (d *Distribution) Mode() (Emotion, bool) {
	var best Emotion
	bestCount := 0
	for _, l := range d.order {
		if c := d.counts[l]; c > bestCount {
			best, bestCount = l, c
		}
	}
	return best, bestCount > 0
}

// String formats the distribution as {Label: n, ...}.
func (d *Distribution) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, l := range d.order {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %d", l, d.counts[l])
	}
	b.WriteByte('}')
	return b.String()
}

// Aggregate combines finalized sessions into a community distribution and
// its consensus label. Sessions are consumed in the order given.
func Aggregate(sessions []Session) (*Distribution, Emotion, error) {
	if len(sessions) == 0 {
		return nil, "", ErrEmptyInput
	}
	d := NewDistribution()
	for _, s := range sessions {
		d.Add(s.Emotions)
	}
	consensus, ok := d.Mode()
	if !ok {
		return d, "", ErrEmptyInput
	}
	return d, consensus, nil
}
