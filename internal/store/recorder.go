package store

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
)

// Writer is the write side of Store used by Recorder.
type Writer interface {
	CreateStream(id, source string) error
	EndStream(id string) error
	SaveSession(r SessionRecord) error
	SaveCommunity(r CommunityRecord) error
}

type recordMsg struct {
	kind      string // "stream_create", "stream_end", "session", "community"
	source    string
	session   SessionRecord
	community CommunityRecord
}

// Recorder writes one stream's results asynchronously via a buffered channel.
// All methods are nil-safe (no-op on nil receiver), so persistence can be
// switched off by passing a nil *Recorder.
type Recorder struct {
	w        Writer
	streamID string
	ch       chan recordMsg
	done     chan struct{}
}

// NewRecorder creates a stream record and a recorder bound to it. Must call
// Close when the stream ends.
func NewRecorder(w Writer, source string) *Recorder {
	r := &Recorder{
		w:        w,
		streamID: uuid.NewString(),
		ch:       make(chan recordMsg, 64),
		done:     make(chan struct{}),
	}
	go r.drain()
	r.ch <- recordMsg{kind: "stream_create", source: source}
	return r
}

func (r *Recorder) drain() {
	defer close(r.done)
	for msg := range r.ch {
		r.handle(msg)
	}
}

func (r *Recorder) handle(m recordMsg) {
	handlers := map[string]func() error{
		"stream_create": func() error { return r.w.CreateStream(r.streamID, m.source) },
		"stream_end":    func() error { return r.w.EndStream(r.streamID) },
		"session":       func() error { return r.w.SaveSession(m.session) },
		"community":     func() error { return r.w.SaveCommunity(m.community) },
	}
	fn, ok := handlers[m.kind]
	if !ok {
		return
	}
	if err := fn(); err != nil {
		slog.Warn("record write failed", "kind", m.kind, "stream", r.streamID, "error", err)
	}
}

// StreamID returns the ID of the stream being recorded, or "" on nil.
func (r *Recorder) StreamID() string {
	if r == nil {
		return ""
	}
	return r.streamID
}

// RecordSession stores a finalized session with the listener's desired emotion
// and the track generated for it. It returns the record ID.
func (r *Recorder) RecordSession(sess eeg.Session, desired eeg.Emotion, trackPath string) string {
	if r == nil {
		return ""
	}
	id := uuid.NewString()
	r.ch <- recordMsg{
		kind: "session",
		session: SessionRecord{
			ID:         id,
			StreamID:   r.streamID,
			Index:      sess.Index,
			Emotions:   sess.Emotions,
			Samples:    sess.Samples,
			Incomplete: sess.Incomplete,
			Desired:    desired,
			TrackPath:  trackPath,
			CreatedAt:  time.Now().UTC(),
		},
	}
	return id
}

// RecordCommunity stores a consensus over people sessions.
func (r *Recorder) RecordCommunity(people int, dist *eeg.Distribution, consensus eeg.Emotion, trackPath string) string {
	if r == nil {
		return ""
	}
	id := uuid.NewString()
	var entries []eeg.LabelCount
	if dist != nil {
		entries = dist.Entries()
	}
	r.ch <- recordMsg{
		kind: "community",
		community: CommunityRecord{
			ID:           id,
			StreamID:     r.streamID,
			People:       people,
			Consensus:    consensus,
			Distribution: entries,
			TrackPath:    trackPath,
			CreatedAt:    time.Now().UTC(),
		},
	}
	return id
}

// Close marks the stream ended, drains pending writes and shuts down the
// background goroutine.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	r.ch <- recordMsg{kind: "stream_end"}
	close(r.ch)
	<-r.done
}
