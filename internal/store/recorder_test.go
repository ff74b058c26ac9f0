package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
)

type fakeWriter struct {
	mu        sync.Mutex
	calls     []string
	streams   map[string]string
	ended     []string
	sessions  []SessionRecord
	community []CommunityRecord
	failOn    string
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{streams: map[string]string{}}
}

func (f *fakeWriter) record(call string) error {
	f.calls = append(f.calls, call)
	if call == f.failOn {
		return errors.New("write failed")
	}
	return nil
}

func (f *fakeWriter) CreateStream(id, source string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streams[id] = source
	return f.record("create")
}

func (f *fakeWriter) EndStream(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ended = append(f.ended, id)
	return f.record("end")
}

func (f *fakeWriter) SaveSession(r SessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, r)
	return f.record("session")
}

func (f *fakeWriter) SaveCommunity(r CommunityRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.community = append(f.community, r)
	return f.record("community")
}

func TestRecorder(t *testing.T) {
	w := newFakeWriter()
	r := NewRecorder(w, "csv:data/eeg.csv")
	streamID := r.StreamID()
	require.NotEmpty(t, streamID)

	s1 := eeg.Session{Index: 1, Emotions: []eeg.Emotion{eeg.Happy, eeg.Sad}, Samples: 12}
	s2 := eeg.Session{Index: 2, Emotions: []eeg.Emotion{eeg.Calm}, Samples: 3, Incomplete: true}
	id1 := r.RecordSession(s1, eeg.Relaxed, "radios/session1_happy_sad_relaxed.wav")
	id2 := r.RecordSession(s2, eeg.Happy, "radios/session2_calm_happy.wav")

	dist, consensus, err := eeg.Aggregate([]eeg.Session{s1, s2})
	require.NoError(t, err)
	cid := r.RecordCommunity(2, dist, consensus, "radios/community_sound.wav")
	r.Close()

	assert.NotEqual(t, id1, id2)
	assert.NotEmpty(t, cid)
	assert.Equal(t, []string{"create", "session", "session", "community", "end"}, w.calls)
	assert.Equal(t, "csv:data/eeg.csv", w.streams[streamID])
	assert.Equal(t, []string{streamID}, w.ended)

	require.Len(t, w.sessions, 2)
	assert.Equal(t, id1, w.sessions[0].ID)
	assert.Equal(t, streamID, w.sessions[0].StreamID)
	assert.Equal(t, s1, w.sessions[0].Session())
	assert.Equal(t, eeg.Relaxed, w.sessions[0].Desired)
	assert.Equal(t, s2, w.sessions[1].Session())

	require.Len(t, w.community, 1)
	assert.Equal(t, 2, w.community[0].People)
	assert.Equal(t, eeg.Happy, w.community[0].Consensus)
	assert.Equal(t, dist.Entries(), w.community[0].Distribution)
}

func TestRecorderKeepsGoingAfterWriteFailure(t *testing.T) {
	w := newFakeWriter()
	w.failOn = "session"
	r := NewRecorder(w, "hub")

	r.RecordSession(eeg.Session{Index: 1, Emotions: []eeg.Emotion{eeg.Calm}}, "", "")
	r.RecordSession(eeg.Session{Index: 2, Emotions: []eeg.Emotion{eeg.Sad}}, "", "")
	r.Close()

	assert.Len(t, w.sessions, 2)
	assert.Equal(t, "end", w.calls[len(w.calls)-1])
}

func TestRecorderNilSafe(t *testing.T) {
	var r *Recorder

	assert.Empty(t, r.StreamID())
	assert.Empty(t, r.RecordSession(eeg.Session{Index: 1}, eeg.Calm, "x.wav"))
	assert.Empty(t, r.RecordCommunity(1, nil, eeg.Calm, ""))
	assert.NotPanics(t, r.Close)
}

func TestSessionRecordSession(t *testing.T) {
	rec := SessionRecord{Index: 4, Emotions: []eeg.Emotion{eeg.Bored}, Samples: 7, Incomplete: true, Desired: eeg.Happy}
	assert.Equal(t, eeg.Session{Index: 4, Emotions: []eeg.Emotion{eeg.Bored}, Samples: 7, Incomplete: true}, rec.Session())
}
