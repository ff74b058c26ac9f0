package store

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
)

// openTestStore connects to BRAINWAVE_TEST_DATABASE_URL or skips.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("BRAINWAVE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("BRAINWAVE_TEST_DATABASE_URL not set")
	}
	s, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreSessions(t *testing.T) {
	s := openTestStore(t)

	streamID := uuid.NewString()
	require.NoError(t, s.CreateStream(streamID, "test"))

	now := time.Now().UTC().Truncate(time.Millisecond)
	first := SessionRecord{
		ID:        uuid.NewString(),
		StreamID:  streamID,
		Index:     1,
		Emotions:  []eeg.Emotion{eeg.Happy, eeg.Sad},
		Samples:   9,
		Desired:   eeg.Calm,
		TrackPath: "radios/session1_happy_sad_calm.wav",
		CreatedAt: now,
	}
	second := SessionRecord{
		ID:         uuid.NewString(),
		StreamID:   streamID,
		Index:      2,
		Emotions:   []eeg.Emotion{eeg.Calm},
		Samples:    2,
		Incomplete: true,
		CreatedAt:  now.Add(time.Second),
	}
	require.NoError(t, s.SaveSession(first))
	require.NoError(t, s.SaveSession(second))
	require.NoError(t, s.EndStream(streamID))

	got, err := s.GetSession(first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Emotions, got.Emotions)
	assert.Equal(t, first.Desired, got.Desired)
	assert.Equal(t, first.TrackPath, got.TrackPath)
	assert.True(t, first.CreatedAt.Equal(got.CreatedAt))

	sessions, err := s.StreamSessions(streamID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, first.Session(), sessions[0].Session())
	assert.Equal(t, second.Session(), sessions[1].Session())

	list, total, err := s.ListSessions(10, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, 2)
	assert.NotEmpty(t, list)

	streams, err := s.ListStreams(500, 0)
	require.NoError(t, err)
	var found bool
	for _, st := range streams {
		if st.ID == streamID {
			found = true
			assert.Equal(t, 2, st.SessionCount)
			assert.NotNil(t, st.EndedAt)
		}
	}
	assert.True(t, found)

	all, err := s.AllSessions()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(all), 2)
}

func TestStoreGetSessionNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetSession(uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreCommunity(t *testing.T) {
	s := openTestStore(t)

	dist, consensus, err := eeg.Aggregate([]eeg.Session{
		{Index: 1, Emotions: []eeg.Emotion{eeg.Tense}},
		{Index: 2, Emotions: []eeg.Emotion{eeg.Tense, eeg.Bored}},
	})
	require.NoError(t, err)

	rec := CommunityRecord{
		ID:           uuid.NewString(),
		People:       2,
		Consensus:    consensus,
		Distribution: dist.Entries(),
		TrackPath:    "radios/community_sound.wav",
		CreatedAt:    time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, s.SaveCommunity(rec))

	got, err := s.LatestCommunity()
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Empty(t, got.StreamID)
	assert.Equal(t, eeg.Tense, got.Consensus)
	assert.Equal(t, dist.Entries(), got.Distribution)
}
