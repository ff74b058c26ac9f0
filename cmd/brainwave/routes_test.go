package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
	"github.com/hubenschmidt/brainwave-radio/internal/music"
	"github.com/hubenschmidt/brainwave-radio/internal/store"
)

type fakeStore struct {
	records   []store.SessionRecord
	community *store.CommunityRecord
}

func (f *fakeStore) ListSessions(limit, offset int) ([]store.SessionRecord, int, error) {
	end := min(offset+limit, len(f.records))
	if offset > end {
		offset = end
	}
	return f.records[offset:end], len(f.records), nil
}

func (f *fakeStore) GetSession(id string) (*store.SessionRecord, error) {
	for _, r := range f.records {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListStreams(int, int) ([]store.Stream, error) {
	return []store.Stream{{ID: "s1", Source: "csv:a.csv", SessionCount: len(f.records)}}, nil
}

func (f *fakeStore) AllSessions() ([]eeg.Session, error) {
	out := make([]eeg.Session, len(f.records))
	for i, r := range f.records {
		out[i] = r.Session()
	}
	return out, nil
}

func (f *fakeStore) LatestCommunity() (*store.CommunityRecord, error) {
	if f.community == nil {
		return nil, store.ErrNotFound
	}
	return f.community, nil
}

func newTestMux(st sessionStore) *http.ServeMux {
	mux := http.NewServeMux()
	gen := music.NewGeneratorRouter(map[string]music.Generator{"tone": music.NewToneGenerator()}, "tone")
	d := deps{gen: gen, wsHandler: http.NotFoundHandler()}
	if st != nil {
		d.store = st
	}
	registerRoutes(mux, d)
	return mux
}

func get(t *testing.T, mux http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func seededStore() *fakeStore {
	return &fakeStore{records: []store.SessionRecord{
		{ID: "a", Index: 1, Emotions: []eeg.Emotion{eeg.Happy, eeg.Sad}, Samples: 4},
		{ID: "b", Index: 2, Emotions: []eeg.Emotion{eeg.Happy}, Samples: 2},
		{ID: "c", Index: 3, Emotions: []eeg.Emotion{eeg.Calm}, Samples: 1, Incomplete: true},
	}}
}

func TestHealthAndEngines(t *testing.T) {
	mux := newTestMux(nil)

	rr := get(t, mux, "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = get(t, mux, "/api/engines")
	assert.JSONEq(t, `{"engines":["tone"]}`, rr.Body.String())

	rr = get(t, mux, "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestStoreRoutesDisabled(t *testing.T) {
	mux := newTestMux(nil)
	for _, path := range []string{"/api/sessions", "/api/sessions/a", "/api/streams", "/api/community", "/api/community/latest"} {
		rr := get(t, mux, path)
		assert.Equal(t, http.StatusNotFound, rr.Code, path)
		assert.Contains(t, rr.Body.String(), "persistence disabled", path)
	}
}

func TestListSessions(t *testing.T) {
	mux := newTestMux(seededStore())

	body := decode(t, get(t, mux, "/api/sessions?limit=2&offset=1"))
	assert.EqualValues(t, 3, body["total"])
	sessions := body["sessions"].([]interface{})
	require.Len(t, sessions, 2)
	assert.Equal(t, "b", sessions[0].(map[string]interface{})["id"])

	body = decode(t, get(t, mux, "/api/sessions?limit=bogus"))
	assert.Len(t, body["sessions"], 3)
}

func TestGetSession(t *testing.T) {
	mux := newTestMux(seededStore())

	body := decode(t, get(t, mux, "/api/sessions/a"))
	assert.Equal(t, []interface{}{"Happy", "Sad"}, body["emotions"])

	assert.Equal(t, http.StatusNotFound, get(t, mux, "/api/sessions/zzz").Code)
}

func TestCommunityRoute(t *testing.T) {
	mux := newTestMux(seededStore())

	body := decode(t, get(t, mux, "/api/community"))
	assert.EqualValues(t, 3, body["people"])
	assert.Equal(t, "Happy", body["consensus"])
	assert.Equal(t, []interface{}{
		map[string]interface{}{"emotion": "Happy", "count": float64(2)},
		map[string]interface{}{"emotion": "Sad", "count": float64(1)},
		map[string]interface{}{"emotion": "Calm", "count": float64(1)},
	}, body["distribution"])

	rr := get(t, newTestMux(&fakeStore{}), "/api/community")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "no sessions found")
}

func TestLatestCommunityRoute(t *testing.T) {
	st := seededStore()
	mux := newTestMux(st)
	assert.Equal(t, http.StatusNotFound, get(t, mux, "/api/community/latest").Code)

	st.community = &store.CommunityRecord{ID: "x", People: 3, Consensus: eeg.Happy}
	body := decode(t, get(t, mux, "/api/community/latest"))
	assert.Equal(t, "Happy", body["consensus"])
}

func TestStreamsRoute(t *testing.T) {
	body := decode(t, get(t, newTestMux(seededStore()), "/api/streams"))
	streams := body["streams"].([]interface{})
	require.Len(t, streams, 1)
	assert.EqualValues(t, 3, streams[0].(map[string]interface{})["session_count"])
}
