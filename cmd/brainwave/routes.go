package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
	"github.com/hubenschmidt/brainwave-radio/internal/music"
	"github.com/hubenschmidt/brainwave-radio/internal/store"
)

const defaultListLimit = 50

// sessionStore is the read side of store.Store used by the API.
type sessionStore interface {
	ListSessions(limit, offset int) ([]store.SessionRecord, int, error)
	GetSession(id string) (*store.SessionRecord, error)
	ListStreams(limit, offset int) ([]store.Stream, error)
	AllSessions() ([]eeg.Session, error)
	LatestCommunity() (*store.CommunityRecord, error)
}

type deps struct {
	gen       *music.GeneratorRouter
	store     sessionStore // nil when persistence is disabled
	wsHandler http.Handler
}

func registerRoutes(mux *http.ServeMux, d deps) {
	mux.HandleFunc("/health", handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/ws/stream", d.wsHandler)

	mux.HandleFunc("GET /api/engines", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]interface{}{"engines": d.gen.Engines()})
	})

	registerStoreRoutes(mux, d.store)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func registerStoreRoutes(mux *http.ServeMux, st sessionStore) {
	mux.HandleFunc("GET /api/sessions", func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			http.Error(w, "persistence disabled", http.StatusNotFound)
			return
		}
		sessions, total, err := st.ListSessions(queryInt(r, "limit", defaultListLimit), queryInt(r, "offset", 0))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{"sessions": sessions, "total": total})
	})

	mux.HandleFunc("GET /api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			http.Error(w, "persistence disabled", http.StatusNotFound)
			return
		}
		sess, err := st.GetSession(r.PathValue("id"))
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, sess)
	})

	mux.HandleFunc("GET /api/streams", func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			http.Error(w, "persistence disabled", http.StatusNotFound)
			return
		}
		streams, err := st.ListStreams(queryInt(r, "limit", defaultListLimit), queryInt(r, "offset", 0))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{"streams": streams})
	})

	// Aggregate over every stored session.
	mux.HandleFunc("GET /api/community", func(w http.ResponseWriter, _ *http.Request) {
		if st == nil {
			http.Error(w, "persistence disabled", http.StatusNotFound)
			return
		}
		sessions, err := st.AllSessions()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		dist, consensus, err := eeg.Aggregate(sessions)
		if isNoSessions(err) {
			http.Error(w, "no sessions found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{
			"people":       len(sessions),
			"consensus":    consensus,
			"distribution": dist.Entries(),
		})
	})

	mux.HandleFunc("GET /api/community/latest", func(w http.ResponseWriter, _ *http.Request) {
		if st == nil {
			http.Error(w, "persistence disabled", http.StatusNotFound)
			return
		}
		rec, err := st.LatestCommunity()
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, rec)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
