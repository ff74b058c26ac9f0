package music

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
)

// NewSidecarHandler exposes gen with the same /health and /generate surface
// as the MusicGen sidecar.
func NewSidecarHandler(gen Generator) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("POST /generate", func(w http.ResponseWriter, r *http.Request) {
		var body GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		req := body.Request()
		if req.Duration <= 0 && body.MaxNewTokens > 0 {
			req.Duration = tokenDuration(body.MaxNewTokens)
		}

		var buf bytes.Buffer
		if err := gen.Generate(r.Context(), req, &buf); err != nil {
			slog.Warn("sidecar generate failed", "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "audio/wav")
		w.Write(buf.Bytes())
	})
	return mux
}
