package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
	"github.com/hubenschmidt/brainwave-radio/internal/metrics"
	"github.com/hubenschmidt/brainwave-radio/internal/music"
	"github.com/hubenschmidt/brainwave-radio/internal/radio"
	"github.com/hubenschmidt/brainwave-radio/internal/source"
	"github.com/hubenschmidt/brainwave-radio/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16384,
	WriteBufferSize: 16384,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Control frame types. Any other text frame is a sample.
const (
	frameStart = "start"
	frameEnd   = "end"
)

// HandlerConfig holds the shared backends for all streams.
type HandlerConfig struct {
	Generator       *music.GeneratorRouter
	Engine          string
	Namer           *music.Namer
	Store           store.Writer // nil disables persistence
	Segmenter       eeg.SegmenterConfig
	SessionDuration time.Duration
	// DesiredEmotion is used for streams whose start frame names none.
	DesiredEmotion string
	MaxConcurrent  int
}

// Handler manages websocket sample streams with admission control.
type Handler struct {
	cfg HandlerConfig
	sem chan struct{}
}

// NewHandler creates a websocket handler with shared backends and a
// concurrency limit.
func NewHandler(cfg HandlerConfig) *Handler {
	maxConc := cfg.MaxConcurrent
	if maxConc <= 0 {
		maxConc = 16
	}
	return &Handler{
		cfg: cfg,
		sem: make(chan struct{}, maxConc),
	}
}

// streamMetadata is the optional first text frame sent by the client.
type streamMetadata struct {
	Type           string `json:"type"`
	Source         string `json:"source"`
	DesiredEmotion string `json:"desired_emotion"`
	Engine         string `json:"engine"`
}

// ServeHTTP upgrades the connection and runs the stream.
// Returns 503 if at max concurrent stream capacity.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case h.sem <- struct{}{}:
		defer func() { <-h.sem }()
	default:
		http.Error(w, "at capacity", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	metrics.StreamsActive.Inc()
	metrics.StreamsTotal.Inc()
	defer metrics.StreamsActive.Dec()

	h.runStream(r.Context(), conn)
}

func (h *Handler) runStream(parent context.Context, conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sendEvent := newEventSender(conn)
	src := &connSource{conn: conn, onError: sendEvent}
	meta := src.readMetadata()

	var rec *store.Recorder
	if h.cfg.Store != nil {
		rec = store.NewRecorder(h.cfg.Store, meta.Source)
	}
	defer rec.Close()

	desired := meta.DesiredEmotion
	if desired == "" {
		desired = h.cfg.DesiredEmotion
	}
	engine := meta.Engine
	if engine == "" {
		engine = h.cfg.Engine
	}

	slog.Info("stream started", "stream_id", rec.StreamID(), "source", meta.Source, "engine", engine, "desired", desired)

	sessions, err := radio.RunSessions(ctx, src, radio.Config{
		Generator:       h.cfg.Generator,
		Engine:          engine,
		Namer:           h.cfg.Namer,
		Recorder:        rec,
		Segmenter:       h.cfg.Segmenter,
		SessionDuration: h.cfg.SessionDuration,
		Desire: func(context.Context, eeg.Session) (string, error) {
			return desired, nil
		},
	}, sendEvent)
	if err != nil {
		metrics.Errors.WithLabelValues("stream", "run").Inc()
		slog.Error("stream failed", "error", err)
		sendEvent(radio.Event{Type: radio.EventError, Error: err.Error()})
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	slog.Info("stream ended", "stream_id", rec.StreamID(), "sessions", len(sessions))
}

// connSource reads samples from the client's text frames. An end frame or a
// closed connection ends the stream.
type connSource struct {
	conn    *websocket.Conn
	onError radio.EventCallback
	pending []byte
	done    bool
}

// readMetadata consumes the start frame if the client sent one. A first frame
// that is a sample is kept for Next.
func (s *connSource) readMetadata() streamMetadata {
	var meta streamMetadata
	msgType, data, err := s.conn.ReadMessage()
	if err != nil {
		s.done = true
		return meta
	}
	if msgType != websocket.TextMessage || gjson.GetBytes(data, "type").String() != frameStart {
		s.pending = data
		return meta
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		slog.Warn("bad start frame", "error", err)
	}
	return meta
}

func (s *connSource) Next(ctx context.Context) (eeg.Sample, error) {
	for {
		if s.done {
			return nil, io.EOF
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := s.read()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Info("connection closed", "error", err)
			}
			s.done = true
			return nil, io.EOF
		}

		if gjson.GetBytes(data, "type").String() == frameEnd {
			s.done = true
			return nil, io.EOF
		}

		sample, err := source.DecodeSample(data)
		if err != nil {
			metrics.DecodeErrors.Inc()
			s.onError(radio.Event{Type: radio.EventError, Error: "decode sample: " + err.Error()})
			continue
		}
		return sample, nil
	}
}

func (s *connSource) read() ([]byte, error) {
	if s.pending != nil {
		data := s.pending
		s.pending = nil
		return data, nil
	}
	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if msgType == websocket.TextMessage {
			return data, nil
		}
		s.onError(radio.Event{Type: radio.EventError, Error: "binary frames are not supported"})
	}
}

func newEventSender(conn *websocket.Conn) radio.EventCallback {
	var mu sync.Mutex
	return func(ev radio.Event) {
		mu.Lock()
		defer mu.Unlock()

		jsonBytes, err := json.Marshal(ev)
		if err != nil {
			return
		}
		if err = conn.WriteMessage(websocket.TextMessage, jsonBytes); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			slog.Debug("write event", "error", err)
		}
	}
}
