package source

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
	"github.com/hubenschmidt/brainwave-radio/internal/metrics"
)

// HubConfig holds connection settings for the live sensor hub.
type HubConfig struct {
	URL string
	// InsecureSkipVerify disables TLS verification; hubs ship self-signed certs.
	InsecureSkipVerify bool
	OpenTimeout        time.Duration
	// MaxRetries bounds consecutive failed connects or dropped connections.
	MaxRetries int
	RetryWait  time.Duration
	// OnDisconnect, if set, is called after every failed connect or dropped
	// connection, before the retry wait.
	OnDisconnect func(err error)
}

// DefaultHubConfig returns settings matching the hub's behaviour in the field.
func DefaultHubConfig(url string) HubConfig {
	return HubConfig{
		URL:                url,
		InsecureSkipVerify: true,
		OpenTimeout:        60 * time.Second,
		MaxRetries:         5,
		RetryWait:          2 * time.Second,
	}
}

// HubSource streams samples from the sensor hub websocket, reconnecting after
// failures. A normal close from the hub ends the stream.
type HubSource struct {
	cfg      HubConfig
	dialer   *websocket.Dialer
	conn     *websocket.Conn
	failures int
}

func NewHubSource(cfg HubConfig) *HubSource {
	return &HubSource{
		cfg: cfg,
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: cfg.OpenTimeout,
			TLSClientConfig:  &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
		},
	}
}

func (h *HubSource) Next(ctx context.Context) (eeg.Sample, error) {
	for {
		if h.conn == nil {
			if err := h.connect(ctx); err != nil {
				return nil, err
			}
		}

		data, err := h.read(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			h.Close()
			return nil, ctxErr
		}
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			slog.Info("hub closed stream", "url", h.cfg.URL)
			h.Close()
			return nil, io.EOF
		}
		if err != nil {
			h.Close()
			if ferr := h.fail(ctx, fmt.Errorf("read hub: %w", err)); ferr != nil {
				return nil, ferr
			}
			continue
		}

		sample, err := DecodeSample(data)
		if err != nil {
			metrics.DecodeErrors.Inc()
			slog.Warn("skip undecodable hub message", "error", err)
			continue
		}
		h.failures = 0
		return sample, nil
	}
}

func (h *HubSource) connect(ctx context.Context) error {
	for {
		conn, _, err := h.dialer.DialContext(ctx, h.cfg.URL, nil)
		if err == nil {
			slog.Info("connected to hub", "url", h.cfg.URL)
			h.conn = conn
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if ferr := h.fail(ctx, fmt.Errorf("dial hub: %w", err)); ferr != nil {
			return ferr
		}
	}
}

// read returns the next text or binary frame, unblocking when ctx is done.
func (h *HubSource) read(ctx context.Context) ([]byte, error) {
	conn := h.conn
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	_, data, err := conn.ReadMessage()
	return data, err
}

// fail records a failure and waits before the next attempt. It returns a
// non-nil error once retries are exhausted or ctx is done.
func (h *HubSource) fail(ctx context.Context, err error) error {
	h.failures++
	if h.cfg.OnDisconnect != nil {
		h.cfg.OnDisconnect(err)
	}
	if h.failures > h.cfg.MaxRetries {
		return fmt.Errorf("giving up after %d attempts: %w", h.failures, err)
	}

	slog.Warn("hub connection failed", "attempt", h.failures, "max_retries", h.cfg.MaxRetries, "error", err)
	metrics.HubReconnects.Inc()

	t := time.NewTimer(h.cfg.RetryWait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Close drops the current connection. A later Next reconnects.
func (h *HubSource) Close() error {
	if h.conn == nil {
		return nil
	}
	err := h.conn.Close()
	h.conn = nil
	if errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}
	return err
}
