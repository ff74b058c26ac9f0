package music

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
)

// --- MusicGen backend (text-to-music model behind an HTTP sidecar, returns WAV) ---

type musicgenGenerator struct {
	url    string
	client *http.Client
}

// NewMusicGenGenerator returns a backend that POSTs to url+"/generate".
func NewMusicGenGenerator(url string, client *http.Client) Generator {
	return &musicgenGenerator{url: url, client: client}
}

// GenerateRequest is the JSON body of a sidecar /generate call.
type GenerateRequest struct {
	Prompt          string        `json:"prompt"`
	MaxNewTokens    int           `json:"max_new_tokens"`
	DurationSeconds float64       `json:"duration_seconds"`
	Emotions        []eeg.Emotion `json:"emotions,omitempty"`
	DesiredEmotion  eeg.Emotion   `json:"desired_emotion,omitempty"`
}

// Request converts the wire form back into a generation request.
func (g GenerateRequest) Request() Request {
	return Request{
		Prompt:   g.Prompt,
		Duration: time.Duration(g.DurationSeconds * float64(time.Second)),
		Labels:   g.Emotions,
		Desired:  g.DesiredEmotion,
	}
}

func (m *musicgenGenerator) Generate(ctx context.Context, req Request, dst io.Writer) error {
	body, err := json.Marshal(GenerateRequest{
		Prompt:          req.Prompt,
		MaxNewTokens:    Tokens(req.Duration),
		DurationSeconds: req.Duration.Seconds(),
		Emotions:        req.Labels,
		DesiredEmotion:  req.Desired,
	})
	if err != nil {
		return fmt.Errorf("marshal musicgen request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", m.url+"/generate", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create musicgen request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/wav")

	return doGenerateRequest(m.client, httpReq, dst)
}

func doGenerateRequest(client *http.Client, req *http.Request, dst io.Writer) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("musicgen request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("musicgen status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("read musicgen audio: %w", err)
	}
	return nil
}
