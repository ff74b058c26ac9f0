package store

import (
	"time"

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
)

// Stream represents one ordered sample stream: a replayed recording, a live
// hub connection, or an ingest connection.
type Stream struct {
	ID           string     `json:"id"`
	Source       string     `json:"source"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	SessionCount int        `json:"session_count,omitempty"`
}

// SessionRecord is one finalized session and the track generated for it.
type SessionRecord struct {
	ID         string        `json:"id"`
	StreamID   string        `json:"stream_id"`
	Index      int           `json:"index"`
	Emotions   []eeg.Emotion `json:"emotions"`
	Samples    int           `json:"samples"`
	Incomplete bool          `json:"incomplete,omitempty"`
	Desired    eeg.Emotion   `json:"desired,omitempty"`
	TrackPath  string        `json:"track_path,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Session converts the record back into a core session.
func (r SessionRecord) Session() eeg.Session {
	return eeg.Session{
		Index:      r.Index,
		Emotions:   r.Emotions,
		Samples:    r.Samples,
		Incomplete: r.Incomplete,
	}
}

// CommunityRecord is one consensus computed over a group of sessions.
type CommunityRecord struct {
	ID           string           `json:"id"`
	StreamID     string           `json:"stream_id,omitempty"`
	People       int              `json:"people"`
	Consensus    eeg.Emotion      `json:"consensus"`
	Distribution []eeg.LabelCount `json:"distribution"`
	TrackPath    string           `json:"track_path,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}
