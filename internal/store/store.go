package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver

	"github.com/hubenschmidt/brainwave-radio/internal/eeg"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const maxStreams = 500

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store persists streams, sessions and community results to PostgreSQL.
type Store struct {
	db *sql.DB
}

// Open connects to a PostgreSQL database at connStr and applies migrations.
func Open(connStr string) (*Store, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("store open: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store ping: %w", err)
	}
	if err = migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`)
	if err != nil {
		return err
	}

	var current int
	row := db.QueryRow(`SELECT COALESCE(MAX(version), -1) FROM schema_version`)
	if err = row.Scan(&current); err != nil {
		return err
	}

	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	for i := current + 1; i < len(entries); i++ {
		data, readErr := migrationFS.ReadFile("migrations/" + entries[i].Name())
		if readErr != nil {
			return fmt.Errorf("read migration %d: %w", i, readErr)
		}
		if _, execErr := db.Exec(string(data)); execErr != nil {
			return fmt.Errorf("migration %d: %w", i, execErr)
		}
		if _, execErr := db.Exec(`INSERT INTO schema_version (version) VALUES ($1)`, i); execErr != nil {
			return fmt.Errorf("migration %d record: %w", i, execErr)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateStream inserts a new stream and prunes the oldest beyond the retention
// limit. Their sessions go with them.
func (s *Store) CreateStream(id, source string) error {
	_, err := s.db.Exec(
		`INSERT INTO streams (id, source, started_at) VALUES ($1, $2, $3)`,
		id, source, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`DELETE FROM streams WHERE id NOT IN (SELECT id FROM streams ORDER BY started_at DESC LIMIT $1)`,
		maxStreams,
	)
	return err
}

// EndStream sets the ended_at timestamp.
func (s *Store) EndStream(id string) error {
	_, err := s.db.Exec(
		`UPDATE streams SET ended_at = $1 WHERE id = $2`,
		time.Now().UTC(), id,
	)
	return err
}

// SaveSession inserts a finalized session.
func (s *Store) SaveSession(r SessionRecord) error {
	emotions, err := json.Marshal(nonNil(r.Emotions))
	if err != nil {
		return fmt.Errorf("marshal emotions: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO sessions (id, stream_id, idx, emotions, samples, incomplete, desired, track_path, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.StreamID, r.Index, string(emotions), r.Samples, r.Incomplete,
		string(r.Desired), r.TrackPath, r.CreatedAt.UTC(),
	)
	return err
}

// SaveCommunity inserts a community result. An empty StreamID stores NULL.
func (s *Store) SaveCommunity(r CommunityRecord) error {
	dist, err := json.Marshal(nonNil(r.Distribution))
	if err != nil {
		return fmt.Errorf("marshal distribution: %w", err)
	}
	streamID := sql.NullString{String: r.StreamID, Valid: r.StreamID != ""}
	_, err = s.db.Exec(
		`INSERT INTO community (id, stream_id, people, consensus, distribution, track_path, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, streamID, r.People, string(r.Consensus), string(dist), r.TrackPath, r.CreatedAt.UTC(),
	)
	return err
}

const sessionColumns = `id, stream_id, idx, emotions, samples, incomplete, desired, track_path, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (SessionRecord, error) {
	var r SessionRecord
	var emotions []byte
	var desired string
	err := row.Scan(&r.ID, &r.StreamID, &r.Index, &emotions, &r.Samples, &r.Incomplete, &desired, &r.TrackPath, &r.CreatedAt)
	if err != nil {
		return r, err
	}
	r.Desired = eeg.Emotion(desired)
	if err = json.Unmarshal(emotions, &r.Emotions); err != nil {
		return r, fmt.Errorf("decode emotions of session %s: %w", r.ID, err)
	}
	return r, nil
}

// ListSessions returns sessions newest first with the total count.
func (s *Store) ListSessions(limit, offset int) ([]SessionRecord, int, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(
		`SELECT `+sessionColumns+` FROM sessions ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		r, err := scanSession(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// GetSession returns one session by ID.
func (s *Store) GetSession(id string) (*SessionRecord, error) {
	r, err := scanSession(s.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// StreamSessions returns the sessions of one stream in index order.
func (s *Store) StreamSessions(streamID string) ([]SessionRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+sessionColumns+` FROM sessions WHERE stream_id = $1 ORDER BY idx ASC, created_at ASC`,
		streamID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		r, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AllSessions returns every stored session in the order it was recorded, for
// aggregation across streams.
func (s *Store) AllSessions() ([]eeg.Session, error) {
	rows, err := s.db.Query(`SELECT ` + sessionColumns + ` FROM sessions ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []eeg.Session
	for rows.Next() {
		r, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r.Session())
	}
	return out, rows.Err()
}

// ListStreams returns streams newest first, with session counts.
func (s *Store) ListStreams(limit, offset int) ([]Stream, error) {
	rows, err := s.db.Query(`
		SELECT st.id, st.source, st.started_at, st.ended_at, COUNT(se.id) AS session_count
		FROM streams st
		LEFT JOIN sessions se ON se.stream_id = st.id
		GROUP BY st.id
		ORDER BY st.started_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Stream
	for rows.Next() {
		var st Stream
		var endedAt sql.NullTime
		if err = rows.Scan(&st.ID, &st.Source, &st.StartedAt, &endedAt, &st.SessionCount); err != nil {
			return nil, err
		}
		if endedAt.Valid {
			st.EndedAt = &endedAt.Time
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// LatestCommunity returns the most recent community result.
func (s *Store) LatestCommunity() (*CommunityRecord, error) {
	var r CommunityRecord
	var streamID sql.NullString
	var consensus string
	var dist []byte
	err := s.db.QueryRow(
		`SELECT id, stream_id, people, consensus, distribution, track_path, created_at
		 FROM community ORDER BY created_at DESC LIMIT 1`,
	).Scan(&r.ID, &streamID, &r.People, &consensus, &dist, &r.TrackPath, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("community: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	r.StreamID = streamID.String
	r.Consensus = eeg.Emotion(consensus)
	if err = json.Unmarshal(dist, &r.Distribution); err != nil {
		return nil, fmt.Errorf("decode distribution: %w", err)
	}
	return &r, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
