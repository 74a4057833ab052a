package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/youtify/internal/shared"
	"github.com/desertthunder/youtify/internal/tasks"
)

// SessionRepository persists conversion sessions as JSON snapshots, so a
// partially reviewed conversion survives process restarts.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save upserts a session snapshot.
func (r *SessionRepository) Save(snapshot tasks.SessionSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO sessions (id, playlist_ref, playlist_name, finalized, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			playlist_name = excluded.playlist_name,
			finalized = excluded.finalized,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`,
		snapshot.ID,
		snapshot.PlaylistRef,
		snapshot.PlaylistName,
		snapshot.Finalized,
		string(payload),
		snapshot.CreatedAt,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Load retrieves a session snapshot by ID.
func (r *SessionRepository) Load(id string) (tasks.SessionSnapshot, error) {
	var payload string
	err := r.db.QueryRow(`SELECT payload FROM sessions WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return tasks.SessionSnapshot{}, fmt.Errorf("%w: session %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return tasks.SessionSnapshot{}, fmt.Errorf("failed to load session: %w", err)
	}

	var snapshot tasks.SessionSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return tasks.SessionSnapshot{}, fmt.Errorf("failed to decode session: %w", err)
	}

	return snapshot, nil
}

// SessionSummary is one row of the session listing.
type SessionSummary struct {
	ID           string    `json:"id"`
	PlaylistRef  string    `json:"playlist_ref"`
	PlaylistName string    `json:"playlist_name"`
	Finalized    bool      `json:"finalized"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// List returns session summaries, most recent first.
func (r *SessionRepository) List() ([]SessionSummary, error) {
	rows, err := r.db.Query(`
		SELECT id, playlist_ref, playlist_name, finalized, created_at, updated_at
		FROM sessions
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var summaries []SessionSummary
	for rows.Next() {
		var s SessionSummary
		if err := rows.Scan(&s.ID, &s.PlaylistRef, &s.PlaylistName, &s.Finalized, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// Delete removes a session by ID.
func (r *SessionRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: session %s", shared.ErrNotFound, id)
	}

	return nil
}
