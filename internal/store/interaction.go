package store

import (
	"database/sql"
	"time"
)

// Interaction represents a user-interaction signal stored in the database.
// The session ID is empty when the signal arrived outside a tracking session.
type Interaction struct {
	ID          int64  `json:"id"`
	SessionID   string `json:"session_id,omitempty"`
	TimestampMs int64  `json:"timestamp_ms"`
	Type        string `json:"type"`
	DurationMs  int64  `json:"duration_ms"`
	CreatedAt   time.Time
}

// InteractionRepository provides CRUD operations for interactions.
type InteractionRepository struct {
	db *sql.DB
}

// Interactions returns the interaction repository for this store.
func (s *Store) Interactions() *InteractionRepository {
	return &InteractionRepository{db: s.db}
}

// Create inserts a new interaction into the database and sets its ID.
func (r *InteractionRepository) Create(in *Interaction) error {
	in.CreatedAt = time.Now()

	var sessionID interface{}
	if in.SessionID != "" {
		sessionID = in.SessionID
	}

	result, err := r.db.Exec(
		`INSERT INTO interactions (session_id, timestamp_ms, type, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, in.TimestampMs, in.Type, in.DurationMs, in.CreatedAt,
	)
	if err != nil {
		return err
	}

	in.ID, err = result.LastInsertId()
	return err
}

// GetBySessionID retrieves all interactions recorded during a session.
func (r *InteractionRepository) GetBySessionID(sessionID string) ([]Interaction, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, timestamp_ms, type, duration_ms, created_at
		 FROM interactions
		 WHERE session_id = ?
		 ORDER BY timestamp_ms`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInteractions(rows)
}

// ListRecent retrieves the most recent interactions up to the given limit.
func (r *InteractionRepository) ListRecent(limit int) ([]Interaction, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, timestamp_ms, type, duration_ms, created_at
		 FROM interactions
		 ORDER BY timestamp_ms DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInteractions(rows)
}

func scanInteractions(rows *sql.Rows) ([]Interaction, error) {
	var interactions []Interaction
	for rows.Next() {
		var in Interaction
		var sessionID sql.NullString

		err := rows.Scan(&in.ID, &sessionID, &in.TimestampMs, &in.Type, &in.DurationMs, &in.CreatedAt)
		if err != nil {
			return nil, err
		}

		in.SessionID = sessionID.String
		interactions = append(interactions, in)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return interactions, nil
}
