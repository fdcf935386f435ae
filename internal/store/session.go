package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Session represents a tracking session stored in the database.
type Session struct {
	ID         string
	StartedAt  time.Time
	EndedAt    *time.Time
	FrameCount int
	Uploaded   bool
	CreatedAt  time.Time
}

// SessionRepository provides CRUD operations for tracking sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session into the database.
func (r *SessionRepository) Create(sess *Session) error {
	sess.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, started_at, ended_at, frame_count, uploaded, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.StartedAt, sess.EndedAt, sess.FrameCount, sess.Uploaded, sess.CreatedAt,
	)
	return err
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}
	var endedAt sql.NullTime
	var uploaded int

	err := r.db.QueryRow(
		`SELECT id, started_at, ended_at, frame_count, uploaded, created_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.StartedAt, &endedAt, &sess.FrameCount, &uploaded, &sess.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if endedAt.Valid {
		sess.EndedAt = &endedAt.Time
	}
	sess.Uploaded = uploaded != 0
	return sess, nil
}

// List retrieves all sessions from the database, newest first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, started_at, ended_at, frame_count, uploaded, created_at
		 FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		var endedAt sql.NullTime
		var uploaded int

		err := rows.Scan(&sess.ID, &sess.StartedAt, &endedAt, &sess.FrameCount, &uploaded, &sess.CreatedAt)
		if err != nil {
			return nil, err
		}

		if endedAt.Valid {
			sess.EndedAt = &endedAt.Time
		}
		sess.Uploaded = uploaded != 0
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Finish marks a session as ended and records its final frame count.
func (r *SessionRepository) Finish(id string, endedAt time.Time, frameCount int) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, frame_count = ? WHERE id = ?`,
		endedAt, frameCount, id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkUploaded records that a session batch was delivered to the backend.
func (r *SessionRepository) MarkUploaded(id string) error {
	result, err := r.db.Exec(`UPDATE sessions SET uploaded = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a session from the database by its ID.
// Frames belonging to the session are removed by the cascade.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
