package store

import (
	"database/sql"
)

// Frame represents a single analyzed frame within a tracking session.
type Frame struct {
	ID          int64  `json:"id"`
	SessionID   string `json:"session_id"`
	TimestampMs int64  `json:"timestamp_ms"`
	Emotion     string `json:"emotion"`
	Gaze        string `json:"gaze"`
	Engagement  string `json:"engagement"`
}

// FrameRepository provides CRUD operations for session frames.
type FrameRepository struct {
	db *sql.DB
}

// Frames returns the frame repository for this store.
func (s *Store) Frames() *FrameRepository {
	return &FrameRepository{db: s.db}
}

// CreateBatch inserts multiple frames for a session in a single transaction.
// It also updates the frame count on the session.
func (r *FrameRepository) CreateBatch(sessionID string, frames []Frame) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO frames (session_id, timestamp_ms, emotion, gaze, engagement)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range frames {
		if _, err := stmt.Exec(sessionID, f.TimestampMs, f.Emotion, f.Gaze, f.Engagement); err != nil {
			return err
		}
	}

	// Update frame count on the session
	_, err = tx.Exec(
		`UPDATE sessions SET frame_count = frame_count + ? WHERE id = ?`,
		len(frames), sessionID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetBySessionID retrieves all frames for a given session in capture order.
func (r *FrameRepository) GetBySessionID(sessionID string) ([]Frame, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, timestamp_ms, emotion, gaze, engagement
		 FROM frames
		 WHERE session_id = ?
		 ORDER BY timestamp_ms`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var f Frame
		if err := rows.Scan(&f.ID, &f.SessionID, &f.TimestampMs, &f.Emotion, &f.Gaze, &f.Engagement); err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return frames, nil
}

// DeleteBySessionID removes all frames for a given session.
func (r *FrameRepository) DeleteBySessionID(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM frames WHERE session_id = ?`, sessionID)
	return err
}
