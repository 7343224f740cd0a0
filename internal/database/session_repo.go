package database

import (
	"database/sql"
	"fmt"

	"github.com/avelkov/skipstream/internal/models"
)

type SessionRepository struct {
	db *DB
}

func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) InsertSession(session *models.Session) error {
	_, err := r.db.conn.Exec(
		`INSERT INTO sessions (id, video_id, created_at) VALUES (?, ?, ?)`,
		session.ID, session.VideoID, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetSessionByID(id string) (*models.Session, error) {
	var session models.Session
	err := r.db.conn.QueryRow(
		`SELECT id, video_id, created_at FROM sessions WHERE id = ?`, id,
	).Scan(&session.ID, &session.VideoID, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// DeleteSession removes a session when the user starts a new upload.
func (r *SessionRepository) DeleteSession(id string) error {
	result, err := r.db.conn.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("session not found")
	}
	return nil
}
