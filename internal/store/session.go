package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session records one chord practice attempt.
type Session struct {
	ID          string
	TargetChord string
	BestScore   float64
	TimesStable int
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// SessionRepository provides CRUD operations for practice sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create starts a new session for the given target chord.
func (r *SessionRepository) Create(targetChord string) (*Session, error) {
	session := &Session{
		ID:          uuid.New().String(),
		TargetChord: targetChord,
		StartedAt:   time.Now(),
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, target_chord, best_score, times_stable, started_at)
		 VALUES (?, ?, 0, 0, ?)`,
		session.ID, session.TargetChord, session.StartedAt,
	)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Finish closes a session, recording its best score and how many times the
// chord was held stably.
func (r *SessionRepository) Finish(id string, bestScore float64, timesStable int) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET best_score = ?, times_stable = ?, finished_at = ?
		 WHERE id = ? AND finished_at IS NULL`,
		bestScore, timesStable, time.Now(), id,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	row := r.db.QueryRow(
		`SELECT id, target_chord, best_score, times_stable, started_at, finished_at
		 FROM sessions WHERE id = ?`,
		id,
	)
	return scanSession(row)
}

// List retrieves all sessions, newest first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, target_chord, best_score, times_stable, started_at, finished_at
		 FROM sessions ORDER BY started_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanSession(row scanner) (*Session, error) {
	s := &Session{}
	var finished sql.NullTime

	err := row.Scan(&s.ID, &s.TargetChord, &s.BestScore, &s.TimesStable, &s.StartedAt, &finished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if finished.Valid {
		t := finished.Time
		s.FinishedAt = &t
	}
	return s, nil
}
