package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avashisht/fretcoach/internal/fretboard"
)

// CalibrationProfile is a saved fretboard geometry estimate, keyed by the
// instrument it was calibrated for.
type CalibrationProfile struct {
	ID         string
	Name       string
	GuitarType string
	Handedness string
	Manual     bool
	Geometry   fretboard.Geometry
	CreatedAt  time.Time
}

// CalibrationRepository provides CRUD operations for calibration profiles.
type CalibrationRepository struct {
	db *sql.DB
}

// Calibrations returns the calibration repository for this store.
func (s *Store) Calibrations() *CalibrationRepository {
	return &CalibrationRepository{db: s.db}
}

// Save inserts a new calibration profile. A missing ID is generated.
func (r *CalibrationRepository) Save(p *CalibrationProfile) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.GuitarType == "" {
		p.GuitarType = "acoustic"
	}
	if p.Handedness == "" {
		p.Handedness = "right"
	}
	p.CreatedAt = time.Now()

	geomJSON, err := json.Marshal(p.Geometry)
	if err != nil {
		return fmt.Errorf("failed to encode geometry: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO calibration_profiles (id, name, guitar_type, handedness, manual, geometry, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.GuitarType, p.Handedness, boolToInt(p.Manual), string(geomJSON), p.CreatedAt,
	)
	return err
}

// GetByID retrieves a calibration profile by its ID.
func (r *CalibrationRepository) GetByID(id string) (*CalibrationProfile, error) {
	row := r.db.QueryRow(
		`SELECT id, name, guitar_type, handedness, manual, geometry, created_at
		 FROM calibration_profiles WHERE id = ?`,
		id,
	)
	return scanProfile(row)
}

// Latest retrieves the most recently saved calibration profile.
func (r *CalibrationRepository) Latest() (*CalibrationProfile, error) {
	row := r.db.QueryRow(
		`SELECT id, name, guitar_type, handedness, manual, geometry, created_at
		 FROM calibration_profiles ORDER BY created_at DESC, id DESC LIMIT 1`,
	)
	return scanProfile(row)
}

// List retrieves all calibration profiles, newest first.
func (r *CalibrationRepository) List() ([]*CalibrationProfile, error) {
	rows, err := r.db.Query(
		`SELECT id, name, guitar_type, handedness, manual, geometry, created_at
		 FROM calibration_profiles ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*CalibrationProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Delete removes a calibration profile by its ID.
func (r *CalibrationRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM calibration_profiles WHERE id = ?`, id)
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

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*CalibrationProfile, error) {
	p := &CalibrationProfile{}
	var manual int
	var geomJSON string

	err := row.Scan(&p.ID, &p.Name, &p.GuitarType, &p.Handedness, &manual, &geomJSON, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	p.Manual = manual != 0
	if err := json.Unmarshal([]byte(geomJSON), &p.Geometry); err != nil {
		return nil, fmt.Errorf("failed to decode geometry: %w", err)
	}
	return p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
