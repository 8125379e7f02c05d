package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Calibration profiles - saved fretboard geometry estimates.
		// The geometry column holds the full estimate (homography, string
		// and fret lines, ROI) as JSON.
		`CREATE TABLE IF NOT EXISTS calibration_profiles (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			guitar_type TEXT NOT NULL DEFAULT 'acoustic',
			handedness TEXT NOT NULL DEFAULT 'right' CHECK(handedness IN ('left', 'right')),
			manual INTEGER NOT NULL DEFAULT 1,
			geometry TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Practice sessions - one row per chord practice attempt.
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			target_chord TEXT NOT NULL,
			best_score REAL NOT NULL DEFAULT 0,
			times_stable INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			finished_at DATETIME
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_target_chord ON sessions(target_chord)`,
		`CREATE INDEX IF NOT EXISTS idx_calibration_profiles_created_at ON calibration_profiles(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
