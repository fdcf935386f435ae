package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per tracking interval
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			frame_count INTEGER NOT NULL DEFAULT 0,
			uploaded INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Frames table - per-frame analysis records within a session
		`CREATE TABLE IF NOT EXISTS frames (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			timestamp_ms INTEGER NOT NULL,
			emotion TEXT NOT NULL,
			gaze TEXT NOT NULL,
			engagement TEXT NOT NULL CHECK(engagement IN ('High', 'Medium', 'Low', 'Unknown'))
		)`,

		// Interactions table - exogenous user-interaction signals
		`CREATE TABLE IF NOT EXISTS interactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT REFERENCES sessions(id) ON DELETE SET NULL,
			timestamp_ms INTEGER NOT NULL,
			type TEXT NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Alerts table - engagement-state-to-plugin bindings
		`CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			state TEXT NOT NULL CHECK(state IN ('High', 'Medium', 'Low', 'Unknown')),
			plugin_name TEXT NOT NULL,
			action_name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_frames_session_id ON frames(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_session_id ON interactions(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_state ON alerts(state)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
