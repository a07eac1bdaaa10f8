package state

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS index_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			last_indexed INTEGER,
			indexed_version TEXT
		);

		CREATE TABLE IF NOT EXISTS index_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			indexed_at INTEGER NOT NULL,
			indexed_version TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_index_history_indexed_at ON index_history(indexed_at);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
