package state

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/llehouerou/tracksearch/internal/db"
)

// IndexState describes the last completed rebuild.
type IndexState struct {
	LastIndexed time.Time
	Version     string
}

func getIndexState(db *sql.DB) (*IndexState, error) {
	row := db.QueryRow(`
		SELECT last_indexed, indexed_version FROM index_state WHERE id = 1
	`)

	var lastIndexed sql.NullInt64
	var version sql.NullString
	err := row.Scan(&lastIndexed, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // never indexed is valid on first run
	}
	if err != nil {
		return nil, err
	}

	rec := &IndexState{Version: dbutil.NullStringValue(version)}
	if lastIndexed.Valid {
		rec.LastIndexed = time.Unix(dbutil.NullInt64Value(lastIndexed), 0)
	}
	return rec, nil
}

func saveIndexState(ctx context.Context, db *sql.DB, s IndexState) error {
	return dbutil.WithTx(ctx, db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO index_state (id, last_indexed, indexed_version)
			VALUES (1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				last_indexed = excluded.last_indexed,
				indexed_version = excluded.indexed_version
		`, s.LastIndexed.Unix(), s.Version)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			INSERT INTO index_history (indexed_at, indexed_version) VALUES (?, ?)
		`, s.LastIndexed.Unix(), s.Version)
		return err
	})
}

// History returns the most recent rebuilds, newest first.
func (m *Manager) History(limit int) ([]IndexState, error) {
	rows, err := m.db.Query(`
		SELECT indexed_at, indexed_version FROM index_history
		ORDER BY indexed_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IndexState
	for rows.Next() {
		var at int64
		var version string
		if err := rows.Scan(&at, &version); err != nil {
			return nil, err
		}
		out = append(out, IndexState{LastIndexed: time.Unix(at, 0), Version: version})
	}
	return out, rows.Err()
}
