// Package state persists index bookkeeping (when the library was last
// indexed and by which version) in a small sqlite database.
package state

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "tracksearch"
	dbFileName = "state.db"
)

type Manager struct {
	db              *sql.DB
	version         string
	refreshInterval time.Duration
	now             func() time.Time
}

// Open opens the state database at path, or at the default XDG data
// location when path is empty. version is the running program version and
// refreshInterval the age after which indexed data counts as expired.
func Open(path, version string, refreshInterval time.Duration) (*Manager, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return newManager(db, version, refreshInterval), nil
}

func newManager(db *sql.DB, version string, refreshInterval time.Duration) *Manager {
	return &Manager{
		db:              db,
		version:         version,
		refreshInterval: refreshInterval,
		now:             time.Now,
	}
}

// DefaultPath returns the XDG data path of the state database.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

func (m *Manager) Close() error {
	return m.db.Close()
}

// LastIndexed returns when the index was last rebuilt, or the zero time if
// it never was.
func (m *Manager) LastIndexed() (time.Time, error) {
	rec, err := getIndexState(m.db)
	if err != nil || rec == nil {
		return time.Time{}, err
	}
	return rec.LastIndexed, nil
}

// SetLastIndexed records a completed rebuild at t by the running version.
func (m *Manager) SetLastIndexed(t time.Time) error {
	return saveIndexState(context.Background(), m.db, IndexState{
		LastIndexed: t,
		Version:     m.version,
	})
}

// Expired reports whether the indexed data is older than the refresh
// interval. Unknown or unreadable state counts as expired.
func (m *Manager) Expired() bool {
	last, err := m.LastIndexed()
	if err != nil || last.IsZero() {
		return true
	}
	if m.refreshInterval <= 0 {
		return false
	}
	return m.now().Sub(last) > m.refreshInterval
}

// IsNewVersion reports whether the index was built by a different version
// than the running one.
func (m *Manager) IsNewVersion() bool {
	rec, err := getIndexState(m.db)
	if err != nil || rec == nil {
		return true
	}
	return rec.Version != m.version
}
