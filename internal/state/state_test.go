package state

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory SQLite database with the schema initialized.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	// A single connection keeps every query on the same in-memory database.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		t.Fatalf("failed to init schema: %v", err)
	}

	return db
}

func setupTestManager(t *testing.T, version string, refresh time.Duration) *Manager {
	t.Helper()
	db := setupTestDB(t)
	t.Cleanup(func() { db.Close() })
	return newManager(db, version, refresh)
}

func TestGetIndexState_Empty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	rec, err := getIndexState(db)
	if err != nil {
		t.Fatalf("getIndexState failed: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil state on empty db, got %+v", rec)
	}
}

func TestSetLastIndexed_RoundTrip(t *testing.T) {
	m := setupTestManager(t, "1.2.0", time.Hour)

	at := time.Unix(1_700_000_000, 0)
	if err := m.SetLastIndexed(at); err != nil {
		t.Fatalf("SetLastIndexed failed: %v", err)
	}

	got, err := m.LastIndexed()
	if err != nil {
		t.Fatalf("LastIndexed failed: %v", err)
	}
	if !got.Equal(at) {
		t.Errorf("LastIndexed = %v, want %v", got, at)
	}

	// Overwrite keeps a single row.
	later := at.Add(time.Minute)
	if err := m.SetLastIndexed(later); err != nil {
		t.Fatalf("SetLastIndexed failed: %v", err)
	}
	got, _ = m.LastIndexed()
	if !got.Equal(later) {
		t.Errorf("LastIndexed = %v, want %v", got, later)
	}
}

func TestExpired(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name    string
		refresh time.Duration
		indexed *time.Time
		now     time.Time
		want    bool
	}{
		{"never indexed", time.Hour, nil, base, true},
		{"fresh", time.Hour, &base, base.Add(30 * time.Minute), false},
		{"stale", time.Hour, &base, base.Add(2 * time.Hour), true},
		{"no refresh interval", 0, &base, base.Add(1000 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := setupTestManager(t, "v1", tt.refresh)
			if tt.indexed != nil {
				if err := m.SetLastIndexed(*tt.indexed); err != nil {
					t.Fatalf("SetLastIndexed failed: %v", err)
				}
			}
			m.now = func() time.Time { return tt.now }

			if got := m.Expired(); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNewVersion(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	old := newManager(db, "v1", time.Hour)
	if !old.IsNewVersion() {
		t.Error("expected new version before any rebuild")
	}
	if err := old.SetLastIndexed(time.Now()); err != nil {
		t.Fatalf("SetLastIndexed failed: %v", err)
	}
	if old.IsNewVersion() {
		t.Error("expected same version after rebuild")
	}

	upgraded := newManager(db, "v2", time.Hour)
	if !upgraded.IsNewVersion() {
		t.Error("expected new version after upgrade")
	}
}

func TestHistory(t *testing.T) {
	m := setupTestManager(t, "v1", time.Hour)

	for i := range 3 {
		if err := m.SetLastIndexed(time.Unix(int64(1000+i), 0)); err != nil {
			t.Fatalf("SetLastIndexed failed: %v", err)
		}
	}

	hist, err := m.History(2)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(hist))
	}
	if hist[0].LastIndexed.Unix() != 1002 || hist[1].LastIndexed.Unix() != 1001 {
		t.Errorf("unexpected history order: %+v", hist)
	}
}

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	m, err := Open(path, "v1", time.Hour)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := m.SetLastIndexed(time.Unix(42, 0)); err != nil {
		t.Fatalf("SetLastIndexed failed: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	m, err = Open(path, "v1", time.Hour)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer m.Close()

	got, err := m.LastIndexed()
	if err != nil {
		t.Fatalf("LastIndexed failed: %v", err)
	}
	if got.Unix() != 42 {
		t.Errorf("LastIndexed after reopen = %v, want unix 42", got)
	}
}

func TestMock(t *testing.T) {
	m := NewMock()
	m.SetExpired(true)
	if !m.Expired() {
		t.Error("expected expired")
	}
	if err := m.SetLastIndexed(time.Unix(1, 0)); err != nil {
		t.Fatalf("SetLastIndexed failed: %v", err)
	}
	if m.Expired() || m.Saves() != 1 {
		t.Errorf("expected fresh state after save, saves=%d", m.Saves())
	}
}
