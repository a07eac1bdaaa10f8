package state

import (
	"sync"
	"time"
)

// Mock is a test double for Manager.
type Mock struct {
	mu          sync.Mutex
	expired     bool
	newVersion  bool
	lastIndexed time.Time
	setErr      error
	saves       int
	closed      bool
}

// NewMock creates a mock whose data is fresh and built by the running version.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Expired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expired
}

func (m *Mock) IsNewVersion() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.newVersion
}

func (m *Mock) LastIndexed() (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastIndexed, nil
}

func (m *Mock) SetLastIndexed(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.lastIndexed = t
	m.expired = false
	m.newVersion = false
	m.saves++
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetExpired(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expired = v
}

func (m *Mock) SetNewVersion(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.newVersion = v
}

func (m *Mock) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setErr = err
}

// Saves returns how many times SetLastIndexed succeeded.
func (m *Mock) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
