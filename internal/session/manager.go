// Package session tracks per-upload state and owns the cleanup of every
// filesystem side effect a session produced.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/invitegen/backend/internal/models"
)

// Errors returned by the manager.
var (
	ErrNotFound        = errors.New("session not found")
	ErrBusy            = errors.New("a generation for this session is already running")
	ErrTooManySessions = errors.New("too many active sessions")
)

// KeepAliveWindow is how long an untouched session survives the soft cap
// sweep triggered by Create when the manager is full.
const KeepAliveWindow = 5 * time.Minute

type state struct {
	session      *models.Session
	generating   bool
	lastAccessed time.Time
}

// Manager handles active sessions. Each session owns a disjoint working
// directory under baseDir, created on Create and registered for cleanup
// immediately, so Destroy always removes everything the session touched.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*state
	baseDir     string
	maxSessions int
}

// NewManager creates a session manager rooted at baseDir.
func NewManager(baseDir string, maxSessions int) *Manager {
	return &Manager{
		sessions:    make(map[string]*state),
		baseDir:     baseDir,
		maxSessions: maxSessions,
	}
}

// Create allocates a new session with an opaque unique identifier and a
// fresh working directory, already registered for cleanup.
func (m *Manager) Create() (*models.Session, error) {
	if m.maxSessions > 0 && m.Count() >= m.maxSessions {
		m.CleanupExpired(KeepAliveWindow)
		if m.Count() >= m.maxSessions {
			return nil, ErrTooManySessions
		}
	}

	id := uuid.New().String()
	workDir := filepath.Join(m.baseDir, id)
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}

	sess := models.NewSession(id)
	sess.WorkDir = workDir
	sess.CleanupPaths = append(sess.CleanupPaths, workDir)

	m.mu.Lock()
	m.sessions[id] = &state{session: sess, lastAccessed: time.Now()}
	m.mu.Unlock()

	return sess, nil
}

// Get returns the session and refreshes its keep-alive timestamp.
func (m *Manager) Get(id string) (*models.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	st.lastAccessed = time.Now()
	return st.session, true
}

// RegisterCleanup appends a filesystem path to the session's cleanup
// registry. Paths may be files or directories.
func (m *Manager) RegisterCleanup(id, path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok {
		return false
	}
	st.session.CleanupPaths = append(st.session.CleanupPaths, path)
	return true
}

// BeginGeneration marks the session as having a generation call in flight.
// A second concurrent call is rejected with ErrBusy; callers must pair a
// successful Begin with EndGeneration.
func (m *Manager) BeginGeneration(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if st.generating {
		return ErrBusy
	}
	st.generating = true
	st.lastAccessed = time.Now()
	return nil
}

// EndGeneration clears the in-flight flag. Safe to call on a session that
// was destroyed mid-generation.
func (m *Manager) EndGeneration(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if st, ok := m.sessions[id]; ok {
		st.generating = false
	}
}

// Destroy evicts the session and removes every registered path. Removal is
// best-effort: a path that is already gone or cannot be removed is ignored.
// A session with a generation in flight is refused with ErrBusy so the
// renderer never loses its working directory mid-batch; eviction happens at
// most once, a repeat call returns ErrNotFound.
func (m *Manager) Destroy(id string) error {
	m.mu.Lock()
	st, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	if st.generating {
		m.mu.Unlock()
		return ErrBusy
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	for _, p := range st.session.CleanupPaths {
		_ = os.RemoveAll(p)
	}
	return nil
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupExpired destroys sessions idle longer than maxAge and reports how
// many were removed. Sessions with a generation in flight are skipped.
func (m *Manager) CleanupExpired(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	var expired []string
	for id, st := range m.sessions {
		if !st.generating && st.lastAccessed.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	removed := 0
	for _, id := range expired {
		if m.Destroy(id) == nil {
			removed++
		}
	}
	if removed > 0 {
		fmt.Printf("[Session] cleaned up %d expired session(s)\n", removed)
	}
	return removed
}
