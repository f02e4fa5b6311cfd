package models

import "time"

// Session binds one upload (template + guest list) to its extracted names
// and generated artifacts until explicit teardown.
type Session struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	TemplatePath string    `json:"-"`
	ListPath     string    `json:"-"`
	Names        []string  `json:"-"`
	WorkDir      string    `json:"-"`
	// CleanupPaths are removed (recursively, best-effort) when the
	// session is destroyed. Files and directories are both allowed.
	CleanupPaths []string `json:"-"`
	// Warning carries a non-fatal extraction message (e.g. a PDF that
	// could not be parsed and degraded to an empty name list).
	Warning string `json:"warning,omitempty"`
}

// NewSession creates an empty session.
func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
	}
}

// Ready reports whether the session can be used for preview/generation:
// both the template and at least one extracted name must be present.
func (s *Session) Ready() bool {
	return s.TemplatePath != "" && len(s.Names) > 0
}
