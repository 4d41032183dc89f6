package session

import (
	"sync"

	"github.com/storyloom/workshop-mcp/internal/models"
	"github.com/storyloom/workshop-mcp/internal/storage"
)

// Session holds the active project context for an MCP session. Tools that
// take an optional project id fall back to the active project when the
// caller omits one.
type Session struct {
	mu                 sync.Mutex
	currentProjectID   string
	currentProjectName string
}

// New creates an empty session with no active project.
func New() *Session {
	return &Session{}
}

// SwitchProject validates the project against the store and makes it the
// active one.
func (s *Session) SwitchProject(store *storage.Store, projectID string) (*models.Project, error) {
	proj, err := store.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentProjectID = proj.ID
	s.currentProjectName = proj.Name
	return proj, nil
}

// Current returns the active project, or ok=false when none is set.
func (s *Session) Current() (id, name string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentProjectID == "" {
		return "", "", false
	}
	return s.currentProjectID, s.currentProjectName, true
}

// Resolve returns the explicit project id when given, else the active
// project's id, else the empty string.
func (s *Session) Resolve(explicit string) string {
	if explicit != "" {
		return explicit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentProjectID
}

// Clear resets the session state.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentProjectID = ""
	s.currentProjectName = ""
}
