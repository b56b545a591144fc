// Package session holds the per-user application state: who is signed in, their
// task collection and the selected view. A Manager owns every Session; handlers
// receive the one for the current request instead of reaching for globals.
package session

import (
	"errors"
	"sync"
	"time"

	"task-tracker-api/internal/models"
)

// ViewMode selects how the client lays the buckets out
type ViewMode string

const (
	ViewBoard  ViewMode = "board"
	ViewKanban ViewMode = "kanban"
)

var ErrUnknownView = errors.New("unknown view mode")

func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case ViewBoard, ViewKanban:
		return ViewMode(s), nil
	}
	return "", ErrUnknownView
}

// Session is one signed-in user's state.
//
// The task collection is only ever replaced, never edited in place, and readers get
// copies. Writers take Exclusive for the whole read-modify-persist cycle so two
// overlapping mutations cannot interleave.
type Session struct {
	User      models.UserInfo
	StartedAt time.Time

	writer sync.Mutex

	mu    sync.RWMutex
	tasks []models.Task
	view  ViewMode
}

func newSession(user models.UserInfo, tasks []models.Task, started time.Time) *Session {
	s := &Session{User: user, StartedAt: started, view: ViewBoard}
	s.tasks = cloneAll(tasks)
	return s
}

// New builds a standalone session, mostly useful outside a Manager in tests
func New(user models.UserInfo, tasks []models.Task) *Session {
	return newSession(user, tasks, time.Now())
}

// Tasks returns a copy of the current collection
func (s *Session) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.tasks)
}

// Replace installs a new collection
func (s *Session) Replace(tasks []models.Task) {
	next := cloneAll(tasks)
	s.mu.Lock()
	s.tasks = next
	s.mu.Unlock()
}

// Find returns a copy of the task with id
func (s *Session) Find(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return models.Task{}, false
}

func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func (s *Session) View() ViewMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

func (s *Session) SetView(v ViewMode) {
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
}

// Exclusive blocks other writers until the returned func is called
func (s *Session) Exclusive() (release func()) {
	s.writer.Lock()
	return s.writer.Unlock
}

func cloneAll(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
