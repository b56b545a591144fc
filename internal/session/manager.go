package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"task-tracker-api/internal/cache"
	"task-tracker-api/internal/models"
)

// Loader fetches a user's persisted tasks when a session starts
type Loader interface {
	Query(ctx context.Context, userID string) ([]models.Task, error)
}

// Manager creates sessions at sign-in, hands them to requests and tears them down
// at sign-out or once they sit idle past the TTL.
type Manager struct {
	loader   Loader
	ttl      time.Duration
	sessions *cache.SimpleCache[string, *Session]

	// serialises Start/Ensure so a user never gets two live sessions
	mu sync.Mutex
}

func NewManager(loader Loader, ttl time.Duration) *Manager {
	return &Manager{
		loader: loader,
		ttl:    ttl,
		sessions: cache.NewSimpleCache[string, *Session](cache.Options[string, *Session]{
			ConcurrencySafe: true,
			OnEvict: func(uid string, _ *Session) {
				log.Printf("session for user %s expired", uid)
			},
		}),
	}
}

// Start loads the user's tasks and installs a fresh session, replacing any old one
func (m *Manager) Start(ctx context.Context, user models.UserInfo) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.start(ctx, user)
}

func (m *Manager) start(ctx context.Context, user models.UserInfo) (*Session, error) {
	if user.UID == "" {
		return nil, fmt.Errorf("start session: empty uid")
	}
	tasks, err := m.loader.Query(ctx, user.UID)
	if err != nil {
		return nil, fmt.Errorf("start session for %s: %w", user.UID, err)
	}
	s := newSession(user, tasks, time.Now())
	m.sessions.Set(user.UID, s, m.ttl)
	return s, nil
}

// Get returns the live session for uid and extends its lifetime
func (m *Manager) Get(uid string) (*Session, bool) {
	s, ok := m.sessions.Get(uid)
	if !ok {
		return nil, false
	}
	m.sessions.Touch(uid, m.ttl)
	return s, true
}

// Ensure returns the live session for user, starting one if it expired or never existed
func (m *Manager) Ensure(ctx context.Context, user models.UserInfo) (*Session, error) {
	if s, ok := m.Get(user.UID); ok {
		return s, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.Get(user.UID); ok {
		return s, nil
	}
	return m.start(ctx, user)
}

// End tears down the session for uid
func (m *Manager) End(uid string) bool {
	_, ok := m.sessions.Take(uid)
	return ok
}

// OnAuthStateChange follows the identity provider: sign-in starts a session,
// sign-out ends it.
func (m *Manager) OnAuthStateChange(user models.UserInfo, signedIn bool) {
	if !signedIn {
		m.End(user.UID)
		return
	}
	if _, err := m.Ensure(context.Background(), user); err != nil {
		log.Printf("session start failed for user %s: %v", user.UID, err)
	}
}

// Len counts live sessions
func (m *Manager) Len() int {
	return m.sessions.Len()
}

// Sweep drops expired sessions
func (m *Manager) Sweep() {
	m.sessions.PurgeExpired()
}

// RunSweeper calls Sweep every interval until ctx is done
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
