package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"task-tracker-api/internal/models"

	"github.com/stretchr/testify/require"
)

type stubLoader struct {
	mu    sync.Mutex
	calls int
	tasks map[string][]models.Task
	err   error
}

func (l *stubLoader) Query(_ context.Context, userID string) ([]models.Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.tasks[userID], nil
}

var alice = models.UserInfo{UID: "u-1", DisplayName: "alice", Email: "alice@example.com"}

func TestSession_TasksAreCopies(t *testing.T) {
	s := New(alice, []models.Task{{ID: "a", Files: []string{"x"}}})

	got := s.Tasks()
	got[0].Title = "mutated"
	got[0].Files[0] = "y"

	again := s.Tasks()
	require.Empty(t, again[0].Title)
	require.Equal(t, "x", again[0].Files[0])
}

func TestSession_ReplaceAndFind(t *testing.T) {
	s := New(alice, nil)
	s.Replace([]models.Task{{ID: "a", Index: 101}, {ID: "b", Index: 102}})
	require.Equal(t, 2, s.Len())

	b, ok := s.Find("b")
	require.True(t, ok)
	require.Equal(t, 102, b.Index)

	_, ok = s.Find("zzz")
	require.False(t, ok)
}

func TestSession_ViewDefaultsToBoard(t *testing.T) {
	s := New(alice, nil)
	require.Equal(t, ViewBoard, s.View())
	s.SetView(ViewKanban)
	require.Equal(t, ViewKanban, s.View())

	_, err := ParseViewMode("list")
	require.ErrorIs(t, err, ErrUnknownView)
}

func TestManager_StartLoadsTasks(t *testing.T) {
	loader := &stubLoader{tasks: map[string][]models.Task{"u-1": {{ID: "a", UserID: "u-1"}}}}
	m := NewManager(loader, time.Hour)

	s, err := m.Start(context.Background(), alice)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	got, ok := m.Get("u-1")
	require.True(t, ok)
	require.Same(t, s, got)
}

func TestManager_EnsureReusesLiveSession(t *testing.T) {
	loader := &stubLoader{}
	m := NewManager(loader, time.Hour)

	first, err := m.Ensure(context.Background(), alice)
	require.NoError(t, err)
	second, err := m.Ensure(context.Background(), alice)
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, 1, loader.calls)
}

func TestManager_StartFailure(t *testing.T) {
	m := NewManager(&stubLoader{err: errors.New("offline")}, time.Hour)
	_, err := m.Start(context.Background(), alice)
	require.Error(t, err)
	require.Equal(t, 0, m.Len())
}

func TestManager_AuthStateChange(t *testing.T) {
	m := NewManager(&stubLoader{}, time.Hour)

	m.OnAuthStateChange(alice, true)
	_, ok := m.Get("u-1")
	require.True(t, ok)

	m.OnAuthStateChange(alice, false)
	_, ok = m.Get("u-1")
	require.False(t, ok)
	require.False(t, m.End("u-1"))
}

func TestSession_ExclusiveSerialisesWriters(t *testing.T) {
	s := New(alice, nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := s.Exclusive()
			defer release()
			tasks := s.Tasks()
			tasks = append(tasks, models.Task{ID: time.Now().String()})
			s.Replace(tasks)
		}()
	}
	wg.Wait()
	require.Equal(t, 50, s.Len())
}
