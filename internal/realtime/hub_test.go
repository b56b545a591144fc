package realtime

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu     sync.Mutex
	msgs   [][]byte
	closed bool
}

func (c *fakeClient) Send(m []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, m)
	return true
}

func (c *fakeClient) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func TestHub_PublishReachesOnlyOwner(t *testing.T) {
	h := NewHub()
	mine, theirs := &fakeClient{}, &fakeClient{}
	h.Register("u-1", mine)
	h.Register("u-2", theirs)

	h.Publish(Event{Type: TaskCreated, TaskIDs: []string{"t-1"}, UserID: "u-1"})

	require.Len(t, mine.msgs, 1)
	require.Empty(t, theirs.msgs)

	var evt Event
	require.NoError(t, json.Unmarshal(mine.msgs[0], &evt))
	require.Equal(t, TaskCreated, evt.Type)
	require.Equal(t, []string{"t-1"}, evt.TaskIDs)
	require.Equal(t, 1, evt.Version)
}

func TestHub_UnregisterAndCloseUser(t *testing.T) {
	h := NewHub()
	a, b := &fakeClient{}, &fakeClient{}
	h.Register("u-1", a)
	h.Register("u-1", b)
	require.Equal(t, 2, h.Clients("u-1"))

	h.Unregister("u-1", a)
	require.Equal(t, 1, h.Clients("u-1"))

	h.CloseUser("u-1")
	require.Equal(t, 0, h.Clients("u-1"))
	require.True(t, b.closed)
	require.False(t, a.closed)
}
