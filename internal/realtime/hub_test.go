package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(h *Hub, user string, buffer int) *Client {
	c := NewClient(user, buffer)
	h.Register(c)
	return c
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case payload := <-c.Send():
		var ev Event
		require.NoError(t, json.Unmarshal(payload, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return Event{}
	}
}

func assertNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload := <-c.Send():
		t.Fatalf("unexpected frame %s", payload)
	default:
	}
}

func TestPublish_FansOutExceptOrigin(t *testing.T) {
	h := NewHub()
	a := register(h, "u-a", 4)
	b := register(h, "u-b", 4)
	outsider := register(h, "u-x", 4)

	require.NoError(t, h.Join(a.ID, "p1"))
	require.NoError(t, h.Join(b.ID, "p1"))
	require.NoError(t, h.Join(outsider.ID, "p2"))

	h.Publish(context.Background(), Origin{Connection: a.ID, User: "u-a"}, Event{Type: TaskCreated, Project: "p1", Task: map[string]string{"id": "t1"}})

	ev := receive(t, b)
	assert.Equal(t, TaskCreated, ev.Type)
	assert.Equal(t, "p1", ev.Project)
	assertNothing(t, a)
	assertNothing(t, outsider)
}

func TestPublish_IgnoresOriginOwnedByAnotherUser(t *testing.T) {
	h := NewHub()
	victim := register(h, "u-a", 4)
	other := register(h, "u-b", 4)
	require.NoError(t, h.Join(victim.ID, "p1"))
	require.NoError(t, h.Join(other.ID, "p1"))

	h.Publish(context.Background(), Origin{Connection: victim.ID, User: "u-b"}, Event{Type: TaskUpdated, Project: "p1"})

	assert.Equal(t, TaskUpdated, receive(t, victim).Type)
	assert.Equal(t, TaskUpdated, receive(t, other).Type)
}

func TestPublish_NoImplicitSubscription(t *testing.T) {
	h := NewHub()
	a := register(h, "u-a", 4)

	h.Publish(context.Background(), Origin{}, Event{Type: TaskUpdated, Project: "p1"})
	assertNothing(t, a)
}

func TestDeliver_DropsForFullQueueOnly(t *testing.T) {
	h := NewHub()
	slow := register(h, "u-slow", 1)
	fast := register(h, "u-fast", 4)
	require.NoError(t, h.Join(slow.ID, "p1"))
	require.NoError(t, h.Join(fast.ID, "p1"))

	assert.Equal(t, 2, h.Deliver("p1", Origin{}, []byte(`{"n":1}`)))
	assert.Equal(t, 1, h.Deliver("p1", Origin{}, []byte(`{"n":2}`)))

	stats := h.StatsSnapshot()
	assert.Equal(t, int64(3), stats["delivered"])
	assert.Equal(t, int64(1), stats["dropped"])
	assert.Len(t, fast.Send(), 2)
}

func TestLeaveAndDisconnect(t *testing.T) {
	h := NewHub()
	a := register(h, "u-a", 4)
	b := register(h, "u-b", 4)
	require.NoError(t, h.Join(a.ID, "p1"))
	require.NoError(t, h.Join(a.ID, "p2"))
	require.NoError(t, h.Join(b.ID, "p1"))

	h.Leave(a.ID, "p1")
	assert.Equal(t, 1, h.Members("p1"))

	h.Disconnect(a.ID)
	assert.Equal(t, 0, h.Members("p2"))
	_, open := <-a.Send()
	assert.False(t, open)

	assert.ErrorIs(t, h.Join(a.ID, "p1"), ErrUnknownConnection)
	h.Disconnect(a.ID)

	stats := h.StatsSnapshot()
	assert.Equal(t, int64(1), stats["connections"])
	assert.Equal(t, int64(1), stats["rooms"])
}

type failingRelay struct{}

func (failingRelay) Publish(context.Context, string, Origin, []byte) error {
	return assert.AnError
}

func TestPublish_FallsBackToLocalWhenRelayFails(t *testing.T) {
	h := NewHub()
	h.SetRelay(failingRelay{})
	b := register(h, "u-b", 4)
	require.NoError(t, h.Join(b.ID, "p1"))

	h.Publish(context.Background(), Origin{}, Event{Type: TaskDeleted, Project: "p1"})

	assert.Equal(t, TaskDeleted, receive(t, b).Type)
	assert.Eventually(t, func() bool { return h.StatsSnapshot()["relay_errors"] == 1 }, time.Second, 10*time.Millisecond)
}
