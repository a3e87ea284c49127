package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"club18/models"
	"club18/session"
)

func testClient(m *Manager) *Client {
	return &Client{
		send:    make(chan []byte, 8),
		manager: m,
	}
}

func drain(c *Client) []map[string]interface{} {
	var out []map[string]interface{}
	for {
		select {
		case data := <-c.send:
			var msg map[string]interface{}
			if json.Unmarshal(data, &msg) == nil {
				out = append(out, msg)
			}
		default:
			return out
		}
	}
}

func TestChannelsForFollowsScreen(t *testing.T) {
	cases := []struct {
		state session.State
		want  []string
	}{
		{session.State{Screen: session.ScreenAgeGate}, nil},
		{session.State{Screen: session.ScreenHome, UserID: "u1"}, []string{"feed"}},
		{session.State{Screen: session.ScreenExplore, UserID: "u1"}, nil},
		{session.State{Screen: session.ScreenInbox, UserID: "u1"}, []string{"inbox:u1"}},
		{
			session.State{Screen: session.ScreenChatDetail, UserID: "u1", ActiveThread: "u1_u2"},
			[]string{"thread:u1_u2", "inbox:u1"},
		},
		{session.State{Screen: session.ScreenProfile, UserID: "u1"}, nil},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, channelsFor(tc.state), "screen %s", tc.state.Screen)
	}
}

func TestRetargetReplacesSubscriptions(t *testing.T) {
	m := NewManager(nil)
	c := testClient(m)

	m.retarget(c, []string{"feed"})
	m.retarget(c, []string{"inbox:u1"})

	// Leaving the feed screen tears that subscription down.
	m.Publish("feed", "post_created", models.Post{Caption: "hello"})
	assert.Empty(t, drain(c))

	m.Publish("inbox:u1", "conversation_updated", map[string]interface{}{"id": "a_b"})
	msgs := drain(c)
	require.Len(t, msgs, 1)
	assert.Equal(t, "conversation_updated", msgs[0]["type"])
}

func TestRetargetEmptyDetachesAll(t *testing.T) {
	m := NewManager(nil)
	c := testClient(m)

	m.retarget(c, []string{"feed", "inbox:u1"})
	m.retarget(c, nil)

	m.Publish("feed", "post_created", models.Post{})
	m.Publish("inbox:u1", "conversation_updated", nil)
	assert.Empty(t, drain(c))

	// Empty channel sets are pruned from the map entirely.
	m.mu.RLock()
	defer m.mu.RUnlock()
	assert.Empty(t, m.channels)
}

func TestPublishReachesOnlySubscribers(t *testing.T) {
	m := NewManager(nil)
	reader := testClient(m)
	other := testClient(m)

	m.retarget(reader, []string{"thread:a_b", "inbox:u1"})
	m.retarget(other, []string{"feed"})

	m.PublishMessage(models.Message{ConversationID: "a_b", Text: "hey"})

	msgs := drain(reader)
	require.Len(t, msgs, 1)
	assert.Equal(t, "message_new", msgs[0]["type"])
	assert.Empty(t, drain(other))
}

func TestPublishConversationUpdateFansOutToParticipants(t *testing.T) {
	m := NewManager(nil)
	c1 := testClient(m)
	c2 := testClient(m)

	m.retarget(c1, []string{"inbox:u1"})
	m.retarget(c2, []string{"inbox:u2"})

	m.PublishConversationUpdate([]string{"u1", "u2"}, "u1_u2", "hey", 1700000000)

	for _, c := range []*Client{c1, c2} {
		msgs := drain(c)
		require.Len(t, msgs, 1)
		assert.Equal(t, "conversation_updated", msgs[0]["type"])
	}
}

func TestListenerAfterDisconnectIsNoOp(t *testing.T) {
	m := NewManager(nil)
	go m.Start()

	c := testClient(m)
	m.register <- c
	m.retarget(c, []string{"feed"})

	m.unregister <- c
	require.Eventually(t, func() bool {
		m.mu.RLock()
		defer m.mu.RUnlock()
		return len(m.clients) == 0
	}, time.Second, 5*time.Millisecond)

	// The machine can deliver a transition queued before the disconnect.
	// It must neither write to the closed send channel nor resubscribe
	// the dead client.
	c.onState(session.State{Screen: session.ScreenHome, UserID: "u1"})

	m.mu.RLock()
	assert.Empty(t, m.channels)
	m.mu.RUnlock()

	m.PublishPost(models.Post{Caption: "hello"})
}

func TestPublishDropsForSlowClient(t *testing.T) {
	m := NewManager(nil)
	c := &Client{send: make(chan []byte), manager: m}

	m.retarget(c, []string{"feed"})

	// Unbuffered send channel with no reader: the publish must drop the
	// update instead of blocking the hub.
	done := make(chan struct{})
	go func() {
		m.PublishPost(models.Post{Caption: "hello"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow client")
	}
}
