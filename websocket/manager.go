package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"club18/middleware"
	"club18/models"
	"club18/session"
)

// Manager is the live-query hub. Clients subscribe to channels derived
// from their session state (feed, inbox, chat thread); writes publish
// into those channels and the hub pushes them out.
type Manager struct {
	mu       sync.RWMutex
	clients  map[*Client]bool
	channels map[string]map[*Client]bool

	profiles session.ProfileSource

	register   chan *Client
	unregister chan *Client
}

type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	manager *Manager
	machine *session.Machine
	cancel  context.CancelFunc

	// closed is guarded by manager.mu. Set when the hub unregisters the
	// client, so a machine transition that lands after the disconnect
	// can neither write to the closed send channel nor resubscribe.
	closed bool
}

func NewManager(profiles session.ProfileSource) *Manager {
	return &Manager{
		clients:    make(map[*Client]bool),
		channels:   make(map[string]map[*Client]bool),
		profiles:   profiles,
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (m *Manager) Start() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client] = true
			total := len(m.clients)
			m.mu.Unlock()
			log.Printf("[ws] client connected, %d total", total)

		case client := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				m.detachLocked(client)
				client.closed = true
				close(client.send)
			}
			total := len(m.clients)
			m.mu.Unlock()
			log.Printf("[ws] client disconnected, %d total", total)
		}
	}
}

// retarget swaps a client's subscriptions to exactly the given set.
// Called on every session transition, so leaving a screen always tears
// its subscription down.
func (m *Manager) retarget(c *Client, channels []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.closed {
		return
	}

	m.detachLocked(c)
	for _, ch := range channels {
		if m.channels[ch] == nil {
			m.channels[ch] = make(map[*Client]bool)
		}
		m.channels[ch][c] = true
	}
}

func (m *Manager) detachLocked(c *Client) {
	for ch, subs := range m.channels {
		delete(subs, c)
		if len(subs) == 0 {
			delete(m.channels, ch)
		}
	}
}

// Publish pushes an envelope to every subscriber of a channel. A slow
// client drops the update rather than blocking the hub.
func (m *Manager) Publish(channel, msgType string, payload interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type":    msgType,
		"payload": payload,
	})
	if err != nil {
		log.Printf("[ws] marshal error: %v", err)
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for client := range m.channels[channel] {
		select {
		case client.send <- data:
		default:
			log.Printf("[ws] dropping %s update for slow client", msgType)
		}
	}
}

// PublishPost pushes a new post into the feed channel.
func (m *Manager) PublishPost(post models.Post) {
	m.Publish("feed", "post_created", post)
}

// PublishMessage pushes a new message into its thread channel.
func (m *Manager) PublishMessage(msg models.Message) {
	m.Publish("thread:"+msg.ConversationID, "message_new", msg)
}

// PublishConversationUpdate refreshes the inbox preview for every
// participant of a thread.
func (m *Manager) PublishConversationUpdate(participants []string, convID, preview string, at int64) {
	payload := map[string]interface{}{
		"id":            convID,
		"lastMessage":   preview,
		"lastMessageAt": at,
	}
	for _, uid := range participants {
		m.Publish("inbox:"+uid, "conversation_updated", payload)
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WebSocketHandler upgrades the connection and hands it a fresh
// session machine. All navigation and auth for that connection flow
// through its machine; subscriptions follow the machine's state.
func WebSocketHandler(manager *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[ws] upgrade failed: %v", err)
			return
		}

		ctx, cancel := context.WithCancel(context.Background())

		client := &Client{
			conn:    conn,
			send:    make(chan []byte, 256),
			manager: manager,
			cancel:  cancel,
		}
		client.machine = session.NewMachine(manager.profiles, client.onState)

		go client.machine.Run(ctx)
		manager.register <- client

		client.sendEnvelope("state", statePayload(client.machine.State()))

		go client.writePump()
		go client.readPump(ctx)
	}
}

// channelsFor maps a session state to the live queries its screen
// needs. Screens not listed hold no subscriptions.
func channelsFor(s session.State) []string {
	switch s.Screen {
	case session.ScreenHome:
		return []string{"feed"}
	case session.ScreenInbox:
		return []string{"inbox:" + s.UserID}
	case session.ScreenChatDetail:
		return []string{"thread:" + s.ActiveThread, "inbox:" + s.UserID}
	default:
		return nil
	}
}

func statePayload(s session.State) map[string]interface{} {
	return map[string]interface{}{
		"screen":       s.Screen,
		"userId":       s.UserID,
		"status":       s.Status,
		"activeThread": s.ActiveThread,
	}
}

// onState is the machine listener: push the new state to the client
// and swap subscriptions to match the screen.
func (c *Client) onState(s session.State) {
	c.manager.retarget(c, channelsFor(s))
	c.sendEnvelope("state", statePayload(s))
}

func (c *Client) sendEnvelope(msgType string, payload interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type":    msgType,
		"payload": payload,
	})
	if err != nil {
		log.Printf("[ws] marshal error: %v", err)
		return
	}

	c.manager.mu.RLock()
	defer c.manager.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

type inbound struct {
	Type    string `json:"type"`
	Payload struct {
		Token     string `json:"token"`
		Screen    string `json:"screen"`
		PartnerID string `json:"partnerId"`
	} `json:"payload"`
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.cancel()
		c.manager.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[ws] read error: %v", err)
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("[ws] bad message: %v", err)
			continue
		}

		switch msg.Type {
		case "auth":
			claims, err := middleware.ParseToken(msg.Payload.Token)
			if err != nil {
				c.sendEnvelope("auth_error", map[string]interface{}{"error": "invalid token"})
				continue
			}
			// Profile resolution retries with a fixed delay; keep it off
			// the read loop.
			go c.machine.AuthChanged(ctx, claims.UserID)
		case "signout":
			c.machine.AuthChanged(ctx, "")
		case "navigate":
			c.machine.Dispatch(session.Event{
				Type:   session.EventNavigate,
				Screen: session.Screen(msg.Payload.Screen),
			})
		case "open_chat":
			c.machine.Dispatch(session.Event{
				Type:      session.EventOpenChat,
				PartnerID: msg.Payload.PartnerID,
			})
		case "back":
			c.machine.Dispatch(session.Event{Type: session.EventBack})
		case "bypass":
			c.machine.Dispatch(session.Event{Type: session.EventBypass})
		case "ping":
			c.sendEnvelope("pong", map[string]interface{}{"time": time.Now().Unix()})
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
