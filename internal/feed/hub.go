package feed

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultHistorySize = 50

// Item is one entry of a user's activity feed.
type Item struct {
	Type     string    `json:"type"`
	UserID   string    `json:"user_id"`
	RecordID string    `json:"record_id,omitempty"`
	Title    string    `json:"title,omitempty"`
	Text     string    `json:"text,omitempty"`
	At       time.Time `json:"at"`
}

// device is one connected socket. The websocket allows a single concurrent
// writer, so every outbound frame (replay and live) goes through send.
type device struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (d *device) send(payload []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conn.WriteMessage(websocket.TextMessage, payload)
}

func (d *device) sendItem(item Item) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return d.send(payload)
}

// stream is one user's feed: their open sockets plus a ring of recent items
// replayed to late joiners.
type stream struct {
	connections map[*device]struct{}
	history     []Item
}

// Hub keys activity streams by owning user. Unlike the cross-user sync hub,
// a feed item only ever reaches sockets of the user it belongs to.
type Hub struct {
	mu          sync.Mutex
	streams     map[string]*stream
	historySize int
}

func NewHub(historySize int) *Hub {
	if historySize <= 0 {
		historySize = defaultHistorySize
	}
	return &Hub{
		streams:     make(map[string]*stream),
		historySize: historySize,
	}
}

// Join registers a socket on the user's stream and returns the device plus
// the recent history for replay. The caller replays through the device so
// replay writes serialize with concurrent Publish writes.
func (h *Hub) Join(userID string, ws *websocket.Conn) (*device, []Item) {
	d := &device{conn: ws}

	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.streamLocked(userID)
	s.connections[d] = struct{}{}
	return d, append([]Item(nil), s.history...)
}

func (h *Hub) Leave(userID string, d *device) {
	h.mu.Lock()
	if s, ok := h.streams[userID]; ok {
		delete(s.connections, d)
	}
	h.mu.Unlock()
	_ = d.conn.Close()
}

// Publish appends the item to the user's history and pushes it to their
// connected sockets. Publishing to a user with no stream yet still records
// the history.
func (h *Hub) Publish(item Item) {
	if item.At.IsZero() {
		item.At = time.Now().UTC()
	}

	payload, err := json.Marshal(item)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.streamLocked(item.UserID)
	s.history = append(s.history, item)
	if len(s.history) > h.historySize {
		s.history = s.history[len(s.history)-h.historySize:]
	}

	for d := range s.connections {
		if err := d.send(payload); err != nil {
			_ = d.conn.Close()
			delete(s.connections, d)
		}
	}
}

func (h *Hub) History(userID string) []Item {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.streams[userID]; ok {
		return append([]Item(nil), s.history...)
	}
	return nil
}

func (h *Hub) streamLocked(userID string) *stream {
	s, ok := h.streams[userID]
	if !ok {
		s = &stream{connections: make(map[*device]struct{})}
		h.streams[userID] = s
	}
	return s
}
