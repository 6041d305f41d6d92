package sync

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// client is one connected subscriber, regardless of transport. send holds
// a per-client mutex: the welcome message and broadcasts come from
// different goroutines, and neither transport tolerates interleaved writes.
type client interface {
	send(b []byte) error
	close()
}

type tcpClient struct {
	mu   sync.Mutex
	conn net.Conn
}

func (t *tcpClient) send(b []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	_, err := t.conn.Write(b)
	return err
}

func (t *tcpClient) close() { _ = t.conn.Close() }

type wsClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsClient) send(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(websocket.TextMessage, b)
}

func (w *wsClient) close() { _ = w.conn.Close() }

// Hub fans record events out to every connected sync client. A client
// that fails a write is dropped on the spot.
type Hub struct {
	mu      sync.Mutex
	clients map[client]struct{}
	tcpN    int
	wsN     int
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
}

func NewHub() *Hub {
	return &Hub{clients: make(map[client]struct{})}
}

func (h *Hub) AddTCP(conn net.Conn) client {
	c := &tcpClient{conn: conn}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.tcpN++
	h.mu.Unlock()
	return c
}

func (h *Hub) AddWS(ws *websocket.Conn) client {
	c := &wsClient{conn: ws}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.wsN++
	h.mu.Unlock()
	return c
}

func (h *Hub) remove(c client) {
	switch c.(type) {
	case *tcpClient:
		h.tcpN--
	case *wsClient:
		h.wsN--
	}
	delete(h.clients, c)
	c.close()
}

func (h *Hub) Remove(c client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		h.remove(c)
	}
	h.mu.Unlock()
}

// Broadcast stamps the event and sends it to every client as one
// newline-terminated JSON document.
func (h *Hub) Broadcast(ev RecordEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	b = append(b, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if err := c.send(b); err != nil {
			h.remove(c)
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{TCPClients: h.tcpN, WSClients: h.wsN}
}

func (h *Hub) welcome(c client) {
	h.mu.Lock()
	n := len(h.clients)
	h.mu.Unlock()
	msg := fmt.Sprintf("{\"type\":\"welcome\",\"message\":\"connected\",\"clients\":%d}\n", n)
	_ = c.send([]byte(msg))
}
