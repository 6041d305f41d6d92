package notify

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"sync"
)

const (
	RegisterMessageType = "register"
	NewUnitsMessageType = "new_units"
)

type RegisterMessage struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

// NewUnitsMessage tells a client that a serial on their shelf grew. The
// refresher sends the same shape to the server, which relays it to the
// owner's registered address.
type NewUnitsMessage struct {
	Type      string `json:"type"`
	UserID    string `json:"user_id,omitempty"`
	RecordID  string `json:"record_id"`
	Title     string `json:"title,omitempty"`
	Available int    `json:"available"`
	Previous  int    `json:"previous"`
}

type Client struct {
	UserID string
	Addr   *net.UDPAddr
}

type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

func (r *Registry) Register(userID string, addr *net.UDPAddr) {
	if userID == "" || addr == nil {
		return
	}
	r.mu.Lock()
	r.clients[userID] = Client{UserID: userID, Addr: addr}
	r.mu.Unlock()
}

func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	delete(r.clients, userID)
	r.mu.Unlock()
}

func (r *Registry) Get(userID string) (Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[userID]
	return c, ok
}

func (r *Registry) Snapshot() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]Client, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}
	return clients
}

// Server is the UDP notification endpoint. Clients register themselves by
// datagram; the refresher pushes new-units messages back to the owner.
type Server struct {
	addr     string
	registry *Registry
	logger   *log.Logger

	mu   sync.Mutex
	conn *net.UDPConn
}

func NewServer(addr string, registry *Registry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{addr: addr, registry: registry, logger: logger}
}

func (s *Server) Run() error {
	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer conn.Close()

	s.logger.Printf("UDP notify server listening on %s", s.addr)

	buffer := make([]byte, 2048)
	for {
		n, addr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		msg, err := parseInbound(buffer[:n])
		if err != nil {
			s.logger.Printf("invalid UDP message from %s: %v", addr, err)
			continue
		}

		switch msg.Type {
		case RegisterMessageType:
			s.registry.Register(msg.UserID, addr)
			s.logger.Printf("registered UDP client %s (%s)", msg.UserID, addr)
		case NewUnitsMessageType:
			// relayed from the refresher; forward to the owner
			s.NotifyNewUnits(msg.UserID, msg.RecordID, msg.Title, msg.Available, msg.Previous)
		}
	}
}

// NotifyNewUnits tells one user that their serial gained chapters. Shelf
// entries are private, so this never fans out beyond the owner.
func (s *Server) NotifyNewUnits(userID, recordID, title string, available, previous int) {
	if s.udpConn() == nil {
		s.logger.Printf("UDP notify server not running")
		return
	}
	client, ok := s.registry.Get(userID)
	if !ok {
		return
	}

	payload, err := json.Marshal(NewUnitsMessage{
		Type:      NewUnitsMessageType,
		RecordID:  recordID,
		Title:     title,
		Available: available,
		Previous:  previous,
	})
	if err != nil {
		s.logger.Printf("failed to marshal notification: %v", err)
		return
	}

	s.sendWithRetry(client, payload)
}

func (s *Server) sendWithRetry(client Client, payload []byte) {
	if err := s.sendOnce(client, payload); err == nil {
		return
	}
	if err := s.sendOnce(client, payload); err != nil {
		s.logger.Printf("failed to notify user %s at %s: %v", client.UserID, client.Addr, err)
		s.registry.Remove(client.UserID)
	}
}

func (s *Server) sendOnce(client Client, payload []byte) error {
	if client.Addr == nil {
		return errors.New("missing client address")
	}
	conn := s.udpConn()
	if conn == nil {
		return errors.New("server not running")
	}
	_, err := conn.WriteToUDP(payload, client.Addr)
	return err
}

func (s *Server) udpConn() *net.UDPConn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

func (s *Server) Close() error {
	conn := s.udpConn()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func parseInbound(data []byte) (NewUnitsMessage, error) {
	var msg NewUnitsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	if msg.UserID == "" || msg.Type == "" {
		return msg, errors.New("missing required fields")
	}
	return msg, nil
}

// PushNotifier sends new-units messages to a running notify server, which
// relays them to the owner. Loss is acceptable; this is UDP end to end.
type PushNotifier struct {
	Addr string
}

func (p *PushNotifier) NotifyNewUnits(userID, recordID, title string, available, previous int) {
	conn, err := net.Dial("udp", p.Addr)
	if err != nil {
		return
	}
	defer conn.Close()

	payload, err := json.Marshal(NewUnitsMessage{
		Type:      NewUnitsMessageType,
		UserID:    userID,
		RecordID:  recordID,
		Title:     title,
		Available: available,
		Previous:  previous,
	})
	if err != nil {
		return
	}
	_, _ = conn.Write(payload)
}
