package notify

import (
	"encoding/json"
	"log"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	addr := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5000}

	r.Register("u1", addr)
	c, ok := r.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, addr, c.Addr)

	// reregistering replaces the address
	addr2 := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5001}
	r.Register("u1", addr2)
	c, _ = r.Get("u1")
	assert.Equal(t, 5001, c.Addr.Port)

	assert.Len(t, r.Snapshot(), 1)

	r.Remove("u1")
	_, ok = r.Get("u1")
	assert.False(t, ok)
}

func TestRegistry_IgnoresIncomplete(t *testing.T) {
	r := NewRegistry()

	r.Register("", &net.UDPAddr{})
	r.Register("u1", nil)

	assert.Empty(t, r.Snapshot())
}

func TestParseInbound(t *testing.T) {
	msg, err := parseInbound([]byte(`{"type":"register","user_id":"u1"}`))
	require.NoError(t, err)
	assert.Equal(t, RegisterMessageType, msg.Type)
	assert.Equal(t, "u1", msg.UserID)

	_, err = parseInbound([]byte(`{"type":"register"}`))
	assert.Error(t, err)

	_, err = parseInbound([]byte(`not json`))
	assert.Error(t, err)
}

// End-to-end over loopback: a client registers, the refresher pushes a
// new-units message, the server relays it to the registered client.
func TestServer_RelaysNewUnitsToOwner(t *testing.T) {
	registry := NewRegistry()
	srv := NewServer("127.0.0.1:0", registry, testLogger(t))

	done := make(chan error, 1)
	go func() { done <- srv.Run() }()
	t.Cleanup(func() {
		_ = srv.Close()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})

	serverAddr := waitForAddr(t, srv)

	// the "device": registers, then waits for the relay
	client, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer client.Close()

	reg, _ := json.Marshal(RegisterMessage{Type: RegisterMessageType, UserID: "u1"})
	_, err = client.WriteToUDP(reg, serverAddr)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, ok := registry.Get("u1")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	// the "refresher"
	push := &PushNotifier{Addr: serverAddr.String()}
	push.NotifyNewUnits("u1", "r1", "Some Serial", 12, 10)

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 2048)
	n, _, err := client.ReadFromUDP(buf)
	require.NoError(t, err)

	var got NewUnitsMessage
	require.NoError(t, json.Unmarshal(buf[:n], &got))
	assert.Equal(t, NewUnitsMessageType, got.Type)
	assert.Equal(t, "r1", got.RecordID)
	assert.Equal(t, "Some Serial", got.Title)
	assert.Equal(t, 12, got.Available)
	assert.Equal(t, 10, got.Previous)
}

func waitForAddr(t *testing.T, srv *Server) *net.UDPAddr {
	t.Helper()
	var addr *net.UDPAddr
	require.Eventually(t, func() bool {
		conn := srv.udpConn()
		if conn == nil {
			return false
		}
		addr = conn.LocalAddr().(*net.UDPAddr)
		return true
	}, 2*time.Second, 10*time.Millisecond)
	return addr
}

func testLogger(t *testing.T) *log.Logger {
	t.Helper()
	return log.New(testWriter{t}, "", 0)
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", p)
	return len(p), nil
}
