package feed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(userID, title string) Item {
	return Item{
		Type:     "record.update",
		UserID:   userID,
		RecordID: "r1",
		Title:    title,
		At:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublish_RecordsHistoryWithoutSockets(t *testing.T) {
	hub := NewHub(10)

	hub.Publish(item("u1", "First"))
	hub.Publish(item("u1", "Second"))

	got := hub.History("u1")
	require.Len(t, got, 2)
	assert.Equal(t, "First", got[0].Title)
	assert.Equal(t, "Second", got[1].Title)

	assert.Nil(t, hub.History("u2"))
}

func TestPublish_TrimsHistoryRing(t *testing.T) {
	hub := NewHub(3)

	for _, title := range []string{"a", "b", "c", "d", "e"} {
		hub.Publish(item("u1", title))
	}

	got := hub.History("u1")
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].Title)
	assert.Equal(t, "e", got[2].Title)
}

func TestPublish_StampsMissingTime(t *testing.T) {
	hub := NewHub(0)

	it := item("u1", "x")
	it.At = time.Time{}
	hub.Publish(it)

	got := hub.History("u1")
	require.Len(t, got, 1)
	assert.False(t, got[0].At.IsZero())
}

func TestPublish_IsolatedPerUser(t *testing.T) {
	hub := NewHub(10)

	hub.Publish(item("u1", "mine"))
	hub.Publish(item("u2", "theirs"))

	require.Len(t, hub.History("u1"), 1)
	assert.Equal(t, "mine", hub.History("u1")[0].Title)
	require.Len(t, hub.History("u2"), 1)
	assert.Equal(t, "theirs", hub.History("u2")[0].Title)
}

func TestJoin_ReplaysHistoryAndReceivesPush(t *testing.T) {
	hub := NewHub(10)
	hub.Publish(item("u1", "Before Join"))

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		dev, history := hub.Join("u1", ws)
		for _, it := range history {
			require.NoError(t, dev.sendItem(it))
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	// reading the replayed item proves Join already registered the socket
	var replayed Item
	require.NoError(t, conn.ReadJSON(&replayed))
	assert.Equal(t, "Before Join", replayed.Title)

	hub.Publish(item("u1", "After Join"))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var pushed Item
	require.NoError(t, json.Unmarshal(payload, &pushed))
	assert.Equal(t, "After Join", pushed.Title)
}

// Replay and live publishes target the same socket from different
// goroutines; every delivered frame must still be one intact JSON item.
func TestJoin_ReplayConcurrentWithPublish(t *testing.T) {
	const (
		historyN   = 20
		publishers = 4
		perPub     = 10
	)

	hub := NewHub(200)
	for i := 0; i < historyN; i++ {
		hub.Publish(item("u1", "history"))
	}

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		dev, history := hub.Join("u1", ws)

		// publish from several goroutines while the replay loop runs
		var wg sync.WaitGroup
		for p := 0; p < publishers; p++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perPub; i++ {
					hub.Publish(item("u1", "live"))
				}
			}()
		}
		for _, it := range history {
			require.NoError(t, dev.sendItem(it))
		}
		wg.Wait()
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	total := historyN + publishers*perPub
	titles := map[string]int{}
	for i := 0; i < total; i++ {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, payload, err := conn.ReadMessage()
		require.NoError(t, err)

		var got Item
		require.NoError(t, json.Unmarshal(payload, &got), "frame %d is not one intact item: %q", i, payload)
		assert.Equal(t, "u1", got.UserID)
		titles[got.Title]++
	}

	assert.Equal(t, historyN, titles["history"])
	assert.Equal(t, publishers*perPub, titles["live"])
}
