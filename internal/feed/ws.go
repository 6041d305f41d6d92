package feed

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"readhub/internal/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HistoryHandler returns the caller's recent feed items over plain HTTP.
func HistoryHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		items := hub.History(claims.UserID)
		if items == nil {
			items = []Item{}
		}
		c.JSON(http.StatusOK, items)
	}
}

// WSHandler streams the caller's own feed. The socket is read only to
// detect disconnect; clients never publish.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		dev, history := hub.Join(claims.UserID, ws)
		for _, item := range history {
			_ = dev.sendItem(item)
		}

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.Leave(claims.UserID, dev)
	}
}
