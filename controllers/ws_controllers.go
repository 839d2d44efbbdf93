package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/aryawidjaja/grievance-portal/realtime"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NotificationStreamHandler upgrades the connection and registers it with
// the realtime hub so the dispatcher can signal new notifications.
func NotificationStreamHandler(c *gin.Context) {
	userID := c.GetUint("user_id")
	role := c.GetString("role")
	if userID == 0 {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	realtime.RegisterClient(ws, userID, role)

	// Drain until the client disconnects; the hub only pushes.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	realtime.UnregisterClient(ws)
}
