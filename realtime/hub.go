package realtime

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/aryawidjaja/grievance-portal/utils"
)

// Push event names
const (
	EventNewNotifications = "notifications_new"
	EventComplaintUpdate  = "complaint_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	userID uint
	role   string
}

// Hub tracks every connected websocket client keyed by connection. A user may
// hold several connections (multiple tabs); all of them receive the signal.
type Hub struct {
	clients map[*websocket.Conn]client
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]client),
}

// RegisterClient adds a connection for the given user.
func RegisterClient(conn *websocket.Conn, userID uint, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = client{userID: userID, role: role}
}

// UnregisterClient drops a connection and closes it.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// EmitNewNotificationsToUsers signals the given users that new notifications
// are waiting. Best-effort: write failures are logged and ignored.
func EmitNewNotificationsToUsers(userIDs []uint) {
	targets := make(map[uint]bool, len(userIDs))
	for _, id := range userIDs {
		targets[id] = true
	}

	send(Message{Event: EventNewNotifications}, func(c client) bool {
		return targets[c.userID]
	})
}

// BroadcastComplaintUpdate pushes a complaint change to every connected
// admin dashboard.
func BroadcastComplaintUpdate(data interface{}) {
	send(Message{Event: EventComplaintUpdate, Data: data}, func(c client) bool {
		return c.role == "admin"
	})
}

func send(msg Message, match func(client) bool) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling realtime message: %v", err)
		return
	}

	for conn, cl := range hub.clients {
		if !match(cl) {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending realtime message to user %d: %v", cl.userID, err)
		}
	}
}
