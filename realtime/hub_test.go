package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/aryawidjaja/grievance-portal/utils"
)

// startHubServer serves a bare upgrade endpoint that registers the connection
// under the user id and role carried in the query string.
func startHubServer(t *testing.T) (*httptest.Server, func(userID uint, role string) *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		uid, _ := strconv.Atoi(r.URL.Query().Get("uid"))
		RegisterClient(conn, uint(uid), r.URL.Query().Get("role"))
	}))

	dial := func(userID uint, role string) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") +
			fmt.Sprintf("/?uid=%d&role=%s", userID, role)
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		assert.NoError(t, err)
		return conn
	}
	return srv, dial
}

func clientCount() int {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	return len(hub.clients)
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	assert.NoError(t, err)

	var msg Message
	assert.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

func TestEmitNewNotificationsTargetsOnlyListedUsers(t *testing.T) {
	utils.InitLogger()
	srv, dial := startHubServer(t)
	defer srv.Close()

	base := clientCount()
	alice := dial(1, "citizen")
	bob := dial(2, "citizen")
	defer alice.Close()
	defer bob.Close()

	assert.Eventually(t, func() bool { return clientCount() >= base+2 },
		2*time.Second, 10*time.Millisecond)

	EmitNewNotificationsToUsers([]uint{1})

	msg := readMessage(t, alice)
	assert.Equal(t, EventNewNotifications, msg.Event)

	bob.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := bob.ReadMessage()
	assert.Error(t, err, "user 2 was not targeted and must receive nothing")
}

func TestBroadcastComplaintUpdateReachesAdminsOnly(t *testing.T) {
	utils.InitLogger()
	srv, dial := startHubServer(t)
	defer srv.Close()

	base := clientCount()
	admin := dial(10, "admin")
	citizen := dial(11, "citizen")
	defer admin.Close()
	defer citizen.Close()

	assert.Eventually(t, func() bool { return clientCount() >= base+2 },
		2*time.Second, 10*time.Millisecond)

	BroadcastComplaintUpdate(map[string]interface{}{"complaint_id": 42, "status": "in_progress"})

	msg := readMessage(t, admin)
	assert.Equal(t, EventComplaintUpdate, msg.Event)
	data, ok := msg.Data.(map[string]interface{})
	assert.True(t, ok)
	assert.EqualValues(t, 42, data["complaint_id"])

	citizen.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := citizen.ReadMessage()
	assert.Error(t, err, "non-admin clients must not receive complaint updates")
}
