package realtime

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// ClientMessage is a control message from a viewer's connection.
type ClientMessage struct {
	Type          string `json:"type"` // "join-competition", "leave-competition"
	CompetitionID string `json:"competitionId"`
}

type Client struct {
	conn *websocket.Conn
	send chan Event

	// rooms this client has joined; guarded by the hub's lock.
	rooms  map[string]bool
	closed bool
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn:  conn,
		send:  make(chan Event, 8),
		rooms: make(map[string]bool),
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS upgrades the request and runs the connection's pumps. A client that
// reconnects gets a fresh connection and must re-send join-competition for
// each room it was viewing; joins are idempotent so replaying them is safe.
func ServeWS(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "error", err)
			return
		}

		client := newClient(conn)

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.Drop(c)
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		if msg.CompetitionID == "" {
			continue
		}

		switch msg.Type {
		case "join-competition":
			h.Join(c, msg.CompetitionID)
		case "leave-competition":
			h.Leave(c, msg.CompetitionID)
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
