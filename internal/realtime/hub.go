package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is the wire shape of every message the hub pushes to viewers. It is a
// signal to re-fetch authoritative state, never the state itself.
type Event struct {
	Type          string `json:"type"`
	CompetitionID string `json:"competitionId"`
	RoundID       string `json:"roundId,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
}

const EventScoreUpdate = "score-update"

// RoomName returns the room key for a competition.
func RoomName(competitionID string) string {
	return "competition-" + competitionID
}

// Hub fans events out to named rooms, one room per competition. Membership is
// mutated concurrently by many connections, so the table is lock-guarded.
// Delivery is at-most-once and best-effort: a connection that is gone or slow
// when a broadcast fires simply misses it.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
	}
}

// Join adds the client to a competition's room. Idempotent. A client whose
// send channel has already been closed is refused: its read pump may still be
// draining in-flight messages, and re-admitting it would let a later
// broadcast send on the closed channel.
func (h *Hub) Join(c *Client, competitionID string) {
	room := RoomName(competitionID)

	h.mu.Lock()
	defer h.mu.Unlock()

	if c.closed {
		return
	}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[room] = members
	}
	members[c] = true
	c.rooms[room] = true
}

// Leave removes the client from a competition's room. Safe if never joined.
func (h *Hub) Leave(c *Client, competitionID string) {
	room := RoomName(competitionID)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoom(c, room)
}

// Drop removes the client from every room it joined and closes its send
// channel, ending its write pump.
func (h *Hub) Drop(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range c.rooms {
		h.removeFromRoom(c, room)
	}
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// removeFromRoom must be called with h.mu held.
func (h *Hub) removeFromRoom(c *Client, room string) {
	delete(c.rooms, room)

	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// NotifyScoreUpdate pokes every viewer of a competition's room after a score
// batch has been persisted.
func (h *Hub) NotifyScoreUpdate(competitionID, roundID uuid.UUID) {
	h.broadcast(RoomName(competitionID.String()), Event{
		Type:          EventScoreUpdate,
		CompetitionID: competitionID.String(),
		RoundID:       roundID.String(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Hub) broadcast(room string, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.rooms[room] {
		select {
		case client.send <- event:
		default:
			// Slow consumer; cut it loose rather than block the batch.
			for r := range client.rooms {
				h.removeFromRoom(client, r)
			}
			if !client.closed {
				client.closed = true
				close(client.send)
			}
			// Ends the read pump too, so the connection cannot keep
			// issuing control messages after being cut.
			if client.conn != nil {
				client.conn.Close()
			}
		}
	}
}

// RoomSize reports current membership of a competition's room.
func (h *Hub) RoomSize(competitionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[RoomName(competitionID)])
}
