package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"

	"github.com/oserockets-max/soken-quiz/internal/telemetry"
)

var (
	mu    sync.RWMutex
	rooms = map[string]map[*websocket.Conn]struct{}{}
)

type Action string

const (
	ActionJoin  Action = "join"
	ActionLeave Action = "leave"
)

const roomSession = "session.room"

type Event string

const (
	EventDocumentReady    Event = "session.event.document_ready"
	EventQuestion         Event = "session.event.question"
	EventGraded           Event = "session.event.graded"
	EventCelebration      Event = "session.event.celebration"
	EventMilestone        Event = "session.event.milestone"
	EventGenerationFailed Event = "session.event.generation_failed"
)

type PayloadEvent struct {
	Event Event `json:"event"`
	Data  any   `json:"data,omitempty"`
}

type ClientMessage struct {
	Action Action `json:"action"`
	Room   string `json:"room"`
}

func HandleWS(c *websocket.Conn) {
	tlog := telemetry.L().With().Str("module", "ws").Logger()
	tlog.Info().Msg("ws_connected")
	defer func() {
		// cleanup on disconnect
		mu.Lock()
		for room := range rooms {
			delete(rooms[room], c)
		}
		mu.Unlock()
		_ = c.Close()
	}()

	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			break
		}

		var cm ClientMessage
		if err := json.Unmarshal(msg, &cm); err != nil {
			continue
		}

		switch cm.Action {
		case ActionJoin:
			joinRoom(c, cm.Room)
		case ActionLeave:
			leaveRoom(c, cm.Room)
		}
	}
}

func joinRoom(c *websocket.Conn, room string) {
	if room == "" {
		return
	}
	mu.Lock()
	if rooms[room] == nil {
		rooms[room] = map[*websocket.Conn]struct{}{}
	}
	rooms[room][c] = struct{}{}
	mu.Unlock()
}

func leaveRoom(c *websocket.Conn, room string) {
	if room == "" {
		return
	}
	mu.Lock()
	delete(rooms[room], c)
	mu.Unlock()
}

func sessionRoom(sessionID string) string { return roomSession + "." + sessionID }

// Broadcast pushes a session event to that session's room. A room with no
// subscribers is a no-op.
func Broadcast(sessionID string, event Event, data any) {
	pl := PayloadEvent{Event: event, Data: data}

	mu.RLock()
	conns := rooms[sessionRoom(sessionID)]
	mu.RUnlock()

	for c := range conns {
		_ = c.WriteJSON(pl)
	}
}
