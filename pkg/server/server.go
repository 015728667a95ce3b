package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/schmitti92/serverfinal/pkg/log"
	"github.com/schmitti92/serverfinal/pkg/messages"
	"github.com/schmitti92/serverfinal/pkg/rooms"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  messages.MessageBufferSize,
	WriteBufferSize: messages.MessageBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSServer accepts WebSocket connections and dispatches their messages to
// the room manager. One reader goroutine runs per connection.
type WSServer struct {
	conns *ConnManager
	rooms *rooms.Manager
}

// NewWSServerOptions contains options for creating a new WSServer.
type NewWSServerOptions struct {
	ConnManager *ConnManager
	RoomManager *rooms.Manager
}

// NewWSServer creates a new WSServer.
func NewWSServer(opts NewWSServerOptions) *WSServer {
	return &WSServer{
		conns: opts.ConnManager,
		rooms: opts.RoomManager,
	}
}

// Handler returns the http handler that upgrades requests to WebSocket
// connections.
func (s *WSServer) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("Failed to upgrade to WebSocket: %v", err)
			return
		}
		log.Debug("New WebSocket connection from %s", ws.RemoteAddr().String())
		s.handleConnection(ws)
	}
}

func (s *WSServer) handleConnection(ws *websocket.Conn) {
	conn := &Conn{
		ID: uuid.NewString(),
		ws: ws,
	}
	// oversized frames are cut off at the transport, not after buffering
	ws.SetReadLimit(messages.MessageBufferSize)
	s.conns.Add(conn)
	defer func() {
		s.conns.Remove(conn.ID)
		s.handleDisconnect(conn)
		ws.Close()
	}()

	hello, err := messages.NewServerMessage(messages.MessageTypeServerHello, &messages.ServerHello{ClientID: conn.ID})
	if err != nil {
		log.Error("Failed to build hello message: %v", err)
		return
	}
	if err := conn.Send(hello); err != nil {
		log.Error("Failed to send hello to %s: %v", conn.ID, err)
		return
	}

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Error("Error reading WebSocket message from %s: %v", conn.ID, err)
			}
			log.Trace("Connection closed for %s", conn.ID)
			return
		}

		msg, err := messages.DeserializeMessage(data)
		if err != nil {
			// transport noise is tolerated, malformed frames are dropped
			log.Trace("Dropping unreadable message from %s: %v", conn.ID, err)
			continue
		}
		s.dispatch(conn, msg)
	}
}

// handleDisconnect marks the connection's seat disconnected; the room pauses
// itself when a color goes missing. The room ignores the close when the seat
// already rebound to a newer connection.
func (s *WSServer) handleDisconnect(conn *Conn) {
	roomCode, token := conn.Binding()
	if roomCode == "" {
		return
	}
	result := s.rooms.Disconnect(roomCode, token, conn.ID)
	if result == nil {
		return
	}
	s.broadcastRoomUpdate(roomCode, result.Roster)
	if result.State != nil {
		s.broadcast(roomCode, messages.MessageTypeServerSnapshot, &messages.ServerSnapshot{State: result.State})
	}
}
