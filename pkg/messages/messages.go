package messages

import (
	"encoding/json"

	"github.com/schmitti92/serverfinal/pkg/game"
)

const (
	// MessageBufferSize represents the maximum size of a message
	MessageBufferSize = 4096
)

// Client message types
const (
	MessageTypeClientPing           = "ping"
	MessageTypeClientJoin           = "join"
	MessageTypeClientLeave          = "leave"
	MessageTypeClientStart          = "start"
	MessageTypeClientReset          = "reset"
	MessageTypeClientResume         = "resume"
	MessageTypeClientRollRequest    = "roll_request"
	MessageTypeClientLegalRequest   = "legal_request"
	MessageTypeClientMoveRequest    = "move_request"
	MessageTypeClientPlaceBarricade = "place_barricade"
)

// Server message types
const (
	MessageTypeServerPong       = "pong"
	MessageTypeServerHello      = "hello"
	MessageTypeServerRoomUpdate = "room_update"
	MessageTypeServerStarted    = "started"
	MessageTypeServerSnapshot   = "snapshot"
	MessageTypeServerReset      = "reset"
	MessageTypeServerRoll       = "roll"
	MessageTypeServerLegal      = "legal"
	MessageTypeServerMove       = "move"
	MessageTypeServerError      = "error"
)

// Message is the envelope every frame carries: a type discriminator and the
// type's payload.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ClientJoin binds the connection to a room seat. SessionToken is a durable
// opaque token the client generates once and replays on reconnect.
type ClientJoin struct {
	Room         string `json:"room"`
	Name         string `json:"name"`
	AsHost       bool   `json:"asHost"`
	SessionToken string `json:"sessionToken"`
}

// ClientLegalRequest asks for the legal destinations of one piece.
type ClientLegalRequest struct {
	PieceID string `json:"pieceId"`
}

// ClientMoveRequest declares a move of a piece to a destination node.
type ClientMoveRequest struct {
	PieceID  string `json:"pieceId"`
	TargetID string `json:"targetId"`
}

// ClientPlaceBarricade places the carried barricade on a node.
type ClientPlaceBarricade struct {
	NodeID string `json:"nodeId"`
}

// ServerHello carries the connection id assigned by the server.
type ServerHello struct {
	ClientID string `json:"clientId"`
}

// RoomPlayer is one seat in the room roster.
type RoomPlayer struct {
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	IsHost    bool   `json:"isHost"`
	Connected bool   `json:"connected"`
}

// ServerRoomUpdate is broadcast whenever the seat roster changes.
type ServerRoomUpdate struct {
	Players  []RoomPlayer `json:"players"`
	CanStart bool         `json:"canStart"`
}

// ServerStarted is broadcast when the host starts a match.
type ServerStarted struct {
	State *game.State `json:"state"`
}

// ServerSnapshot carries the full match state, sent on join/resync and after
// actions that have no richer message of their own.
type ServerSnapshot struct {
	State *game.State `json:"state"`
}

// ServerRoll is broadcast after a successful roll.
type ServerRoll struct {
	Value int `json:"value"`
	// Forfeited is set when the roll left no legal move and the turn
	// already passed.
	Forfeited bool        `json:"forfeited,omitempty"`
	State     *game.State `json:"state"`
}

// ServerLegal answers a legal_request for the requesting connection only.
type ServerLegal struct {
	PieceID string   `json:"pieceId"`
	Targets []string `json:"targets"`
}

// MoveAction is the applied-move detail inside a ServerMove.
type MoveAction struct {
	PieceID         string   `json:"pieceId"`
	Path            []string `json:"path"`
	PickedBarricade bool     `json:"pickedBarricade"`
	Captured        []string `json:"captured,omitempty"`
}

// ServerMove is broadcast after a successful move.
type ServerMove struct {
	Action MoveAction  `json:"action"`
	State  *game.State `json:"state"`
}

// ServerError reports a rejected action to the requesting connection only.
type ServerError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
