package server

import (
	"context"
	"errors"

	"github.com/schmitti92/serverfinal/pkg/game"
	"github.com/schmitti92/serverfinal/pkg/log"
	"github.com/schmitti92/serverfinal/pkg/messages"
	"github.com/schmitti92/serverfinal/pkg/rooms"
)

// dispatch routes one inbound message. Rejections go back to the requester
// only; malformed payloads are dropped silently.
func (s *WSServer) dispatch(conn *Conn, msg *messages.Message) {
	switch msg.Type {
	case messages.MessageTypeClientPing:
		s.send(conn, messages.MessageTypeServerPong, nil)
	case messages.MessageTypeClientJoin:
		s.handleJoin(conn, msg)
	case messages.MessageTypeClientLeave:
		s.handleLeave(conn)
	case messages.MessageTypeClientStart:
		s.handleStart(conn)
	case messages.MessageTypeClientReset:
		s.handleReset(conn)
	case messages.MessageTypeClientResume:
		s.handleResume(conn)
	case messages.MessageTypeClientRollRequest:
		s.handleRoll(conn)
	case messages.MessageTypeClientLegalRequest:
		s.handleLegal(conn, msg)
	case messages.MessageTypeClientMoveRequest:
		s.handleMove(conn, msg)
	case messages.MessageTypeClientPlaceBarricade:
		s.handlePlaceBarricade(conn, msg)
	default:
		log.Trace("Dropping message with unknown type %q from %s", msg.Type, conn.ID)
	}
}

func (s *WSServer) handleJoin(conn *Conn, msg *messages.Message) {
	var join messages.ClientJoin
	if err := messages.DecodePayload(msg, &join); err != nil {
		log.Trace("Dropping malformed join from %s: %v", conn.ID, err)
		return
	}

	// joining another room leaves the current one
	if oldRoom, oldToken := conn.Binding(); oldRoom != "" {
		if roster, err := s.rooms.Leave(oldRoom, oldToken); err == nil {
			conn.Bind("", "")
			s.broadcastRoomUpdate(oldRoom, *roster)
		}
	}

	result, err := s.rooms.Join(context.Background(), rooms.JoinParams{
		ClientID:     conn.ID,
		RoomCode:     join.Room,
		Name:         join.Name,
		SessionToken: join.SessionToken,
		AsHost:       join.AsHost,
	})
	if err != nil {
		s.sendError(conn, err)
		return
	}

	conn.Bind(result.RoomCode, result.Token)
	s.broadcastRoomUpdate(result.RoomCode, result.Roster)
	if result.State != nil {
		s.send(conn, messages.MessageTypeServerSnapshot, &messages.ServerSnapshot{State: result.State})
	}
}

func (s *WSServer) handleLeave(conn *Conn) {
	roomCode, token := conn.Binding()
	if roomCode == "" {
		return
	}
	roster, err := s.rooms.Leave(roomCode, token)
	if err != nil {
		s.sendError(conn, err)
		return
	}
	conn.Bind("", "")
	s.send(conn, messages.MessageTypeServerRoomUpdate, &messages.ServerRoomUpdate{Players: []messages.RoomPlayer{}})
	s.broadcastRoomUpdate(roomCode, *roster)
}

func (s *WSServer) handleStart(conn *Conn) {
	roomCode, token := conn.Binding()
	state, err := s.rooms.Start(roomCode, token)
	if err != nil {
		s.sendError(conn, err)
		return
	}
	s.broadcast(roomCode, messages.MessageTypeServerStarted, &messages.ServerStarted{State: state})
}

func (s *WSServer) handleReset(conn *Conn) {
	roomCode, token := conn.Binding()
	roster, err := s.rooms.Reset(roomCode, token)
	if err != nil {
		s.sendError(conn, err)
		return
	}
	s.broadcast(roomCode, messages.MessageTypeServerReset, nil)
	s.broadcastRoomUpdate(roomCode, *roster)
}

func (s *WSServer) handleResume(conn *Conn) {
	roomCode, token := conn.Binding()
	state, err := s.rooms.Resume(roomCode, token)
	if err != nil {
		s.sendError(conn, err)
		return
	}
	s.broadcast(roomCode, messages.MessageTypeServerSnapshot, &messages.ServerSnapshot{State: state})
}

func (s *WSServer) handleRoll(conn *Conn) {
	roomCode, token := conn.Binding()
	outcome, err := s.rooms.Roll(roomCode, token)
	if err != nil {
		s.sendError(conn, err)
		return
	}
	s.broadcast(roomCode, messages.MessageTypeServerRoll, &messages.ServerRoll{
		Value:     outcome.Value,
		Forfeited: outcome.Forfeited,
		State:     outcome.State,
	})
}

func (s *WSServer) handleLegal(conn *Conn, msg *messages.Message) {
	var req messages.ClientLegalRequest
	if err := messages.DecodePayload(msg, &req); err != nil {
		log.Trace("Dropping malformed legal_request from %s: %v", conn.ID, err)
		return
	}
	roomCode, token := conn.Binding()
	targets, err := s.rooms.LegalMoves(roomCode, token, req.PieceID)
	if err != nil {
		s.sendError(conn, err)
		return
	}
	s.send(conn, messages.MessageTypeServerLegal, &messages.ServerLegal{
		PieceID: req.PieceID,
		Targets: targets,
	})
}

func (s *WSServer) handleMove(conn *Conn, msg *messages.Message) {
	var req messages.ClientMoveRequest
	if err := messages.DecodePayload(msg, &req); err != nil {
		log.Trace("Dropping malformed move_request from %s: %v", conn.ID, err)
		return
	}
	roomCode, token := conn.Binding()
	outcome, err := s.rooms.Move(roomCode, token, req.PieceID, req.TargetID)
	if err != nil {
		s.sendError(conn, err)
		return
	}
	s.broadcast(roomCode, messages.MessageTypeServerMove, &messages.ServerMove{
		Action: messages.MoveAction{
			PieceID:         outcome.Result.PieceID,
			Path:            outcome.Result.Path,
			PickedBarricade: outcome.Result.PickedBarricade,
			Captured:        outcome.Result.Captured,
		},
		State: outcome.State,
	})
}

func (s *WSServer) handlePlaceBarricade(conn *Conn, msg *messages.Message) {
	var req messages.ClientPlaceBarricade
	if err := messages.DecodePayload(msg, &req); err != nil {
		log.Trace("Dropping malformed place_barricade from %s: %v", conn.ID, err)
		return
	}
	roomCode, token := conn.Binding()
	state, err := s.rooms.PlaceBarricade(roomCode, token, req.NodeID)
	if err != nil {
		s.sendError(conn, err)
		return
	}
	s.broadcast(roomCode, messages.MessageTypeServerSnapshot, &messages.ServerSnapshot{State: state})
}

// send builds and writes a message to a single connection.
func (s *WSServer) send(conn *Conn, messageType string, payload interface{}) {
	msg, err := messages.NewServerMessage(messageType, payload)
	if err != nil {
		log.Error("Failed to build %s message: %v", messageType, err)
		return
	}
	if err := conn.Send(msg); err != nil {
		log.Debug("Failed to send %s to %s: %v", messageType, conn.ID, err)
	}
}

// sendError reports a rejection to the requesting connection only. Errors
// that are not rejections are logged and dropped.
func (s *WSServer) sendError(conn *Conn, err error) {
	var rejection *game.Rejection
	if !errors.As(err, &rejection) {
		log.Error("Internal error handling message from %s: %v", conn.ID, err)
		return
	}
	s.send(conn, messages.MessageTypeServerError, &messages.ServerError{
		Code:    rejection.Code,
		Message: rejection.Message,
	})
}

// broadcast sends a message to every connected seat of a room.
func (s *WSServer) broadcast(roomCode string, messageType string, payload interface{}) {
	msg, err := messages.NewServerMessage(messageType, payload)
	if err != nil {
		log.Error("Failed to build %s message: %v", messageType, err)
		return
	}
	for _, clientID := range s.rooms.ConnectedClientIDs(roomCode) {
		conn := s.conns.Get(clientID)
		if conn == nil {
			continue
		}
		if err := conn.Send(msg); err != nil {
			log.Debug("Failed to broadcast %s to %s: %v", messageType, clientID, err)
		}
	}
}

func (s *WSServer) broadcastRoomUpdate(roomCode string, roster rooms.Roster) {
	players := make([]messages.RoomPlayer, 0, len(roster.Players))
	for _, p := range roster.Players {
		players = append(players, messages.RoomPlayer{
			Name:      p.Name,
			Color:     p.Color,
			IsHost:    p.Host,
			Connected: p.Connected,
		})
	}
	s.broadcast(roomCode, messages.MessageTypeServerRoomUpdate, &messages.ServerRoomUpdate{
		Players:  players,
		CanStart: roster.CanStart,
	})
}
