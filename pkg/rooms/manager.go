package rooms

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/schmitti92/serverfinal/pkg/board"
	"github.com/schmitti92/serverfinal/pkg/game"
	"github.com/schmitti92/serverfinal/pkg/log"
	"github.com/schmitti92/serverfinal/pkg/repositories"
	"github.com/schmitti92/serverfinal/pkg/workers"
)

// Rejection codes owned by the room layer.
const (
	CodeNoRoom    = "NO_ROOM"
	CodeNoColor   = "NO_COLOR"
	CodeRoomFull  = "ROOM_FULL"
	CodeNotHost   = "NOT_HOST"
	CodeNoState   = "NO_STATE"
	CodeSpectator = "SPECTATOR"
	CodeNeed2P    = "NEED_2P"
)

const (
	maxNameLength  = 32
	maxTokenLength = 64
	maxCodeLength  = 16
)

// Manager owns the process-wide registry of rooms. Entries are created on
// first join and only removed by process restart.
type Manager struct {
	lock  sync.RWMutex
	rooms map[string]*Room

	graph      *board.Graph
	repository repositories.Repository
	saves      chan<- workers.SaveSnapshotRequest
	newDice    func() *rand.Rand
}

// NewManagerOptions contains options for creating a new Manager.
type NewManagerOptions struct {
	Graph      *board.Graph
	Repository repositories.Repository
	// SaveSnapshotChan receives fire-and-forget persistence requests.
	SaveSnapshotChan chan<- workers.SaveSnapshotRequest
	// NewDice builds the random source of a newly created room. Defaults
	// to a time-seeded source; tests inject a deterministic one.
	NewDice func() *rand.Rand
}

func NewManager(opts NewManagerOptions) *Manager {
	newDice := opts.NewDice
	if newDice == nil {
		newDice = func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}
	return &Manager{
		rooms:      make(map[string]*Room),
		graph:      opts.Graph,
		repository: opts.Repository,
		saves:      opts.SaveSnapshotChan,
		newDice:    newDice,
	}
}

// RoomCount returns the number of rooms in the registry.
func (m *Manager) RoomCount() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.rooms)
}

// ConnectedClientIDs returns the connection ids of every connected seat in
// a room, for broadcasting.
func (m *Manager) ConnectedClientIDs(roomCode string) []string {
	room := m.room(roomCode)
	if room == nil {
		return nil
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.connectedClientIDs()
}

func (m *Manager) room(code string) *Room {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.rooms[code]
}

// getOrCreate returns the room for a code, creating it on first reference.
// A newly created room attempts to restore a persisted snapshot; a missing
// or unreadable snapshot means the room starts with no match. The snapshot
// is read under the new room's own mutex so a slow load never blocks the
// registry for other rooms.
func (m *Manager) getOrCreate(ctx context.Context, code string) *Room {
	m.lock.Lock()
	if room, ok := m.rooms[code]; ok {
		m.lock.Unlock()
		return room
	}

	room := &Room{
		code:  code,
		seats: make(map[string]*Seat),
		graph: m.graph,
		dice:  m.newDice(),
		saves: m.saves,
	}
	room.mu.Lock()
	m.rooms[code] = room
	m.lock.Unlock()
	defer room.mu.Unlock()

	data, err := m.repository.LoadSnapshot(ctx, code)
	switch {
	case err == nil:
		match, restoreErr := game.RestoreMatch(game.NewMatchOptions{Graph: m.graph, Dice: room.dice}, data)
		if restoreErr != nil {
			log.Warn("Discarding unreadable snapshot for room %s: %v", code, restoreErr)
		} else {
			// nobody is connected yet; stay paused until the host resumes
			match.SetPaused(true)
			room.match = match
			log.Info("Restored match for room %s from snapshot", code)
		}
	case errors.As(err, new(*repositories.ErrNotFound)):
	default:
		log.Warn("Failed to load snapshot for room %s: %v", code, err)
	}

	return room
}

// JoinParams describes a join request.
type JoinParams struct {
	ClientID     string
	RoomCode     string
	Name         string
	SessionToken string
	AsHost       bool
}

// JoinResult is what the transport broadcasts after a successful join.
type JoinResult struct {
	RoomCode string
	// Token is the normalized session token the seat is bound to.
	Token  string
	Roster Roster
	// State is non-nil when the room has a running match the joiner needs
	// to sync with.
	State *game.State
}

// Join binds a connection to a seat. A known session token always gets its
// previous color and host status back; a duplicate join from the same token
// rebinds the existing seat instead of creating a second one.
func (m *Manager) Join(ctx context.Context, p JoinParams) (*JoinResult, error) {
	code := strings.ToUpper(strings.TrimSpace(p.RoomCode))
	if code == "" {
		return nil, game.Reject(CodeNoRoom, "no room code")
	}
	if len(code) > maxCodeLength {
		code = code[:maxCodeLength]
	}
	token := p.SessionToken
	if len(token) > maxTokenLength {
		token = token[:maxTokenLength]
	}
	if token == "" {
		return nil, game.Reject(CodeNoColor, "no session token, cannot bind a seat")
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "Player"
	}
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}

	room := m.getOrCreate(ctx, code)
	room.mu.Lock()
	defer room.mu.Unlock()

	now := time.Now()
	if seat := room.seat(token); seat != nil {
		// reconnect: the seat keeps its color and host status
		seat.Connected = true
		seat.ClientID = p.ClientID
		seat.Name = name
		seat.LastSeen = now
		log.Debug("Seat %s reconnected to room %s as %s", name, code, seat.Color)
	} else {
		color, err := room.assignColor()
		if err != nil {
			return nil, err
		}
		room.seats[token] = &Seat{
			Token:     token,
			Name:      name,
			Color:     color,
			Host:      p.AsHost && !room.hasHost(),
			Connected: true,
			ClientID:  p.ClientID,
			LastSeen:  now,
		}
		log.Debug("Seat %s joined room %s as %s", name, code, color)
	}

	room.enforcePause()

	return &JoinResult{
		RoomCode: code,
		Token:    token,
		Roster:   room.roster(),
		State:    room.state(),
	}, nil
}

// assignColor picks the color for a new seat: random for the first seat,
// the remaining color for the second. A disconnected seat's color may be
// freed for a new identity; with both colors connected the room is full.
func (r *Room) assignColor() (string, error) {
	var free []string
	for _, color := range board.Colors {
		if r.seatByColor(color) == nil {
			free = append(free, color)
		}
	}
	if len(free) == 0 {
		for _, color := range board.Colors {
			if s := r.seatByColor(color); s != nil && !s.Connected {
				delete(r.seats, s.Token)
				free = append(free, color)
				log.Info("Room %s freed seat of disconnected %s", r.code, color)
				break
			}
		}
	}
	switch len(free) {
	case 0:
		return "", game.Reject(CodeRoomFull, "both seats are taken")
	case 1:
		return free[0], nil
	default:
		return free[r.dice.Intn(len(free))], nil
	}
}

// Leave unbinds a seat entirely, freeing its color.
func (m *Manager) Leave(roomCode, token string) (*Roster, error) {
	room := m.room(roomCode)
	if room == nil {
		return nil, game.Reject(CodeNoRoom, "no such room")
	}
	room.mu.Lock()
	defer room.mu.Unlock()

	delete(room.seats, token)
	room.enforcePause()
	room.save()
	roster := room.roster()
	return &roster, nil
}

// Disconnect marks a seat disconnected, keeping its binding for reconnect.
// It returns the updated roster and state for broadcast, or nil when the
// connection held no seat. A close from a connection the seat no longer
// belongs to is ignored: the token already rebound to a newer connection.
func (m *Manager) Disconnect(roomCode, token, clientID string) *JoinResult {
	room := m.room(roomCode)
	if room == nil {
		return nil
	}
	room.mu.Lock()
	defer room.mu.Unlock()

	seat := room.seat(token)
	if seat == nil {
		return nil
	}
	if seat.ClientID != clientID {
		log.Debug("Ignoring stale close of %s for room %s, seat rebound to %s", clientID, roomCode, seat.ClientID)
		return nil
	}
	seat.Connected = false
	seat.ClientID = ""
	seat.LastSeen = time.Now()
	room.enforcePause()
	room.save()

	return &JoinResult{
		RoomCode: room.code,
		Roster:   room.roster(),
		State:    room.state(),
	}
}

// Start begins a fresh match. Host only; both colors must be connected.
func (m *Manager) Start(roomCode, token string) (*game.State, error) {
	room := m.room(roomCode)
	if room == nil {
		return nil, game.Reject(CodeNoRoom, "no such room")
	}
	room.mu.Lock()
	defer room.mu.Unlock()

	seat := room.seat(token)
	if seat == nil {
		return nil, game.Reject(CodeSpectator, "you have no seat in this room")
	}
	if !seat.Host {
		return nil, game.Reject(CodeNotHost, "only the host can start")
	}
	if room.connectedColors() < 2 {
		return nil, game.Reject(CodeNeed2P, "two connected players required")
	}

	room.match = game.NewMatch(game.NewMatchOptions{Graph: room.graph, Dice: room.dice})
	room.save()
	log.Info("Room %s started a match, %s begins", room.code, room.match.State().TurnColor)
	return room.state(), nil
}

// Reset discards the running match and its stored snapshot. Host only.
func (m *Manager) Reset(roomCode, token string) (*Roster, error) {
	room := m.room(roomCode)
	if room == nil {
		return nil, game.Reject(CodeNoRoom, "no such room")
	}
	room.mu.Lock()
	defer room.mu.Unlock()

	seat := room.seat(token)
	if seat == nil {
		return nil, game.Reject(CodeSpectator, "you have no seat in this room")
	}
	if !seat.Host {
		return nil, game.Reject(CodeNotHost, "only the host can reset")
	}

	room.match = nil
	room.discardSnapshot()
	log.Info("Room %s reset", room.code)
	roster := room.roster()
	return &roster, nil
}

// Resume lifts the pause. Host only; both colors must be connected. Resume
// is never automatic on reconnect so both sides re-sync first.
func (m *Manager) Resume(roomCode, token string) (*game.State, error) {
	room := m.room(roomCode)
	if room == nil {
		return nil, game.Reject(CodeNoRoom, "no such room")
	}
	room.mu.Lock()
	defer room.mu.Unlock()

	seat := room.seat(token)
	if seat == nil {
		return nil, game.Reject(CodeSpectator, "you have no seat in this room")
	}
	if !seat.Host {
		return nil, game.Reject(CodeNotHost, "only the host can resume")
	}
	if room.match == nil {
		return nil, game.Reject(CodeNoState, "no running match")
	}
	if room.connectedColors() < 2 {
		return nil, game.Reject(CodeNeed2P, "two connected players required")
	}

	room.match.SetPaused(false)
	room.save()
	log.Info("Room %s resumed", room.code)
	return room.state(), nil
}

// RollOutcome is the broadcastable result of a roll.
type RollOutcome struct {
	Value     int
	Forfeited bool
	State     *game.State
}

// Roll rolls the dice for the requesting seat's color.
func (m *Manager) Roll(roomCode, token string) (*RollOutcome, error) {
	room, seat, err := m.turnSeat(roomCode, token)
	if err != nil {
		return nil, err
	}
	defer room.mu.Unlock()

	result, err := room.match.Roll(seat.Color)
	if err != nil {
		return nil, err
	}
	room.save()
	return &RollOutcome{
		Value:     result.Value,
		Forfeited: result.Forfeited,
		State:     room.state(),
	}, nil
}

// LegalMoves returns the legal destination nodes for one piece of the
// requesting seat's color.
func (m *Manager) LegalMoves(roomCode, token, pieceID string) ([]string, error) {
	room, seat, err := m.turnSeat(roomCode, token)
	if err != nil {
		return nil, err
	}
	defer room.mu.Unlock()

	targets, err := room.match.LegalMoves(seat.Color, pieceID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(targets))
	for id := range targets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// MoveOutcome is the broadcastable result of a move.
type MoveOutcome struct {
	Result *game.MoveResult
	State  *game.State
}

// Move applies a validated move for the requesting seat's color.
func (m *Manager) Move(roomCode, token, pieceID, targetID string) (*MoveOutcome, error) {
	room, seat, err := m.turnSeat(roomCode, token)
	if err != nil {
		return nil, err
	}
	defer room.mu.Unlock()

	result, err := room.match.Move(seat.Color, pieceID, targetID)
	if err != nil {
		return nil, err
	}
	room.save()
	return &MoveOutcome{
		Result: result,
		State:  room.state(),
	}, nil
}

// PlaceBarricade places the carried barricade for the requesting seat's
// color and returns the resulting state.
func (m *Manager) PlaceBarricade(roomCode, token, nodeID string) (*game.State, error) {
	room, seat, err := m.turnSeat(roomCode, token)
	if err != nil {
		return nil, err
	}
	defer room.mu.Unlock()

	if err := room.match.PlaceBarricade(seat.Color, nodeID); err != nil {
		return nil, err
	}
	room.save()
	return room.state(), nil
}

// turnSeat resolves the room and seat for a turn action and leaves the room
// locked on success. The engine applies the pause/turn/phase gates itself.
func (m *Manager) turnSeat(roomCode, token string) (*Room, *Seat, error) {
	room := m.room(roomCode)
	if room == nil {
		return nil, nil, game.Reject(CodeNoRoom, "no such room")
	}
	room.mu.Lock()

	seat := room.seat(token)
	if seat == nil || seat.Color == "" {
		room.mu.Unlock()
		return nil, nil, game.Reject(CodeSpectator, "you have no color in this room")
	}
	if room.match == nil {
		room.mu.Unlock()
		return nil, nil, game.Reject(CodeNoState, "no running match")
	}
	return room, seat, nil
}
