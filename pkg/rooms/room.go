package rooms

import (
	"math/rand"
	"sync"
	"time"

	"github.com/schmitti92/serverfinal/pkg/board"
	"github.com/schmitti92/serverfinal/pkg/game"
	"github.com/schmitti92/serverfinal/pkg/log"
	"github.com/schmitti92/serverfinal/pkg/workers"
)

// Seat binds a durable session token to a color within a room. The token
// survives disconnects; the connection id changes with every connection.
type Seat struct {
	Token     string
	Name      string
	Color     string
	Host      bool
	Connected bool
	ClientID  string
	LastSeen  time.Time
}

// SeatInfo is the roster view of a seat.
type SeatInfo struct {
	Name      string
	Color     string
	Host      bool
	Connected bool
}

// Roster describes the seats of a room and whether a match can be started.
type Roster struct {
	Players  []SeatInfo
	CanStart bool
}

// Room is one game room. Every state-mutating operation runs under the
// room's mutex; a room never blocks another room.
type Room struct {
	mu    sync.Mutex
	code  string
	seats map[string]*Seat
	match *game.Match

	graph *board.Graph
	dice  *rand.Rand
	saves chan<- workers.SaveSnapshotRequest
}

// seat returns the seat bound to a token, or nil.
func (r *Room) seat(token string) *Seat {
	return r.seats[token]
}

// seatByColor returns the seat holding a color, or nil.
func (r *Room) seatByColor(color string) *Seat {
	for _, s := range r.seats {
		if s.Color == color {
			return s
		}
	}
	return nil
}

func (r *Room) hasHost() bool {
	for _, s := range r.seats {
		if s.Host {
			return true
		}
	}
	return false
}

// connectedColors counts the distinct colors currently connected.
func (r *Room) connectedColors() int {
	count := 0
	for _, color := range board.Colors {
		if s := r.seatByColor(color); s != nil && s.Connected {
			count++
		}
	}
	return count
}

// enforcePause pauses the match whenever fewer than two colors are
// connected. Resuming is always an explicit host action.
func (r *Room) enforcePause() {
	if r.match == nil {
		return
	}
	if r.connectedColors() < 2 && !r.match.Paused() {
		r.match.SetPaused(true)
		log.Info("Room %s paused, %d color(s) connected", r.code, r.connectedColors())
	}
}

// roster builds the seat roster in a stable order: colored seats first in
// color order, then the rest by token.
func (r *Room) roster() Roster {
	players := make([]SeatInfo, 0, len(r.seats))
	for _, color := range board.Colors {
		if s := r.seatByColor(color); s != nil {
			players = append(players, SeatInfo{
				Name:      s.Name,
				Color:     s.Color,
				Host:      s.Host,
				Connected: s.Connected,
			})
		}
	}
	return Roster{
		Players:  players,
		CanStart: r.connectedColors() >= 2,
	}
}

// state returns a copy of the match state, or nil when no match is running.
func (r *Room) state() *game.State {
	if r.match == nil {
		return nil
	}
	return r.match.State()
}

// save hands the current snapshot to the persistence worker without
// blocking; a full queue only costs durability, never progress.
func (r *Room) save() {
	if r.match == nil {
		return
	}
	data, err := r.match.Snapshot()
	if err != nil {
		log.Error("Failed to snapshot room %s: %v", r.code, err)
		return
	}
	select {
	case r.saves <- workers.SaveSnapshotRequest{RoomCode: r.code, Data: data}:
	default:
		log.Warn("Snapshot queue full, dropping save for room %s", r.code)
	}
}

// discardSnapshot asks the persistence worker to delete the stored snapshot.
func (r *Room) discardSnapshot() {
	select {
	case r.saves <- workers.SaveSnapshotRequest{RoomCode: r.code, Delete: true}:
	default:
		log.Warn("Snapshot queue full, dropping delete for room %s", r.code)
	}
}

// connectedClientIDs returns the connection ids of all connected seats.
func (r *Room) connectedClientIDs() []string {
	ids := make([]string, 0, len(r.seats))
	for _, s := range r.seats {
		if s.Connected && s.ClientID != "" {
			ids = append(ids, s.ClientID)
		}
	}
	return ids
}
