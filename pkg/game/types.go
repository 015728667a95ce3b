package game

import (
	"encoding/json"
	"fmt"

	"github.com/schmitti92/serverfinal/pkg/board"
)

// Phase is the current step of the turn state machine.
type Phase string

const (
	PhaseAwaitRoll      Phase = "awaiting_roll"
	PhaseAwaitMove      Phase = "awaiting_move"
	PhaseAwaitBarricade Phase = "awaiting_barricade"
)

// PositionKind describes where a piece currently is.
type PositionKind string

const (
	// PosHouse is the home reserve.
	PosHouse PositionKind = "house"
	// PosBoard is a board node.
	PosBoard PositionKind = "board"
	// PosGoal is the off-board area for pieces that reached the goal.
	PosGoal PositionKind = "goal"
)

// Piece is one of the five tokens a color moves across the board.
type Piece struct {
	ID    string       `json:"id"`
	Label int          `json:"label"`
	Color string       `json:"color"`
	Pos   PositionKind `json:"posKind"`
	// HouseID is set while Pos is PosHouse, NodeID while Pos is PosBoard.
	HouseID string `json:"houseId,omitempty"`
	NodeID  string `json:"nodeId,omitempty"`
}

// State is the full serializable match state. Carrying and LastRollSix are
// part of the state rather than side tables so a restored snapshot is
// complete.
type State struct {
	TurnColor   string          `json:"turnColor"`
	Phase       Phase           `json:"phase"`
	Roll        int             `json:"rolled,omitempty"` // 0 while no roll is pending
	Pieces      []*Piece        `json:"pieces"`
	Barricades  []string        `json:"barricades"`
	Carrying    map[string]bool `json:"carrying"`
	LastRollSix bool            `json:"lastRollSix"`
	Paused      bool            `json:"paused"`
	Winner      string          `json:"winner,omitempty"`
	Goal        string          `json:"goal"`
}

// Clone returns a deep copy of the state, safe to serialize outside the
// room's critical section.
func (s *State) Clone() *State {
	c := *s
	c.Pieces = make([]*Piece, len(s.Pieces))
	for i, p := range s.Pieces {
		piece := *p
		c.Pieces[i] = &piece
	}
	c.Barricades = append([]string(nil), s.Barricades...)
	c.Carrying = make(map[string]bool, len(s.Carrying))
	for color, carrying := range s.Carrying {
		c.Carrying[color] = carrying
	}
	return &c
}

// Validate checks the structural invariants of a state, typically after
// restoring a snapshot.
func (s *State) Validate(g *board.Graph) error {
	switch s.Phase {
	case PhaseAwaitRoll:
		if s.Roll != 0 {
			return fmt.Errorf("phase %s carries a roll value", s.Phase)
		}
	case PhaseAwaitMove, PhaseAwaitBarricade:
		if s.Roll < 1 || s.Roll > 6 {
			return fmt.Errorf("phase %s carries roll %d", s.Phase, s.Roll)
		}
	default:
		return fmt.Errorf("unknown phase %q", s.Phase)
	}

	counts := make(map[string]int)
	seen := make(map[string]bool)
	for _, p := range s.Pieces {
		if seen[p.ID] {
			return fmt.Errorf("duplicate piece id %q", p.ID)
		}
		seen[p.ID] = true
		counts[p.Color]++
	}
	for _, color := range board.Colors {
		if counts[color] != board.HouseSlots {
			return fmt.Errorf("color %q has %d pieces, want %d", color, counts[color], board.HouseSlots)
		}
	}

	for _, id := range s.Barricades {
		if id == g.Goal() {
			return fmt.Errorf("barricade on the goal node")
		}
		if n, ok := g.Node(id); !ok || n.Kind != board.KindBoard {
			return fmt.Errorf("barricade on non-board node %q", id)
		}
	}

	return nil
}

// Snapshot serializes the state for persistence.
func (s *State) Snapshot() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %v", err)
	}
	return b, nil
}

// RestoreState deserializes a persisted snapshot and validates it against
// the board.
func RestoreState(g *board.Graph, data []byte) (*State, error) {
	s := &State{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %v", err)
	}
	if s.Carrying == nil {
		s.Carrying = make(map[string]bool)
	}
	if s.Barricades == nil {
		s.Barricades = []string{}
	}
	if err := s.Validate(g); err != nil {
		return nil, fmt.Errorf("invalid state snapshot: %v", err)
	}
	return s, nil
}
