package game

import (
	"fmt"
	"math/rand"

	"github.com/schmitti92/serverfinal/pkg/board"
)

// Match is the turn/phase state machine for a single running game. It owns
// all mutation of piece and barricade state. Match is not safe for
// concurrent use; callers serialize access per room.
type Match struct {
	graph *board.Graph
	dice  *rand.Rand
	state *State
}

// NewMatchOptions contains options for creating a new Match.
type NewMatchOptions struct {
	Graph *board.Graph
	// Dice is the random source for rolls and the starting color.
	Dice *rand.Rand
}

// NewMatch sets up a fresh match: five pieces per color in the home reserve,
// a barricade on every run-flagged node, and a uniformly random starting
// color awaiting its first roll.
func NewMatch(opts NewMatchOptions) *Match {
	pieces := make([]*Piece, 0, 2*board.HouseSlots)
	for _, color := range board.Colors {
		houses := opts.Graph.Houses(color)
		for i := 0; i < board.HouseSlots; i++ {
			pieces = append(pieces, &Piece{
				ID:      fmt.Sprintf("p_%s_%d", color, i+1),
				Label:   i + 1,
				Color:   color,
				Pos:     PosHouse,
				HouseID: houses[i],
			})
		}
	}

	turnColor := board.Colors[opts.Dice.Intn(len(board.Colors))]

	return &Match{
		graph: opts.Graph,
		dice:  opts.Dice,
		state: &State{
			TurnColor:  turnColor,
			Phase:      PhaseAwaitRoll,
			Pieces:     pieces,
			Barricades: opts.Graph.RunNodes(),
			Carrying:   map[string]bool{board.ColorRed: false, board.ColorBlue: false},
			Goal:       opts.Graph.Goal(),
		},
	}
}

// RestoreMatch rebuilds a match from a persisted snapshot.
func RestoreMatch(opts NewMatchOptions, data []byte) (*Match, error) {
	state, err := RestoreState(opts.Graph, data)
	if err != nil {
		return nil, err
	}
	return &Match{graph: opts.Graph, dice: opts.Dice, state: state}, nil
}

// State returns a deep copy of the current match state.
func (m *Match) State() *State {
	return m.state.Clone()
}

// Snapshot serializes the current match state.
func (m *Match) Snapshot() ([]byte, error) {
	return m.state.Snapshot()
}

// Paused reports whether the match is paused.
func (m *Match) Paused() bool {
	return m.state.Paused
}

// SetPaused flips the pause flag. Paused matches reject every turn action.
func (m *Match) SetPaused(paused bool) {
	m.state.Paused = paused
}

// Winner returns the winning color, or "" while the match is running.
func (m *Match) Winner() string {
	return m.state.Winner
}

// RollResult describes the outcome of a roll.
type RollResult struct {
	Value int
	// Forfeited is set when the rolled value leaves the color without a
	// single legal move; the turn has already passed in that case.
	Forfeited bool
}

// Roll produces the turn color's dice value and advances to the move phase.
// A roll that permits no move at all forfeits the turn.
func (m *Match) Roll(color string) (*RollResult, error) {
	if err := m.gate(color, PhaseAwaitRoll); err != nil {
		return nil, err
	}

	value := m.dice.Intn(6) + 1
	m.state.Roll = value
	m.state.LastRollSix = value == 6
	m.state.Phase = PhaseAwaitMove

	result := &RollResult{Value: value}
	if len(m.AllLegalMoves(color)) == 0 {
		m.advanceTurn()
		result.Forfeited = true
	}
	return result, nil
}

// MoveResult describes an applied move.
type MoveResult struct {
	PieceID string
	// Path is the concrete node sequence the piece travelled, ending at
	// the destination.
	Path []string
	// PickedBarricade is set when the destination bore a barricade; the
	// mover must place it before the turn can close.
	PickedBarricade bool
	// Captured lists opposing piece ids sent back to their home reserve.
	Captured []string
	// Winner is set when the move completed the mover's fifth goal entry.
	Winner string
}

// Move relocates a piece of the turn color to a destination validated
// against the path legality rules for the pending roll.
func (m *Match) Move(color, pieceID, targetID string) (*MoveResult, error) {
	if err := m.gate(color, PhaseAwaitMove); err != nil {
		return nil, err
	}

	piece := m.piece(pieceID)
	if piece == nil || piece.Color != color || piece.Pos == PosGoal {
		return nil, Reject(CodeBadPiece, "no such movable piece")
	}

	targets := m.legalTargets(piece)
	path, ok := targets[targetID]
	if !ok {
		return nil, Reject(CodeIllegal, "target is not reachable with this roll")
	}

	result := &MoveResult{PieceID: piece.ID, Path: path}

	// capture: opposing occupant returns to its lowest free house slot
	for _, other := range m.state.Pieces {
		if other.Color == color || other.Pos != PosBoard || other.NodeID != targetID {
			continue
		}
		other.Pos = PosHouse
		other.NodeID = ""
		other.HouseID = m.freeHouseSlot(other.Color)
		result.Captured = append(result.Captured, other.ID)
	}

	piece.HouseID = ""
	if targetID == m.graph.Goal() {
		piece.Pos = PosGoal
		piece.NodeID = ""
		if m.goalCount(color) == board.HouseSlots {
			m.state.Winner = color
		}
	} else {
		piece.Pos = PosBoard
		piece.NodeID = targetID
	}

	if idx := indexOf(m.state.Barricades, targetID); idx >= 0 {
		m.state.Barricades = append(m.state.Barricades[:idx], m.state.Barricades[idx+1:]...)
		m.state.Carrying[color] = true
		m.state.Phase = PhaseAwaitBarricade
		// the roll is retained so the bonus-turn rule still applies
		// after the barricade is placed
		result.PickedBarricade = true
	} else {
		m.advanceTurn()
	}

	result.Winner = m.state.Winner
	return result, nil
}

// PlaceBarricade puts the carried barricade on a free board node and closes
// the turn.
func (m *Match) PlaceBarricade(color, nodeID string) error {
	if err := m.gate(color, PhaseAwaitBarricade); err != nil {
		return err
	}
	if !m.state.Carrying[color] {
		return Reject(CodeBadPhase, "no barricade to place")
	}

	n, ok := m.graph.Node(nodeID)
	if !ok || n.Kind != board.KindBoard {
		return Reject(CodeBadNode, "not a board node")
	}
	if nodeID == m.graph.Goal() || n.Flags.StartColor != "" {
		return Reject(CodeBadNode, "barricades are not allowed here")
	}
	if indexOf(m.state.Barricades, nodeID) >= 0 {
		return Reject(CodeBadNode, "node already bears a barricade")
	}
	if m.occupiedAny()[nodeID] {
		return Reject(CodeBadNode, "node is occupied")
	}

	m.state.Barricades = append(m.state.Barricades, nodeID)
	m.state.Carrying[color] = false
	m.advanceTurn()
	return nil
}

// LegalMoves returns the legal destinations for one piece of the turn color
// with the pending roll, each with its concrete path.
func (m *Match) LegalMoves(color, pieceID string) (map[string][]string, error) {
	if err := m.gate(color, PhaseAwaitMove); err != nil {
		return nil, err
	}
	piece := m.piece(pieceID)
	if piece == nil || piece.Color != color || piece.Pos == PosGoal {
		return nil, Reject(CodeBadPiece, "no such movable piece")
	}
	return m.legalTargets(piece), nil
}

// AllLegalMoves returns the legal destinations per piece id for every piece
// of a color, omitting pieces with no legal destination.
func (m *Match) AllLegalMoves(color string) map[string]map[string][]string {
	moves := make(map[string]map[string][]string)
	for _, piece := range m.state.Pieces {
		if piece.Color != color || piece.Pos == PosGoal {
			continue
		}
		targets := m.legalTargets(piece)
		if len(targets) > 0 {
			moves[piece.ID] = targets
		}
	}
	return moves
}

// gate applies the common preconditions of every turn action.
func (m *Match) gate(color string, phase Phase) error {
	if m.state.Winner != "" {
		return Reject(CodeBadPhase, "match is over")
	}
	if m.state.Paused {
		return Reject(CodePaused, "match is paused")
	}
	if color != m.state.TurnColor {
		return Reject(CodeNotYourTurn, "it is "+m.state.TurnColor+"'s turn")
	}
	if m.state.Phase != phase {
		return Reject(CodeBadPhase, "action not valid in phase "+string(m.state.Phase))
	}
	return nil
}

// advanceTurn closes the turn: the roll is cleared and the turn passes to
// the other color unless a six grants a bonus turn.
func (m *Match) advanceTurn() {
	if !m.state.LastRollSix {
		m.state.TurnColor = board.Opponent(m.state.TurnColor)
	}
	m.state.Roll = 0
	m.state.Phase = PhaseAwaitRoll
}

func (m *Match) legalTargets(piece *Piece) map[string][]string {
	opts := board.StepOptions{
		Barricades: m.barricadeSet(),
		Occupied:   m.occupiedByColor(piece.Color, piece.ID),
	}
	if piece.Pos == PosHouse {
		return m.graph.ExitTargets(piece.Color, m.state.Roll, opts)
	}
	return m.graph.Targets(piece.NodeID, m.state.Roll, opts)
}

func (m *Match) piece(id string) *Piece {
	for _, p := range m.state.Pieces {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (m *Match) goalCount(color string) int {
	count := 0
	for _, p := range m.state.Pieces {
		if p.Color == color && p.Pos == PosGoal {
			count++
		}
	}
	return count
}

// freeHouseSlot returns the lowest-numbered unoccupied house slot of a color.
func (m *Match) freeHouseSlot(color string) string {
	occupied := make(map[string]bool)
	for _, p := range m.state.Pieces {
		if p.Color == color && p.Pos == PosHouse && p.HouseID != "" {
			occupied[p.HouseID] = true
		}
	}
	for _, slot := range m.graph.Houses(color) {
		if !occupied[slot] {
			return slot
		}
	}
	// unreachable while the 5-pieces-per-color invariant holds
	return m.graph.Houses(color)[0]
}

func (m *Match) occupiedByColor(color, excludePieceID string) map[string]bool {
	occupied := make(map[string]bool)
	for _, p := range m.state.Pieces {
		if p.Color != color || p.ID == excludePieceID || p.Pos != PosBoard {
			continue
		}
		occupied[p.NodeID] = true
	}
	return occupied
}

func (m *Match) occupiedAny() map[string]bool {
	occupied := make(map[string]bool)
	for _, p := range m.state.Pieces {
		if p.Pos == PosBoard {
			occupied[p.NodeID] = true
		}
	}
	return occupied
}

func (m *Match) barricadeSet() map[string]bool {
	set := make(map[string]bool, len(m.state.Barricades))
	for _, id := range m.state.Barricades {
		set[id] = true
	}
	return set
}

func indexOf(list []string, item string) int {
	for i, v := range list {
		if v == item {
			return i
		}
	}
	return -1
}
