package board

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// The two colors that participate in a match.
const (
	ColorRed  = "red"
	ColorBlue = "blue"
)

// Colors lists the participating colors in a fixed order.
var Colors = []string{ColorRed, ColorBlue}

// Opponent returns the other participating color.
func Opponent(color string) string {
	if color == ColorRed {
		return ColorBlue
	}
	return ColorRed
}

// Node kinds.
const (
	KindBoard = "board"
	KindHouse = "house"
)

// HouseSlots is the number of home reserve slots (and pieces) per color.
const HouseSlots = 5

// Flags carries the optional attributes of a board node.
type Flags struct {
	Run        bool   `json:"run,omitempty"`
	Goal       bool   `json:"goal,omitempty"`
	StartColor string `json:"startColor,omitempty"`
	HouseColor string `json:"houseColor,omitempty"`
	HouseSlot  int    `json:"houseSlot,omitempty"`
}

// Node is a single node of the board description. Coordinates are only
// relevant to clients rendering the board.
type Node struct {
	ID    string  `json:"id"`
	Kind  string  `json:"kind"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Flags Flags   `json:"flags"`
}

// Meta names the special nodes of the board.
type Meta struct {
	Starts map[string]string `json:"starts"`
	Goal   string            `json:"goal"`
}

// Config is the static board description loaded at process start.
type Config struct {
	Nodes []Node      `json:"nodes"`
	Edges [][2]string `json:"edges"`
	Meta  Meta        `json:"meta"`
}

// Graph is the immutable board topology: the node table, a symmetric
// adjacency table over board-kind nodes, and derived lookups for each
// color's start node, house slots, and the goal node.
type Graph struct {
	nodes  map[string]Node
	adj    map[string][]string
	starts map[string]string
	houses map[string][]string
	goal   string
}

// Load reads a board description from a JSON file and builds the graph.
func Load(path string) (*Graph, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read board file: %v", err)
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse board file: %v", err)
	}
	return New(cfg)
}

// New builds a graph from a board description. It fails if the goal node or
// any color's start node is missing, or if an edge touches a non-board node.
func New(cfg Config) (*Graph, error) {
	g := &Graph{
		nodes:  make(map[string]Node, len(cfg.Nodes)),
		adj:    make(map[string][]string),
		starts: make(map[string]string),
		houses: make(map[string][]string),
	}

	for _, n := range cfg.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("board node without an id")
		}
		if _, ok := g.nodes[n.ID]; ok {
			return nil, fmt.Errorf("duplicate board node %q", n.ID)
		}
		g.nodes[n.ID] = n
	}

	adjSets := make(map[string]map[string]bool)
	for _, e := range cfg.Edges {
		a, b := e[0], e[1]
		for _, id := range []string{a, b} {
			n, ok := g.nodes[id]
			if !ok {
				return nil, fmt.Errorf("edge references unknown node %q", id)
			}
			if n.Kind != KindBoard {
				return nil, fmt.Errorf("edge references non-board node %q", id)
			}
		}
		if adjSets[a] == nil {
			adjSets[a] = make(map[string]bool)
		}
		if adjSets[b] == nil {
			adjSets[b] = make(map[string]bool)
		}
		adjSets[a][b] = true
		adjSets[b][a] = true
	}
	// Neighbor lists are sorted so the path search expands nodes in a
	// stable order and the recorded path per destination is deterministic.
	for id, set := range adjSets {
		neighbors := make([]string, 0, len(set))
		for n := range set {
			neighbors = append(neighbors, n)
		}
		sort.Strings(neighbors)
		g.adj[id] = neighbors
	}

	for _, n := range cfg.Nodes {
		if n.Flags.Goal && g.goal == "" {
			g.goal = n.ID
		}
		if n.Flags.StartColor != "" {
			g.starts[n.Flags.StartColor] = n.ID
		}
		if n.Kind == KindHouse && n.Flags.HouseColor != "" {
			g.houses[n.Flags.HouseColor] = append(g.houses[n.Flags.HouseColor], n.ID)
		}
	}
	// board.meta wins over node flags where both are present
	if cfg.Meta.Goal != "" {
		g.goal = cfg.Meta.Goal
	}
	for color, id := range cfg.Meta.Starts {
		g.starts[color] = id
	}

	if g.goal == "" || g.nodes[g.goal].Kind != KindBoard {
		return nil, fmt.Errorf("board has no goal node")
	}
	for _, color := range Colors {
		start, ok := g.starts[color]
		if !ok {
			return nil, fmt.Errorf("board has no start node for color %q", color)
		}
		if n, ok := g.nodes[start]; !ok || n.Kind != KindBoard {
			return nil, fmt.Errorf("start node %q for color %q is not a board node", start, color)
		}
		houses := g.houses[color]
		if len(houses) < HouseSlots {
			return nil, fmt.Errorf("board has %d house slots for color %q, need %d", len(houses), color, HouseSlots)
		}
		sort.Slice(houses, func(i, j int) bool {
			return g.nodes[houses[i]].Flags.HouseSlot < g.nodes[houses[j]].Flags.HouseSlot
		})
		g.houses[color] = houses[:HouseSlots]
	}

	return g, nil
}

// Node returns a node by id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Neighbors returns the adjacent board nodes of a node in ascending id order.
// The returned slice must not be modified.
func (g *Graph) Neighbors(id string) []string {
	return g.adj[id]
}

// Goal returns the id of the goal node.
func (g *Graph) Goal() string {
	return g.goal
}

// Start returns the id of a color's start node.
func (g *Graph) Start(color string) string {
	return g.starts[color]
}

// Houses returns a color's house slot node ids ordered by slot number.
// The returned slice must not be modified.
func (g *Graph) Houses(color string) []string {
	return g.houses[color]
}

// RunNodes returns the ids of the obstacle-spawn-eligible board nodes in
// ascending id order. The goal node is never included.
func (g *Graph) RunNodes() []string {
	var ids []string
	for id, n := range g.nodes {
		if n.Kind == KindBoard && n.Flags.Run && id != g.goal {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
