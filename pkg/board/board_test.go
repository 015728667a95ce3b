package board

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig builds a small two-sided board:
//
//	SR - A1 - A2 - A3 - G
//	      |    |       |
//	SB - B1 - B2 - B3 -+
//
// A3 and B3 are run nodes, SR/SB the start nodes, G the goal. Each color
// has five house slots.
func testConfig() Config {
	nodes := []Node{
		{ID: "G", Kind: KindBoard, Flags: Flags{Goal: true}},
		{ID: "SR", Kind: KindBoard, Flags: Flags{StartColor: ColorRed}},
		{ID: "SB", Kind: KindBoard, Flags: Flags{StartColor: ColorBlue}},
		{ID: "A1", Kind: KindBoard},
		{ID: "A2", Kind: KindBoard},
		{ID: "A3", Kind: KindBoard, Flags: Flags{Run: true}},
		{ID: "B1", Kind: KindBoard},
		{ID: "B2", Kind: KindBoard},
		{ID: "B3", Kind: KindBoard, Flags: Flags{Run: true}},
	}
	for _, color := range Colors {
		for slot := 1; slot <= HouseSlots; slot++ {
			nodes = append(nodes, Node{
				ID:    "H_" + color + "_" + string(rune('0'+slot)),
				Kind:  KindHouse,
				Flags: Flags{HouseColor: color, HouseSlot: slot},
			})
		}
	}
	return Config{
		Nodes: nodes,
		Edges: [][2]string{
			{"SR", "A1"}, {"A1", "A2"}, {"A2", "A3"}, {"A3", "G"},
			{"SB", "B1"}, {"B1", "B2"}, {"B2", "B3"}, {"B3", "G"},
			{"A1", "B1"}, {"A2", "B2"},
		},
		Meta: Meta{
			Starts: map[string]string{ColorRed: "SR", ColorBlue: "SB"},
			Goal:   "G",
		},
	}
}

func testGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := New(testConfig())
	require.NoError(t, err)
	return g
}

func TestNew(t *testing.T) {
	g := testGraph(t)

	assert.Equal(t, "G", g.Goal())
	assert.Equal(t, "SR", g.Start(ColorRed))
	assert.Equal(t, "SB", g.Start(ColorBlue))
	assert.Equal(t, []string{"A3", "B3"}, g.RunNodes())

	assert.Equal(t, []string{"H_red_1", "H_red_2", "H_red_3", "H_red_4", "H_red_5"}, g.Houses(ColorRed))
	assert.Len(t, g.Houses(ColorBlue), HouseSlots)

	// neighbor lists are sorted and adjacency is symmetric
	assert.Equal(t, []string{"A2", "B1", "SR"}, g.Neighbors("A1"))
	for _, id := range []string{"G", "SR", "SB", "A1", "A2", "A3", "B1", "B2", "B3"} {
		for _, neighbor := range g.Neighbors(id) {
			assert.Contains(t, g.Neighbors(neighbor), id, "edge %s-%s is not symmetric", id, neighbor)
		}
	}

	_, ok := g.Node("A1")
	assert.True(t, ok)
	_, ok = g.Node("nope")
	assert.False(t, ok)
}

func TestNewInvalidConfigs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{
			name: "missing goal",
			mutate: func(cfg *Config) {
				cfg.Meta.Goal = ""
				for i := range cfg.Nodes {
					cfg.Nodes[i].Flags.Goal = false
				}
			},
		},
		{
			name: "missing start",
			mutate: func(cfg *Config) {
				delete(cfg.Meta.Starts, ColorBlue)
				for i := range cfg.Nodes {
					if cfg.Nodes[i].Flags.StartColor == ColorBlue {
						cfg.Nodes[i].Flags.StartColor = ""
					}
				}
			},
		},
		{
			name: "edge to house node",
			mutate: func(cfg *Config) {
				cfg.Edges = append(cfg.Edges, [2]string{"A1", "H_red_1"})
			},
		},
		{
			name: "edge to unknown node",
			mutate: func(cfg *Config) {
				cfg.Edges = append(cfg.Edges, [2]string{"A1", "Z9"})
			},
		},
		{
			name: "duplicate node id",
			mutate: func(cfg *Config) {
				cfg.Nodes = append(cfg.Nodes, Node{ID: "A1", Kind: KindBoard})
			},
		},
		{
			name: "too few house slots",
			mutate: func(cfg *Config) {
				kept := cfg.Nodes[:0]
				for _, n := range cfg.Nodes {
					if n.Flags.HouseColor == ColorRed && n.Flags.HouseSlot == 5 {
						continue
					}
					kept = append(kept, n)
				}
				cfg.Nodes = kept
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			_, err := New(cfg)
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	cfg := testConfig()
	b, err := json.Marshal(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, os.WriteFile(path, b, 0o644))

	g, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "G", g.Goal())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
