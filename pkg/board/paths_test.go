package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetsPathShape(t *testing.T) {
	g := testGraph(t)

	for steps := 1; steps <= 6; steps++ {
		for _, origin := range []string{"SR", "A1", "A2", "B2"} {
			targets := g.Targets(origin, steps, StepOptions{})
			for dest, path := range targets {
				require.Len(t, path, steps+1, "path to %s from %s with %d steps", dest, origin, steps)
				assert.Equal(t, origin, path[0])
				assert.Equal(t, dest, path[len(path)-1])

				seen := make(map[string]bool)
				for i, node := range path {
					assert.False(t, seen[node], "path %v revisits %s", path, node)
					seen[node] = true
					if i > 0 {
						assert.Contains(t, g.Neighbors(path[i-1]), node, "path %v uses a non-edge", path)
					}
				}
			}
		}
	}
}

func TestTargetsNoImmediateBacktrack(t *testing.T) {
	g := testGraph(t)

	// from A1 the only two-step walks go forward; stepping back through
	// SR dead-ends because returning to A1 is forbidden
	targets := g.Targets("A1", 2, StepOptions{})
	assert.NotContains(t, targets, "A1")
	for _, path := range targets {
		assert.NotEqual(t, []string{"A1", "SR", "A1"}, path)
	}
}

func TestTargetsBarricadeLandingOnly(t *testing.T) {
	g := testGraph(t)
	opts := StepOptions{Barricades: map[string]bool{"A3": true}}

	// three steps away: landing exactly on the barricade is legal
	targets := g.Targets("SR", 3, opts)
	assert.Contains(t, targets, "A3")

	// four steps away: every path would have to pass through A3 to reach
	// the goal, so the goal is unreachable
	targets = g.Targets("SR", 4, opts)
	assert.NotContains(t, targets, "G")
	for _, path := range targets {
		for i, node := range path {
			if node == "A3" {
				assert.Equal(t, len(path)-1, i, "path %v passes through the barricade", path)
			}
		}
	}
}

func TestTargetsOwnOccupancyExcluded(t *testing.T) {
	g := testGraph(t)

	unblocked := g.Targets("SR", 3, StepOptions{})
	require.Contains(t, unblocked, "A3")
	require.Contains(t, unblocked, "B2")

	blocked := g.Targets("SR", 3, StepOptions{
		Occupied: map[string]bool{"A3": true, "B2": true},
	})
	assert.NotContains(t, blocked, "A3")
	assert.NotContains(t, blocked, "B2")
	// occupied nodes still allow pass-through
	assert.Contains(t, blocked, "SB")
}

func TestTargetsDeterministic(t *testing.T) {
	g := testGraph(t)

	// B2 is reachable from SR in three steps both via A2 and via B1; the
	// kept path expands neighbors in ascending id order
	targets := g.Targets("SR", 3, StepOptions{})
	assert.Equal(t, []string{"SR", "A1", "A2", "B2"}, targets["B2"])

	again := g.Targets("SR", 3, StepOptions{})
	assert.Equal(t, targets, again)
}

func TestTargetsZeroSteps(t *testing.T) {
	g := testGraph(t)
	assert.Empty(t, g.Targets("SR", 0, StepOptions{}))
}

func TestExitTargets(t *testing.T) {
	g := testGraph(t)

	// a roll of 1 leaves the house onto the start node
	targets := g.ExitTargets(ColorRed, 1, StepOptions{})
	require.Len(t, targets, 1)
	assert.Equal(t, []string{"SR"}, targets["SR"])

	// unless the start node is held by the mover's own color
	targets = g.ExitTargets(ColorRed, 1, StepOptions{Occupied: map[string]bool{"SR": true}})
	assert.Empty(t, targets)

	// larger rolls continue from the start node with the remainder
	targets = g.ExitTargets(ColorRed, 4, StepOptions{})
	assert.Equal(t, g.Targets("SR", 3, StepOptions{}), targets)
}
