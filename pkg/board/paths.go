package board

// StepOptions constrains a path search.
type StepOptions struct {
	// Barricades holds nodes a path may land on but never pass through.
	Barricades map[string]bool
	// Occupied holds nodes the mover may not end on (its own pieces).
	Occupied map[string]bool
}

// Targets returns every node reachable from origin in exactly steps hops,
// mapped to one concrete simple path [origin, ..., destination]. A path never
// steps back to the node it just came from, never visits a node twice, and
// only ends (never passes through) a barricade node. Destinations occupied by
// the mover's own color are excluded.
//
// Neighbors are expanded in ascending node id order and the first path found
// to a destination is kept, so the result is deterministic for a given board.
func (g *Graph) Targets(origin string, steps int, opts StepOptions) map[string][]string {
	targets := make(map[string][]string)
	if steps < 1 {
		return targets
	}

	visited := map[string]bool{origin: true}
	path := []string{origin}

	var walk func(node string, depth int, prev string)
	walk = func(node string, depth int, prev string) {
		for _, next := range g.adj[node] {
			if next == prev {
				continue
			}
			if visited[next] {
				continue
			}
			if opts.Barricades[next] && depth+1 < steps {
				continue
			}
			if depth+1 == steps {
				if opts.Occupied[next] {
					continue
				}
				if _, ok := targets[next]; !ok {
					dest := make([]string, len(path)+1)
					copy(dest, path)
					dest[len(path)] = next
					targets[next] = dest
				}
				continue
			}
			visited[next] = true
			path = append(path, next)
			walk(next, depth+1, node)
			path = path[:len(path)-1]
			visited[next] = false
		}
	}
	walk(origin, 0, "")

	return targets
}

// ExitTargets returns the legal destinations for a piece leaving the home
// reserve with the given roll. The first step consumes the move to the
// color's start node; a roll of 1 makes the start node the unique
// destination, a larger roll continues the search from the start node with
// the remaining steps.
func (g *Graph) ExitTargets(color string, roll int, opts StepOptions) map[string][]string {
	targets := make(map[string][]string)
	start, ok := g.starts[color]
	if !ok || roll < 1 {
		return targets
	}
	if roll == 1 {
		if !opts.Occupied[start] {
			targets[start] = []string{start}
		}
		return targets
	}
	return g.Targets(start, roll-1, opts)
}
