package graph

import "math"

// Path is a shortest path between two nodes.
// An unreachable target is reported as empty Nodes and an infinite Distance.
type Path struct {
	Nodes    []string
	Distance float64
}

func (p Path) Reachable() bool {
	return len(p.Nodes) > 0 && !math.IsInf(p.Distance, 1)
}

func unreachable() Path {
	return Path{Nodes: []string{}, Distance: math.Inf(1)}
}

// ShortestPath runs Dijkstra from source to target on any graph with
// non-negative weights. The unvisited node with the smallest tentative
// distance is found by a linear scan, giving O(V²) per call, which suits the
// handful of nodes a vendor plans over.
//
// Ties are broken by the lowest node id: nodes are scanned in ascending
// order and only a strictly smaller distance replaces the current pick.
func ShortestPath(g Graph, source, target string) Path {
	if !g.HasNode(source) || !g.HasNode(target) {
		return unreachable()
	}

	nodes := g.Nodes()
	dist := make(map[string]float64, len(nodes))
	prev := make(map[string]string, len(nodes))
	unvisited := make(map[string]struct{}, len(nodes))

	for _, n := range nodes {
		dist[n] = math.Inf(1)
		unvisited[n] = struct{}{}
	}
	dist[source] = 0

	for len(unvisited) > 0 {
		current := ""
		best := math.Inf(1)
		for _, n := range nodes {
			if _, ok := unvisited[n]; !ok {
				continue
			}
			if dist[n] < best {
				best = dist[n]
				current = n
			}
		}

		// Remaining nodes are disconnected from the source.
		if current == "" {
			break
		}

		delete(unvisited, current)
		if current == target {
			break
		}

		for neighbor, w := range g[current] {
			if _, ok := unvisited[neighbor]; !ok {
				continue
			}
			alt := dist[current] + w
			if alt < dist[neighbor] {
				dist[neighbor] = alt
				prev[neighbor] = current
			}
		}
	}

	if math.IsInf(dist[target], 1) {
		return unreachable()
	}

	path := []string{target}
	for at := target; at != source; {
		p, ok := prev[at]
		if !ok {
			return unreachable()
		}
		path = append(path, p)
		at = p
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return Path{Nodes: path, Distance: dist[target]}
}
