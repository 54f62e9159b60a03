// Package graph builds weighted location graphs and finds shortest paths on them.
package graph

import (
	"errors"
	"fmt"
	"slices"

	"nearby-route-service/internal/domain"
	"nearby-route-service/internal/geo"
)

var ErrNegativeWeight = errors.New("graph: negative edge weight")

// Graph maps a node id to its neighbors and the non-negative edge weight to
// each of them. Every node has an entry, even without edges.
// A Graph is treated as immutable once built.
type Graph map[string]map[string]float64

// Build returns the complete graph over the origin and every consumer,
// weighting each unordered pair with dist (haversine when nil).
// Both directions of a pair share one computed weight, so the result is
// symmetric by construction.
func Build(origin domain.Coordinates, consumers []domain.Consumer, dist geo.DistanceFunc) Graph {
	if dist == nil {
		dist = geo.Distance
	}

	ids := make([]string, 0, len(consumers)+1)
	coords := make([]domain.Coordinates, 0, len(consumers)+1)

	ids = append(ids, domain.OriginID)
	coords = append(coords, origin)
	for _, c := range consumers {
		ids = append(ids, c.ID)
		coords = append(coords, c.Coords)
	}

	g := make(Graph, len(ids))
	for _, id := range ids {
		if _, ok := g[id]; !ok {
			g[id] = make(map[string]float64, len(ids)-1)
		}
	}

	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[i] == ids[j] {
				continue
			}
			w := dist(coords[i], coords[j])
			g[ids[i]][ids[j]] = w
			g[ids[j]][ids[i]] = w
		}
	}

	return g
}

// Nodes returns node ids in ascending order.
func (g Graph) Nodes() []string {
	nodes := make([]string, 0, len(g))
	for id := range g {
		nodes = append(nodes, id)
	}
	slices.Sort(nodes)
	return nodes
}

func (g Graph) HasNode(id string) bool {
	_, ok := g[id]
	return ok
}

// Weight returns the edge weight between a and b.
// A node is at distance 0 from itself.
func (g Graph) Weight(a, b string) (float64, bool) {
	neighbors, ok := g[a]
	if !ok {
		return 0, false
	}
	if a == b {
		return 0, true
	}
	w, ok := neighbors[b]
	return w, ok
}

// Connect adds an undirected edge, creating missing nodes.
// Intended for assembling sparse graphs by hand.
func (g Graph) Connect(a, b string, w float64) {
	if g[a] == nil {
		g[a] = map[string]float64{}
	}
	if g[b] == nil {
		g[b] = map[string]float64{}
	}
	g[a][b] = w
	g[b][a] = w
}

// AddNode inserts an isolated node.
func (g Graph) AddNode(id string) {
	if g[id] == nil {
		g[id] = map[string]float64{}
	}
}

// Validate reports the first negative weight found.
func (g Graph) Validate() error {
	for _, from := range g.Nodes() {
		for to, w := range g[from] {
			if w < 0 {
				return fmt.Errorf("%w: %s->%s weight=%v", ErrNegativeWeight, from, to, w)
			}
		}
	}
	return nil
}
