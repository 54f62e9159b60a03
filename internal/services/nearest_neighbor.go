package services

import (
	"math"

	"nearby-route-service/internal/graph"
)

// Plan a visiting order using a greedy nearest-neighbor heuristic.
//
// From the current node the planner asks the shortest-path solver for the
// distance to every unvisited destination and steps to the closest one. It
// does not look ahead and gives no optimality guarantee.
//
// The solver is invoked per candidate instead of reading the direct edge, so
// the planner stays correct on sparse graphs. Destinations with no finite
// path from the current node are skipped and left out of the route.
func PlanTour(g graph.Graph, originID string, destinations []string) ([]string, float64) {
	route := []string{originID}
	total := 0.0

	visited := make(map[string]struct{}, len(destinations))
	current := originID

	for len(visited) < len(destinations) {
		best := ""
		bestDistance := math.Inf(1)

		// Candidates are scanned in roster order; the first of equal
		// distances wins.
		for _, d := range destinations {
			if _, ok := visited[d]; ok {
				continue
			}
			p := graph.ShortestPath(g, current, d)
			if !p.Reachable() {
				continue
			}
			if p.Distance < bestDistance {
				bestDistance = p.Distance
				best = d
			}
		}

		if best == "" {
			break
		}

		route = append(route, best)
		total += bestDistance
		visited[best] = struct{}{}
		current = best
	}

	return route, total
}
