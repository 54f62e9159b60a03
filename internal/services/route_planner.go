package services

import (
	"nearby-route-service/internal/domain"
	"nearby-route-service/internal/geo"
	"nearby-route-service/internal/graph"
)

// Planner produces a RouteResult for one snapshot of origin and consumers.
// PlanRoute is the default; an exact solver can be swapped in behind the
// same signature.
type Planner func(origin domain.Coordinates, consumers []domain.Consumer) domain.RouteResult

// Plan a route from the vendor over a snapshot of consumers.
//
// The graph is rebuilt from the snapshot on every call, so repeated calls on
// an unchanged snapshot return identical results. An empty roster is a valid
// input and yields a route holding only the origin.
func PlanRoute(origin domain.Coordinates, consumers []domain.Consumer) domain.RouteResult {
	return planRouteWith(origin, consumers, geo.Distance)
}

func planRouteWith(origin domain.Coordinates, consumers []domain.Consumer, dist geo.DistanceFunc) domain.RouteResult {
	// First occurrence of a repeated id wins, for the graph and the legs alike.
	unique := make([]domain.Consumer, 0, len(consumers))
	ids := make([]string, 0, len(consumers))
	positions := make(map[string]domain.Coordinates, len(consumers)+1)
	positions[domain.OriginID] = origin
	for _, c := range consumers {
		if _, dup := positions[c.ID]; dup {
			continue
		}
		unique = append(unique, c)
		ids = append(ids, c.ID)
		positions[c.ID] = c.Coords
	}

	g := graph.Build(origin, unique, dist)

	route, total := PlanTour(g, domain.OriginID, ids)

	legs := make([]domain.Coordinates, 0, len(route))
	for _, id := range route {
		legs = append(legs, positions[id])
	}

	return domain.RouteResult{
		Route:           route,
		TotalDistanceKm: total,
		LegCoordinates:  legs,
	}
}
