package domain

// Represents a planned visiting order for the vendor.
// Route starts with OriginID followed by every reachable consumer id exactly
// once. LegCoordinates resolves Route to positions in the same order, for
// rendering a polyline. TotalDistanceKm is the sum of the legs actually taken.
// A RouteResult is an immutable value; every planning run produces a new one.
type RouteResult struct {
	Route           []string
	TotalDistanceKm float64
	LegCoordinates  []Coordinates
}

// Number of consumers visited by the route.
func (r RouteResult) Stops() int {
	if len(r.Route) == 0 {
		return 0
	}
	return len(r.Route) - 1
}

// Aggregate figures shown next to the map.
type RosterSummary struct {
	Consumers       int
	MovingConsumers int
	TotalOrders     int
	TotalValue      float64
	RouteDistanceKm float64
}

// Summarize aggregates a roster and the distance of the route planned for it.
func Summarize(consumers []Consumer, result RouteResult) RosterSummary {
	s := RosterSummary{
		Consumers:       len(consumers),
		RouteDistanceKm: result.TotalDistanceKm,
	}
	for _, c := range consumers {
		if c.IsMoving() {
			s.MovingConsumers++
		}
		s.TotalOrders += c.OrderCount
		s.TotalValue += c.TotalValue
	}
	return s
}
