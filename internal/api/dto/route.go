package dto

import (
	"time"

	"nearby-route-service/internal/domain"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinates) ToDomain() domain.Coordinates {
	return domain.Coordinates{Lat: c.Lat, Lon: c.Lon}
}

func FromCoordinates(c domain.Coordinates) Coordinates {
	return Coordinates{Lat: c.Lat, Lon: c.Lon}
}

type Movement struct {
	Speed     float64 `json:"speed"`
	PhaseSeed float64 `json:"phase_seed"`
}

type Consumer struct {
	ID         string      `json:"id"`
	Name       string      `json:"name,omitempty"`
	Address    string      `json:"address,omitempty"`
	Phone      string      `json:"phone,omitempty"`
	OrderCount int         `json:"order_count"`
	TotalValue float64     `json:"total_value"`
	Location   Coordinates `json:"location"`
	Movement   *Movement   `json:"movement,omitempty"`
	DistanceKm float64     `json:"distance_km"`
}

func (c Consumer) ToDomain() domain.Consumer {
	out := domain.Consumer{
		ID:         c.ID,
		Name:       c.Name,
		Address:    c.Address,
		Phone:      c.Phone,
		OrderCount: c.OrderCount,
		TotalValue: c.TotalValue,
		Coords:     c.Location.ToDomain(),
	}
	if c.Movement != nil {
		out.Movement = &domain.Movement{Speed: c.Movement.Speed, PhaseSeed: c.Movement.PhaseSeed}
	}
	return out
}

func FromConsumer(c domain.Consumer) Consumer {
	out := Consumer{
		ID:         c.ID,
		Name:       c.Name,
		Address:    c.Address,
		Phone:      c.Phone,
		OrderCount: c.OrderCount,
		TotalValue: c.TotalValue,
		Location:   FromCoordinates(c.Coords),
		DistanceKm: c.DistanceKm,
	}
	if c.Movement != nil {
		out.Movement = &Movement{Speed: c.Movement.Speed, PhaseSeed: c.Movement.PhaseSeed}
	}
	return out
}

func FromConsumers(in []domain.Consumer) []Consumer {
	out := make([]Consumer, 0, len(in))
	for _, c := range in {
		out = append(out, FromConsumer(c))
	}
	return out
}

type PlanRouteRequest struct {
	Origin    *Coordinates `json:"origin"`
	Consumers []Consumer   `json:"consumers"`
}

type Summary struct {
	Consumers       int     `json:"consumers"`
	MovingConsumers int     `json:"moving_consumers"`
	TotalOrders     int     `json:"total_orders"`
	TotalValue      float64 `json:"total_value"`
	RouteDistanceKm float64 `json:"route_distance_km"`
}

func FromSummary(s domain.RosterSummary) Summary {
	return Summary{
		Consumers:       s.Consumers,
		MovingConsumers: s.MovingConsumers,
		TotalOrders:     s.TotalOrders,
		TotalValue:      s.TotalValue,
		RouteDistanceKm: s.RouteDistanceKm,
	}
}

type RouteResponse struct {
	Route           []string      `json:"route"`
	TotalDistanceKm float64       `json:"total_distance_km"`
	LegCoordinates  []Coordinates `json:"leg_coordinates"`
	Unreachable     int           `json:"unreachable"`
}

// FromRouteResult converts a result; consumers is the roster size it was
// planned over, used to report skipped destinations.
func FromRouteResult(r domain.RouteResult, consumers int) RouteResponse {
	legs := make([]Coordinates, 0, len(r.LegCoordinates))
	for _, c := range r.LegCoordinates {
		legs = append(legs, FromCoordinates(c))
	}
	route := r.Route
	if route == nil {
		route = []string{}
	}
	return RouteResponse{
		Route:           route,
		TotalDistanceKm: r.TotalDistanceKm,
		LegCoordinates:  legs,
		Unreachable:     consumers - r.Stops(),
	}
}

type CurrentRouteResponse struct {
	RouteResponse
	RosterVersion uint64    `json:"roster_version"`
	PlannedAt     time.Time `json:"planned_at"`
	Stale         bool      `json:"stale"`
	Summary       Summary   `json:"summary"`
}

type ListConsumersResponse struct {
	Version   uint64      `json:"version"`
	Origin    Coordinates `json:"origin"`
	Consumers []Consumer  `json:"consumers"`
}
