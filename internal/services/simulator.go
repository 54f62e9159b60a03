package services

import (
	"math"
	"time"

	"nearby-route-service/internal/domain"
	"nearby-route-service/internal/geo"
)

// Radius, in degrees, of the circle moving consumers travel around the origin.
const orbitRadiusDeg = 0.004

// Fallback vendor position used when no location is available.
var DefaultOrigin = domain.Coordinates{Lat: 28.6139, Lon: 77.2090}

type SimulationStatus string

const (
	SimulationIdle    SimulationStatus = "idle"
	SimulationRunning SimulationStatus = "running"
)

// SimulationState is everything a tick needs. Advance never mutates it.
// Elapsed time is derived from Tick and Interval, not the wall clock, so two
// states started alike stay identical tick for tick.
type SimulationState struct {
	Center    domain.Coordinates
	Tick      uint64
	Interval  time.Duration
	Consumers []domain.Consumer
}

func NewSimulationState(center domain.Coordinates, interval time.Duration, consumers []domain.Consumer) SimulationState {
	return SimulationState{
		Center:    center,
		Interval:  interval,
		Consumers: domain.CloneConsumers(consumers),
	}
}

// Elapsed time simulated so far.
func (s SimulationState) Elapsed() time.Duration {
	return time.Duration(s.Tick) * s.Interval
}

// Advance moves the simulation one tick forward and returns the new state.
// Each moving consumer is placed on its circular trajectory for the new
// elapsed time; static consumers are copied unchanged.
func Advance(s SimulationState) SimulationState {
	next := SimulationState{
		Center:    s.Center,
		Tick:      s.Tick + 1,
		Interval:  s.Interval,
		Consumers: make([]domain.Consumer, len(s.Consumers)),
	}

	elapsed := next.Elapsed()
	for i, c := range s.Consumers {
		c = c.Clone()
		if c.Movement != nil {
			c.Coords = OrbitPosition(s.Center, *c.Movement, elapsed)
			c.DistanceKm = geo.Distance(s.Center, c.Coords)
		}
		next.Consumers[i] = c
	}

	return next
}

// OrbitPosition returns where a consumer with movement m is after elapsed.
// The angle in degrees grows by Speed*360 every ten seconds from PhaseSeed.
func OrbitPosition(center domain.Coordinates, m domain.Movement, elapsed time.Duration) domain.Coordinates {
	elapsedMs := float64(elapsed.Milliseconds())
	angleDeg := m.PhaseSeed + (elapsedMs/10000)*m.Speed*360
	rad := angleDeg * math.Pi / 180

	return domain.Coordinates{
		Lat: center.Lat + orbitRadiusDeg*math.Sin(rad),
		Lon: center.Lon + orbitRadiusDeg*math.Cos(rad),
	}
}

type demoConsumer struct {
	id, name, address, phone string
	dLat, dLon               float64
	orders                   int
	value                    float64
	speed                    float64
}

// Speeds are the vendor screen's values scaled by 1000 for visible motion.
var demoConsumers = []demoConsumer{
	{"consumer_0", "Raj Kumar", "Connaught Place, Delhi", "+91 9876543210", 0.005, 0.003, 3, 5500, 0},
	{"consumer_1", "Priya Sharma", "Karol Bagh, Delhi", "+91 9876543211", -0.004, 0.005, 2, 3200, 0.1},
	{"consumer_2", "Amit Patel", "Rohini, Delhi", "+91 9876543212", 0.006, -0.004, 5, 8900, 0.08},
	{"consumer_3", "Sneha Gupta", "Janakpuri, Delhi", "+91 9876543213", -0.003, -0.006, 1, 1500, 0},
	{"consumer_4", "Vikram Singh", "Dwarka, Delhi", "+91 9876543214", 0.002, 0.007, 4, 6700, 0.12},
}

// DemoRoster returns the synthetic roster used when a simulation starts
// without consumers. It depends only on origin.
func DemoRoster(origin domain.Coordinates) []domain.Consumer {
	out := make([]domain.Consumer, 0, len(demoConsumers))
	for _, d := range demoConsumers {
		c := domain.Consumer{
			ID:         d.id,
			Name:       d.name,
			Address:    d.address,
			Phone:      d.phone,
			OrderCount: d.orders,
			TotalValue: d.value,
			Coords:     origin.Offset(d.dLat, d.dLon),
		}
		if d.speed > 0 {
			// Start the orbit at the bearing of the seeded offset.
			phase := math.Atan2(d.dLat, d.dLon) * 180 / math.Pi
			c.Movement = &domain.Movement{Speed: d.speed, PhaseSeed: phase}
		}
		c.DistanceKm = geo.Distance(origin, c.Coords)
		out = append(out, c)
	}
	return out
}
