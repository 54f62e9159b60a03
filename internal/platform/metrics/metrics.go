package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RoutePlansTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nearby_route_plans_total",
		Help: "Total number of route planning runs",
	})
	RoutePlanDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "nearby_route_plan_duration_ms",
		Help:    "Route planning duration in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100},
	})
	RouteDistanceKm = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nearby_route_distance_km",
		Help: "Total distance of the most recently published route",
	})
	RouteStops = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nearby_route_stops",
		Help: "Consumers visited by the most recently published route",
	})
	SimulationTicksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nearby_simulation_ticks_total",
		Help: "Total number of position simulation ticks",
	})
	PositionPublishFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nearby_position_publish_fail_total",
		Help: "Total failures publishing simulated positions to a sink",
	})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nearby_http_requests_total",
		Help: "Total HTTP requests by path and status",
	}, []string{"path", "status"})
)

func init() {
	prometheus.MustRegister(RoutePlansTotal)
	prometheus.MustRegister(RoutePlanDurationMs)
	prometheus.MustRegister(RouteDistanceKm)
	prometheus.MustRegister(RouteStops)
	prometheus.MustRegister(SimulationTicksTotal)
	prometheus.MustRegister(PositionPublishFailTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
