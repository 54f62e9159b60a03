package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"nearby-route-service/internal/domain"
	"nearby-route-service/internal/geo"
	"nearby-route-service/internal/platform/metrics"
	"nearby-route-service/internal/platform/obs"
	"nearby-route-service/internal/ports"
)

var (
	ErrSimulationRunning = errors.New("simulation already running")
	ErrInvalidOrigin     = errors.New("origin coordinates are invalid")
	ErrNoRoster          = errors.New("no roster loaded")
	ErrRosterReplaced    = errors.New("roster replaced while planning")
)

const resetTimeout = 5 * time.Second

// RouteSnapshot is the last published route together with the roster version
// it was planned from. Stale reports that positions moved since planning;
// the route is only refreshed by an explicit Replan.
type RouteSnapshot struct {
	Result        domain.RouteResult
	Summary       domain.RosterSummary
	RosterVersion uint64
	PlannedAt     time.Time
	Stale         bool
}

type ControllerOption func(*RouteController)

// WithTickInterval sets the simulation period. Zero disables the background
// ticker and leaves ticking to the caller.
func WithTickInterval(d time.Duration) ControllerOption {
	return func(c *RouteController) { c.interval = d }
}

func WithPlanner(p Planner) ControllerOption {
	return func(c *RouteController) { c.planner = p }
}

// WithPositionSinks registers sinks notified after every tick.
func WithPositionSinks(sinks ...ports.PositionSink) ControllerOption {
	return func(c *RouteController) { c.sinks = append(c.sinks, sinks...) }
}

func WithClock(now func() time.Time) ControllerOption {
	return func(c *RouteController) { c.now = now }
}

// RouteController owns the consumer roster, the position simulation and the
// last published route.
//
// Ticks only move consumers; they never re-plan. Planning always runs on a
// by-value snapshot of the roster, so a tick landing mid-plan cannot tear it.
type RouteController struct {
	mu sync.Mutex

	planner  Planner
	interval time.Duration
	sinks    []ports.PositionSink
	now      func() time.Time

	status  SimulationStatus
	loaded  bool
	// epoch changes whenever the roster is replaced (start, stop, load).
	// Versions only order snapshots within one epoch.
	epoch   uint64
	sim     SimulationState
	roster  domain.Roster
	current *RouteSnapshot

	cancel context.CancelFunc
	done   chan struct{}
}

func NewRouteController(opts ...ControllerOption) *RouteController {
	c := &RouteController{
		planner:  PlanRoute,
		interval: time.Second,
		now:      time.Now,
		status:   SimulationIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartSimulation moves the controller from Idle to Running.
//
// With an empty roster the deterministic demo roster is seeded around origin.
// A route is planned immediately and the ticker starts when an interval is
// configured. The returned roster is a copy.
func (c *RouteController) StartSimulation(
	ctx context.Context,
	origin domain.Coordinates,
	consumers []domain.Consumer,
) (_ []domain.Consumer, err error) {
	defer obs.Time(ctx, "simulation.start")(&err)

	if !origin.Valid() {
		return nil, fmt.Errorf("start simulation: %w", ErrInvalidOrigin)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == SimulationRunning {
		return nil, fmt.Errorf("start simulation: %w", ErrSimulationRunning)
	}

	if len(consumers) == 0 {
		consumers = DemoRoster(origin)
	}

	c.sim = NewSimulationState(origin, c.interval, withDistances(origin, consumers))
	c.roster = domain.Roster{
		Version:   1,
		Origin:    origin,
		Consumers: domain.CloneConsumers(c.sim.Consumers),
	}
	c.loaded = true
	c.epoch++
	c.status = SimulationRunning
	c.publishLocked(c.plan(ctx, c.roster.Snapshot()))

	if c.interval > 0 {
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		c.cancel = cancel
		c.done = make(chan struct{})
		go c.run(runCtx, c.epoch, c.done)
	}

	log.Printf("req_id=%s simulation started consumers=%d interval=%s", obs.RequestID(ctx), len(c.roster.Consumers), c.interval)
	return domain.CloneConsumers(c.roster.Consumers), nil
}

// StopSimulation returns to Idle, cancelling the ticker and discarding the
// roster and the last route. Stopping an idle controller does nothing.
func (c *RouteController) StopSimulation() {
	c.mu.Lock()
	if c.status != SimulationRunning {
		c.mu.Unlock()
		return
	}

	if c.cancel != nil {
		c.cancel()
	}
	done := c.done
	c.cancel, c.done = nil, nil
	c.status = SimulationIdle
	c.loaded = false
	c.epoch++
	c.sim = SimulationState{}
	c.roster = domain.Roster{}
	c.current = nil
	sinks := c.sinks
	c.mu.Unlock()

	metrics.RouteDistanceKm.Set(0)
	metrics.RouteStops.Set(0)

	// The ticker publishes before it exits, so sinks are reset after it.
	if done != nil {
		<-done
	}

	ctx, cancel := context.WithTimeout(context.Background(), resetTimeout)
	defer cancel()
	for _, s := range sinks {
		r, ok := s.(ports.PositionResetter)
		if !ok {
			continue
		}
		if err := r.ResetPositions(ctx); err != nil {
			log.Printf("reset positions failed: err=%v", err)
		}
	}
	log.Printf("simulation stopped")
}

func (c *RouteController) run(ctx context.Context, epoch uint64, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx, epoch)
		}
	}
}

// Tick advances moving consumers by one simulation step and notifies the
// position sinks. It does not touch the published route. Idle controllers
// ignore ticks.
func (c *RouteController) Tick(ctx context.Context) {
	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	c.tick(ctx, epoch)
}

// tick advances the run identified by epoch. Ticks of a stopped or
// replaced run are dropped.
func (c *RouteController) tick(ctx context.Context, epoch uint64) {
	c.mu.Lock()
	if c.status != SimulationRunning || c.epoch != epoch || ctx.Err() != nil {
		c.mu.Unlock()
		return
	}

	c.sim = Advance(c.sim)
	c.roster.Consumers = domain.CloneConsumers(c.sim.Consumers)
	c.roster.Version++
	snap := c.roster.Snapshot()
	sinks := c.sinks
	c.mu.Unlock()

	metrics.SimulationTicksTotal.Inc()

	for _, s := range sinks {
		if err := s.PublishPositions(ctx, snap); err != nil {
			metrics.PositionPublishFailTotal.Inc()
			log.Printf("req_id=%s publish positions failed: version=%d err=%v", obs.RequestID(ctx), snap.Version, err)
		}
	}
}

// Load installs an externally supplied roster and plans a route for it.
// The simulator owns the roster while running, so loading is refused then.
func (c *RouteController) Load(
	ctx context.Context,
	origin domain.Coordinates,
	consumers []domain.Consumer,
) (_ domain.RouteResult, err error) {
	defer obs.Time(ctx, "route.load")(&err)

	if !origin.Valid() {
		return domain.RouteResult{}, fmt.Errorf("load roster: %w", ErrInvalidOrigin)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == SimulationRunning {
		return domain.RouteResult{}, fmt.Errorf("load roster: %w", ErrSimulationRunning)
	}

	c.roster = domain.Roster{
		Version:   c.roster.Version + 1,
		Origin:    origin,
		Consumers: withDistances(origin, consumers),
	}
	c.loaded = true
	c.epoch++

	s := c.plan(ctx, c.roster.Snapshot())
	c.publishLocked(s)
	return s.Result, nil
}

// Replan is the explicit invalidation: it plans over a fresh snapshot of the
// roster and publishes the result.
func (c *RouteController) Replan(ctx context.Context) (_ domain.RouteResult, err error) {
	defer obs.Time(ctx, "route.replan")(&err)

	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return domain.RouteResult{}, fmt.Errorf("replan: %w", ErrNoRoster)
	}
	snap := c.roster.Snapshot()
	epoch := c.epoch
	c.mu.Unlock()

	s := c.plan(ctx, snap)

	c.mu.Lock()
	defer c.mu.Unlock()

	// A stop, start or reload while planning makes this result meaningless.
	if c.epoch != epoch {
		return domain.RouteResult{}, fmt.Errorf("replan: %w", ErrRosterReplaced)
	}
	if c.current == nil || c.current.RosterVersion <= snap.Version {
		c.publishLocked(s)
	}
	return s.Result, nil
}

func (c *RouteController) plan(ctx context.Context, snap domain.Roster) RouteSnapshot {
	start := time.Now()
	result := c.planner(snap.Origin, snap.Consumers)
	dur := time.Since(start)

	metrics.RoutePlansTotal.Inc()
	metrics.RoutePlanDurationMs.Observe(float64(dur.Microseconds()) / 1000)

	log.Printf(
		"req_id=%s route planned version=%d consumers=%d stops=%d distance_km=%.3f",
		obs.RequestID(ctx), snap.Version, len(snap.Consumers), result.Stops(), result.TotalDistanceKm,
	)
	if result.Stops() < len(snap.Consumers) {
		log.Printf("req_id=%s route partial: unreachable=%d", obs.RequestID(ctx), len(snap.Consumers)-result.Stops())
	}

	return RouteSnapshot{
		Result:        result,
		Summary:       domain.Summarize(snap.Consumers, result),
		RosterVersion: snap.Version,
		PlannedAt:     c.now(),
	}
}

func (c *RouteController) publishLocked(s RouteSnapshot) {
	c.current = &s
	metrics.RouteDistanceKm.Set(s.Result.TotalDistanceKm)
	metrics.RouteStops.Set(float64(s.Result.Stops()))
}

// Current returns the last published route, flagged stale when the roster
// moved after it was planned.
func (c *RouteController) Current() (RouteSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return RouteSnapshot{}, false
	}
	s := *c.current
	s.Stale = s.RosterVersion != c.roster.Version
	return s, true
}

// Roster returns a copy of the roster.
func (c *RouteController) Roster() domain.Roster {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roster.Snapshot()
}

func (c *RouteController) Status() SimulationStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Elapsed returns the simulated time of the running simulation.
func (c *RouteController) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sim.Elapsed()
}

func withDistances(origin domain.Coordinates, consumers []domain.Consumer) []domain.Consumer {
	out := domain.CloneConsumers(consumers)
	for i := range out {
		out[i].DistanceKm = geo.Distance(origin, out[i].Coords)
	}
	return out
}
