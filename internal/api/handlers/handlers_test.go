package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nearby-route-service/internal/api/dto"
	"nearby-route-service/internal/domain"
	"nearby-route-service/internal/services"
)

var testOrigin = domain.Coordinates{Lat: 0, Lon: 0}

type stubRepo struct {
	consumers []domain.Consumer
	err       error
}

func (s *stubRepo) ListConsumers(context.Context) ([]domain.Consumer, error) {
	return domain.CloneConsumers(s.consumers), s.err
}

func newController() *services.RouteController {
	return services.NewRouteController(services.WithTickInterval(0))
}

func doRequest(t *testing.T, h http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, "/", nil)
	} else {
		r = httptest.NewRequest(method, "/", bytes.NewBufferString(body))
	}
	w := httptest.NewRecorder()
	h(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestPlanReturnsNearestNeighborOrder(t *testing.T) {
	h := &RouteHandler{Controller: newController(), DefaultOrigin: testOrigin}

	body := `{
		"origin": {"lat": 0, "lon": 0},
		"consumers": [
			{"id": "far", "location": {"lat": 0, "lon": 1}},
			{"id": "near", "location": {"lat": 0, "lon": 0.5}}
		]
	}`
	w := doRequest(t, h.Plan, http.MethodPost, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[dto.RouteResponse](t, w)
	assert.Equal(t, []string{domain.OriginID, "near", "far"}, res.Route)
	assert.InDelta(t, 111.19, res.TotalDistanceKm, 0.5)
	assert.Len(t, res.LegCoordinates, 3)
	assert.Equal(t, 0, res.Unreachable)
}

func TestPlanWithoutConsumersUsesDefaultOrigin(t *testing.T) {
	fallback := domain.Coordinates{Lat: 28.6139, Lon: 77.2090}
	h := &RouteHandler{Controller: newController(), DefaultOrigin: fallback}

	w := doRequest(t, h.Plan, http.MethodPost, `{"consumers": []}`)
	require.Equal(t, http.StatusOK, w.Code)

	res := decode[dto.RouteResponse](t, w)
	assert.Equal(t, []string{domain.OriginID}, res.Route)
	assert.Equal(t, 0.0, res.TotalDistanceKm)
	assert.Equal(t, []dto.Coordinates{{Lat: 28.6139, Lon: 77.2090}}, res.LegCoordinates)
}

func TestPlanRejectsBadInput(t *testing.T) {
	h := &RouteHandler{Controller: newController(), DefaultOrigin: testOrigin}

	cases := map[string]string{
		"invalid json":    `{"origin":`,
		"origin range":    `{"origin": {"lat": 91, "lon": 0}}`,
		"consumer range":  `{"consumers": [{"id": "a", "location": {"lat": 0, "lon": 181}}]}`,
		"missing id":      `{"consumers": [{"location": {"lat": 0, "lon": 1}}]}`,
		"reserved id":     `{"consumers": [{"id": "vendor", "location": {"lat": 0, "lon": 1}}]}`,
		"duplicate id":    `{"consumers": [{"id": "a", "location": {"lat": 0, "lon": 1}}, {"id": "a", "location": {"lat": 0, "lon": 2}}]}`,
		"unknown field":   `{"depot": {"lat": 0, "lon": 0}}`,
		"trailing object": `{} {}`,
		"empty body":      ``,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := doRequest(t, h.Plan, http.MethodPost, body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestPlanRejectsWrongMethod(t *testing.T) {
	h := &RouteHandler{Controller: newController(), DefaultOrigin: testOrigin}

	w := doRequest(t, h.Plan, http.MethodGet, "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, http.MethodPost, w.Header().Get("Allow"))
}

func TestSimulationLifecycle(t *testing.T) {
	c := newController()
	h := &SimulationHandler{Controller: c, DefaultOrigin: testOrigin}

	w := doRequest(t, h.Start, http.MethodPost, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	started := decode[dto.SimulationStatusResponse](t, w)
	assert.Equal(t, "running", started.Status)
	assert.Len(t, started.Consumers, 5)
	assert.Equal(t, uint64(1), started.RosterVersion)

	w = doRequest(t, h.Start, http.MethodPost, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	c.Tick(context.Background())
	w = doRequest(t, h.Status, http.MethodGet, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint64(2), decode[dto.SimulationStatusResponse](t, w).RosterVersion)

	w = doRequest(t, h.Stop, http.MethodPost, "")
	require.Equal(t, http.StatusOK, w.Code)
	stopped := decode[dto.SimulationStatusResponse](t, w)
	assert.Equal(t, "idle", stopped.Status)
	assert.Empty(t, stopped.Consumers)

	w = doRequest(t, h.Stop, http.MethodPost, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSimulationStartWithSuppliedRoster(t *testing.T) {
	h := &SimulationHandler{Controller: newController(), DefaultOrigin: testOrigin}

	body := `{
		"origin": {"lat": 10, "lon": 10},
		"consumers": [{"id": "a", "location": {"lat": 10.001, "lon": 10}, "movement": {"speed": 0.1, "phase_seed": 90}}]
	}`
	w := doRequest(t, h.Start, http.MethodPost, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	res := decode[dto.SimulationStatusResponse](t, w)
	require.Len(t, res.Consumers, 1)
	assert.Equal(t, "a", res.Consumers[0].ID)
	require.NotNil(t, res.Consumers[0].Movement)
	assert.Equal(t, 0.1, res.Consumers[0].Movement.Speed)
}

func TestCurrentRouteStaleness(t *testing.T) {
	c := newController()
	routes := &RouteHandler{Controller: c, DefaultOrigin: testOrigin}
	sim := &SimulationHandler{Controller: c, DefaultOrigin: testOrigin}

	w := doRequest(t, routes.Current, http.MethodGet, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, sim.Start, http.MethodPost, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, routes.Current, http.MethodGet, "")
	require.Equal(t, http.StatusOK, w.Code)
	cur := decode[dto.CurrentRouteResponse](t, w)
	assert.False(t, cur.Stale)
	assert.Equal(t, uint64(1), cur.RosterVersion)
	assert.Len(t, cur.Route, 6)
	assert.Equal(t, 5, cur.Summary.Consumers)
	assert.Equal(t, 3, cur.Summary.MovingConsumers)

	c.Tick(context.Background())

	w = doRequest(t, routes.Current, http.MethodGet, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[dto.CurrentRouteResponse](t, w).Stale)

	w = doRequest(t, routes.Refresh, http.MethodPost, "")
	require.Equal(t, http.StatusOK, w.Code)
	cur = decode[dto.CurrentRouteResponse](t, w)
	assert.False(t, cur.Stale)
	assert.Equal(t, uint64(2), cur.RosterVersion)
}

func TestRefreshWithoutRosterOrRepo(t *testing.T) {
	h := &RouteHandler{Controller: newController(), DefaultOrigin: testOrigin}

	w := doRequest(t, h.Refresh, http.MethodPost, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRefreshLoadsRosterFromRepository(t *testing.T) {
	repo := &stubRepo{consumers: []domain.Consumer{
		{ID: "a", OrderCount: 1, Coords: domain.Coordinates{Lat: 0, Lon: 0.01}},
		{ID: "b", OrderCount: 2, Coords: domain.Coordinates{Lat: 0, Lon: 0.02}},
	}}
	h := &RouteHandler{Controller: newController(), Repo: repo, DefaultOrigin: testOrigin}

	w := doRequest(t, h.Refresh, http.MethodPost, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cur := decode[dto.CurrentRouteResponse](t, w)
	assert.Equal(t, []string{domain.OriginID, "a", "b"}, cur.Route)
	assert.Equal(t, 3, cur.Summary.TotalOrders)
}

func TestRefreshRepositoryFailure(t *testing.T) {
	repo := &stubRepo{err: assert.AnError}
	h := &RouteHandler{Controller: newController(), Repo: repo, DefaultOrigin: testOrigin}

	w := doRequest(t, h.Refresh, http.MethodPost, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListConsumersReflectsController(t *testing.T) {
	c := newController()
	_, err := c.Load(context.Background(), testOrigin, []domain.Consumer{
		{ID: "a", Coords: domain.Coordinates{Lat: 0, Lon: 1}},
	})
	require.NoError(t, err)

	h := &ConsumerHandler{Controller: c}
	w := doRequest(t, h.List, http.MethodGet, "")
	require.Equal(t, http.StatusOK, w.Code)

	res := decode[dto.ListConsumersResponse](t, w)
	assert.Equal(t, uint64(1), res.Version)
	require.Len(t, res.Consumers, 1)
	assert.InDelta(t, 111.19, res.Consumers[0].DistanceKm, 0.5)
}

func TestHealth(t *testing.T) {
	h := &HealthHandler{Controller: newController()}

	w := doRequest(t, h.Health, http.MethodGet, "")
	require.Equal(t, http.StatusOK, w.Code)

	res := decode[map[string]string](t, w)
	assert.Equal(t, "ok", res["status"])
	assert.Equal(t, "idle", res["simulation"])
}
