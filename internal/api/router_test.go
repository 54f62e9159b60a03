package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nearby-route-service/internal/domain"
	"nearby-route-service/internal/live"
	"nearby-route-service/internal/services"
)

func newTestServer(t *testing.T) (*httptest.Server, *services.RouteController, *live.Hub) {
	t.Helper()

	var controller *services.RouteController
	hub := live.NewHub(func() domain.Roster { return controller.Roster() })
	controller = services.NewRouteController(
		services.WithTickInterval(0),
		services.WithPositionSinks(hub),
	)

	srv := httptest.NewServer(NewRouter(Deps{
		Controller:    controller,
		Hub:           hub,
		DefaultOrigin: services.DefaultOrigin,
	}))
	t.Cleanup(srv.Close)
	return srv, controller, hub
}

func TestRouterRequestIDHeader(t *testing.T) {
	srv, _, _ := newTestServer(t)

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-123")

	res2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res2.Body.Close()
	assert.Equal(t, "req-123", res2.Header.Get("X-Request-ID"))
}

func TestRouterSimulationFlow(t *testing.T) {
	srv, controller, _ := newTestServer(t)
	defer controller.StopSimulation()

	res, err := http.Post(srv.URL+"/simulation/start", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res, err = http.Get(srv.URL + "/routes/current")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		Route []string `json:"route"`
		Stale bool     `json:"stale"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Len(t, body.Route, 6)
	assert.Equal(t, domain.OriginID, body.Route[0])
	assert.False(t, body.Stale)
}

func TestRouterUnknownPath(t *testing.T) {
	srv, _, _ := newTestServer(t)

	res, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestRouterMetrics(t *testing.T) {
	srv, _, _ := newTestServer(t)

	res, err := http.Post(srv.URL+"/routes/plan", "application/json", strings.NewReader(`{"consumers": []}`))
	require.NoError(t, err)
	res.Body.Close()

	res, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "nearby_http_requests_total")
}

// The websocket upgrade goes through the logging middleware.
func TestRouterPositionsFeed(t *testing.T) {
	srv, controller, hub := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := controller.StartSimulation(ctx, services.DefaultOrigin, nil)
	require.NoError(t, err)
	defer controller.StopSimulation()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/positions"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	var first live.PositionsMessage
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &first))
	assert.Equal(t, uint64(1), first.Version)
	assert.Len(t, first.Consumers, 5)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	controller.Tick(ctx)

	var next live.PositionsMessage
	_, data, err = conn.Read(ctx)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &next))
	assert.Equal(t, uint64(2), next.Version)
}
