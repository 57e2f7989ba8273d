package schedulesource

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cepro/spiceev/events"
	"github.com/cepro/spiceev/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSchedule = `[
  {"target": "v1", "is_vehicle": true, "start_time": "2026-01-01T06:00:00Z", "power_kw": 7.0},
  {"target": "gc1", "is_vehicle": false, "start_time": "2026-01-01T07:00:00Z", "power_kw": 20.0}
]`

func TestClient_PollAddsOneScheduleUpdatePerItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleSchedule))
	}))
	defer server.Close()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	world := scenario.NewWorld(start, 15*time.Minute)

	c := New(server.Client(), server.URL)
	require.NoError(t, c.poll(world))

	all := world.Events.All()
	require.Len(t, all, 2)

	vehicleUpdate := all[0].(*events.ScheduleUpdate)
	assert.Equal(t, "v1", vehicleUpdate.VehicleID)
	assert.Equal(t, 7.0, vehicleUpdate.PowerKW)

	gcUpdate := all[1].(*events.ScheduleUpdate)
	assert.Equal(t, "gc1", gcUpdate.GridConnectorID)
	assert.Equal(t, 20.0, gcUpdate.PowerKW)
}

func TestClient_PollIsNoOpWhenScheduleUnchanged(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleSchedule))
	}))
	defer server.Close()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	world := scenario.NewWorld(start, 15*time.Minute)

	c := New(server.Client(), server.URL)
	require.NoError(t, c.poll(world))
	require.NoError(t, c.poll(world))

	assert.Len(t, world.Events.All(), 2, "second identical poll should not duplicate events")
	assert.Equal(t, 2, hits)
}
