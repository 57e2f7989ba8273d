package pricefeed

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

func TestClient_PollAddsGridOperatorSignal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"price_per_mwh": 150.0, "time": "2026-01-01T12:00:00Z"}`))
	}))
	defer server.Close()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	world := scenario.NewWorld(start, 15*time.Minute)
	world.GridConnectors["gc1"] = nil // existence not checked by pricefeed itself

	c := New(server.Client(), server.URL, "gc1", RequestParams{Region: "south", Market: "day-ahead"})
	require.NoError(t, c.poll(world))

	price, at := c.Last()
	assert.InDelta(t, 0.15, price, 1e-9)
	assert.True(t, at.Equal(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)))

	visible := world.Events.VisibleAt(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	require.Len(t, visible, 1)
	signal, ok := visible[0].(*events.GridOperatorSignal)
	require.True(t, ok)
	assert.Equal(t, "gc1", signal.GridConnectorID)
}

func TestClient_PollReturnsErrorOnNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	world := scenario.NewWorld(start, 15*time.Minute)

	c := New(server.Client(), server.URL, "gc1", RequestParams{})
	assert.Error(t, c.poll(world))
}

func TestClient_RequestURLEncodesParams(t *testing.T) {
	c := New(nil, "https://example.com/prices", "gc1", RequestParams{Region: "south", Market: "day-ahead"})
	requestURL, err := c.requestURL()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/prices?market=day-ahead&region=south", requestURL)
}

func TestClient_RequestURLPassesThroughWhenParamsEmpty(t *testing.T) {
	c := New(nil, "https://example.com/prices", "gc1", RequestParams{})
	requestURL, err := c.requestURL()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/prices", requestURL)
}
