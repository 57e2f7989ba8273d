package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestEvents_SortsByStartTime(t *testing.T) {
	es := NewEvents()
	late := &FixedLoadUpdate{Base: Base{Start: mustTime("2026-01-01T02:00:00Z")}, GridConnectorID: "gc1"}
	early := &FixedLoadUpdate{Base: Base{Start: mustTime("2026-01-01T01:00:00Z")}, GridConnectorID: "gc1"}

	es.Add(late)
	es.Add(early)

	all := es.All()
	require.Len(t, all, 2)
	assert.Same(t, early, all[0])
	assert.Same(t, late, all[1])
}

func TestEvents_ArrivalBeforeDepartureOfSameVehicle(t *testing.T) {
	es := NewEvents()
	start := mustTime("2026-01-01T01:00:00Z")

	dep := &DepartureEvent{Base: Base{Start: start}, VehicleID: "v1"}
	arr := &ArrivalEvent{Base: Base{Start: start}, VehicleID: "v1"}

	// Inserted departure first, arrival second: arrival must still sort first.
	es.Add(dep)
	es.Add(arr)

	all := es.All()
	require.Len(t, all, 2)
	assert.Same(t, arr, all[0])
	assert.Same(t, dep, all[1])
}

func TestEvents_UnrelatedTiesPreserveInsertionOrder(t *testing.T) {
	es := NewEvents()
	start := mustTime("2026-01-01T01:00:00Z")

	first := &FixedLoadUpdate{Base: Base{Start: start}, GridConnectorID: "gc1"}
	second := &FixedLoadUpdate{Base: Base{Start: start}, GridConnectorID: "gc2"}

	es.Add(first)
	es.Add(second)

	all := es.All()
	require.Len(t, all, 2)
	assert.Same(t, first, all[0])
	assert.Same(t, second, all[1])
}

func TestEvents_ActiveAtAndConsume(t *testing.T) {
	es := NewEvents()
	t0 := mustTime("2026-01-01T00:00:00Z")
	t1 := mustTime("2026-01-01T01:00:00Z")

	e1 := &FixedLoadUpdate{Base: Base{Start: t0}, GridConnectorID: "gc1"}
	e2 := &FixedLoadUpdate{Base: Base{Start: t1}, GridConnectorID: "gc1"}
	es.Add(e1)
	es.Add(e2)

	active := es.ActiveAt(t0)
	require.Len(t, active, 1)
	assert.Same(t, e1, active[0])

	es.Consume(e1)
	assert.Empty(t, es.ActiveAt(t0))

	active = es.ActiveAt(t1)
	require.Len(t, active, 1)
	assert.Same(t, e2, active[0])
}

func TestEvents_VisibleAtUsesSignalTime(t *testing.T) {
	es := NewEvents()
	signal := mustTime("2026-01-01T00:00:00Z")
	start := mustTime("2026-01-02T00:00:00Z")

	e := &ArrivalEvent{Base: Base{Signal: signal, Start: start}, VehicleID: "v1"}
	es.Add(e)

	assert.Empty(t, es.VisibleAt(signal.Add(-time.Minute)))
	assert.Len(t, es.VisibleAt(signal), 1)
	assert.Empty(t, es.ActiveAt(signal))
}
