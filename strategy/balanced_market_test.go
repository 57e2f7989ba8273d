package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/cepro/spiceev/battery"
	"github.com/cepro/spiceev/components"
	"github.com/cepro/spiceev/events"
	"github.com/cepro/spiceev/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalancedMarket_FallsBackToBalancedWithoutCostConfigured(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w := scenario.NewWorld(start, 15*time.Minute)
	w.GridConnectors["gc1"] = components.NewGridConnector("gc1", 100, components.VoltageLV)
	w.ChargingStations["cs1"] = &components.ChargingStation{ID: "cs1", ParentGC: "gc1", MaxPower: 11, CurrentVehicleID: "v1"}
	w.Vehicles["v1"] = &components.Vehicle{ID: "v1", Battery: battery.New(50, 0.2, flatCurve(11), 0.95), ConnectedChargingStation: "cs1", DesiredSoc: 0.8}

	st := scenario.NewStepper(w, BalancedMarket{})
	require.NoError(t, st.Run(context.Background(), 1))

	assert.Equal(t, 11.0, w.ChargingStations["cs1"].CurrentPower)
}

func TestBalancedMarket_ChargesInCheapestSlotOfHorizon(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w := scenario.NewWorld(start, 1*time.Hour)
	gc := components.NewGridConnector("gc1", 100, components.VoltageLV)
	gc.SetCost(components.FixedCost{Value: 100}) // expensive right now
	w.GridConnectors["gc1"] = gc
	w.ChargingStations["cs1"] = &components.ChargingStation{ID: "cs1", ParentGC: "gc1", MaxPower: 11, CurrentVehicleID: "v1"}

	departure := start.Add(5 * time.Hour)
	w.Vehicles["v1"] = &components.Vehicle{
		ID:                       "v1",
		Battery:                  battery.New(50, 0.75, flatCurve(11), 0.95),
		ConnectedChargingStation: "cs1",
		DesiredSoc:               0.8,
		EstimatedTimeOfDeparture: &departure,
	}

	// A cheap slot known in advance but not starting until hour 3; it is not
	// yet active (so the GC's current cost stays expensive this step), only
	// visible for BalancedMarket's look-ahead ranking.
	cheapCost := components.FixedCost{Value: 1}
	w.Events.Add(&events.GridOperatorSignal{
		Base:            events.Base{Signal: start, Start: start.Add(3 * time.Hour)},
		GridConnectorID: "gc1",
		Cost:            cheapCost,
	})

	st := scenario.NewStepper(w, BalancedMarket{})
	require.NoError(t, st.Run(context.Background(), 1))

	// The cheapest slots are three and four hours out, not the current one,
	// so no charging is assigned yet.
	assert.Equal(t, 0.0, w.ChargingStations["cs1"].CurrentPower)
}
