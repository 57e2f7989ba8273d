package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/cepro/spiceev/battery"
	"github.com/cepro/spiceev/components"
	"github.com/cepro/spiceev/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeakLoadWindow_OutsideWindowBehavesLikeBalanced(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w := scenario.NewWorld(start, 15*time.Minute)
	w.GridConnectors["gc1"] = components.NewGridConnector("gc1", 100, components.VoltageLV)
	w.ChargingStations["cs1"] = &components.ChargingStation{ID: "cs1", ParentGC: "gc1", MaxPower: 11, CurrentVehicleID: "v1"}
	w.Vehicles["v1"] = &components.Vehicle{ID: "v1", Battery: battery.New(50, 0.2, flatCurve(11), 0.95), ConnectedChargingStation: "cs1", DesiredSoc: 0.8}

	st := scenario.NewStepper(w, PeakLoadWindow{})
	require.NoError(t, st.Run(context.Background(), 1))

	assert.Equal(t, 11.0, w.ChargingStations["cs1"].CurrentPower)
}

func TestPeakLoadWindow_InsideWindowOnlyChargesMinimumNecessary(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w := scenario.NewWorld(start, 15*time.Minute)
	gc := components.NewGridConnector("gc1", 100, components.VoltageLV)
	gc.SetWindows(true)
	w.GridConnectors["gc1"] = gc
	w.ChargingStations["cs1"] = &components.ChargingStation{ID: "cs1", ParentGC: "gc1", MaxPower: 11, CurrentVehicleID: "v1"}

	departure := start.Add(6 * time.Hour)
	w.Vehicles["v1"] = &components.Vehicle{
		ID:                       "v1",
		Battery:                  battery.New(50, 0.2, flatCurve(11), 0.95),
		ConnectedChargingStation: "cs1",
		DesiredSoc:               0.8,
		EstimatedTimeOfDeparture: &departure,
	}

	st := scenario.NewStepper(w, PeakLoadWindow{})
	require.NoError(t, st.Run(context.Background(), 1))

	assert.Less(t, w.ChargingStations["cs1"].CurrentPower, 11.0)
	assert.Greater(t, w.ChargingStations["cs1"].CurrentPower, 0.0)
}
