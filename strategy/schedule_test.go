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

func TestSchedule_FallsBackToBalancedWithoutTarget(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w := scenario.NewWorld(start, 15*time.Minute)
	w.GridConnectors["gc1"] = components.NewGridConnector("gc1", 100, components.VoltageLV)
	w.ChargingStations["cs1"] = &components.ChargingStation{ID: "cs1", ParentGC: "gc1", MaxPower: 11, CurrentVehicleID: "v1"}
	w.Vehicles["v1"] = &components.Vehicle{ID: "v1", Battery: battery.New(50, 0.2, flatCurve(11), 0.95), ConnectedChargingStation: "cs1", DesiredSoc: 0.8}

	st := scenario.NewStepper(w, Schedule{Mode: ScheduleIndividual})
	require.NoError(t, st.Run(context.Background(), 1))

	assert.Equal(t, 11.0, w.ChargingStations["cs1"].CurrentPower)
}

func TestSchedule_IndividualSharesTargetProportionallyToNeed(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w := scenario.NewWorld(start, 15*time.Minute)
	gc := components.NewGridConnector("gc1", 100, components.VoltageLV)
	gc.SetSchedule(12)
	w.GridConnectors["gc1"] = gc
	w.ChargingStations["cs1"] = &components.ChargingStation{ID: "cs1", ParentGC: "gc1", MaxPower: 22, CurrentVehicleID: "v1"}
	w.ChargingStations["cs2"] = &components.ChargingStation{ID: "cs2", ParentGC: "gc1", MaxPower: 22, CurrentVehicleID: "v2"}
	// v1 needs twice the energy of v2 to reach its desired SoC.
	w.Vehicles["v1"] = &components.Vehicle{ID: "v1", Battery: battery.New(50, 0.0, flatCurve(22), 0.95), ConnectedChargingStation: "cs1", DesiredSoc: 0.8}
	w.Vehicles["v2"] = &components.Vehicle{ID: "v2", Battery: battery.New(50, 0.4, flatCurve(22), 0.95), ConnectedChargingStation: "cs2", DesiredSoc: 0.8}

	st := scenario.NewStepper(w, Schedule{Mode: ScheduleIndividual})
	require.NoError(t, st.Run(context.Background(), 1))

	total := w.ChargingStations["cs1"].CurrentPower + w.ChargingStations["cs2"].CurrentPower
	assert.InDelta(t, 12.0, total, 1e-6)
	assert.Greater(t, w.ChargingStations["cs1"].CurrentPower, w.ChargingStations["cs2"].CurrentPower)
}

func TestSchedule_CollectiveOutsideCoreWindowBehavesLikeBalanced(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w := scenario.NewWorld(start, 15*time.Minute)
	gc := components.NewGridConnector("gc1", 100, components.VoltageLV)
	gc.SetSchedule(5)
	w.GridConnectors["gc1"] = gc
	w.ChargingStations["cs1"] = &components.ChargingStation{ID: "cs1", ParentGC: "gc1", MaxPower: 11, CurrentVehicleID: "v1"}
	w.Vehicles["v1"] = &components.Vehicle{ID: "v1", Battery: battery.New(50, 0.2, flatCurve(11), 0.95), ConnectedChargingStation: "cs1", DesiredSoc: 0.8}
	// No CoreStandingTime configured on w, so collective mode always falls to Balanced.

	st := scenario.NewStepper(w, Schedule{Mode: ScheduleCollective})
	require.NoError(t, st.Run(context.Background(), 1))

	assert.Equal(t, 11.0, w.ChargingStations["cs1"].CurrentPower)
}
