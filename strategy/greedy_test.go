package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/cepro/spiceev/battery"
	"github.com/cepro/spiceev/cartesian"
	"github.com/cepro/spiceev/components"
	"github.com/cepro/spiceev/loadingcurve"
	"github.com/cepro/spiceev/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatCurve(peak float64) loadingcurve.Curve {
	return loadingcurve.MustNew([]cartesian.Point{{X: 0, Y: peak}, {X: 1, Y: peak}})
}

func TestGreedy_GridConnectorCapSharedAcrossTwoVehicles(t *testing.T) {
	w := scenario.NewWorld(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 15*time.Minute)
	w.GridConnectors["gc1"] = components.NewGridConnector("gc1", 5, components.VoltageLV)
	w.ChargingStations["cs1"] = &components.ChargingStation{ID: "cs1", ParentGC: "gc1", MaxPower: 22, CurrentVehicleID: "vA"}
	w.ChargingStations["cs2"] = &components.ChargingStation{ID: "cs2", ParentGC: "gc1", MaxPower: 22, CurrentVehicleID: "vB"}
	w.Vehicles["vA"] = &components.Vehicle{ID: "vA", Battery: battery.New(50, 0.2, flatCurve(22), 0.95), ConnectedChargingStation: "cs1", DesiredSoc: 0.8}
	w.Vehicles["vB"] = &components.Vehicle{ID: "vB", Battery: battery.New(50, 0.2, flatCurve(22), 0.95), ConnectedChargingStation: "cs2", DesiredSoc: 0.8}

	st := scenario.NewStepper(w, Greedy{})
	require.NoError(t, st.Run(context.Background(), 1))

	total := w.ChargingStations["cs1"].CurrentPower + w.ChargingStations["cs2"].CurrentPower
	assert.LessOrEqual(t, total, 5.0+1e-6)
	assert.Equal(t, 5.0, w.ChargingStations["cs1"].CurrentPower)
	assert.Equal(t, 0.0, w.ChargingStations["cs2"].CurrentPower)
}

func TestGreedy_StopsAtDesiredSocWithoutSurplusOrCheapPrice(t *testing.T) {
	w := scenario.NewWorld(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 15*time.Minute)
	w.GridConnectors["gc1"] = components.NewGridConnector("gc1", 100, components.VoltageLV)
	w.GridConnectors["gc1"].SetCost(components.FixedCost{Value: 10})
	w.ChargingStations["cs1"] = &components.ChargingStation{ID: "cs1", ParentGC: "gc1", MaxPower: 22, CurrentVehicleID: "v1"}
	w.Vehicles["v1"] = &components.Vehicle{ID: "v1", Battery: battery.New(50, 0.9, flatCurve(22), 0.95), ConnectedChargingStation: "cs1", DesiredSoc: 0.8}

	st := scenario.NewStepper(w, Greedy{})
	require.NoError(t, st.Run(context.Background(), 1))

	assert.Equal(t, 0.0, w.ChargingStations["cs1"].CurrentPower)
}
