package strategy

import (
	"testing"
	"time"

	"github.com/cepro/spiceev/battery"
	"github.com/cepro/spiceev/components"
	"github.com/cepro/spiceev/scenario"
	"github.com/stretchr/testify/assert"
)

func v2gVehicleType() *components.VehicleType {
	return &components.VehicleType{
		Name:             "v2g-sedan",
		CapacityKWh:      50,
		ChargingCurve:    flatCurve(11),
		V2G:              true,
		V2GPowerFactor:   1,
		DischargeLimit:   0.2,
		BatteryEfficiency: 0.95,
	}
}

func TestApplyV2G_DischargesWhenPriceHighAndTimeToSpare(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	w := scenario.NewWorld(start, 15*time.Minute)
	gc := components.NewGridConnector("gc1", 100, components.VoltageLV)
	gc.SetCost(components.FixedCost{Value: 50}) // above PriceThreshold (0)
	w.GridConnectors["gc1"] = gc

	departure := start.Add(8 * time.Hour)
	w.ChargingStations["cs1"] = &components.ChargingStation{ID: "cs1", ParentGC: "gc1", MaxPower: 11, CurrentVehicleID: "v1"}
	w.Vehicles["v1"] = &components.Vehicle{
		ID:                       "v1",
		Battery:                  battery.New(50, 0.9, flatCurve(11), 0.95),
		ConnectedChargingStation: "cs1",
		DesiredSoc:               0.8, // already above desired, free to export
		EstimatedTimeOfDeparture: &departure,
	}
	w.VehicleTypes["v2g-sedan"] = v2gVehicleType()
	w.Vehicles["v1"].TypeName = "v2g-sedan"

	v := w.Vehicles["v1"]
	cs := w.ChargingStations["cs1"]

	discharged := ApplyV2G(w, gc, v, w.VehicleTypes[v.TypeName], cs)

	assert.True(t, discharged)
	assert.Less(t, cs.CurrentPower, 0.0)
}

func TestApplyV2G_RefusesWhenNotEnoughStandingTimeToRefill(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	w := scenario.NewWorld(start, 15*time.Minute)
	gc := components.NewGridConnector("gc1", 100, components.VoltageLV)
	gc.SetCost(components.FixedCost{Value: 50})
	w.GridConnectors["gc1"] = gc

	departure := start.Add(1 * time.Minute) // leaving almost immediately
	w.ChargingStations["cs1"] = &components.ChargingStation{ID: "cs1", ParentGC: "gc1", MaxPower: 11, CurrentVehicleID: "v1"}
	w.VehicleTypes["v2g-sedan"] = v2gVehicleType()
	w.Vehicles["v1"] = &components.Vehicle{
		ID:                       "v1",
		TypeName:                 "v2g-sedan",
		Battery:                  battery.New(50, 0.9, flatCurve(11), 0.95),
		ConnectedChargingStation: "cs1",
		DesiredSoc:               0.8,
		EstimatedTimeOfDeparture: &departure,
	}

	v := w.Vehicles["v1"]
	cs := w.ChargingStations["cs1"]
	discharged := ApplyV2G(w, gc, v, w.VehicleTypes[v.TypeName], cs)

	assert.False(t, discharged)
	assert.Equal(t, 0.0, cs.CurrentPower)
}

func TestApplyV2G_RefusesWhenPriceBelowThreshold(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	w := scenario.NewWorld(start, 15*time.Minute)
	gc := components.NewGridConnector("gc1", 100, components.VoltageLV)
	gc.SetCost(components.FixedCost{Value: -1}) // at/below PriceThreshold
	w.GridConnectors["gc1"] = gc

	departure := start.Add(8 * time.Hour)
	w.ChargingStations["cs1"] = &components.ChargingStation{ID: "cs1", ParentGC: "gc1", MaxPower: 11, CurrentVehicleID: "v1"}
	w.VehicleTypes["v2g-sedan"] = v2gVehicleType()
	w.Vehicles["v1"] = &components.Vehicle{
		ID:                       "v1",
		TypeName:                 "v2g-sedan",
		Battery:                  battery.New(50, 0.9, flatCurve(11), 0.95),
		ConnectedChargingStation: "cs1",
		DesiredSoc:               0.8,
		EstimatedTimeOfDeparture: &departure,
	}

	v := w.Vehicles["v1"]
	cs := w.ChargingStations["cs1"]
	discharged := ApplyV2G(w, gc, v, w.VehicleTypes[v.TypeName], cs)

	assert.False(t, discharged)
}
