package scenario

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/cepro/spiceev/battery"
	"github.com/cepro/spiceev/cartesian"
	"github.com/cepro/spiceev/components"
	"github.com/cepro/spiceev/loadingcurve"
)

// almostEqual compares two floats, allowing for the given tolerance.
func almostEqual(a, b, tolerance float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) < tolerance
}

func mustParseTime(str string) time.Time {
	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		panic(err)
	}
	return t
}

// fixedPowerStrategy assigns a constant power to one named station, ignoring
// everything else; it stands in for a real Strategy in stepper-only tests.
type fixedPowerStrategy struct {
	stationID string
	powerKW   float64
}

func (s *fixedPowerStrategy) Step(w *World) error {
	w.ChargingStations[s.stationID].CurrentPower = s.powerKW
	return nil
}

func TestStepper_SingleVehicleOneInterval(t *testing.T) {
	curve := loadingcurve.MustNew([]cartesian.Point{{X: 0, Y: 22}, {X: 1, Y: 22}})
	bat := battery.New(50, 0.5, curve, 0.95)

	w := NewWorld(mustParseTime("2026-01-01T00:00:00Z"), 15*time.Minute)
	w.GridConnectors["gc1"] = components.NewGridConnector("gc1", 100, components.VoltageLV)
	w.ChargingStations["cs1"] = &components.ChargingStation{ID: "cs1", ParentGC: "gc1", MaxPower: 22}
	w.Vehicles["v1"] = &components.Vehicle{ID: "v1", Battery: bat, ConnectedChargingStation: "cs1", DesiredSoc: 0.8}
	w.ChargingStations["cs1"].CurrentVehicleID = "v1"

	st := NewStepper(w, &fixedPowerStrategy{stationID: "cs1", powerKW: 22})
	if err := st.Run(context.Background(), 1); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !almostEqual(bat.Soc, 0.6045, 1e-3) {
		t.Fatalf("expected soc ~0.6045, got %v", bat.Soc)
	}
	row := st.TimeSeries.Rows[0]
	if row.StepIndex != 1 {
		t.Fatalf("expected step index 1, got %d", row.StepIndex)
	}
	gcRow := row.GCs["gc1"]
	if !almostEqual(gcRow.GridPower, 22, 1e-6) {
		t.Fatalf("expected gc load 22, got %v", gcRow.GridPower)
	}
}

func TestStepper_GridConnectorCap(t *testing.T) {
	curveA := loadingcurve.MustNew([]cartesian.Point{{X: 0, Y: 22}, {X: 1, Y: 22}})
	curveB := loadingcurve.MustNew([]cartesian.Point{{X: 0, Y: 22}, {X: 1, Y: 22}})
	batA := battery.New(50, 0.2, curveA, 0.95)
	batB := battery.New(50, 0.2, curveB, 0.95)

	w := NewWorld(mustParseTime("2026-01-01T00:00:00Z"), 15*time.Minute)
	w.GridConnectors["gc1"] = components.NewGridConnector("gc1", 5, components.VoltageLV)
	w.ChargingStations["cs1"] = &components.ChargingStation{ID: "cs1", ParentGC: "gc1", MaxPower: 22, CurrentVehicleID: "vA"}
	w.ChargingStations["cs2"] = &components.ChargingStation{ID: "cs2", ParentGC: "gc1", MaxPower: 22, CurrentVehicleID: "vB"}
	w.Vehicles["vA"] = &components.Vehicle{ID: "vA", Battery: batA, ConnectedChargingStation: "cs1", DesiredSoc: 0.8}
	w.Vehicles["vB"] = &components.Vehicle{ID: "vB", Battery: batB, ConnectedChargingStation: "cs2", DesiredSoc: 0.8}

	// Strategy grants the GC cap entirely to the first station and nothing
	// to the second, mirroring spec.md's "first served gets 5kW" example.
	st := NewStepper(w, &fixedPowerStrategy{stationID: "cs1", powerKW: 5})
	if err := st.Run(context.Background(), 1); err != nil {
		t.Fatalf("Run: %v", err)
	}

	row := st.TimeSeries.Rows[0]
	gcRow := row.GCs["gc1"]
	if gcRow.GridPower > 5+1e-6 {
		t.Fatalf("expected gc load <= 5, got %v", gcRow.GridPower)
	}
}
