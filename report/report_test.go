package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/cepro/spiceev/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTimeSeries() *scenario.TimeSeries {
	ts := scenario.NewTimeSeries()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ts.Append(scenario.StepRecord{
		StepIndex: 1,
		Time:      start,
		GCs: map[string]scenario.GCRecord{
			"gc1": {GridPower: 10, StationPowerTotal: 10, Price: 0.2},
		},
		VehicleSoc: map[string]float64{"v1": 0.5},
	})
	ts.Append(scenario.StepRecord{
		StepIndex: 2,
		Time:      start.Add(15 * time.Minute),
		GCs: map[string]scenario.GCRecord{
			"gc1": {GridPower: -5, StationPowerTotal: -5, Price: 0.1},
		},
		VehicleSoc: map[string]float64{"v1": 0.6},
	})
	return ts
}

func TestSummarize_TalliesEnergyCostAndFinalSoc(t *testing.T) {
	s := Summarize(sampleTimeSeries(), nil)

	assert.Equal(t, 2, s.Steps)
	assert.InDelta(t, 2.5, s.TotalEnergyChargedKWh, 1e-9) // 10kW * 0.25h
	assert.InDelta(t, 1.25, s.TotalEnergyDischarged, 1e-9) // 5kW * 0.25h
	assert.InDelta(t, 0.6, s.FinalSoc["v1"], 1e-9)
}

func TestSummarize_CountsWarningsByType(t *testing.T) {
	warnings := []error{
		&scenario.OverloadError{GridConnectorID: "gc1"},
		&scenario.NonConvergenceWarning{ComponentID: "v1"},
		&scenario.NegativeSocError{VehicleID: "v1"},
		&scenario.OverloadError{GridConnectorID: "gc1"},
	}
	s := Summarize(sampleTimeSeries(), warnings)

	assert.Equal(t, 2, s.OverloadCount)
	assert.Equal(t, 1, s.NonConvergenceCount)
	assert.Equal(t, 1, s.NegativeSocAborts)
}

func TestStore_PersistAndQueryRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.PersistTimeSeries(sampleTimeSeries()))

	gcRows, err := store.GCRows("gc1")
	require.NoError(t, err)
	require.Len(t, gcRows, 2)
	assert.Equal(t, 10.0, gcRows[0].GridPower)
	assert.Equal(t, -5.0, gcRows[1].GridPower)

	vehicleRows, err := store.VehicleRows("v1")
	require.NoError(t, err)
	require.Len(t, vehicleRows, 2)
	assert.InDelta(t, 0.6, vehicleRows[1].Soc, 1e-9)
}
