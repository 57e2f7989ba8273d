// Package report turns a scenario.TimeSeries into persisted rows and a
// human-readable run summary, the way the teacher's repository/telemetry
// packages turn readings into stored rows ready for later upload.
package report

import (
	"time"

	"github.com/cepro/spiceev/scenario"
	"github.com/google/uuid"
)

// StoredGCRow is one grid connector's reading for one step, flattened for
// gorm the way StoredMeterReading flattens a single meter's reading.
type StoredGCRow struct {
	ID                uuid.UUID `gorm:"primaryKey"`
	StepIndex         int       `gorm:"index"`
	Time              time.Time `gorm:"index"`
	GridConnectorID   string    `gorm:"index"`
	GridPower         float64
	FixedLoad         float64
	FeedIn            float64
	Surplus           float64
	StationPowerTotal float64
	Price             float64
	ScheduleTarget    *float64
}

// StoredVehicleRow is one vehicle's SoC for one step.
type StoredVehicleRow struct {
	ID        uuid.UUID `gorm:"primaryKey"`
	StepIndex int       `gorm:"index"`
	Time      time.Time `gorm:"index"`
	VehicleID string    `gorm:"index"`
	Soc       float64
}

func newStoredGCRow(stepIndex int, t time.Time, gcID string, r scenario.GCRecord) StoredGCRow {
	return StoredGCRow{
		ID:                uuid.New(),
		StepIndex:         stepIndex,
		Time:              t,
		GridConnectorID:   gcID,
		GridPower:         r.GridPower,
		FixedLoad:         r.FixedLoad,
		FeedIn:            r.FeedIn,
		Surplus:           r.Surplus,
		StationPowerTotal: r.StationPowerTotal,
		Price:             r.Price,
		ScheduleTarget:    r.ScheduleTarget,
	}
}

func newStoredVehicleRow(stepIndex int, t time.Time, vehicleID string, soc float64) StoredVehicleRow {
	return StoredVehicleRow{
		ID:        uuid.New(),
		StepIndex: stepIndex,
		Time:      t,
		VehicleID: vehicleID,
		Soc:       soc,
	}
}
