package scenario

import "time"

// GCRecord is one grid connector's row within a StepRecord.
type GCRecord struct {
	GridPower         float64 // total current_load(), signed
	FixedLoad         float64
	FeedIn            float64 // local generation, as a positive kW figure
	Surplus           float64 // feed-in not absorbed by any load this step
	StationPowerTotal float64
	StationPower      map[string]float64
	BatteryPower      map[string]float64
	Price             float64
	ScheduleTarget    *float64
}

// StepRecord is one row of the output time series, per spec §6.
type StepRecord struct {
	StepIndex  int
	Time       time.Time
	GCs        map[string]GCRecord
	VehicleSoc map[string]float64
}

// TimeSeries is the append-only, scenario-owned output of the stepper.
type TimeSeries struct {
	Rows []StepRecord
}

func NewTimeSeries() *TimeSeries {
	return &TimeSeries{}
}

func (ts *TimeSeries) Append(r StepRecord) {
	ts.Rows = append(ts.Rows, r)
}
