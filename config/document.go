// Package config loads a scenario document (JSON or YAML) into a
// scenario.World ready for a Stepper, the way the teacher's config package
// turns a device/tariff JSON file into a ready-to-run ControllerConfig.
package config

import (
	"time"

	"github.com/cepro/spiceev/cartesian"
	"github.com/cepro/spiceev/components"
)

// Document is the raw §6 scenario-document shape, decoded directly from the
// (key-normalized) input JSON/YAML.
type Document struct {
	Scenario   ScenarioDoc   `json:"scenario"`
	Components ComponentsDoc `json:"components"`
	Events     EventsDoc     `json:"events"`
}

type ClockPairDoc struct {
	Start [2]int `json:"start"`
	End   [2]int `json:"end"`
}

type CoreStandingTimeDoc struct {
	Times             []ClockPairDoc `json:"times"`
	FullDays          []int          `json:"full_days"`
	WeekdayConvention string         `json:"weekday_convention"`
}

type ScenarioDoc struct {
	StartTime        time.Time            `json:"start_time"`
	IntervalMinutes  float64              `json:"interval"`
	NIntervals       *int                 `json:"n_intervals"`
	StopTime         *time.Time           `json:"stop_time"`
	CoreStandingTime *CoreStandingTimeDoc `json:"core_standing_time"`
}

type ComponentsDoc struct {
	VehicleTypes     map[string]VehicleTypeDoc     `json:"vehicle_types"`
	Vehicles         map[string]VehicleDoc         `json:"vehicles"`
	ChargingStations map[string]ChargingStationDoc `json:"charging_stations"`
	GridConnectors   map[string]GridConnectorDoc   `json:"grid_connectors"`
	Batteries        map[string]BatteryDoc         `json:"batteries"`
	Photovoltaics    map[string]PhotovoltaicDoc    `json:"photovoltaics"`
}

type VehicleTypeDoc struct {
	CapacityKWh        float64           `json:"capacity_kwh"`
	MileageKWhPer100Km float64           `json:"mileage_kwh_per_100km"`
	ChargingCurve      []cartesian.Point `json:"charging_curve"`
	MinChargingPower   float64           `json:"min_charging_power"`
	V2G                bool              `json:"v2g"`
	V2GPowerFactor     float64           `json:"v2g_power_factor"`
	DischargeLimit     float64           `json:"discharge_limit"`
	BatteryEfficiency  float64           `json:"battery_efficiency"`
}

type VehicleDoc struct {
	VehicleType              string     `json:"vehicle_type"`
	Soc                       float64    `json:"soc"`
	DesiredSoc                float64    `json:"desired_soc"`
	ConnectedChargingStation  string     `json:"connected_charging_station"`
	EstimatedTimeOfDeparture  *time.Time `json:"estimated_time_of_departure"`
}

type ChargingStationDoc struct {
	Parent   string  `json:"parent"`
	MaxPower float64 `json:"max_power"`
	MinPower float64 `json:"min_power"`
}

type GridConnectorDoc struct {
	MaxPower     float64                  `json:"max_power"`
	VoltageLevel string                   `json:"voltage_level"`
	Cost         *components.CostDocument `json:"cost"`
	GridOperator string                   `json:"grid_operator"`
	NumberCS     int                      `json:"number_cs"`
}

// BatteryDoc describes a stationary battery; Capacity of -1 denotes an
// unlimited sink/source per §6.
type BatteryDoc struct {
	Parent        string            `json:"parent"`
	Capacity      float64           `json:"capacity"`
	ChargingCurve []cartesian.Point `json:"charging_curve"`
	Efficiency    float64           `json:"efficiency"`
}

type PhotovoltaicDoc struct {
	Parent       string  `json:"parent"`
	NominalPower float64 `json:"nominal_power"`
}

type EventsDoc struct {
	GridOperatorSignals []GridOperatorSignalDoc `json:"grid_operator_signals"`
	FixedLoad           []NamedSeriesEventDoc   `json:"fixed_load"`
	LocalGeneration     []NamedSeriesEventDoc   `json:"local_generation"`
	FixedLoadCSV        []CSVSeriesDoc          `json:"fixed_load_csv"`
	LocalGenerationCSV  []CSVSeriesDoc          `json:"local_generation_csv"`
	VehicleArrivals     []VehicleArrivalDoc     `json:"vehicle_arrivals"`
	VehicleDepartures   []VehicleDepartureDoc   `json:"vehicle_departures"`
}

// CSVSeriesDoc points at a column of a CSV file to be resampled into one
// FixedLoadUpdate/LocalGenerationUpdate event per row via csvtimeseries.Load,
// rather than listing every reading out as a literal NamedSeriesEventDoc.
type CSVSeriesDoc struct {
	GridConnector  string    `json:"grid_connector"`
	Name           string    `json:"name"`
	Path           string    `json:"path"`
	Column         string    `json:"column"`
	StartTime      time.Time `json:"start_time"`
	StepMinutes    float64   `json:"step_minutes"`
	Factor         float64   `json:"factor"`
	SignalLeadMins float64   `json:"signal_lead_minutes"`
}

type GridOperatorSignalDoc struct {
	GridConnector string                   `json:"grid_connector"`
	SignalTime    time.Time                `json:"signal_time"`
	StartTime     time.Time                `json:"start_time"`
	MaxPower      *float64                 `json:"max_power"`
	Cost          *components.CostDocument `json:"cost"`
	Windows       *bool                    `json:"windows"`
	Schedule      *float64                 `json:"schedule"`
}

// NamedSeriesEventDoc is one literal reading of a fixed-load or
// local-generation named series, the scenario-document analogue of one
// resampled point out of a csvtimeseries.PiecewiseConstant.
type NamedSeriesEventDoc struct {
	GridConnector string    `json:"grid_connector"`
	Name          string    `json:"name"`
	SignalTime    time.Time `json:"signal_time"`
	StartTime     time.Time `json:"start_time"`
	PowerKW       float64   `json:"power_kw"`
}

type VehicleArrivalDoc struct {
	Vehicle                  string     `json:"vehicle"`
	Station                  string     `json:"station"`
	SignalTime               time.Time  `json:"signal_time"`
	StartTime                time.Time  `json:"start_time"`
	SocDelta                 float64    `json:"soc_delta"`
	DesiredSoc               float64    `json:"desired_soc"`
	EstimatedTimeOfDeparture *time.Time `json:"estimated_time_of_departure"`
}

type VehicleDepartureDoc struct {
	Vehicle                string     `json:"vehicle"`
	SignalTime             time.Time  `json:"signal_time"`
	StartTime              time.Time  `json:"start_time"`
	EstimatedTimeOfArrival *time.Time `json:"estimated_time_of_arrival"`
}
