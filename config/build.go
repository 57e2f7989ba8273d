package config

import (
	"fmt"
	"math"
	"time"

	"github.com/cepro/spiceev/battery"
	"github.com/cepro/spiceev/components"
	"github.com/cepro/spiceev/csvtimeseries"
	"github.com/cepro/spiceev/events"
	"github.com/cepro/spiceev/loadingcurve"
	"github.com/cepro/spiceev/scenario"
	timeutils "github.com/cepro/spiceev/time_utils"
)

var validVoltageLevels = map[string]components.VoltageLevel{
	"HV":     components.VoltageHV,
	"HV/MV":  components.VoltageHVMV,
	"MV":     components.VoltageMV,
	"MV/LV":  components.VoltageMVLV,
	"LV":     components.VoltageLV,
	"eHV":    components.VoltageEHV,
	"eHV/HV": components.VoltageEHVHV,
}

// Build validates d and constructs a ready-to-run scenario.World, including
// every declared component and the full event timeline. All validation
// failures are returned as *scenario.ValidationError so callers can
// errors.As on them and exit with the documented non-zero CLI code.
func Build(d Document) (*scenario.World, error) {
	if d.Scenario.IntervalMinutes <= 0 {
		return nil, &scenario.ValidationError{Field: "scenario.interval", Message: "must be a positive number of minutes"}
	}
	if d.Scenario.NIntervals == nil && d.Scenario.StopTime == nil {
		return nil, &scenario.ValidationError{Field: "scenario", Message: "exactly one of n_intervals or stop_time must be set"}
	}
	if d.Scenario.NIntervals != nil && d.Scenario.StopTime != nil {
		return nil, &scenario.ValidationError{Field: "scenario", Message: "n_intervals and stop_time are mutually exclusive"}
	}

	interval := time.Duration(d.Scenario.IntervalMinutes * float64(time.Minute))
	w := scenario.NewWorld(d.Scenario.StartTime, interval)

	if err := buildCoreStandingTime(w, d.Scenario.CoreStandingTime); err != nil {
		return nil, err
	}
	if err := buildVehicleTypes(w, d.Components.VehicleTypes); err != nil {
		return nil, err
	}
	if err := buildGridConnectors(w, d.Components.GridConnectors); err != nil {
		return nil, err
	}
	if err := buildChargingStations(w, d.Components.ChargingStations); err != nil {
		return nil, err
	}
	if err := buildVehicles(w, d.Components.Vehicles); err != nil {
		return nil, err
	}
	if err := buildBatteries(w, d.Components.Batteries); err != nil {
		return nil, err
	}
	if err := buildPhotovoltaics(w, d.Components.Photovoltaics); err != nil {
		return nil, err
	}
	if err := buildEvents(w, d.Events); err != nil {
		return nil, err
	}

	return w, nil
}

// NIntervals returns how many steps the Stepper should run: either the
// document's explicit n_intervals, or however many whole intervals fit
// between start_time and stop_time.
func NIntervals(d Document) (int, error) {
	if d.Scenario.NIntervals != nil {
		return *d.Scenario.NIntervals, nil
	}
	if d.Scenario.StopTime == nil {
		return 0, &scenario.ValidationError{Field: "scenario", Message: "exactly one of n_intervals or stop_time must be set"}
	}
	interval := time.Duration(d.Scenario.IntervalMinutes * float64(time.Minute))
	total := d.Scenario.StopTime.Sub(d.Scenario.StartTime)
	if total < 0 || interval <= 0 {
		return 0, &scenario.ValidationError{Field: "scenario.stop_time", Message: "stop_time must be after start_time"}
	}
	return int(total / interval), nil
}

func buildCoreStandingTime(w *scenario.World, doc *CoreStandingTimeDoc) error {
	if doc == nil {
		return nil
	}
	if len(doc.FullDays) > 0 && doc.WeekdayConvention == "" {
		return &scenario.ValidationError{
			Field:   "scenario.core_standing_time.weekday_convention",
			Message: "must be set explicitly to \"iso\" or \"zero_based\" when full_days is non-empty",
		}
	}
	convention := timeutils.WeekdayConvention(doc.WeekdayConvention)
	if doc.WeekdayConvention != "" {
		if err := convention.Validate(); err != nil {
			return &scenario.ValidationError{Field: "scenario.core_standing_time.weekday_convention", Message: err.Error()}
		}
	}

	loc := w.StartTime.Location()
	periods := make([]timeutils.ClockTimePeriod, 0, len(doc.Times))
	for _, t := range doc.Times {
		periods = append(periods, timeutils.ClockTimePeriod{
			Start: timeutils.ClockTime{Hour: t.Start[0], Minute: t.Start[1], Location: loc},
			End:   timeutils.ClockTime{Hour: t.End[0], Minute: t.End[1], Location: loc},
		})
	}

	w.CoreStandingTime = &scenario.CoreStandingTime{
		Times:             periods,
		FullDays:          doc.FullDays,
		WeekdayConvention: convention,
	}
	return nil
}

func buildVehicleTypes(w *scenario.World, docs map[string]VehicleTypeDoc) error {
	for name, d := range docs {
		curve, err := loadingcurve.New(d.ChargingCurve)
		if err != nil {
			return &scenario.ValidationError{Field: "components.vehicle_types." + name + ".charging_curve", Message: err.Error()}
		}
		w.VehicleTypes[name] = &components.VehicleType{
			Name:               name,
			CapacityKWh:        d.CapacityKWh,
			MileageKWhPer100Km: d.MileageKWhPer100Km,
			ChargingCurve:      curve,
			MinChargingPower:   d.MinChargingPower,
			V2G:                d.V2G,
			V2GPowerFactor:     d.V2GPowerFactor,
			DischargeLimit:     d.DischargeLimit,
			BatteryEfficiency:  d.BatteryEfficiency,
		}
	}
	return nil
}

func buildGridConnectors(w *scenario.World, docs map[string]GridConnectorDoc) error {
	for id, d := range docs {
		voltage, ok := validVoltageLevels[d.VoltageLevel]
		if !ok {
			return &scenario.ValidationError{Field: "components.grid_connectors." + id + ".voltage_level", Message: fmt.Sprintf("unrecognised voltage level %q", d.VoltageLevel)}
		}
		maxPower := d.MaxPower
		if maxPower <= 0 {
			maxPower = math.Inf(1)
		}
		gc := components.NewGridConnector(id, maxPower, voltage)
		gc.GridOperator = d.GridOperator
		gc.NumberCS = d.NumberCS
		if d.Cost != nil {
			cost, err := d.Cost.Build()
			if err != nil {
				return &scenario.ValidationError{Field: "components.grid_connectors." + id + ".cost", Message: err.Error()}
			}
			gc.SetCost(cost)
		}
		w.GridConnectors[id] = gc
	}
	return nil
}

func buildChargingStations(w *scenario.World, docs map[string]ChargingStationDoc) error {
	for id, d := range docs {
		if _, ok := w.GridConnectors[d.Parent]; !ok {
			return &scenario.ValidationError{Field: "components.charging_stations." + id + ".parent", Message: "unknown grid connector " + d.Parent}
		}
		w.ChargingStations[id] = &components.ChargingStation{
			ID:       id,
			ParentGC: d.Parent,
			MaxPower: d.MaxPower,
			MinPower: d.MinPower,
		}
	}
	return nil
}

func buildVehicles(w *scenario.World, docs map[string]VehicleDoc) error {
	for id, d := range docs {
		vt, ok := w.VehicleTypes[d.VehicleType]
		if !ok {
			return &scenario.ValidationError{Field: "components.vehicles." + id + ".vehicle_type", Message: "unknown vehicle type " + d.VehicleType}
		}
		v := &components.Vehicle{
			ID:         id,
			TypeName:   d.VehicleType,
			Battery:    battery.New(vt.CapacityKWh, d.Soc, vt.ChargingCurve, vt.BatteryEfficiency),
			DesiredSoc: d.DesiredSoc,
		}
		if d.ConnectedChargingStation != "" {
			cs, ok := w.ChargingStations[d.ConnectedChargingStation]
			if !ok {
				return &scenario.ValidationError{Field: "components.vehicles." + id + ".connected_charging_station", Message: "unknown charging station " + d.ConnectedChargingStation}
			}
			if !cs.IsFree() {
				return &scenario.ValidationError{Field: "components.vehicles." + id + ".connected_charging_station", Message: "station " + d.ConnectedChargingStation + " already occupied"}
			}
			v.ConnectedChargingStation = d.ConnectedChargingStation
			v.EstimatedTimeOfDeparture = d.EstimatedTimeOfDeparture
			cs.CurrentVehicleID = id
		}
		w.Vehicles[id] = v
	}
	return nil
}

func buildBatteries(w *scenario.World, docs map[string]BatteryDoc) error {
	for id, d := range docs {
		if _, ok := w.GridConnectors[d.Parent]; !ok {
			return &scenario.ValidationError{Field: "components.batteries." + id + ".parent", Message: "unknown grid connector " + d.Parent}
		}
		curve, err := loadingcurve.New(d.ChargingCurve)
		if err != nil {
			return &scenario.ValidationError{Field: "components.batteries." + id + ".charging_curve", Message: err.Error()}
		}
		capacity := d.Capacity
		if capacity < 0 {
			capacity = math.Inf(1)
		}
		w.StationaryBatteries[id] = &components.StationaryBattery{
			ID:       id,
			ParentGC: d.Parent,
			Battery:  battery.New(capacity, 0, curve, d.Efficiency),
		}
	}
	return nil
}

func buildPhotovoltaics(w *scenario.World, docs map[string]PhotovoltaicDoc) error {
	for id, d := range docs {
		if _, ok := w.GridConnectors[d.Parent]; !ok {
			return &scenario.ValidationError{Field: "components.photovoltaics." + id + ".parent", Message: "unknown grid connector " + d.Parent}
		}
		w.Photovoltaics[id] = &components.Photovoltaic{ID: id, ParentGC: d.Parent, NominalPower: d.NominalPower}
	}
	return nil
}

// addCSVSeriesEvents resamples one CSVSeriesDoc via csvtimeseries.Load and
// adds one event per row, offsetting the signal time by SignalLeadMins so the
// event becomes visible to look-ahead strategies before it takes effect.
func addCSVSeriesEvents(w *scenario.World, e CSVSeriesDoc, field string, build func(events.Base, string, string, float64) events.Event) error {
	if _, ok := w.GridConnectors[e.GridConnector]; !ok {
		return &scenario.ValidationError{Field: "events." + field, Message: "unknown grid connector " + e.GridConnector}
	}
	if e.StepMinutes <= 0 {
		return &scenario.ValidationError{Field: "events." + field + ".step_minutes", Message: "must be a positive number of minutes"}
	}
	factor := e.Factor
	if factor == 0 {
		factor = 1
	}
	step := time.Duration(e.StepMinutes * float64(time.Minute))
	series, err := csvtimeseries.Load(e.Path, e.Column, e.StartTime, step, factor)
	if err != nil {
		return &scenario.ValidationError{Field: "events." + field + ".path", Message: err.Error()}
	}
	lead := time.Duration(e.SignalLeadMins * float64(time.Minute))
	times, values := series.AsSlice()
	for i, start := range times {
		w.Events.Add(build(events.Base{Signal: start.Add(-lead), Start: start}, e.GridConnector, e.Name, values[i]))
	}
	return nil
}

func buildEvents(w *scenario.World, d EventsDoc) error {
	for _, e := range d.GridOperatorSignals {
		if _, ok := w.GridConnectors[e.GridConnector]; !ok {
			return &scenario.ValidationError{Field: "events.grid_operator_signals", Message: "unknown grid connector " + e.GridConnector}
		}
		var cost components.Cost
		if e.Cost != nil {
			built, err := e.Cost.Build()
			if err != nil {
				return &scenario.ValidationError{Field: "events.grid_operator_signals.cost", Message: err.Error()}
			}
			cost = built
		}
		w.Events.Add(&events.GridOperatorSignal{
			Base:            events.Base{Signal: e.SignalTime, Start: e.StartTime},
			GridConnectorID: e.GridConnector,
			MaxPower:        e.MaxPower,
			Cost:            cost,
			Windows:         e.Windows,
			Schedule:        e.Schedule,
		})
	}
	for _, e := range d.FixedLoad {
		if _, ok := w.GridConnectors[e.GridConnector]; !ok {
			return &scenario.ValidationError{Field: "events.fixed_load", Message: "unknown grid connector " + e.GridConnector}
		}
		w.Events.Add(&events.FixedLoadUpdate{
			Base:            events.Base{Signal: e.SignalTime, Start: e.StartTime},
			GridConnectorID: e.GridConnector,
			Name:            e.Name,
			PowerKW:         e.PowerKW,
		})
	}
	for _, e := range d.LocalGeneration {
		if _, ok := w.GridConnectors[e.GridConnector]; !ok {
			return &scenario.ValidationError{Field: "events.local_generation", Message: "unknown grid connector " + e.GridConnector}
		}
		w.Events.Add(&events.LocalGenerationUpdate{
			Base:            events.Base{Signal: e.SignalTime, Start: e.StartTime},
			GridConnectorID: e.GridConnector,
			Name:            e.Name,
			PowerKW:         e.PowerKW,
		})
	}
	for _, e := range d.FixedLoadCSV {
		if err := addCSVSeriesEvents(w, e, "fixed_load_csv", func(base events.Base, gc, name string, power float64) events.Event {
			return &events.FixedLoadUpdate{Base: base, GridConnectorID: gc, Name: name, PowerKW: power}
		}); err != nil {
			return err
		}
	}
	for _, e := range d.LocalGenerationCSV {
		if err := addCSVSeriesEvents(w, e, "local_generation_csv", func(base events.Base, gc, name string, power float64) events.Event {
			return &events.LocalGenerationUpdate{Base: base, GridConnectorID: gc, Name: name, PowerKW: power}
		}); err != nil {
			return err
		}
	}
	for _, e := range d.VehicleArrivals {
		if _, ok := w.Vehicles[e.Vehicle]; !ok {
			return &scenario.ValidationError{Field: "events.vehicle_arrivals", Message: "unknown vehicle " + e.Vehicle}
		}
		if _, ok := w.ChargingStations[e.Station]; !ok {
			return &scenario.ValidationError{Field: "events.vehicle_arrivals", Message: "unknown charging station " + e.Station}
		}
		if e.SocDelta > 0 {
			return &scenario.ValidationError{Field: "events.vehicle_arrivals.soc_delta", Message: "soc_delta must be <= 0"}
		}
		w.Events.Add(&events.ArrivalEvent{
			Base:                     events.Base{Signal: e.SignalTime, Start: e.StartTime},
			VehicleID:                e.Vehicle,
			StationID:                e.Station,
			SocDelta:                 e.SocDelta,
			DesiredSoc:               e.DesiredSoc,
			EstimatedTimeOfDeparture: e.EstimatedTimeOfDeparture,
		})
	}
	for _, e := range d.VehicleDepartures {
		if _, ok := w.Vehicles[e.Vehicle]; !ok {
			return &scenario.ValidationError{Field: "events.vehicle_departures", Message: "unknown vehicle " + e.Vehicle}
		}
		w.Events.Add(&events.DepartureEvent{
			Base:                   events.Base{Signal: e.SignalTime, Start: e.StartTime},
			VehicleID:              e.Vehicle,
			EstimatedTimeOfArrival: e.EstimatedTimeOfArrival,
		})
	}
	return nil
}
