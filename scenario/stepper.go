package scenario

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cepro/spiceev/battery"
	"github.com/cepro/spiceev/components"
	"github.com/cepro/spiceev/events"
	"github.com/cepro/spiceev/simparams"
)

// Named-load prefixes used on GridConnector.currentLoads to distinguish the
// four contributing sources within the flat additive map.
const (
	FixedLoadPrefix = "fixed:"
	GenPrefix       = "gen:"
	StationPrefix   = "cs:"
	BatteryPrefix   = "batt:"
)

// Strategy allocates per-interval power to charging stations and stationary
// batteries. Step is called once per interval, after events are applied and
// before integration; it must set ChargingStation.CurrentPower and
// StationaryBattery.CurrentPower for every component it wants to act on and
// return before the stepper proceeds.
type Strategy interface {
	Step(w *World) error
}

// Stepper drives the World forward one interval at a time, per the §4.5
// per-step procedure.
type Stepper struct {
	World      *World
	Strategy   Strategy
	TimeSeries *TimeSeries
}

// NewStepper returns a Stepper ready to run, with a fresh TimeSeries.
func NewStepper(w *World, s Strategy) *Stepper {
	return &Stepper{World: w, Strategy: s, TimeSeries: NewTimeSeries()}
}

// Run advances the stepper n times or until ctx is cancelled, whichever
// comes first.
func (st *Stepper) Run(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := st.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step advances the world by one interval: apply due events, let the
// strategy allocate power, integrate batteries, and record the resulting
// row. Recoverable per-step errors (negative SoC, overload) are logged and
// do not stop the run; only a strategy error aborts the step early.
func (st *Stepper) Step() error {
	w := st.World
	w.CurrentTime = w.CurrentTime.Add(w.Interval)
	w.StepIndex++

	for _, e := range w.Events.ActiveAt(w.CurrentTime) {
		if err := applyEvent(w, e); err != nil {
			slog.Warn("event application failed", "step", w.StepIndex, "error", err)
		}
		w.Events.Consume(e)
	}

	for _, gcID := range w.GridConnectorIDs() {
		gc := w.GridConnectors[gcID]
		for _, csID := range w.StationsAtGC(gcID) {
			gc.AddLoad(StationPrefix+csID, 0)
		}
	}
	for _, battID := range w.StationaryBatteryIDs() {
		batt := w.StationaryBatteries[battID]
		w.GridConnectors[batt.ParentGC].AddLoad(BatteryPrefix+battID, 0)
	}

	if st.Strategy != nil {
		if err := st.Strategy.Step(w); err != nil {
			return fmt.Errorf("step %d: strategy: %w", w.StepIndex, err)
		}
	}

	dt := w.Interval.Hours()
	for _, csID := range w.ChargingStationIDs() {
		cs := w.ChargingStations[csID]
		v := w.VehicleAtStation(csID)
		if v == nil {
			cs.CurrentPower = 0
			continue
		}
		floorSoc := 0.0
		if vt := w.VehicleTypes[v.TypeName]; vt != nil {
			floorSoc = vt.DischargeLimit
		}
		actual := integrate(v.Battery, cs.CurrentPower, dt, floorSoc)
		cs.CurrentPower = actual
		w.GridConnectors[cs.ParentGC].AddLoad(StationPrefix+csID, actual)
	}
	for _, battID := range w.StationaryBatteryIDs() {
		batt := w.StationaryBatteries[battID]
		actual := integrate(batt.Battery, batt.CurrentPower, dt, 0)
		batt.CurrentPower = actual
		w.GridConnectors[batt.ParentGC].AddLoad(BatteryPrefix+battID, actual)
	}

	for _, gcID := range w.GridConnectorIDs() {
		gc := w.GridConnectors[gcID]
		if gc.IsOverloaded(simparams.EPS) {
			slog.Warn("grid connector overloaded", "step", w.StepIndex, "gc", gcID, "load", gc.CurrentLoad(), "max_power", gc.MaxPower)
		}
	}

	st.TimeSeries.Append(st.snapshot())
	return nil
}

// integrate applies one interval of charge (power>=0) or discharge
// (power<0) to b, never discharging below floorSoc, and returns the actual
// power delivered, per §4.5 step 5.
func integrate(b *battery.Battery, power, dt, floorSoc float64) float64 {
	if power >= 0 {
		actual, _ := b.Load(power, dt)
		return actual
	}
	actual, _ := b.Unload(-power, dt, floorSoc)
	return -actual
}

func (st *Stepper) snapshot() StepRecord {
	w := st.World
	row := StepRecord{
		StepIndex:  w.StepIndex,
		Time:       w.CurrentTime,
		GCs:        make(map[string]GCRecord),
		VehicleSoc: make(map[string]float64),
	}
	for _, gcID := range w.GridConnectorIDs() {
		gc := w.GridConnectors[gcID]
		stationPower := make(map[string]float64)
		total := 0.0
		for _, csID := range w.StationsAtGC(gcID) {
			p := w.ChargingStations[csID].CurrentPower
			stationPower[csID] = p
			total += p
		}
		batteryPower := make(map[string]float64)
		for _, battID := range w.StationaryBatteryIDs() {
			batt := w.StationaryBatteries[battID]
			if batt.ParentGC == gcID {
				batteryPower[battID] = batt.CurrentPower
			}
		}
		feedIn := -gc.LoadsWithPrefix(GenPrefix)
		price := 0.0
		if gc.Cost != nil {
			price = gc.Cost.Evaluate(gc.CurrentLoad())
		}
		row.GCs[gcID] = GCRecord{
			GridPower:         gc.CurrentLoad(),
			FixedLoad:         gc.LoadsWithPrefix(FixedLoadPrefix),
			FeedIn:            feedIn,
			Surplus:           surplusAt(gc),
			StationPowerTotal: total,
			StationPower:      stationPower,
			BatteryPower:      batteryPower,
			Price:             price,
			ScheduleTarget:    gc.Schedule,
		}
	}
	for _, vID := range w.VehicleIDs() {
		row.VehicleSoc[vID] = w.Vehicles[vID].Battery.Soc
	}
	return row
}

// surplusAt returns feed-in not absorbed by any other load this step: the
// negative part of current_load not offset by fixed/station/battery draw.
func surplusAt(gc *components.GridConnector) float64 {
	load := gc.CurrentLoad()
	if load < 0 {
		return -load
	}
	return 0
}

func applyEvent(w *World, e events.Event) error {
	switch ev := e.(type) {
	case *events.ArrivalEvent:
		return applyArrival(w, ev)
	case *events.DepartureEvent:
		return applyDeparture(w, ev)
	case *events.FixedLoadUpdate:
		gc, ok := w.GridConnectors[ev.GridConnectorID]
		if !ok {
			return &ValidationError{Field: "fixed_load.gc", Message: "unknown grid connector " + ev.GridConnectorID}
		}
		gc.AddLoad(FixedLoadPrefix+ev.Name, ev.PowerKW)
		return nil
	case *events.LocalGenerationUpdate:
		gc, ok := w.GridConnectors[ev.GridConnectorID]
		if !ok {
			return &ValidationError{Field: "local_generation.gc", Message: "unknown grid connector " + ev.GridConnectorID}
		}
		gc.AddLoad(GenPrefix+ev.Name, -ev.PowerKW)
		return nil
	case *events.GridOperatorSignal:
		gc, ok := w.GridConnectors[ev.GridConnectorID]
		if !ok {
			return &ValidationError{Field: "grid_operator_signal.gc", Message: "unknown grid connector " + ev.GridConnectorID}
		}
		if ev.MaxPower != nil {
			gc.SetMaxPower(*ev.MaxPower)
		}
		if ev.Cost != nil {
			gc.SetCost(ev.Cost)
		}
		if ev.Windows != nil {
			gc.SetWindows(*ev.Windows)
		}
		if ev.Schedule != nil {
			gc.SetSchedule(*ev.Schedule)
		}
		return nil
	case *events.ScheduleUpdate:
		if ev.VehicleID != "" {
			v, ok := w.Vehicles[ev.VehicleID]
			if !ok {
				return &ValidationError{Field: "schedule_update.vehicle", Message: "unknown vehicle " + ev.VehicleID}
			}
			kw := ev.PowerKW
			v.Schedule = &kw
			return nil
		}
		gc, ok := w.GridConnectors[ev.GridConnectorID]
		if !ok {
			return &ValidationError{Field: "schedule_update.gc", Message: "unknown grid connector " + ev.GridConnectorID}
		}
		gc.SetSchedule(ev.PowerKW)
		return nil
	default:
		return &ValidationError{Field: "event", Message: fmt.Sprintf("unknown event type %T", e)}
	}
}

func applyArrival(w *World, ev *events.ArrivalEvent) error {
	v, ok := w.Vehicles[ev.VehicleID]
	if !ok {
		return &ValidationError{Field: "arrival.vehicle", Message: "unknown vehicle " + ev.VehicleID}
	}
	cs, ok := w.ChargingStations[ev.StationID]
	if !ok {
		return &ValidationError{Field: "arrival.station", Message: "unknown charging station " + ev.StationID}
	}
	if !cs.IsFree() {
		return &ValidationError{Field: "arrival.station", Message: "station " + ev.StationID + " already occupied"}
	}
	switch w.NegativeSocPolicy {
	case NegativeSocContinue:
		v.Battery.AllowNegativeSoc = true
	case NegativeSocReset:
		v.Battery.ResetNegativeSoc = true
	}
	if err := v.Arrive(ev.StationID, ev.SocDelta, ev.DesiredSoc, ev.EstimatedTimeOfDeparture); err != nil {
		if negErr, ok := err.(battery.NegativeSocError); ok {
			return &NegativeSocError{VehicleID: ev.VehicleID, Soc: negErr.Soc}
		}
		return err
	}
	cs.CurrentVehicleID = ev.VehicleID
	return nil
}

func applyDeparture(w *World, ev *events.DepartureEvent) error {
	v, ok := w.Vehicles[ev.VehicleID]
	if !ok {
		return &ValidationError{Field: "departure.vehicle", Message: "unknown vehicle " + ev.VehicleID}
	}
	if v.IsConnected() {
		cs := w.ChargingStations[v.ConnectedChargingStation]
		cs.CurrentVehicleID = ""
		cs.CurrentPower = 0
	}
	v.Depart(ev.EstimatedTimeOfArrival)
	return nil
}
