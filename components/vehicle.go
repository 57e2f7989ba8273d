package components

import (
	"time"

	"github.com/cepro/spiceev/battery"
)

// Vehicle exists for the whole simulation; it is either Connected to a
// charging station or Away on a trip.
type Vehicle struct {
	ID       string
	TypeName string

	Battery *battery.Battery

	ConnectedChargingStation string // "" when away
	EstimatedTimeOfDeparture *time.Time
	EstimatedTimeOfArrival   *time.Time

	DesiredSoc float64

	// Schedule is an optional per-interval target power (kW) the vehicle is
	// asked to follow, used by the Schedule strategy's individual mode.
	Schedule *float64
}

func (v *Vehicle) IsConnected() bool {
	return v.ConnectedChargingStation != ""
}

// EnergyToDesiredSoc returns the kWh still needed to reach DesiredSoc,
// accounting for charging efficiency; zero if already there.
func (v *Vehicle) EnergyToDesiredSoc() float64 {
	delta := v.DesiredSoc - v.Battery.Soc
	if delta <= 0 {
		return 0
	}
	return delta * v.Battery.Capacity / v.Battery.Efficiency
}

// StandingTime returns how long the vehicle remains connected from `now`,
// given its estimated departure; ok is false if no departure is known.
func (v *Vehicle) StandingTime(now time.Time) (time.Duration, bool) {
	if v.EstimatedTimeOfDeparture == nil {
		return 0, false
	}
	d := v.EstimatedTimeOfDeparture.Sub(now)
	if d < 0 {
		d = 0
	}
	return d, true
}

// Arrive attaches the vehicle to a station, applies the signed SoC delta
// accumulated while away (clamped per the battery's negative-SoC policy),
// and replaces the departure/desired-SoC bookkeeping per §3/§6.
func (v *Vehicle) Arrive(stationID string, socDelta float64, desiredSoc float64, departure *time.Time) error {
	if err := v.Battery.ApplySocDelta(socDelta); err != nil {
		return err
	}
	v.ConnectedChargingStation = stationID
	v.EstimatedTimeOfArrival = nil
	v.DesiredSoc = desiredSoc
	v.EstimatedTimeOfDeparture = departure
	return nil
}

// Depart detaches the vehicle from its station and records an estimated
// arrival marker for the next trip.
func (v *Vehicle) Depart(eta *time.Time) {
	v.ConnectedChargingStation = ""
	v.EstimatedTimeOfDeparture = nil
	v.EstimatedTimeOfArrival = eta
}
