package components

import "github.com/cepro/spiceev/battery"

// StationaryBattery is a Battery attached to a grid connector; strategies
// treat it as a load that may be positive (charging) or negative
// (discharging).
type StationaryBattery struct {
	ID       string
	ParentGC string
	Battery  *battery.Battery

	// CurrentPower is the signed power (kW) set for this interval by the
	// active strategy; +ve charge, -ve discharge.
	CurrentPower float64
}
