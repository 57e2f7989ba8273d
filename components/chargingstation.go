package components

// ChargingStation is a vehicle's physical interface below a GridConnector.
type ChargingStation struct {
	ID               string
	ParentGC         string
	MaxPower         float64 // kW
	MinPower         float64 // kW; below this the station refuses to charge
	CurrentPower     float64 // kW set for this interval; +ve charge, -ve V2G discharge
	CurrentVehicleID string  // "" when free
}

func (cs *ChargingStation) IsFree() bool {
	return cs.CurrentVehicleID == ""
}

// IsDepot reports whether this station's name identifies it as a depot
// station (vs. an opportunity/"opp" station) for the Distributed strategy,
// by the `_depot`/`_opp` name-suffix convention described in §4.7.
func (cs *ChargingStation) IsDepot() bool {
	return hasSuffix(cs.ID, "_depot") || hasSuffix(cs.ID, "depot")
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
