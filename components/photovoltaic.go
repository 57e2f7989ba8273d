package components

// Photovoltaic is a local-generation source at a grid connector. Its output
// enters the simulation as a negative load (feed-in); NominalPower is used
// only for feed-in remuneration in reporting, not to cap the time series.
type Photovoltaic struct {
	ID           string
	ParentGC     string
	NominalPower float64 // kW
}
