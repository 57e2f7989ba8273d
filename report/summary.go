package report

import (
	"fmt"
	"strings"

	"github.com/cepro/spiceev/scenario"
	"github.com/dustin/go-humanize"
)

// Summary is the end-of-run KPI rollup printed by cmd/spiceev, grounded on
// the same "what actually happened" question the teacher's telemetry rows
// answer for a live site, just aggregated over a finished simulation.
type Summary struct {
	Steps                 int
	TotalEnergyChargedKWh float64
	TotalEnergyDischarged float64 // V2G / battery export, kWh
	TotalCost             float64
	FinalSoc              map[string]float64
	OverloadCount         int
	NegativeSocAborts     int
	NonConvergenceCount   int
}

// Summarize walks ts and tallies energy, cost and final SoC per vehicle.
// warnings is the set of non-fatal *scenario.OverloadError /
// *scenario.NonConvergenceWarning / *scenario.NegativeSocError values
// collected by the caller while running the stepper.
func Summarize(ts *scenario.TimeSeries, warnings []error) Summary {
	s := Summary{Steps: len(ts.Rows), FinalSoc: make(map[string]float64)}
	if len(ts.Rows) == 0 {
		return s
	}

	dtHours := 0.0
	if len(ts.Rows) >= 2 {
		dtHours = ts.Rows[1].Time.Sub(ts.Rows[0].Time).Hours()
	}

	for _, row := range ts.Rows {
		for _, gc := range row.GCs {
			if gc.StationPowerTotal > 0 {
				s.TotalEnergyChargedKWh += gc.StationPowerTotal * dtHours
			} else {
				s.TotalEnergyDischarged += -gc.StationPowerTotal * dtHours
			}
			s.TotalCost += gc.Price * gc.GridPower * dtHours
		}
		for vehicleID, soc := range row.VehicleSoc {
			s.FinalSoc[vehicleID] = soc
		}
	}

	for _, w := range warnings {
		switch w.(type) {
		case *scenario.OverloadError:
			s.OverloadCount++
		case *scenario.NonConvergenceWarning:
			s.NonConvergenceCount++
		case *scenario.NegativeSocError:
			s.NegativeSocAborts++
		}
	}

	return s
}

// String renders a short human-readable report, formatting large kWh/cost
// figures with thousands separators via go-humanize the way an operator
// dashboard would, rather than raw %f output.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s steps simulated\n", humanize.Comma(int64(s.Steps)))
	fmt.Fprintf(&b, "energy charged:    %s kWh\n", humanize.Commaf(s.TotalEnergyChargedKWh))
	fmt.Fprintf(&b, "energy discharged: %s kWh\n", humanize.Commaf(s.TotalEnergyDischarged))
	fmt.Fprintf(&b, "total cost:        %s\n", humanize.Commaf(s.TotalCost))
	if s.OverloadCount > 0 {
		fmt.Fprintf(&b, "overload warnings: %d\n", s.OverloadCount)
	}
	if s.NonConvergenceCount > 0 {
		fmt.Fprintf(&b, "non-convergence warnings: %d\n", s.NonConvergenceCount)
	}
	if s.NegativeSocAborts > 0 {
		fmt.Fprintf(&b, "negative-soc aborts: %d\n", s.NegativeSocAborts)
	}
	return b.String()
}
