package remoteresults

import (
	"time"

	"github.com/cepro/spiceev/report"
)

// supabaseRunSummary is the row shape uploaded to the Supabase "run_summary"
// table, the remoteresults equivalent of the teacher's supabaseBessReading /
// supabaseMeterReading conversion types.
type supabaseRunSummary struct {
	RunID                 string    `json:"run_id"`
	FinishedAt            time.Time `json:"finished_at"`
	Steps                 int       `json:"steps"`
	TotalEnergyChargedKWh float64   `json:"total_energy_charged_kwh"`
	TotalEnergyDischarged float64   `json:"total_energy_discharged_kwh"`
	TotalCost             float64   `json:"total_cost"`
	OverloadCount         int       `json:"overload_count"`
	NegativeSocAborts     int       `json:"negative_soc_aborts"`
	NonConvergenceCount   int       `json:"non_convergence_count"`
}

func newSupabaseRunSummary(runID string, finishedAt time.Time, s report.Summary) supabaseRunSummary {
	return supabaseRunSummary{
		RunID:                 runID,
		FinishedAt:            finishedAt,
		Steps:                 s.Steps,
		TotalEnergyChargedKWh: s.TotalEnergyChargedKWh,
		TotalEnergyDischarged: s.TotalEnergyDischarged,
		TotalCost:             s.TotalCost,
		OverloadCount:         s.OverloadCount,
		NegativeSocAborts:     s.NegativeSocAborts,
		NonConvergenceCount:   s.NonConvergenceCount,
	}
}
