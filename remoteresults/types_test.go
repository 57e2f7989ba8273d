package remoteresults

import (
	"testing"
	"time"

	"github.com/cepro/spiceev/report"
	"github.com/stretchr/testify/assert"
)

func TestNewSupabaseRunSummary_MapsEveryField(t *testing.T) {
	finished := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	s := report.Summary{
		Steps:                 96,
		TotalEnergyChargedKWh: 123.4,
		TotalEnergyDischarged: 5.6,
		TotalCost:             78.9,
		OverloadCount:         2,
		NegativeSocAborts:     1,
		NonConvergenceCount:   3,
	}

	row := newSupabaseRunSummary("run-1", finished, s)

	assert.Equal(t, "run-1", row.RunID)
	assert.True(t, row.FinishedAt.Equal(finished))
	assert.Equal(t, 96, row.Steps)
	assert.Equal(t, 123.4, row.TotalEnergyChargedKWh)
	assert.Equal(t, 5.6, row.TotalEnergyDischarged)
	assert.Equal(t, 78.9, row.TotalCost)
	assert.Equal(t, 2, row.OverloadCount)
	assert.Equal(t, 1, row.NegativeSocAborts)
	assert.Equal(t, 3, row.NonConvergenceCount)
}
