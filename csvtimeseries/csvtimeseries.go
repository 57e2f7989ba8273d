// Package csvtimeseries turns a CSV column into the pre-materialized
// piecewise-constant function of time the core's event constructors accept
// (§9 design note) — the core itself never opens a file handle.
package csvtimeseries

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"
)

// PiecewiseConstant holds a resampled series: the value at time t is the
// value at the latest sample time <= t, held at the last observed value past
// the end of the series (and at the first value before its start).
type PiecewiseConstant struct {
	Times  []time.Time
	Values []float64
}

// Load reads column from the CSV file at path, starting at startTime and
// advancing stepDuration per row, multiplying every value by factor.
func Load(path, column string, startTime time.Time, stepDuration time.Duration, factor float64) (PiecewiseConstant, error) {
	f, err := os.Open(path)
	if err != nil {
		return PiecewiseConstant{}, fmt.Errorf("open csv time series %q: %w", path, err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f)
	if df.Err != nil {
		return PiecewiseConstant{}, fmt.Errorf("parse csv time series %q: %w", path, df.Err)
	}
	if !contains(df.Names(), column) {
		return PiecewiseConstant{}, fmt.Errorf("csv time series %q: column %q not found", path, column)
	}

	raw := df.Col(column).Float()
	values := make([]float64, len(raw))
	times := make([]time.Time, len(raw))
	for i, v := range raw {
		values[i] = v * factor
		times[i] = startTime.Add(time.Duration(i) * stepDuration)
	}

	return PiecewiseConstant{Times: times, Values: values}, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// ValueAt returns the held value at t: the series' last sample at or before
// t, clamped to the first sample if t precedes the series and to the last
// sample if t is past its end.
func (p PiecewiseConstant) ValueAt(t time.Time) float64 {
	if len(p.Times) == 0 {
		return 0
	}
	i := sort.Search(len(p.Times), func(i int) bool { return p.Times[i].After(t) })
	// i is the first sample strictly after t; the held value comes from i-1.
	if i == 0 {
		return p.Values[0]
	}
	return p.Values[i-1]
}

// AsSlice returns every (time, value) sample as parallel slices, used by
// config.Build to materialize one FixedLoadUpdate/LocalGenerationUpdate
// event per sample rather than re-querying ValueAt on every stepper tick.
func (p PiecewiseConstant) AsSlice() ([]time.Time, []float64) {
	return p.Times, p.Values
}
