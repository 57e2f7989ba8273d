// Package simparams centralizes the numerical bounds shared by the battery's
// iterative solvers and every charging strategy, so they all agree on what
// "converged" and "cheap enough" mean.
package simparams

import "time"

const (
	// EPS is the floor below which a numerical search is considered converged,
	// and the tolerance used when comparing a GC's load against its max power.
	EPS = 1e-5

	// Iterations bounds the binary search used by Balanced-style power
	// searches and the battery's iterative load solver.
	Iterations = 12

	// PriceThreshold is the ct/kWh (or equivalent currency unit) at or below
	// which Greedy is allowed to charge a vehicle beyond its desired SoC.
	PriceThreshold = 0.0

	// Horizon is the look-ahead window that Balanced-market uses to scan
	// upcoming prices.
	Horizon = 24 * time.Hour

	// CHorizon is the reserved depot look-ahead. No strategy reads it:
	// Distributed re-orders its depot vehicles every interval instead.
	CHorizon = 3 * time.Minute
)
