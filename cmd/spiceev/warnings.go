package main

import (
	"context"
	"log/slog"
	"strings"
)

// warningCounter tallies the non-fatal conditions the stepper logs via
// slog.Warn (overloads, non-convergence, aborted negative-SoC arrivals) so
// the final report.Summary can carry accurate counts even though Stepper.Step
// only logs these, it doesn't return them to the caller.
type warningCounter struct {
	overloads         int
	nonConvergences   int
	negativeSocAborts int
}

func newWarningCounter() *warningCounter {
	return &warningCounter{}
}

// wrap returns a slog.Handler that forwards every record to next after
// tallying it, so logging output is unaffected.
func (c *warningCounter) wrap(next slog.Handler) slog.Handler {
	return &warningCounterHandler{counter: c, next: next}
}

type warningCounterHandler struct {
	counter *warningCounter
	next    slog.Handler
}

func (h *warningCounterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *warningCounterHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level == slog.LevelWarn {
		text := r.Message + " " + attrErrorText(r)
		switch {
		case strings.Contains(text, "overloaded"):
			h.counter.overloads++
		case strings.Contains(text, "did not converge"):
			h.counter.nonConvergences++
		case strings.Contains(text, "soc would go negative"):
			h.counter.negativeSocAborts++
		}
	}
	return h.next.Handle(ctx, r)
}

// attrErrorText returns the string form of r's "error" attribute, if any,
// so the counter can match on the underlying *scenario.*Error message text
// rather than the fixed "event application failed" log message.
func attrErrorText(r slog.Record) string {
	var text string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "error" {
			text = a.Value.String()
			return false
		}
		return true
	})
	return text
}

func (h *warningCounterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &warningCounterHandler{counter: h.counter, next: h.next.WithAttrs(attrs)}
}

func (h *warningCounterHandler) WithGroup(name string) slog.Handler {
	return &warningCounterHandler{counter: h.counter, next: h.next.WithGroup(name)}
}
