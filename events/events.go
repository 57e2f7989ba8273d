package events

import (
	"sort"
	"time"
)

type entry struct {
	event    Event
	order    int
	consumed bool
}

// Events is the scenario's full timeline: every event known at build time,
// plus whatever a live pricefeed/schedulesource adapter appends while the
// stepper runs. Entries are kept sorted by StartTime.
type Events struct {
	entries []*entry
	next    int
}

// NewEvents returns an empty timeline.
func NewEvents() *Events {
	return &Events{}
}

// Add appends an event and re-sorts the timeline. Events takes no lock:
// callers that add events from another goroutine while the stepper is
// running own their own synchronization.
func (es *Events) Add(e Event) {
	es.entries = append(es.entries, &entry{event: e, order: len(es.entries)})
	es.sort()
}

func (es *Events) sort() {
	sort.SliceStable(es.entries, func(i, j int) bool {
		ti, tj := es.entries[i].event.StartTime(), es.entries[j].event.StartTime()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		if arrivalBeforeDeparture(es.entries[i].event, es.entries[j].event) {
			return true
		}
		if arrivalBeforeDeparture(es.entries[j].event, es.entries[i].event) {
			return false
		}
		return es.entries[i].order < es.entries[j].order
	})
}

// arrivalBeforeDeparture reports whether a is an arrival and b a departure of
// the same vehicle, in which case a must precede b regardless of insertion
// order: a vehicle can't depart before it has (again) arrived.
func arrivalBeforeDeparture(a, b Event) bool {
	arr, ok := a.(*ArrivalEvent)
	if !ok {
		return false
	}
	dep, ok := b.(*DepartureEvent)
	if !ok {
		return false
	}
	return arr.VehicleID == dep.VehicleID
}

// VisibleAt returns every event whose SignalTime is at or before t, in
// timeline order, regardless of whether it has started or been consumed.
// Strategies use this for look-ahead (e.g. schedule/price horizons).
func (es *Events) VisibleAt(t time.Time) []Event {
	var out []Event
	for _, en := range es.entries {
		if !en.event.SignalTime().After(t) {
			out = append(out, en.event)
		}
	}
	return out
}

// ActiveAt returns every not-yet-consumed event whose StartTime is at or
// before t, in timeline order. The stepper applies these each interval and
// then calls Consume on each.
func (es *Events) ActiveAt(t time.Time) []Event {
	var out []Event
	for _, en := range es.entries {
		if !en.consumed && !en.event.StartTime().After(t) {
			out = append(out, en.event)
		}
	}
	return out
}

// Consume marks e as applied so it is not returned by ActiveAt again.
func (es *Events) Consume(e Event) {
	for _, en := range es.entries {
		if en.event == e {
			en.consumed = true
			return
		}
	}
}

// All returns every event on the timeline, consumed or not, in timeline
// order.
func (es *Events) All() []Event {
	out := make([]Event, len(es.entries))
	for i, en := range es.entries {
		out[i] = en.event
	}
	return out
}
