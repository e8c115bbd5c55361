// Package correlate merges related events of one source.
//
// A Strategy sees every parsed event of a tick in line order and decides
// what reaches the batch handed to the dispatcher. Correlation state lives in
// the strategy value, so each pipeline owns its own and nothing is shared
// between sources. State is never persisted.
package correlate

import (
	"time"

	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

// DefaultMaxAge is how long a Before snapshot waits for its After.
const DefaultMaxAge = 5 * time.Second

// Batch collects the events emitted during one tick.
type Batch struct {
	Events []event.Event
	// Dropped counts events consumed or discarded by correlation.
	Dropped int
}

// Emit appends ev to the batch.
func (b *Batch) Emit(ev event.Event) {
	b.Events = append(b.Events, ev)
}

func (b *Batch) drop() {
	b.Dropped++
}

// Strategy correlates the event stream of one source.
type Strategy interface {
	// Apply handles one parsed event. Implementations may emit it, buffer
	// it, enrich an event already in out, or discard it.
	Apply(ev event.Event, out *Batch)
	// Close is called once at the end of every tick.
	Close(out *Batch)
}

// LineSkipper is implemented by strategies that react to lines which
// matched no rule.
type LineSkipper interface {
	// Skip is called for a non-blank line that produced no event.
	Skip(out *Batch)
}

// Skip reports an unmatched line to s when s is a LineSkipper.
func Skip(s Strategy, out *Batch) {
	if ls, ok := s.(LineSkipper); ok {
		ls.Skip(out)
	}
}

// For returns a fresh strategy for category c.
func For(c event.Category) Strategy {
	switch c {
	case event.CategoryEconomy:
		return NewBeforeAfter(DefaultMaxAge)
	case event.CategoryFame:
		return NewSummaryDetail()
	default:
		return Passthrough{}
	}
}

// Passthrough emits every event unchanged. Marker events have no meaning
// without a correlator and are dropped.
type Passthrough struct{}

func (Passthrough) Apply(ev event.Event, out *Batch) {
	if event.Marker(ev) {
		out.drop()
		return
	}
	out.Emit(ev)
}

func (Passthrough) Close(*Batch) {}
