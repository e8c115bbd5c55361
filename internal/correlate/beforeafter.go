package correlate

import (
	"time"

	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

// BeforeAfter pairs balance snapshots around economy transactions.
//
// A Before snapshot is held per player. When the matching After snapshot
// arrives within MaxAge (measured on log timestamps), the most recent
// transaction of that player in the current batch that has no balance yet is
// enriched in place. Unmatched snapshots expire silently.
type BeforeAfter struct {
	MaxAge  time.Duration
	pending map[string]*event.BalanceSnapshot
}

// NewBeforeAfter returns a before/after correlator. A non-positive maxAge
// means DefaultMaxAge.
func NewBeforeAfter(maxAge time.Duration) *BeforeAfter {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &BeforeAfter{
		MaxAge:  maxAge,
		pending: make(map[string]*event.BalanceSnapshot),
	}
}

// Pending returns the number of buffered Before snapshots.
func (c *BeforeAfter) Pending() int {
	return len(c.pending)
}

func (c *BeforeAfter) Apply(ev event.Event, out *Batch) {
	c.prune(ev.Head().Time)

	snap, ok := ev.(*event.BalanceSnapshot)
	if !ok {
		if event.Marker(ev) {
			out.drop()
			return
		}
		out.Emit(ev)
		return
	}
	out.drop()

	key := event.Key(snap)
	if key == "" {
		return
	}
	if snap.Phase == event.PhaseBefore {
		c.pending[key] = snap
		return
	}

	before, ok := c.pending[key]
	if !ok {
		return
	}
	delete(c.pending, key)
	if c.expired(before, snap.Time) {
		return
	}
	if tx := lastOpenTransaction(out, key); tx != nil {
		tx.Balance = &event.BalanceChange{
			CashBefore:    before.Cash,
			CashAfter:     snap.Cash,
			AccountBefore: before.Account,
			AccountAfter:  snap.Account,
			GoldBefore:    before.Gold,
			GoldAfter:     snap.Gold,
			TraderBefore:  before.Funds,
			TraderAfter:   snap.Funds,
		}
	}
}

// Close keeps pending snapshots: a Before written at the end of one tick may
// pair with an After read in the next.
func (c *BeforeAfter) Close(*Batch) {}

func (c *BeforeAfter) expired(before *event.BalanceSnapshot, now time.Time) bool {
	return now.Sub(before.Time) > c.MaxAge
}

func (c *BeforeAfter) prune(now time.Time) {
	for key, snap := range c.pending {
		if c.expired(snap, now) {
			delete(c.pending, key)
		}
	}
}

// lastOpenTransaction searches the current batch only. Earlier ticks have
// already been dispatched.
func lastOpenTransaction(out *Batch, key string) *event.EconomyTransaction {
	for i := len(out.Events) - 1; i >= 0; i-- {
		tx, ok := out.Events[i].(*event.EconomyTransaction)
		if ok && tx.Balance == nil && event.Key(tx) == key {
			return tx
		}
	}
	return nil
}
