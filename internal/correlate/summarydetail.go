package correlate

import (
	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

// SummaryDetail attaches breakdown lines to the periodic award they follow.
//
// A periodic award is emitted immediately and opens a window for its
// player. Detail lines for a player with an open window are appended to the
// award; detail lines without one are dropped. Any other line closes every
// window, whether or not it parsed, and so does the end of the tick.
type SummaryDetail struct {
	open map[string]*event.FamePointsAward
}

// NewSummaryDetail returns a summary/detail correlator.
func NewSummaryDetail() *SummaryDetail {
	return &SummaryDetail{open: make(map[string]*event.FamePointsAward)}
}

func (c *SummaryDetail) Apply(ev event.Event, out *Batch) {
	if d, ok := ev.(*event.FameDetail); ok {
		out.drop()
		if award := c.open[event.Key(d)]; award != nil {
			award.Details = append(award.Details, *d)
		}
		return
	}

	clear(c.open)
	if event.Marker(ev) {
		out.drop()
		return
	}
	out.Emit(ev)
	if award, ok := ev.(*event.FamePointsAward); ok && award.Periodic {
		if key := event.Key(award); key != "" {
			c.open[key] = award
		}
	}
}

// Skip closes every window.
func (c *SummaryDetail) Skip(*Batch) {
	clear(c.open)
}

func (c *SummaryDetail) Close(*Batch) {
	clear(c.open)
}
