package scumlog

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Poller ticks a set of pipelines, each on its own goroutine and timer.
// Ticks of one pipeline never overlap; pipelines do not wait for each other.
type Poller struct {
	pipelines []*Pipeline
	cfg       pollerConfig

	mu      sync.Mutex
	closed  bool
	running bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
}

// NewPoller returns a poller for pipelines.
func NewPoller(pipelines []*Pipeline, opts ...PollerOption) *Poller {
	cfg := pollerConfig{
		interval: DefaultPollInterval,
		logger:   discardLogger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Poller{pipelines: pipelines, cfg: cfg}
}

// Run ticks every pipeline until ctx is cancelled or Close is called. Each
// pipeline ticks once immediately. Run returns after every in-flight tick,
// including its cursor write, has completed.
//
// Returns ErrPollerClosed after Close and ErrAlreadyRunning if Run is
// already active.
func (p *Poller) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPollerClosed
	}
	if p.running {
		p.mu.Unlock()
		return ErrAlreadyRunning
	}
	p.running = true
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.doneCh = make(chan struct{})
	doneCh := p.doneCh
	p.mu.Unlock()

	defer close(doneCh)
	defer cancel()

	nudges := make([]chan struct{}, len(p.pipelines))
	for i := range nudges {
		nudges[i] = make(chan struct{}, 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	if p.cfg.fsnotify {
		w, err := newDirWatcher(p.pipelines, nudges, p.cfg.logger)
		if err != nil {
			p.cfg.logger.Warn("file notifications unavailable, polling only", "error", err)
		} else {
			g.Go(func() error {
				w.run(gctx)
				return nil
			})
		}
	}
	for i, pl := range p.pipelines {
		i, pl := i, pl
		g.Go(func() error {
			p.loop(gctx, pl, nudges[i])
			return nil
		})
	}
	p.cfg.logger.Info("poller started", "sources", len(p.pipelines), "interval", p.cfg.interval)
	err := g.Wait()
	p.cfg.logger.Info("poller stopped")
	return err
}

// Close stops Run and waits for it to return. Safe to call multiple times.
func (p *Poller) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.cancel != nil {
		p.cancel()
	}
	doneCh := p.doneCh
	p.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

func (p *Poller) loop(ctx context.Context, pl *Pipeline, nudge <-chan struct{}) {
	ticker := time.NewTicker(p.cfg.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}
		p.tick(ctx, pl)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-nudge:
		}
	}
}

// tick runs one tick detached from ctx so shutdown never interrupts a
// cursor write.
func (p *Poller) tick(ctx context.Context, pl *Pipeline) {
	res, err := pl.Tick(context.WithoutCancel(ctx))
	if err != nil {
		p.cfg.logger.Warn("tick failed", "source", pl.src.Name, "error", err)
		return
	}
	if res.Events > 0 {
		p.cfg.logger.Debug("tick delivered",
			"source", pl.src.Name, "events", res.Events, "dispatched", res.Dispatched)
	}
}
