package scumlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/scumlog/scumlog-go/internal/correlate"
	"github.com/scumlog/scumlog-go/internal/cursor"
	"github.com/scumlog/scumlog-go/internal/grammar"
	"github.com/scumlog/scumlog-go/internal/logfinder"
	"github.com/scumlog/scumlog-go/internal/notify"
	"github.com/scumlog/scumlog-go/internal/reader"
	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

// Cursor is the persisted read position of a source.
type Cursor = cursor.Cursor

// TickResult summarises one tick.
type TickResult struct {
	// File is the active log file, empty when none exists yet.
	File string
	// Lines is the number of new lines read.
	Lines int
	// Events is the number of events handed to the sink.
	Events int
	// Dispatched is the number of events the sink accepted.
	Dispatched int
	// Dropped counts marker and orphaned events consumed by correlation.
	Dropped int
	// Rotated is set when reading restarted at the top of a file.
	Rotated bool
	// Skipped is the number of historical lines jumped over on first run.
	Skipped int
}

// Pipeline relays one source. Ticks are serialised; a Pipeline may be
// ticked from any goroutine.
type Pipeline struct {
	src        Source
	cfg        *pipelineConfig
	log        *slog.Logger
	grammar    *grammar.Grammar
	strategy   correlate.Strategy
	reader     *reader.Reader
	store      *cursor.Store
	dispatcher *notify.Dispatcher

	mu     sync.Mutex
	cur    Cursor
	loaded bool
	// started is false until the source has a stored cursor or has seen
	// an empty log directory; until then the first file is read from its
	// end.
	started bool
}

// NewPipeline validates src and builds its pipeline. Initialisation errors
// are *PipelineError values wrapping ErrSourceDisabled, ErrNoSink,
// ErrNoChannel, ErrNoStateDir, ErrUnknownCategory or ErrLogDirNotFound.
func NewPipeline(src Source, opts ...Option) (*Pipeline, error) {
	src = src.withDefaults()
	cfg := applyOptions(opts)

	initErr := func(err error) error {
		return &PipelineError{Source: src.Name, Op: OpInit, Path: src.Dir, Err: err}
	}

	if !src.Enabled {
		return nil, initErr(ErrSourceDisabled)
	}
	if cfg.sink == nil {
		return nil, initErr(ErrNoSink)
	}
	if !src.Channel.Configured() {
		return nil, initErr(ErrNoChannel)
	}
	g, err := grammar.For(src.Category)
	if err != nil {
		return nil, initErr(fmt.Errorf("%w: %q", ErrUnknownCategory, src.Category))
	}
	enc, err := reader.ParseEncoding(string(src.Encoding))
	if err != nil {
		return nil, initErr(err)
	}
	dir, err := logfinder.ValidateDir(src.Dir)
	if err != nil {
		return nil, initErr(err)
	}
	src.Dir = dir
	if cfg.stateDir == "" {
		return nil, initErr(ErrNoStateDir)
	}
	store, err := cursor.NewStore(cfg.stateDir)
	if err != nil {
		return nil, initErr(err)
	}

	var readerOpts []reader.Option
	if cfg.maxBytes != 0 {
		readerOpts = append(readerOpts, reader.WithMaxBytes(cfg.maxBytes))
	}
	log := cfg.logger.With("source", src.Name)

	return &Pipeline{
		src:      src,
		cfg:      cfg,
		log:      log,
		grammar:  g,
		strategy: correlate.For(src.Category),
		reader:   reader.New(enc, readerOpts...),
		store:    store,
		dispatcher: notify.NewDispatcher(cfg.sink,
			notify.WithTimeout(cfg.dispatchTimeout),
			notify.WithLogger(log),
		),
	}, nil
}

// Source returns the source definition with defaults applied.
func (p *Pipeline) Source() Source {
	return p.src
}

// Cursor returns the in-memory cursor.
func (p *Pipeline) Cursor() Cursor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cur
}

// Tick runs one Locate, Read, Parse, Correlate, Save, Dispatch cycle.
//
// A missing log file is not an error. Locate and read failures leave the
// cursor untouched so the next tick retries. The cursor is saved before
// dispatch; sink failures are logged and never returned.
func (p *Pipeline) Tick(ctx context.Context) (TickResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return TickResult{}, err
	}
	p.load()

	path, err := logfinder.FindLatest(p.src.Dir, p.src.Pattern)
	if errors.Is(err, logfinder.ErrNoLogFiles) {
		// Nothing to replay: the first file to appear is read in full.
		p.started = true
		p.log.Debug("no log file yet", "dir", p.src.Dir, "pattern", p.src.Pattern)
		return TickResult{}, nil
	}
	if err != nil {
		return TickResult{}, &PipelineError{Source: p.src.Name, Op: OpLocate, Path: p.src.Dir, Err: err}
	}

	batch, err := p.reader.Read(path, p.cur, !p.started)
	if err != nil {
		return TickResult{File: path}, &PipelineError{Source: p.src.Name, Op: OpRead, Path: path, Err: err}
	}
	res := TickResult{
		File:    path,
		Lines:   len(batch.Lines),
		Rotated: batch.Rotated,
		Skipped: batch.Skipped,
	}
	if batch.Rotated && p.cur.Tracking() {
		p.log.Info("log rotated", "from", p.cur.CurrentFile, "to", path)
	}
	if batch.Skipped > 0 {
		p.log.Info("first run, starting at end of file", "path", path, "skipped", batch.Skipped)
	}

	now := p.cfg.now()
	var out correlate.Batch
	for _, line := range batch.Lines {
		correlateLine(p.grammar, p.strategy, line, now, &out)
	}
	p.strategy.Close(&out)
	res.Events = len(out.Events)
	res.Dropped = out.Dropped

	batch.Cursor.LastUpdate = now.UTC()
	p.cur = batch.Cursor
	p.started = true
	saveErr := p.store.Save(p.cur)
	if saveErr != nil {
		p.log.Warn("saving cursor failed", "error", saveErr)
	}

	for _, ev := range out.Events {
		if p.dispatcher.Dispatch(ctx, ev, p.src.Channel) {
			res.Dispatched++
		}
	}

	if res.Lines > 0 {
		p.log.Debug("tick",
			"path", path, "lines", res.Lines, "events", res.Events,
			"dispatched", res.Dispatched, "cursor", p.cur.LastLineNumber)
	}
	if saveErr != nil {
		return res, &PipelineError{Source: p.src.Name, Op: OpSave, Path: p.store.Path(p.src.Name), Err: saveErr}
	}
	return res, nil
}

// load restores the stored cursor once. An unreadable record is treated as
// missing.
func (p *Pipeline) load() {
	if p.loaded {
		return
	}
	cur, found, err := p.store.Load(p.src.Name)
	if err != nil {
		p.log.Warn("cursor unreadable, starting at end of current file", "error", err)
	}
	if found && !cur.Tracking() {
		p.log.Info("tracked file is gone, next file is read from the start")
	}
	p.cur = cur
	p.started = found
	p.loaded = true
}

// Parse parses lines of the given category offline, applying the same
// correlation as a pipeline. now stamps lines without a timestamp.
func Parse(c event.Category, lines []string, now func() time.Time) ([]event.Event, error) {
	g, err := grammar.For(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	if now == nil {
		now = time.Now
	}
	strategy := correlate.For(c)
	var out correlate.Batch
	for i, text := range lines {
		correlateLine(g, strategy, reader.Line{Number: i + 1, Text: text}, now(), &out)
	}
	strategy.Close(&out)
	return out.Events, nil
}

// correlateLine parses one line and hands the result to the strategy.
// Unmatched lines are reported too; blank ones are ignored.
func correlateLine(g *grammar.Grammar, s correlate.Strategy, line reader.Line, now time.Time, out *correlate.Batch) {
	ev, ok := g.Parse(line, now)
	switch {
	case ok:
		s.Apply(ev, out)
	case strings.TrimSpace(line.Text) != "":
		correlate.Skip(s, out)
	}
}

// ParseFile parses a whole log file offline.
func ParseFile(c event.Category, path string, enc Encoding) ([]event.Event, error) {
	enc, err := reader.ParseEncoding(string(enc))
	if err != nil {
		return nil, err
	}
	lines, err := reader.ReadAll(path, enc)
	if err != nil {
		return nil, err
	}
	text := make([]string, len(lines))
	for i, l := range lines {
		text[i] = l.Text
	}
	return Parse(c, text, nil)
}
