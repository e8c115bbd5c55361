// Package notify delivers events to a notification sink.
//
// Delivery is best effort and at most once: a failed or missing sink is
// logged and the event is dropped. Nothing here retries.
package notify

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

// DefaultTimeout bounds a single sink call.
const DefaultTimeout = 10 * time.Second

// Channel identifies the destination of a message.
type Channel struct {
	ID    string `yaml:"id" json:"id"`
	Token string `yaml:"token" json:"-"`
}

// Configured reports whether the channel can be addressed.
func (c Channel) Configured() bool {
	return c.ID != "" && c.Token != ""
}

// Field is a name/value pair rendered below the description.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Message is a formatted event ready for transport.
type Message struct {
	Title       string
	Description string
	Color       int
	Fields      []Field
	Timestamp   time.Time
}

// Sink transports messages.
type Sink interface {
	Send(ctx context.Context, ch Channel, msg Message) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ch Channel, msg Message) error

func (f SinkFunc) Send(ctx context.Context, ch Channel, msg Message) error {
	return f(ctx, ch, msg)
}

// Dispatcher formats events and hands them to a sink.
type Dispatcher struct {
	sink       Sink
	formatters Formatters
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout sets the per-call sink timeout.
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithFormatters replaces the formatter registry.
func WithFormatters(f Formatters) Option {
	return func(d *Dispatcher) {
		d.formatters = f
	}
}

// WithLogger sets the logger used for delivery diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher returns a dispatcher for sink. A nil sink is allowed: every
// dispatch is then logged and skipped.
func NewDispatcher(sink Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sink:       sink,
		formatters: DefaultFormatters(),
		timeout:    DefaultTimeout,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// HasSink reports whether a sink is configured.
func (d *Dispatcher) HasSink() bool {
	return d != nil && d.sink != nil
}

// Dispatch formats ev and sends it to ch. It reports whether the sink
// accepted the message. Failures are logged, never returned.
//
// The sink call is detached from ctx cancellation so shutdown lets an
// in-flight delivery finish; it is bounded by the dispatcher timeout.
func (d *Dispatcher) Dispatch(ctx context.Context, ev event.Event, ch Channel) bool {
	h := ev.Head()
	if !d.HasSink() {
		d.logger.Info("sink unavailable, event not delivered",
			"category", h.Category, "kind", ev.Kind(), "summary", h.Summary)
		return false
	}
	format := d.formatters[h.Category]
	if format == nil {
		d.logger.Info("no formatter, event not delivered",
			"category", h.Category, "kind", ev.Kind(), "summary", h.Summary)
		return false
	}
	msg, ok := format(ev)
	if !ok {
		d.logger.Debug("formatter skipped event", "category", h.Category, "kind", ev.Kind())
		return false
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()
	if err := d.sink.Send(sendCtx, ch, msg); err != nil {
		d.logger.Warn("delivery failed",
			"category", h.Category, "kind", ev.Kind(), "line", h.Line, "error", err)
		return false
	}
	return true
}
