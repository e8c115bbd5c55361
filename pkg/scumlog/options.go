package scumlog

import (
	"io"
	"log/slog"
	"time"

	"github.com/scumlog/scumlog-go/internal/notify"
)

// discardLogger returns a logger that discards all output.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Sink transports formatted messages. See NewDiscordSink.
type Sink = notify.Sink

// Message is a formatted event handed to a Sink.
type Message = notify.Message

// DiscordOption configures the Discord webhook sink.
type DiscordOption = notify.DiscordOption

// NewDiscordSink returns a Sink posting Discord webhook embeds.
func NewDiscordSink(opts ...DiscordOption) Sink {
	return notify.NewDiscordSink(opts...)
}

// Option configures a Pipeline.
type Option func(*pipelineConfig)

type pipelineConfig struct {
	logger          *slog.Logger
	now             func() time.Time
	sink            Sink
	dispatchTimeout time.Duration
	stateDir        string
	maxBytes        int64
}

func defaultPipelineConfig() *pipelineConfig {
	return &pipelineConfig{
		logger:          discardLogger,
		now:             time.Now,
		dispatchTimeout: notify.DefaultTimeout,
	}
}

func applyOptions(opts []Option) *pipelineConfig {
	cfg := defaultPipelineConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithLogger sets the logger for diagnostics. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(c *pipelineConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock sets the processing-time source used for lines without a
// timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *pipelineConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSink sets the notification sink.
func WithSink(s Sink) Option {
	return func(c *pipelineConfig) {
		c.sink = s
	}
}

// WithDispatchTimeout bounds each sink call. Default: 10 seconds.
func WithDispatchTimeout(d time.Duration) Option {
	return func(c *pipelineConfig) {
		if d > 0 {
			c.dispatchTimeout = d
		}
	}
}

// WithStateDir sets the directory holding cursor records.
func WithStateDir(dir string) Option {
	return func(c *pipelineConfig) {
		c.stateDir = dir
	}
}

// WithMaxReadBytes bounds how much of a log file one tick may load.
func WithMaxReadBytes(n int64) Option {
	return func(c *pipelineConfig) {
		c.maxBytes = n
	}
}

// PollerOption configures a Poller.
type PollerOption func(*pollerConfig)

type pollerConfig struct {
	interval time.Duration
	fsnotify bool
	logger   *slog.Logger
}

// DefaultPollInterval is the default time between ticks of one pipeline.
const DefaultPollInterval = 5 * time.Second

// WithInterval sets the time between ticks. Default: 5 seconds.
func WithInterval(d time.Duration) PollerOption {
	return func(c *pollerConfig) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithFSNotify enables file system notifications that trigger a tick as
// soon as a log file is written, in addition to the timer.
func WithFSNotify(enabled bool) PollerOption {
	return func(c *pollerConfig) {
		c.fsnotify = enabled
	}
}

// WithPollerLogger sets the poller logger. Default: discard.
func WithPollerLogger(l *slog.Logger) PollerOption {
	return func(c *pollerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
