package scumlog

import (
	"errors"
	"fmt"

	"github.com/scumlog/scumlog-go/internal/logfinder"
)

// Sentinel errors.
var (
	// ErrSourceDisabled is returned by NewPipeline for a disabled source.
	ErrSourceDisabled = errors.New("source is disabled")

	// ErrNoSink is returned by NewPipeline when no sink is configured.
	ErrNoSink = errors.New("no notification sink configured")

	// ErrNoChannel is returned by NewPipeline when the source channel is
	// incomplete.
	ErrNoChannel = errors.New("source channel id or token missing")

	// ErrNoStateDir is returned by NewPipeline when no cursor location is set.
	ErrNoStateDir = errors.New("no state directory configured")

	// ErrUnknownCategory is returned for categories without a grammar.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrLogDirNotFound is returned when the source directory does not exist.
	ErrLogDirNotFound = logfinder.ErrLogDirNotFound

	// ErrPollerClosed is returned by Run after Close.
	ErrPollerClosed = errors.New("poller is closed")

	// ErrAlreadyRunning is returned when Run is called twice.
	ErrAlreadyRunning = errors.New("poller is already running")
)

// PipelineOp names the pipeline step that failed.
type PipelineOp string

const (
	OpInit   PipelineOp = "init"
	OpLocate PipelineOp = "locate"
	OpRead   PipelineOp = "read"
	OpSave   PipelineOp = "save cursor"
)

// PipelineError is returned by NewPipeline and Tick.
type PipelineError struct {
	Source string
	Op     PipelineOp
	Path   string // may be empty
	Err    error
}

func (e *PipelineError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s %s: %v", e.Source, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Op, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
