package scumlog_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scumlog/scumlog-go/pkg/scumlog"
	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

func TestPoller_DeliversAppendedLines(t *testing.T) {
	for _, useFS := range []bool{false, true} {
		name, interval := "polling", 20*time.Millisecond
		if useFS {
			// Only a file notification can wake the pipeline in time.
			name, interval = "fsnotify", time.Hour
		}
		t.Run(name, func(t *testing.T) {
			e := newEnv(t)
			path := filepath.Join(e.logDir, "kill_20250719000000.log")
			writeLog(t, path, killLine1)
			p := e.pipeline(t, event.CategoryKill)

			poller := scumlog.NewPoller([]*scumlog.Pipeline{p},
				scumlog.WithInterval(interval),
				scumlog.WithFSNotify(useFS),
			)
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- poller.Run(ctx) }()

			require.Eventually(t, func() bool {
				return p.Cursor().LastLineNumber == 1
			}, 2*time.Second, 10*time.Millisecond)

			appendLog(t, path, killLine2)
			require.Eventually(t, func() bool {
				return e.sink.count() == 1
			}, 2*time.Second, 10*time.Millisecond)

			cancel()
			select {
			case err := <-done:
				assert.NoError(t, err)
			case <-time.After(2 * time.Second):
				t.Fatal("Run did not return after cancel")
			}
			assert.Equal(t, 2, e.storedCursor(t, "kill").LastLineNumber)
		})
	}
}

func TestPoller_PipelinesAreIndependent(t *testing.T) {
	e := newEnv(t)
	kill := e.pipeline(t, event.CategoryKill)
	login := e.pipeline(t, event.CategoryLogin)

	poller := scumlog.NewPoller([]*scumlog.Pipeline{kill, login},
		scumlog.WithInterval(20*time.Millisecond))
	go func() { _ = poller.Run(context.Background()) }()
	t.Cleanup(func() { _ = poller.Close() })

	// Both directories start empty, so new files are read in full.
	time.Sleep(50 * time.Millisecond)
	writeLog(t, filepath.Join(e.logDir, "kill_20250719000000.log"), killLine1)
	writeLog(t, filepath.Join(e.logDir, "login_20250719000000.log"),
		"2025.07.19-18.00.00: '10.0.0.1 76561198086065370:Urrgence(12)' logged in at: X=1.0 Y=2.0 Z=3.0")

	require.Eventually(t, func() bool {
		return e.sink.count() == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPoller_AlreadyRunning(t *testing.T) {
	e := newEnv(t)
	writeLog(t, filepath.Join(e.logDir, "kill_20250719000000.log"), noise)
	p := e.pipeline(t, event.CategoryKill)
	poller := scumlog.NewPoller([]*scumlog.Pipeline{p}, scumlog.WithInterval(time.Hour))

	done := make(chan error, 1)
	go func() { done <- poller.Run(context.Background()) }()

	// The immediate first tick proves Run is active.
	require.Eventually(t, func() bool {
		return p.Cursor().LastLineNumber == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, poller.Run(context.Background()), scumlog.ErrAlreadyRunning)

	require.NoError(t, poller.Close())
	assert.NoError(t, <-done)
	assert.ErrorIs(t, poller.Run(context.Background()), scumlog.ErrPollerClosed)
	assert.NoError(t, poller.Close(), "second Close is a no-op")
}

func TestPoller_CloseBeforeRun(t *testing.T) {
	poller := scumlog.NewPoller(nil)
	require.NoError(t, poller.Close())
	assert.ErrorIs(t, poller.Run(context.Background()), scumlog.ErrPollerClosed)
}
