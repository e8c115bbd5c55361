package scumlog

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// dirWatcher turns file system events in the source directories into
// early ticks of the matching pipelines.
type dirWatcher struct {
	fsw    *fsnotify.Watcher
	routes map[string][]route
	log    *slog.Logger
}

type route struct {
	pattern string
	nudge   chan<- struct{}
}

func newDirWatcher(pipelines []*Pipeline, nudges []chan struct{}, log *slog.Logger) (*dirWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &dirWatcher{fsw: fsw, routes: make(map[string][]route), log: log}
	for i, pl := range pipelines {
		dir := filepath.Clean(pl.src.Dir)
		if _, ok := w.routes[dir]; !ok {
			if err := fsw.Add(dir); err != nil {
				log.Warn("cannot watch directory", "dir", dir, "error", err)
				continue
			}
		}
		w.routes[dir] = append(w.routes[dir], route{pattern: pl.src.Pattern, nudge: nudges[i]})
	}
	return w, nil
}

// run forwards events until ctx is cancelled.
func (w *dirWatcher) run(ctx context.Context) {
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.notify(ev.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

// notify wakes every pipeline whose pattern matches path. Pending wake-ups
// coalesce.
func (w *dirWatcher) notify(path string) {
	name := filepath.Base(path)
	for _, r := range w.routes[filepath.Dir(path)] {
		if ok, _ := doublestar.Match(r.pattern, name); !ok {
			continue
		}
		select {
		case r.nudge <- struct{}{}:
		default:
		}
	}
}
