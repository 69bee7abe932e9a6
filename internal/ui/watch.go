package ui

import (
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 150 * time.Millisecond

// reloadMsg tells the model the list files changed on disk.
type reloadMsg struct{}

// watcher debounces fsnotify events for the list's file pair into a
// single-slot channel. The directory is watched rather than the files so
// deletes and recreations keep reporting.
type watcher struct {
	fsw    *fsnotify.Watcher
	events chan struct{}
}

func newWatcher(dir string, paths ...string) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	w := &watcher{fsw: fsw, events: make(chan struct{}, 1)}
	go w.loop(paths)
	go func() {
		// Watch errors are not actionable here; reloads are best effort.
		for range fsw.Errors {
		}
	}()
	return w, nil
}

func (w *watcher) loop(paths []string) {
	watched := make(map[string]bool, len(paths))
	for _, p := range paths {
		watched[filepath.Clean(p)] = true
	}

	var timer *time.Timer
	fire := func() {
		select {
		case w.events <- struct{}{}:
		default:
		}
	}

	for evt := range w.fsw.Events {
		if !watched[filepath.Clean(evt.Name)] {
			continue
		}
		if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
			continue
		}
		if timer == nil {
			timer = time.AfterFunc(watchDebounce, fire)
		} else {
			timer.Reset(watchDebounce)
		}
	}
	if timer != nil {
		timer.Stop()
	}
	close(w.events)
}

func (w *watcher) Close() error {
	return w.fsw.Close()
}

// waitForChange blocks until the watcher fires, then hands the model a
// reloadMsg. A closed channel ends the listening loop quietly.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return reloadMsg{}
	}
}
