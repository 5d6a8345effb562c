package tui

import (
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

type fileChangedMsg struct{}

type watchErrorMsg struct {
	err error
}

// watcher reports changes to the collection file. The parent directory is
// watched so saves that replace the file are seen too.
type watcher struct {
	fs   *fsnotify.Watcher
	path string
}

func newWatcher(path string) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	return &watcher{fs: fw, path: filepath.Clean(path)}, nil
}

// wait blocks until the file changes. A nil watcher never fires.
func (w *watcher) wait() tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-w.fs.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != w.path {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					w.drain(reloadDebounce)
					return fileChangedMsg{}
				}
			case err, ok := <-w.fs.Errors:
				if !ok {
					return nil
				}
				return watchErrorMsg{err: err}
			}
		}
	}
}

// drain swallows the events that follow within d
func (w *watcher) drain(d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case _, ok := <-w.fs.Events:
			if !ok {
				return
			}
		case <-timer.C:
			return
		}
	}
}

// Close stops watching
func (w *watcher) Close() error {
	if w == nil {
		return nil
	}
	return w.fs.Close()
}
