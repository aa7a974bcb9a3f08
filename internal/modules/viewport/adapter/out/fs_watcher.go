package out

import (
	"fmt"

	"github.com/fsnotify/fsnotify"

	viewportout "folio/internal/modules/viewport/port/out"
)

// FileWatcher reports writes to the open document file so the viewer can
// mark its rasters stale. Events are coalesced: an unread change swallows
// subsequent ones.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	changes chan struct{}
	done    chan struct{}
}

func NewFileWatcher(path string) (viewportout.ChangeWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("new watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	w := &FileWatcher{
		watcher: watcher,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *FileWatcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *FileWatcher) Changes() <-chan struct{} { return w.changes }

func (w *FileWatcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
