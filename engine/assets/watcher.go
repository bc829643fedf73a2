package assets

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Reloader is the watcher's target; the load orchestrator implements it.
type Reloader interface {
	Reload(url string)
}

// Watcher maps filesystem changes under the manifest base path to reload
// requests on its target. URL matching is the target's job; the watcher
// forwards every file write it sees.
type Watcher struct {
	fsnotify *fsnotify.Watcher
	manifest *Manifest
	target   Reloader
	logger   *log.Logger
	done     chan struct{}
}

func NewWatcher(m *Manifest, target Reloader, logger *log.Logger) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsnotify: fsWatch,
		manifest: m,
		target:   target,
		logger:   logger,
		done:     make(chan struct{}),
	}
	if err := w.addRecursive(m.BasePath); err != nil {
		fsWatch.Close()
		return nil, err
	}
	go w.start()
	return w, nil
}

// addRecursive watches the named directory and all sub-directories.
func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return w.fsnotify.Add(path)
		}
		return nil
	})
}

func (w *Watcher) start() {
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
				// New directories join the watch; files inside them arrive
				// as their own events.
				if e.Op&fsnotify.Create != 0 {
					w.fsnotify.Add(e.Name)
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.target.Reload(w.relativeURL(e.Name))
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", "err", err)

		case <-w.done:
			w.fsnotify.Close()
			return
		}
	}
}

// relativeURL rewrites a watched file path into the base-relative form used
// by manifest entries.
func (w *Watcher) relativeURL(path string) string {
	path = filepath.ToSlash(path)
	if rest, ok := strings.CutPrefix(path, w.manifest.BasePath+"/"); ok {
		return rest
	}
	return path
}

func (w *Watcher) Close() {
	close(w.done)
}
