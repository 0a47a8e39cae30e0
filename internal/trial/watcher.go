package trial

import (
	"strings"

	"github.com/fsnotify/fsnotify"

	"tribunal/internal/logging"
)

// ProfileWatcher reloads the profile set when a YAML file in the
// profile directory is written or created.
type ProfileWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchProfiles starts watching the profile directory. Returns nil
// without error when the set has no directory to watch.
func WatchProfiles(ps *ProfileSet) (*ProfileWatcher, error) {
	if ps.dir == "" {
		return nil, nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(ps.dir); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &ProfileWatcher{watcher: watcher, done: make(chan struct{})}
	go w.loop(ps)
	logging.Trial("watching agent profiles: dir=%s", ps.dir)
	return w, nil
}

func (w *ProfileWatcher) loop(ps *ProfileSet) {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !strings.HasSuffix(event.Name, ".yaml") && !strings.HasSuffix(event.Name, ".yml") {
				continue
			}
			if err := ps.Reload(); err != nil {
				logging.Get(logging.CategoryTrial).Warn("profile reload failed: %v", err)
				continue
			}
			logging.Trial("agent profiles reloaded: %s", event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryTrial).Warn("profile watcher error: %v", err)
		}
	}
}

// Close stops the watcher and waits for its loop to exit.
func (w *ProfileWatcher) Close() error {
	if w == nil {
		return nil
	}
	err := w.watcher.Close()
	<-w.done
	return err
}
