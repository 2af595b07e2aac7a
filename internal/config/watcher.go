package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/lmstudio-tray/lmstray/internal/models"
)

const debounceDelay = 100 * time.Millisecond

// SettingsWatcher reloads settings.yaml whenever it changes on disk and
// delivers successfully validated settings on Changes. Invalid edits are
// logged and skipped.
type SettingsWatcher struct {
	path      string
	fsWatcher *fsnotify.Watcher
	changes   chan *models.Settings
	done      chan struct{}
	stopOnce  sync.Once

	debounceMu sync.Mutex
	timer      *time.Timer
}

// NewSettingsWatcher watches the directory holding path. The directory is
// watched rather than the file so atomic replacements are seen.
func NewSettingsWatcher(path string) (*SettingsWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := fsWatcher.Add(dir); err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}

	w := &SettingsWatcher{
		path:      path,
		fsWatcher: fsWatcher,
		changes:   make(chan *models.Settings, 1),
		done:      make(chan struct{}),
	}
	go w.processEvents()
	return w, nil
}

// Changes returns the channel of reloaded settings.
func (w *SettingsWatcher) Changes() <-chan *models.Settings {
	return w.changes
}

// Stop stops the watcher.
func (w *SettingsWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()
		w.debounceMu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.debounceMu.Unlock()
	})
}

func (w *SettingsWatcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("Settings watcher error")
		}
	}
}

func (w *SettingsWatcher) handleEvent(event fsnotify.Event) {
	// Rename covers editors that write a temp file and move it into place.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}

	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, w.reload)
}

func (w *SettingsWatcher) reload() {
	s, err := LoadSettingsFrom(w.path)
	if err != nil {
		log.Error().Err(err).Msg("Ignoring settings change")
		return
	}
	log.Debug().Str("path", w.path).Msg("Settings reloaded")

	// Keep only the newest settings if the consumer is behind.
	select {
	case <-w.changes:
	default:
	}
	select {
	case w.changes <- s:
	case <-w.done:
	}
}
