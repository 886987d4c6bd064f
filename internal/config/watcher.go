// internal/config/watcher.go
package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/jobsaddah/jobharvest/internal/utils"
)

var logger = utils.NewComponentLogger("config")

// Watcher reloads the configuration file when it changes on disk and
// notifies registered callbacks. A reload that fails validation is
// logged and dropped; the previous configuration stays in effect.
type Watcher struct {
	watcher    *fsnotify.Watcher
	configPath string
	callbacks  []func(*Config)
	mu         sync.RWMutex
	stopped    bool
}

// NewWatcher starts watching the given configuration file.
func NewWatcher(configPath string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:    fsWatcher,
		configPath: configPath,
	}

	if err := fsWatcher.Add(configPath); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch config file: %w", err)
	}

	// Watch the directory too, for editors that replace via temp files.
	if err := fsWatcher.Add(filepath.Dir(configPath)); err != nil {
		logger.Warnf("failed to watch config directory: %v", err)
	}

	go w.watch()
	return w, nil
}

// OnChange registers a callback invoked with each successfully reloaded
// configuration.
func (w *Watcher) OnChange(callback func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

func (w *Watcher) watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name == w.configPath && event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Errorf("config watcher: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	w.mu.RLock()
	if w.stopped {
		w.mu.RUnlock()
		return
	}
	callbacks := make([]func(*Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.RUnlock()

	cfg, err := LoadFromFile(w.configPath)
	if err != nil {
		logger.Errorf("failed to reload config: %v", err)
		return
	}

	logger.Infof("configuration reloaded from %s", w.configPath)
	for _, callback := range callbacks {
		callback(cfg)
	}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()

	return w.watcher.Close()
}
