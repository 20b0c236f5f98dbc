package config

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Logger defines the logging interface needed by the config watcher.
type Logger interface {
	Infof(string, ...any)
	Errorf(string, ...any)
}

const reloadDebounce = 200 * time.Millisecond

// Watcher reloads a config file into a Store whenever the file changes.
type Watcher struct {
	path     string
	store    *Store
	logger   Logger
	onReload func(*Config)

	fs   *fsnotify.Watcher
	done chan struct{}
}

// WatchFile starts watching path. Every config that loads is passed to
// onReload, if non-nil, before it replaces the store's current config, so the
// callback can re-apply command-line overrides. A config that fails to load
// or validate is logged and the previous one stays current.
func WatchFile(path string, store *Store, logger Logger, onReload func(*Config)) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fs.Add(path); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	w := &Watcher{
		path:     path,
		store:    store,
		logger:   logger,
		onReload: onReload,
		fs:       fs,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Stop ends the watch. It is safe to call once.
func (w *Watcher) Stop() {
	close(w.done)
}

func (w *Watcher) loop() {
	defer w.fs.Close()

	// Editors emit several events per save, so reload once the file has been
	// quiet for reloadDebounce.
	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(reloadDebounce)
			}
		case <-timer.C:
			w.reload()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("config watcher error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Errorf("config reload failed, keeping previous config: %v", err)
		return
	}
	if w.onReload != nil {
		w.onReload(cfg)
	}
	w.store.Update(cfg)
	w.logger.Infof("config reloaded from %s", w.path)
}
